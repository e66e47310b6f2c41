// Package blogen provides an HTTP client for the Blogen REST API.
//
// # Client Usage
//
//	client, err := blogen.NewClient("http://localhost:8080",
//		blogen.WithTokenSource(sess),
//		blogen.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//		return err
//	}
//	page, err := client.ListPosts(ctx, blogen.PostQuery{Page: 0, Limit: 5})
//
// Every request carries Accept, User-Agent and X-Request-ID headers, and an
// Authorization: Bearer header whenever the token source returns a non-empty
// token. Each call runs inside its own tracing span.
//
// # Errors
//
// Two failure kinds reach callers:
//
//   - *APIError: the server answered with a non-2xx status. The message comes
//     from globalError[0].message, then the first fieldError, then a generic
//     "unexpected error response (status N)". MapError never fails.
//   - *TransportError: no response arrived (refused, DNS, timeout, cancel).
//
// RedirectMessage reports the login banner for 401, 403 and 500 responses;
// it is independent of the mapping so callers can apply both.
//
// # Wire Types
//
// Post carries its replies in Children. The tree is two levels deep: a
// reply's Children is always empty. Category id -1 (AllCategories) selects
// posts from every category.
package blogen
