// Package ui is the Bubble Tea terminal client for a Blogen server.
//
// The Model owns no post data of its own. Commands call into
// actions.Actions, which confirm each write with the server before mutating
// the shared state.Store, and the model re-reads a snapshot of the store on
// every result message and on a one second tick. Background refreshes done
// by app.StartRefresher therefore show up without any extra plumbing.
//
// # Views
//
//   - Login and Signup: text forms; signup checks user name availability
//     after a short debounce.
//   - Posts: the current page of threads with their replies, a detail pane
//     rendered from markdown, search, per-user listings and category filter.
//   - Compose: new thread, reply or edit. Replies always attach to the
//     top-level thread of the selected row.
//   - Categories: paged list; administrators may add and rename.
//
// # Redirects
//
// Requests that fail with 401, 403 or 500 are reported by the actions layer
// through a Navigator. The model waits on the Navigator channel and moves to
// the login view with the server message as the banner.
//
// # Preferences
//
// Theme and category filter are persisted through the prefs package
// whenever they change.
package ui
