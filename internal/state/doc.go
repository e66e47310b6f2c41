// Package state holds the client-side caches shared by actions and the UI.
//
// # Post Tree Cache
//
// Store keeps exactly one page of posts as returned by the server: an
// ordered list of threads, each with an ordered list of replies. The tree
// is two levels deep. Replies are stored without children, and any
// grandchildren in inserted data are dropped.
//
// Locate maps a post id to a Position. A miss is reported through the
// boolean result rather than through -1 indices:
//
//	pos, ok := store.Locate(id)
//	if !ok {
//		// not on the current page
//	}
//
// # Mutations
//
// All writes go through a closed set of Mutation values applied with
// Store.Apply:
//
//   - ReplacePage: swap posts and page info together after a list fetch
//   - PrependTopLevel: a new thread goes to index 0
//   - PrependChild: a new reply goes to index 0 of its thread
//   - ReplaceByID: overwrite a thread or reply with a fresher server copy
//   - RemoveByID: delete a reply, or a thread with all of its replies
//
// The by-id mutations resolve their target while holding the write lock,
// so a lookup and the change it drives are atomic with respect to other
// writers. Positional variants (PrependChild, ReplaceAt, RemoveAt on
// Store) remain for callers that already hold a Position; they return
// ErrOutOfRange instead of silently doing nothing.
//
// Page info is never adjusted by inserts or removals. Refetch the page for
// accurate totals.
//
// # Defensive Copying
//
// Posts are deep-copied on the way in and on the way out. A Snapshot never
// aliases the store's internal slices, and ReplacePage followed by Snapshot
// always observes posts and page info from the same call.
//
// # Refresh State
//
// RecordError keeps the cached page but tracks failed refreshes so the UI
// can show an offline indicator (Snapshot.IsOffline). A successful
// ReplacePage resets the failure count.
//
// # Categories
//
// CategoryStore is the flat sibling cache for categories: Set after a
// list, Append after a create, ReplaceByID after an update.
package state
