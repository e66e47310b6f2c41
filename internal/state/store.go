package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RachelRYuan/Blogen/internal/blogen"
)

var (
	// ErrNotFound is returned when an id is not present in the cached page.
	ErrNotFound = errors.New("post not in cached page")
	// ErrOutOfRange is returned for a position that does not address a post.
	ErrOutOfRange = errors.New("position out of range")
	// ErrNotThread is returned when a reply is targeted as a parent.
	ErrNotThread = errors.New("post is a reply, not a thread")
)

// Position addresses a post inside the cached page. Child is -1 for a
// top-level post.
type Position struct {
	Parent int
	Child  int
}

// TopLevel reports whether the position addresses a thread rather than a reply.
func (p Position) TopLevel() bool {
	return p.Child < 0
}

// Snapshot is a copy of the cached page handed to readers.
type Snapshot struct {
	Posts               []blogen.Post
	PageInfo            blogen.PageInfo
	Loaded              bool
	Version             uint64
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the last two or more refreshes failed.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store is the post tree cache: one page of threads with their replies.
// The zero value is an empty, unloaded page ready for use.
type Store struct {
	mu       sync.RWMutex
	posts    []blogen.Post
	pageInfo blogen.PageInfo
	loaded   bool
	version  uint64
	updated  time.Time
	lastErr  error
	failures int
}

// Locate finds id in the cached page. Threads are checked before their
// replies, so the first top-level match wins.
func (s *Store) Locate(id int64) (Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return locate(s.posts, id)
}

func locate(posts []blogen.Post, id int64) (Position, bool) {
	for i := range posts {
		if posts[i].ID == id {
			return Position{Parent: i, Child: -1}, true
		}
		for j := range posts[i].Children {
			if posts[i].Children[j].ID == id {
				return Position{Parent: i, Child: j}, true
			}
		}
	}
	return Position{Parent: -1, Child: -1}, false
}

// ReplacePage swaps the whole page; posts and page info change together.
func (s *Store) ReplacePage(posts []blogen.Post, info blogen.PageInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replacePage(posts, info)
	s.touch()
}

// PrependTopLevel inserts a new thread at the front of the page. Page info
// is left as is.
func (s *Store) PrependTopLevel(post blogen.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prependTopLevel(post)
	s.touch()
}

// PrependChild inserts a reply at the front of the thread at parentIndex.
func (s *Store) PrependChild(parentIndex int, post blogen.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.prependChild(parentIndex, post); err != nil {
		return err
	}
	s.touch()
	return nil
}

// ReplaceAt overwrites the post at pos with post. For a thread the
// replacement's children become the thread's children.
func (s *Store) ReplaceAt(pos Position, post blogen.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.replaceAt(pos, post); err != nil {
		return err
	}
	s.touch()
	return nil
}

// RemoveAt deletes the post at pos. Removing a thread drops its replies.
func (s *Store) RemoveAt(pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.removeAt(pos); err != nil {
		return err
	}
	s.touch()
	return nil
}

// Apply runs m under the write lock. By-id mutations resolve their target
// while holding the lock, so no other mutation can shift indices between
// the lookup and the change. A failed mutation leaves the page untouched.
func (s *Store) Apply(m Mutation) error {
	if m == nil {
		return fmt.Errorf("apply: nil mutation")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := m.apply(s); err != nil {
		return err
	}
	s.touch()
	return nil
}

// RecordError notes a failed page refresh while keeping the cached page.
func (s *Store) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	s.updated = time.Now()
	s.failures++
}

// Posts returns a deep copy of the cached threads.
func (s *Store) Posts() []blogen.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.posts)
}

// PageInfo returns the page info of the cached page.
func (s *Store) PageInfo() blogen.PageInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pageInfo
}

// Snapshot returns a consistent copy of posts, page info and refresh state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Posts:               clonePosts(s.posts),
		PageInfo:            s.pageInfo,
		Loaded:              s.loaded,
		Version:             s.version,
		LastUpdated:         s.updated,
		ConsecutiveFailures: s.failures,
	}
	if s.lastErr != nil {
		snap.LastError = fmt.Errorf("%w", s.lastErr)
	}
	return snap
}

// Version increases on every successful mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) touch() {
	s.version++
	s.updated = time.Now()
}

func (s *Store) replacePage(posts []blogen.Post, info blogen.PageInfo) {
	page := make([]blogen.Post, len(posts))
	for i := range posts {
		page[i] = cloneThread(posts[i])
	}
	s.posts = page
	s.pageInfo = info
	s.loaded = true
	s.lastErr = nil
	s.failures = 0
}

func (s *Store) prependTopLevel(post blogen.Post) {
	posts := make([]blogen.Post, 0, len(s.posts)+1)
	posts = append(posts, cloneThread(post))
	posts = append(posts, s.posts...)
	s.posts = posts
}

func (s *Store) prependChild(parentIndex int, post blogen.Post) error {
	if parentIndex < 0 || parentIndex >= len(s.posts) {
		return fmt.Errorf("prepend reply at %d of %d: %w", parentIndex, len(s.posts), ErrOutOfRange)
	}
	parent := &s.posts[parentIndex]
	children := make([]blogen.Post, 0, len(parent.Children)+1)
	children = append(children, cloneChild(post))
	children = append(children, parent.Children...)
	parent.Children = children
	return nil
}

func (s *Store) replaceAt(pos Position, post blogen.Post) error {
	if pos.Parent < 0 || pos.Parent >= len(s.posts) {
		return fmt.Errorf("replace at %+v: %w", pos, ErrOutOfRange)
	}
	if pos.TopLevel() {
		s.posts[pos.Parent] = cloneThread(post)
		return nil
	}
	children := s.posts[pos.Parent].Children
	if pos.Child >= len(children) {
		return fmt.Errorf("replace at %+v: %w", pos, ErrOutOfRange)
	}
	children[pos.Child] = cloneChild(post)
	return nil
}

func (s *Store) removeAt(pos Position) error {
	if pos.Parent < 0 || pos.Parent >= len(s.posts) {
		return fmt.Errorf("remove at %+v: %w", pos, ErrOutOfRange)
	}
	if pos.TopLevel() {
		s.posts = append(s.posts[:pos.Parent:pos.Parent], s.posts[pos.Parent+1:]...)
		return nil
	}
	parent := &s.posts[pos.Parent]
	if pos.Child >= len(parent.Children) {
		return fmt.Errorf("remove at %+v: %w", pos, ErrOutOfRange)
	}
	parent.Children = append(parent.Children[:pos.Child:pos.Child], parent.Children[pos.Child+1:]...)
	return nil
}

// cloneThread copies a top-level post and strips grandchildren.
func cloneThread(post blogen.Post) blogen.Post {
	dup := post.Clone()
	for i := range dup.Children {
		dup.Children[i].Children = nil
	}
	return dup
}

// cloneChild copies a reply; replies never carry children.
func cloneChild(post blogen.Post) blogen.Post {
	dup := post.Clone()
	dup.Children = nil
	return dup
}

func clonePosts(posts []blogen.Post) []blogen.Post {
	if len(posts) == 0 {
		return nil
	}
	dup := make([]blogen.Post, len(posts))
	for i := range posts {
		dup[i] = posts[i].Clone()
	}
	return dup
}
