package state

import (
	"fmt"

	"github.com/RachelRYuan/Blogen/internal/blogen"
)

// Mutation is a change to the post tree cache. The set is closed: only the
// types in this file implement it.
type Mutation interface {
	apply(s *Store) error
}

// ReplacePage installs a freshly fetched page.
type ReplacePage struct {
	Posts    []blogen.Post
	PageInfo blogen.PageInfo
}

func (m ReplacePage) apply(s *Store) error {
	s.replacePage(m.Posts, m.PageInfo)
	return nil
}

// PrependTopLevel adds a newly created thread at index 0.
type PrependTopLevel struct {
	Post blogen.Post
}

func (m PrependTopLevel) apply(s *Store) error {
	s.prependTopLevel(m.Post)
	return nil
}

// PrependChild adds a newly created reply to the front of the thread with
// id ParentID.
type PrependChild struct {
	ParentID int64
	Post     blogen.Post
}

func (m PrependChild) apply(s *Store) error {
	pos, ok := locate(s.posts, m.ParentID)
	if !ok {
		return fmt.Errorf("prepend reply to %d: %w", m.ParentID, ErrNotFound)
	}
	if !pos.TopLevel() {
		return fmt.Errorf("prepend reply to %d: %w", m.ParentID, ErrNotThread)
	}
	return s.prependChild(pos.Parent, m.Post)
}

// ReplaceByID overwrites the cached post whose id matches Post.ID.
type ReplaceByID struct {
	Post blogen.Post
}

func (m ReplaceByID) apply(s *Store) error {
	pos, ok := locate(s.posts, m.Post.ID)
	if !ok {
		return fmt.Errorf("replace post %d: %w", m.Post.ID, ErrNotFound)
	}
	return s.replaceAt(pos, m.Post)
}

// RemoveByID deletes the cached post with the given id.
type RemoveByID struct {
	ID int64
}

func (m RemoveByID) apply(s *Store) error {
	pos, ok := locate(s.posts, m.ID)
	if !ok {
		return fmt.Errorf("remove post %d: %w", m.ID, ErrNotFound)
	}
	return s.removeAt(pos)
}
