// Package actions pairs each remote call with the cache mutation that
// mirrors it. The caches change only after the server has confirmed a
// write; a failed call leaves them exactly as they were.
package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/RachelRYuan/Blogen/internal/blogen"
	"github.com/RachelRYuan/Blogen/internal/state"
)

// Remote is the part of the Blogen API the actions drive.
type Remote interface {
	ListPosts(ctx context.Context, query blogen.PostQuery) (blogen.PostList, error)
	PostsByUser(ctx context.Context, userID int64, query blogen.PostQuery) (blogen.PostList, error)
	SearchPosts(ctx context.Context, text string, limit int) (blogen.PostList, error)
	CreatePost(ctx context.Context, req blogen.PostRequest) (blogen.Post, error)
	CreateReply(ctx context.Context, parentID int64, req blogen.PostRequest) (blogen.Post, error)
	UpdatePost(ctx context.Context, id int64, req blogen.PostRequest) (blogen.Post, error)
	DeletePost(ctx context.Context, id int64) error
	ListCategories(ctx context.Context, page, limit int) (blogen.CategoryList, error)
	CreateCategory(ctx context.Context, req blogen.CategoryRequest) (blogen.Category, error)
	UpdateCategory(ctx context.Context, id int64, req blogen.CategoryRequest) (blogen.Category, error)
	UserByID(ctx context.Context, id int64) (blogen.User, error)
	Avatars(ctx context.Context) ([]string, error)
}

var _ Remote = (*blogen.Client)(nil)

// Route names a view the UI can be sent to.
type Route string

// RouteLogin is the login view.
const RouteLogin Route = "login"

// Navigator receives status-driven redirects.
type Navigator interface {
	Redirect(route Route, message string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route Route, message string)

// Redirect calls f.
func (f NavigatorFunc) Redirect(route Route, message string) { f(route, message) }

type nopNavigator struct{}

func (nopNavigator) Redirect(Route, string) {}

const (
	defaultPageSize         = 5
	defaultCategoryPageSize = 20
	defaultUserCacheSize    = 128
	defaultUserCacheTTL     = 5 * time.Minute
)

// Options tunes an Actions instance.
type Options struct {
	PageSize         int
	CategoryPageSize int
	UserCacheSize    int
	UserCacheTTL     time.Duration
	Navigator        Navigator
	Logger           *zap.Logger
}

type listingKind int

const (
	listByCategory listingKind = iota
	listByUser
	listSearch
)

// listing remembers the last page request so it can be re-run.
type listing struct {
	kind     listingKind
	page     int
	category int64
	userID   int64
	text     string
	limit    int
}

// Actions orchestrates remote calls and cache updates.
type Actions struct {
	remote     Remote
	posts      *state.Store
	categories *state.CategoryStore
	nav        Navigator
	users      *expirable.LRU[int64, blogen.User]
	logger     *zap.Logger

	pageSize         int
	categoryPageSize int

	mu         sync.Mutex
	current    listing
	generation uint64
	avatars    []string
}

// New wires actions over the given caches.
func New(remote Remote, posts *state.Store, categories *state.CategoryStore, opts Options) *Actions {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.CategoryPageSize <= 0 {
		opts.CategoryPageSize = defaultCategoryPageSize
	}
	if opts.UserCacheSize <= 0 {
		opts.UserCacheSize = defaultUserCacheSize
	}
	if opts.UserCacheTTL <= 0 {
		opts.UserCacheTTL = defaultUserCacheTTL
	}
	if opts.Navigator == nil {
		opts.Navigator = nopNavigator{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Actions{
		remote:           remote,
		posts:            posts,
		categories:       categories,
		nav:              opts.Navigator,
		users:            expirable.NewLRU[int64, blogen.User](opts.UserCacheSize, nil, opts.UserCacheTTL),
		logger:           opts.Logger.With(zap.String("component", "actions")),
		pageSize:         opts.PageSize,
		categoryPageSize: opts.CategoryPageSize,
		current:          listing{kind: listByCategory, category: blogen.AllCategories},
	}
}

// Posts exposes the post tree cache.
func (a *Actions) Posts() *state.Store { return a.posts }

// Categories exposes the category cache.
func (a *Actions) Categories() *state.CategoryStore { return a.categories }

// PageSize is the number of threads requested per page.
func (a *Actions) PageSize() int { return a.pageSize }

// ListPosts loads a page of threads for a category (AllCategories for all)
// and replaces the cached page.
func (a *Actions) ListPosts(ctx context.Context, page int, categoryID int64) error {
	return a.load(ctx, listing{kind: listByCategory, page: page, category: categoryID})
}

// ListPostsByUser loads a page of one user's threads.
func (a *Actions) ListPostsByUser(ctx context.Context, userID int64, page int, categoryID int64) error {
	return a.load(ctx, listing{kind: listByUser, userID: userID, page: page, category: categoryID})
}

// SearchPosts replaces the cached page with search results. The server
// returns no paging for searches, so the page info describes a single page.
func (a *Actions) SearchPosts(ctx context.Context, text string, limit int) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("search posts: empty search text")
	}
	if limit <= 0 {
		limit = a.pageSize
	}
	return a.load(ctx, listing{kind: listSearch, text: text, limit: limit})
}

// GoToPage re-runs the current listing for another page number.
func (a *Actions) GoToPage(ctx context.Context, page int) error {
	if page < 0 {
		page = 0
	}
	a.mu.Lock()
	l := a.current
	a.mu.Unlock()
	if l.kind == listSearch {
		return nil
	}
	l.page = page
	return a.load(ctx, l)
}

// Refresh re-runs the current listing. Failures are recorded on the post
// store so the UI can show the page as stale. A refresh that finishes after
// the user started another listing is dropped, error or not.
func (a *Actions) Refresh(ctx context.Context) error {
	a.mu.Lock()
	l, gen := a.current, a.generation
	a.mu.Unlock()

	list, op, err := a.fetch(ctx, l)

	a.mu.Lock()
	if gen != a.generation {
		a.mu.Unlock()
		a.logger.Debug("refresh superseded", zap.String("op", op))
		return nil
	}
	if err == nil {
		a.commit(op, l, list)
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()

	err = a.fail(op, err)
	a.posts.RecordError(err)
	return err
}

// CurrentCategory is the category filter of the current listing.
func (a *Actions) CurrentCategory() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current.category
}

// load runs a listing the user asked for. Its generation bumps at start and
// at commit, so any refresh in flight over either edge is superseded.
func (a *Actions) load(ctx context.Context, l listing) error {
	a.mu.Lock()
	a.generation++
	a.mu.Unlock()

	list, op, err := a.fetch(ctx, l)
	if err != nil {
		return a.fail(op, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	a.commit(op, l, list)
	return nil
}

func (a *Actions) fetch(ctx context.Context, l listing) (blogen.PostList, string, error) {
	query := blogen.PostQuery{Page: l.page, Limit: a.pageSize, Category: l.category}
	switch l.kind {
	case listByUser:
		list, err := a.remote.PostsByUser(ctx, l.userID, query)
		return list, "list posts by user", err
	case listSearch:
		list, err := a.remote.SearchPosts(ctx, l.text, l.limit)
		if err == nil {
			list.PageInfo = blogen.PageInfo{
				TotalElements: int64(len(list.Posts)),
				TotalPages:    1,
				PageNumber:    0,
				PageSize:      l.limit,
			}
		}
		return list, "search posts", err
	default:
		list, err := a.remote.ListPosts(ctx, query)
		return list, "list posts", err
	}
}

// commit replaces the cached page and remembers l. Callers hold a.mu.
func (a *Actions) commit(op string, l listing, list blogen.PostList) {
	a.posts.ReplacePage(list.Posts, list.PageInfo)
	a.current = l
	a.logger.Debug("page loaded",
		zap.String("op", op),
		zap.Int("page", list.PageInfo.PageNumber),
		zap.Int("posts", len(list.Posts)),
	)
}

// CreatePost creates a thread when parentID is zero and a reply to
// parentID otherwise, then inserts the server's copy into the cached page.
// A reply whose thread is not on the cached page is created but not cached.
func (a *Actions) CreatePost(ctx context.Context, parentID int64, req blogen.PostRequest) (blogen.Post, error) {
	var (
		created blogen.Post
		err     error
	)
	if parentID == 0 {
		created, err = a.remote.CreatePost(ctx, req)
	} else {
		created, err = a.remote.CreateReply(ctx, parentID, req)
	}
	if err != nil {
		return blogen.Post{}, a.fail("create post", err)
	}

	var m state.Mutation = state.PrependTopLevel{Post: created}
	if parentID != 0 {
		m = state.PrependChild{ParentID: parentID, Post: created}
	}
	a.applyConfirmed("create post", m)
	return created, nil
}

// UpdatePost saves new content for a post and swaps the cached copy.
func (a *Actions) UpdatePost(ctx context.Context, id int64, req blogen.PostRequest) (blogen.Post, error) {
	updated, err := a.remote.UpdatePost(ctx, id, req)
	if err != nil {
		return blogen.Post{}, a.fail("update post", err)
	}
	replacement := updated
	replacement.ID = id
	a.applyConfirmed("update post", state.ReplaceByID{Post: replacement})
	return updated, nil
}

// DeletePost deletes a post and drops it from the cached page.
func (a *Actions) DeletePost(ctx context.Context, id int64) error {
	if err := a.remote.DeletePost(ctx, id); err != nil {
		return a.fail("delete post", err)
	}
	a.applyConfirmed("delete post", state.RemoveByID{ID: id})
	return nil
}

// applyConfirmed mirrors a confirmed write into the cache. A target that
// has left the cached page is not an error for the caller.
func (a *Actions) applyConfirmed(op string, m state.Mutation) {
	if err := a.posts.Apply(m); err != nil {
		if errors.Is(err, state.ErrNotFound) || errors.Is(err, state.ErrNotThread) {
			a.logger.Debug("confirmed write not reflected in cached page", zap.String("op", op), zap.Error(err))
			return
		}
		a.logger.Warn("cache mutation failed", zap.String("op", op), zap.Error(err))
	}
}

// ListCategories loads a page of categories into the category cache.
func (a *Actions) ListCategories(ctx context.Context, page int) error {
	list, err := a.remote.ListCategories(ctx, page, a.categoryPageSize)
	if err != nil {
		return a.fail("list categories", err)
	}
	a.categories.Set(list.Categories, list.PageInfo)
	return nil
}

// CreateCategory adds a category and appends it to the cache.
func (a *Actions) CreateCategory(ctx context.Context, name string) (blogen.Category, error) {
	created, err := a.remote.CreateCategory(ctx, blogen.CategoryRequest{Name: name})
	if err != nil {
		return blogen.Category{}, a.fail("create category", err)
	}
	a.categories.Append(created)
	return created, nil
}

// UpdateCategory renames a category and swaps the cached entry.
func (a *Actions) UpdateCategory(ctx context.Context, id int64, name string) (blogen.Category, error) {
	updated, err := a.remote.UpdateCategory(ctx, id, blogen.CategoryRequest{ID: id, Name: name})
	if err != nil {
		return blogen.Category{}, a.fail("update category", err)
	}
	if err := a.categories.ReplaceByID(updated); err != nil {
		a.logger.Debug("updated category not cached", zap.Int64("id", id))
	}
	return updated, nil
}

// FetchAvatars loads the avatar file names users may choose from.
func (a *Actions) FetchAvatars(ctx context.Context) ([]string, error) {
	avatars, err := a.remote.Avatars(ctx)
	if err != nil {
		return nil, a.fail("fetch avatars", err)
	}
	a.mu.Lock()
	a.avatars = append([]string(nil), avatars...)
	a.mu.Unlock()
	return avatars, nil
}

// Avatars returns the last fetched avatar list.
func (a *Actions) Avatars() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.avatars...)
}

// FetchUserInfo returns a user's public profile, served from a short-lived
// cache when possible. Errors are returned without redirecting.
func (a *Actions) FetchUserInfo(ctx context.Context, id int64) (blogen.User, error) {
	if user, ok := a.users.Get(id); ok {
		return user, nil
	}
	user, err := a.remote.UserByID(ctx, id)
	if err != nil {
		a.logFailure("fetch user info", err)
		return blogen.User{}, fmt.Errorf("fetch user info: %w", err)
	}
	a.users.Add(id, user)
	return user, nil
}

// fail applies the status-driven redirect, logs, and wraps err.
func (a *Actions) fail(op string, err error) error {
	if apiErr := blogen.AsAPIError(err); apiErr != nil {
		if msg, ok := blogen.RedirectMessage(apiErr.Code); ok {
			a.nav.Redirect(RouteLogin, msg)
		}
	}
	a.logFailure(op, err)
	return fmt.Errorf("%s: %w", op, err)
}

func (a *Actions) logFailure(op string, err error) {
	switch {
	case blogen.IsTransport(err):
		a.logger.Warn("no response from server", zap.String("op", op), zap.Error(err))
	case blogen.AsAPIError(err) != nil:
		apiErr := blogen.AsAPIError(err)
		a.logger.Info("api error", zap.String("op", op), zap.Int("status", apiErr.Code), zap.String("message", apiErr.Message))
	default:
		a.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	}
}
