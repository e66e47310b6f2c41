package blogen_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RachelRYuan/Blogen/internal/blogen"
	"github.com/RachelRYuan/Blogen/internal/blogen/blogentest"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type mutableToken struct{ value string }

func (m *mutableToken) Token() string { return m.value }

func newContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClient_SendsHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"avatars":["a.jpg"]}`))
	}))
	t.Cleanup(server.Close)

	tokens := &mutableToken{}
	c, err := blogen.NewClient(server.URL, blogen.WithTokenSource(tokens))
	require.NoError(t, err)

	_, err = c.Avatars(newContext(t))
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
	assert.NotEmpty(t, got.Get("User-Agent"))
	_, present := got["Authorization"]
	assert.False(t, present, "unauthenticated request must not carry Authorization")

	firstID := got.Get("X-Request-ID")
	tokens.value = "tok-123"
	_, err = c.Avatars(newContext(t))
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	assert.NotEqual(t, firstID, got.Get("X-Request-ID"))
}

func TestClient_LoginAndProfile(t *testing.T) {
	t.Parallel()
	backend := blogentest.New(t)
	user := backend.AddUser(blogen.User{UserName: "jdoe", FirstName: "Jane", LastName: "Doe"}, "secret")

	tokens := &mutableToken{}
	c, err := blogen.NewClient(backend.URL(), blogen.WithTokenSource(tokens))
	require.NoError(t, err)
	ctx := newContext(t)

	_, err = c.Login(ctx, "jdoe", "wrong")
	apiErr := blogen.AsAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Code)
	assert.Equal(t, "Bad credentials", apiErr.Message)

	token, err := c.Login(ctx, "jdoe", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = c.AuthenticatedUser(ctx)
	require.Equal(t, http.StatusUnauthorized, blogen.AsAPIError(err).Code)

	tokens.value = token
	me, err := c.AuthenticatedUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, "Jane Doe", me.DisplayName())

	byID, err := c.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", byID.UserName)

	require.NoError(t, c.Logout(ctx))
	_, err = c.AuthenticatedUser(ctx)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, blogen.AsAPIError(err).Code)
}

func TestClient_LoginWithoutAuthorizationHeader(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	c, err := blogen.NewClient(server.URL)
	require.NoError(t, err)
	_, err = c.Login(newContext(t), "a", "b")
	assert.ErrorIs(t, err, blogen.ErrUnexpectedPayload)
}

func TestClient_PostLifecycle(t *testing.T) {
	t.Parallel()
	backend := blogentest.New(t)
	user := backend.AddUser(blogen.User{UserName: "jdoe"}, "secret")
	cat := backend.AddCategory("Business")
	c, err := blogen.NewClient(backend.URL(), blogen.WithTokenSource(staticToken(backend.IssueToken(user.ID, time.Hour))))
	require.NoError(t, err)
	ctx := newContext(t)

	thread, err := c.CreatePost(ctx, blogen.PostRequest{Title: "Hello", Text: "first", CategoryID: cat.ID})
	require.NoError(t, err)
	assert.False(t, thread.IsReply())
	assert.Equal(t, cat.Name, thread.Category.Name)

	reply, err := c.CreateReply(ctx, thread.ID, blogen.PostRequest{Title: "Re", Text: "hi"})
	require.NoError(t, err)
	assert.True(t, reply.IsReply())

	got, err := c.GetPost(ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, got.Children, 1)
	assert.Equal(t, reply.ID, got.Children[0].ID)

	updated, err := c.UpdatePost(ctx, reply.ID, blogen.PostRequest{Title: "Re", Text: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	page, err := c.ListPosts(ctx, blogen.PostQuery{Page: 0, Limit: 5, Category: blogen.AllCategories})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, int64(1), page.PageInfo.TotalElements)
	assert.Equal(t, 5, page.PageInfo.PageSize)

	mine, err := c.PostsByUser(ctx, user.ID, blogen.PostQuery{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, mine.Posts, 1)

	found, err := c.SearchPosts(ctx, "hello", 10)
	require.NoError(t, err)
	assert.Len(t, found.Posts, 1)

	latest, err := c.LatestPosts(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, latest.Posts, 1)

	require.NoError(t, c.DeletePost(ctx, thread.ID))
	_, err = c.GetPost(ctx, thread.ID)
	apiErr := blogen.AsAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Code)
}

func TestClient_MapsValidationAndPermissionErrors(t *testing.T) {
	t.Parallel()
	backend := blogentest.New(t)
	user := backend.AddUser(blogen.User{UserName: "jdoe"}, "secret")
	cat := backend.AddCategory("Tech")
	c, err := blogen.NewClient(backend.URL(), blogen.WithTokenSource(staticToken(backend.IssueToken(user.ID, time.Hour))))
	require.NoError(t, err)
	ctx := newContext(t)

	_, err = c.CreatePost(ctx, blogen.PostRequest{Text: "no title", CategoryID: cat.ID})
	apiErr := blogen.AsAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Code)
	assert.Equal(t, "title: must not be empty", apiErr.Message)

	_, err = c.CreateCategory(ctx, blogen.CategoryRequest{Name: "Nope"})
	apiErr = blogen.AsAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Code)

	backend.Fail(http.MethodGet, "/api/v1/posts", http.StatusInternalServerError, nil)
	_, err = c.ListPosts(ctx, blogen.PostQuery{})
	apiErr = blogen.AsAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, "unexpected error response (status 500)", apiErr.Message)
}

func TestClient_Categories(t *testing.T) {
	t.Parallel()
	backend := blogentest.New(t)
	admin := backend.AddUser(blogen.User{UserName: "admin", Roles: []string{"USER", "ADMIN"}}, "secret")
	backend.AddCategory("Business")
	c, err := blogen.NewClient(backend.URL(), blogen.WithTokenSource(staticToken(backend.IssueToken(admin.ID, time.Hour))))
	require.NoError(t, err)
	ctx := newContext(t)

	created, err := c.CreateCategory(ctx, blogen.CategoryRequest{Name: "Web Development"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.CategoryURL)

	renamed, err := c.UpdateCategory(ctx, created.ID, blogen.CategoryRequest{Name: "Web Dev"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, renamed.ID)
	assert.Equal(t, "Web Dev", renamed.Name)

	one, err := c.GetCategory(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Web Dev", one.Name)

	list, err := c.ListCategories(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, list.Categories, 2)
	require.NotNil(t, list.PageInfo)
	assert.Equal(t, int64(2), list.PageInfo.TotalElements)
}

func TestClient_UserNameExists(t *testing.T) {
	t.Parallel()
	backend := blogentest.New(t)
	backend.AddUser(blogen.User{UserName: "taken"}, "secret")
	c, err := blogen.NewClient(backend.URL())
	require.NoError(t, err)
	ctx := newContext(t)

	exists, err := c.UserNameExists(ctx, "taken")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.UserNameExists(ctx, "free")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = c.UserNameExists(ctx, "tak/en")
	require.NoError(t, err)
	assert.False(t, exists)

	odd := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"maybe"`))
	}))
	t.Cleanup(odd.Close)
	c2, err := blogen.NewClient(odd.URL)
	require.NoError(t, err)
	_, err = c2.UserNameExists(ctx, "x")
	assert.ErrorIs(t, err, blogen.ErrUnexpectedPayload)
}

func TestClient_EscapesUserTextInPath(t *testing.T) {
	t.Parallel()

	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		if strings.HasPrefix(r.URL.Path, "/api/v1/auth/username/") {
			_, _ = w.Write([]byte(`false`))
			return
		}
		_, _ = w.Write([]byte(`{"posts":[]}`))
	}))
	t.Cleanup(server.Close)

	c, err := blogen.NewClient(server.URL, blogen.WithTokenSource(staticToken("tok")))
	require.NoError(t, err)
	ctx := newContext(t)

	_, err = c.SearchPosts(ctx, "../../users/authenticate", 0)
	require.NoError(t, err)
	_, err = c.SearchPosts(ctx, "a/b", 5)
	require.NoError(t, err)
	_, err = c.SearchPosts(ctx, "..", 0)
	require.NoError(t, err)
	_, err = c.UserNameExists(ctx, "../../posts")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/v1/posts/search/..%2F..%2Fusers%2Fauthenticate",
		"/api/v1/posts/search/a%2Fb",
		"/api/v1/posts/search/%2E%2E",
		"/api/v1/auth/username/..%2F..%2Fposts",
	}, paths)
}

func TestClient_SignupAndAvatars(t *testing.T) {
	t.Parallel()
	backend := blogentest.New(t)
	c, err := blogen.NewClient(backend.URL())
	require.NoError(t, err)
	ctx := newContext(t)

	user, err := c.Signup(ctx, blogen.SignupRequest{UserName: "newbie", Email: "n@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	token, err := c.Login(ctx, "newbie", "pw")
	require.NoError(t, err)
	authed, err := blogen.NewClient(backend.URL(), blogen.WithTokenSource(staticToken(token)))
	require.NoError(t, err)
	avatars, err := authed.Avatars(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, avatars)
}

func TestClient_TransportError(t *testing.T) {
	t.Parallel()
	backend := blogentest.New(t)
	c, err := blogen.NewClient(backend.URL(), blogen.WithTimeout(time.Second))
	require.NoError(t, err)
	backend.Close()

	_, err = c.ListPosts(newContext(t), blogen.PostQuery{})
	require.Error(t, err)
	assert.True(t, blogen.IsTransport(err))
	assert.Nil(t, blogen.AsAPIError(err))
}

func TestClient_RespectsContextCancellation(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	c, err := blogen.NewClient(server.URL)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.ListCategories(ctx, 0, 10)
	require.Error(t, err)
	assert.True(t, blogen.IsTransport(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
