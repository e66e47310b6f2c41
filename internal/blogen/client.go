package blogen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/RachelRYuan/Blogen/internal/telemetry"
)

// TokenSource supplies the bearer token attached to outgoing requests. An
// empty token means the request is sent without an Authorization header.
type TokenSource interface {
	Token() string
}

// Client talks to the Blogen REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	tokens    TokenSource
	logger    *zap.Logger
}

const (
	defaultAPIURL    = "http://localhost:8080"
	defaultUserAgent = "blogen-tui/0.1"
	defaultTimeout   = 10 * time.Second
	maxBodyBytes     = 4 << 20
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout of the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithTokenSource attaches a bearer token provider.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.With(zap.String("component", "blogen-client"))
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client for the API rooted at apiURL.
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Login posts the credentials to /login/form and returns the bearer token
// from the Authorization response header.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	header, err := c.do(ctx, "login", http.MethodPost, "/login/form", body, nil)
	if err != nil {
		return "", err
	}
	token, ok := bearerToken(header.Get("Authorization"))
	if !ok {
		return "", fmt.Errorf("login: missing bearer token: %w", ErrUnexpectedPayload)
	}
	return token, nil
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, "logout", http.MethodGet, "/logout", nil, nil)
	return err
}

// AuthenticatedUser returns the profile of the token's owner.
func (c *Client) AuthenticatedUser(ctx context.Context) (User, error) {
	var user User
	if _, err := c.do(ctx, "users.authenticate", http.MethodGet, "/api/v1/users/authenticate", nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// UserByID returns the public profile of a user.
func (c *Client) UserByID(ctx context.Context, id int64) (User, error) {
	var user User
	if _, err := c.do(ctx, "users.get", http.MethodGet, "/api/v1/users/"+strconv.FormatInt(id, 10), nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// UserNameExists reports whether a user name is already taken.
func (c *Client) UserNameExists(ctx context.Context, name string) (bool, error) {
	var raw json.RawMessage
	rel := segmentURL("/api/v1/auth/username/", name)
	if _, err := c.doURL(ctx, "auth.username", http.MethodGet, rel, nil, &raw); err != nil {
		return false, err
	}
	switch strings.TrimSpace(string(raw)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("username check returned %q: %w", string(raw), ErrUnexpectedPayload)
}

// Signup registers a new user.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (User, error) {
	var user User
	if _, err := c.do(ctx, "auth.signup", http.MethodPost, "/api/v1/auth/signup", req, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Avatars lists the avatar file names users may pick from.
func (c *Client) Avatars(ctx context.Context) ([]string, error) {
	var payload AvatarList
	if _, err := c.do(ctx, "userprefs.avatars", http.MethodGet, "/api/v1/userPrefs/avatars", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Avatars, nil
}

// ListPosts fetches a page of top-level posts with their replies.
func (c *Client) ListPosts(ctx context.Context, query PostQuery) (PostList, error) {
	rel := &url.URL{Path: "/api/v1/posts", RawQuery: query.values().Encode()}
	var payload PostList
	if _, err := c.doURL(ctx, "posts.list", http.MethodGet, rel, nil, &payload); err != nil {
		return PostList{}, err
	}
	return payload, nil
}

// PostsByUser fetches a page of posts authored by a user.
func (c *Client) PostsByUser(ctx context.Context, userID int64, query PostQuery) (PostList, error) {
	rel := &url.URL{
		Path:     "/api/v1/users/" + strconv.FormatInt(userID, 10) + "/posts",
		RawQuery: query.values().Encode(),
	}
	var payload PostList
	if _, err := c.doURL(ctx, "users.posts", http.MethodGet, rel, nil, &payload); err != nil {
		return PostList{}, err
	}
	return payload, nil
}

// GetPost fetches a single post by id.
func (c *Client) GetPost(ctx context.Context, id int64) (Post, error) {
	var post Post
	if _, err := c.do(ctx, "posts.get", http.MethodGet, postPath(id), nil, &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

// SearchPosts performs a full-text search over posts.
func (c *Client) SearchPosts(ctx context.Context, text string, limit int) (PostList, error) {
	if strings.TrimSpace(text) == "" {
		return PostList{}, fmt.Errorf("search text required")
	}
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	rel := segmentURL("/api/v1/posts/search/", text)
	rel.RawQuery = values.Encode()
	var payload PostList
	if _, err := c.doURL(ctx, "posts.search", http.MethodGet, rel, nil, &payload); err != nil {
		return PostList{}, err
	}
	return payload, nil
}

// LatestPosts returns the newest posts; the endpoint is public.
func (c *Client) LatestPosts(ctx context.Context, limit int) (PostList, error) {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	rel := &url.URL{Path: "/api/v1/auth/latestPosts", RawQuery: values.Encode()}
	var payload PostList
	if _, err := c.doURL(ctx, "auth.latest", http.MethodGet, rel, nil, &payload); err != nil {
		return PostList{}, err
	}
	return payload, nil
}

// CreatePost starts a new thread.
func (c *Client) CreatePost(ctx context.Context, req PostRequest) (Post, error) {
	var post Post
	if _, err := c.do(ctx, "posts.create", http.MethodPost, "/api/v1/posts", req, &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

// CreateReply adds a reply under parentID.
func (c *Client) CreateReply(ctx context.Context, parentID int64, req PostRequest) (Post, error) {
	var post Post
	if _, err := c.do(ctx, "posts.reply", http.MethodPost, postPath(parentID), req, &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

// UpdatePost replaces the content of a post.
func (c *Client) UpdatePost(ctx context.Context, id int64, req PostRequest) (Post, error) {
	var post Post
	if _, err := c.do(ctx, "posts.update", http.MethodPut, postPath(id), req, &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

// DeletePost removes a post (and, for a thread, all of its replies).
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	_, err := c.do(ctx, "posts.delete", http.MethodDelete, postPath(id), nil, nil)
	return err
}

// ListCategories fetches a page of categories.
func (c *Client) ListCategories(ctx context.Context, page, limit int) (CategoryList, error) {
	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	rel := &url.URL{Path: "/api/v1/categories", RawQuery: values.Encode()}
	var payload CategoryList
	if _, err := c.doURL(ctx, "categories.list", http.MethodGet, rel, nil, &payload); err != nil {
		return CategoryList{}, err
	}
	return payload, nil
}

// GetCategory fetches one category.
func (c *Client) GetCategory(ctx context.Context, id int64) (Category, error) {
	var cat Category
	if _, err := c.do(ctx, "categories.get", http.MethodGet, categoryPath(id), nil, &cat); err != nil {
		return Category{}, err
	}
	return cat, nil
}

// CreateCategory adds a category (admin only).
func (c *Client) CreateCategory(ctx context.Context, req CategoryRequest) (Category, error) {
	var cat Category
	if _, err := c.do(ctx, "categories.create", http.MethodPost, "/api/v1/categories", req, &cat); err != nil {
		return Category{}, err
	}
	return cat, nil
}

// UpdateCategory renames a category (admin only).
func (c *Client) UpdateCategory(ctx context.Context, id int64, req CategoryRequest) (Category, error) {
	req.ID = id
	var cat Category
	if _, err := c.do(ctx, "categories.update", http.MethodPut, categoryPath(id), req, &cat); err != nil {
		return Category{}, err
	}
	return cat, nil
}

func (q PostQuery) values() url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	category := q.Category
	if category == 0 {
		category = AllCategories
	}
	values.Set("category", strconv.FormatInt(category, 10))
	return values
}

func postPath(id int64) string {
	return "/api/v1/posts/" + strconv.FormatInt(id, 10)
}

func categoryPath(id int64) string {
	return "/api/v1/categories/" + strconv.FormatInt(id, 10)
}

// segmentURL appends value to prefix as a single escaped path segment, so
// slashes and dot segments in user text never change the endpoint.
func segmentURL(prefix, value string) *url.URL {
	escaped := url.PathEscape(value)
	if escaped == "." || escaped == ".." {
		escaped = strings.ReplaceAll(escaped, ".", "%2E")
	}
	return &url.URL{Path: prefix + value, RawPath: prefix + escaped}
}

func (c *Client) do(ctx context.Context, op, method, path string, body, dest any) (http.Header, error) {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, op, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, op, method string, rel *url.URL, body, dest any) (http.Header, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	ctx, span := telemetry.StartSpan(ctx, "blogen."+op)
	defer span.End()

	reqURL := c.baseURL.ResolveReference(rel)
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", rel.Path),
		attribute.String("request.id", requestID),
	)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return nil, &TransportError{Op: method + " " + rel.Path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: "read " + rel.Path, Err: err}
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.logger.Debug("api request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", rel.Path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := MapError(resp.StatusCode, payload)
		span.SetStatus(codes.Error, apiErr.Message)
		return resp.Header, apiErr
	}
	if dest == nil {
		return resp.Header, nil
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return resp.Header, fmt.Errorf("decode response: empty body: %w", ErrUnexpectedPayload)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return resp.Header, fmt.Errorf("decode response: %w", err)
	}
	return resp.Header, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", apiURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
