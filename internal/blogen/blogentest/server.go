// Package blogentest runs an in-memory Blogen backend for tests.
package blogentest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/RachelRYuan/Blogen/internal/blogen"
)

const defaultLimit = 5

type userRecord struct {
	user blogen.User
	hash []byte
}

type postRecord struct {
	post     blogen.Post
	parentID int64
}

type failure struct {
	status int
	body   any
}

// Server is a fake Blogen API backed by gin.
type Server struct {
	mu         sync.Mutex
	secret     []byte
	users      map[int64]*userRecord
	posts      map[int64]*postRecord
	categories []blogen.Category
	avatars    []string
	revoked    map[string]bool
	failures   map[string][]failure
	calls      map[string]int
	nextUser   int64
	nextPost   int64
	nextCat    int64
	clock      time.Time

	engine *gin.Engine
	http   *httptest.Server
}

// New starts a fake backend; it is closed when the test finishes.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		secret:   []byte("blogentest-secret"),
		users:    make(map[int64]*userRecord),
		posts:    make(map[int64]*postRecord),
		avatars:  []string{"avatar1.jpg", "avatar2.jpg", "avatar3.jpg"},
		revoked:  make(map[string]bool),
		failures: make(map[string][]failure),
		calls:    make(map[string]int),
		clock:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	s.engine = gin.New()
	s.engine.UseRawPath = true
	s.engine.Use(s.record)
	s.routes()
	s.http = httptest.NewServer(s.engine)
	t.Cleanup(s.http.Close)
	return s
}

// URL is the base URL of the fake backend.
func (s *Server) URL() string {
	return s.http.URL
}

// Close stops the backend early, so later requests fail at the transport.
func (s *Server) Close() {
	s.http.Close()
}

// AddUser registers a user with the given password and returns it with its
// assigned id.
func (s *Server) AddUser(u blogen.User, password string) blogen.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	u.ID = s.nextUser
	u.UserURL = fmt.Sprintf("%s/api/v1/users/%d", s.http.URL, u.ID)
	if u.Roles == nil {
		u.Roles = []string{"USER"}
	}
	s.users[u.ID] = &userRecord{user: u, hash: hash}
	return u
}

// AddCategory creates a category.
func (s *Server) AddCategory(name string) blogen.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCategoryLocked(name)
}

// AddPost creates a top-level post authored by userID.
func (s *Server) AddPost(userID, categoryID int64, title, text string) blogen.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPostLocked(userID, categoryID, 0, blogen.PostRequest{Title: title, Text: text, CategoryID: categoryID})
}

// AddReply creates a reply under parentID.
func (s *Server) AddReply(parentID, userID int64, title, text string) blogen.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent := s.posts[parentID]
	categoryID := int64(0)
	if parent != nil {
		categoryID = parent.post.Category.ID
	}
	return s.addPostLocked(userID, categoryID, parentID, blogen.PostRequest{Title: title, Text: text, CategoryID: categoryID})
}

// Post returns a post, with replies for a thread, as the API would.
func (s *Server) Post(id int64) (blogen.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.posts[id]
	if !ok {
		return blogen.Post{}, false
	}
	return s.dtoLocked(rec), true
}

// IssueToken mints a bearer token for userID valid for ttl. A negative ttl
// yields an already expired token.
func (s *Server) IssueToken(userID int64, ttl time.Duration) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return token
}

// Fail makes the next request matching method and path answer with status
// and body instead of reaching its handler. Failures queue in order.
func (s *Server) Fail(method, path string, status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, body: body})
}

// Calls reports how many requests hit method and path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// GlobalError builds an error body in the backend's globalError shape.
func GlobalError(message string) gin.H {
	return gin.H{"globalError": []gin.H{{"message": message}}}
}

// FieldError builds an error body in the backend's fieldError shape.
func FieldError(field, message string) gin.H {
	return gin.H{"fieldError": []gin.H{{"field": field, "message": message, "rejectedValue": ""}}}
}

func (s *Server) record(c *gin.Context) {
	key := c.Request.Method + " " + c.Request.URL.Path
	s.mu.Lock()
	s.calls[key]++
	queued := s.failures[key]
	var injected *failure
	if len(queued) > 0 {
		injected = &queued[0]
		s.failures[key] = queued[1:]
	}
	s.mu.Unlock()

	if injected != nil {
		if injected.body == nil {
			c.Status(injected.status)
		} else {
			c.JSON(injected.status, injected.body)
		}
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) routes() {
	s.engine.POST("/login/form", s.login)
	s.engine.GET("/logout", s.logout)

	public := s.engine.Group("/api/v1/auth")
	public.GET("/username/:name", s.usernameExists)
	public.POST("/signup", s.signup)
	public.GET("/latestPosts", s.latestPosts)

	api := s.engine.Group("/api/v1", s.authenticate)
	api.GET("/users/authenticate", s.authenticatedUser)
	api.GET("/users/:id", s.userByID)
	api.GET("/users/:id/posts", s.postsByUser)
	api.GET("/userPrefs/avatars", s.listAvatars)

	api.GET("/posts", s.listPosts)
	api.POST("/posts", s.createPost)
	api.GET("/posts/search/:text", s.searchPosts)
	api.GET("/posts/:id", s.getPost)
	api.POST("/posts/:id", s.createReply)
	api.PUT("/posts/:id", s.updatePost)
	api.DELETE("/posts/:id", s.deletePost)

	api.GET("/categories", s.listCategories)
	api.POST("/categories", s.requireAdmin, s.createCategory)
	api.GET("/categories/:id", s.getCategory)
	api.PUT("/categories/:id", s.requireAdmin, s.updateCategory)
}

func (s *Server) login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, GlobalError("malformed login request"))
		return
	}
	s.mu.Lock()
	var match *userRecord
	for _, rec := range s.users {
		if rec.user.UserName == body.Username {
			match = rec
			break
		}
	}
	s.mu.Unlock()
	if match == nil || bcrypt.CompareHashAndPassword(match.hash, []byte(body.Password)) != nil {
		c.JSON(http.StatusUnauthorized, GlobalError("Bad credentials"))
		return
	}
	c.Header("Authorization", "Bearer "+s.IssueToken(match.user.ID, time.Hour))
	c.Status(http.StatusOK)
}

func (s *Server) logout(c *gin.Context) {
	if token, ok := bearer(c.GetHeader("Authorization")); ok {
		s.mu.Lock()
		s.revoked[token] = true
		s.mu.Unlock()
	}
	c.Status(http.StatusOK)
}

func (s *Server) authenticate(c *gin.Context) {
	token, ok := bearer(c.GetHeader("Authorization"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, GlobalError("Full authentication is required"))
		return
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, GlobalError("Invalid or expired token"))
		return
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, GlobalError("Invalid token subject"))
		return
	}
	s.mu.Lock()
	revoked := s.revoked[token]
	rec, exists := s.users[userID]
	s.mu.Unlock()
	if revoked || !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, GlobalError("Invalid or expired token"))
		return
	}
	c.Set("user", rec.user)
	c.Next()
}

func (s *Server) requireAdmin(c *gin.Context) {
	if !currentUser(c).HasRole("ADMIN") {
		c.AbortWithStatusJSON(http.StatusForbidden, GlobalError("Access is denied"))
		return
	}
	c.Next()
}

func (s *Server) authenticatedUser(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) userByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	rec, exists := s.users[id]
	s.mu.Unlock()
	if !exists {
		c.JSON(http.StatusNotFound, GlobalError(fmt.Sprintf("user with id: %d was not found", id)))
		return
	}
	c.JSON(http.StatusOK, rec.user)
}

func (s *Server) usernameExists(c *gin.Context) {
	name := c.Param("name")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if strings.EqualFold(rec.user.UserName, name) {
			c.JSON(http.StatusOK, true)
			return
		}
	}
	c.JSON(http.StatusOK, false)
}

func (s *Server) signup(c *gin.Context) {
	var req blogen.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GlobalError("malformed signup request"))
		return
	}
	if strings.TrimSpace(req.UserName) == "" {
		c.JSON(http.StatusUnprocessableEntity, FieldError("userName", "must not be empty"))
		return
	}
	s.mu.Lock()
	for _, rec := range s.users {
		if strings.EqualFold(rec.user.UserName, req.UserName) {
			s.mu.Unlock()
			c.JSON(http.StatusConflict, GlobalError("user name already exists"))
			return
		}
	}
	s.mu.Unlock()
	user := s.AddUser(blogen.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		UserName:    req.UserName,
		Email:       req.Email,
		AvatarImage: req.AvatarImage,
	}, req.Password)
	c.JSON(http.StatusCreated, user)
}

func (s *Server) listAvatars(c *gin.Context) {
	c.JSON(http.StatusOK, blogen.AvatarList{Avatars: append([]string(nil), s.avatars...)})
}

func (s *Server) listPosts(c *gin.Context) {
	page, limit, category := pageParams(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.pageLocked(func(p *postRecord) bool {
		return category == blogen.AllCategories || p.post.Category.ID == category
	}, page, limit))
}

func (s *Server) postsByUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	page, limit, category := pageParams(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[id]; !exists {
		c.JSON(http.StatusNotFound, GlobalError(fmt.Sprintf("user with id: %d was not found", id)))
		return
	}
	c.JSON(http.StatusOK, s.pageLocked(func(p *postRecord) bool {
		if p.post.User.ID != id {
			return false
		}
		return category == blogen.AllCategories || p.post.Category.ID == category
	}, page, limit))
}

func (s *Server) latestPosts(c *gin.Context) {
	limit := queryInt(c, "limit", defaultLimit)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.pageLocked(func(*postRecord) bool { return true }, 0, limit))
}

func (s *Server) searchPosts(c *gin.Context) {
	text := strings.ToLower(c.Param("text"))
	limit := queryInt(c, "limit", defaultLimit)
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := make([]blogen.Post, 0)
	for _, rec := range s.sortedLocked(func(p *postRecord) bool {
		return strings.Contains(strings.ToLower(p.post.Title), text) ||
			strings.Contains(strings.ToLower(p.post.Text), text)
	}) {
		if len(matches) == limit {
			break
		}
		matches = append(matches, s.dtoLocked(rec))
	}
	c.JSON(http.StatusOK, blogen.PostList{Posts: matches})
}

func (s *Server) getPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, exists := s.posts[id]
	if !exists {
		c.JSON(http.StatusNotFound, GlobalError(fmt.Sprintf("post with id: %d was not found", id)))
		return
	}
	c.JSON(http.StatusOK, s.dtoLocked(rec))
}

func (s *Server) createPost(c *gin.Context) {
	req, ok := bindPost(c)
	if !ok {
		return
	}
	user := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.categoryExistsLocked(req.CategoryID) {
		c.JSON(http.StatusNotFound, GlobalError(fmt.Sprintf("category with id: %d was not found", req.CategoryID)))
		return
	}
	c.JSON(http.StatusCreated, s.addPostLocked(user.ID, req.CategoryID, 0, req))
}

func (s *Server) createReply(c *gin.Context) {
	parentID, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := bindPost(c)
	if !ok {
		return
	}
	user := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, exists := s.posts[parentID]
	if !exists {
		c.JSON(http.StatusNotFound, GlobalError(fmt.Sprintf("post with id: %d was not found", parentID)))
		return
	}
	if parent.parentID != 0 {
		c.JSON(http.StatusBadRequest, GlobalError("cannot reply to a reply"))
		return
	}
	c.JSON(http.StatusCreated, s.addPostLocked(user.ID, parent.post.Category.ID, parentID, req))
}

func (s *Server) updatePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := bindPost(c)
	if !ok {
		return
	}
	user := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, exists := s.posts[id]
	if !exists {
		c.JSON(http.StatusNotFound, GlobalError(fmt.Sprintf("post with id: %d was not found", id)))
		return
	}
	if rec.post.User.ID != user.ID && !user.HasRole("ADMIN") {
		c.JSON(http.StatusForbidden, GlobalError("Access is denied"))
		return
	}
	rec.post.Title = req.Title
	rec.post.Text = req.Text
	rec.post.ImageURL = req.ImageURL
	if req.CategoryID > 0 && rec.parentID == 0 {
		if cat, found := s.categoryLocked(req.CategoryID); found {
			rec.post.Category = blogen.PostCategory{ID: cat.ID, Name: cat.Name, CategoryURL: cat.CategoryURL}
		}
	}
	c.JSON(http.StatusOK, s.dtoLocked(rec))
}

func (s *Server) deletePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, exists := s.posts[id]
	if !exists {
		c.JSON(http.StatusNotFound, GlobalError(fmt.Sprintf("post with id: %d was not found", id)))
		return
	}
	if rec.post.User.ID != user.ID && !user.HasRole("ADMIN") {
		c.JSON(http.StatusForbidden, GlobalError("Access is denied"))
		return
	}
	delete(s.posts, id)
	for childID, child := range s.posts {
		if child.parentID == id {
			delete(s.posts, childID)
		}
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listCategories(c *gin.Context) {
	page, limit, _ := pageParams(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	total := len(s.categories)
	start, end := pageBounds(total, page, limit)
	cats := append([]blogen.Category{}, s.categories[start:end]...)
	c.JSON(http.StatusOK, blogen.CategoryList{
		Categories: cats,
		PageInfo:   &blogen.PageInfo{TotalElements: int64(total), TotalPages: totalPages(total, limit), PageNumber: page, PageSize: limit},
	})
}

func (s *Server) getCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, found := s.categoryLocked(id)
	if !found {
		c.JSON(http.StatusNotFound, GlobalError(fmt.Sprintf("category with id: %d was not found", id)))
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (s *Server) createCategory(c *gin.Context) {
	var req blogen.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusUnprocessableEntity, FieldError("name", "must not be empty"))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cat := range s.categories {
		if strings.EqualFold(cat.Name, req.Name) {
			c.JSON(http.StatusConflict, GlobalError(fmt.Sprintf("category with name: %s already exists", req.Name)))
			return
		}
	}
	c.JSON(http.StatusCreated, s.addCategoryLocked(req.Name))
}

func (s *Server) updateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req blogen.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusUnprocessableEntity, FieldError("name", "must not be empty"))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories[i].Name = req.Name
			c.JSON(http.StatusOK, s.categories[i])
			return
		}
	}
	c.JSON(http.StatusNotFound, GlobalError(fmt.Sprintf("category with id: %d was not found", id)))
}

func (s *Server) addCategoryLocked(name string) blogen.Category {
	s.nextCat++
	cat := blogen.Category{
		ID:          s.nextCat,
		Name:        name,
		CategoryURL: fmt.Sprintf("%s/api/v1/categories/%d", s.http.URL, s.nextCat),
	}
	s.categories = append(s.categories, cat)
	return cat
}

func (s *Server) categoryLocked(id int64) (blogen.Category, bool) {
	for _, cat := range s.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return blogen.Category{}, false
}

func (s *Server) categoryExistsLocked(id int64) bool {
	_, ok := s.categoryLocked(id)
	return ok
}

func (s *Server) addPostLocked(userID, categoryID, parentID int64, req blogen.PostRequest) blogen.Post {
	s.nextPost++
	s.clock = s.clock.Add(time.Minute)
	post := blogen.Post{
		ID:       s.nextPost,
		Title:    req.Title,
		Text:     req.Text,
		ImageURL: req.ImageURL,
		Created:  s.clock.Format(time.RFC3339),
		PostURL:  fmt.Sprintf("%s/api/v1/posts/%d", s.http.URL, s.nextPost),
		Children: []blogen.Post{},
	}
	if rec, ok := s.users[userID]; ok {
		post.User = blogen.PostUser{ID: rec.user.ID, UserName: rec.user.UserName, UserURL: rec.user.UserURL, AvatarURL: rec.user.AvatarImage}
	}
	if cat, ok := s.categoryLocked(categoryID); ok {
		post.Category = blogen.PostCategory{ID: cat.ID, Name: cat.Name, CategoryURL: cat.CategoryURL}
	}
	if parentID != 0 {
		parentURL := fmt.Sprintf("%s/api/v1/posts/%d", s.http.URL, parentID)
		post.ParentPostURL = &parentURL
	}
	rec := &postRecord{post: post, parentID: parentID}
	s.posts[post.ID] = rec
	return s.dtoLocked(rec)
}

// dtoLocked renders a post with its replies, newest first.
func (s *Server) dtoLocked(rec *postRecord) blogen.Post {
	dto := rec.post.Clone()
	dto.Children = []blogen.Post{}
	if rec.parentID != 0 {
		return dto
	}
	for _, child := range s.sortedLocked(func(p *postRecord) bool { return p.parentID == rec.post.ID }) {
		c := child.post.Clone()
		c.Children = []blogen.Post{}
		dto.Children = append(dto.Children, c)
	}
	return dto
}

func (s *Server) sortedLocked(keep func(*postRecord) bool) []*postRecord {
	out := make([]*postRecord, 0, len(s.posts))
	for _, rec := range s.posts {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].post.ID > out[j].post.ID })
	return out
}

func (s *Server) pageLocked(keep func(*postRecord) bool, page, limit int) blogen.PostList {
	threads := s.sortedLocked(func(p *postRecord) bool { return p.parentID == 0 && keep(p) })
	start, end := pageBounds(len(threads), page, limit)
	posts := make([]blogen.Post, 0, end-start)
	for _, rec := range threads[start:end] {
		posts = append(posts, s.dtoLocked(rec))
	}
	return blogen.PostList{
		Posts: posts,
		PageInfo: blogen.PageInfo{
			TotalElements: int64(len(threads)),
			TotalPages:    totalPages(len(threads), limit),
			PageNumber:    page,
			PageSize:      limit,
		},
	}
}

func bindPost(c *gin.Context) (blogen.PostRequest, bool) {
	var req blogen.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GlobalError("malformed post request"))
		return req, false
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusUnprocessableEntity, FieldError("title", "must not be empty"))
		return req, false
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusUnprocessableEntity, FieldError("text", "must not be empty"))
		return req, false
	}
	return req, true
}

func currentUser(c *gin.Context) blogen.User {
	if v, ok := c.Get("user"); ok {
		if u, ok := v.(blogen.User); ok {
			return u
		}
	}
	return blogen.User{}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, GlobalError(fmt.Sprintf("invalid id: %s", c.Param("id"))))
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (page, limit int, category int64) {
	page = queryInt(c, "page", 0)
	if page < 0 {
		page = 0
	}
	limit = queryInt(c, "limit", defaultLimit)
	category = blogen.AllCategories
	if raw := c.Query("category"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			category = v
		}
	}
	return page, limit, category
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	if v == 0 && key == "limit" {
		return fallback
	}
	return v
}

func pageBounds(total, page, limit int) (int, int) {
	start := page * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return start, end
}

func totalPages(total, limit int) int {
	if limit <= 0 || total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func bearer(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
