package blogen

import (
	"strings"
	"time"
)

// AllCategories is the category id the API treats as "every category".
const AllCategories int64 = -1

// Post mirrors the PostDTO returned by /api/v1/posts. Top-level posts carry
// their replies in Children; a reply never carries children of its own.
type Post struct {
	ID            int64        `json:"id"`
	Text          string       `json:"text"`
	Title         string       `json:"title"`
	Created       string       `json:"created"`
	ImageURL      string       `json:"imageUrl"`
	User          PostUser     `json:"user"`
	Category      PostCategory `json:"category"`
	PostURL       string       `json:"postUrl"`
	ParentPostURL *string      `json:"parentPostUrl"`
	Children      []Post       `json:"children"`
}

// IsReply reports whether the post belongs to a parent thread.
func (p Post) IsReply() bool {
	return p.ParentPostURL != nil && *p.ParentPostURL != ""
}

// ParsedCreated returns the Created timestamp as time.Time when possible.
func (p Post) ParsedCreated() time.Time {
	return parseTime(p.Created)
}

// Clone returns a deep copy of the post and its children.
func (p Post) Clone() Post {
	dup := p
	if p.ParentPostURL != nil {
		parent := *p.ParentPostURL
		dup.ParentPostURL = &parent
	}
	if p.Children != nil {
		dup.Children = make([]Post, len(p.Children))
		for i, child := range p.Children {
			dup.Children[i] = child.Clone()
		}
	}
	return dup
}

// PostUser is the author summary embedded in a post.
type PostUser struct {
	ID        int64  `json:"id"`
	UserName  string `json:"userName"`
	UserURL   string `json:"userUrl"`
	AvatarURL string `json:"avatarUrl"`
}

// PostCategory is the category summary embedded in a post.
type PostCategory struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CategoryURL string `json:"categoryUrl"`
}

// PageInfo describes the currently loaded page, not the whole dataset.
type PageInfo struct {
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
}

// HasNext reports whether a page after the current one exists.
func (p PageInfo) HasNext() bool {
	return p.PageNumber+1 < p.TotalPages
}

// HasPrev reports whether a page before the current one exists.
func (p PageInfo) HasPrev() bool {
	return p.PageNumber > 0
}

// PostList mirrors the PostListDTO payload.
type PostList struct {
	Posts    []Post   `json:"posts"`
	PageInfo PageInfo `json:"pageInfo"`
}

// PostRequest is the body sent when creating or updating a post.
type PostRequest struct {
	Text       string `json:"text"`
	Title      string `json:"title"`
	ImageURL   string `json:"imageUrl,omitempty"`
	CategoryID int64  `json:"categoryId"`
}

// PostQuery selects a page of posts.
type PostQuery struct {
	Page     int
	Limit    int
	Category int64
}

// Category is a flat post category.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CategoryURL string `json:"categoryUrl"`
}

// CategoryRequest is the body for category writes. It never carries the
// server-derived categoryUrl.
type CategoryRequest struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// CategoryList mirrors the CategoryListDTO payload.
type CategoryList struct {
	Categories []Category `json:"categories"`
	PageInfo   *PageInfo  `json:"pageInfo,omitempty"`
}

// User mirrors the UserDTO payload.
type User struct {
	ID          int64    `json:"id"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	UserName    string   `json:"userName"`
	Email       string   `json:"email"`
	AvatarImage string   `json:"avatarImage"`
	UserURL     string   `json:"userUrl"`
	Roles       []string `json:"roles"`
}

// HasRole reports whether the user holds role (case-sensitive, as issued).
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// DisplayName joins first and last name, falling back to the user name.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.UserName
	}
	return name
}

// SignupRequest is the body for /api/v1/auth/signup.
type SignupRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	UserName    string `json:"userName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AvatarImage string `json:"avatarImage,omitempty"`
}

// AvatarList mirrors /api/v1/userPrefs/avatars.
type AvatarList struct {
	Avatars []string `json:"avatars"`
}

// AvatarURL joins the avatar base URL with an avatar file name.
func AvatarURL(base, fileName string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(fileName, "/")
}

const blogenTimestampLayout = "Mon Jan 02, 2006 03:04 PM"

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(blogenTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
