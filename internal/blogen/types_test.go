package blogen

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		zero bool
	}{
		{"", true},
		{"2024-03-01T10:15:00Z", false},
		{"2024-03-01T10:15:00.123456789Z", false},
		{"2024-03-01T10:15:00", false},
		{"Fri Mar 01, 2024 10:15 AM", false},
		{"yesterday", true},
	}
	for _, tc := range tests {
		got := parseTime(tc.in)
		if got.IsZero() != tc.zero {
			t.Fatalf("parseTime(%q) = %v, zero=%v want zero=%v", tc.in, got, got.IsZero(), tc.zero)
		}
	}

	got := parseTime("Fri Mar 01, 2024 10:15 PM")
	if got.Hour() != 22 || got.Minute() != 15 || got.Month() != time.March {
		t.Fatalf("parseTime blogen layout = %v", got)
	}
}

func TestPostCloneIsDeep(t *testing.T) {
	parent := "http://x/api/v1/posts/1"
	orig := Post{
		ID:    1,
		Title: "thread",
		Children: []Post{
			{ID: 2, Title: "reply", ParentPostURL: &parent},
		},
	}
	dup := orig.Clone()
	dup.Children[0].Title = "changed"
	*dup.Children[0].ParentPostURL = "mutated"

	if orig.Children[0].Title != "reply" {
		t.Fatalf("clone shares children: %q", orig.Children[0].Title)
	}
	if parent != "http://x/api/v1/posts/1" {
		t.Fatalf("clone shares parentPostUrl pointer: %q", parent)
	}
	if !dup.Children[0].IsReply() || orig.IsReply() {
		t.Fatal("IsReply mismatch")
	}
}

func TestPageInfoNavigation(t *testing.T) {
	info := PageInfo{TotalElements: 11, TotalPages: 3, PageNumber: 0, PageSize: 5}
	if info.HasPrev() || !info.HasNext() {
		t.Fatalf("first page nav wrong: %+v", info)
	}
	info.PageNumber = 2
	if !info.HasPrev() || info.HasNext() {
		t.Fatalf("last page nav wrong: %+v", info)
	}
}

func TestUserHelpers(t *testing.T) {
	u := User{UserName: "jdoe", Roles: []string{"USER", "ADMIN"}}
	if !u.HasRole("ADMIN") || u.HasRole("admin") {
		t.Fatal("HasRole should be exact")
	}
	if u.DisplayName() != "jdoe" {
		t.Fatalf("DisplayName = %q", u.DisplayName())
	}
	u.FirstName, u.LastName = "Jane", "Doe"
	if u.DisplayName() != "Jane Doe" {
		t.Fatalf("DisplayName = %q", u.DisplayName())
	}
	if got := AvatarURL("http://cdn/avatars/", "/a.jpg"); got != "http://cdn/avatars/a.jpg" {
		t.Fatalf("AvatarURL = %q", got)
	}
}
