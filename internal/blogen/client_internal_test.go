package blogen

import "testing"

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultAPIURL {
		t.Fatalf("default url = %q, want %q", u.String(), defaultAPIURL)
	}

	u, err = parseBaseURL("example.com:9000")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "example.com:9000" {
		t.Fatalf("url = %q, want http://example.com:9000", u.String())
	}

	u, err = parseBaseURL("https://blog.example.com/app?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatal("expected error for missing host")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"Bearer", "", false},
		{"Basic abc", "", false},
		{"", "", false},
		{"Bearer a b", "", false},
	}
	for _, tc := range tests {
		got, ok := bearerToken(tc.header)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("bearerToken(%q) = %q, %v; want %q, %v", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPostQueryValues(t *testing.T) {
	v := PostQuery{Page: 2, Limit: 5}.values()
	if v.Get("page") != "2" || v.Get("limit") != "5" || v.Get("category") != "-1" {
		t.Fatalf("values = %v", v)
	}
	v = PostQuery{Category: 7}.values()
	if v.Get("category") != "7" || v.Has("limit") {
		t.Fatalf("values = %v", v)
	}
}

func TestSegmentURL(t *testing.T) {
	tests := []struct {
		value   string
		path    string
		escaped string
	}{
		{value: "go", path: "/s/go", escaped: "/s/go"},
		{value: "a b?", path: "/s/a b?", escaped: "/s/a%20b%3F"},
		{value: "a/b", path: "/s/a/b", escaped: "/s/a%2Fb"},
		{value: ".", path: "/s/.", escaped: "/s/%2E"},
		{value: "..", path: "/s/..", escaped: "/s/%2E%2E"},
		{value: "../x", path: "/s/../x", escaped: "/s/..%2Fx"},
	}
	for _, tt := range tests {
		u := segmentURL("/s/", tt.value)
		if u.Path != tt.path {
			t.Fatalf("segmentURL(%q).Path = %q, want %q", tt.value, u.Path, tt.path)
		}
		if got := u.EscapedPath(); got != tt.escaped {
			t.Fatalf("segmentURL(%q).EscapedPath() = %q, want %q", tt.value, got, tt.escaped)
		}
	}
}
