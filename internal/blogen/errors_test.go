package blogen

import (
	"errors"
	"fmt"
	"net"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   APIError
	}{
		{
			name:   "global error message",
			status: 404,
			body:   `{"globalError":[{"message":"not found"}]}`,
			want:   APIError{Code: 404, Message: "not found"},
		},
		{
			name:   "first global error wins",
			status: 409,
			body:   `{"globalError":[{"message":"first"},{"message":"second"}]}`,
			want:   APIError{Code: 409, Message: "first"},
		},
		{
			name:   "field error when global missing",
			status: 422,
			body:   `{"fieldError":[{"field":"title","message":"must not be empty","rejectedValue":""}]}`,
			want:   APIError{Code: 422, Message: "title: must not be empty"},
		},
		{
			name:   "blank global falls through to field error",
			status: 422,
			body:   `{"globalError":[{"message":"  "}],"fieldError":[{"field":"","message":"bad"}]}`,
			want:   APIError{Code: 422, Message: "bad"},
		},
		{
			name:   "empty global array",
			status: 400,
			body:   `{"globalError":[]}`,
			want:   APIError{Code: 400, Message: "unexpected error response (status 400)"},
		},
		{
			name:   "non json body",
			status: 502,
			body:   `<html>bad gateway</html>`,
			want:   APIError{Code: 502, Message: "unexpected error response (status 502)"},
		},
		{
			name:   "empty body",
			status: 500,
			body:   ``,
			want:   APIError{Code: 500, Message: "unexpected error response (status 500)"},
		},
		{
			name:   "wrong shape",
			status: 403,
			body:   `{"globalError":"denied"}`,
			want:   APIError{Code: 403, Message: "unexpected error response (status 403)"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError(tc.status, []byte(tc.body))
			if got == nil {
				t.Fatal("MapError returned nil")
			}
			if *got != tc.want {
				t.Fatalf("MapError = %+v, want %+v", *got, tc.want)
			}
		})
	}
}

func TestRedirectMessage(t *testing.T) {
	tests := []struct {
		status int
		want   string
		ok     bool
	}{
		{401, "Your credentials are invalid/expired please log back in", true},
		{403, "That resource is forbidden, please log back in", true},
		{500, "All servers are busy, please try again later", true},
		{404, "", false},
		{422, "", false},
		{503, "", false},
	}
	for _, tc := range tests {
		got, ok := RedirectMessage(tc.status)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("RedirectMessage(%d) = %q, %v; want %q, %v", tc.status, got, ok, tc.want, tc.ok)
		}
	}
}

func TestErrorHelpers(t *testing.T) {
	apiErr := &APIError{Code: 404, Message: "not found"}
	wrapped := fmt.Errorf("delete post: %w", apiErr)
	if got := AsAPIError(wrapped); got != apiErr {
		t.Fatalf("AsAPIError = %v, want %v", got, apiErr)
	}
	if IsTransport(wrapped) {
		t.Fatal("api error reported as transport failure")
	}

	dialErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	tErr := &TransportError{Op: "GET /api/v1/posts", Err: dialErr}
	if !IsTransport(fmt.Errorf("list: %w", tErr)) {
		t.Fatal("expected transport error")
	}
	if AsAPIError(tErr) != nil {
		t.Fatal("transport error reported as api error")
	}
	var opErr *net.OpError
	if !errors.As(tErr, &opErr) {
		t.Fatal("TransportError should unwrap to its cause")
	}
}
