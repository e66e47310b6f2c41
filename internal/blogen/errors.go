package blogen

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnexpectedPayload is returned when a 2xx response carries a body the
// client cannot interpret (for example a username check that is neither
// true nor false).
var ErrUnexpectedPayload = errors.New("unexpected response payload")

// APIError is a server response with a non-2xx status, reduced to the status
// code and a human-readable message.
type APIError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// TransportError wraps a failure where no response reached the client
// (connection refused, DNS, timeout, cancelled context).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AsAPIError extracts the *APIError from err's chain, or nil.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// IsTransport reports whether err is a failure with no server response.
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

type globalError struct {
	Message string `json:"message"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorBody struct {
	GlobalError []globalError `json:"globalError"`
	FieldError  []fieldError  `json:"fieldError"`
}

// MapError converts a non-2xx response into an *APIError. It never fails:
// a body without a usable globalError or fieldError message degrades to a
// generic message carrying the status.
func MapError(status int, body []byte) *APIError {
	apiErr := &APIError{Code: status, Message: fallbackMessage(status)}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apiErr
	}
	if len(parsed.GlobalError) > 0 {
		if msg := strings.TrimSpace(parsed.GlobalError[0].Message); msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}
	for _, fe := range parsed.FieldError {
		msg := strings.TrimSpace(fe.Message)
		if msg == "" {
			continue
		}
		if fe.Field != "" {
			msg = fe.Field + ": " + msg
		}
		apiErr.Message = msg
		return apiErr
	}
	return apiErr
}

func fallbackMessage(status int) string {
	return fmt.Sprintf("unexpected error response (status %d)", status)
}

// RedirectMessage returns the login banner shown for statuses that send the
// user back to the login view. ok is false for every other status.
func RedirectMessage(status int) (msg string, ok bool) {
	switch status {
	case http.StatusUnauthorized:
		return "Your credentials are invalid/expired please log back in", true
	case http.StatusForbidden:
		return "That resource is forbidden, please log back in", true
	case http.StatusInternalServerError:
		return "All servers are busy, please try again later", true
	}
	return "", false
}
