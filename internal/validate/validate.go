// Package validate implements the form field checks used before a request
// is sent: email format, text length, required selection and user name
// availability.
package validate

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/RachelRYuan/Blogen/internal/blogen"
)

// DefaultMaxLength is the upper bound TextLength applies when max is zero.
const DefaultMaxLength = 999

// LooksGood is the feedback shown next to a valid field.
const LooksGood = "Looks Good"

// Result is the outcome of one field check.
type Result struct {
	Valid           bool
	InvalidFeedback string
	ValidFeedback   string
}

// Feedback returns the message to show for the field.
func (r Result) Feedback() string {
	if r.Valid {
		return r.ValidFeedback
	}
	return r.InvalidFeedback
}

func ok(feedback string) Result {
	return Result{Valid: true, ValidFeedback: feedback}
}

func invalid(feedback string) Result {
	return Result{InvalidFeedback: feedback}
}

var fields = validator.New(validator.WithRequiredStructEnabled())

// Email checks that value is a well-formed address.
func Email(value string) Result {
	if err := fields.Var(strings.TrimSpace(value), "required,email"); err != nil {
		return invalid("Please enter a valid email address")
	}
	return ok(LooksGood)
}

// TextLength checks that value has between min and max characters.
// A max of zero means DefaultMaxLength.
func TextLength(value string, min, max int) Result {
	if max <= 0 {
		max = DefaultMaxLength
	}
	n := utf8.RuneCountInString(value)
	switch {
	case n < min:
		return invalid(fmt.Sprintf("Please enter at least %d characters", min))
	case n > max:
		return invalid(fmt.Sprintf("Please enter no more than %d characters", max))
	}
	return ok(LooksGood)
}

// Select checks that an option was chosen. A nil value is no selection.
func Select(value *int64) Result {
	if value == nil {
		return invalid("Please select an option")
	}
	return ok(LooksGood)
}

// UserNameChecker asks the server whether a user name is registered.
type UserNameChecker interface {
	UserNameExists(ctx context.Context, name string) (bool, error)
}

var _ UserNameChecker = (*blogen.Client)(nil)

// CheckUserName reports whether name is free to register. Any failure,
// including a malformed server answer, is reported as a failed check
// rather than returned.
func CheckUserName(ctx context.Context, checker UserNameChecker, name string) Result {
	exists, err := checker.UserNameExists(ctx, name)
	switch {
	case err != nil:
		return invalid("Error checking user name")
	case exists:
		return invalid("User Name is taken")
	}
	return ok("User Name is available")
}

// FieldError is a failed check on a named form field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

type signupForm struct {
	FirstName string `validate:"required,max=999"`
	LastName  string `validate:"required,max=999"`
	UserName  string `validate:"required,min=3,max=999"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=4,max=999"`
}

// Signup checks a registration form and returns one FieldError per failing
// field, in form order. The user name availability check is separate
// because it needs the server.
func Signup(req blogen.SignupRequest) []FieldError {
	form := signupForm{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		UserName:  strings.TrimSpace(req.UserName),
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
	}
	err := fields.Struct(form)
	if err == nil {
		return nil
	}
	verrs, isValidation := err.(validator.ValidationErrors)
	if !isValidation {
		return []FieldError{{Field: "form", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

// PostForm checks a post or reply before it is submitted. Replies carry no
// category.
func PostForm(req blogen.PostRequest, reply bool) []FieldError {
	var out []FieldError
	if r := TextLength(strings.TrimSpace(req.Title), 1, 0); !r.Valid {
		out = append(out, FieldError{Field: "Title", Message: r.InvalidFeedback})
	}
	if r := TextLength(strings.TrimSpace(req.Text), 1, 0); !r.Valid {
		out = append(out, FieldError{Field: "Text", Message: r.InvalidFeedback})
	}
	if !reply {
		var selected *int64
		if req.CategoryID > 0 {
			selected = &req.CategoryID
		}
		if r := Select(selected); !r.Valid {
			out = append(out, FieldError{Field: "Category", Message: r.InvalidFeedback})
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Please enter something"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("Please enter at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Please enter no more than %s characters", fe.Param())
	}
	return "is invalid"
}
