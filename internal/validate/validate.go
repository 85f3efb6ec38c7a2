// Package validate wraps go-playground/validator with the custom rules used
// by the link dialog and the HTTP API.
package validate

import (
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("validation failed")

// Validator validates tagged structs.
type Validator struct {
	v *validator.Validate
}

// New returns a validator with the custom rules registered:
//
//	safeurl   - no whitespace, and a scheme (when present) of http, https or mailto
//	pagetitle - 1 to 200 characters
func New() *Validator {
	v := validator.New()
	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("safeurl", safeURL)
	_ = v.RegisterValidation("pagetitle", pageTitle)
	return &Validator{v: v}
}

// Validate checks i against its validate tags. Failures wrap ErrInvalid
// and the underlying validator.ValidationErrors.
func (rv *Validator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return &Error{Fields: fields(verrs), err: verrs}
}

// Error lists the fields that failed validation.
type Error struct {
	Fields []string
	err    validator.ValidationErrors
}

func (e *Error) Error() string {
	return "invalid " + strings.Join(e.Fields, ", ")
}

// Is makes errors.Is(err, ErrInvalid) hold.
func (e *Error) Is(target error) bool { return target == ErrInvalid }

func (e *Error) Unwrap() error { return e.err }

func fields(verrs validator.ValidationErrors) []string {
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Field())
	}
	return out
}

var allowedSchemes = map[string]bool{"http": true, "https": true, "mailto": true}

func safeURL(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if strings.ContainsAny(value, " \t\r\n") {
		return false
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return u.Scheme == "" || allowedSchemes[strings.ToLower(u.Scheme)]
}

func pageTitle(fl validator.FieldLevel) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
	return n >= 1 && n <= 200
}
