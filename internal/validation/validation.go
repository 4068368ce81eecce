package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/propuestas-api/internal/models"
)

// Field constraints mirror the persisted schema: lengths are measured
// in runes so accented text counts the way users expect.
const (
	UsernameMin    = 3
	UsernameMax    = 50
	PasswordMin    = 6
	PasswordMax    = 100
	TitleMin       = 5
	TitleMax       = 100
	DescriptionMin = 20
	DescriptionMax = 1000
)

var emailRe = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)

// FieldError describes a single invalid field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is a list of field errors; it satisfies error so services
// can return it directly
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// ErrorsOrNil returns e as an error, or nil when no field failed
func (e Errors) ErrorsOrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// NormalizeEmail lowercases and trims an email before validation and
// storage
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Username validates a username
func Username(username string) Errors {
	var errs Errors
	n := utf8.RuneCountInString(username)
	switch {
	case n == 0:
		errs = append(errs, FieldError{"username", "username is required"})
	case n < UsernameMin:
		errs = append(errs, FieldError{"username", "username must be at least 3 characters"})
	case n > UsernameMax:
		errs = append(errs, FieldError{"username", "username must be at most 50 characters"})
	}
	return errs
}

// Email validates a normalized email address
func Email(email string) Errors {
	var errs Errors
	if email == "" {
		errs = append(errs, FieldError{"email", "email is required"})
	} else if !emailRe.MatchString(email) {
		errs = append(errs, FieldError{"email", "email is not valid"})
	}
	return errs
}

// Password validates a plaintext password before hashing
func Password(password string) Errors {
	var errs Errors
	n := utf8.RuneCountInString(password)
	switch {
	case n == 0:
		errs = append(errs, FieldError{"password", "password is required"})
	case n < PasswordMin:
		errs = append(errs, FieldError{"password", "password must be at least 6 characters"})
	case n > PasswordMax:
		errs = append(errs, FieldError{"password", "password must be at most 100 characters"})
	}
	return errs
}

// Registration validates all fields of a registration request
func Registration(username, email, password string) Errors {
	var errs Errors
	errs = append(errs, Username(username)...)
	errs = append(errs, Email(email)...)
	errs = append(errs, Password(password)...)
	return errs
}

// Proposal validates proposal fields. The category must already be
// defaulted; the image may be empty (a placeholder is applied on
// create).
func Proposal(title, description, category, image string) Errors {
	var errs Errors

	n := utf8.RuneCountInString(strings.TrimSpace(title))
	switch {
	case n == 0:
		errs = append(errs, FieldError{"title", "title is required"})
	case n < TitleMin:
		errs = append(errs, FieldError{"title", "title must be at least 5 characters"})
	case n > TitleMax:
		errs = append(errs, FieldError{"title", "title must be at most 100 characters"})
	}

	n = utf8.RuneCountInString(strings.TrimSpace(description))
	switch {
	case n == 0:
		errs = append(errs, FieldError{"description", "description is required"})
	case n < DescriptionMin:
		errs = append(errs, FieldError{"description", "description must be at least 20 characters"})
	case n > DescriptionMax:
		errs = append(errs, FieldError{"description", "description must be at most 1000 characters"})
	}

	if !models.IsValidCategory(category) {
		errs = append(errs, FieldError{"category", "category is not one of the allowed values"})
	}

	if image != "" {
		u, err := url.ParseRequestURI(image)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, FieldError{"image", "image must be a valid http(s) URL"})
		}
	}

	return errs
}
