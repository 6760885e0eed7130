package validate

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Field limits for account input.
const (
	MaxNameLength     = 255
	MinPasswordLength = 8
)

// RegisterInput holds the user-supplied fields of the registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput holds the user-supplied fields of the login form.
type LoginInput struct {
	Email    string
	Password string
}

// Register validates input for creating an account.
func Register(input RegisterInput) Errors {
	errs := Errors{}

	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		errs["name"] = "The name field is required."
	case utf8.RuneCountInString(name) > MaxNameLength:
		errs["name"] = "The name may not be greater than 255 characters."
	}

	email := strings.TrimSpace(input.Email)
	switch {
	case email == "":
		errs["email"] = "The email field is required."
	case !isValidEmail(email):
		errs["email"] = "The email must be a valid email address."
	}

	if utf8.RuneCountInString(input.Password) < MinPasswordLength {
		errs["password"] = "The password must be at least 8 characters."
	}

	return errs
}

// Login validates input for authenticating.
func Login(input LoginInput) Errors {
	errs := Errors{}

	if strings.TrimSpace(input.Email) == "" {
		errs["email"] = "The email field is required."
	}
	if input.Password == "" {
		errs["password"] = "The password field is required."
	}

	return errs
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
