// Package validate implements declarative request validation.
// Validators run before any business logic and report failures as a
// field→message bag so forms can render inline errors.
package validate

import (
	"strings"
	"unicode/utf8"
)

// Field limits for post input.
const (
	MaxTitleLength = 255
)

// Errors maps a field name to a human-readable message.
type Errors map[string]string

// HasErrors reports whether any rule failed.
func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// PostInput holds the user-supplied fields of a post form.
type PostInput struct {
	Title string
	Body  string
}

// StorePost validates input for creating a post.
func StorePost(input PostInput) Errors {
	return postRules(input)
}

// UpdatePost validates input for updating a post.
// Kept separate from StorePost so the rule sets can evolve independently;
// today they are identical.
func UpdatePost(input PostInput) Errors {
	return postRules(input)
}

func postRules(input PostInput) Errors {
	errs := Errors{}

	title := strings.TrimSpace(input.Title)
	switch {
	case title == "":
		errs["title"] = "The title field is required."
	case utf8.RuneCountInString(title) > MaxTitleLength:
		errs["title"] = "The title may not be greater than 255 characters."
	}

	if strings.TrimSpace(input.Body) == "" {
		errs["body"] = "The body field is required."
	}

	return errs
}
