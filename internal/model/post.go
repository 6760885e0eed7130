// Package model defines domain entities for the application.
package model

import "time"

// Post represents a blog post owned by a single user.
// UserID is assigned at creation time and never changes afterwards.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether the given user owns this post.
func (p *Post) IsOwnedBy(userID string) bool {
	return userID != "" && p.UserID == userID
}
