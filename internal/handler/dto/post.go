// Package dto provides view models for page props and API responses.
// Handlers expose these instead of raw storage rows so the client
// contract stays stable under schema changes.
package dto

import (
	"time"

	"github.com/quillpost/quillpost/internal/model"
)

// PostResponse represents a post in page props.
type PostResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostFormResponse carries only the editable fields plus the id,
// for the edit form.
type PostFormResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ToPostResponse converts a Post model to its view model.
func ToPostResponse(post *model.Post) PostResponse {
	return PostResponse{
		ID:        post.ID,
		UserID:    post.UserID,
		Title:     post.Title,
		Body:      post.Body,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

// ToPostListResponse converts a slice of posts for the list page.
func ToPostListResponse(posts []*model.Post) []PostResponse {
	responses := make([]PostResponse, len(posts))
	for i, post := range posts {
		responses[i] = ToPostResponse(post)
	}
	return responses
}

// ToPostFormResponse converts a post to its edit-form view model.
func ToPostFormResponse(post *model.Post) PostFormResponse {
	return PostFormResponse{
		ID:    post.ID,
		Title: post.Title,
		Body:  post.Body,
	}
}
