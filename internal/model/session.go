package model

// SessionUser is the authenticated identity carried by a session.
// It exposes only what page rendering needs, never the stored user row.
type SessionUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
