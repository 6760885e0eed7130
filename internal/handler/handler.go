// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quillpost/quillpost/internal/auth"
	"github.com/quillpost/quillpost/internal/inertia"
)

// Handler wraps shared page rendering for error routes.
type Handler struct {
	renderer *inertia.Renderer
}

// New creates a new Handler instance.
func New(renderer *inertia.Renderer) *Handler {
	return &Handler{renderer: renderer}
}

// Home handles GET /. Signed-in users land on their posts; everyone
// else goes to the login page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if auth.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/posts", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// NotFound handles 404 responses with an error page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	_ = h.renderer.RenderStatus(w, r, http.StatusNotFound, "Error", inertia.Props{
		"status":  http.StatusNotFound,
		"message": "Page not found.",
	})
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = h.renderer.RenderStatus(w, r, http.StatusMethodNotAllowed, "Error", inertia.Props{
		"status":  http.StatusMethodNotAllowed,
		"message": "Method not allowed.",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = err
	}
}

// isJSONRequest reports whether the request body is JSON.
// Bridge navigations submit JSON; plain HTML forms submit urlencoded.
func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
