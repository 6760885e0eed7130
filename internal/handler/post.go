package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quillpost/quillpost/internal/auth"
	"github.com/quillpost/quillpost/internal/cache"
	"github.com/quillpost/quillpost/internal/handler/dto"
	"github.com/quillpost/quillpost/internal/inertia"
	"github.com/quillpost/quillpost/internal/service"
)

// FlashStore attaches one-shot flash messages to sessions.
// *cache.Cache satisfies it.
type FlashStore interface {
	SetFlash(ctx context.Context, token string, flash cache.Flash) error
}

// PostHandler handles HTTP requests for post pages and mutations.
type PostHandler struct {
	svc        *service.PostService
	renderer   *inertia.Renderer
	flashes    FlashStore
	cookieName string
	logger     *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc *service.PostService, renderer *inertia.Renderer, flashes FlashStore, cookieName string, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		svc:        svc,
		renderer:   renderer,
		flashes:    flashes,
		cookieName: cookieName,
		logger:     logger,
	}
}

// postForm mirrors the create/edit form fields.
type postForm struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Index handles GET /posts.
func (h *PostHandler) Index(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	posts, err := h.svc.ListPosts(r.Context(), user.ID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	_ = h.renderer.Render(w, r, "Posts/Index", inertia.Props{
		"posts": dto.ToPostListResponse(posts),
	})
}

// Create handles GET /posts/create. No side effects; just the form shell.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	_ = h.renderer.Render(w, r, "Posts/Create", nil)
}

// Store handles POST /posts.
func (h *PostHandler) Store(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	form, err := h.decodeForm(r)
	if err != nil {
		_ = h.renderer.RenderStatus(w, r, http.StatusBadRequest, "Error", inertia.Props{
			"status":  http.StatusBadRequest,
			"message": "Invalid request body.",
		})
		return
	}

	post, err := h.svc.CreatePost(r.Context(), user.ID, service.PostInput(form))
	if err != nil {
		if verr, ok := service.AsValidationError(err); ok {
			_ = h.renderer.RenderStatus(w, r, http.StatusUnprocessableEntity, "Posts/Create", inertia.Props{
				"errors": verr.Fields,
			})
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("post_created",
		"post_id", post.ID,
		"user_id", user.ID,
	)

	h.setFlash(r, cache.Flash{Success: "Post created."})
	h.renderer.Redirect(w, r, "/posts")
}

// Show handles GET /posts/{id}. Reads are not ownership-scoped; any
// authenticated user may view any post by id.
func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	_ = h.renderer.Render(w, r, "Posts/Show", inertia.Props{
		"post": dto.ToPostResponse(post),
	})
}

// Edit handles GET /posts/{id}/edit.
func (h *PostHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	post, err := h.svc.EditPost(r.Context(), id, user.ID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	_ = h.renderer.Render(w, r, "Posts/Edit", inertia.Props{
		"post": dto.ToPostFormResponse(post),
	})
}

// Update handles PUT/PATCH /posts/{id}.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	form, err := h.decodeForm(r)
	if err != nil {
		_ = h.renderer.RenderStatus(w, r, http.StatusBadRequest, "Error", inertia.Props{
			"status":  http.StatusBadRequest,
			"message": "Invalid request body.",
		})
		return
	}

	post, err := h.svc.UpdatePost(r.Context(), id, user.ID, service.PostInput(form))
	if err != nil {
		if verr, ok := service.AsValidationError(err); ok {
			_ = h.renderer.RenderStatus(w, r, http.StatusUnprocessableEntity, "Posts/Edit", inertia.Props{
				"errors": verr.Fields,
				"post": dto.PostFormResponse{
					ID:    id,
					Title: form.Title,
					Body:  form.Body,
				},
			})
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("post_updated",
		"post_id", post.ID,
		"user_id", user.ID,
	)

	h.setFlash(r, cache.Flash{Success: "Post updated."})
	h.renderer.Redirect(w, r, "/posts")
}

// Destroy handles DELETE /posts/{id}.
func (h *PostHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.DeletePost(r.Context(), id, user.ID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("post_deleted",
		"post_id", id,
		"user_id", user.ID,
	)

	h.setFlash(r, cache.Flash{Success: "Post deleted."})
	h.renderer.Redirect(w, r, "/posts")
}

// decodeForm reads the post form from a JSON body (bridge navigation)
// or urlencoded body (plain HTML form).
func (h *PostHandler) decodeForm(r *http.Request) (postForm, error) {
	var form postForm

	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			return form, err
		}
		return form, nil
	}

	if err := r.ParseForm(); err != nil {
		return form, err
	}
	form.Title = r.PostFormValue("title")
	form.Body = r.PostFormValue("body")
	return form, nil
}

// setFlash attaches a one-shot flash to the current session, if any.
// Flash loss is tolerable; the mutation already succeeded.
func (h *PostHandler) setFlash(r *http.Request, flash cache.Flash) {
	cookie, err := r.Cookie(h.cookieName)
	if err != nil || cookie.Value == "" {
		return
	}
	if err := h.flashes.SetFlash(r.Context(), cookie.Value, flash); err != nil {
		h.logger.Warn("failed to set flash", "error", err)
	}
}

// handleServiceError maps service errors to error pages.
func (h *PostHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		_ = h.renderer.RenderStatus(w, r, http.StatusNotFound, "Error", inertia.Props{
			"status":  http.StatusNotFound,
			"message": "Post not found.",
		})
	case errors.Is(err, service.ErrForbidden):
		_ = h.renderer.RenderStatus(w, r, http.StatusForbidden, "Error", inertia.Props{
			"status":  http.StatusForbidden,
			"message": "Unauthorized.",
		})
	default:
		h.logger.Error("internal_error", "error", err)
		_ = h.renderer.RenderStatus(w, r, http.StatusInternalServerError, "Error", inertia.Props{
			"status":  http.StatusInternalServerError,
			"message": "An internal error occurred.",
		})
	}
}
