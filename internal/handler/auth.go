package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quillpost/quillpost/internal/inertia"
	"github.com/quillpost/quillpost/internal/model"
	"github.com/quillpost/quillpost/internal/service"
)

// SessionManager creates and destroys sessions.
// *cache.Cache satisfies it.
type SessionManager interface {
	CreateSession(ctx context.Context, token string, user *model.SessionUser, ttl time.Duration) error
	DeleteSession(ctx context.Context, token string) error
}

// AuthHandler handles login, registration, and logout.
type AuthHandler struct {
	svc        *service.AuthService
	sessions   SessionManager
	renderer   *inertia.Renderer
	cookieName string
	sessionTTL time.Duration
	secure     bool
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, sessions SessionManager, renderer *inertia.Renderer, cookieName string, sessionTTL time.Duration, secure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:        svc,
		sessions:   sessions,
		renderer:   renderer,
		cookieName: cookieName,
		sessionTTL: sessionTTL,
		secure:     secure,
		logger:     logger,
	}
}

// credentialsForm mirrors the login form fields.
type credentialsForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerForm mirrors the registration form fields.
type registerForm struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ShowLogin handles GET /login.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	_ = h.renderer.Render(w, r, "Auth/Login", nil)
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form credentialsForm
	if err := h.decode(r, &form, func() {
		form.Email = r.PostFormValue("email")
		form.Password = r.PostFormValue("password")
	}); err != nil {
		h.badRequest(w, r)
		return
	}

	user, err := h.svc.Login(r.Context(), service.LoginInput(form))
	if err != nil {
		if verr, ok := service.AsValidationError(err); ok {
			_ = h.renderer.RenderStatus(w, r, http.StatusUnprocessableEntity, "Auth/Login", inertia.Props{
				"errors": verr.Fields,
			})
			return
		}
		if errors.Is(err, service.ErrInvalidCredentials) {
			_ = h.renderer.RenderStatus(w, r, http.StatusUnprocessableEntity, "Auth/Login", inertia.Props{
				"errors": map[string]string{
					"email": "These credentials do not match our records.",
				},
			})
			return
		}
		h.internalError(w, r, err)
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		h.internalError(w, r, err)
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID)
	h.renderer.Redirect(w, r, "/posts")
}

// ShowRegister handles GET /register.
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	_ = h.renderer.Render(w, r, "Auth/Register", nil)
}

// Register handles POST /register. A new account is signed in directly.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	if err := h.decode(r, &form, func() {
		form.Name = r.PostFormValue("name")
		form.Email = r.PostFormValue("email")
		form.Password = r.PostFormValue("password")
	}); err != nil {
		h.badRequest(w, r)
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput(form))
	if err != nil {
		if verr, ok := service.AsValidationError(err); ok {
			_ = h.renderer.RenderStatus(w, r, http.StatusUnprocessableEntity, "Auth/Register", inertia.Props{
				"errors": verr.Fields,
			})
			return
		}
		h.internalError(w, r, err)
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		h.internalError(w, r, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)
	h.renderer.Redirect(w, r, "/posts")
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.DeleteSession(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("failed to delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.renderer.Redirect(w, r, "/login")
}

// startSession issues a fresh token, stores the session, and sets the cookie.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) error {
	token := uuid.New().String()

	sessionUser := &model.SessionUser{ID: user.ID, Name: user.Name}
	if err := h.sessions.CreateSession(r.Context(), token, sessionUser, h.sessionTTL); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// decode reads a form from JSON or urlencoded bodies.
func (h *AuthHandler) decode(r *http.Request, dst any, fromForm func()) error {
	if isJSONRequest(r) {
		return json.NewDecoder(r.Body).Decode(dst)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	fromForm()
	return nil
}

func (h *AuthHandler) badRequest(w http.ResponseWriter, r *http.Request) {
	_ = h.renderer.RenderStatus(w, r, http.StatusBadRequest, "Error", inertia.Props{
		"status":  http.StatusBadRequest,
		"message": "Invalid request body.",
	})
}

func (h *AuthHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("internal_error", "error", err)
	_ = h.renderer.RenderStatus(w, r, http.StatusInternalServerError, "Error", inertia.Props{
		"status":  http.StatusInternalServerError,
		"message": "An internal error occurred.",
	})
}
