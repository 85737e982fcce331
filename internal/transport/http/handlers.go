// @title Huddle API
// @version 1.0.0
// @description Group-scoped messaging service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url https://www.apache.org/licenses/LICENSE-2.0

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/huddlehq/huddle/internal/access"
	"github.com/huddlehq/huddle/internal/audit"
	"github.com/huddlehq/huddle/internal/content"
	"github.com/huddlehq/huddle/internal/group"
	"github.com/huddlehq/huddle/internal/identity"
	"github.com/huddlehq/huddle/internal/observability/logger"
	"github.com/huddlehq/huddle/internal/session"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	identityService *identity.Service
	groupService    *group.Service
	contentService  *content.Service
	codec           *session.Codec
	auditLogger     audit.Logger
	validate        *validator.Validate
}

// NewHandler creates a new HTTP handler
func NewHandler(
	identityService *identity.Service,
	groupService *group.Service,
	contentService *content.Service,
	codec *session.Codec,
	auditLogger audit.Logger,
) *Handler {
	return &Handler{
		identityService: identityService,
		groupService:    groupService,
		contentService:  contentService,
		codec:           codec,
		auditLogger:     auditLogger,
		validate:        validator.New(),
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		// Protected routes: every route below carries a session token.
		// Group-scoped routes additionally need an active group in the
		// claims; the services enforce that, not the router.
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/auth/me", h.GetCurrentUser)

			// Users
			r.Put("/users/{userID}", h.UpdateUser)
			r.Delete("/users/{userID}", h.DeleteUser)

			// Groups
			r.Route("/groups", func(r chi.Router) {
				r.Post("/", h.CreateGroup)
				r.Get("/", h.ListGroups)
				r.Post("/{groupID}/select", h.SelectGroup)
			})

			// Active group scope
			r.Route("/group", func(r chi.Router) {
				r.Get("/members", h.ListMembers)
				r.Delete("/members/{userID}", h.RemoveMember)
			})

			// Posts and comments
			r.Route("/posts", func(r chi.Router) {
				r.Post("/", h.CreatePost)
				r.Get("/", h.ListPosts)
				r.Delete("/{postID}", h.DeletePost)
				r.Post("/{postID}/comments", h.CreateComment)
				r.Get("/{postID}/comments", h.ListComments)
			})
			r.Delete("/comments/{commentID}", h.DeleteComment)

			// Tags
			r.Post("/tags", h.CreateTag)
			r.Delete("/tags/{tagID}", h.DeleteTag)
		})
	})

	return r
}

// HealthCheck returns the health status
// @Summary Health Check
// @Description Checks if the service is up and running
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "huddle",
	})
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	ContactNumber string `json:"contact_number" validate:"required" example:"+15550100"`
	FullName      string `json:"full_name" validate:"required" example:"Ada Lovelace"`
	Passphrase    string `json:"passphrase" validate:"required,min=8" example:"correct horse battery"`
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a user, or claim a placeholder created by a group invitation
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration Data"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.identityService.Register(r.Context(), req.ContactNumber, req.FullName, req.Passphrase)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to register user",
			logger.Error(err),
			logger.ContactNumber(req.ContactNumber),
		)

		switch {
		case errors.Is(err, identity.ErrUserAlreadyExists):
			respondError(w, http.StatusConflict, "user already exists")
		case errors.Is(err, identity.ErrInvalidContact):
			respondError(w, http.StatusBadRequest, "invalid contact number")
		case errors.Is(err, identity.ErrWeakPassphrase):
			respondError(w, http.StatusBadRequest, "passphrase does not meet security requirements")
		default:
			respondError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	// A fresh registration starts an authenticated, group-less session.
	token, err := h.codec.Issue(session.Claims{UserID: user.ID})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue session token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"user":  userResponse(user),
		"token": token,
	})
}

// LoginRequest represents login credentials
type LoginRequest struct {
	ContactNumber string `json:"contact_number" validate:"required" example:"+15550100"`
	Passphrase    string `json:"passphrase" validate:"required" example:"correct horse battery"`
}

// Login handles user login
// @Summary Login
// @Description Authenticate and receive a session token without group scope
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.identityService.Authenticate(r.Context(), req.ContactNumber, req.Passphrase)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	// Login always issues a group-less token, even if a previous session
	// had selected a group.
	token, err := h.codec.Issue(session.Claims{UserID: user.ID})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue session token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user":  userResponse(user),
		"token": token,
	})
}

// GetCurrentUser returns the current authenticated user
// @Summary Get Current User
// @Description Retrieve the user behind the session token, with the active group if one is selected
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /auth/me [get]
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	user, err := h.identityService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	resp := map[string]any{"user": userResponse(user)}
	if claims.GroupScoped() {
		resp["active_group"] = claims.Group()
	}
	respondJSON(w, http.StatusOK, resp)
}

// UpdateUserRequest represents profile update data
type UpdateUserRequest struct {
	FullName      string `json:"full_name" example:"Ada King"`
	NewPassphrase string `json:"new_passphrase,omitempty"`
}

// UpdateUser updates a user's profile
// @Summary Update User
// @Description Update a user's name or passphrase; self or active-group admin
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param request body UpdateUserRequest true "Update Data"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/{userID} [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	var req UpdateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.identityService.UpdateUser(r.Context(), claims, chi.URLParam(r, "userID"), req.FullName, req.NewPassphrase)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrWeakPassphrase):
			respondError(w, http.StatusBadRequest, "passphrase does not meet security requirements")
		case errors.Is(err, identity.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		default:
			h.respondAccessError(w, r, err, "failed to update user")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": userResponse(user)})
}

// DeleteUser deletes the caller's own account
// @Summary Delete User
// @Description Delete a user account; self-deletion only
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /users/{userID} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	if err := h.identityService.DeleteUser(r.Context(), claims, chi.URLParam(r, "userID")); err != nil {
		h.respondAccessError(w, r, err, "failed to delete user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "user deleted",
	})
}

// Helper functions

// decodeAndValidate reads the JSON body into dst and runs struct validation.
// It writes the error response itself and reports whether the handler should
// continue.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

// respondAccessError maps the access error taxonomy onto HTTP statuses.
// Denials stay opaque: the body never says what check failed.
func (h *Handler) respondAccessError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, access.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, access.ErrDenied):
		h.auditLogger.Log(r.Context(), audit.Event{
			Type:      audit.TypeAccessDenied,
			Resource:  r.URL.Path,
			IPAddress: getIPAddress(r),
			UserAgent: r.UserAgent(),
		})
		respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, access.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, access.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "invalid request")
	default:
		slog.ErrorContext(r.Context(), fallback, logger.Error(err))
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

func userResponse(u *identity.User) map[string]any {
	return map[string]any{
		"user_id":        u.ID,
		"contact_number": u.ContactNumber,
		"full_name":      u.FullName,
		"created_at":     u.CreatedAt,
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
