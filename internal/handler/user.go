package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adoptly/adoptly/internal/auth"
	"github.com/adoptly/adoptly/internal/handler/dto"
	"github.com/adoptly/adoptly/internal/model"
	"github.com/adoptly/adoptly/internal/service"
)

// UserHandler handles user administration endpoints.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /users. Admin only (enforced by route middleware).
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToUserResponses(users))
}

// Get handles GET /users/{uid}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	user, err := h.svc.Get(r.Context(), uid)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToUserResponse(user))
}

// Update handles PUT /users/{uid}. A user may update their own profile;
// admins may update anyone.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if !canActOn(r, uid) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
		return
	}

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), uid, service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_updated", "user_id", uid)
	writeSuccess(w, http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /users/{uid}. Admin only.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	if err := h.svc.Delete(r.Context(), uid); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_deleted", "user_id", uid)
	writeMessage(w, http.StatusOK, "User deleted")
}

// AddDocuments handles POST /users/{uid}/documents. A user may attach
// documents to their own record; admins to anyone's.
func (h *UserHandler) AddDocuments(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if !canActOn(r, uid) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
		return
	}

	var reqs []dto.DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "At least one document is required")
		return
	}

	docs := make([]model.Document, 0, len(reqs))
	for _, d := range reqs {
		if d.Name == "" || d.Reference == "" {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Each document needs a name and a reference")
			return
		}
		docs = append(docs, model.Document{Name: d.Name, Reference: d.Reference})
	}

	if err := h.svc.AddDocuments(r.Context(), uid, docs); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("documents_added", "user_id", uid, "count", len(docs))
	writeMessage(w, http.StatusOK, "Documents added")
}

// canActOn reports whether the caller may mutate the given user record:
// the user themselves, or any admin.
func canActOn(r *http.Request, uid string) bool {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		return false
	}
	return identity.ID == uid || identity.IsAdmin()
}
