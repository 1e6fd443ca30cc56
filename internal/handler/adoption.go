package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adoptly/adoptly/internal/auth"
	"github.com/adoptly/adoptly/internal/handler/dto"
	"github.com/adoptly/adoptly/internal/service"
)

// AdoptionHandler handles the adoption workflow endpoints.
type AdoptionHandler struct {
	svc    *service.AdoptionService
	logger *slog.Logger
}

// NewAdoptionHandler creates a new AdoptionHandler.
func NewAdoptionHandler(svc *service.AdoptionService, logger *slog.Logger) *AdoptionHandler {
	return &AdoptionHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /adoptions. Admins see every record, everyone else only
// their own. The payload is always an array.
func (h *AdoptionHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	adoptions, err := h.svc.ListVisible(r.Context(), identity)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, adoptions)
}

// Get handles GET /adoptions/{aid}.
func (h *AdoptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	aid := chi.URLParam(r, "aid")

	adoption, err := h.svc.Get(r.Context(), aid)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, adoption)
}

// Adopt handles POST /adoptions/{uid}/{pid}.
func (h *AdoptionHandler) Adopt(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	pid := chi.URLParam(r, "pid")

	adoption, err := h.svc.Adopt(r.Context(), uid, pid)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("pet_adopted",
		"adoption_id", adoption.ID,
		"user_id", uid,
		"pet_id", pid,
	)
	writeJSON(w, http.StatusOK, envelope{
		Status:  "success",
		Message: "Pet adopted",
		Payload: adoption,
	})
}

// UpdateStatus handles PUT /adoptions/{aid}. Admin only.
func (h *AdoptionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	aid := chi.URLParam(r, "aid")

	var req dto.UpdateAdoptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	identity := auth.IdentityFromContext(r.Context())
	if err := h.svc.UpdateStatus(r.Context(), aid, req.Status, identity); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("adoption_status_updated", "adoption_id", aid, "status", req.Status)
	writeMessage(w, http.StatusOK, "Adoption updated")
}
