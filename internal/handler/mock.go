package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/adoptly/adoptly/internal/handler/dto"
	"github.com/adoptly/adoptly/internal/service"
)

const (
	defaultMockPets  = 100
	defaultMockUsers = 50
	maxMockBatch     = 1000
)

// MockHandler serves generated fixture data for demos and load testing.
type MockHandler struct {
	svc    *service.MockService
	logger *slog.Logger
}

// NewMockHandler creates a new MockHandler.
func NewMockHandler(svc *service.MockService, logger *slog.Logger) *MockHandler {
	return &MockHandler{
		svc:    svc,
		logger: logger,
	}
}

// MockingPets handles GET /mocks/mockingpets. The pets are generated on the
// fly and not persisted.
func (h *MockHandler) MockingPets(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.svc.GeneratePets(defaultMockPets))
}

// MockingUsers handles GET /mocks/mockingusers. Users carry real argon2id
// hashes of the demo password and are not persisted.
func (h *MockHandler) MockingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.GenerateUsers(defaultMockUsers)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, users)
}

// GenerateData handles POST /mocks/generatedata. Generates the requested
// number of users and pets and returns them; nothing is persisted.
func (h *MockHandler) GenerateData(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.UsersCount < 0 || req.PetsCount < 0 || req.UsersCount > maxMockBatch || req.PetsCount > maxMockBatch {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "counts must be between 0 and 1000")
		return
	}

	users, err := h.svc.GenerateUsers(req.UsersCount)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	pets := h.svc.GeneratePets(req.PetsCount)

	writeSuccess(w, http.StatusOK, map[string]any{
		"users": users,
		"pets":  pets,
	})
}
