package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/adoptly/adoptly/internal/handler/dto"
	"github.com/adoptly/adoptly/internal/repository"
	"github.com/adoptly/adoptly/internal/service"
)

// PetHandler handles pet administration endpoints.
type PetHandler struct {
	svc    *service.PetService
	logger *slog.Logger
}

// NewPetHandler creates a new PetHandler.
func NewPetHandler(svc *service.PetService, logger *slog.Logger) *PetHandler {
	return &PetHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /pets. Supports ?adopted=true|false and ?species=dog.
func (h *PetHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repository.PetFilter{Species: query.Get("species")}
	if v := query.Get("adopted"); v != "" {
		adopted, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "adopted must be true or false")
			return
		}
		filter.Adopted = &adopted
	}

	pets, err := h.svc.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, pets)
}

// Get handles GET /pets/{pid}.
func (h *PetHandler) Get(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "pid")

	pet, err := h.svc.Get(r.Context(), pid)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, pet)
}

// Create handles POST /pets. Admin only.
func (h *PetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.Name == "" || req.Species == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "name and species are required")
		return
	}

	pet, err := h.svc.Create(r.Context(), service.CreatePetInput{
		Name:        req.Name,
		Species:     req.Species,
		Breed:       req.Breed,
		Age:         req.Age,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("pet_created", "pet_id", pet.ID, "species", pet.Species)
	writeSuccess(w, http.StatusCreated, pet)
}

// Update handles PUT /pets/{pid}. Admin only.
func (h *PetHandler) Update(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "pid")

	var req dto.UpdatePetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	pet, err := h.svc.Update(r.Context(), pid, service.UpdatePetInput{
		Name:        req.Name,
		Breed:       req.Breed,
		Age:         req.Age,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("pet_updated", "pet_id", pid)
	writeSuccess(w, http.StatusOK, pet)
}
