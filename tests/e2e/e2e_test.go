//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/adoptly/adoptly/internal/auth"
	"github.com/adoptly/adoptly/internal/model"
	"github.com/adoptly/adoptly/internal/repository"
)

const adminEmail = "e2e-admin@adoptly.local"

type apiResponse struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Payload json.RawMessage `json:"payload"`
}

// TestE2EAdoptionJourney walks the full user journey against a running
// server: register, login, adopt a pet, lose the rematch, and have an admin
// resolve the record.
func TestE2EAdoptionJourney(t *testing.T) {
	baseURL := envOrDefault("ADOPTLY_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}

	adminPassword := bootstrapAdmin(t, dbURL)
	petID := seedPet(t, dbURL)

	// Register a fresh adopter.
	email := fmt.Sprintf("e2e-%s@example.com", ulid.Make().String())
	resp := call(t, baseURL, http.MethodPost, "/sessions/register", "", map[string]string{
		"first_name": "End",
		"last_name":  "ToEnd",
		"email":      email,
		"password":   "hunter2hunter2",
	})
	if resp.Status != "success" {
		t.Fatalf("register failed: %+v", resp)
	}
	var registered struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Payload, &registered); err != nil {
		t.Fatalf("decode register payload: %v", err)
	}

	// Login.
	resp = call(t, baseURL, http.MethodPost, "/sessions/login", "", map[string]string{
		"email":    email,
		"password": "hunter2hunter2",
	})
	if resp.Token == "" {
		t.Fatalf("login returned no token: %+v", resp)
	}
	userToken := resp.Token

	// Adopt.
	resp = call(t, baseURL, http.MethodPost, "/adoptions/"+registered.ID+"/"+petID, userToken, nil)
	if resp.Message != "Pet adopted" {
		t.Fatalf("adopt failed: %+v", resp)
	}
	var adoption struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Payload, &adoption); err != nil {
		t.Fatalf("decode adoption payload: %v", err)
	}
	if adoption.Status != model.StatusPending {
		t.Errorf("adoption status = %q, want pending", adoption.Status)
	}

	// Second adoption attempt must be rejected.
	resp = call(t, baseURL, http.MethodPost, "/adoptions/"+registered.ID+"/"+petID, userToken, nil)
	if resp.Code != "PET_ALREADY_ADOPTED" {
		t.Errorf("second adopt code = %q, want PET_ALREADY_ADOPTED", resp.Code)
	}

	// Admin resolves the record.
	resp = call(t, baseURL, http.MethodPost, "/sessions/login", "", map[string]string{
		"email":    adminEmail,
		"password": adminPassword,
	})
	if resp.Token == "" {
		t.Fatalf("admin login returned no token: %+v", resp)
	}
	adminToken := resp.Token

	resp = call(t, baseURL, http.MethodPut, "/adoptions/"+adoption.ID, adminToken, map[string]string{
		"status": model.StatusApproved,
	})
	if resp.Status != "success" {
		t.Fatalf("approve failed: %+v", resp)
	}

	// Resolved records are terminal.
	resp = call(t, baseURL, http.MethodPut, "/adoptions/"+adoption.ID, adminToken, map[string]string{
		"status": model.StatusRejected,
	})
	if resp.Code != "ADOPTION_RESOLVED" {
		t.Errorf("re-resolve code = %q, want ADOPTION_RESOLVED", resp.Code)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// bootstrapAdmin inserts (or refreshes) the e2e admin account directly in
// the database and returns its password.
func bootstrapAdmin(t *testing.T, dbURL string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	password := ulid.Make().String()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	_, err = repo.Pool().Exec(ctx, `
		INSERT INTO users (id, first_name, last_name, email, password_hash, role, pets, documents, last_connection, created_at, updated_at)
		VALUES ($1, 'E2E', 'Admin', $2, $3, 'admin', '{}', '[]'::jsonb, $4, $4, $4)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		ulid.Make().String(), adminEmail, hash, now,
	)
	if err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}
	return password
}

// seedPet inserts an available pet directly in the database.
func seedPet(t *testing.T, dbURL string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	pet := &model.Pet{
		ID:        ulid.Make().String(),
		Name:      "E2E Rex",
		Species:   model.SpeciesDog,
		Breed:     "Beagle",
		Age:       3,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.CreatePet(ctx, pet); err != nil {
		t.Fatalf("seed pet: %v", err)
	}
	return pet.ID
}

func call(t *testing.T, baseURL, method, path, token string, body any) apiResponse {
	t.Helper()

	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, baseURL+path, payload)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode %s %s response: %v", method, path, err)
	}
	return decoded
}
