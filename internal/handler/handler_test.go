package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/adoptly/adoptly/internal/auth"
	"github.com/adoptly/adoptly/internal/metrics"
	"github.com/adoptly/adoptly/internal/model"
	"github.com/adoptly/adoptly/internal/repository/memory"
	"github.com/adoptly/adoptly/internal/service"
)

type testEnv struct {
	router http.Handler
	store  *memory.Store
	tokens *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	recorder := metrics.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sessions := service.NewSessionService(store, nil, tokens, recorder, nil)
	users := service.NewUserService(store, nil)
	pets := service.NewPetService(store)
	adoptions := service.NewAdoptionService(store, store, store, nil, recorder, nil)
	mocks := service.NewMockService()

	router := NewRouter(RouterConfig{
		Logger:    logger,
		Tokens:    tokens,
		Metrics:   recorder,
		Sessions:  NewSessionHandler(sessions, logger),
		Users:     NewUserHandler(users, logger),
		Pets:      NewPetHandler(pets, logger),
		Adoptions: NewAdoptionHandler(adoptions, logger),
		Mocks:     NewMockHandler(mocks, logger),
		Health:    NewHealthHandler(nil, nil),
		Metric:    NewMetricsHandler(recorder),
	})

	return &testEnv{router: router, store: store, tokens: tokens}
}

// seedAccount inserts a user directly and issues a token for it.
func (e *testEnv) seedAccount(t *testing.T, email, role string) (*model.User, string) {
	t.Helper()
	user := &model.User{
		ID:        ulid.Make().String(),
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Role:      role,
		Pets:      []string{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := e.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	token, err := e.tokens.Issue(user)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return user, token
}

func (e *testEnv) seedPet(t *testing.T, name, species string) *model.Pet {
	t.Helper()
	pet := &model.Pet{
		ID:        ulid.Make().String(),
		Name:      name,
		Species:   species,
		Breed:     "Mixed",
		Age:       2,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := e.store.CreatePet(context.Background(), pet); err != nil {
		t.Fatalf("CreatePet() error = %v", err)
	}
	return pet
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type responseBody struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Payload json.RawMessage `json:"payload"`
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) responseBody {
	t.Helper()
	var body responseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestRegisterLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	register := map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
		"password":   "correct horse",
	}

	rec := env.do(t, http.MethodPost, "/sessions/register", "", register)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("register response leaks password material")
	}

	// Duplicate email
	rec = env.do(t, http.MethodPost, "/sessions/register", "", register)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate register status = %d, want 400", rec.Code)
	}
	if body := decodeBody(t, rec); body.Code != "USER_ALREADY_EXISTS" {
		t.Errorf("duplicate register code = %q, want USER_ALREADY_EXISTS", body.Code)
	}

	// Missing fields
	rec = env.do(t, http.MethodPost, "/sessions/register", "", map[string]string{"email": "x@example.com"})
	if body := decodeBody(t, rec); rec.Code != http.StatusBadRequest || body.Code != "VALIDATION_ERROR" {
		t.Errorf("partial register = %d/%q, want 400/VALIDATION_ERROR", rec.Code, body.Code)
	}

	// Login
	rec = env.do(t, http.MethodPost, "/sessions/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "correct horse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body.Token == "" {
		t.Fatal("login response missing token")
	}

	// Wrong password
	rec = env.do(t, http.MethodPost, "/sessions/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	if b := decodeBody(t, rec); rec.Code != http.StatusUnauthorized || b.Code != "INVALID_CREDENTIALS" {
		t.Errorf("bad login = %d/%q, want 401/INVALID_CREDENTIALS", rec.Code, b.Code)
	}

	// Token works against a protected route
	rec = env.do(t, http.MethodGet, "/sessions/current", body.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("current status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var current struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(decodeBody(t, rec).Payload, &current); err != nil {
		t.Fatalf("decode current payload: %v", err)
	}
	if current.Email != "ada@example.com" || current.Role != model.RoleUser {
		t.Errorf("current = %+v, want registered user", current)
	}

	// Logout
	rec = env.do(t, http.MethodPost, "/sessions/logout", body.Token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("logout status = %d, want 200", rec.Code)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/sessions/current"},
		{http.MethodPost, "/sessions/logout"},
		{http.MethodGet, "/users"},
		{http.MethodGet, "/pets"},
		{http.MethodGet, "/adoptions"},
		{http.MethodGet, "/metrics"},
	}

	for _, rt := range routes {
		rec := env.do(t, rt.method, rt.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", rt.method, rt.path, rec.Code)
		}
	}
}

func TestAdoptionEndpoints(t *testing.T) {
	env := newTestEnv(t)

	owner, ownerToken := env.seedAccount(t, "owner@example.com", model.RoleUser)
	other, otherToken := env.seedAccount(t, "other@example.com", model.RoleUser)
	_, adminToken := env.seedAccount(t, "admin@example.com", model.RoleAdmin)
	pet := env.seedPet(t, "Rex", model.SpeciesDog)

	// Adopt
	rec := env.do(t, http.MethodPost, "/adoptions/"+owner.ID+"/"+pet.ID, ownerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("adopt status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body.Message != "Pet adopted" {
		t.Errorf("adopt message = %q, want %q", body.Message, "Pet adopted")
	}
	var adoption model.Adoption
	if err := json.Unmarshal(body.Payload, &adoption); err != nil {
		t.Fatalf("decode adoption payload: %v", err)
	}
	if adoption.Status != model.StatusPending {
		t.Errorf("adoption status = %q, want pending", adoption.Status)
	}

	// Same pet again
	rec = env.do(t, http.MethodPost, "/adoptions/"+other.ID+"/"+pet.ID, otherToken, nil)
	if b := decodeBody(t, rec); rec.Code != http.StatusBadRequest || b.Code != "PET_ALREADY_ADOPTED" {
		t.Errorf("second adopt = %d/%q, want 400/PET_ALREADY_ADOPTED", rec.Code, b.Code)
	}

	// Unknown pet / unknown user
	rec = env.do(t, http.MethodPost, "/adoptions/"+owner.ID+"/nonexistent", ownerToken, nil)
	if b := decodeBody(t, rec); rec.Code != http.StatusNotFound || b.Code != "PET_NOT_FOUND" {
		t.Errorf("unknown pet = %d/%q, want 404/PET_NOT_FOUND", rec.Code, b.Code)
	}
	rec = env.do(t, http.MethodPost, "/adoptions/nonexistent/"+pet.ID, ownerToken, nil)
	if b := decodeBody(t, rec); rec.Code != http.StatusNotFound || b.Code != "USER_NOT_FOUND" {
		t.Errorf("unknown user = %d/%q, want 404/USER_NOT_FOUND", rec.Code, b.Code)
	}

	// Role-scoped listing
	rec = env.do(t, http.MethodGet, "/adoptions", otherToken, nil)
	var list []model.Adoption
	if err := json.Unmarshal(decodeBody(t, rec).Payload, &list); err != nil {
		t.Fatalf("decode list payload: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("other user sees %d adoptions, want 0", len(list))
	}
	if !strings.Contains(rec.Body.String(), "[]") {
		t.Errorf("empty list payload must be an array, got %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/adoptions", adminToken, nil)
	if err := json.Unmarshal(decodeBody(t, rec).Payload, &list); err != nil {
		t.Fatalf("decode admin list payload: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("admin sees %d adoptions, want 1", len(list))
	}

	// Get single record
	rec = env.do(t, http.MethodGet, "/adoptions/"+adoption.ID, ownerToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get adoption status = %d, want 200", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/adoptions/nonexistent", ownerToken, nil)
	if b := decodeBody(t, rec); rec.Code != http.StatusNotFound || b.Code != "ADOPTION_NOT_FOUND" {
		t.Errorf("missing adoption = %d/%q, want 404/ADOPTION_NOT_FOUND", rec.Code, b.Code)
	}

	// Status update: non-admin forbidden
	rec = env.do(t, http.MethodPut, "/adoptions/"+adoption.ID, ownerToken, map[string]string{"status": "approved"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin status update = %d, want 403", rec.Code)
	}

	// Invalid status
	rec = env.do(t, http.MethodPut, "/adoptions/"+adoption.ID, adminToken, map[string]string{"status": "cancelled"})
	if b := decodeBody(t, rec); rec.Code != http.StatusBadRequest || b.Code != "INVALID_STATUS" {
		t.Errorf("invalid status = %d/%q, want 400/INVALID_STATUS", rec.Code, b.Code)
	}

	// Approve, then try to flip the resolved record
	rec = env.do(t, http.MethodPut, "/adoptions/"+adoption.ID, adminToken, map[string]string{"status": "approved"})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPut, "/adoptions/"+adoption.ID, adminToken, map[string]string{"status": "rejected"})
	if b := decodeBody(t, rec); rec.Code != http.StatusConflict || b.Code != "ADOPTION_RESOLVED" {
		t.Errorf("resolved update = %d/%q, want 409/ADOPTION_RESOLVED", rec.Code, b.Code)
	}
}

func TestPetEndpoints(t *testing.T) {
	env := newTestEnv(t)

	_, userToken := env.seedAccount(t, "user@example.com", model.RoleUser)
	_, adminToken := env.seedAccount(t, "admin@example.com", model.RoleAdmin)

	// Non-admin cannot create
	create := map[string]any{"name": "Rex", "species": "dog", "breed": "Beagle", "age": 3}
	rec := env.do(t, http.MethodPost, "/pets", userToken, create)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin create = %d, want 403", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/pets", adminToken, create)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var pet model.Pet
	if err := json.Unmarshal(decodeBody(t, rec).Payload, &pet); err != nil {
		t.Fatalf("decode pet payload: %v", err)
	}

	// Invalid species
	rec = env.do(t, http.MethodPost, "/pets", adminToken, map[string]any{"name": "Goldie", "species": "fish", "age": 1})
	if b := decodeBody(t, rec); rec.Code != http.StatusBadRequest || b.Code != "VALIDATION_ERROR" {
		t.Errorf("bad species = %d/%q, want 400/VALIDATION_ERROR", rec.Code, b.Code)
	}

	// Any authenticated user can read
	rec = env.do(t, http.MethodGet, "/pets", userToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("list status = %d, want 200", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/pets/"+pet.ID, userToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/pets/nonexistent", userToken, nil)
	if b := decodeBody(t, rec); rec.Code != http.StatusNotFound || b.Code != "PET_NOT_FOUND" {
		t.Errorf("missing pet = %d/%q, want 404/PET_NOT_FOUND", rec.Code, b.Code)
	}

	// Filter by adoption state
	rec = env.do(t, http.MethodGet, "/pets?adopted=false", userToken, nil)
	var available []model.Pet
	if err := json.Unmarshal(decodeBody(t, rec).Payload, &available); err != nil {
		t.Fatalf("decode pets payload: %v", err)
	}
	if len(available) != 1 {
		t.Errorf("available pets = %d, want 1", len(available))
	}

	// Admin update
	rec = env.do(t, http.MethodPut, "/pets/"+pet.ID, adminToken, map[string]any{"name": "Rexy"})
	if rec.Code != http.StatusOK {
		t.Errorf("update status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestUserEndpoints(t *testing.T) {
	env := newTestEnv(t)

	user, userToken := env.seedAccount(t, "user@example.com", model.RoleUser)
	other, _ := env.seedAccount(t, "other@example.com", model.RoleUser)
	_, adminToken := env.seedAccount(t, "admin@example.com", model.RoleAdmin)

	// Listing is admin only
	rec := env.do(t, http.MethodGet, "/users", userToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin list = %d, want 403", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/users", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("admin list = %d, want 200", rec.Code)
	}

	// Self update allowed, updating somebody else is not
	rec = env.do(t, http.MethodPut, "/users/"+user.ID, userToken, map[string]string{"first_name": "Ada"})
	if rec.Code != http.StatusOK {
		t.Errorf("self update = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPut, "/users/"+other.ID, userToken, map[string]string{"first_name": "Eve"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("cross update = %d, want 403", rec.Code)
	}
	rec = env.do(t, http.MethodPut, "/users/"+other.ID, adminToken, map[string]string{"first_name": "Eve"})
	if rec.Code != http.StatusOK {
		t.Errorf("admin cross update = %d, want 200", rec.Code)
	}

	// Documents: self or admin
	docs := []map[string]string{{"name": "id.png", "reference": "uploads/id.png"}}
	rec = env.do(t, http.MethodPost, "/users/"+user.ID+"/documents", userToken, docs)
	if rec.Code != http.StatusOK {
		t.Errorf("self documents = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPost, "/users/"+other.ID+"/documents", userToken, docs)
	if rec.Code != http.StatusForbidden {
		t.Errorf("cross documents = %d, want 403", rec.Code)
	}

	// Delete is admin only
	rec = env.do(t, http.MethodDelete, "/users/"+other.ID, userToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin delete = %d, want 403", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/users/"+other.ID, adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("admin delete = %d, want 200", rec.Code)
	}
}

func TestMockEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/mocks/mockingpets", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mockingpets status = %d, want 200", rec.Code)
	}
	var pets []model.Pet
	if err := json.Unmarshal(decodeBody(t, rec).Payload, &pets); err != nil {
		t.Fatalf("decode pets payload: %v", err)
	}
	if len(pets) != 100 {
		t.Errorf("mockingpets = %d pets, want 100", len(pets))
	}

	rec = env.do(t, http.MethodPost, "/mocks/generatedata", "", map[string]int{
		"users_count": 2,
		"pets_count":  3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("generatedata status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var generated struct {
		Users []model.User `json:"users"`
		Pets  []model.Pet  `json:"pets"`
	}
	if err := json.Unmarshal(decodeBody(t, rec).Payload, &generated); err != nil {
		t.Fatalf("decode generatedata payload: %v", err)
	}
	if len(generated.Users) != 2 || len(generated.Pets) != 3 {
		t.Errorf("generated %d users %d pets, want 2 and 3", len(generated.Users), len(generated.Pets))
	}

	// Generated accounts only exist in the response. Logging in with one
	// and the documented demo password must fail.
	rec = env.do(t, http.MethodPost, "/sessions/login", "", map[string]string{
		"email":    generated.Users[0].Email,
		"password": "coder123",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login with generated account = %d, want 401", rec.Code)
	}
	if body := decodeBody(t, rec); body.Code != "INVALID_CREDENTIALS" {
		t.Errorf("login code = %q, want INVALID_CREDENTIALS", body.Code)
	}

	rec = env.do(t, http.MethodPost, "/mocks/generatedata", "", map[string]int{"users_count": -1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative count status = %d, want 400", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	_, userToken := env.seedAccount(t, "user@example.com", model.RoleUser)
	_, adminToken := env.seedAccount(t, "admin@example.com", model.RoleAdmin)

	rec := env.do(t, http.MethodGet, "/metrics", userToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin metrics = %d, want 403", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/metrics", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin metrics = %d, want 200", rec.Code)
	}
	var snap metrics.Snapshot
	if err := json.Unmarshal(decodeBody(t, rec).Payload, &snap); err != nil {
		t.Fatalf("decode snapshot payload: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
}
