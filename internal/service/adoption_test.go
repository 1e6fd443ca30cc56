package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/adoptly/adoptly/internal/model"
	"github.com/adoptly/adoptly/internal/repository/memory"
)

func newAdoptionFixture(t *testing.T) (*AdoptionService, *memory.Store, *model.User, *model.Pet) {
	t.Helper()
	store := memory.NewStore()
	svc := NewAdoptionService(store, store, store, nil, nil, nil)

	ctx := context.Background()
	user := seedUser(t, store, "owner@example.com", model.RoleUser)
	pet := &model.Pet{
		ID:        ulid.Make().String(),
		Name:      "Rex",
		Species:   model.SpeciesDog,
		Breed:     "Beagle",
		Age:       3,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := store.CreatePet(ctx, pet); err != nil {
		t.Fatalf("CreatePet() error = %v", err)
	}
	return svc, store, user, pet
}

func seedUser(t *testing.T, store *memory.Store, email, role string) *model.User {
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
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return user
}

func TestAdoptionService_Adopt(t *testing.T) {
	svc, store, user, pet := newAdoptionFixture(t)
	ctx := context.Background()

	adoption, err := svc.Adopt(ctx, user.ID, pet.ID)
	if err != nil {
		t.Fatalf("Adopt() error = %v", err)
	}

	if adoption.OwnerID != user.ID || adoption.PetID != pet.ID {
		t.Errorf("adoption = %+v, want owner %s pet %s", adoption, user.ID, pet.ID)
	}
	if adoption.Status != model.StatusPending {
		t.Errorf("Status = %q, want %q", adoption.Status, model.StatusPending)
	}

	// Ownership transfers immediately and consistently across entities.
	got, err := store.GetPetByID(ctx, pet.ID)
	if err != nil {
		t.Fatalf("GetPetByID() error = %v", err)
	}
	if !got.Adopted {
		t.Error("pet not marked adopted")
	}
	if got.OwnerID == nil || *got.OwnerID != user.ID {
		t.Errorf("pet OwnerID = %v, want %s", got.OwnerID, user.ID)
	}
	if !got.Consistent() {
		t.Error("pet adopted flag and owner reference disagree")
	}

	owner, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if len(owner.Pets) != 1 || owner.Pets[0] != pet.ID {
		t.Errorf("owner pets = %v, want [%s]", owner.Pets, pet.ID)
	}
}

func TestAdoptionService_AdoptTwice(t *testing.T) {
	svc, store, user, pet := newAdoptionFixture(t)
	ctx := context.Background()

	other := seedUser(t, store, "other@example.com", model.RoleUser)

	if _, err := svc.Adopt(ctx, user.ID, pet.ID); err != nil {
		t.Fatalf("first Adopt() error = %v", err)
	}

	if _, err := svc.Adopt(ctx, other.ID, pet.ID); !errors.Is(err, ErrPetAlreadyAdopted) {
		t.Errorf("second Adopt() error = %v, want ErrPetAlreadyAdopted", err)
	}

	// The loser must not have mutated the pet or gained a record.
	got, err := store.GetPetByID(ctx, pet.ID)
	if err != nil {
		t.Fatalf("GetPetByID() error = %v", err)
	}
	if got.OwnerID == nil || *got.OwnerID != user.ID {
		t.Errorf("pet OwnerID = %v, want first adopter %s", got.OwnerID, user.ID)
	}

	records, err := store.ListAdoptions(ctx)
	if err != nil {
		t.Fatalf("ListAdoptions() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("adoption records = %d, want 1", len(records))
	}
}

func TestAdoptionService_AdoptConcurrent(t *testing.T) {
	svc, store, _, pet := newAdoptionFixture(t)
	ctx := context.Background()

	const racers = 8
	users := make([]*model.User, racers)
	for i := range users {
		users[i] = seedUser(t, store, ulid.Make().String()+"@example.com", model.RoleUser)
	}

	var wg sync.WaitGroup
	errs := make([]error, racers)
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Adopt(ctx, users[i].ID, pet.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrPetAlreadyAdopted):
		default:
			t.Errorf("unexpected Adopt() error = %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}

	records, err := store.ListAdoptions(ctx)
	if err != nil {
		t.Fatalf("ListAdoptions() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("adoption records = %d, want 1", len(records))
	}
}

func TestAdoptionService_AdoptNotFound(t *testing.T) {
	svc, _, user, pet := newAdoptionFixture(t)
	ctx := context.Background()

	if _, err := svc.Adopt(ctx, user.ID, "missing-pet"); !errors.Is(err, ErrPetNotFound) {
		t.Errorf("Adopt() error = %v, want ErrPetNotFound", err)
	}
	if _, err := svc.Adopt(ctx, "missing-user", pet.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Adopt() error = %v, want ErrUserNotFound", err)
	}
}

func TestAdoptionService_ListVisible(t *testing.T) {
	svc, store, user, pet := newAdoptionFixture(t)
	ctx := context.Background()

	other := seedUser(t, store, "other@example.com", model.RoleUser)
	otherPet := &model.Pet{ID: ulid.Make().String(), Name: "Mia", Species: model.SpeciesCat, Breed: "Siamese", Age: 2}
	if err := store.CreatePet(ctx, otherPet); err != nil {
		t.Fatalf("CreatePet() error = %v", err)
	}

	if _, err := svc.Adopt(ctx, user.ID, pet.ID); err != nil {
		t.Fatalf("Adopt() error = %v", err)
	}
	if _, err := svc.Adopt(ctx, other.ID, otherPet.ID); err != nil {
		t.Fatalf("Adopt() error = %v", err)
	}

	// A regular user sees only their own records.
	mine, err := svc.ListVisible(ctx, &model.Identity{ID: user.ID, Email: user.Email, Role: model.RoleUser})
	if err != nil {
		t.Fatalf("ListVisible() error = %v", err)
	}
	if len(mine) != 1 || mine[0].OwnerID != user.ID {
		t.Errorf("user-scoped list = %+v, want single record owned by %s", mine, user.ID)
	}

	// An admin sees everything.
	all, err := svc.ListVisible(ctx, &model.Identity{ID: "admin", Email: "admin@example.com", Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("ListVisible() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin list = %d records, want 2", len(all))
	}

	// A user with no records gets an empty slice, never nil.
	none, err := svc.ListVisible(ctx, &model.Identity{ID: "stranger", Email: "s@example.com", Role: model.RoleUser})
	if err != nil {
		t.Fatalf("ListVisible() error = %v", err)
	}
	if none == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(none) != 0 {
		t.Errorf("stranger list = %d records, want 0", len(none))
	}
}

func TestAdoptionService_UpdateStatus(t *testing.T) {
	svc, _, user, pet := newAdoptionFixture(t)
	ctx := context.Background()

	adoption, err := svc.Adopt(ctx, user.ID, pet.ID)
	if err != nil {
		t.Fatalf("Adopt() error = %v", err)
	}

	admin := &model.Identity{ID: "admin", Email: "admin@example.com", Role: model.RoleAdmin}
	regular := &model.Identity{ID: user.ID, Email: user.Email, Role: model.RoleUser}

	tests := []struct {
		name     string
		id       string
		status   string
		identity *model.Identity
		wantErr  error
	}{
		{name: "non-admin rejected", id: adoption.ID, status: model.StatusApproved, identity: regular, wantErr: ErrNotAuthorized},
		{name: "nil identity rejected", id: adoption.ID, status: model.StatusApproved, identity: nil, wantErr: ErrNotAuthorized},
		{name: "unknown status", id: adoption.ID, status: "cancelled", identity: admin, wantErr: ErrInvalidStatus},
		{name: "unknown record", id: "missing", status: model.StatusApproved, identity: admin, wantErr: ErrAdoptionNotFound},
		{name: "approve", id: adoption.ID, status: model.StatusApproved, identity: admin, wantErr: nil},
		{name: "terminal record locked", id: adoption.ID, status: model.StatusRejected, identity: admin, wantErr: ErrAdoptionResolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpdateStatus(ctx, tt.id, tt.status, tt.identity)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("UpdateStatus() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	got, err := svc.Get(ctx, adoption.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != model.StatusApproved {
		t.Errorf("Status = %q, want %q", got.Status, model.StatusApproved)
	}
}
