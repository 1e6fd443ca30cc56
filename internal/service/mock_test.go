package service

import (
	"testing"

	"github.com/adoptly/adoptly/internal/auth"
	"github.com/adoptly/adoptly/internal/model"
)

func TestMockService_GeneratePets(t *testing.T) {
	svc := NewMockService()

	pets := svc.GeneratePets(50)
	if len(pets) != 50 {
		t.Fatalf("generated %d pets, want 50", len(pets))
	}

	seen := make(map[string]bool)
	for _, pet := range pets {
		if seen[pet.ID] {
			t.Errorf("duplicate pet ID %s", pet.ID)
		}
		seen[pet.ID] = true

		if !model.IsValidSpecies(pet.Species) {
			t.Errorf("invalid species %q", pet.Species)
		}
		if pet.Age < model.MinPetAge || pet.Age > model.MaxPetAge {
			t.Errorf("age %d out of range", pet.Age)
		}
		if pet.Adopted || pet.OwnerID != nil {
			t.Errorf("generated pet must be available, got adopted=%v owner=%v", pet.Adopted, pet.OwnerID)
		}
	}
}

func TestMockService_GenerateUsers(t *testing.T) {
	svc := NewMockService()

	users, err := svc.GenerateUsers(20)
	if err != nil {
		t.Fatalf("GenerateUsers() error = %v", err)
	}
	if len(users) != 20 {
		t.Fatalf("generated %d users, want 20", len(users))
	}

	for _, user := range users {
		if !model.IsValidRole(user.Role) {
			t.Errorf("invalid role %q", user.Role)
		}
		if user.Pets == nil {
			t.Error("Pets must be an empty slice, not nil")
		}
	}

	// All generated users share the documented demo password.
	match, err := auth.VerifyPassword("coder123", users[0].PasswordHash)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !match {
		t.Error("generated user password hash does not match demo password")
	}
}

