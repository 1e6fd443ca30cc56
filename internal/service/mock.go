package service

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/adoptly/adoptly/internal/auth"
	"github.com/adoptly/adoptly/internal/model"
)

// mockDefaultPassword is the password every generated user is hashed with,
// so sample payloads carry realistic argon2id hashes.
const mockDefaultPassword = "coder123"

var mockFirstNames = []string{
	"James", "Mary", "John", "Patricia", "Robert", "Jennifer",
	"Michael", "Linda", "William", "Elizabeth", "David", "Barbara",
	"Richard", "Susan", "Joseph", "Jessica", "Thomas", "Sarah",
}

var mockLastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia",
	"Miller", "Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez",
	"Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore",
}

var mockPetNames = []string{
	"Max", "Bella", "Charlie", "Luna", "Lucy", "Cooper",
	"Bailey", "Daisy", "Rocky", "Molly", "Buddy", "Sadie",
	"Milo", "Maggie", "Bear", "Sophie", "Duke", "Chloe",
}

var mockBreeds = map[string][]string{
	model.SpeciesDog:     {"Labrador", "German Shepherd", "Golden Retriever", "Bulldog", "Beagle"},
	model.SpeciesCat:     {"Persian", "Siamese", "Maine Coon", "Ragdoll", "Sphynx"},
	model.SpeciesBird:    {"Parrot", "Canary", "Cockatiel", "Finch", "Budgie"},
	model.SpeciesRabbit:  {"Holland Lop", "Netherland Dwarf", "Rex", "Angora", "Lionhead"},
	model.SpeciesHamster: {"Syrian", "Dwarf", "Roborovski", "Chinese", "Campbell"},
}

// MockService generates realistic fixture data for demos and load tests.
// Generated records are plain in-memory values; nothing here touches a
// store, so the endpoints backed by this service cannot mint accounts.
type MockService struct{}

// NewMockService creates a new MockService.
func NewMockService() *MockService {
	return &MockService{}
}

// GeneratePets returns count randomly generated pets, none adopted.
func (s *MockService) GeneratePets(count int) []*model.Pet {
	pets := make([]*model.Pet, 0, count)
	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		species := model.ValidSpecies[rand.IntN(len(model.ValidSpecies))]
		breeds := mockBreeds[species]
		pets = append(pets, &model.Pet{
			ID:          ulid.Make().String(),
			Name:        mockPetNames[rand.IntN(len(mockPetNames))],
			Species:     species,
			Breed:       breeds[rand.IntN(len(breeds))],
			Age:         rand.IntN(model.MaxPetAge + 1),
			Description: fmt.Sprintf("A lovely %s looking for a home", species),
			Adopted:     false,
			OwnerID:     nil,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return pets
}

// GenerateUsers returns count randomly generated users. Every user shares
// the same known password hash and roughly one in five is an admin.
func (s *MockService) GenerateUsers(count int) ([]*model.User, error) {
	hash, err := auth.HashPassword(mockDefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("hash mock password: %w", err)
	}

	users := make([]*model.User, 0, count)
	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		first := mockFirstNames[rand.IntN(len(mockFirstNames))]
		last := mockLastNames[rand.IntN(len(mockLastNames))]
		role := model.RoleUser
		if rand.IntN(5) == 0 {
			role = model.RoleAdmin
		}
		id := ulid.Make().String()
		users = append(users, &model.User{
			ID:           id,
			FirstName:    first,
			LastName:     last,
			Email:        fmt.Sprintf("%s.%s.%s@example.com", strings.ToLower(first), strings.ToLower(last), strings.ToLower(id)),
			PasswordHash: hash,
			Role:         role,
			Pets:         []string{},
			Documents:    []model.Document{},
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return users, nil
}
