// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/adoptly/adoptly/internal/model"
)

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest represents the request body for updating a profile.
type UpdateUserRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// DocumentRequest represents one document metadata entry.
type DocumentRequest struct {
	Name      string `json:"name"`
	Reference string `json:"reference"`
}

// CreatePetRequest represents the request body for registering a pet.
type CreatePetRequest struct {
	Name        string `json:"name"`
	Species     string `json:"species"`
	Breed       string `json:"breed,omitempty"`
	Age         int    `json:"age"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// UpdatePetRequest represents the request body for updating a pet.
// Ownership fields are not updatable here; adoption owns those.
type UpdatePetRequest struct {
	Name        string `json:"name,omitempty"`
	Breed       string `json:"breed,omitempty"`
	Age         *int   `json:"age,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// UpdateAdoptionRequest represents the request body for a status change.
type UpdateAdoptionRequest struct {
	Status string `json:"status"`
}

// GenerateDataRequest represents the request body for bulk mock seeding.
type GenerateDataRequest struct {
	UsersCount int `json:"users_count"`
	PetsCount  int `json:"pets_count"`
}

// UserResponse represents a user in API responses. The password hash never
// leaves the server.
type UserResponse struct {
	ID             string           `json:"id"`
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Email          string           `json:"email"`
	Role           string           `json:"role"`
	Pets           []string         `json:"pets"`
	Documents      []model.Document `json:"documents,omitempty"`
	LastConnection time.Time        `json:"last_connection"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	pets := user.Pets
	if pets == nil {
		pets = []string{}
	}
	return &UserResponse{
		ID:             user.ID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Email:          user.Email,
		Role:           user.Role,
		Pets:           pets,
		Documents:      user.Documents,
		LastConnection: user.LastConnection,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

// ToUserResponses converts a slice of users.
func ToUserResponses(users []*model.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}
