// Package model defines domain entities for the application.
package model

import (
	"slices"
	"time"
)

// Species constants for pets.
const (
	SpeciesDog     = "dog"
	SpeciesCat     = "cat"
	SpeciesBird    = "bird"
	SpeciesRabbit  = "rabbit"
	SpeciesHamster = "hamster"
)

// ValidSpecies contains all valid species values.
var ValidSpecies = []string{SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRabbit, SpeciesHamster}

// Pet age bounds, in years.
const (
	MinPetAge = 0
	MaxPetAge = 30
)

// IsValidSpecies reports whether species is a known species value.
func IsValidSpecies(species string) bool {
	return slices.Contains(ValidSpecies, species)
}

// Pet represents an animal available for (or already in) adoption.
//
// Invariant: Adopted is true if and only if OwnerID is non-nil. The adopted
// flag is the source of truth for availability checks; ownership writes go
// through the repository's conditional update so the invariant holds even
// under concurrent adoption attempts.
type Pet struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Breed       string    `json:"breed"`
	Age         int       `json:"age"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Adopted     bool      `json:"adopted"`
	OwnerID     *string   `json:"owner,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Consistent reports whether the adopted flag agrees with the owner
// reference.
func (p *Pet) Consistent() bool {
	return p.Adopted == (p.OwnerID != nil)
}
