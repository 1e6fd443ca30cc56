package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered    uint64 `json:"users_registered"`
	LoginSuccesses     uint64 `json:"login_successes"`
	LoginFailures      uint64 `json:"login_failures"`
	TokensInvalid      uint64 `json:"tokens_invalid"`
	TokensExpired      uint64 `json:"tokens_expired"`
	PetsAdopted        uint64 `json:"pets_adopted"`
	AdoptionConflicts  uint64 `json:"adoption_conflicts"`
	AdoptionsApproved  uint64 `json:"adoptions_approved"`
	AdoptionsRejected  uint64 `json:"adoptions_rejected"`
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersRegistered   uint64
	loginSuccesses    uint64
	loginFailures     uint64
	tokensInvalid     uint64
	tokensExpired     uint64
	petsAdopted       uint64
	adoptionConflicts uint64
	adoptionsApproved uint64
	adoptionsRejected uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:   atomic.LoadUint64(&m.usersRegistered),
		LoginSuccesses:    atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:     atomic.LoadUint64(&m.loginFailures),
		TokensInvalid:     atomic.LoadUint64(&m.tokensInvalid),
		TokensExpired:     atomic.LoadUint64(&m.tokensExpired),
		PetsAdopted:       atomic.LoadUint64(&m.petsAdopted),
		AdoptionConflicts: atomic.LoadUint64(&m.adoptionConflicts),
		AdoptionsApproved: atomic.LoadUint64(&m.adoptionsApproved),
		AdoptionsRejected: atomic.LoadUint64(&m.adoptionsRejected),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncTokenRejected increments the token rejection counter for a reason.
func (m *InMemoryRecorder) IncTokenRejected(reason string) {
	if reason == "expired" {
		atomic.AddUint64(&m.tokensExpired, 1)
		return
	}
	atomic.AddUint64(&m.tokensInvalid, 1)
}

// IncPetAdopted increments the adoption counter.
func (m *InMemoryRecorder) IncPetAdopted() {
	atomic.AddUint64(&m.petsAdopted, 1)
}

// IncAdoptionConflict increments the already-adopted conflict counter.
func (m *InMemoryRecorder) IncAdoptionConflict() {
	atomic.AddUint64(&m.adoptionConflicts, 1)
}

// IncStatusUpdated increments the status update counter for a status.
func (m *InMemoryRecorder) IncStatusUpdated(status string) {
	switch status {
	case "approved":
		atomic.AddUint64(&m.adoptionsApproved, 1)
	case "rejected":
		atomic.AddUint64(&m.adoptionsRejected, 1)
	}
}
