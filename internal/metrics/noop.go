package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLoginSuccess is a no-op.
func (n *NoopRecorder) IncLoginSuccess() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure() {}

// IncTokenRejected is a no-op.
func (n *NoopRecorder) IncTokenRejected(reason string) {}

// IncPetAdopted is a no-op.
func (n *NoopRecorder) IncPetAdopted() {}

// IncAdoptionConflict is a no-op.
func (n *NoopRecorder) IncAdoptionConflict() {}

// IncStatusUpdated is a no-op.
func (n *NoopRecorder) IncStatusUpdated(status string) {}
