package repository

import (
	"context"
	"fmt"

	"github.com/adoptly/adoptly/internal/model"
)

// BulkInsertAuditEvents inserts a batch of audit events in one round trip.
func (r *Repository) BulkInsertAuditEvents(ctx context.Context, events []*model.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := `INSERT INTO audit_events (actor, action, subject, occurred_at) VALUES `
	args := make([]any, 0, len(events)*4)

	for i, e := range events {
		if i > 0 {
			batch += ", "
		}
		base := i * 4
		batch += fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4)
		args = append(args, e.Actor, e.Action, e.Subject, e.OccurredAt)
	}

	if _, err := r.pool.Exec(ctx, batch, args...); err != nil {
		return fmt.Errorf("failed to bulk insert audit events: %w", err)
	}

	return nil
}
