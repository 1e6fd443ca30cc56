package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adoptly/adoptly/internal/model"
)

const (
	// ConsumerGroup is the Redis consumer group name.
	ConsumerGroup = "audit_workers"

	// DefaultBatchSize is the max events per batch.
	DefaultBatchSize = 200

	// DefaultBlockTimeout is how long to block waiting for messages.
	DefaultBlockTimeout = 5 * time.Second
)

// Repository defines the interface for audit event persistence.
type Repository interface {
	BulkInsertAuditEvents(ctx context.Context, events []*model.AuditEvent) error
}

// Worker drains audit events from the Redis stream into the record store.
type Worker struct {
	redis        *redis.Client
	repo         Repository
	logger       *slog.Logger
	consumerID   string
	batchSize    int
	blockTimeout time.Duration

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
}

// NewWorker creates a new audit worker.
func NewWorker(client *redis.Client, repo Repository, logger *slog.Logger, consumerID string) *Worker {
	return &Worker{
		redis:        client,
		repo:         repo,
		logger:       logger.With("component", "audit.worker", "consumer_id", consumerID),
		consumerID:   consumerID,
		batchSize:    DefaultBatchSize,
		blockTimeout: DefaultBlockTimeout,
	}
}

// Start begins consuming events. It is an error to start a worker twice.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return errors.New("audit worker already started")
	}

	if err := w.ensureGroup(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.started = true

	go w.run(runCtx)
	return nil
}

// Stop signals the worker to finish its current batch and waits for it.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	w.cancel()
	done := w.done
	w.started = false
	w.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ensureGroup creates the consumer group if it does not exist.
func (w *Worker) ensureGroup(ctx context.Context) error {
	err := w.redis.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroup, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	w.logger.Info("audit worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("audit worker stopping")
			return
		default:
		}

		if err := w.processBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("audit batch failed", "error", err)
			// Back off briefly so a broken dependency does not spin the loop.
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
		}
	}
}

// processBatch reads up to batchSize pending messages, persists them, and
// acknowledges the ones that were stored.
func (w *Worker) processBatch(ctx context.Context) error {
	streams, err := w.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		Streams:  []string{StreamKey, ">"},
		Count:    int64(w.batchSize),
		Block:    w.blockTimeout,
	}).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil // No messages within the block timeout.
		}
		return fmt.Errorf("xreadgroup: %w", err)
	}

	var (
		events []*model.AuditEvent
		ids    []string
	)

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			event, ok := decodeMessage(msg)
			if !ok {
				// Poison message: ack and drop so it never wedges the group.
				w.logger.Warn("dropping malformed audit message", "stream_id", msg.ID)
				ids = append(ids, msg.ID)
				continue
			}
			events = append(events, event)
			ids = append(ids, msg.ID)
		}
	}

	if len(events) > 0 {
		if err := w.repo.BulkInsertAuditEvents(ctx, events); err != nil {
			return fmt.Errorf("persist batch: %w", err)
		}
	}

	if len(ids) > 0 {
		if err := w.redis.XAck(ctx, StreamKey, ConsumerGroup, ids...).Err(); err != nil {
			return fmt.Errorf("xack: %w", err)
		}
	}

	return nil
}

func decodeMessage(msg redis.XMessage) (*model.AuditEvent, bool) {
	payload, ok := msg.Values["payload"].(string)
	if !ok {
		return nil, false
	}

	var event model.AuditEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, false
	}
	return &event, true
}
