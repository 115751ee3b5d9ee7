// Package worker replays background gateway calls that failed, taking them
// from the sync-failure queue.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/gateway"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

const (
	DefaultMaxAttempts = 5
	DefaultRetryDelay  = 2 * time.Second
)

// ReplayWorker retries queued sync failures against the gateway. A message
// that keeps failing is dropped after MaxAttempts deliveries.
type ReplayWorker struct {
	gateway     gateway.TransactionGateway
	logger      *applog.Logger
	maxAttempts int
	retryDelay  time.Duration

	mu       sync.Mutex
	attempts map[string]int

	replayed atomic.Int64
	dropped  atomic.Int64
}

// Stats counts what the worker did since it started.
type Stats struct {
	Replayed int64
	Dropped  int64
	Retrying int
}

func NewReplayWorker(gw gateway.TransactionGateway, logger *applog.Logger, maxAttempts int, retryDelay time.Duration) *ReplayWorker {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if retryDelay < 0 {
		retryDelay = 0
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &ReplayWorker{
		gateway:     gw,
		logger:      logger.WithComponent(applog.ComponentAMQP),
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		attempts:    make(map[string]int),
	}
}

// messageKey identifies redeliveries of the same failure.
func messageKey(msg *amqp.SyncFailureMessage) string {
	return fmt.Sprintf("%s/%s/%s/%d", msg.Operation, msg.UserID, msg.TransactionID, msg.Timestamp.UnixNano())
}

// HandleSyncFailure replays one message. A returned error requeues it; the
// worker waits RetryDelay first so a persistent failure does not spin.
func (w *ReplayWorker) HandleSyncFailure(ctx context.Context, msg *amqp.SyncFailureMessage) error {
	key := messageKey(msg)

	err := services.Replay(ctx, w.gateway, msg)
	if err == nil {
		w.forget(key)
		w.replayed.Add(1)
		w.logger.InfoContext(ctx, "Replayed sync failure",
			applog.FieldOperation, msg.Operation,
			applog.FieldUserID, msg.UserID,
			applog.FieldTransactionID, msg.TransactionID)
		return nil
	}

	n := w.recordAttempt(key)
	if n >= w.maxAttempts {
		w.forget(key)
		w.dropped.Add(1)
		w.logger.ErrorContext(ctx, "Dropping sync failure after repeated replay errors",
			applog.FieldOperation, msg.Operation,
			applog.FieldTransactionID, msg.TransactionID,
			"attempts", n,
			applog.FieldError, err)
		return nil
	}

	w.logger.WarnContext(ctx, "Replay failed, will retry",
		applog.FieldOperation, msg.Operation,
		applog.FieldTransactionID, msg.TransactionID,
		"attempt", n,
		applog.FieldError, err)

	if w.retryDelay > 0 {
		timer := time.NewTimer(w.retryDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
	return fmt.Errorf("replay %s: %w", msg.Operation, err)
}

// Run consumes the queue until ctx is done.
func (w *ReplayWorker) Run(ctx context.Context, client *amqp.Client) error {
	w.logger.InfoContext(ctx, "Replay worker started",
		applog.FieldOperation, applog.OpStartup,
		"max_attempts", w.maxAttempts)
	err := client.ConsumeSyncFailures(ctx, func(msg *amqp.SyncFailureMessage) error {
		return w.HandleSyncFailure(ctx, msg)
	})
	stats := w.Stats()
	w.logger.InfoContext(ctx, "Replay worker stopped",
		applog.FieldOperation, applog.OpShutdown,
		"replayed", stats.Replayed,
		"dropped", stats.Dropped)
	return err
}

func (w *ReplayWorker) Stats() Stats {
	w.mu.Lock()
	retrying := len(w.attempts)
	w.mu.Unlock()
	return Stats{Replayed: w.replayed.Load(), Dropped: w.dropped.Load(), Retrying: retrying}
}

func (w *ReplayWorker) recordAttempt(key string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts[key]++
	return w.attempts[key]
}

func (w *ReplayWorker) forget(key string) {
	w.mu.Lock()
	delete(w.attempts, key)
	w.mu.Unlock()
}
