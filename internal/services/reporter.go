package services

import (
	"context"
	"encoding/json"
	"time"

	"fintrack/internal/amqp"
	applog "fintrack/internal/log"
)

// Background sync operations.
const (
	OpCreate = applog.OpCreate
	OpUpdate = applog.OpUpdate
	OpDelete = applog.OpDelete
)

// SyncFailure describes a gateway call that failed after the local cache was
// already updated.
type SyncFailure struct {
	Operation     string
	UserID        string
	TransactionID string
	Payload       any
	Err           error
	At            time.Time
}

// SyncFailureReporter observes background gateway failures. Implementations
// must be safe for concurrent use.
type SyncFailureReporter interface {
	ReportSyncFailure(ctx context.Context, f SyncFailure)
}

// LogReporter writes each failure to the logger.
type LogReporter struct {
	logger *applog.Logger
}

func NewLogReporter(logger *applog.Logger) *LogReporter {
	return &LogReporter{logger: logger.WithComponent(applog.ComponentTransaction)}
}

func (r *LogReporter) ReportSyncFailure(ctx context.Context, f SyncFailure) {
	r.logger.WarnContext(ctx, "Gateway call failed, local cache is updated",
		applog.FieldOperation, f.Operation,
		applog.FieldUserID, f.UserID,
		applog.FieldTransactionID, f.TransactionID,
		applog.FieldError, f.Err)
}

// Publisher is the part of the AMQP client the reporter needs.
type Publisher interface {
	PublishSyncFailure(ctx context.Context, msg *amqp.SyncFailureMessage) error
}

// AMQPReporter publishes failures so another process can reconcile the
// remote copy. Publish errors are logged and otherwise dropped.
type AMQPReporter struct {
	publisher Publisher
	logger    *applog.Logger
}

func NewAMQPReporter(publisher Publisher, logger *applog.Logger) *AMQPReporter {
	return &AMQPReporter{
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentAMQP),
	}
}

func (r *AMQPReporter) ReportSyncFailure(ctx context.Context, f SyncFailure) {
	var payload []byte
	if f.Payload != nil {
		b, err := json.Marshal(f.Payload)
		if err != nil {
			r.logger.WarnContext(ctx, "Failed to encode sync failure payload", applog.FieldError, err)
		} else {
			payload = b
		}
	}

	errMsg := ""
	if f.Err != nil {
		errMsg = f.Err.Error()
	}
	msg := amqp.NewSyncFailureMessage(f.Operation, f.UserID, f.TransactionID, errMsg, payload)
	if !f.At.IsZero() {
		msg.Timestamp = f.At
	}

	if err := r.publisher.PublishSyncFailure(ctx, msg); err != nil {
		r.logger.ErrorContext(ctx, "Failed to publish sync failure",
			applog.FieldOperation, f.Operation,
			applog.FieldTransactionID, f.TransactionID,
			applog.FieldError, err)
	}
}

// MultiReporter fans a failure out to every reporter in order.
type MultiReporter []SyncFailureReporter

func (m MultiReporter) ReportSyncFailure(ctx context.Context, f SyncFailure) {
	for _, r := range m {
		r.ReportSyncFailure(ctx, f)
	}
}
