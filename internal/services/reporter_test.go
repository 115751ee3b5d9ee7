package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

type fakePublisher struct {
	msgs []*amqp.SyncFailureMessage
	err  error
}

func (p *fakePublisher) PublishSyncFailure(ctx context.Context, msg *amqp.SyncFailureMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func TestAMQPReporterPublishes(t *testing.T) {
	pub := &fakePublisher{}
	r := NewAMQPReporter(pub, applog.Discard())
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	r.ReportSyncFailure(context.Background(), SyncFailure{
		Operation:     OpUpdate,
		UserID:        "u1",
		TransactionID: "7",
		Payload:       core.UpdateTransactionInput{Title: ptr("Rent")},
		Err:           errors.New("HTTP Error 502"),
		At:            at,
	})

	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, OpUpdate, msg.Operation)
	assert.Equal(t, "u1", msg.UserID)
	assert.Equal(t, "7", msg.TransactionID)
	assert.Equal(t, "HTTP Error 502", msg.Error)
	assert.JSONEq(t, `{"title":"Rent"}`, string(msg.Payload))
	assert.Equal(t, at, msg.Timestamp)
}

func TestAMQPReporterSwallowsPublishError(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Format: "text", Output: &buf})
	r := NewAMQPReporter(&fakePublisher{err: errors.New("broker down")}, logger)

	r.ReportSyncFailure(context.Background(), SyncFailure{Operation: OpDelete, TransactionID: "1", Err: errors.New("x")})
	assert.Contains(t, buf.String(), "broker down")
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Format: "text", Output: &buf})
	NewLogReporter(logger).ReportSyncFailure(context.Background(), SyncFailure{Operation: OpCreate, TransactionID: "42", Err: errors.New("offline")})

	out := buf.String()
	assert.Contains(t, out, "offline")
	assert.Contains(t, out, "42")
}

func TestMultiReporter(t *testing.T) {
	a, b := &recordingReporter{}, &recordingReporter{}
	MultiReporter{a, b}.ReportSyncFailure(context.Background(), SyncFailure{Operation: OpCreate})
	assert.Len(t, a.Failures(), 1)
	assert.Len(t, b.Failures(), 1)
}
