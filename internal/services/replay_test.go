package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/gateway"
)

func TestReplay(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		msg  *amqp.SyncFailureMessage
		call string
	}{
		{"create", amqp.NewSyncFailureMessage(OpCreate, "u1", "local", "x", []byte(`{"title":"Tea","amount":5,"type":"expense","category":"food","date":"2024-01-01"}`)), "create:u1"},
		{"update", amqp.NewSyncFailureMessage(OpUpdate, "u1", "7", "x", []byte(`{"title":"Tea"}`)), "update:7"},
		{"delete", amqp.NewSyncFailureMessage(OpDelete, "u1", "7", "x", nil), "delete:7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			require.NoError(t, Replay(ctx, gw, tt.msg))
			assert.Equal(t, []string{tt.call}, gw.Calls())
		})
	}
}

func TestReplayErrors(t *testing.T) {
	ctx := context.Background()

	err := Replay(ctx, &fakeGateway{}, amqp.NewSyncFailureMessage("merge", "", "", "", nil))
	assert.ErrorIs(t, err, ErrUnknownOperation)

	err = Replay(ctx, &fakeGateway{}, amqp.NewSyncFailureMessage(OpCreate, "u1", "", "", []byte(`nope`)))
	assert.Error(t, err)

	down := errors.New("still down")
	err = Replay(ctx, &fakeGateway{callErr: down}, amqp.NewSyncFailureMessage(OpUpdate, "u1", "1", "", []byte(`{}`)))
	assert.ErrorIs(t, err, down)

	err = Replay(ctx, &fakeGateway{callErr: gateway.ErrNotFound}, amqp.NewSyncFailureMessage(OpDelete, "u1", "1", "", nil))
	assert.NoError(t, err, "deleting a missing transaction is already reconciled")
}
