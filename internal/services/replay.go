package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/gateway"
)

var ErrUnknownOperation = errors.New("unknown sync operation")

// Replay retries the gateway call recorded in msg. A delete whose target is
// already gone counts as done.
func Replay(ctx context.Context, gw gateway.TransactionGateway, msg *amqp.SyncFailureMessage) error {
	switch msg.Operation {
	case OpCreate:
		var in core.CreateTransactionInput
		if err := json.Unmarshal(msg.Payload, &in); err != nil {
			return fmt.Errorf("decode create payload: %w", err)
		}
		_, err := gw.Create(ctx, msg.UserID, in)
		return err
	case OpUpdate:
		var in core.UpdateTransactionInput
		if err := json.Unmarshal(msg.Payload, &in); err != nil {
			return fmt.Errorf("decode update payload: %w", err)
		}
		_, err := gw.Update(ctx, msg.TransactionID, in)
		return err
	case OpDelete:
		err := gw.Delete(ctx, msg.TransactionID)
		if errors.Is(err, gateway.ErrNotFound) {
			return nil
		}
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownOperation, msg.Operation)
}
