package gateway

import (
	"context"

	"fintrack/internal/core"
)

// Ports for the remote service.
type (
	// TransactionGateway is the remote transaction collection.
	TransactionGateway interface {
		List(ctx context.Context, userID string) ([]core.Transaction, error)
		Get(ctx context.Context, id string) (core.Transaction, error)
		Create(ctx context.Context, userID string, in core.CreateTransactionInput) (core.Transaction, error)
		Update(ctx context.Context, id string, in core.UpdateTransactionInput) (core.Transaction, error)
		Delete(ctx context.Context, id string) error
	}

	// AuthGateway authenticates users and validates sessions.
	AuthGateway interface {
		Login(ctx context.Context, creds core.Credentials) (core.AuthResponse, error)
		Logout(ctx context.Context) error
		// Validate checks token and returns the user it belongs to.
		Validate(ctx context.Context, token string) (core.User, error)
		// Me returns the user behind the stored token.
		Me(ctx context.Context) (core.User, error)
	}
)

// Wire envelopes.
type (
	listResponse struct {
		Resp []core.Transaction `json:"resp"`
	}

	transactionResponse struct {
		Transaction core.Transaction `json:"transaction"`
	}

	loginResponse struct {
		Resp core.AuthResponse `json:"resp"`
	}

	userResponse struct {
		User core.User `json:"user"`
	}

	errorResponse struct {
		Message string `json:"message"`
	}
)
