// Package services holds the transaction cache service: a write-through local
// cache in front of the remote transaction gateway.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/gateway"
	"fintrack/internal/kvstore"
	applog "fintrack/internal/log"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// TransactionService reads and writes the per-user transaction cache. Writes
// land in the cache first and are then pushed to the gateway in the
// background; a failed push is reported but never rolls the cache back.
type TransactionService struct {
	store    kvstore.Store
	gateway  gateway.TransactionGateway
	reporter SyncFailureReporter
	logger   *applog.Logger
	now      func() time.Time

	mu sync.Mutex
	wg sync.WaitGroup
}

// Option configures a TransactionService.
type Option func(*TransactionService)

// WithReporter replaces the default log reporter.
func WithReporter(r SyncFailureReporter) Option {
	return func(s *TransactionService) { s.reporter = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *TransactionService) { s.now = now }
}

func NewTransactionService(store kvstore.Store, gw gateway.TransactionGateway, logger *applog.Logger, opts ...Option) *TransactionService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	s := &TransactionService{
		store:   store,
		gateway: gw,
		logger:  logger.WithComponent(applog.ComponentTransaction),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reporter == nil {
		s.reporter = NewLogReporter(logger)
	}
	return s
}

// GetAll returns the cached transactions for userID. An empty cache is filled
// from the gateway when the gateway has data; gateway errors are logged and
// the local cache is returned instead.
func (s *TransactionService) GetAll(ctx context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	local := s.load(ctx, userID)
	if len(local) > 0 {
		return local, nil
	}

	remote, err := s.gateway.List(ctx, userID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.WarnContext(ctx, "Gateway list failed, serving local cache",
			applog.FieldUserID, userID,
			applog.FieldError, err)
		return local, nil
	}
	if len(remote) == 0 {
		return local, nil
	}

	s.save(ctx, userID, remote)
	s.logger.DebugContext(ctx, "Cache filled from gateway",
		applog.FieldUserID, userID,
		applog.FieldCount, len(remote))
	return remote, nil
}

// GetByID reads a single transaction straight from the gateway.
func (s *TransactionService) GetByID(ctx context.Context, id string) (core.Transaction, error) {
	t, err := s.gateway.Get(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

// Create appends a new transaction to the cache and returns it. The gateway
// create call runs in the background. Input is stored as given; callers
// validate it.
func (s *TransactionService) Create(ctx context.Context, userID string, in core.CreateTransactionInput) (core.Transaction, error) {
	s.mu.Lock()
	txs := s.load(ctx, userID)
	now := s.now()
	stamp := now.UTC().Format(time.RFC3339Nano)
	t := core.Transaction{
		ID:        newID(now, txs),
		Title:     in.Title,
		Amount:    in.Amount,
		Type:      in.Type,
		Category:  in.Category,
		Date:      in.Date,
		UserID:    userID,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
	s.save(ctx, userID, append(txs, t))
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction created locally",
		applog.FieldUserID, userID,
		applog.FieldTransactionID, t.ID,
		applog.FieldTxType, string(t.Type),
		applog.FieldCategory, string(t.Category),
		applog.FieldAmount, t.Amount)

	s.background(ctx, SyncFailure{Operation: OpCreate, UserID: userID, TransactionID: t.ID, Payload: in}, func(ctx context.Context) error {
		_, err := s.gateway.Create(ctx, userID, in)
		return err
	})
	return t, nil
}

// Update merges in over the cached transaction id of the current session user.
// The gateway update is sent even when id is not cached; the caller then gets
// ErrTransactionNotFound since there is no local copy to return.
func (s *TransactionService) Update(ctx context.Context, id string, in core.UpdateTransactionInput) (core.Transaction, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	txs := s.load(ctx, userID)
	idx := -1
	for i := range txs {
		if txs[i].ID == id {
			idx = i
			break
		}
	}
	var updated core.Transaction
	if idx >= 0 {
		updated = in.Apply(txs[idx])
		updated.UpdatedAt = s.now().UTC().Format(time.RFC3339Nano)
		txs[idx] = updated
		s.save(ctx, userID, txs)
	}
	s.mu.Unlock()

	if idx >= 0 {
		s.logger.InfoContext(ctx, "Transaction updated locally",
			applog.FieldUserID, userID,
			applog.FieldTransactionID, id)
	} else {
		s.logger.DebugContext(ctx, "Transaction not cached, sending update only",
			applog.FieldUserID, userID,
			applog.FieldTransactionID, id)
	}

	s.background(ctx, SyncFailure{Operation: OpUpdate, UserID: userID, TransactionID: id, Payload: in}, func(ctx context.Context) error {
		_, err := s.gateway.Update(ctx, id, in)
		return err
	})
	if idx < 0 {
		return core.Transaction{}, fmt.Errorf("update %s: %w", id, ErrTransactionNotFound)
	}
	return updated, nil
}

// Delete removes id from the current user's cache. Without a session user the
// local removal is skipped but the gateway delete is still attempted.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	userID, err := s.currentUserID(ctx)
	switch {
	case err == nil:
		s.mu.Lock()
		txs := s.load(ctx, userID)
		kept := txs[:0]
		for _, t := range txs {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		s.save(ctx, userID, kept)
		s.mu.Unlock()
		s.logger.InfoContext(ctx, "Transaction deleted locally",
			applog.FieldUserID, userID,
			applog.FieldTransactionID, id)
	case errors.Is(err, ErrUserNotFound):
		s.logger.DebugContext(ctx, "No session user, skipping local delete", applog.FieldTransactionID, id)
	default:
		return err
	}

	s.background(ctx, SyncFailure{Operation: OpDelete, UserID: userID, TransactionID: id}, func(ctx context.Context) error {
		return s.gateway.Delete(ctx, id)
	})
	return nil
}

// Wait blocks until every background gateway call has finished or ctx is done.
func (s *TransactionService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// background runs call detached from the caller's cancellation.
func (s *TransactionService) background(ctx context.Context, f SyncFailure, call func(context.Context) error) {
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := call(bg); err != nil {
			f.Err = err
			f.At = s.now()
			s.reporter.ReportSyncFailure(bg, f)
			return
		}
		s.logger.DebugContext(bg, "Gateway sync completed",
			applog.FieldOperation, f.Operation,
			applog.FieldTransactionID, f.TransactionID)
	}()
}

func (s *TransactionService) currentUserID(ctx context.Context) (string, error) {
	var u core.User
	ok, err := kvstore.GetJSON(ctx, s.store, kvstore.KeyAuthUser, &u)
	if err != nil {
		s.logger.WarnContext(ctx, "Stored user is unreadable", applog.FieldError, err)
		return "", ErrUserNotFound
	}
	if !ok || u.ID == "" {
		return "", ErrUserNotFound
	}
	return u.ID, nil
}

// load returns the cached collection; unreadable data counts as empty.
func (s *TransactionService) load(ctx context.Context, userID string) []core.Transaction {
	var txs []core.Transaction
	if _, err := kvstore.GetJSON(ctx, s.store, kvstore.TransactionsCacheKey(userID), &txs); err != nil {
		s.logger.WarnContext(ctx, "Failed to read transaction cache",
			applog.FieldUserID, userID,
			applog.FieldError, err)
		return []core.Transaction{}
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs
}

// save writes the collection; a failed write is logged, matching the cache's
// best-effort contract.
func (s *TransactionService) save(ctx context.Context, userID string, txs []core.Transaction) {
	if err := kvstore.SetJSON(ctx, s.store, kvstore.TransactionsCacheKey(userID), txs); err != nil {
		s.logger.ErrorContext(ctx, "Failed to write transaction cache",
			applog.FieldUserID, userID,
			applog.FieldError, err)
	}
}

// newID derives an id from the creation time, bumped until it is unused.
func newID(now time.Time, existing []core.Transaction) string {
	taken := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		taken[t.ID] = struct{}{}
	}
	n := now.UnixMilli()
	for {
		id := strconv.FormatInt(n, 10)
		if _, ok := taken[id]; !ok {
			return id
		}
		n++
	}
}
