// Package app wires the transaction cache, the session state and the query
// client into the operations a presentation layer calls.
package app

import (
	"context"
	"errors"
	"slices"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/i18n"
	applog "fintrack/internal/log"
	"fintrack/internal/query"
	"fintrack/internal/services"
	"fintrack/internal/session"
)

// TransactionsKey prefixes every transaction query.
const TransactionsKey = "transactions"

// ErrNotAuthenticated is returned by operations that need a session user.
var ErrNotAuthenticated = errors.New("not authenticated")

// TransactionCache is the cache service surface used here.
type TransactionCache interface {
	GetAll(ctx context.Context, userID string) ([]core.Transaction, error)
	Create(ctx context.Context, userID string, in core.CreateTransactionInput) (core.Transaction, error)
	Update(ctx context.Context, id string, in core.UpdateTransactionInput) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
}

var _ TransactionCache = (*services.TransactionService)(nil)

// ListOptions narrows and orders a listing. Sorting applies only when both
// SortField and SortOrder are set.
type ListOptions struct {
	Filters   core.TransactionFilters
	SortField core.SortField
	SortOrder core.SortOrder
}

// snapshot is one fetched collection. Its pointer identity marks a new fetch.
type snapshot struct {
	txs []core.Transaction
}

type listMemo struct {
	raw  *snapshot
	opts ListOptions
	view []core.Transaction
}

// Transactions exposes the list, summary and mutation operations. Mutations
// report their outcome through the notifier.
type Transactions struct {
	cache    TransactionCache
	queries  *query.Client
	session  *session.Store
	notifier Notifier
	tr       i18n.Translator
	logger   *applog.Logger

	memoMu sync.Mutex
	memo   *listMemo

	create, update, remove mutation
}

// NewTransactions builds the operations. A nil notifier drops notices and
// declines every confirmation; a nil tr shows message keys as they are.
func NewTransactions(cache TransactionCache, queries *query.Client, store *session.Store, notifier Notifier, tr i18n.Translator, logger *applog.Logger) *Transactions {
	if logger == nil {
		logger = applog.Discard()
	}
	if notifier == nil {
		notifier = silentNotifier{}
	}
	if tr == nil {
		tr = func(key string) string { return key }
	}
	return &Transactions{
		cache:    cache,
		queries:  queries,
		session:  store,
		notifier: notifier,
		tr:       tr,
		logger:   logger.WithComponent(applog.ComponentApp),
	}
}

// Key returns the query key for userID's collection.
func Key(userID string) query.Key {
	return query.Key{TransactionsKey, userID}
}

func (t *Transactions) userID() (string, bool) {
	st := t.session.State()
	if st.User == nil || st.User.ID == "" {
		return "", false
	}
	return st.User.ID, true
}

// List returns the session user's transactions filtered and sorted per opts.
// Without a session user it returns an empty list and fetches nothing. The
// derived view is reused until the data or the options change.
func (t *Transactions) List(ctx context.Context, opts ListOptions) ([]core.Transaction, error) {
	userID, ok := t.userID()
	if !ok {
		return []core.Transaction{}, nil
	}

	snap, err := query.Get(ctx, t.queries, Key(userID), func(ctx context.Context) (*snapshot, error) {
		txs, err := t.cache.GetAll(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &snapshot{txs: txs}, nil
	})
	if err != nil {
		return nil, err
	}

	t.memoMu.Lock()
	defer t.memoMu.Unlock()
	if t.memo != nil && t.memo.raw == snap && t.memo.opts == opts {
		return slices.Clone(t.memo.view), nil
	}

	view := slices.Clone(snap.txs)
	if !opts.Filters.IsZero() {
		view = services.FilterTransactions(view, opts.Filters)
	}
	if opts.SortField != "" && opts.SortOrder != "" {
		view = services.SortTransactions(view, opts.SortField, opts.SortOrder)
	}
	if view == nil {
		view = []core.Transaction{}
	}
	t.memo = &listMemo{raw: snap, opts: opts, view: view}
	return slices.Clone(view), nil
}

// Summary totals the session user's whole collection.
func (t *Transactions) Summary(ctx context.Context) (core.Summary, error) {
	txs, err := t.List(ctx, ListOptions{})
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(txs), nil
}

// Create adds a transaction for the session user.
func (t *Transactions) Create(ctx context.Context, in core.CreateTransactionInput) (core.Transaction, error) {
	done := t.create.start()
	defer done()

	userID, ok := t.userID()
	if !ok {
		t.notify(LevelError, i18n.CreateError)
		return core.Transaction{}, ErrNotAuthenticated
	}
	tx, err := t.cache.Create(ctx, userID, in)
	if err != nil {
		t.notify(LevelError, i18n.CreateError)
		return core.Transaction{}, err
	}
	t.refresh(ctx)
	t.notify(LevelSuccess, i18n.CreateSuccess)
	return tx, nil
}

// Update changes a transaction of the session user.
func (t *Transactions) Update(ctx context.Context, id string, in core.UpdateTransactionInput) (core.Transaction, error) {
	done := t.update.start()
	defer done()

	tx, err := t.cache.Update(ctx, id, in)
	if err != nil {
		t.notify(LevelError, i18n.UpdateError)
		return core.Transaction{}, err
	}
	t.refresh(ctx)
	t.notify(LevelSuccess, i18n.UpdateSuccess)
	return tx, nil
}

// Delete removes a transaction of the session user.
func (t *Transactions) Delete(ctx context.Context, id string) error {
	done := t.remove.start()
	defer done()

	if err := t.cache.Delete(ctx, id); err != nil {
		t.notify(LevelError, i18n.DeleteError)
		return err
	}
	t.refresh(ctx)
	t.notify(LevelSuccess, i18n.DeleteSuccess)
	return nil
}

// ConfirmDelete asks the user before deleting id. It reports whether the
// deletion was accepted.
func (t *Transactions) ConfirmDelete(ctx context.Context, id string) (bool, error) {
	var (
		accepted bool
		err      error
	)
	t.notifier.Confirm(t.tr(i18n.ConfirmDeleteMessage), func() {
		accepted = true
		err = t.Delete(ctx, id)
	}, ConfirmOptions{
		Title:       t.tr(i18n.ConfirmDeleteTitle),
		ConfirmText: t.tr(i18n.Delete),
		CancelText:  t.tr(i18n.Cancel),
	})
	return accepted, err
}

func (t *Transactions) notify(level Level, key string) {
	t.notifier.Notify(level, t.tr(key))
}

func (t *Transactions) CreatePending() bool { return t.create.pending() }
func (t *Transactions) UpdatePending() bool { return t.update.pending() }
func (t *Transactions) DeletePending() bool { return t.remove.pending() }

// refresh invalidates every transaction query and loads them again. A failed
// reload leaves the queries empty so the next List fetches.
func (t *Transactions) refresh(ctx context.Context) {
	if err := t.queries.Refetch(ctx, query.Key{TransactionsKey}); err != nil {
		t.logger.WarnContext(ctx, "Refetch after mutation failed",
			applog.FieldOperation, applog.OpRefetch,
			applog.FieldError, err)
	}
}
