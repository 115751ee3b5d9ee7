package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/i18n"
	"fintrack/internal/preferences"
	"fintrack/internal/query"
	"fintrack/internal/session"
)

var (
	salary    = core.Transaction{ID: "1", Title: "Salary", Amount: 1000, Type: core.Income, Category: core.Salary, Date: "2024-01-10", UserID: "u1"}
	groceries = core.Transaction{ID: "2", Title: "Groceries", Amount: 150, Type: core.Expense, Category: core.Food, Date: "2024-01-12", UserID: "u1"}
	bus       = core.Transaction{ID: "3", Title: "Bus", Amount: 3, Type: core.Expense, Category: core.Transport, Date: "2024-01-11", UserID: "u1"}
)

func loggedIn() *session.Store {
	return session.NewStore(session.Reduce(session.State{}, session.LoginFulfilled{User: core.User{ID: "u1"}, Token: "tok"}))
}

func newTestTransactions(cache *fakeCache, store *session.Store) (*Transactions, *query.Client) {
	q := query.New(10, time.Minute, nil)
	return NewTransactions(cache, q, store, nil, nil, nil), q
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func TestListDisabledWithoutUser(t *testing.T) {
	cache := newFakeCache("u1", salary)
	tx, _ := newTestTransactions(cache, session.NewStore(session.State{}))

	got, err := tx.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, cache.Gets())
}

func TestListFiltersAndSorts(t *testing.T) {
	cache := newFakeCache("u1", salary, groceries, bus)
	tx, _ := newTestTransactions(cache, loggedIn())
	ctx := context.Background()

	all, err := tx.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(all))

	expenses, err := tx.List(ctx, ListOptions{
		Filters:   core.TransactionFilters{Type: core.Expense},
		SortField: core.SortByAmount,
		SortOrder: core.Asc,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, ids(expenses))

	byDate, err := tx.List(ctx, ListOptions{SortField: core.SortByDate, SortOrder: core.Desc})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "1"}, ids(byDate))

	// Sort needs both field and order.
	unsorted, err := tx.List(ctx, ListOptions{SortField: core.SortByDate})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(unsorted))

	assert.Equal(t, 1, cache.Gets())
}

func TestListViewIsMemoized(t *testing.T) {
	cache := newFakeCache("u1", salary, groceries)
	tx, _ := newTestTransactions(cache, loggedIn())
	ctx := context.Background()
	opts := ListOptions{SortField: core.SortByAmount, SortOrder: core.Asc}

	_, err := tx.List(ctx, opts)
	require.NoError(t, err)
	first := tx.memo

	again, err := tx.List(ctx, opts)
	require.NoError(t, err)
	assert.Same(t, first, tx.memo)
	assert.Equal(t, []string{"2", "1"}, ids(again))

	// Callers get their own copy.
	again[0].Title = "mutated"
	fresh, _ := tx.List(ctx, opts)
	assert.Equal(t, "Groceries", fresh[0].Title)

	_, err = tx.List(ctx, ListOptions{SortField: core.SortByAmount, SortOrder: core.Desc})
	require.NoError(t, err)
	assert.NotSame(t, first, tx.memo)
}

func TestListPropagatesFetchError(t *testing.T) {
	cache := newFakeCache("u1")
	cache.err = errors.New("disk")
	tx, _ := newTestTransactions(cache, loggedIn())

	_, err := tx.List(context.Background(), ListOptions{})
	assert.ErrorContains(t, err, "disk")
}

func TestSummary(t *testing.T) {
	tx, _ := newTestTransactions(newFakeCache("u1", salary, groceries, bus), loggedIn())

	s, err := tx.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Summary{TotalIncome: 1000, TotalExpenses: 153, Balance: 847}, s)
}

func TestMutationsRefreshList(t *testing.T) {
	cache := newFakeCache("u1", salary)
	tx, _ := newTestTransactions(cache, loggedIn())
	ctx := context.Background()

	_, err := tx.List(ctx, ListOptions{})
	require.NoError(t, err)

	created, err := tx.Create(ctx, core.CreateTransactionInput{Title: "Coffee", Amount: 2, Type: core.Expense, Category: core.Food, Date: "2024-02-01"})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Gets(), "create refetches eagerly")

	list, _ := tx.List(ctx, ListOptions{})
	assert.Equal(t, []string{"1", created.ID}, ids(list))

	_, err = tx.Update(ctx, created.ID, core.UpdateTransactionInput{Title: ptr("Tea")})
	require.NoError(t, err)
	list, _ = tx.List(ctx, ListOptions{})
	assert.Equal(t, "Tea", list[1].Title)

	require.NoError(t, tx.Delete(ctx, "1"))
	list, _ = tx.List(ctx, ListOptions{})
	assert.Equal(t, []string{created.ID}, ids(list))
	assert.Equal(t, 4, cache.Gets())
}

func TestMutationFailureDoesNotRefresh(t *testing.T) {
	cache := newFakeCache("u1", salary)
	tx, _ := newTestTransactions(cache, loggedIn())
	ctx := context.Background()
	_, _ = tx.List(ctx, ListOptions{})

	cache.err = errors.New("user not found")
	err := tx.Delete(ctx, "1")
	assert.Error(t, err)
	assert.Equal(t, 1, cache.Gets())
	assert.False(t, tx.DeletePending())
}

func TestCreateWithoutUser(t *testing.T) {
	cache := newFakeCache("u1")
	tx, _ := newTestTransactions(cache, session.NewStore(session.State{}))

	_, err := tx.Create(context.Background(), core.CreateTransactionInput{Title: "x", Amount: 1, Type: core.Income, Category: core.Other, Date: "2024-01-01"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func newNotifiedTransactions(cache *fakeCache, n *recordingNotifier) *Transactions {
	q := query.New(10, time.Minute, nil)
	return NewTransactions(cache, q, loggedIn(), n, i18n.For(preferences.English), nil)
}

func TestMutationsNotifyOutcome(t *testing.T) {
	cache := newFakeCache("u1", salary)
	n := &recordingNotifier{}
	tx := newNotifiedTransactions(cache, n)
	ctx := context.Background()

	_, err := tx.Create(ctx, core.CreateTransactionInput{Title: "Coffee", Amount: 2, Type: core.Expense, Category: core.Food, Date: "2024-02-01"})
	require.NoError(t, err)
	_, err = tx.Update(ctx, "1", core.UpdateTransactionInput{Title: ptr("Pay")})
	require.NoError(t, err)
	_, err = tx.Update(ctx, "missing", core.UpdateTransactionInput{Title: ptr("x")})
	require.Error(t, err)
	require.NoError(t, tx.Delete(ctx, "1"))

	cache.err = errors.New("disk")
	require.Error(t, tx.Delete(ctx, "1"))

	assert.Equal(t, []notice{
		{LevelSuccess, "Transaction created successfully"},
		{LevelSuccess, "Transaction updated successfully"},
		{LevelError, "Error updating transaction"},
		{LevelSuccess, "Transaction deleted successfully"},
		{LevelError, "Error deleting transaction"},
	}, n.notices)
}

func TestConfirmDeleteAccepted(t *testing.T) {
	cache := newFakeCache("u1", salary, groceries)
	n := &recordingNotifier{accept: true}
	tx := newNotifiedTransactions(cache, n)

	deleted, err := tx.ConfirmDelete(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"1"}, cache.deleted)

	assert.Equal(t, []string{"Are you sure you want to delete this transaction?"}, n.prompts)
	assert.Equal(t, "Delete Transaction", n.lastOpts.Title)
	assert.Equal(t, "Delete", n.lastOpts.ConfirmText)
	assert.Equal(t, "Cancel", n.lastOpts.CancelText)
	assert.Equal(t, []notice{{LevelSuccess, "Transaction deleted successfully"}}, n.notices)
}

func TestConfirmDeleteDeclined(t *testing.T) {
	cache := newFakeCache("u1", salary)
	n := &recordingNotifier{}
	tx := newNotifiedTransactions(cache, n)

	deleted, err := tx.ConfirmDelete(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, cache.deleted)
	assert.Empty(t, n.notices)
}

func TestConfirmDeleteWithoutNotifierDeclines(t *testing.T) {
	cache := newFakeCache("u1", salary)
	tx, _ := newTestTransactions(cache, loggedIn())

	deleted, err := tx.ConfirmDelete(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, cache.deleted)
}

type blockingCache struct {
	*fakeCache
	release chan struct{}
}

func (c blockingCache) Create(ctx context.Context, userID string, in core.CreateTransactionInput) (core.Transaction, error) {
	<-c.release
	return c.fakeCache.Create(ctx, userID, in)
}

func TestCreatePendingWhileInFlight(t *testing.T) {
	bc := blockingCache{fakeCache: newFakeCache("u1"), release: make(chan struct{})}
	q := query.New(10, time.Minute, nil)
	tx := NewTransactions(bc, q, loggedIn(), nil, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = tx.Create(context.Background(), core.CreateTransactionInput{Title: "x", Amount: 1, Type: core.Income, Category: core.Other, Date: "2024-01-01"})
	}()

	assert.Eventually(t, tx.CreatePending, time.Second, time.Millisecond)
	assert.False(t, tx.UpdatePending())
	close(bc.release)
	<-done
	assert.False(t, tx.CreatePending())
}

func ptr[T any](v T) *T { return &v }
