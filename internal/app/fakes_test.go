package app

import (
	"context"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/gateway"
)

type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]core.Transaction
	gets    int
	err     error
	nextID  int
	deleted []string
}

func newFakeCache(userID string, txs ...core.Transaction) *fakeCache {
	return &fakeCache{data: map[string][]core.Transaction{userID: txs}}
}

func (c *fakeCache) GetAll(ctx context.Context, userID string) ([]core.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return append([]core.Transaction(nil), c.data[userID]...), c.err
}

func (c *fakeCache) Gets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gets
}

func (c *fakeCache) Create(ctx context.Context, userID string, in core.CreateTransactionInput) (core.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return core.Transaction{}, c.err
	}
	c.nextID++
	t := core.Transaction{ID: string(rune('a' + c.nextID - 1)), Title: in.Title, Amount: in.Amount, Type: in.Type, Category: in.Category, Date: in.Date, UserID: userID}
	c.data[userID] = append(c.data[userID], t)
	return t, nil
}

func (c *fakeCache) Update(ctx context.Context, id string, in core.UpdateTransactionInput) (core.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return core.Transaction{}, c.err
	}
	for user, txs := range c.data {
		for i := range txs {
			if txs[i].ID == id {
				txs[i] = in.Apply(txs[i])
				c.data[user] = txs
				return txs[i], nil
			}
		}
	}
	return core.Transaction{}, gateway.ErrNotFound
}

func (c *fakeCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.deleted = append(c.deleted, id)
	for user, txs := range c.data {
		kept := txs[:0]
		for _, t := range txs {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		c.data[user] = kept
	}
	return nil
}

type fakeAuthGateway struct {
	resp        core.AuthResponse
	loginErr    error
	logoutErr   error
	validateErr error
	user        core.User
	validated   []string
	meCalls     int
}

var _ gateway.AuthGateway = (*fakeAuthGateway)(nil)

func (g *fakeAuthGateway) Login(ctx context.Context, creds core.Credentials) (core.AuthResponse, error) {
	return g.resp, g.loginErr
}

func (g *fakeAuthGateway) Logout(ctx context.Context) error { return g.logoutErr }

func (g *fakeAuthGateway) Validate(ctx context.Context, token string) (core.User, error) {
	g.validated = append(g.validated, token)
	return g.user, g.validateErr
}

func (g *fakeAuthGateway) Me(ctx context.Context) (core.User, error) {
	g.meCalls++
	return g.user, nil
}

type recordingNavigator struct {
	paths []string
}

func (n *recordingNavigator) Navigate(path string) { n.paths = append(n.paths, path) }

type notice struct {
	level   Level
	message string
}

// recordingNotifier answers every confirmation with accept.
type recordingNotifier struct {
	accept   bool
	notices  []notice
	prompts  []string
	lastOpts ConfirmOptions
}

func (n *recordingNotifier) Notify(level Level, message string) {
	n.notices = append(n.notices, notice{level, message})
}

func (n *recordingNotifier) Confirm(message string, onAccept func(), opts ConfirmOptions) {
	n.prompts = append(n.prompts, message)
	n.lastOpts = opts
	if n.accept {
		onAccept()
		return
	}
	if opts.OnCancel != nil {
		opts.OnCancel()
	}
}
