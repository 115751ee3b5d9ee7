package http

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Account is a user the mock API can log in.
type Account struct {
	User     core.User
	Password string
}

// DemoAccount is seeded when no accounts are given.
func DemoAccount() Account {
	return Account{
		User:     core.User{ID: "1", Name: "Demo User", Email: "demo@fintrack.local"},
		Password: "demo123",
	}
}

// Backend is the in-memory state behind the mock API. It is safe for
// concurrent use.
type Backend struct {
	mu       sync.RWMutex
	accounts map[string]Account // by lowercased email
	users    map[string]core.User
	sessions map[string]string // token -> user id
	txs      map[string]core.Transaction
	order    []string
	seq      int64

	now      func() time.Time
	newToken func() string
}

func NewBackend(accounts ...Account) *Backend {
	if len(accounts) == 0 {
		accounts = []Account{DemoAccount()}
	}
	b := &Backend{
		accounts: make(map[string]Account, len(accounts)),
		users:    make(map[string]core.User, len(accounts)),
		sessions: make(map[string]string),
		txs:      make(map[string]core.Transaction),
		now:      time.Now,
		newToken: uuid.NewString,
	}
	for _, a := range accounts {
		b.accounts[strings.ToLower(a.User.Email)] = a
		b.users[a.User.ID] = a.User
	}
	return b
}

// Login checks the credentials and opens a session.
func (b *Backend) Login(email, password string) (core.AuthResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || a.Password != password {
		return core.AuthResponse{}, ErrInvalidCredentials
	}
	token := b.newToken()
	b.sessions[token] = a.User.ID
	return core.AuthResponse{Token: token, User: a.User}, nil
}

// Logout ends the session for token. It reports whether one existed.
func (b *Backend) Logout(token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.sessions[token]
	delete(b.sessions, token)
	return ok
}

// UserForToken resolves a session token.
func (b *Backend) UserForToken(token string) (core.User, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	id, ok := b.sessions[token]
	if !ok {
		return core.User{}, false
	}
	u, ok := b.users[id]
	return u, ok
}

// Sessions returns the number of open sessions.
func (b *Backend) Sessions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}

// List returns userID's transactions in insertion order.
func (b *Backend) List(userID string) []core.Transaction {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []core.Transaction{}
	for _, id := range b.order {
		if t := b.txs[id]; t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func (b *Backend) Get(id string) (core.Transaction, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.txs[id]
	return t, ok
}

// Create stores a new transaction with a server-assigned id.
func (b *Backend) Create(userID string, in core.CreateTransactionInput) core.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	stamp := b.now().UTC().Format(time.RFC3339Nano)
	t := core.Transaction{
		ID:        strconv.FormatInt(b.seq, 10),
		Title:     in.Title,
		Amount:    in.Amount,
		Type:      in.Type,
		Category:  in.Category,
		Date:      in.Date,
		UserID:    userID,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
	b.txs[t.ID] = t
	b.order = append(b.order, t.ID)
	return t
}

// Seed inserts transactions as given, keeping their ids.
func (b *Backend) Seed(txs ...core.Transaction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range txs {
		if _, exists := b.txs[t.ID]; !exists {
			b.order = append(b.order, t.ID)
		}
		b.txs[t.ID] = t
		if n, err := strconv.ParseInt(t.ID, 10, 64); err == nil && n > b.seq {
			b.seq = n
		}
	}
}

func (b *Backend) Update(id string, in core.UpdateTransactionInput) (core.Transaction, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.txs[id]
	if !ok {
		return core.Transaction{}, false
	}
	t = in.Apply(t)
	t.UpdatedAt = b.now().UTC().Format(time.RFC3339Nano)
	b.txs[id] = t
	return t, true
}

func (b *Backend) Delete(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.txs[id]; !ok {
		return false
	}
	delete(b.txs, id)
	b.order = slices.DeleteFunc(b.order, func(s string) bool { return s == id })
	return true
}
