package app

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/gateway"
	"fintrack/internal/kvstore"
	applog "fintrack/internal/log"
	"fintrack/internal/query"
	"fintrack/internal/session"
)

// Query key roots refreshed after a session validation.
const (
	AuthKey = "auth"
	UserKey = "user"
)

// ErrNoToken is returned when a session validation has no token to check.
var ErrNoToken = errors.New("No token found")

// Auth runs the login, logout and validation flows and keeps the session
// store and the persisted session in step.
type Auth struct {
	gateway gateway.AuthGateway
	kv      kvstore.Store
	session *session.Store
	queries *query.Client
	nav     Navigator
	logger  *applog.Logger

	login, logout, validate mutation
}

func NewAuth(gw gateway.AuthGateway, kv kvstore.Store, store *session.Store, queries *query.Client, nav Navigator, logger *applog.Logger) *Auth {
	if logger == nil {
		logger = applog.Discard()
	}
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}
	return &Auth{
		gateway: gw,
		kv:      kv,
		session: store,
		queries: queries,
		nav:     nav,
		logger:  logger.WithComponent(applog.ComponentSession),
	}
}

// Login authenticates creds. On success the token and user are persisted,
// the session becomes authenticated and the dashboard is shown. On failure
// the error message is recorded on the session and nothing is persisted.
func (a *Auth) Login(ctx context.Context, creds core.Credentials) (core.AuthResponse, error) {
	done := a.login.start()
	defer done()

	a.session.Dispatch(session.ClearError{})

	resp, err := a.gateway.Login(ctx, creds)
	if err != nil {
		a.session.Dispatch(session.LoginRejected{Message: err.Error()})
		a.logger.WarnContext(ctx, "Login failed",
			applog.FieldOperation, applog.OpLogin,
			applog.FieldError, err)
		return core.AuthResponse{}, err
	}

	if err := session.Persist(ctx, a.kv, resp.User, resp.Token); err != nil {
		_ = session.Clear(ctx, a.kv)
		a.session.Dispatch(session.LoginRejected{Message: err.Error()})
		return core.AuthResponse{}, fmt.Errorf("login: %w", err)
	}

	a.session.Dispatch(session.LoginFulfilled{User: resp.User, Token: resp.Token})
	a.logger.InfoContext(ctx, "Logged in",
		applog.FieldOperation, applog.OpLogin,
		applog.FieldUserID, resp.User.ID)
	a.nav.Navigate(PathDashboard)
	return resp, nil
}

// Logout ends the remote session. Only a successful call clears local state.
func (a *Auth) Logout(ctx context.Context) error {
	done := a.logout.start()
	defer done()

	if err := a.gateway.Logout(ctx); err != nil {
		a.logger.WarnContext(ctx, "Logout failed",
			applog.FieldOperation, applog.OpLogout,
			applog.FieldError, err)
		return err
	}

	if err := session.Clear(ctx, a.kv); err != nil {
		a.logger.ErrorContext(ctx, "Failed to clear persisted session", applog.FieldError, err)
	}
	a.session.Dispatch(session.LogoutFulfilled{})
	a.nav.Navigate(PathLogin)
	a.queries.Clear()
	a.logger.InfoContext(ctx, "Logged out", applog.FieldOperation, applog.OpLogout)
	return nil
}

// ValidateSession checks token against the gateway. Failure drops both the
// in-memory and the persisted session.
func (a *Auth) ValidateSession(ctx context.Context, token string) (core.User, error) {
	done := a.validate.start()
	defer done()

	user, err := a.checkToken(ctx, token)
	if err != nil {
		a.session.Dispatch(session.ValidateSessionRejected{})
		if clearErr := session.Clear(ctx, a.kv); clearErr != nil {
			a.logger.ErrorContext(ctx, "Failed to clear persisted session", applog.FieldError, clearErr)
		}
		a.logger.ErrorContext(ctx, "Session validation failed",
			applog.FieldOperation, applog.OpValidate,
			applog.FieldError, err)
		return core.User{}, err
	}

	a.session.Dispatch(session.ValidateSessionFulfilled{User: user, Token: token})
	a.queries.Invalidate(query.Key{AuthKey})
	a.queries.Invalidate(query.Key{UserKey})
	return user, nil
}

// ValidateStored validates the persisted token.
func (a *Auth) ValidateStored(ctx context.Context) (core.User, error) {
	token, err := session.StoredToken(ctx, a.kv)
	if err != nil {
		return core.User{}, fmt.Errorf("read token: %w", err)
	}
	return a.ValidateSession(ctx, token)
}

func (a *Auth) checkToken(ctx context.Context, token string) (core.User, error) {
	if token == "" {
		return core.User{}, ErrNoToken
	}
	return a.gateway.Validate(ctx, token)
}

// CurrentUser returns the user behind the stored token, cached under the
// "user" query key.
func (a *Auth) CurrentUser(ctx context.Context) (core.User, error) {
	return query.Get(ctx, a.queries, query.Key{UserKey, "me"}, a.gateway.Me)
}

// State returns the current session state.
func (a *Auth) State() session.State {
	return a.session.State()
}

func (a *Auth) LoginPending() bool    { return a.login.pending() }
func (a *Auth) LogoutPending() bool   { return a.logout.pending() }
func (a *Auth) ValidatePending() bool { return a.validate.pending() }
