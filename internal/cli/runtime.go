// Package cli wires the client components together for the command line and
// renders their output on a terminal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/app"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/gateway"
	"fintrack/internal/i18n"
	"fintrack/internal/kvstore"
	applog "fintrack/internal/log"
	"fintrack/internal/preferences"
	"fintrack/internal/query"
	"fintrack/internal/services"
	"fintrack/internal/session"
)

const (
	// ShutdownTimeout bounds how long Close waits for background gateway
	// calls.
	ShutdownTimeout = 10 * time.Second

	janitorInterval = time.Minute
)

// Streams are the terminal endpoints. Nil fields default to the process
// streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Log io.Writer
}

// Runtime is every component a command may use, built once per invocation.
type Runtime struct {
	Config       *config.Config
	Logger       *applog.Logger
	KV           kvstore.Store
	Gateway      *gateway.Client
	Service      *services.TransactionService
	Queries      *query.Client
	Session      *session.Store
	Auth         *app.Auth
	Transactions *app.Transactions
	Preferences  *preferences.Store
	Terminal     *Terminal
	// AMQP is nil when sync-failure publishing is disabled.
	AMQP *amqp.Client

	janitor *cache.Janitor
	closeKV func() error
}

// LoadConfig reads and validates the configuration.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Open builds the runtime: logger, key-value store, gateway client, cache
// service, query client, session and preferences.
func Open(ctx context.Context, cfg *config.Config, streams Streams) (*Runtime, error) {
	if streams.Log == nil {
		streams.Log = os.Stderr
	}
	logCfg := cfg.LoggerConfig()
	logCfg.Output = streams.Log
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	kv, err := kvstore.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to open key-value store", applog.FieldError, err, "path", cfg.DBPath)
		return nil, fmt.Errorf("open store: %w", err)
	}

	gw, err := gateway.NewClient(cfg.APIURL, cfg.APITimeout, kv, logger)
	if err != nil {
		kv.Close()
		return nil, err
	}

	r := &Runtime{
		Config:  cfg,
		Logger:  logger,
		KV:      kv,
		Gateway: gw,
		closeKV: kv.Close,
	}

	var reporter services.SyncFailureReporter = services.NewLogReporter(logger)
	if cfg.AMQPEnabled() {
		r.AMQP = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		reporter = services.MultiReporter{reporter, services.NewAMQPReporter(r.AMQP, logger)}
	}
	r.Service = services.NewTransactionService(kv, gw, logger, services.WithReporter(reporter))

	r.Queries = query.New(cfg.QueryCacheSize, cfg.QueryCacheTTL, logger)
	r.janitor = cache.NewJanitor(logger)
	r.janitor.Register(r.Queries.Cache())
	r.janitor.Start(janitorInterval)

	r.Preferences = preferences.Load(ctx, kv, logger)
	prefs := r.Preferences.Get()
	r.Terminal = NewTerminal(streams.In, streams.Out, NewTheme(prefs), i18n.For(prefs.Language), logger)

	r.Session = session.NewStore(session.Initialize(ctx, kv))
	r.Auth = app.NewAuth(gw, kv, r.Session, r.Queries, r.Terminal, logger)
	r.Transactions = app.NewTransactions(r.Service, r.Queries, r.Session, r.Terminal, r.Terminal.T, logger)

	logger.Debug("Runtime ready",
		applog.FieldOperation, applog.OpStartup,
		"authenticated", r.Session.State().IsAuthenticated,
		"amqp", cfg.AMQPEnabled())
	return r, nil
}

// RequireSession returns the signed-in user or an error telling the user to
// log in.
func (r *Runtime) RequireSession() (string, error) {
	st := r.Session.State()
	if !st.IsAuthenticated || st.User == nil {
		return "", errors.New(r.Terminal.T(i18n.NotLoggedIn))
	}
	return st.User.ID, nil
}

// Close waits for background gateway calls, bounded by ShutdownTimeout, and
// releases every resource.
func (r *Runtime) Close(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := r.Service.Wait(waitCtx); err != nil {
		r.Logger.Warn("Background gateway calls still running at exit",
			applog.FieldOperation, applog.OpShutdown,
			applog.FieldError, err)
		errs = append(errs, fmt.Errorf("wait for background calls: %w", err))
	}
	r.janitor.Stop()
	if r.AMQP != nil {
		if err := r.AMQP.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close amqp: %w", err))
		}
	}
	if err := r.closeKV(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
