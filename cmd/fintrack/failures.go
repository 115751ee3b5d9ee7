package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/amqp"
	"fintrack/internal/app"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

var errAMQPDisabled = errors.New("sync-failure queue is disabled: set FINTRACK_AMQP_URL")

func syncFailuresCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-failures",
		Short: "Inspect or retry background calls that did not reach the API",
		Long: `Changes are saved locally first and sent to the API in the background.
When that call fails the failure is published to the sync-failure queue.
These commands read that queue.`,
	}
	cmd.AddCommand(drainCmd(s))
	cmd.AddCommand(replayCmd(s))
	cmd.AddCommand(watchCmd(s))
	return cmd
}

func drainCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "drain",
		Short: "Print and remove every queued failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.rt.AMQP == nil {
				return errAMQPDisabled
			}
			term := s.rt.Terminal
			theme := term.Theme()
			n, err := s.rt.AMQP.DrainSyncFailures(cmd.Context(), func(msg *amqp.SyncFailureMessage) error {
				fmt.Fprintf(term.Out(), "%s  %s  %s  %s\n",
					theme.Subtle.Render(msg.Timestamp.Format("2006-01-02 15:04:05")),
					theme.Header.Render(msg.Operation),
					msg.TransactionID,
					theme.Error.Render(msg.Error))
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to drain queue: %w", err)
			}
			term.Notify(app.LevelInfo, fmt.Sprintf("%d failure(s) drained", n))
			return nil
		},
	}
}

func replayCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Retry every queued failure against the API",
		Long: `Retry each queued call. Replay stops at the first call that fails again
and leaves it on the queue.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.rt.AMQP == nil {
				return errAMQPDisabled
			}
			logger := s.rt.Logger.WithComponent(applog.ComponentCLI)
			n, err := s.rt.AMQP.DrainSyncFailures(cmd.Context(), func(msg *amqp.SyncFailureMessage) error {
				if err := services.Replay(cmd.Context(), s.rt.Gateway, msg); err != nil {
					return err
				}
				logger.Info("Replayed sync failure",
					applog.FieldOperation, msg.Operation,
					applog.FieldTransactionID, msg.TransactionID)
				return nil
			})
			s.rt.Terminal.Notify(app.LevelInfo, fmt.Sprintf("%d failure(s) replayed", n))
			if err != nil {
				return fmt.Errorf("replay stopped: %w", err)
			}
			return nil
		},
	}
}

func watchCmd(s *session) *cobra.Command {
	var (
		maxAttempts int
		retryDelay  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Replay failures as they arrive until interrupted",
		Long: `Consume the sync-failure queue and replay each call. A call that keeps
failing is dropped after --max-attempts tries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.rt.AMQP == nil {
				return errAMQPDisabled
			}
			w := worker.NewReplayWorker(s.rt.Gateway, s.rt.Logger, maxAttempts, retryDelay)
			err := w.Run(cmd.Context(), s.rt.AMQP)
			stats := w.Stats()
			s.rt.Terminal.Notify(app.LevelInfo,
				fmt.Sprintf("%d replayed, %d dropped", stats.Replayed, stats.Dropped))
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("replay worker stopped: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxAttempts, "max-attempts", worker.DefaultMaxAttempts, "Drop a failure after this many tries")
	cmd.Flags().DurationVar(&retryDelay, "retry-delay", worker.DefaultRetryDelay, "Wait between tries of the same failure")
	return cmd
}
