// Command fintrack is the terminal client for the personal finance API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
)

var version = "dev"

// session is the runtime shared by every command of one invocation.
type session struct {
	streams    cli.Streams
	loadConfig func() (*config.Config, error)
	rt         *cli.Runtime
}

func newRootCmd(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:   "fintrack",
		Short: "Track income and expenses from the terminal",
		Long: `fintrack keeps a local copy of your transactions and syncs every change
to the finance API in the background.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || s.rt != nil {
				return nil
			}
			cfg, err := s.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			rt, err := cli.Open(cmd.Context(), cfg, s.streams)
			if err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			s.rt = rt
			return nil
		},
	}
	root.SetIn(s.streams.In)
	root.SetOut(s.streams.Out)

	root.AddCommand(loginCmd(s))
	root.AddCommand(logoutCmd(s))
	root.AddCommand(validateCmd(s))
	root.AddCommand(whoamiCmd(s))
	root.AddCommand(listCmd(s))
	root.AddCommand(addCmd(s))
	root.AddCommand(editCmd(s))
	root.AddCommand(rmCmd(s))
	root.AddCommand(showCmd(s))
	root.AddCommand(summaryCmd(s))
	root.AddCommand(prefsCmd(s))
	root.AddCommand(syncFailuresCmd(s))
	return root
}

// run executes args and releases the runtime afterwards.
func run(ctx context.Context, s *session, args []string) error {
	root := newRootCmd(s)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if s.rt != nil {
		if closeErr := s.rt.Close(ctx); closeErr != nil {
			s.rt.Logger.Error("Failed to close runtime",
				applog.FieldOperation, applog.OpShutdown,
				applog.FieldError, closeErr)
		}
		s.rt = nil
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &session{
		streams:    cli.Streams{In: os.Stdin, Out: os.Stdout, Log: os.Stderr},
		loadConfig: cli.LoadConfig,
	}
	if err := run(ctx, s, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
