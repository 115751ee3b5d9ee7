package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/app"
	"fintrack/internal/i18n"
	"fintrack/internal/preferences"
)

func prefsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change display preferences",
		Long: `Display preferences are stored locally:

  language    en, es
  themeMode   light, dark
  themeColor  blue, purple, green`,
	}
	cmd.AddCommand(prefsGetCmd(s))
	cmd.AddCommand(prefsSetCmd(s))
	return cmd
}

func prefsGetCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print preferences",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p := s.rt.Preferences.Get()
			values := map[string]string{
				preferences.KeyLanguage:   string(p.Language),
				preferences.KeyThemeMode:  string(p.ThemeMode),
				preferences.KeyThemeColor: string(p.ThemeColor),
			}
			out := s.rt.Terminal.Out()
			if len(args) == 1 {
				v, ok := values[args[0]]
				if !ok {
					return fmt.Errorf("%w: %q", preferences.ErrUnknownKey, args[0])
				}
				fmt.Fprintln(out, v)
				return nil
			}
			for _, key := range []string{preferences.KeyLanguage, preferences.KeyThemeMode, preferences.KeyThemeColor} {
				fmt.Fprintf(out, "%s=%s\n", key, values[key])
			}
			return nil
		},
	}
}

func prefsSetCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "set KEY VALUE",
		Short:   "Change a preference",
		Example: `  fintrack prefs set language en`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.rt.Preferences.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			s.rt.Terminal.Notify(app.LevelSuccess, s.rt.Terminal.T(i18n.PreferenceSaved))
			return nil
		},
	}
}
