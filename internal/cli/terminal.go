package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"fintrack/internal/app"
	"fintrack/internal/i18n"
	applog "fintrack/internal/log"
)

// Terminal presents notifications and confirmations on a text stream. It
// implements app.Notifier and app.Navigator.
type Terminal struct {
	mu        sync.Mutex
	in        *bufio.Reader
	out       io.Writer
	theme     Theme
	tr        i18n.Translator
	assumeYes bool
	logger    *applog.Logger
	location  string
}

var (
	_ app.Notifier  = (*Terminal)(nil)
	_ app.Navigator = (*Terminal)(nil)
)

// NewTerminal reads answers from in and writes to out. Nil streams default to
// stdin and stdout.
func NewTerminal(in io.Reader, out io.Writer, theme Theme, tr i18n.Translator, logger *applog.Logger) *Terminal {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Terminal{
		in:     bufio.NewReader(in),
		out:    out,
		theme:  theme,
		tr:     tr,
		logger: logger.WithComponent(applog.ComponentCLI),
	}
}

// AssumeYes makes every confirmation accept without prompting.
func (t *Terminal) AssumeYes(yes bool) {
	t.mu.Lock()
	t.assumeYes = yes
	t.mu.Unlock()
}

func (t *Terminal) Out() io.Writer { return t.out }

func (t *Terminal) Theme() Theme { return t.theme }

func (t *Terminal) T(key string) string { return t.tr(key) }

// Notify implements app.Notifier.
func (t *Terminal) Notify(level app.Level, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.theme.Format(level, message))
}

// Confirm implements app.Notifier. Anything but an explicit yes cancels.
func (t *Terminal) Confirm(message string, onAccept func(), opts app.ConfirmOptions) {
	if t.ask(message, opts) {
		if onAccept != nil {
			onAccept()
		}
		return
	}
	if opts.OnCancel != nil {
		opts.OnCancel()
	}
}

func (t *Terminal) ask(message string, opts app.ConfirmOptions) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.assumeYes {
		return true
	}

	if opts.Title != "" {
		fmt.Fprintln(t.out, t.theme.Title.Render(opts.Title))
	}
	confirm := opts.ConfirmText
	if confirm == "" {
		confirm = "y"
	}
	cancel := opts.CancelText
	if cancel == "" {
		cancel = "N"
	}
	fmt.Fprintf(t.out, "%s [%s/%s]: ", message, confirm, cancel)

	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(t.out)
		return false
	}
	return isYes(line, opts.ConfirmText)
}

func isYes(answer, confirmText string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	if a == "" {
		return false
	}
	if confirmText != "" && a == strings.ToLower(confirmText) {
		return true
	}
	switch a {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}

// ReadLine prints prompt and returns the trimmed answer.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.out, prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Navigate implements app.Navigator. A terminal has no screens; the location
// is remembered so commands can report where the flow ended.
func (t *Terminal) Navigate(path string) {
	t.mu.Lock()
	t.location = path
	t.mu.Unlock()
	t.logger.Debug("Navigated", applog.FieldPath, path)
}

// Location returns the last navigation target.
func (t *Terminal) Location() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.location
}
