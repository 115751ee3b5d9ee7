package app

// Level is the severity of a user notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Routes the orchestration layer navigates to.
const (
	PathDashboard = "/dashboard"
	PathLogin     = "/login"
)

// ConfirmOptions customise a confirmation prompt. Empty texts fall back to
// the presenter's defaults.
type ConfirmOptions struct {
	Title       string
	ConfirmText string
	CancelText  string
	OnCancel    func()
}

// Notifier shows messages and asks for confirmation.
type Notifier interface {
	Notify(level Level, message string)
	// Confirm calls onAccept if the user accepts, opts.OnCancel otherwise.
	Confirm(message string, onAccept func(), opts ConfirmOptions)
}

type silentNotifier struct{}

func (silentNotifier) Notify(Level, string) {}

func (silentNotifier) Confirm(_ string, _ func(), opts ConfirmOptions) {
	if opts.OnCancel != nil {
		opts.OnCancel()
	}
}

// Navigator moves the presentation to another area.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }
