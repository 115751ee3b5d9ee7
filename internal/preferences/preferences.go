// Package preferences persists the user's display settings.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fintrack/internal/kvstore"
	applog "fintrack/internal/log"
)

type (
	Language   string
	ThemeMode  string
	ThemeColor string
)

const (
	English Language = "en"
	Spanish Language = "es"

	Light ThemeMode = "light"
	Dark  ThemeMode = "dark"

	Blue   ThemeColor = "blue"
	Purple ThemeColor = "purple"
	Green  ThemeColor = "green"
)

// Setting names accepted by Set.
const (
	KeyLanguage   = "language"
	KeyThemeMode  = "themeMode"
	KeyThemeColor = "themeColor"
)

var (
	ErrInvalidValue = errors.New("invalid preference value")
	ErrUnknownKey   = errors.New("unknown preference")
)

func (l Language) Valid() bool   { return l == English || l == Spanish }
func (m ThemeMode) Valid() bool  { return m == Light || m == Dark }
func (c ThemeColor) Valid() bool { return c == Blue || c == Purple || c == Green }

// Preferences is the stored record.
type Preferences struct {
	Language   Language   `json:"language"`
	ThemeMode  ThemeMode  `json:"themeMode"`
	ThemeColor ThemeColor `json:"themeColor"`
}

// Default returns the settings used before anything is saved.
func Default() Preferences {
	return Preferences{Language: Spanish, ThemeMode: Light, ThemeColor: Blue}
}

// normalize replaces invalid or missing fields with defaults.
func (p Preferences) normalize() Preferences {
	d := Default()
	if !p.Language.Valid() {
		p.Language = d.Language
	}
	if !p.ThemeMode.Valid() {
		p.ThemeMode = d.ThemeMode
	}
	if !p.ThemeColor.Valid() {
		p.ThemeColor = d.ThemeColor
	}
	return p
}

// Store keeps the current preferences and writes the whole record on every
// change.
type Store struct {
	kv     kvstore.Store
	logger *applog.Logger

	mu      sync.RWMutex
	current Preferences
}

// Load reads the saved preferences. Missing or unreadable data yields the
// defaults.
func Load(ctx context.Context, kv kvstore.Store, logger *applog.Logger) *Store {
	if logger == nil {
		logger = applog.Discard()
	}
	s := &Store{
		kv:      kv,
		logger:  logger.WithComponent(applog.ComponentPreferences),
		current: Default(),
	}

	var saved Preferences
	ok, err := kvstore.GetJSON(ctx, kv, kvstore.KeyPreferences, &saved)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "Saved preferences are unreadable, using defaults", applog.FieldError, err)
	case ok:
		s.current = saved.normalize()
	}
	return s
}

// Get returns a copy of the current preferences.
func (s *Store) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) SetLanguage(ctx context.Context, l Language) error {
	if !l.Valid() {
		return fmt.Errorf("%w: language %q", ErrInvalidValue, l)
	}
	return s.update(ctx, func(p *Preferences) { p.Language = l })
}

func (s *Store) SetThemeMode(ctx context.Context, m ThemeMode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: theme mode %q", ErrInvalidValue, m)
	}
	return s.update(ctx, func(p *Preferences) { p.ThemeMode = m })
}

func (s *Store) SetThemeColor(ctx context.Context, c ThemeColor) error {
	if !c.Valid() {
		return fmt.Errorf("%w: theme color %q", ErrInvalidValue, c)
	}
	return s.update(ctx, func(p *Preferences) { p.ThemeColor = c })
}

// Set changes one setting by name.
func (s *Store) Set(ctx context.Context, key, value string) error {
	switch key {
	case KeyLanguage:
		return s.SetLanguage(ctx, Language(value))
	case KeyThemeMode:
		return s.SetThemeMode(ctx, ThemeMode(value))
	case KeyThemeColor:
		return s.SetThemeColor(ctx, ThemeColor(value))
	}
	return fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

func (s *Store) update(ctx context.Context, change func(*Preferences)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	change(&next)
	if err := kvstore.SetJSON(ctx, s.kv, kvstore.KeyPreferences, next); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	s.current = next
	s.logger.DebugContext(ctx, "Preferences saved",
		"language", next.Language,
		"theme_mode", next.ThemeMode,
		"theme_color", next.ThemeColor)
	return nil
}
