// file: internal/preferences/preferences.go
// version: 1.0.0
// guid: 8e60ac76-ebe3-4b23-9f15-658afed80ad9

package preferences

import (
	"errors"
	"fmt"
	"log"

	"github.com/jdfalk/readora/internal/database"
)

// Storage keys for each setting.
const (
	ThemeKey    = "theme"
	FontSizeKey = "fontSize"
)

// ErrInvalidValue is returned by setters given a value outside the enum.
var ErrInvalidValue = errors.New("invalid preference value")

// Theme is the display theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	DefaultTheme = ThemeLight
)

// ParseTheme decodes a persisted theme. ok is false for unknown values.
func ParseTheme(raw string) (Theme, bool) {
	switch t := Theme(raw); t {
	case ThemeLight, ThemeDark:
		return t, true
	}
	return "", false
}

// ThemeOrDefault decodes raw, falling back to DefaultTheme.
func ThemeOrDefault(raw string) Theme {
	if t, ok := ParseTheme(raw); ok {
		return t
	}
	return DefaultTheme
}

// FontSize is the display font scale.
type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"

	DefaultFontSize = FontMedium
)

// ParseFontSize decodes a persisted font size. ok is false for unknown values.
func ParseFontSize(raw string) (FontSize, bool) {
	switch f := FontSize(raw); f {
	case FontSmall, FontMedium, FontLarge:
		return f, true
	}
	return "", false
}

// FontSizeOrDefault decodes raw, falling back to DefaultFontSize.
func FontSizeOrDefault(raw string) FontSize {
	if f, ok := ParseFontSize(raw); ok {
		return f
	}
	return DefaultFontSize
}

// Snapshot holds both settings, read together at startup.
type Snapshot struct {
	Theme    Theme    `json:"theme" yaml:"theme"`
	FontSize FontSize `json:"fontSize" yaml:"font_size"`
}

// Store persists display preferences.
type Store struct {
	store database.Store
}

// New creates a preferences store backed by store.
func New(store database.Store) *Store {
	return &Store{store: store}
}

// Theme returns the stored theme, or the default when absent or unrecognized.
func (s *Store) Theme() Theme {
	raw, ok := s.read(ThemeKey)
	if !ok {
		return DefaultTheme
	}
	t, valid := ParseTheme(raw)
	if !valid {
		log.Printf("[WARN] preferences: unrecognized theme %q, using %q", raw, DefaultTheme)
		return DefaultTheme
	}
	return t
}

// SetTheme persists t.
func (s *Store) SetTheme(t Theme) error {
	if _, ok := ParseTheme(string(t)); !ok {
		return fmt.Errorf("%w: theme %q", ErrInvalidValue, t)
	}
	return s.store.SetString(ThemeKey, string(t))
}

// FontSize returns the stored font size, or the default when absent or unrecognized.
func (s *Store) FontSize() FontSize {
	raw, ok := s.read(FontSizeKey)
	if !ok {
		return DefaultFontSize
	}
	f, valid := ParseFontSize(raw)
	if !valid {
		log.Printf("[WARN] preferences: unrecognized font size %q, using %q", raw, DefaultFontSize)
		return DefaultFontSize
	}
	return f
}

// SetFontSize persists f.
func (s *Store) SetFontSize(f FontSize) error {
	if _, ok := ParseFontSize(string(f)); !ok {
		return fmt.Errorf("%w: font size %q", ErrInvalidValue, f)
	}
	return s.store.SetString(FontSizeKey, string(f))
}

// Snapshot returns both settings.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Theme: s.Theme(), FontSize: s.FontSize()}
}

func (s *Store) read(key string) (string, bool) {
	raw, ok, err := s.store.GetString(key)
	if err != nil {
		log.Printf("[WARN] preferences: failed to read %s: %v", key, err)
		return "", false
	}
	return raw, ok
}
