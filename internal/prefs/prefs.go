// Package prefs persists per-user UI preferences in
// ~/.config/blogen/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/RachelRYuan/Blogen/internal/blogen"
)

// Prefs holds the settings the TUI remembers between runs.
type Prefs struct {
	Theme string `toml:"theme"`
	// PageSize overrides the configured page size when positive.
	PageSize int `toml:"page_size,omitempty"`
	// Category is the last selected category filter.
	Category int64 `toml:"category"`
}

const (
	defaultPrefsPath = "~/.config/blogen/prefs.toml"
	defaultTheme     = "Dracula"
	maxPageSize      = 50
)

// Default returns the preferences used before anything is saved.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, Category: blogen.AllCategories}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path. The defaults are always usable: a
// missing file is not an error, and an unreadable or corrupt file returns
// the defaults together with the error so the caller can log it.
func Load(path string) (Prefs, error) {
	p := Default()
	resolved, err := resolvePath(path)
	if err != nil {
		return p, err
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("read prefs: %w", err)
	}
	if err := toml.Unmarshal(bytes, &p); err != nil {
		return Default(), fmt.Errorf("parse prefs: %w", err)
	}
	return p.normalize(), nil
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	bytes, err := toml.Marshal(p.normalize())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// PageSizeOr returns the preferred page size, or fallback when unset.
func (p Prefs) PageSizeOr(fallback int) int {
	if p.PageSize > 0 {
		return p.PageSize
	}
	return fallback
}

func (p Prefs) normalize() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	if p.PageSize < 0 {
		p.PageSize = 0
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	if p.Category <= 0 {
		p.Category = blogen.AllCategories
	}
	return p
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
