package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

type fileRecord struct {
	Token   string    `toml:"token"`
	SavedAt time.Time `toml:"saved_at"`
}

// File stores the token in a TOML file readable only by the owner.
type File struct {
	path string
}

// NewFile returns a File store at path.
func NewFile(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("token file path is empty")
	}
	return &File{path: path}, nil
}

// Path returns the backing file.
func (f *File) Path() string {
	return f.path
}

// Load reads the saved token. A missing, empty or unreadable file yields
// ErrNoToken.
func (f *File) Load(context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("read token file: %w", err)
	}
	var rec fileRecord
	if err := toml.Unmarshal(data, &rec); err != nil {
		return "", ErrNoToken
	}
	token := strings.TrimSpace(rec.Token)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Save writes token, creating parent directories as needed.
func (f *File) Save(_ context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := toml.Marshal(fileRecord{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Clear removes the token file. Clearing an absent file is not an error.
func (f *File) Clear(context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (f *File) Close() error { return nil }
