// Package tokenstore persists the session bearer token between runs.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoToken is returned by Load when nothing has been saved.
var ErrNoToken = errors.New("no saved token")

// Store persists a single bearer token.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Close() error
}

// Kinds accepted by Open.
const (
	KindFile  = "file"
	KindRedis = "redis"
	KindNone  = "none"
)

// Options selects and configures a Store.
type Options struct {
	Kind     string
	Path     string
	RedisURL string
	RedisKey string
}

// Open builds the store named by opts.Kind.
func Open(opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", KindFile:
		return NewFile(opts.Path)
	case KindRedis:
		return NewRedis(opts.RedisURL, opts.RedisKey)
	case KindNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown token store %q", opts.Kind)
	}
}

// None keeps nothing; sessions last for one run.
type None struct{}

func (None) Load(context.Context) (string, error) { return "", ErrNoToken }
func (None) Save(context.Context, string) error   { return nil }
func (None) Clear(context.Context) error          { return nil }
func (None) Close() error                         { return nil }
