package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/RachelRYuan/Blogen/internal/actions"
	"github.com/RachelRYuan/Blogen/internal/blogen"
	"github.com/RachelRYuan/Blogen/internal/config"
	"github.com/RachelRYuan/Blogen/internal/logging"
	"github.com/RachelRYuan/Blogen/internal/prefs"
	"github.com/RachelRYuan/Blogen/internal/session"
	"github.com/RachelRYuan/Blogen/internal/state"
	"github.com/RachelRYuan/Blogen/internal/telemetry"
	"github.com/RachelRYuan/Blogen/internal/tokenstore"
	"github.com/RachelRYuan/Blogen/internal/ui"
)

// Options configure the Blogen client.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/blogen/prefs.toml
	EnvFiles   []string
	Version    string
}

// Run boots the Blogen TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	if err := config.LoadDotEnv(opts.EnvFiles...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, flush, err := logging.New(logging.Options{
		Path:   cfg.LogFile,
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer flush()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("prefs unreadable, using defaults", zap.Error(err))
	}

	shutdown, err := telemetry.Init(ctx, telemetry.Options{
		Enabled:   cfg.TracingEnabled,
		JaegerURL: cfg.JaegerURL,
		Version:   opts.Version,
	}, logger)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	} else {
		defer shutdown()
	}

	tokens, err := tokenstore.Open(tokenstore.Options{
		Kind:     cfg.TokenStore,
		Path:     cfg.TokenFile,
		RedisURL: cfg.RedisURL,
	})
	if err != nil {
		return fmt.Errorf("open token store: %w", err)
	}
	defer func() {
		if err := tokens.Close(); err != nil {
			logger.Warn("close token store", zap.Error(err))
		}
	}()

	sess := session.New()
	client, err := blogen.NewClient(cfg.APIURL,
		blogen.WithTimeout(cfg.RequestTimeout),
		blogen.WithTokenSource(sess),
		blogen.WithLogger(logging.WithComponent(logger, "api")),
	)
	if err != nil {
		return fmt.Errorf("init blogen client: %w", err)
	}
	manager := session.NewManager(sess, client, tokens, logging.WithComponent(logger, "session"))

	nav := ui.NewNavigator()
	acts := actions.New(client, &state.Store{}, &state.CategoryStore{}, actions.Options{
		PageSize:         userPrefs.PageSizeOr(cfg.PageSize),
		CategoryPageSize: cfg.CategoryPageSize,
		UserCacheSize:    cfg.UserCacheSize,
		UserCacheTTL:     cfg.UserCacheTTL,
		Navigator:        nav,
		Logger:           logging.WithComponent(logger, "actions"),
	})

	banner := restoreSession(ctx, manager, cfg, logger)

	StartRefresher(ctx, acts, cfg.RefreshInterval, sess.IsAuthenticated, logger)

	return ui.Run(ctx, ui.Options{
		Context:        ctx,
		Actions:        acts,
		Sessions:       manager,
		Accounts:       client,
		Navigator:      nav,
		Logger:         logger,
		Prefs:          userPrefs,
		PrefsPath:      opts.PrefsPath,
		LogPath:        cfg.LogFile,
		RequestTimeout: cfg.RequestTimeout,
		Banner:         banner,
	})
}

// restoreSession reloads a saved token and returns a banner explaining why
// it could not be used, or "" when there was nothing to restore.
func restoreSession(ctx context.Context, manager *session.Manager, cfg config.Config, logger *zap.Logger) string {
	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	err := manager.Restore(ctx)
	switch {
	case err == nil, errors.Is(err, session.ErrNoToken):
		return ""
	case errors.Is(err, session.ErrTokenExpired):
		return "Your session has expired, please log in again"
	case blogen.IsTransport(err):
		logger.Warn("session restore failed", zap.Error(err))
		return "Cannot reach " + cfg.APIURL
	default:
		logger.Warn("session restore failed", zap.Error(err))
		return "Please log in again"
	}
}
