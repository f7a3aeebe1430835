package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/vine"
	"github.com/aretw0/vine/internal/config"
	"github.com/aretw0/vine/pkg/adapters/file"
	"github.com/aretw0/vine/pkg/adapters/memory"
	"github.com/aretw0/vine/pkg/adapters/redis"
	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/persistence/middleware"
	"github.com/aretw0/vine/pkg/ports"
)

// createStore opens the snapshot store named by the config. It returns a
// nil store when persistence is off, and a close func that is always safe
// to call.
func createStore(cfg config.StoreConfig) (ports.StateStore, func() error, error) {
	store, closeFn, err := openStore(cfg)
	if err != nil || store == nil {
		return store, closeFn, err
	}
	enc, err := cfg.Encryption()
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	if enc != nil {
		mw, err := middleware.NewEncryptionMiddleware(*enc)
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		store = middleware.Chain(store, mw)
	}
	return store, closeFn, nil
}

func openStore(cfg config.StoreConfig) (ports.StateStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Kind {
	case config.StoreNone:
		return nil, noop, nil
	case config.StoreMemory:
		return memory.NewStore(), noop, nil
	case config.StoreFile:
		return file.NewStore(cfg.Path), noop, nil
	case config.StoreRedis:
		var opts []redis.Option
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		if cfg.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL))
		}
		store := redis.New(cfg.Address, cfg.Password, cfg.DB, opts...)
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}

// createHostOptions translates the config into host options.
func createHostOptions(cfg config.Config, logger *slog.Logger, store ports.StateStore, hooks ...domain.LifecycleHooks) ([]vine.Option, error) {
	scene, err := cfg.Scene()
	if err != nil {
		return nil, err
	}
	opts := []vine.Option{
		vine.WithScriptPath(cfg.Script),
		vine.WithEntryPoint(cfg.EntryPoint),
		vine.WithPollInterval(cfg.PollInterval),
		vine.WithAutoReload(cfg.AutoReload),
		vine.WithStrictArguments(cfg.StrictArgs),
		vine.WithViewport(cfg.Viewport.X, cfg.Viewport.Y),
		vine.WithScene(scene),
		vine.WithLogger(logger),
		vine.WithLifecycleHooks(domain.MergeHooks(hooks...)),
	}
	if store != nil {
		opts = append(opts, vine.WithStore(store, cfg.Store.Key))
	}
	return opts, nil
}
