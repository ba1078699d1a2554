package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/hackeddesign/claire"
	"github.com/hackeddesign/claire/internal/config"
	"github.com/hackeddesign/claire/pkg/adapters/file"
	"github.com/hackeddesign/claire/pkg/adapters/memory"
	"github.com/hackeddesign/claire/pkg/adapters/mongo"
	"github.com/hackeddesign/claire/pkg/adapters/redis"
	"github.com/hackeddesign/claire/pkg/adapters/sqlite"
	"github.com/hackeddesign/claire/pkg/flows/enquiry"
	"github.com/hackeddesign/claire/pkg/observability"
	"github.com/hackeddesign/claire/pkg/persistence/middleware"
	"github.com/hackeddesign/claire/pkg/ports"
	"github.com/hackeddesign/claire/pkg/routing"
	"github.com/prometheus/client_golang/prometheus"
)

// lockPrefix namespaces distributed conversation locks in redis.
const lockPrefix = "claire:lock:"

// Services is everything a command needs, built from one Config.
type Services struct {
	Engine  *claire.Engine
	Store   ports.StateStore
	Metrics *observability.Metrics
	// Inspect reads the same conversations with pii slot keys masked.
	// It is for operators only; the engine never resumes from it.
	Inspect ports.StateStore

	closers []func(context.Context) error
}

// Close releases backend connections.
func (s *Services) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i](ctx))
	}
	return errors.Join(errs...)
}

// BuildOptions tweaks Build for a particular command.
type BuildOptions struct {
	// Registerer receives the engine metrics. Nil skips metrics.
	Registerer prometheus.Registerer
}

// Build wires store, middleware, locker, routing and metrics into an engine.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts BuildOptions) (*Services, error) {
	svc := &Services{}

	base, locker, err := openStore(ctx, cfg, svc)
	if err != nil {
		return nil, err
	}

	mws, err := storeMiddleware(cfg)
	if err != nil {
		_ = svc.Close(ctx)
		return nil, err
	}
	svc.Store = middleware.Chain(base, mws...)

	svc.Inspect = svc.Store
	if len(cfg.Store.PIIPatterns) > 0 {
		for _, p := range cfg.Store.PIIPatterns {
			if _, err := regexp.Compile(p); err != nil {
				_ = svc.Close(ctx)
				return nil, fmt.Errorf("invalid pii pattern %q: %w", p, err)
			}
		}
		svc.Inspect = middleware.NewPIIMiddleware(cfg.Store.PIIPatterns)(svc.Store)
	}

	table := routing.Default(enquiry.DialogID)
	if cfg.Routing.Path != "" {
		if table, err = routing.Load(cfg.Routing.Path); err != nil {
			_ = svc.Close(ctx)
			return nil, err
		}
	}

	engineOpts := []claire.Option{
		claire.WithStore(svc.Store),
		claire.WithLogger(logger),
		claire.WithRoutingTable(table),
		claire.WithLifecycleHooks(observability.LogHooks(logger)),
	}
	if locker != nil {
		engineOpts = append(engineOpts, claire.WithLocker(locker, cfg.Store.LockTTL))
	}
	if opts.Registerer != nil {
		if svc.Metrics, err = observability.NewMetrics(opts.Registerer); err != nil {
			_ = svc.Close(ctx)
			return nil, err
		}
		engineOpts = append(engineOpts, claire.WithLifecycleHooks(svc.Metrics.Hooks()))
	}

	if svc.Engine, err = claire.New(engineOpts...); err != nil {
		_ = svc.Close(ctx)
		return nil, err
	}

	logger.Debug("Engine ready", "store", cfg.Store.Backend, "distributed_lock", locker != nil)
	return svc, nil
}

func openStore(ctx context.Context, cfg *config.Config, svc *Services) (ports.StateStore, ports.DistributedLocker, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil

	case config.BackendFile:
		return file.New(cfg.File.Dir), nil, nil

	case config.BackendRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		svc.closers = append(svc.closers, func(context.Context) error { return store.Close() })
		if err := store.Ping(ctx); err != nil {
			_ = svc.Close(ctx)
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		var locker ports.DistributedLocker
		if cfg.Store.DistributedLock {
			locker = redis.NewLocker(store.Client(), lockPrefix)
		}
		return store, locker, nil

	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		svc.closers = append(svc.closers, func(context.Context) error { return store.Close() })
		return store, nil, nil

	case config.BackendMongo:
		store, err := mongo.Open(ctx, mongo.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
			User:       cfg.Mongo.User,
			Password:   cfg.Mongo.Password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("mongo: %w", err)
		}
		svc.closers = append(svc.closers, store.Close)
		return store, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// storeMiddleware builds the write path of the engine store. PII masking is
// not part of it: masked values read back into a dialog would be replayed.
func storeMiddleware(cfg *config.Config) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if cfg.Store.EncryptionKey != "" {
		active, err := middleware.ParseKey(cfg.Store.EncryptionKey)
		if err != nil {
			return nil, err
		}
		enc := middleware.EncryptionConfig{ActiveKey: active}
		for _, k := range cfg.Store.FallbackKeys {
			key, err := middleware.ParseKey(k)
			if err != nil {
				return nil, fmt.Errorf("fallback key: %w", err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(enc))
	}
	return mws, nil
}
