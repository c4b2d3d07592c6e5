package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/simflow"
	"github.com/aretw0/simflow/internal/config"
	"github.com/aretw0/simflow/pkg/adapters/file"
	"github.com/aretw0/simflow/pkg/adapters/memory"
	"github.com/aretw0/simflow/pkg/adapters/redis"
	"github.com/aretw0/simflow/pkg/adapters/sqlite"
	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/persistence/middleware"
	"github.com/aretw0/simflow/pkg/ports"
)

// Backend bundles the session store selected by configuration with the
// distributed locker that goes with it, if any.
type Backend struct {
	Store  ports.StateStore
	Locker ports.DistributedLocker
	close  func() error
}

// OpenBackend builds the store named by cfg.Store and wraps it with the
// configured middlewares. Redis is pinged so a wrong address fails here
// rather than on the first answer.
func OpenBackend(ctx context.Context, cfg config.Config) (*Backend, error) {
	b, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var mws []middleware.Middleware
	if len(cfg.PIIPatterns) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.PIIPatterns)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		mws = append(mws, pii)
	}
	if len(cfg.EncryptionKey) > 0 {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: cfg.EncryptionKey})
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		mws = append(mws, enc)
	}
	b.Store = middleware.Wrap(b.Store, mws...)
	return b, nil
}

func openStore(ctx context.Context, cfg config.Config) (*Backend, error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		return &Backend{Store: memory.NewStore()}, nil

	case config.StoreFile:
		return &Backend{Store: file.NewStore(cfg.SessionDir)}, nil

	case config.StoreRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithTTL(cfg.RedisTTL))
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), redis.DefaultPrefix),
			close:  store.Close,
		}, nil

	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: store, close: store.Close}, nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Close releases connections held by the store.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// EngineOptions returns the engine options for this backend.
func (b *Backend) EngineOptions() []simflow.Option {
	opts := []simflow.Option{simflow.WithStore(b.Store)}
	if b.Locker != nil {
		opts = append(opts, simflow.WithLocker(b.Locker))
	}
	return opts
}

// LoadForm reads a YAML or JSON form definition file.
func LoadForm(path string) (*domain.Form, error) {
	return file.ReadForm(path)
}

// NewEngine builds an engine for form over backend.
func NewEngine(form *domain.Form, backend *Backend, cfg config.Config, logger *slog.Logger, extra ...simflow.Option) (*simflow.Engine, error) {
	opts := append(backend.EngineOptions(),
		simflow.WithLogger(logger),
		simflow.WithNavigationDebounce(cfg.Debounce),
	)
	opts = append(opts, extra...)
	eng, err := simflow.New(form, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return eng, nil
}

// describe summarizes a stored session for listings.
func describe(state *domain.FormState) string {
	switch {
	case state.Finished:
		return "finished"
	case state.ActiveQuestion.QuestionID == "":
		return "ended"
	default:
		return "at " + state.ActiveQuestion.QuestionID
	}
}
