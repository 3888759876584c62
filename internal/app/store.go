package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/goph-notes/internal/config"
	"github.com/and161185/goph-notes/internal/migrate"
	"github.com/and161185/goph-notes/internal/repository"
	"github.com/and161185/goph-notes/internal/repository/memory"
	"github.com/and161185/goph-notes/internal/repository/mongodb"
	"github.com/and161185/goph-notes/internal/repository/postgres"
	grpcserver "github.com/and161185/goph-notes/internal/server/grpc"
)

// Store is an opened backend with its repositories.
type Store struct {
	Accounts repository.AccountRepository
	Notes    repository.NoteRepository
	// Probe is nil for backends without a connection to check.
	Probe grpcserver.Pinger
	Close func(ctx context.Context) error
}

// OpenStore connects the configured driver. For postgres, migrations run first when enabled.
// store.timeout bounds the connect and every later repository call.
func OpenStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (*Store, error) {
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	st.Accounts = repository.AccountsWithTimeout(st.Accounts, cfg.Timeout)
	st.Notes = repository.NotesWithTimeout(st.Notes, cfg.Timeout)
	return st, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (*Store, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		if cfg.Migrate {
			res, err := migrate.Up(ctx, cfg.DSN)
			if err != nil {
				return nil, fmt.Errorf("migrate up: %w", err)
			}
			log.Info("migrations applied", zap.Int("count", len(res)))
		}
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return &Store{
			Accounts: postgres.NewAccountRepo(db),
			Notes:    postgres.NewNoteRepo(db),
			Probe:    db,
			Close:    func(context.Context) error { db.Close(); return nil },
		}, nil

	case config.DriverMongo:
		db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		if err := db.EnsureIndexes(ctx); err != nil {
			_ = db.Close(context.Background())
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return &Store{
			Accounts: mongodb.NewAccountRepo(db),
			Notes:    mongodb.NewNoteRepo(db),
			Probe:    db,
			Close:    db.Close,
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on exit")
		return &Store{
			Accounts: memory.NewAccountRepo(),
			Notes:    memory.NewNoteRepo(),
			Close:    func(context.Context) error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
