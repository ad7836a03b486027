package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sandilya-stack/coach-server/internal/config"
	"github.com/sandilya-stack/coach-server/internal/docstore"
	"github.com/sandilya-stack/coach-server/internal/docstore/firestore"
	"github.com/sandilya-stack/coach-server/internal/docstore/memory"
	"github.com/sandilya-stack/coach-server/internal/docstore/postgres"
	"github.com/sandilya-stack/coach-server/internal/docstore/sqlite"
)

// NewDocStore opens the document store selected by cfg.DBDriver and applies its schema.
// The returned close func releases the backend connection.
func NewDocStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (docstore.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.DBDriver {
	case config.DBMemory:
		log.Warn().Msg("using in-memory document store; data is lost on restart")
		return memory.New(), noop, nil
	case config.DBSQLite:
		s, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("sqlite document store ready")
		return s, s.Close, nil
	case config.DBPostgres:
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("COACH_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		s, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		log.Info().Msg("postgres document store ready")
		return s, s.Close, nil
	case config.DBFirestore:
		s, err := firestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("project", cfg.GCPProjectID).Msg("firestore document store ready")
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}

// Migrate applies the SQL schema for sqlite and postgres; other drivers are schemaless.
func Migrate(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	switch cfg.DBDriver {
	case config.DBPostgres:
		if err := postgres.Bootstrap(ctx, cfg.PostgresDSN); err != nil {
			return err
		}
	case config.DBSQLite:
		s, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		if err := s.Close(); err != nil {
			return err
		}
	default:
		log.Info().Str("driver", cfg.DBDriver).Msg("no schema to apply")
		return nil
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("schema applied")
	return nil
}
