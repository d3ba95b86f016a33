package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/dafibh/nexus/nexus-backend/db/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

const migrationsDir = "."

// Runner applies the embedded goose migrations against a database
type Runner struct {
	dsn     string
	fsys    fs.FS
	timeout time.Duration
}

// New returns a migration runner backed by goose and the embedded migration files
func New(dsn string) (Runner, error) {
	if dsn == "" {
		return Runner{}, errors.New("empty database dsn")
	}
	return Runner{dsn: dsn, fsys: migrations.FS, timeout: time.Minute}, nil
}

// Ensure applies pending migrations
func (r Runner) Ensure(ctx context.Context) error {
	return r.withDB(func(db *sql.DB) error {
		runCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		log.Info().Msg("Applying migrations")
		if err := goose.UpContext(runCtx, db, migrationsDir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		version, err := goose.GetDBVersionContext(runCtx, db)
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		log.Info().Int64("version", version).Msg("Migrations applied")
		return nil
	})
}

// Status logs applied and pending migrations
func (r Runner) Status(ctx context.Context) error {
	return r.withDB(func(db *sql.DB) error {
		if err := goose.StatusContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		return nil
	})
}

// Down rolls back the latest migration, or down to targetVersion when it is positive
func (r Runner) Down(ctx context.Context, targetVersion int64) error {
	return r.withDB(func(db *sql.DB) error {
		runCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		if targetVersion > 0 {
			log.Info().Int64("target", targetVersion).Msg("Rolling back migrations")
			if err := goose.DownToContext(runCtx, db, migrationsDir, targetVersion); err != nil {
				return fmt.Errorf("rollback to version %d: %w", targetVersion, err)
			}
		} else {
			log.Info().Msg("Rolling back latest migration")
			if err := goose.DownContext(runCtx, db, migrationsDir); err != nil {
				return fmt.Errorf("rollback latest migration: %w", err)
			}
		}

		log.Info().Msg("Rollback complete")
		return nil
	})
}

func (r Runner) withDB(fn func(*sql.DB) error) error {
	goose.SetBaseFS(r.fsys)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}

	db, err := sql.Open("pgx", r.dsn)
	if err != nil {
		return fmt.Errorf("open sql connection: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping sql connection: %w", err)
	}

	return fn(db)
}

// gooseLogger routes goose output through zerolog
type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	log.Fatal().Msgf(format, v...)
}

func (gooseLogger) Printf(format string, v ...interface{}) {
	log.Info().Str("component", "goose").Msgf(format, v...)
}
