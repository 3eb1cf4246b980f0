package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"quilog/internal/config"
	"quilog/internal/middleware"
	"quilog/internal/models"

	"gorm.io/gorm"
)

// Schema modes accepted in DB_SCHEMA_MODE.
const (
	SchemaModeSQL  = "sql"
	SchemaModeAuto = "auto"
)

// SchemaStatus reports how ApplySchema would treat a database.
type SchemaStatus struct {
	Mode              string
	AppliedVersions   []int
	PendingMigrations []Migration
}

// PersistentModels returns the schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Post{},
		&models.Comment{},
		&models.PostLike{},
		&models.PostComment{},
	}
}

func isProdLikeEnv(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "production" || e == "prod" || e == "staging" || e == "stage"
}

// schemaMode picks how the schema is managed. The embedded SQL is written
// for postgres, so sqlite is always auto-migrated. Postgres defaults to the
// SQL migrations and only auto-migrates outside production.
func schemaMode(cfg *config.Config) (string, error) {
	if cfg.StoreBackend == config.BackendSQLite {
		return SchemaModeAuto, nil
	}
	switch mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode)); mode {
	case "", SchemaModeSQL:
		return SchemaModeSQL, nil
	case SchemaModeAuto:
		if isProdLikeEnv(cfg.Env) {
			return "", fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q", cfg.Env)
		}
		return SchemaModeAuto, nil
	default:
		return "", fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
}

// ApplySchema brings the database schema up to date.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	mode, err := schemaMode(cfg)
	if err != nil {
		return err
	}

	if mode == SchemaModeSQL {
		if _, err := NewMigrator(db).Up(ctx); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
		return nil
	}

	middleware.Logger.Info("running gorm automigrate", slog.String("backend", cfg.StoreBackend))
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// GetSchemaStatus reports the schema mode and, for SQL mode, the migration
// ledger.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	mode, err := schemaMode(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{Mode: mode}
	if mode != SchemaModeSQL {
		return status, nil
	}

	m := NewMigrator(db)
	if status.AppliedVersions, err = m.Applied(ctx); err != nil {
		return nil, err
	}
	if status.PendingMigrations, err = m.Pending(ctx); err != nil {
		return nil, err
	}
	return status, nil
}
