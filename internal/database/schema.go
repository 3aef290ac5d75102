package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"blogicum/internal/config"
	"blogicum/internal/middleware"

	"gorm.io/gorm"
)

// DB_SCHEMA_MODE values. They only matter on PostgreSQL: the embedded SQL is
// written for it, so a SQLite store (local runs and tests) is always built
// from the gorm models.
const (
	// SchemaModeHybrid runs the SQL migrations, then AutoMigrate outside production.
	SchemaModeHybrid = "hybrid"
	// SchemaModeSQL runs the SQL migrations only.
	SchemaModeSQL = "sql"
	// SchemaModeAuto syncs tables from the models. Refused in production and staging.
	SchemaModeAuto = "auto"
)

// SchemaStatus is what `blogctl migrate status` prints.
type SchemaStatus struct {
	Mode               string
	Environment        string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
}

// schemaPlan is the pair of steps ApplySchema will take for a config.
type schemaPlan struct {
	mode string
	sql  bool
	auto bool
}

func planSchema(cfg *config.Config) (schemaPlan, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		mode = SchemaModeHybrid
	}
	if cfg.DBDriver == "sqlite" {
		return schemaPlan{mode: mode, auto: true}, nil
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Env))
	shared := env == "production" || env == "prod" || env == "staging" || env == "stage"

	switch mode {
	case SchemaModeSQL:
		return schemaPlan{mode: mode, sql: true}, nil
	case SchemaModeAuto:
		if shared {
			return schemaPlan{}, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q", cfg.Env)
		}
		return schemaPlan{mode: mode, auto: true}, nil
	case SchemaModeHybrid:
		return schemaPlan{mode: mode, sql: true, auto: !shared}, nil
	}
	return schemaPlan{}, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
}

// AutoMigrate syncs users, categories, locations, posts and comments from the models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema runs the steps planned for cfg: SQL migrations first, then AutoMigrate.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(cfg)
	if err != nil {
		return err
	}

	if plan.sql {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if plan.auto {
		middleware.Logger.Info("Syncing blog tables from models",
			slog.String("mode", plan.mode), slog.String("driver", cfg.DBDriver))
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// GetSchemaStatus reports the plan for cfg and, when SQL migrations are part of
// it, which versions are applied and which are still pending.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planSchema(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               plan.mode,
		Environment:        cfg.Env,
		WillRunSQL:         plan.sql,
		WillRunAutoMigrate: plan.auto,
	}
	if !plan.sql {
		return status, nil
	}

	if status.AppliedVersions, err = appliedVersions(ctx, db); err != nil {
		return nil, err
	}
	if status.PendingMigrations, err = pendingMigrations(status.AppliedVersions, GetMigrations()); err != nil {
		return nil, err
	}
	return status, nil
}
