package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"blogicum/internal/middleware"

	"gorm.io/gorm"
)

// SchemaMigration records one applied SQL migration.
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime;index"`
}

// TableName keeps the bookkeeping table name stable across model renames.
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// appliedVersions lists recorded versions in ascending order. A database that
// never ran migrations has none.
func appliedVersions(ctx context.Context, db *gorm.DB) ([]int, error) {
	if !db.Migrator().HasTable(&SchemaMigration{}) {
		return []int{}, nil
	}
	versions := make([]int, 0)
	err := db.WithContext(ctx).Model(&SchemaMigration{}).
		Order("version ASC").
		Pluck("version", &versions).Error
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	return versions, nil
}

// pendingMigrations returns the registered migrations not yet applied. Applied
// versions this build does not know about mean the binary is older than the
// database, which is an error.
func pendingMigrations(applied []int, registered []Migration) ([]Migration, error) {
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	known := make(map[int]bool, len(registered))
	pending := make([]Migration, 0, len(registered))
	for _, m := range registered {
		known[m.Version] = true
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}

	var unknown []string
	sorted := append([]int(nil), applied...)
	sort.Ints(sorted)
	for _, v := range sorted {
		if !known[v] {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("schema_migrations has versions unknown to this build: %s",
			strings.Join(unknown, ", "))
	}
	return pending, nil
}

// RunMigrations applies every pending embedded migration in version order. Each
// script commits together with its schema_migrations row.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	pending, err := pendingMigrations(applied, migrations)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		middleware.Logger.Debug("Schema is up to date", slog.Int("applied", len(applied)))
		return nil
	}

	for _, m := range pending {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.UpScript).Error; err != nil {
				return fmt.Errorf("migration %s: %w", m.String(), err)
			}
			return tx.Create(&SchemaMigration{Version: m.Version, Name: m.Name}).Error
		})
		if err != nil {
			return err
		}
		middleware.Logger.Info("Migration applied", slog.Int("version", m.Version), slog.String("name", m.Name))
	}
	return nil
}

// RollbackMigration runs the down script of one applied migration.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	if i := sort.SearchInts(applied, version); i == len(applied) || applied[i] != version {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("rollback %s: %w", m.String(), err)
		}
		return tx.Delete(&SchemaMigration{}, "version = ?", version).Error
	})
	if err != nil {
		return err
	}
	middleware.Logger.Info("Migration rolled back", slog.Int("version", version), slog.String("name", m.Name))
	return nil
}
