// Package bootstrap wires the process-wide runtime: store, Redis and local bootstrap data.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"blogicum/internal/config"
	"blogicum/internal/database"
	"blogicum/internal/kv"
	"blogicum/internal/middleware"
	"blogicum/internal/repository"
	"blogicum/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the DB and Redis and ensures the development staff account.
// The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb := kv.MustConnectOrDegrade(ctx, cfg.RedisURL)

	if err := ensureDevStaff(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development staff: %w", err)
	}

	return db, rdb, nil
}

func ensureDevStaff(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if cfg.Env != "development" || !cfg.DevBootstrapStaff {
		return nil
	}

	username := strings.TrimSpace(cfg.DevStaffUsername)
	if username == "" {
		username = "admin"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevStaffEmail))
	if email == "" {
		email = "admin@blogicum.local"
	}
	if cfg.DevStaffPassword == "" {
		return fmt.Errorf("DEV_STAFF_PASSWORD must be set when DEV_BOOTSTRAP_STAFF is enabled")
	}

	users := service.NewUserService(repository.NewUserRepository(db))
	user, err := users.EnsureStaff(ctx, username, email, cfg.DevStaffPassword)
	if err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "development staff account ensured",
		slog.Uint64("user_id", uint64(user.ID)), slog.String("username", user.Username))
	return nil
}
