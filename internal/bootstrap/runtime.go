// Package bootstrap wires the runtime dependencies of the application.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"ripple/internal/cache"
	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/graphstore"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime holds the connected backing services.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Graph *graphstore.Client
}

// InitRuntime connects to Postgres, Redis and the graph store. Redis is
// optional and may come back nil; the relational and graph stores are
// required.
func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)

	graph, err := graphstore.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("graph store connection failed: %w", err)
	}

	return &Runtime{
		DB:    db,
		Redis: cache.GetClient(),
		Graph: graph,
	}, nil
}

// Close releases the runtime's connections.
func (r *Runtime) Close(ctx context.Context) {
	if r == nil {
		return
	}
	if err := r.Graph.Close(ctx); err != nil {
		slog.Warn("closing graph store", "error", err)
	}
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
	if r.DB != nil {
		if sqlDB, err := r.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
