// Package graphstore wraps the Neo4j driver behind session-scoped query
// helpers. It owns connection lifecycle; domain queries live in the social
// package.
package graphstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ripple/internal/config"
	"ripple/internal/observability"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// WriteSummary reports the counters of a write query.
type WriteSummary struct {
	NodesCreated         int
	RelationshipsCreated int
	RelationshipsDeleted int
}

// Client holds the process-wide Neo4j driver and its connection pool.
type Client struct {
	driver       neo4j.DriverWithContext
	database     string
	queryTimeout time.Duration
	logger       *slog.Logger
}

// Connect builds a driver from config, verifies connectivity within the
// connect timeout, and returns a ready client.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	auth := neo4j.BasicAuth(cfg.GraphUser, cfg.GraphPassword, "")
	driver, err := neo4j.NewDriverWithContext(cfg.GraphURI, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = cfg.GraphMaxPoolSize
		c.SocketConnectTimeout = cfg.GraphConnectTimeoutDuration()
	})
	if err != nil {
		return nil, fmt.Errorf("graphstore: init driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, cfg.GraphConnectTimeoutDuration())
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("graphstore: verify connectivity: %w", err)
	}

	logger.Info("graph store connected", slog.String("uri", cfg.GraphURI))

	return &Client{
		driver:       driver,
		database:     cfg.GraphDatabase,
		queryTimeout: cfg.GraphQueryTimeoutDuration(),
		logger:       logger,
	}, nil
}

// Close closes the driver and its connection pool.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}
	return c.driver.Close(ctx)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.queryTimeout)
}

// ReadRows runs a read query and returns every record as a map.
func (c *Client) ReadRows(ctx context.Context, operation, cypher string, params map[string]any) ([]map[string]any, error) {
	defer observability.ObserveGraphQuery(operation)()
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	rows, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			out = append(out, rec.AsMap())
		}
		return out, nil
	})
	if err != nil {
		observability.GraphQueryErrors.WithLabelValues(operation).Inc()
		return nil, fmt.Errorf("graph read %s: %w", operation, err)
	}
	return rows.([]map[string]any), nil
}

// ReadSingle runs a read query expected to produce at most one record.
// It returns nil without error when no record matches.
func (c *Client) ReadSingle(ctx context.Context, operation, cypher string, params map[string]any) (map[string]any, error) {
	rows, err := c.ReadRows(ctx, operation, cypher, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Write runs a write query and returns its summary counters.
func (c *Client) Write(ctx context.Context, operation, cypher string, params map[string]any) (WriteSummary, error) {
	defer observability.ObserveGraphQuery(operation)()
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	res, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		summary, err := result.Consume(ctx)
		if err != nil {
			return nil, err
		}
		counters := summary.Counters()
		return WriteSummary{
			NodesCreated:         counters.NodesCreated(),
			RelationshipsCreated: counters.RelationshipsCreated(),
			RelationshipsDeleted: counters.RelationshipsDeleted(),
		}, nil
	})
	if err != nil {
		observability.GraphQueryErrors.WithLabelValues(operation).Inc()
		return WriteSummary{}, fmt.Errorf("graph write %s: %w", operation, err)
	}
	return res.(WriteSummary), nil
}
