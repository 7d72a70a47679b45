// Package warehouse extracts the refined statistics tables from the
// ClickHouse data warehouse into in-memory frames.
package warehouse

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config holds the warehouse connection settings.
type Config struct {
	Addr     string
	Database string
	Username string
	Password string
	Secure   bool

	// QueryTimeout bounds a single extraction query.
	QueryTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("warehouse address is required")
	}
	if c.Database == "" {
		return fmt.Errorf("warehouse database is required")
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = 5 * time.Minute
	}
	return nil
}

// Client is the read-only warehouse connection.
type Client interface {
	Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
	Close() error
}

type client struct {
	conn driver.Conn
	log  *slog.Logger
}

// NewClient opens and pings a ClickHouse connection.
func NewClient(ctx context.Context, log *slog.Logger, cfg Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": int(cfg.QueryTimeout.Seconds()),
		},
		DialTimeout: 5 * time.Second,
	}
	if cfg.Secure {
		options.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse connection: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	log.Info("warehouse: client initialized", "addr", cfg.Addr, "database", cfg.Database, "secure", cfg.Secure)

	return &client{conn: conn, log: log}, nil
}

func (c *client) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	return c.conn.Query(ctx, query, args...)
}

func (c *client) Close() error {
	return c.conn.Close()
}
