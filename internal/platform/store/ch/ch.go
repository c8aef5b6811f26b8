// Package ch provides a clickhouse client used for fire-and-forget event writes
package ch

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures clickhouse connectivity
type Config struct {
	Addr     string
	Database string
	Username string
	Password string

	// ClientTag shows up in system.query_log client info, e.g. "api"
	ClientTag string
}

// CH is a thin wrapper over the native clickhouse connection
type CH struct {
	conn driver.Conn
}

// Open dials clickhouse and verifies connectivity
func Open(ctx context.Context, cfg Config) (*CH, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: BuildClientInfo(cfg.ClientTag),
	})
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &CH{conn: conn}, nil
}

// AsyncInsert issues an async insert; wait=false makes it fire-and-forget
// on the server side, which is what event emission wants
func (c *CH) AsyncInsert(ctx context.Context, sql string, wait bool, args ...any) error {
	return c.conn.AsyncInsert(ctx, sql, wait, args...)
}

// Exec runs a statement synchronously (DDL, tests)
func (c *CH) Exec(ctx context.Context, sql string, args ...any) error {
	return c.conn.Exec(ctx, sql, args...)
}

// Ping verifies connectivity
func (c *CH) Ping(ctx context.Context) error { return c.conn.Ping(ctx) }

// Close closes resources
func (c *CH) Close() error { return c.conn.Close() }
