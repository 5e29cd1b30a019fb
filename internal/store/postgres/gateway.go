// Package postgres provides a Postgres-backed persistence gateway.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/bingokit/drawsync/internal/draw"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for draw rows.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Gateway persists draw records in Postgres. It implements store.Gateway:
// read failures degrade to an empty store, write failures propagate.
//
// Expected schema:
//
//	CREATE TABLE draws (
//	    period TEXT PRIMARY KEY,
//	    draw_date TEXT NOT NULL DEFAULT '',
//	    balls JSONB NOT NULL,
//	    super INT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Gateway struct {
	pool   pgxPool
	table  string
	logger *zap.Logger
}

// New creates a Postgres-backed Gateway using the provided config.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Gateway, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewWithPool(pool, cfg.Table, logger)
}

// NewWithPool constructs a Gateway from an existing pool (primarily for testing).
func NewWithPool(pool pgxPool, table string, logger *zap.Logger) (*Gateway, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "draws"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{pool: pool, table: table, logger: logger}, nil
}

// Close releases the underlying pool resources.
func (g *Gateway) Close() {
	g.pool.Close()
}

// Load reads every persisted draw. Query or row failures degrade to an
// empty store; individual rows that fail validation are skipped.
func (g *Gateway) Load(ctx context.Context) draw.Store {
	query := fmt.Sprintf(`SELECT period, draw_date, balls, super FROM %s`, g.table)
	rows, err := g.pool.Query(ctx, query)
	if err != nil {
		g.logger.Warn("Store query failed; starting empty", zap.Error(err))
		return draw.NewStore()
	}
	defer rows.Close()

	s := draw.NewStore()
	for rows.Next() {
		var (
			period, date string
			ballsRaw     []byte
			super        *int
		)
		if err := rows.Scan(&period, &date, &ballsRaw, &super); err != nil {
			g.logger.Warn("Store row scan failed; starting empty", zap.Error(err))
			return draw.NewStore()
		}
		var balls []int
		if err := json.Unmarshal(ballsRaw, &balls); err != nil {
			g.logger.Warn("Skipping row with unparsable balls", zap.String("period", period), zap.Error(err))
			continue
		}
		rec, err := draw.NewRecord(period, date, balls, super)
		if err != nil {
			g.logger.Warn("Skipping invalid persisted record", zap.String("period", period), zap.Error(err))
			continue
		}
		s[rec.Period] = rec
	}
	if err := rows.Err(); err != nil {
		g.logger.Warn("Store read failed; starting empty", zap.Error(err))
		return draw.NewStore()
	}
	return s
}

// Save upserts every record in ascending period order.
func (g *Gateway) Save(ctx context.Context, s draw.Store) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (period, draw_date, balls, super, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (period) DO UPDATE
		SET draw_date = EXCLUDED.draw_date,
		    balls = EXCLUDED.balls,
		    super = EXCLUDED.super,
		    updated_at = NOW()
	`, g.table)

	for _, rec := range s.Export() {
		ballsRaw, err := json.Marshal(rec.Balls)
		if err != nil {
			return fmt.Errorf("marshal balls for period %s: %w", rec.Period, err)
		}
		if _, err := g.pool.Exec(ctx, query, rec.Period, rec.Date, ballsRaw, rec.Super); err != nil {
			return fmt.Errorf("upsert period %s: %w", rec.Period, err)
		}
	}
	return nil
}
