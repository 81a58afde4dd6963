package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	// Registers the "pgx" driver with database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/dynschema/database"
	"github.com/Konsultn-Engineering/dynschema/dialect"
)

// PostgresConnector represents a PostgreSQL database connection.
type PostgresConnector struct {
	config  Config
	db      database.Database
	dialect dialect.Dialect
	logger  *zap.SugaredLogger
}

// Connect validates cfg and opens the configured driver, retrying per
// cfg.Retry.
func Connect(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (*PostgresConnector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	p := &PostgresConnector{
		config:  cfg.withDefaults(),
		dialect: dialect.NewPostgresDialect(),
		logger:  logger,
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	if cfg.Retry != nil {
		err := retryConnect(ctx, cfg.Retry, p.connect, func(attempt int, delay time.Duration, err error) {
			p.logger.Warnw("database connection failed, retrying", "attempt", attempt, "delay", delay, "error", err)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect after %d attempts: %w", cfg.Retry.MaxRetries, err)
		}
	} else if err := p.connect(ctx); err != nil {
		return nil, err
	}

	p.logger.Infow("connected to database", "driver", p.config.Driver, "host", cfg.Host, "port", cfg.Port, "database", cfg.Database)
	return p, nil
}

// connect opens the database and pings it, since neither driver dials
// until first use.
func (p *PostgresConnector) connect(ctx context.Context) error {
	if p.db != nil {
		return nil
	}

	db, err := p.open(ctx)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	p.db = db
	return nil
}

func (p *PostgresConnector) open(ctx context.Context) (database.Database, error) {
	dsn := BuildDSN(p.config)
	pool := p.config.Pool

	if p.config.Driver == DriverSQL {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db.SetMaxOpenConns(pool.MaxOpen)
		db.SetMaxIdleConns(pool.MaxIdle)
		db.SetConnMaxLifetime(pool.MaxLifetime)
		db.SetConnMaxIdleTime(pool.MaxIdleTime)
		return database.NewSqlDatabase(db), nil
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	// Validate bounds both counts to int32.
	poolCfg.MaxConns = int32(pool.MaxOpen)
	poolCfg.MinConns = int32(pool.MaxIdle)
	poolCfg.MaxConnLifetime = pool.MaxLifetime
	poolCfg.MaxConnIdleTime = pool.MaxIdleTime

	pgxPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	return database.NewPgxDatabase(pgxPool), nil
}

// Database returns the executor the migration applier runs against.
func (p *PostgresConnector) Database() database.Database {
	return p.db
}

// Dialect returns the PostgreSQL dialect.
func (p *PostgresConnector) Dialect() dialect.Dialect {
	return p.dialect
}

// Close closes the database.
func (p *PostgresConnector) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
