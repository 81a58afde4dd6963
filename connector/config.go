// Package connector opens the PostgreSQL database the migration journal is
// applied to.
package connector

import (
	"fmt"
	"math"
	"time"
)

// Drivers a Config can select.
const (
	DriverPgx = "pgx"
	DriverSQL = "sql"
)

// Config represents database connection configuration.
type Config struct {
	// Driver is pgx (a pgxpool, the default) or sql (database/sql over the
	// pgx stdlib driver).
	Driver         string            `json:"driver" yaml:"driver"`
	Host           string            `json:"host" yaml:"host"`
	Port           int               `json:"port" yaml:"port"`
	Database       string            `json:"database" yaml:"database"`
	Username       string            `json:"username" yaml:"username"`
	Password       string            `json:"password" yaml:"password"`
	SSLMode        string            `json:"ssl_mode" yaml:"ssl_mode"`
	Params         map[string]string `json:"params" yaml:"params"`
	Pool           PoolConfig        `json:"pool" yaml:"pool"`
	ConnectTimeout time.Duration     `json:"connect_timeout" yaml:"connect_timeout"`
	Retry          *RetryConfig      `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// PoolConfig defines connection pool settings.
type PoolConfig struct {
	MaxOpen     int           `json:"max_open" yaml:"max_open"`
	MaxIdle     int           `json:"max_idle" yaml:"max_idle"`
	MaxLifetime time.Duration `json:"max_lifetime" yaml:"max_lifetime"`
	MaxIdleTime time.Duration `json:"max_idle_time" yaml:"max_idle_time"`
}

// RetryConfig defines connection retry behavior.
type RetryConfig struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay"`
	Backoff    float64       `json:"backoff" yaml:"backoff"`
}

// Validate checks the fields a connection cannot be attempted without.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	switch c.Driver {
	case "", DriverPgx, DriverSQL:
	default:
		return fmt.Errorf("unknown driver %q (expected %s or %s)", c.Driver, DriverPgx, DriverSQL)
	}
	if c.Pool.MaxOpen > math.MaxInt32 {
		return fmt.Errorf("pool.max_open must not exceed %d, got %d", math.MaxInt32, c.Pool.MaxOpen)
	}
	if c.Pool.MaxIdle > math.MaxInt32 {
		return fmt.Errorf("pool.max_idle must not exceed %d, got %d", math.MaxInt32, c.Pool.MaxIdle)
	}
	if c.Retry != nil && c.Retry.MaxRetries < 1 {
		return fmt.Errorf("retry.max_retries must be at least 1, got %d", c.Retry.MaxRetries)
	}
	return nil
}

// withDefaults fills the driver and unset pool settings. Idle connections
// never exceed open ones.
func (c Config) withDefaults() Config {
	if c.Driver == "" {
		c.Driver = DriverPgx
	}
	if c.Pool.MaxOpen <= 0 {
		c.Pool.MaxOpen = 4
	}
	c.Pool.MaxIdle = min(max(c.Pool.MaxIdle, 0), c.Pool.MaxOpen)
	if c.Pool.MaxLifetime == 0 {
		c.Pool.MaxLifetime = time.Hour
	}
	if c.Pool.MaxIdleTime == 0 {
		c.Pool.MaxIdleTime = 30 * time.Minute
	}
	return c
}
