package connector

import (
	"net"
	"net/url"
	"strconv"
)

// BuildDSN renders a Config as a postgres:// URL. Query parameters are
// emitted in key order so the same config always yields the same DSN; empty
// values are skipped.
func BuildDSN(cfg Config) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
	}
	if cfg.Username != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.Username, cfg.Password)
		} else {
			u.User = url.User(cfg.Username)
		}
	}
	if cfg.Database != "" {
		u.Path = "/" + cfg.Database
	}

	params := url.Values{}
	for k, v := range cfg.Params {
		if v != "" {
			params.Set(k, v)
		}
	}
	if cfg.SSLMode != "" {
		params.Set("sslmode", cfg.SSLMode)
	}
	u.RawQuery = params.Encode()

	return u.String()
}
