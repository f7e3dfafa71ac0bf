package pool

import (
	"time"

	"github.com/pitabwire/i18nutils/config"
)

// Option tunes a connection opened by AddConnection.
type Option func(*Options)

// Options are the per-connection settings; zero limits leave the pgx and database/sql defaults.
type Options struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration

	// PreferSimpleProtocol avoids prepared statements, for pgbouncer style proxies.
	PreferSimpleProtocol   bool
	SkipDefaultTransaction bool

	TraceConfig config.ConfigurationDatabaseTracing
}

func defaultOptions() *Options {
	return &Options{
		PreferSimpleProtocol:   true,
		SkipDefaultTransaction: true,
	}
}

// FromConfig copies the connection limits and protocol settings of cfg. Query tracing is read
// from cfg too when it implements config.ConfigurationDatabaseTracing.
func FromConfig(cfg config.ConfigurationDatabase) Option {
	return func(o *Options) {
		o.MaxOpen = cfg.GetMaxOpenConnections()
		o.MaxIdle = cfg.GetMaxIdleConnections()
		o.MaxLifetime = cfg.GetMaxConnectionLifeTimeInSeconds()
		o.PreferSimpleProtocol = cfg.PreferSimpleProtocol()
		o.SkipDefaultTransaction = cfg.SkipDefaultTransaction()
		if tracing, ok := cfg.(config.ConfigurationDatabaseTracing); ok {
			o.TraceConfig = tracing
		}
	}
}

func WithMaxOpen(maxOpen int) Option {
	return func(o *Options) {
		o.MaxOpen = maxOpen
	}
}

func WithMaxIdle(maxIdle int) Option {
	return func(o *Options) {
		o.MaxIdle = maxIdle
	}
}

func WithMaxLifetime(maxLifetime time.Duration) Option {
	return func(o *Options) {
		o.MaxLifetime = maxLifetime
	}
}

func WithPreferSimpleProtocol(preferSimpleProtocol bool) Option {
	return func(o *Options) {
		o.PreferSimpleProtocol = preferSimpleProtocol
	}
}

// WithSkipDefaultTransaction stops gorm wrapping single writes in a transaction.
func WithSkipDefaultTransaction(skipDefaultTransaction bool) Option {
	return func(o *Options) {
		o.SkipDefaultTransaction = skipDefaultTransaction
	}
}

// WithTraceConfig sets where query logging and the slow query threshold are read from.
func WithTraceConfig(traceConfig config.ConfigurationDatabaseTracing) Option {
	return func(o *Options) {
		o.TraceConfig = traceConfig
	}
}
