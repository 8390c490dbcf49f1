package config

import "time"

// Config is the root configuration for a stockplay instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Game     GameConfig     `yaml:"game"`
}

// InstanceConfig identifies this instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds upstream quote provider settings.
type APIConfig struct {
	URL           string        `yaml:"url"`
	Key           string        `yaml:"key"`
	Timeout       time.Duration `yaml:"timeout"`
	RatePerMinute int           `yaml:"rate_per_minute"` // Provider rate limit (free tier: 5/min)
}

// DatabaseConfig holds the ledger database connection.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// GameConfig holds trading-game behavior settings.
type GameConfig struct {
	StartBalanceDollars  int64         `yaml:"start_balance_dollars"` // Granted on account bootstrap
	TradeFreshness       time.Duration `yaml:"trade_freshness"`       // Max quote age for trades (tight)
	ReportFreshness      time.Duration `yaml:"report_freshness"`      // Max quote age for reports (loose)
	RefreshInterval      time.Duration `yaml:"refresh_interval"`      // Background quote sweep cadence
	HousekeepingInterval time.Duration `yaml:"housekeeping_interval"` // Nightly-snapshot sweep cadence
	MidnightOffset       time.Duration `yaml:"midnight_offset"`       // Day-boundary offset from local midnight
	IdleWait             time.Duration `yaml:"idle_wait"`             // Executor dequeue timeout
}
