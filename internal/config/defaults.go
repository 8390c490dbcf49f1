package config

import "time"

// Default values for optional configuration fields.
//
// The quote provider's free tier allows roughly 5 requests per minute, which
// is why trades demand a near-real-time quote while reports tolerate
// day-old data: refreshing every held symbol per report would blow the limit.
const (
	DefaultAPIURL               = "https://www.alphavantage.co/query"
	DefaultAPITimeout           = 10 * time.Second
	DefaultAPIRatePerMinute     = 5
	DefaultDBPort               = 5432
	DefaultDBSSLMode            = "prefer"
	DefaultMaxConns             = 10
	DefaultMinConns             = 2
	DefaultStartBalanceDollars  = 10000
	DefaultTradeFreshness       = 60 * time.Second
	DefaultReportFreshness      = 24 * time.Hour
	DefaultRefreshInterval      = 5 * time.Minute
	DefaultHousekeepingInterval = 60 * time.Second
	DefaultIdleWait             = 1 * time.Second
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.URL == "" {
		c.API.URL = DefaultAPIURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.RatePerMinute == 0 {
		c.API.RatePerMinute = DefaultAPIRatePerMinute
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Game defaults
	if c.Game.StartBalanceDollars == 0 {
		c.Game.StartBalanceDollars = DefaultStartBalanceDollars
	}
	if c.Game.TradeFreshness == 0 {
		c.Game.TradeFreshness = DefaultTradeFreshness
	}
	if c.Game.ReportFreshness == 0 {
		c.Game.ReportFreshness = DefaultReportFreshness
	}
	if c.Game.RefreshInterval == 0 {
		c.Game.RefreshInterval = DefaultRefreshInterval
	}
	if c.Game.HousekeepingInterval == 0 {
		c.Game.HousekeepingInterval = DefaultHousekeepingInterval
	}
	if c.Game.IdleWait == 0 {
		c.Game.IdleWait = DefaultIdleWait
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
