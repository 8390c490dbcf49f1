package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.API.URL == "" {
		return errors.New("api.url is required")
	}
	if c.API.RatePerMinute < 1 {
		return errors.New("api.rate_per_minute must be >= 1")
	}

	if err := c.Database.Postgres.validate("database.postgres"); err != nil {
		return err
	}

	if c.Game.StartBalanceDollars < 1 {
		return errors.New("game.start_balance_dollars must be >= 1")
	}
	if c.Game.TradeFreshness <= 0 {
		return errors.New("game.trade_freshness must be positive")
	}
	if c.Game.ReportFreshness < c.Game.TradeFreshness {
		return errors.New("game.report_freshness must be >= game.trade_freshness")
	}
	if c.Game.RefreshInterval <= 0 {
		return errors.New("game.refresh_interval must be positive")
	}
	if c.Game.HousekeepingInterval <= 0 {
		return errors.New("game.housekeeping_interval must be positive")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Port < 1 || db.Port > 65535 {
		return fmt.Errorf("%s.port must be between 1 and 65535, got %d", prefix, db.Port)
	}
	return nil
}
