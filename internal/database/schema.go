package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quotelab/stockplay/internal/model"
)

// schema creates the fixed table set on first run. Statements are idempotent
// so startup against an existing database is a no-op.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sp_balances (
		nick  varchar(64) PRIMARY KEY,
		cents bigint NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sp_holdings (
		nick   varchar(64) NOT NULL,
		symbol varchar(12) NOT NULL,
		count  bigint NOT NULL,
		PRIMARY KEY (nick, symbol)
	)`,
	`CREATE TABLE IF NOT EXISTS sp_trades (
		nick   varchar(64) NOT NULL,
		time   bigint NOT NULL,
		side   varchar(8) NOT NULL,
		symbol varchar(12) NOT NULL,
		count  bigint NOT NULL,
		price  bigint NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sp_quotes (
		symbol varchar(12) PRIMARY KEY,
		time   bigint NOT NULL,
		data   jsonb NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sp_balance_history (
		nick  varchar(64) NOT NULL,
		day   varchar(10) NOT NULL,
		cents bigint NOT NULL,
		PRIMARY KEY (nick, day)
	)`,
	`CREATE INDEX IF NOT EXISTS sp_trades_nick_symbol_time
		ON sp_trades (nick, symbol, time DESC)`,
}

// EnsureSchema creates the ledger tables and seeds the dust account row.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO sp_balances (nick, cents) VALUES ($1, 0) ON CONFLICT (nick) DO NOTHING`,
		model.DustAccount)
	if err != nil {
		return fmt.Errorf("seed dust account: %w", err)
	}

	return nil
}
