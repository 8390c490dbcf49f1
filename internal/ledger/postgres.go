package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quotelab/stockplay/internal/model"
)

// PostgresStore implements Store over a pgx connection pool.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given pool. The schema must
// already exist (database.EnsureSchema).
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Balance(ctx context.Context, nick string) (int64, bool, error) {
	var cents int64
	err := s.db.QueryRow(ctx,
		`SELECT cents FROM sp_balances WHERE nick = $1`, nick).Scan(&cents)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("select balance: %w", err)
	}
	return cents, true, nil
}

func (s *PostgresStore) SetBalance(ctx context.Context, nick string, cents int64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO sp_balances (nick, cents) VALUES ($1, $2)
		ON CONFLICT (nick) DO UPDATE SET cents = EXCLUDED.cents
	`, nick, cents)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

func (s *PostgresStore) Holding(ctx context.Context, nick, symbol string) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx,
		`SELECT count FROM sp_holdings WHERE nick = $1 AND symbol = $2`,
		nick, symbol).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("select holding: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) SetHolding(ctx context.Context, nick, symbol string, count int64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO sp_holdings (nick, symbol, count) VALUES ($1, $2, $3)
		ON CONFLICT (nick, symbol) DO UPDATE SET count = EXCLUDED.count
	`, nick, symbol, count)
	if err != nil {
		return fmt.Errorf("upsert holding: %w", err)
	}
	return nil
}

func (s *PostgresStore) HoldingsFor(ctx context.Context, nick string) ([]model.Holding, error) {
	rows, err := s.db.Query(ctx, `
		SELECT nick, symbol, count FROM sp_holdings
		WHERE nick = $1 AND count > 0
		ORDER BY count DESC
	`, nick)
	if err != nil {
		return nil, fmt.Errorf("select holdings: %w", err)
	}
	defer rows.Close()

	var out []model.Holding
	for rows.Next() {
		var h model.Holding
		if err := rows.Scan(&h.Nick, &h.Symbol, &h.Count); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AppendTrade(ctx context.Context, rec model.TradeRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO sp_trades (nick, time, side, symbol, count, price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.Nick, rec.Time, string(rec.Side), rec.Symbol, rec.Count, rec.Price)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

func (s *PostgresStore) TradesDesc(ctx context.Context, nick, symbol string) ([]model.TradeRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT nick, time, side, symbol, count, price FROM sp_trades
		WHERE nick = $1 AND symbol = $2
		ORDER BY time DESC
	`, nick, symbol)
	if err != nil {
		return nil, fmt.Errorf("select trades: %w", err)
	}
	defer rows.Close()

	var out []model.TradeRecord
	for rows.Next() {
		var rec model.TradeRecord
		var side string
		if err := rows.Scan(&rec.Nick, &rec.Time, &side, &rec.Symbol, &rec.Count, &rec.Price); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		rec.Side = model.Side(side)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) QuoteRow(ctx context.Context, symbol string) ([]byte, time.Time, bool, error) {
	var at int64
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT time, data FROM sp_quotes WHERE symbol = $1`, symbol).Scan(&at, &data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("select quote row: %w", err)
	}
	return data, time.UnixMicro(at), true, nil
}

func (s *PostgresStore) PutQuoteRow(ctx context.Context, symbol string, at time.Time, data []byte) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO sp_quotes (symbol, time, data) VALUES ($1, $2, $3)
		ON CONFLICT (symbol) DO UPDATE SET time = EXCLUDED.time, data = EXCLUDED.data
	`, symbol, at.UnixMicro(), data)
	if err != nil {
		return fmt.Errorf("upsert quote row: %w", err)
	}
	return nil
}

// StalestHeldSymbol returns the held symbol whose cached quote is oldest.
// Symbols with no cache row at all sort first.
func (s *PostgresStore) StalestHeldSymbol(ctx context.Context) (string, bool, error) {
	var symbol string
	err := s.db.QueryRow(ctx, `
		SELECT h.symbol
		FROM (SELECT DISTINCT symbol FROM sp_holdings WHERE count > 0) h
		LEFT JOIN sp_quotes q ON q.symbol = h.symbol
		ORDER BY q.time ASC NULLS FIRST
		LIMIT 1
	`).Scan(&symbol)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select stalest held symbol: %w", err)
	}
	return symbol, true, nil
}

func (s *PostgresStore) LatestSnapshot(ctx context.Context, nick string) (model.DailySnapshot, bool, error) {
	var snap model.DailySnapshot
	err := s.db.QueryRow(ctx, `
		SELECT nick, day, cents FROM sp_balance_history
		WHERE nick = $1
		ORDER BY day DESC
		LIMIT 1
	`, nick).Scan(&snap.Nick, &snap.Day, &snap.Cents)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DailySnapshot{}, false, nil
	}
	if err != nil {
		return model.DailySnapshot{}, false, fmt.Errorf("select latest snapshot: %w", err)
	}
	return snap, true, nil
}

// InsertSnapshot records a daily snapshot. The primary key makes a re-run
// within the same day a no-op.
func (s *PostgresStore) InsertSnapshot(ctx context.Context, nick, day string, cents int64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO sp_balance_history (nick, day, cents) VALUES ($1, $2, $3)
		ON CONFLICT (nick, day) DO NOTHING
	`, nick, day, cents)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) AccountsWithoutSnapshot(ctx context.Context, day string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT nick FROM sp_balances
		WHERE nick NOT IN (SELECT nick FROM sp_balance_history WHERE day = $1)
		ORDER BY nick
	`, day)
	if err != nil {
		return nil, fmt.Errorf("select accounts without snapshot: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var nick string
		if err := rows.Scan(&nick); err != nil {
			return nil, fmt.Errorf("scan nick: %w", err)
		}
		out = append(out, nick)
	}
	return out, rows.Err()
}
