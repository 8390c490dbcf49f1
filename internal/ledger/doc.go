// Package ledger provides data access for the trading-game tables: cash
// balances, share holdings, the append-only trade log, quote cache rows and
// daily balance snapshots.
//
// Two implementations exist: PostgresStore (pgx) for production and
// MemoryStore for tests. Neither enforces game rules; all invariants are the
// responsibility of the engine, which is the only writer via the executor.
package ledger
