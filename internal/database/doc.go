// Package database provides connection pool management and schema bootstrap
// for the PostgreSQL ledger store.
//
// Tables:
//   - sp_balances: cash balances per nick (including the dust account)
//   - sp_holdings: share counts per (nick, symbol)
//   - sp_trades: append-only trade log
//   - sp_quotes: quote cache rows, one per symbol
//   - sp_balance_history: daily account-value snapshots
//
// No transactions are used; the serial task executor is the sole writer of
// ledger rows, which is what makes trade commits effectively atomic.
package database
