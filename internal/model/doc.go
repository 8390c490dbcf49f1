// Package model defines shared data types used across the stockplay ledger.
//
// Conventions:
//   - Money: int64 cents in the ledger tables, shopspring decimal for quote
//     prices and any intermediate arithmetic
//   - Timestamps: int64 microseconds since Unix epoch
//   - Identity: user handle ("nick") as a case-sensitive string
package model
