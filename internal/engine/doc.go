// Package engine validates and commits trades: pricing against a fresh
// quote, funds/holdings checks, cent rounding with dust collection, and the
// append-only trade log entry.
package engine
