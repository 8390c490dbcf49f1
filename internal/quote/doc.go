// Package quote fetches stock quotes from the upstream provider and caches
// them with per-read freshness bounds.
//
// The provider (Alpha Vantage GLOBAL_QUOTE) allows only a handful of requests
// per minute, so the client rate-limits itself and the cache is the front
// door for every read.
package quote
