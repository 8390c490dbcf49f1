// Package refresher implements the background quote sweep.
//
// The sweep:
//   - Wakes on a fixed interval
//   - Picks the held symbol whose cached quote is oldest or absent
//   - Forces a fetch through the quote cache, replacing the stored row
//
// One symbol per tick keeps the upstream call budget predictable: with N
// held symbols every cached quote is at most N intervals old, which is what
// portfolio reports live off.
package refresher
