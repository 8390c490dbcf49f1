// Package report assembles portfolio snapshots: cash, per-holding valuations
// with reconstructed cost basis, and 24-hour gain against the latest daily
// snapshot. It also provides the display formatting shared by reply text.
package report
