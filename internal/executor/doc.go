// Package executor implements the serial task executor.
//
// The executor:
//   - Accepts trade and report submissions through a non-blocking enqueue
//   - Processes them one at a time in arrival order
//   - Is the only writer of ledger state
//   - Runs nightly balance snapshots on idle ticks
//
// Serializing every mutation through one loop stands in for database
// transactions: no task ever observes another task's partial writes.
package executor
