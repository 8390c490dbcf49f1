package executor

import (
	"context"
	"time"
)

// maybeHousekeep runs the snapshot pass when the housekeeping interval has
// elapsed. Called from the run loop on idle ticks only, so snapshots never
// interleave with task processing.
func (e *Executor) maybeHousekeep() {
	if e.now().Sub(e.lastHousekeeping) < e.cfg.HousekeepingInterval {
		return
	}
	e.lastHousekeeping = e.now()

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.TaskTimeout)
	defer cancel()

	e.snapshotBalances(ctx)
}

// snapshotBalances records a daily total-value snapshot for every account
// that does not have one yet for the current day. The (nick, day) key makes
// re-runs within a day no-ops.
func (e *Executor) snapshotBalances(ctx context.Context) {
	day := e.day()

	nicks, err := e.snaps.AccountsWithoutSnapshot(ctx, day)
	if err != nil {
		e.logger.Error("snapshot candidate lookup failed", "error", err)
		return
	}

	for _, nick := range nicks {
		rep, err := e.reports.Build(ctx, nick)
		if err != nil {
			e.logger.Error("snapshot report failed", "nick", nick, "error", err)
			continue
		}
		cents := rep.Total().Shift(2).IntPart()
		if err := e.snaps.InsertSnapshot(ctx, nick, day, cents); err != nil {
			e.logger.Error("snapshot insert failed", "nick", nick, "error", err)
			continue
		}
		e.logger.Info("daily balance recorded", "nick", nick, "day", day, "cents", cents)
	}
}

// day returns the current day string, shifted by the configured midnight
// offset so operators can pin the boundary to a market timezone.
func (e *Executor) day() string {
	return e.now().Add(e.cfg.MidnightOffset).Format(time.DateOnly)
}
