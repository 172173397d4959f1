package domain

// ─── Streak Rule ────────────────────────────────────────────────────────────

// StreakUpdate is the outcome of applying the continuity rule for one
// processed day.
type StreakUpdate struct {
	Days   int
	Misses int  // consecutive days without a required-daily completion
	NoOp   bool // same day reprocessed; nothing changed
}

// AdvanceStreak applies the streak continuity rule for processing day d.
// lastDay is the previously processed day (zero before first processing);
// requiredDone reports whether at least one required-daily task was
// completed on d. The rule:
//
//   - first ever day: streak 1 if requiredDone, else 0
//   - d == lastDay + 1 and requiredDone: streak + 1
//   - d == lastDay + 1 and !requiredDone: reset to 0
//   - d == lastDay: idempotent no-op, never double-counts or double-resets
//   - any other gap (≥ 2 unprocessed days): reset to 0; continuity is
//     broken even when a required-daily task was completed on d
//
// Callers must reject d < lastDay before invoking this.
func AdvanceStreak(streak, misses int, lastDay Date, d Date, requiredDone bool) StreakUpdate {
	if lastDay.IsZero() {
		if requiredDone {
			return StreakUpdate{Days: 1}
		}
		return StreakUpdate{Days: 0, Misses: misses + 1}
	}

	switch gap := d.DaysSince(lastDay); gap {
	case 0:
		return StreakUpdate{Days: streak, Misses: misses, NoOp: true}
	case 1:
		if requiredDone {
			return StreakUpdate{Days: streak + 1}
		}
		return StreakUpdate{Days: 0, Misses: misses + 1}
	}

	// Gap of two or more unprocessed days.
	if requiredDone {
		return StreakUpdate{Days: 0}
	}
	return StreakUpdate{Days: 0, Misses: misses + 1}
}
