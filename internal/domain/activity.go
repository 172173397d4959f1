package domain

// ActivityMap is the calendar-day → completion-count view behind the
// historical density grid. The completion log is the system of record:
// the map must always be reconstructible from it alone, so the
// incrementally maintained copy and RebuildActivity must agree.
type ActivityMap map[string]int

// Record bumps the count for one completion on the given day.
func (m ActivityMap) Record(d Date) {
	m[d.String()]++
}

// Count returns the completions recorded for a day.
func (m ActivityMap) Count(d Date) int {
	return m[d.String()]
}

// RebuildActivity derives the full activity map from log entries.
func RebuildActivity(entries []LogEntry) ActivityMap {
	m := make(ActivityMap, len(entries))
	for _, e := range entries {
		m.Record(e.Day)
	}
	return m
}
