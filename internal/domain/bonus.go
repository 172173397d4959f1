package domain

import "math"

// ─── Bonus Multipliers ──────────────────────────────────────────────────────
// Optional award scaling. Disabled by default: the base contract awards a
// task's frozen base XP unmodified. When enabled, a long streak and a
// "full day" (required-daily completions meeting the daily target) scale
// the day's awards. Multipliers are applied BEFORE the per-entry XP is
// frozen into the log, so later config changes never rewrite history.

// Bonus holds the award-scaling policy.
type Bonus struct {
	Enabled      bool
	DailyTarget  int     // required-daily completions that make a full day
	FullDayBonus float64 // e.g. 0.10 for +10%
	StreakRate   float64 // per streak day, e.g. 0.05
	StreakCap    float64 // maximum streak bonus, e.g. 1.0 for +100%
}

// DefaultBonus returns the stock policy, switched off.
func DefaultBonus() Bonus {
	return Bonus{
		Enabled:      false,
		DailyTarget:  2,
		FullDayBonus: 0.10,
		StreakRate:   0.05,
		StreakCap:    1.0,
	}
}

// Multiplier returns the combined scaling factor for a day's awards.
func (b Bonus) Multiplier(streakDays int, fullDay bool) float64 {
	if !b.Enabled {
		return 1.0
	}
	if streakDays < 0 {
		streakDays = 0
	}
	streakBonus := math.Min(b.StreakRate*float64(streakDays), b.StreakCap)
	mult := 1.0 + streakBonus
	if fullDay {
		mult *= 1.0 + b.FullDayBonus
	}
	return mult
}

// Apply scales a base XP value, rounding to the nearest integer.
func (b Bonus) Apply(baseXP, streakDays int, fullDay bool) int {
	return int(math.Round(float64(baseXP) * b.Multiplier(streakDays, fullDay)))
}
