package domain

import "math"

// ─── Leveling Engine ────────────────────────────────────────────────────────
// The threshold curve lives here and ONLY here. The UI variants this engine
// replaced each carried their own copy of the formula; the drift between
// them is exactly why it is fixed in one place now.

// levelCurveCoef and levelCurveExp define the progression curve
// round(100 * (level+1)^1.5). Any replacement curve must keep thresholds
// strictly increasing in level.
const (
	levelCurveCoef = 100.0
	levelCurveExp  = 1.5
)

// NextLevelThreshold returns the XP required to advance past the given level.
// Always > 0 for level ≥ 1.
func NextLevelThreshold(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Round(levelCurveCoef * math.Pow(float64(level+1), levelCurveExp)))
}

// Progress is the outcome of folding an XP award into level state.
type Progress struct {
	Level        int
	XP           int // XP into the current level, in [0, Threshold)
	Threshold    int // XP required for the next level, derived
	LevelsGained int
}

// ApplyXP folds an award into (level, xp). A single large award can span
// multiple thresholds, so the overflow is re-checked in a loop until the
// invariant 0 ≤ xp < threshold holds. Level never decreases: a non-positive
// award is treated as zero.
func ApplyXP(level, xp, award int) Progress {
	if level < 1 {
		level = 1
	}
	if xp < 0 {
		xp = 0
	}
	if award > 0 {
		xp += award
	}

	gained := 0
	threshold := NextLevelThreshold(level)
	for xp >= threshold {
		xp -= threshold
		level++
		gained++
		threshold = NextLevelThreshold(level)
	}

	return Progress{Level: level, XP: xp, Threshold: threshold, LevelsGained: gained}
}
