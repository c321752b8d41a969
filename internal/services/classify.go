package services

// Classify applies a hybrid rule table: a centipawn-loss
// threshold combined with positional before/after context, evaluated in a
// strict first-match-wins order. cpl, evalBefore and evalAfter are all
// centipawns from the moving player's perspective; evalBefore/evalAfter
// are nil when unknown, in which case the numeric-only branches still
// apply but the positional branches (2, 4, and the inner test of 6) are
// skipped.
func Classify(cpl int, evalBefore, evalAfter *int) string {
	absCPL := abs(cpl)

	// 1. cpl threshold.
	switch {
	case absCPL <= 10:
		return "best"
	case absCPL <= 25:
		return "excellent"
	case absCPL <= 50:
		return "good"
	}

	haveEvals := evalBefore != nil && evalAfter != nil
	var b, a float64
	if haveEvals {
		b = float64(*evalBefore) / 100.0
		a = float64(*evalAfter) / 100.0
	}

	// 2. positional blunder.
	if haveEvals {
		switch {
		case b > 1.5 && a < -1.5:
			return "blunder"
		case absF(b) < 0.5 && a < -2.0:
			return "blunder"
		case b >= 0.5 && b <= 1.5 && a < -2.0:
			return "blunder"
		}
	}

	// 3. large cpl blunder.
	if absCPL >= 300 {
		return "blunder"
	}

	// 4. positional mistake.
	if haveEvals {
		switch {
		case b > 2.0 && a >= -0.5 && a <= 0.5:
			return "mistake"
		case b > 2.5 && a > 0.5 && a < 1.5:
			return "mistake"
		}
	}

	// 5. mid-range cpl mistake.
	if absCPL >= 150 && absCPL < 300 {
		return "mistake"
	}

	// 6. low-mid cpl, positional tiebreak.
	if absCPL > 50 && absCPL < 150 {
		if haveEvals {
			if a > -1.0 {
				return "inaccuracy"
			}
			return "mistake"
		}
	}

	// 7. default.
	return "good"
}

func absF(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
