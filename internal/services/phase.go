package services

import "chess-backend/internal/models"

// PhaseOf is the single phase-boundary definition used everywhere a
// game phase is needed. Keep it in one place; a second, divergent rule
// elsewhere is how phase stats drift apart.
func PhaseOf(halfMove int) models.GamePhase {
	switch {
	case halfMove < 20:
		return models.Opening
	case halfMove < 40:
		return models.Middlegame
	default:
		return models.Endgame
	}
}
