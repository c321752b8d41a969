package services

import (
	"testing"

	"chess-backend/internal/models"
)

func TestPhaseOf(t *testing.T) {
	cases := []struct {
		halfMove int
		want     models.GamePhase
	}{
		{0, models.Opening},
		{19, models.Opening},
		{20, models.Middlegame},
		{39, models.Middlegame},
		{40, models.Endgame},
		{120, models.Endgame},
	}

	for _, tc := range cases {
		if got := PhaseOf(tc.halfMove); got != tc.want {
			t.Errorf("PhaseOf(%d) = %s, want %s", tc.halfMove, got, tc.want)
		}
	}
}
