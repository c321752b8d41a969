package store

import (
	"fmt"

	"chess-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// MoveStore is the repository for Move rows.
type MoveStore struct {
	db *sqlx.DB
}

func NewMoveStore(db *sqlx.DB) *MoveStore {
	return &MoveStore{db: db}
}

// InsertAll writes every Move of one analysis run in a single transaction,
// since they are always written as one atomic batch ("one commit per
// logical step").
func (s *MoveStore) InsertAll(gameID int64, moves []models.Move) error {
	if len(moves) == 0 {
		return nil
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start move insert transaction: %v", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO moves
			(game_id, half_move, move_number, is_white, san, uci,
			 evaluation_before, evaluation_after, has_evaluation, best_move_uci,
			 classification, centipawn_loss, commentary)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare move insert: %v", err)
	}
	defer stmt.Close()

	for _, m := range moves {
		_, err := stmt.Exec(
			gameID, m.HalfMove, m.MoveNumber, m.IsWhite, m.SAN, m.UCI,
			m.EvaluationBefore, m.EvaluationAfter, m.HasEvaluation, m.BestMoveUCI,
			m.Classification, m.CentipawnLoss, m.Commentary,
		)
		if err != nil {
			return fmt.Errorf("failed to insert move %d for game %d: %v", m.HalfMove, gameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit move insert for game %d: %v", gameID, err)
	}
	return nil
}

func (s *MoveStore) ForGame(gameID int64) ([]models.Move, error) {
	var moves []models.Move
	err := s.db.Select(&moves, `SELECT * FROM moves WHERE game_id = $1 ORDER BY half_move`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load moves for game %d: %v", gameID, err)
	}
	return moves, nil
}
