package store

import (
	"fmt"
	"time"

	"chess-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// UserStore is the repository for User rows.
type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Get(userID int64) (*models.User, error) {
	var u models.User
	err := s.db.Get(&u, `SELECT * FROM users WHERE id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %v", userID, err)
	}
	return &u, nil
}

func (s *UserStore) ProviderHandle(userID int64, provider string) (string, error) {
	u, err := s.Get(userID)
	if err != nil {
		return "", err
	}
	switch provider {
	case "chesscom":
		if u.ProviderAHandle != nil {
			return *u.ProviderAHandle, nil
		}
	case "lichess":
		if u.ProviderBHandle != nil {
			return *u.ProviderBHandle, nil
		}
	}
	return "", fmt.Errorf("no %s handle on file for user %d", provider, userID)
}

// UpdateAfterImport records the import's effect on the owning user: the
// last-import timestamp, and the current rating picked up from the newest
// rated game on record for the user. A non-positive newestRating leaves
// the stored rating unchanged.
func (s *UserStore) UpdateAfterImport(userID int64, newestRating int) error {
	_, err := s.db.Exec(
		`UPDATE users SET last_import_at = $2, current_rating = CASE WHEN $3 > 0 THEN $3 ELSE current_rating END WHERE id = $1`,
		userID, time.Now(), newestRating,
	)
	if err != nil {
		return fmt.Errorf("failed to update user %d after import: %v", userID, err)
	}
	return nil
}
