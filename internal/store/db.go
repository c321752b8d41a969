// Package store is the persistence layer: sqlx repositories over Postgres
// plus embedded schema migrations.
package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Open connects to Postgres and verifies the connection with a ping,
// matching the plain constructor-returns-error idiom the rest of this
// codebase uses (no wrapped connection pool abstraction).
func Open(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	logrus.Info("connected to database")
	return db, nil
}
