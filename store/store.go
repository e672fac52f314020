// Package store keeps the little state the service owns itself: the admin
// account, the last known questionnaire list and preview submissions.
package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db}
}

// SeedUser creates username, or resets its password when it already exists.
func (s *Store) SeedUser(ctx context.Context, username, password string, roles string) error {
	if username == "" || password == "" {
		return errors.New("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user (username, password_hash, roles) VALUES (?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = excluded.password_hash,
			roles = excluded.roles`,
		username,
		hash,
		roles,
	)
	return errors.Wrap(err, "seeding user")
}

// Roles returns the comma separated roles of username.
func (s *Store) Roles(ctx context.Context, username string) (string, error) {
	var roles string
	err := s.db.
		QueryRowContext(ctx, "SELECT roles FROM user WHERE username = ?", username).
		Scan(&roles)
	return roles, err
}
