// Package credential persists tenant API tokens keyed by Telegram user id.
//
// Absence of a row means the user is not authenticated. The account id is
// filled in lazily after the first successful configuration-items lookup and
// wiped on re-login, since a fresh token may belong to a different account.
package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store reads and writes credentials in postgres.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps the given database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type row struct {
	UserID    int64          `db:"user_id"`
	AuthToken string         `db:"auth_token"`
	AccountID sql.NullString `db:"account_id"`
}

// Save upserts the token for a user. Any previously resolved account id is
// reset because the new token may map to a different personal account.
func (s *Store) Save(ctx context.Context, userID int64, token string) error {
	if token == "" {
		return fmt.Errorf("credential: empty token for user %d", userID)
	}
	const q = `
		INSERT INTO credentials (user_id, auth_token, account_id)
		VALUES ($1, $2, NULL)
		ON CONFLICT (user_id)
		DO UPDATE SET auth_token = EXCLUDED.auth_token, account_id = NULL`
	if _, err := s.db.ExecContext(ctx, q, userID, token); err != nil {
		return fmt.Errorf("credential: save: %w", err)
	}
	return nil
}

// Token returns the stored token for a user, reporting whether one exists.
func (s *Store) Token(ctx context.Context, userID int64) (string, bool, error) {
	var r row
	err := s.db.GetContext(ctx, &r, `SELECT user_id, auth_token, account_id FROM credentials WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("credential: token lookup: %w", err)
	}
	return r.AuthToken, true, nil
}

// AccountID returns the resolved personal account id, if known.
func (s *Store) AccountID(ctx context.Context, userID int64) (string, bool, error) {
	var r row
	err := s.db.GetContext(ctx, &r, `SELECT user_id, auth_token, account_id FROM credentials WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("credential: account lookup: %w", err)
	}
	if !r.AccountID.Valid || r.AccountID.String == "" {
		return "", false, nil
	}
	return r.AccountID.String, true, nil
}

// SetAccountID stores the resolved personal account id for a user.
func (s *Store) SetAccountID(ctx context.Context, userID int64, accountID string) error {
	const q = `UPDATE credentials SET account_id = $1 WHERE user_id = $2`
	if _, err := s.db.ExecContext(ctx, q, accountID, userID); err != nil {
		return fmt.Errorf("credential: set account id: %w", err)
	}
	return nil
}

// Delete removes the credential, logging the user out.
func (s *Store) Delete(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("credential: delete: %w", err)
	}
	return nil
}
