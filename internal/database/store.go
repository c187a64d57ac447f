package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for user persistence. Methods accept a
// context.Context for cancellation and timeouts, and each operation is
// atomic at this boundary.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// FindOrCreateUser returns the user row for senderID, creating it if
	// it doesn't exist. The operation is idempotent.
	FindOrCreateUser(ctx context.Context, senderID string) (*User, error)

	// FindUsersToRemind retrieves all users who have not been reminded yet
	// and whose account is older than the given duration.
	FindUsersToRemind(ctx context.Context, olderThan time.Duration) ([]*User, error)

	// MarkUserReminded records that the reminder was delivered to the user.
	// A user already marked is left untouched.
	MarkUserReminded(ctx context.Context, user *User) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// FindOrCreateUser inserts the sender row if absent and returns it. The
// insert and the read run in one transaction so concurrent calls for the
// same sender resolve to a single row.
func (s *sqlxStore) FindOrCreateUser(ctx context.Context, senderID string) (*User, error) {
	if senderID == "" {
		return nil, fmt.Errorf("sender_id cannot be empty")
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for find-or-create",
			"sender_id", senderID, "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	now := time.Now().UTC()
	insert := `
        INSERT INTO users (sender_id, created_at, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT (sender_id) DO NOTHING;
    `
	if _, err := tx.ExecContext(ctx, insert, senderID, now, now); err != nil {
		s.logger.ErrorContext(ctx, "Error inserting user", "sender_id", senderID, "error", err)
		return nil, fmt.Errorf("failed to insert user %s: %w", senderID, err)
	}

	var user User
	query := `
        SELECT id, created_at, updated_at, sender_id, reminder_sent_at
        FROM users
        WHERE sender_id = ?;
    `
	if err := tx.GetContext(ctx, &user, query, senderID); err != nil {
		s.logger.ErrorContext(ctx, "Error reading user after insert", "sender_id", senderID, "error", err)
		return nil, fmt.Errorf("failed to read user %s: %w", senderID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "sender_id", senderID, "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "User found or created", "sender_id", senderID, "user_id", user.ID)
	return &user, nil
}

// FindUsersToRemind returns users with no reminder recorded whose account
// age exceeds olderThan, oldest first.
func (s *sqlxStore) FindUsersToRemind(ctx context.Context, olderThan time.Duration) ([]*User, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	cutoff := time.Now().UTC().Add(-olderThan)

	var users []*User
	query := `
        SELECT id, created_at, updated_at, sender_id, reminder_sent_at
        FROM users
        WHERE reminder_sent_at IS NULL AND created_at < ?
        ORDER BY created_at ASC;
    `

	err := s.db.SelectContext(ctx, &users, query, cutoff)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching stale users", "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error fetching stale users", "cutoff", cutoff, "error", err)
		return nil, fmt.Errorf("failed to fetch users to remind: %w", err)
	}

	s.logger.DebugContext(ctx, "Fetched users to remind", "count", len(users), "cutoff", cutoff)
	return users, nil
}

// MarkUserReminded sets reminder_sent_at for the user. The guard on
// reminder_sent_at IS NULL keeps the mark at most once per user even if the
// scan calls this twice.
func (s *sqlxStore) MarkUserReminded(ctx context.Context, user *User) error {
	if user == nil {
		return fmt.Errorf("cannot mark nil user")
	}

	now := time.Now().UTC()
	query := `
        UPDATE users
        SET reminder_sent_at = ?, updated_at = ?
        WHERE id = ? AND reminder_sent_at IS NULL;
    `

	result, err := s.db.ExecContext(ctx, query, now, now, user.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error marking user reminded",
			"sender_id", user.SenderID, "user_id", user.ID, "error", err)
		return fmt.Errorf("failed to mark user %s reminded: %w", user.SenderID, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		s.logger.DebugContext(ctx, "User already marked reminded", "sender_id", user.SenderID)
	}

	user.ReminderSentAt = sql.NullTime{Time: now, Valid: true}
	user.UpdatedAt = now

	s.logger.DebugContext(ctx, "User marked reminded", "sender_id", user.SenderID, "user_id", user.ID)
	return nil
}
