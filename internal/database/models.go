package database

import (
	"database/sql"
	"time"
)

// User represents one person who has messaged the page. A row is created on
// the first inbound message from a sender and is never deleted.
type User struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	SenderID string `db:"sender_id"`

	// ReminderSentAt is set exactly once, by the reminder scan, after the
	// one-time inactivity reminder has been delivered.
	ReminderSentAt sql.NullTime `db:"reminder_sent_at"`
}
