// Package tasks implements the bot's scheduled background tasks: task
// definitions, dependencies, and registration.
package tasks

import (
	"context"
	"log/slog"

	"pagebot/internal/config"
	"pagebot/internal/database"
)

// ReminderSender delivers the one-time inactivity reminder to a user. The
// bot's plan executor implements this.
type ReminderSender interface {
	SendReminder(ctx context.Context, senderID string) error
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Reminder ReminderSender
	Config   *config.Config
}
