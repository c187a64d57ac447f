package tasks

import (
	"context"
	"fmt"
	"time"

	"pagebot/internal/metrics"
)

// newUserReminderTask creates the scheduled task that scans for stale users
// and sends each a one-time reminder.
//
// A user is reminded at most once, enforced by marking reminder_sent_at
// after a successful send. The send and the mark are not atomic: a crash
// between them produces a duplicate reminder on the next scan. That
// at-least-once behavior is deliberate and documented, not a bug.
func newUserReminderTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "user_reminder")

	return func(ctx context.Context) error {
		users, err := deps.Store.FindUsersToRemind(ctx, deps.Config.Reminder.Threshold)
		if err != nil {
			return fmt.Errorf("failed to fetch users to remind: %w", err)
		}

		if len(users) == 0 {
			log.DebugContext(ctx, "No users to remind")
			return nil
		}

		startTime := time.Now()
		failed := 0

		// Per-user failures are isolated: a failed send or mark never
		// aborts the rest of the batch, and an unmarked user is picked
		// up again on the next scan.
		for _, user := range users {
			if err := deps.Reminder.SendReminder(ctx, user.SenderID); err != nil {
				log.ErrorContext(ctx, "Failed to send reminder",
					"sender_id", user.SenderID, "error", err)
				metrics.RemindersTotal.WithLabelValues("send_failed").Inc()
				failed++
				continue
			}

			if err := deps.Store.MarkUserReminded(ctx, user); err != nil {
				log.ErrorContext(ctx, "Failed to mark user reminded",
					"sender_id", user.SenderID, "error", err)
				metrics.RemindersTotal.WithLabelValues("mark_failed").Inc()
				failed++
				continue
			}

			metrics.RemindersTotal.WithLabelValues("sent").Inc()
		}

		log.InfoContext(ctx, "Reminder scan complete",
			"stale_users", len(users),
			"failed", failed,
			"duration", time.Since(startTime))
		return nil
	}
}
