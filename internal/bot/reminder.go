package bot

import (
	"context"

	"pagebot/internal/messenger"
)

const reminderText = "Hey, it's been a while! If you still have questions about my work, projects, or how to reach me, just say \"help\" and I'll take it from there."

// ReminderNotifier adapts the responder for the scheduled reminder task.
type ReminderNotifier struct {
	responder *Responder
}

// NewReminderNotifier wraps the responder as a reminder sender.
func NewReminderNotifier(responder *Responder) *ReminderNotifier {
	return &ReminderNotifier{responder: responder}
}

// SendReminder delivers the one-time inactivity reminder to the user.
func (n *ReminderNotifier) SendReminder(ctx context.Context, senderID string) error {
	return n.responder.Execute(ctx, reminderPlan(), senderID)
}

func reminderPlan() *Plan {
	return &Plan{Name: "reminder", Steps: []Step{
		{Message: messenger.Text(reminderText)},
	}}
}
