package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"pagebot/internal/messenger"
)

// Responder executes response plans. Steps run strictly sequentially, never
// concurrently: the ordering and the pauses between sends are part of the
// user-visible experience. Waits go through the injected clock, so they are
// cooperative (only this goroutine sleeps) and fully controllable in tests.
type Responder struct {
	client messenger.Client
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewResponder creates a plan executor over the Send API client.
func NewResponder(client messenger.Client, clock clockwork.Clock, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Responder{
		client: client,
		clock:  clock,
		logger: logger.With("component", "responder"),
	}
}

// Execute runs the plan against the recipient. On a step's send failure the
// remaining steps are abandoned; if the plan defines a fallback it is
// executed instead (a fallback's own failure is only reported, never chained
// further).
func (r *Responder) Execute(ctx context.Context, plan *Plan, recipientID string) error {
	if plan == nil || len(plan.Steps) == 0 {
		return nil
	}

	err := r.run(ctx, plan, recipientID)
	if err == nil {
		return nil
	}

	if plan.Fallback != nil {
		r.logger.WarnContext(ctx, "Plan failed, executing fallback",
			"rule", plan.Name, "fallback", plan.Fallback.Name,
			"recipient_id", recipientID, "error", err)
		if fbErr := r.run(ctx, plan.Fallback, recipientID); fbErr != nil {
			return fmt.Errorf("fallback %s: %w", plan.Fallback.Name, fbErr)
		}
		return nil
	}

	return err
}

func (r *Responder) run(ctx context.Context, plan *Plan, recipientID string) error {
	for i, step := range plan.Steps {
		if err := r.client.SenderAction(ctx, recipientID, messenger.ActionTypingOn); err != nil {
			// Typing is cosmetic, a failed indicator never aborts the plan.
			r.logger.DebugContext(ctx, "Typing indicator failed",
				"rule", plan.Name, "recipient_id", recipientID, "error", err)
		}

		if step.Delay > 0 {
			r.clock.Sleep(step.Delay)
		}

		if _, err := r.client.Send(ctx, recipientID, step.Message); err != nil {
			return fmt.Errorf("plan %s step %d: %w", plan.Name, i+1, err)
		}
	}
	return nil
}
