package bot

import (
	"context"
	"log/slog"

	"pagebot/internal/database"
	"pagebot/internal/metrics"
)

// Processor handles one inbound event to completion: user bookkeeping,
// classification, and plan execution. Each event is independent; processors
// are safe to invoke concurrently from multiple goroutines.
type Processor struct {
	logger     *slog.Logger
	store      database.Store
	classifier *Classifier
	responder  *Responder
}

// NewProcessor wires the classifier and responder behind the per-event entry
// point used by the webhook server.
func NewProcessor(logger *slog.Logger, store database.Store, classifier *Classifier, responder *Responder) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:     logger.With("component", "processor"),
		store:      store,
		classifier: classifier,
		responder:  responder,
	}
}

// HandleEvent processes one typed inbound event. No failure here is fatal:
// store and send errors are logged and isolated to this event.
func (p *Processor) HandleEvent(ctx context.Context, ev Event) {
	metrics.EventsTotal.WithLabelValues(ev.Kind()).Inc()

	if msg, ok := ev.(MessageEvent); ok {
		// Every inbound message, echo or not, registers the sender.
		if _, err := p.store.FindOrCreateUser(ctx, msg.SenderID); err != nil {
			p.logger.ErrorContext(ctx, "Failed to find or create user",
				"sender_id", msg.SenderID, "error", err)
		}
	}

	d := p.classifier.Classify(ev)

	switch d.Kind {
	case DispatchIgnore:
		p.logger.DebugContext(ctx, "Ignoring event", "type", ev.Kind())
		return

	case DispatchDelivery:
		del := ev.(DeliveryEvent)
		for _, mid := range del.MessageIDs {
			p.logger.InfoContext(ctx, "Delivery confirmed", "message_id", mid)
		}
		p.logger.InfoContext(ctx, "All messages delivered up to watermark", "watermark", del.Watermark)
		return
	}

	if msg, ok := ev.(MessageEvent); ok && d.Plan.Name == RuleUnhandled {
		p.logger.WarnContext(ctx, "Unhandled message text",
			"sender_id", msg.SenderID, "text", msg.Text)
	}

	metrics.PlansTotal.WithLabelValues(d.Plan.Name).Inc()

	recipientID := recipientOf(ev)
	if recipientID == "" {
		p.logger.WarnContext(ctx, "Event has no sender to respond to", "type", ev.Kind())
		return
	}

	if err := p.responder.Execute(ctx, d.Plan, recipientID); err != nil {
		p.logger.ErrorContext(ctx, "Failed to execute response plan",
			"rule", d.Plan.Name, "recipient_id", recipientID, "error", err)
	}
}

// recipientOf returns the user the response goes back to: the event's
// sender.
func recipientOf(ev Event) string {
	switch ev := ev.(type) {
	case MessageEvent:
		return ev.SenderID
	case PostbackEvent:
		return ev.SenderID
	case AuthEvent:
		return ev.SenderID
	}
	return ""
}
