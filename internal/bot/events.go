// Package bot implements the core of the responder: inbound event decoding,
// message classification, response-plan sequencing, and the scheduled
// reminder scan's plan execution.
package bot

import "errors"

// ErrUnknownEvent marks a messaging event that matches none of the known
// shapes. Callers log it as a warning and move on; it is never fatal.
var ErrUnknownEvent = errors.New("unknown messaging event shape")

// Envelope is the webhook request body: one page object carrying batched
// entries, each with its messaging events.
type Envelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one page entry inside a webhook envelope.
type Entry struct {
	ID        string     `json:"id"`
	Time      int64      `json:"time"`
	Messaging []RawEvent `json:"messaging"`
}

// Party identifies a sender or recipient.
type Party struct {
	ID string `json:"id"`
}

// RawEvent is one undifferentiated messaging event; exactly one of the
// variant fields is expected to be set.
type RawEvent struct {
	Sender    *Party       `json:"sender"`
	Recipient *Party       `json:"recipient"`
	Timestamp int64        `json:"timestamp"`
	Message   *RawMessage  `json:"message,omitempty"`
	Postback  *RawPostback `json:"postback,omitempty"`
	Optin     *RawOptin    `json:"optin,omitempty"`
	Delivery  *RawDelivery `json:"delivery,omitempty"`
}

// RawMessage is the wire shape of a message event.
type RawMessage struct {
	MID         string          `json:"mid"`
	Text        string          `json:"text"`
	IsEcho      bool            `json:"is_echo"`
	StickerID   int64           `json:"sticker_id"`
	Attachments []RawAttachment `json:"attachments"`
}

// RawAttachment is one attachment on a message event.
type RawAttachment struct {
	Type    string `json:"type"`
	Payload struct {
		URL       string `json:"url"`
		StickerID int64  `json:"sticker_id"`
	} `json:"payload"`
}

// RawPostback is the wire shape of a postback event.
type RawPostback struct {
	Payload string `json:"payload"`
}

// RawOptin is the wire shape of an authentication callback.
type RawOptin struct {
	Ref string `json:"ref"`
}

// RawDelivery is the wire shape of a delivery receipt.
type RawDelivery struct {
	MIDs      []string `json:"mids"`
	Watermark int64    `json:"watermark"`
}

// Event is the tagged union of inbound event kinds.
type Event interface {
	// Kind returns a stable label for logging and metrics.
	Kind() string
}

// MessageEvent is an inbound user message: either text or an attachment.
type MessageEvent struct {
	SenderID      string
	RecipientID   string
	Timestamp     int64
	Text          string
	HasAttachment bool
	IsEcho        bool
	StickerID     int64
}

// Kind implements Event.
func (MessageEvent) Kind() string { return "message" }

// PostbackEvent is a button press carrying a developer-defined payload.
type PostbackEvent struct {
	SenderID    string
	RecipientID string
	Timestamp   int64
	Payload     string
}

// Kind implements Event.
func (PostbackEvent) Kind() string { return "postback" }

// AuthEvent is an authentication (opt-in) callback. Ref carries the
// pass-through parameter set by the entry-point plugin.
type AuthEvent struct {
	SenderID    string
	RecipientID string
	Timestamp   int64
	Ref         string
}

// Kind implements Event.
func (AuthEvent) Kind() string { return "auth" }

// DeliveryEvent confirms delivery of earlier outbound messages.
type DeliveryEvent struct {
	SenderID   string
	MessageIDs []string
	Watermark  int64
}

// Kind implements Event.
func (DeliveryEvent) Kind() string { return "delivery" }

// ParseEvent converts one raw messaging event into its typed variant.
// Returns ErrUnknownEvent when no known variant field is present.
func ParseEvent(raw RawEvent) (Event, error) {
	senderID := ""
	if raw.Sender != nil {
		senderID = raw.Sender.ID
	}
	recipientID := ""
	if raw.Recipient != nil {
		recipientID = raw.Recipient.ID
	}

	switch {
	case raw.Optin != nil:
		return AuthEvent{
			SenderID:    senderID,
			RecipientID: recipientID,
			Timestamp:   raw.Timestamp,
			Ref:         raw.Optin.Ref,
		}, nil

	case raw.Message != nil:
		msg := raw.Message
		stickerID := msg.StickerID
		if stickerID == 0 {
			for _, att := range msg.Attachments {
				if att.Payload.StickerID != 0 {
					stickerID = att.Payload.StickerID
					break
				}
			}
		}
		return MessageEvent{
			SenderID:      senderID,
			RecipientID:   recipientID,
			Timestamp:     raw.Timestamp,
			Text:          msg.Text,
			HasAttachment: len(msg.Attachments) > 0,
			IsEcho:        msg.IsEcho,
			StickerID:     stickerID,
		}, nil

	case raw.Delivery != nil:
		return DeliveryEvent{
			SenderID:   senderID,
			MessageIDs: raw.Delivery.MIDs,
			Watermark:  raw.Delivery.Watermark,
		}, nil

	case raw.Postback != nil:
		return PostbackEvent{
			SenderID:    senderID,
			RecipientID: recipientID,
			Timestamp:   raw.Timestamp,
			Payload:     raw.Postback.Payload,
		}, nil
	}

	return nil, ErrUnknownEvent
}
