// Package messenger implements the outbound Send API collaborator: the
// payload types the platform accepts and the HTTP client that delivers them.
package messenger

// Sender action values accepted by the Send API.
const (
	ActionTypingOn  = "typing_on"
	ActionTypingOff = "typing_off"
	ActionMarkSeen  = "mark_seen"
)

// Button types usable in button and generic templates.
const (
	ButtonTypeWebURL   = "web_url"
	ButtonTypePostback = "postback"
	ButtonTypePhone    = "phone_number"
)

// Recipient addresses an outbound message.
type Recipient struct {
	ID string `json:"id"`
}

// QuickReply is a suggested-response chip attached to a message.
type QuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title,omitempty"`
	Payload     string `json:"payload,omitempty"`
}

// Button is one typed call-to-action in a template.
type Button struct {
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Payload string `json:"payload,omitempty"`
}

// Element is one card in a generic-template carousel.
type Element struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	ItemURL  string   `json:"item_url,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
	Buttons  []Button `json:"buttons,omitempty"`
}

// AttachmentPayload carries the variant-specific attachment body.
type AttachmentPayload struct {
	URL          string    `json:"url,omitempty"`
	TemplateType string    `json:"template_type,omitempty"`
	Text         string    `json:"text,omitempty"`
	Buttons      []Button  `json:"buttons,omitempty"`
	Elements     []Element `json:"elements,omitempty"`
}

// Attachment is an image or template attached to a message.
type Attachment struct {
	Type    string            `json:"type"`
	Payload AttachmentPayload `json:"payload"`
}

// Message is one outbound message body: text, image, or template, with
// optional quick replies.
type Message struct {
	Text         string       `json:"text,omitempty"`
	Attachment   *Attachment  `json:"attachment,omitempty"`
	QuickReplies []QuickReply `json:"quick_replies,omitempty"`
}

// SendResult is the platform acknowledgement for one delivered message.
type SendResult struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

// Text builds a plain text message.
func Text(text string) Message {
	return Message{Text: text}
}

// TextWithQuickReplies builds a text message carrying quick-reply chips.
func TextWithQuickReplies(text string, replies []QuickReply) Message {
	return Message{Text: text, QuickReplies: replies}
}

// Image builds an image attachment message referencing the given URL.
func Image(url string) Message {
	return Message{
		Attachment: &Attachment{
			Type:    "image",
			Payload: AttachmentPayload{URL: url},
		},
	}
}

// ButtonTemplate builds a button-template message: one text plus typed
// buttons.
func ButtonTemplate(text string, buttons []Button) Message {
	return Message{
		Attachment: &Attachment{
			Type: "template",
			Payload: AttachmentPayload{
				TemplateType: "button",
				Text:         text,
				Buttons:      buttons,
			},
		},
	}
}

// GenericTemplate builds a carousel of cards.
func GenericTemplate(elements []Element) Message {
	return Message{
		Attachment: &Attachment{
			Type: "template",
			Payload: AttachmentPayload{
				TemplateType: "generic",
				Elements:     elements,
			},
		},
	}
}

// TextQuickReply builds a text quick-reply chip.
func TextQuickReply(title, payload string) QuickReply {
	return QuickReply{ContentType: "text", Title: title, Payload: payload}
}
