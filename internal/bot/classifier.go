package bot

import (
	"pagebot/internal/content"
)

// Classifier is a pure function of an inbound event plus the static rule
// table and content catalog. It owns no mutable state and is safe for
// concurrent use.
type Classifier struct {
	catalog   *content.Catalog
	serverURL string
	rules     []rule
}

// NewClassifier builds a classifier over the content catalog. serverURL is
// the public base URL used to resolve relative asset paths.
func NewClassifier(catalog *content.Catalog, serverURL string) *Classifier {
	return &Classifier{
		catalog:   catalog,
		serverURL: serverURL,
		rules:     defaultRules(),
	}
}

// Classify determines what to do with one inbound event. For messages it
// evaluates the rule table in fixed order, first match wins; echo messages
// are dropped with no response.
func (c *Classifier) Classify(ev Event) Dispatch {
	switch ev := ev.(type) {
	case MessageEvent:
		if ev.IsEcho {
			return Dispatch{Kind: DispatchIgnore}
		}
		return Dispatch{Kind: DispatchMessage, Plan: c.messagePlan(ev)}

	case PostbackEvent:
		return Dispatch{Kind: DispatchPostback, Plan: c.postbackPlan(ev.Payload)}

	case AuthEvent:
		return Dispatch{Kind: DispatchAuth, Plan: c.authPlan()}

	case DeliveryEvent:
		return Dispatch{Kind: DispatchDelivery}
	}

	return Dispatch{Kind: DispatchIgnore}
}

// messagePlan picks the response plan for a non-echo message. Attachments
// are special-cased ahead of the rule list: a thumbs-up sticker gets its own
// acknowledgement, anything else gets the generic attachment reply.
func (c *Classifier) messagePlan(ev MessageEvent) *Plan {
	if ev.Text == "" {
		if ev.StickerID == likeStickerID {
			return c.stickerLikePlan()
		}
		return c.attachmentPlan()
	}

	for _, r := range c.rules {
		if r.re.MatchString(ev.Text) {
			return r.build(c)
		}
	}

	return c.unhandledPlan()
}
