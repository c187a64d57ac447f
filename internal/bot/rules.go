package bot

import (
	"fmt"
	"regexp"
	"time"

	"pagebot/internal/content"
	"pagebot/internal/messenger"
)

// likeStickerID is the platform's thumbs-up sticker.
const likeStickerID = 369239263222822

// RuleUnhandled names the default plan used when no rule matches; unmatched
// messages are logged under this label for later triage.
const RuleUnhandled = "unhandled"

// Inter-step pauses. Carousels get a longer pause so the typing indicator
// reads as composing something substantial.
const (
	delayShort  = 800 * time.Millisecond
	delayMedium = 1500 * time.Millisecond
	delayLong   = 2500 * time.Millisecond
)

const helpText = `Need some help, huh? This bot isn't super smart (it's just regex TBH), but you can try sending messages like:
* What's your contact info?
* Have you done any open source?
* Can I see a list of work you've done?
* Have any cool projects worth checking out?
* What technologies have you used?`

const unhandledText = "I didn't catch that. I only know a handful of keywords, so try one of these or say \"help\"."

const apologyText = "Hmm, something went wrong sending my contact details. Here's the short version instead:"

// rule pairs a compiled pattern with its plan builder. Rules are evaluated
// in slice order, first match wins; matching is case-insensitive and the
// pattern may match anywhere in the text.
type rule struct {
	name  string
	re    *regexp.Regexp
	build func(c *Classifier) *Plan
}

// defaultRules returns the rule table in evaluation order. The projects rule
// sits ahead of work so that text mentioning both resolves to the combined
// carousel.
func defaultRules() []rule {
	return []rule{
		{
			name: "gif",
			re:   regexp.MustCompile(`(?i)gif`),
			build: func(c *Classifier) *Plan {
				return &Plan{Name: "gif", Steps: []Step{
					{Message: messenger.Image(c.assetURL("/assets/robot.gif"))},
				}}
			},
		},
		{
			name: "contact",
			re:   regexp.MustCompile(`(?i)contact|reach`),
			build: func(c *Classifier) *Plan {
				return &Plan{
					Name: "contact",
					Steps: []Step{
						{Message: messenger.Text(c.emailText()), Delay: delayShort},
						{Message: c.contactCard(), Delay: delayMedium},
						{Message: c.webPresenceCard(), Delay: delayMedium},
					},
					Fallback: &Plan{
						Name: "contact_fallback",
						Steps: []Step{
							{Message: messenger.Text(apologyText)},
							{Message: c.quickOptionsMenu()},
						},
					},
				}
			},
		},
		{
			name: "email",
			re:   regexp.MustCompile(`(?i)email`),
			build: func(c *Classifier) *Plan {
				return &Plan{Name: "email", Steps: []Step{
					{Message: messenger.Text(c.emailText())},
				}}
			},
		},
		{
			name: "phone",
			re:   regexp.MustCompile(`(?i)phone`),
			build: func(c *Classifier) *Plan {
				return &Plan{Name: "phone", Steps: []Step{
					{Message: messenger.ButtonTemplate("The fastest way to get ahold of me:", []messenger.Button{
						c.phoneButton(),
					})},
				}}
			},
		},
		{
			name: "tech",
			re:   regexp.MustCompile(`(?i)tech|stack|software`),
			build: func(c *Classifier) *Plan {
				return &Plan{Name: "tech", Steps: []Step{
					{Message: messenger.Text(c.catalog.Technologies.Summary), Delay: delayShort},
					{Message: messenger.Text(c.catalog.Technologies.Followup), Delay: delayLong},
				}}
			},
		},
		{
			name: "oss",
			re:   regexp.MustCompile(`(?i)oss|open source`),
			build: func(c *Classifier) *Plan {
				carousel := messenger.GenericTemplate(c.projectElements(false, true))
				carousel.QuickReplies = []messenger.QuickReply{
					messenger.TextQuickReply("See paid work", "work"),
					messenger.TextQuickReply("See tech skills", "tech"),
				}
				return &Plan{Name: "oss", Steps: []Step{
					{Message: messenger.Text("Open source keeps the lights on. A few things I've contributed to:"), Delay: delayShort},
					{Message: carousel, Delay: delayMedium},
				}}
			},
		},
		{
			name: "projects",
			re:   regexp.MustCompile(`(?i)projects`),
			build: func(c *Classifier) *Plan {
				carousel := messenger.GenericTemplate(c.projectElements(true, true))
				carousel.QuickReplies = c.carouselQuickReplies()
				return &Plan{Name: "projects", Steps: []Step{
					{Message: messenger.Text("Here's everything, paid work and open source together:"), Delay: delayShort},
					{Message: carousel, Delay: delayMedium},
				}}
			},
		},
		{
			name: "work",
			re:   regexp.MustCompile(`(?i)work`),
			build: func(c *Classifier) *Plan {
				carousel := messenger.GenericTemplate(c.projectElements(true, false))
				carousel.QuickReplies = c.carouselQuickReplies()
				return &Plan{Name: "work", Steps: []Step{
					{Message: messenger.Text("Some client work I'm proud of:"), Delay: delayShort},
					{Message: carousel, Delay: delayMedium},
				}}
			},
		},
		{
			name: "help",
			re:   regexp.MustCompile(`(?i)help`),
			build: func(c *Classifier) *Plan {
				return &Plan{Name: "help", Steps: []Step{
					{Message: messenger.TextWithQuickReplies(helpText, c.menuQuickReplies())},
				}}
			},
		},
		{
			name: "astrology",
			re:   regexp.MustCompile(`(?i)astrology|horoscope|zodiac|star sign`),
			build: func(c *Classifier) *Plan {
				return &Plan{Name: "astrology", Steps: []Step{
					{Message: messenger.Text("Mercury is in retrograde, which means I'm legally not responsible for any bugs.")},
				}}
			},
		},
		{
			name: "hey",
			re:   regexp.MustCompile(`(?i)hey`),
			build: func(c *Classifier) *Plan {
				return &Plan{Name: "hey", Steps: []Step{
					{Message: messenger.Text("Hey there! 👋")},
					{Message: c.quickOptionsMenu(), Delay: delayShort},
				}}
			},
		},
	}
}

// unhandledPlan is the default when no rule matches.
func (c *Classifier) unhandledPlan() *Plan {
	return &Plan{Name: RuleUnhandled, Steps: []Step{
		{Message: messenger.Text(unhandledText)},
		{Message: c.quickOptionsMenu(), Delay: delayShort},
	}}
}

// stickerLikePlan acknowledges the thumbs-up sticker.
func (c *Classifier) stickerLikePlan() *Plan {
	return &Plan{Name: "sticker_like", Steps: []Step{
		{Message: messenger.Text("Thanks for the like! 👍")},
	}}
}

// attachmentPlan acknowledges any non-sticker attachment.
func (c *Classifier) attachmentPlan() *Plan {
	return &Plan{Name: "attachment", Steps: []Step{
		{Message: messenger.Image(c.assetURL("/assets/robot.gif"))},
		{Message: messenger.Text("Thanks for the attachment!"), Delay: delayShort},
	}}
}

// postbackPlan echoes the tech stack recorded in the pressed button.
func (c *Classifier) postbackPlan(payload string) *Plan {
	return &Plan{Name: "postback", Steps: []Step{
		{Message: messenger.Text(fmt.Sprintf("This site was built with %s", payload))},
	}}
}

// authPlan confirms a successful authentication callback.
func (c *Classifier) authPlan() *Plan {
	return &Plan{Name: "auth", Steps: []Step{
		{Message: messenger.Text("Authentication successful")},
	}}
}

func (c *Classifier) emailText() string {
	return fmt.Sprintf("You can email me anytime at %s.", c.catalog.Contact.Email)
}

func (c *Classifier) phoneButton() messenger.Button {
	return messenger.Button{
		Type:    messenger.ButtonTypePhone,
		Title:   "Call Me",
		Payload: c.catalog.Contact.Phone,
	}
}

// contactCard offers the phone and twitter contact options.
func (c *Classifier) contactCard() messenger.Message {
	return messenger.ButtonTemplate("Other ways to reach me:", []messenger.Button{
		c.phoneButton(),
		{Type: messenger.ButtonTypeWebURL, Title: "Tweet at Me", URL: c.catalog.Contact.Twitter},
	})
}

// webPresenceCard links the places I exist on the internet.
func (c *Classifier) webPresenceCard() messenger.Message {
	return messenger.ButtonTemplate("And where to find my stuff:", []messenger.Button{
		{Type: messenger.ButtonTypeWebURL, Title: "My Site", URL: c.catalog.Contact.Site},
		{Type: messenger.ButtonTypeWebURL, Title: "My GitHub", URL: c.catalog.Contact.GitHub},
	})
}

// quickOptionsMenu is the generic menu appended after canned and fallback
// replies.
func (c *Classifier) quickOptionsMenu() messenger.Message {
	return messenger.TextWithQuickReplies("Here's what I can help with:", c.menuQuickReplies())
}

func (c *Classifier) menuQuickReplies() []messenger.QuickReply {
	return []messenger.QuickReply{
		messenger.TextQuickReply("Contact info", "contact"),
		messenger.TextQuickReply("Open source", "oss"),
		messenger.TextQuickReply("Work", "work"),
		messenger.TextQuickReply("Tech skills", "tech"),
	}
}

func (c *Classifier) carouselQuickReplies() []messenger.QuickReply {
	return []messenger.QuickReply{
		messenger.TextQuickReply("Contact info", "contact"),
		messenger.TextQuickReply("Tech skills", "tech"),
	}
}

// projectElements converts the content table's project entries into carousel
// cards, work entries first.
func (c *Classifier) projectElements(work, openSource bool) []messenger.Element {
	var projects []content.Project
	if work {
		projects = append(projects, c.catalog.Projects.Work...)
	}
	if openSource {
		projects = append(projects, c.catalog.Projects.OpenSource...)
	}

	elements := make([]messenger.Element, 0, len(projects))
	for _, p := range projects {
		buttons := make([]messenger.Button, 0, len(p.Buttons))
		for _, b := range p.Buttons {
			buttons = append(buttons, messenger.Button{
				Type:    b.Type,
				Title:   b.Title,
				URL:     b.URL,
				Payload: b.Payload,
			})
		}
		elements = append(elements, messenger.Element{
			Title:    p.Title,
			Subtitle: p.Subtitle,
			ItemURL:  p.URL,
			ImageURL: c.assetURL(p.Image),
			Buttons:  buttons,
		})
	}
	return elements
}

func (c *Classifier) assetURL(path string) string {
	return content.AssetURL(c.serverURL, path)
}
