package bot

import (
	"time"

	"pagebot/internal/messenger"
)

// Step is one outbound action in a response plan. Delay is the pause applied
// after the typing indicator and before the send, simulating human pacing.
type Step struct {
	Message messenger.Message
	Delay   time.Duration
}

// Plan is an ordered sequence of steps representing one conversational turn.
// Steps execute strictly in order. When a step's send fails the remaining
// steps are abandoned and, if Fallback is set, the fallback plan runs
// instead.
type Plan struct {
	// Name is the matched rule's label, used for logging and metrics.
	Name     string
	Steps    []Step
	Fallback *Plan
}

// DispatchKind labels what should happen with a classified event.
type DispatchKind int

const (
	// DispatchIgnore drops the event with no response and no send.
	DispatchIgnore DispatchKind = iota
	// DispatchMessage executes the plan selected by the rule list.
	DispatchMessage
	// DispatchPostback executes the postback acknowledgement plan.
	DispatchPostback
	// DispatchAuth executes the authentication acknowledgement plan.
	DispatchAuth
	// DispatchDelivery records the receipt; nothing is sent.
	DispatchDelivery
)

// Dispatch is the classifier's verdict for one inbound event. Plan is set
// for the message, postback, and auth kinds.
type Dispatch struct {
	Kind DispatchKind
	Plan *Plan
}
