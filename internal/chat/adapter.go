// Package chat abstracts the messaging transport that delivers actor events
// to the workflow engine and carries replies and notifications back out.
package chat

import (
	"context"
	"strings"
	"time"
)

// EventKind classifies an inbound actor event.
type EventKind string

const (
	// KindCommand is a named command (e.g. "/register").
	KindCommand EventKind = "command"
	// KindAction is a discrete labeled choice, such as a button press,
	// carrying a tag that may embed an identifier (e.g. "EXT_APPROVE_12").
	KindAction EventKind = "action"
	// KindText is free-form message text.
	KindText EventKind = "text"
)

// InboundEvent is a single actor event received from the platform.
type InboundEvent struct {
	Platform  string    // e.g. "discord", "slack"
	Kind      EventKind
	Channel   string    // actor-channel id; the session and role key
	UserName  string    // platform display name of the actor
	Command   string    // command name without the slash, for KindCommand
	Action    string    // action tag, for KindAction
	Text      string    // message text, for KindText
	Timestamp time.Time
}

// Action is a labeled follow-up choice attached to an outbound message.
type Action struct {
	Label string
	Tag   string
}

// OutboundMessage is a message to deliver to one actor channel, optionally
// paired with a small set of follow-up actions.
type OutboundMessage struct {
	Channel string
	Text    string
	Actions []Action
}

// Adapter is the interface platform-specific transports implement.
type Adapter interface {
	// Connect establishes a connection to the chat platform.
	Connect(ctx context.Context) error

	// Listen returns a channel of inbound events. The channel is closed
	// when the context is cancelled or the adapter is closed. Listen must
	// only be called after Connect. Events for a single actor channel are
	// delivered in order; no ordering holds across channels.
	Listen(ctx context.Context) (<-chan InboundEvent, error)

	// Send delivers an outbound message to the platform.
	Send(ctx context.Context, msg OutboundMessage) error

	// Close gracefully shuts down the adapter connection.
	Close() error
}

// Normalize upgrades a text event whose content is a slash command into a
// command event, so adapters without native command support need no special
// handling. Other events pass through unchanged.
func Normalize(ev InboundEvent) InboundEvent {
	if ev.Kind != KindText {
		return ev
	}
	text := strings.TrimSpace(ev.Text)
	if !strings.HasPrefix(text, "/") || len(text) < 2 {
		return ev
	}
	name := strings.Fields(text[1:])[0]
	ev.Kind = KindCommand
	ev.Command = strings.ToLower(name)
	return ev
}
