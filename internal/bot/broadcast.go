package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/chat"
)

// startBroadcast opens the broadcast workflow. Boss only.
func (e *Engine) startBroadcast(ctx context.Context, ev chat.InboundEvent) {
	if !e.access.IsBoss(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "Only the boss can broadcast messages.")
		return
	}
	e.sessions.Start(ev.Channel, KindBroadcast, Session{Step: StepWaitingBroadcast})
	e.notifier.Reply(ctx, ev.Channel, "Type the message you want to send to every registered doer:")
}

// broadcastText captures the draft and asks for confirmation before fan-out.
func (e *Engine) broadcastText(ctx context.Context, ev chat.InboundEvent, session Session, text string) {
	if session.Step != StepWaitingBroadcast {
		e.softReset(ctx, ev.Channel)
		return
	}
	draft := strings.TrimSpace(text)
	if draft == "" {
		e.notifier.Reply(ctx, ev.Channel, "The broadcast message cannot be empty. Type it again:")
		return
	}
	committed, ok := e.sessions.Advance(ev.Channel, StepWaitingBroadcast, func(s *Session) {
		s.Draft = draft
		s.Step = StepConfirmBroadcast
	})
	if !ok {
		e.softReset(ctx, ev.Channel)
		return
	}
	e.notifier.Reply(ctx, ev.Channel,
		"*Broadcast Preview*\n\n"+committed.Draft+"\n\nSend this to everyone?",
		chat.Action{Label: "Send", Tag: tagBroadcastSend},
		chat.Action{Label: "Cancel", Tag: tagBroadcastCancel},
	)
}

// broadcastSend fans the confirmed draft out to every doer with a bound
// channel. Delivery is best effort per recipient.
func (e *Engine) broadcastSend(ctx context.Context, ev chat.InboundEvent) {
	session, ok := e.sessions.Advance(ev.Channel, StepConfirmBroadcast, func(*Session) {})
	if !ok || session.Kind != KindBroadcast {
		e.notifier.Reply(ctx, ev.Channel, "That button is no longer valid.")
		return
	}
	e.sessions.Clear(ev.Channel)

	recipients, err := e.doers.WithChannel()
	if err != nil {
		e.notifier.Reply(ctx, ev.Channel, "Could not load the recipient list, please try again.")
		return
	}

	sent := 0
	for _, d := range recipients {
		if d.ChannelID == ev.Channel {
			continue
		}
		e.notifier.Notify(ctx, notifyBroadcast, d.ChannelID,
			"*Announcement*\n\n"+session.Draft, nil)
		sent++
	}
	e.notifier.Reply(ctx, ev.Channel, fmt.Sprintf("Broadcast sent to %d doers.", sent))
}
