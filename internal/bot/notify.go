package bot

import (
	"context"
	"log"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/chat"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/models"
	"gorm.io/gorm"
)

// Notification kinds recorded in the audit log.
const (
	notifyReply        = "reply"
	notifyAssignment   = "task-assigned"
	notifyFollowUp     = "follow-up"
	notifyCompleted    = "task-completed"
	notifyExtension    = "extension-request"
	notifyCancellation = "cancellation-request"
	notifyDecision     = "decision"
	notifyRegistration = "registration"
	notifyBroadcast    = "broadcast"
	notifyReminder     = "reminder"
)

// Notifier fans transition outcomes out to actor channels. Delivery is
// best-effort: failures are logged and recorded, and a failed notification
// to a secondary actor never rolls back the transition that produced it.
// Every send is appended to the notification log.
type Notifier struct {
	adapter chat.Adapter
	db      *gorm.DB
}

// NewNotifier creates a Notifier.
func NewNotifier(adapter chat.Adapter, db *gorm.DB) *Notifier {
	return &Notifier{adapter: adapter, db: db}
}

// Reply sends a message back to the actor whose event is being handled.
func (n *Notifier) Reply(ctx context.Context, channel, text string, actions ...chat.Action) {
	n.send(ctx, notifyReply, channel, text, nil, actions)
}

// Notify sends a message to a counterpart actor, tagged with a kind and an
// optional task id for the audit log.
func (n *Notifier) Notify(ctx context.Context, kind, channel, text string, taskID *uint, actions ...chat.Action) {
	n.send(ctx, kind, channel, text, taskID, actions)
}

func (n *Notifier) send(ctx context.Context, kind, channel, text string, taskID *uint, actions []chat.Action) {
	if channel == "" {
		return
	}
	err := n.adapter.Send(ctx, chat.OutboundMessage{
		Channel: channel,
		Text:    text,
		Actions: actions,
	})
	if err != nil {
		log.Printf("bot: notify %s [ch=%s]: %v", kind, channel, err)
	}

	row := models.Notification{
		Channel:   channel,
		Kind:      kind,
		Body:      text,
		TaskID:    taskID,
		Delivered: err == nil,
	}
	if dbErr := n.db.Create(&row).Error; dbErr != nil {
		log.Printf("bot: record notification [ch=%s]: %v", channel, dbErr)
	}
}
