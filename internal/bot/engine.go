package bot

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/chat"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/store"
	"gorm.io/gorm"
)

// cancelCommand aborts any in-flight capture step. It is recognized before
// kind-specific parsing and unconditionally clears the session.
const cancelCommand = "cancel"

// Engine is the conversational workflow engine. It owns the session table
// and wires the workflows to the store, the directory, and the notifier.
type Engine struct {
	sessions   *SessionManager
	access     *Access
	tasks      *store.Tasks
	doers      *store.Doers
	lifecycle  *Lifecycle
	notifier   *Notifier
	eaChannels []string
	out        io.Writer
}

// EngineOpts holds parameters for creating an Engine.
type EngineOpts struct {
	DB          *gorm.DB
	Adapter     chat.Adapter
	BossChannel string
	EAChannels  []string
	Out         io.Writer // defaults to os.Stdout
}

// NewEngine creates an Engine.
func NewEngine(opts EngineOpts) (*Engine, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("bot: engine: db is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("bot: engine: adapter is required")
	}
	if opts.BossChannel == "" {
		return nil, fmt.Errorf("bot: engine: boss channel is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	tasks := store.NewTasks(opts.DB)
	doers := store.NewDoers(opts.DB)
	return &Engine{
		sessions:   NewSessionManager(),
		access:     NewAccess(opts.BossChannel, opts.EAChannels, doers),
		tasks:      tasks,
		doers:      doers,
		lifecycle:  NewLifecycle(tasks),
		notifier:   NewNotifier(opts.Adapter, opts.DB),
		eaChannels: opts.EAChannels,
		out:        out,
	}, nil
}

// Sessions exposes the session manager for tests.
func (e *Engine) Sessions() *SessionManager {
	return e.sessions
}

// Handle classifies and routes a single inbound actor event. Routing paths:
//  1. "/cancel" → clear any session, confirm
//  2. command → workflow entry handlers
//  3. action (button press) → routed by tag
//  4. text → the one active session for the channel, switched on its kind
//  5. text with no session → greeting or hint
func (e *Engine) Handle(ctx context.Context, ev chat.InboundEvent) {
	ev = chat.Normalize(ev)

	fmt.Fprintf(e.out, "bot: recv %s [ch=%s] %q\n",
		ev.Kind, ev.Channel, eventPayload(ev))

	// 1. Reserved cancel command, before any kind-specific parsing.
	if ev.Kind == chat.KindCommand && ev.Command == cancelCommand {
		e.sessions.Clear(ev.Channel)
		e.notifier.Reply(ctx, ev.Channel, "Okay, canceled. Nothing saved.")
		return
	}

	switch ev.Kind {
	case chat.KindCommand:
		e.handleCommand(ctx, ev)
	case chat.KindAction:
		e.handleAction(ctx, ev)
	case chat.KindText:
		e.handleText(ctx, ev)
	}
}

// eventPayload returns the interesting part of an event for logging.
func eventPayload(ev chat.InboundEvent) string {
	switch ev.Kind {
	case chat.KindCommand:
		return "/" + ev.Command
	case chat.KindAction:
		return ev.Action
	default:
		return truncate(ev.Text, 60)
	}
}

// truncate returns s truncated to maxLen with "..." appended if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// handleCommand dispatches workflow entry commands.
func (e *Engine) handleCommand(ctx context.Context, ev chat.InboundEvent) {
	switch ev.Command {
	case "start":
		e.showBossMenu(ctx, ev)
	case "tasks":
		e.showDoerTaskMenu(ctx, ev)
	case "register":
		e.startRegistration(ctx, ev)
	case "heybot":
		e.showReviewerPanel(ctx, ev)
	default:
		e.notifier.Reply(ctx, ev.Channel,
			"Unknown command. Try /start, /tasks, /register, /heybot, or /cancel.")
	}
}

// handleText routes free text to the channel's active session, if any.
func (e *Engine) handleText(ctx context.Context, ev chat.InboundEvent) {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}

	session, ok := e.sessions.Get(ev.Channel)
	if !ok {
		e.handleBareText(ctx, ev, text)
		return
	}

	switch session.Kind {
	case KindAssignment:
		e.assignText(ctx, ev, session, text)
	case KindBroadcast:
		e.broadcastText(ctx, ev, session, text)
	case KindExtensionRequest, KindCancelRequest:
		e.requestText(ctx, ev, session, text)
	case KindRegistration:
		e.registrationText(ctx, ev, session, text)
	default:
		// Kinds with no free-text steps (department change) fall through
		// to a soft reset: the session has no use for this event.
		e.softReset(ctx, ev.Channel)
	}
}

// handleBareText handles free text on a channel with no active session.
func (e *Engine) handleBareText(ctx context.Context, ev chat.InboundEvent, text string) {
	if isGreeting(text) {
		if e.access.IsBoss(ev.Channel) {
			e.showBossMenu(ctx, ev)
			return
		}
		e.notifier.Reply(ctx, ev.Channel,
			"Hello! Use /tasks to view your tasks or /register to register.")
		return
	}
	fmt.Fprintf(e.out, "bot: ignore text with no session [ch=%s]\n", ev.Channel)
}

// isGreeting matches the casual hellos that open the boss menu.
func isGreeting(text string) bool {
	switch strings.ToLower(text) {
	case "hi", "hello", "hey":
		return true
	}
	return false
}

// softReset clears the channel's session and asks the actor to restart.
// Used when an event arrives for a step the session is not in: the draft
// fields for that branch are not populated, so tolerating it would commit
// garbage.
func (e *Engine) softReset(ctx context.Context, channel string) {
	e.sessions.Clear(channel)
	e.notifier.Reply(ctx, channel, "That option isn't valid right now. Please start again from the menu.")
}

// showBossMenu presents the principal's top-level menu.
func (e *Engine) showBossMenu(ctx context.Context, ev chat.InboundEvent) {
	if !e.access.IsBoss(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "You are not authorized to use this menu.")
		return
	}
	e.sessions.Clear(ev.Channel)
	e.notifier.Reply(ctx, ev.Channel, "Hi Boss! What would you like to do?",
		chat.Action{Label: "Assign Task", Tag: tagAssign},
		chat.Action{Label: "Check Task Status", Tag: tagStatus},
		chat.Action{Label: "Broadcast Message", Tag: tagBroadcast},
	)
}

// reviewerChannels returns the channels that review extension and
// cancellation requests.
func (e *Engine) reviewerChannels() []string {
	return e.eaChannels
}

// misChannels returns the bound channels of approved MIS-department doers,
// the reviewers for registrations and department changes.
func (e *Engine) misChannels() []string {
	doers, err := e.doers.FindAllActive(misDepartment)
	if err != nil {
		fmt.Fprintf(e.out, "bot: list MIS reviewers: %v\n", err)
		return nil
	}
	var channels []string
	for _, d := range doers {
		if d.ChannelID != "" {
			channels = append(channels, d.ChannelID)
		}
	}
	return channels
}
