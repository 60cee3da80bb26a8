package slack

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/chat"
)

// --- Mock Slack clients ---

type mockClient struct {
	mu          sync.Mutex
	authErr     error
	postedMsgs  []postedMessage
	postErr     error
	postErrOnce bool
	users       map[string]*slackapi.User
}

type postedMessage struct {
	channelID string
	options   []slackapi.MsgOption
}

func newMockClient() *mockClient {
	return &mockClient{users: make(map[string]*slackapi.User)}
}

func (m *mockClient) AuthTest() (*slackapi.AuthTestResponse, error) {
	if m.authErr != nil {
		return nil, m.authErr
	}
	return &slackapi.AuthTestResponse{UserID: "BOT_USER_ID"}, nil
}

func (m *mockClient) PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		err := m.postErr
		if m.postErrOnce {
			m.postErr = nil
		}
		return "", "", err
	}
	m.postedMsgs = append(m.postedMsgs, postedMessage{channelID: channelID, options: options})
	return channelID, "1234567890.123456", nil
}

func (m *mockClient) GetUserInfo(userID string) (*slackapi.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[userID]; ok {
		return user, nil
	}
	return nil, fmt.Errorf("user not found: %s", userID)
}

func (m *mockClient) postedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.postedMsgs)
}

type mockSocket struct {
	mu     sync.Mutex
	events chan socketmode.Event
	runErr error
	acked  int
}

func newMockSocket() *mockSocket {
	return &mockSocket{events: make(chan socketmode.Event, 10)}
}

func (m *mockSocket) Run() error {
	if m.runErr != nil {
		return m.runErr
	}
	// Block like the real client does.
	select {}
}

func (m *mockSocket) EventsChan() chan socketmode.Event { return m.events }

func (m *mockSocket) Ack(req socketmode.Request, payload ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked++
}

func (m *mockSocket) ackCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acked
}

// --- Helper to create a connected adapter ---

func newTestAdapter(t *testing.T) (*Adapter, *mockClient, *mockSocket) {
	t.Helper()
	client := newMockClient()
	socket := newMockSocket()

	a, err := New(AdapterOpts{Client: client, Socket: socket})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return a, client, socket
}

// --- New tests ---

func TestNew_RequiresBotToken(t *testing.T) {
	_, err := New(AdapterOpts{AppToken: "xapp-test"})
	if err == nil {
		t.Fatal("expected error for missing bot token")
	}
	if !strings.Contains(err.Error(), "bot token") {
		t.Errorf("error = %q, want to mention bot token", err.Error())
	}
}

func TestNew_RequiresAppToken(t *testing.T) {
	_, err := New(AdapterOpts{Client: newMockClient(), BotToken: "xoxb-test"})
	if err == nil {
		t.Fatal("expected error for missing app token")
	}
	if !strings.Contains(err.Error(), "app token") {
		t.Errorf("error = %q, want to mention app token", err.Error())
	}
}

func TestNew_WithMocks(t *testing.T) {
	a, err := New(AdapterOpts{Client: newMockClient(), Socket: newMockSocket()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == nil {
		t.Fatal("expected non-nil adapter")
	}
}

// --- Connect tests ---

func TestConnect_SetsBotUserID(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	if a.botUserID != "BOT_USER_ID" {
		t.Errorf("bot user ID = %q, want BOT_USER_ID", a.botUserID)
	}
}

func TestConnect_AuthError(t *testing.T) {
	client := newMockClient()
	client.authErr = fmt.Errorf("invalid_auth")

	a, _ := New(AdapterOpts{Client: client, Socket: newMockSocket()})
	err := a.Connect(context.Background())
	if err == nil {
		t.Fatal("expected auth error")
	}
	if !strings.Contains(err.Error(), "auth test") {
		t.Errorf("error = %q, want auth test error", err.Error())
	}
}

func TestConnect_AlreadyClosed(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	a.Close()
	if err := a.Connect(context.Background()); err == nil {
		t.Fatal("expected error for closed adapter")
	}
}

func TestConnect_Idempotent(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("second connect should not error: %v", err)
	}
}

// --- Listen tests ---

func TestListen_NotConnected(t *testing.T) {
	a, _ := New(AdapterOpts{Client: newMockClient(), Socket: newMockSocket()})
	if _, err := a.Listen(context.Background()); err == nil {
		t.Fatal("expected error for not connected")
	}
}

func TestListen_ReceivesMessages(t *testing.T) {
	a, client, socket := newTestAdapter(t)
	client.users["U_ALICE"] = &slackapi.User{
		Profile: slackapi.UserProfile{DisplayName: "Alice"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := a.Listen(ctx)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	socket.events <- socketmode.Event{
		Type: socketmode.EventTypeEventsAPI,
		Data: slackevents.EventsAPIEvent{
			Type: slackevents.CallbackEvent,
			InnerEvent: slackevents.EventsAPIInnerEvent{
				Data: &slackevents.MessageEvent{
					Channel:   "C1",
					User:      "U_ALICE",
					Text:      "hello",
					TimeStamp: "1234567890.123456",
				},
			},
		},
		Request: &socketmode.Request{},
	}

	select {
	case ev := <-ch:
		if ev.Platform != "slack" {
			t.Errorf("platform = %q, want slack", ev.Platform)
		}
		if ev.Kind != chat.KindText {
			t.Errorf("kind = %q, want text", ev.Kind)
		}
		if ev.Channel != "C1" {
			t.Errorf("channel = %q, want C1", ev.Channel)
		}
		if ev.UserName != "Alice" {
			t.Errorf("username = %q, want Alice", ev.UserName)
		}
		if ev.Text != "hello" {
			t.Errorf("text = %q, want hello", ev.Text)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for inbound message")
	}

	if socket.ackCount() != 1 {
		t.Errorf("expected the events API request to be acked, got %d", socket.ackCount())
	}
}

func TestListen_FiltersSelfAndBotMessages(t *testing.T) {
	a, _, socket := newTestAdapter(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, _ := a.Listen(ctx)

	send := func(msg *slackevents.MessageEvent) {
		socket.events <- socketmode.Event{
			Type: socketmode.EventTypeEventsAPI,
			Data: slackevents.EventsAPIEvent{
				Type: slackevents.CallbackEvent,
				InnerEvent: slackevents.EventsAPIInnerEvent{
					Data: msg,
				},
			},
		}
	}

	send(&slackevents.MessageEvent{Channel: "C1", User: "BOT_USER_ID", Text: "self"})
	send(&slackevents.MessageEvent{Channel: "C1", User: "U_OTHER", BotID: "B1", Text: "bot"})
	send(&slackevents.MessageEvent{Channel: "C1", User: "U_OTHER", SubType: "message_changed", Text: "edit"})
	send(&slackevents.MessageEvent{Channel: "C1", User: "U_OTHER", Text: "real"})

	select {
	case ev := <-ch:
		if ev.Text != "real" {
			t.Errorf("expected real message, got %q", ev.Text)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestListen_ButtonPress(t *testing.T) {
	a, _, socket := newTestAdapter(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, _ := a.Listen(ctx)

	cb := slackapi.InteractionCallback{
		Type: slackapi.InteractionTypeBlockActions,
		User: slackapi.User{ID: "U_ALICE"},
	}
	cb.Channel.ID = "C1"
	cb.ActionCallback.BlockActions = []*slackapi.BlockAction{
		{ActionID: "EXT_APPROVE_12"},
	}
	socket.events <- socketmode.Event{
		Type:    socketmode.EventTypeInteractive,
		Data:    cb,
		Request: &socketmode.Request{},
	}

	select {
	case ev := <-ch:
		if ev.Kind != chat.KindAction {
			t.Errorf("kind = %q, want action", ev.Kind)
		}
		if ev.Action != "EXT_APPROVE_12" {
			t.Errorf("action = %q, want EXT_APPROVE_12", ev.Action)
		}
		if ev.Channel != "C1" {
			t.Errorf("channel = %q, want C1", ev.Channel)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for action event")
	}

	if socket.ackCount() != 1 {
		t.Errorf("expected the interactive request to be acked, got %d", socket.ackCount())
	}
}

func TestHandleInteraction_IgnoresNonBlockActions(t *testing.T) {
	a, _, _ := newTestAdapter(t)

	// Must not panic or emit anything for view submissions etc.
	a.handleInteraction(slackapi.InteractionCallback{
		Type: slackapi.InteractionTypeViewSubmission,
	})
	select {
	case ev := <-a.inbound:
		t.Errorf("unexpected event: %+v", ev)
	default:
	}
}

// --- Send tests ---

func TestSend_SimpleText(t *testing.T) {
	a, client, _ := newTestAdapter(t)

	err := a.Send(context.Background(), chat.OutboundMessage{
		Channel: "C1",
		Text:    "hello world",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.postedCount() != 1 {
		t.Fatalf("expected 1 posted message, got %d", client.postedCount())
	}
	client.mu.Lock()
	last := client.postedMsgs[0]
	client.mu.Unlock()
	if last.channelID != "C1" {
		t.Errorf("channel = %q, want C1", last.channelID)
	}
}

func TestSend_NoChannel(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	if err := a.Send(context.Background(), chat.OutboundMessage{Text: "no channel"}); err == nil {
		t.Fatal("expected error for no channel")
	}
}

func TestSend_NotConnected(t *testing.T) {
	a, _ := New(AdapterOpts{Client: newMockClient(), Socket: newMockSocket()})
	err := a.Send(context.Background(), chat.OutboundMessage{Channel: "C1", Text: "hello"})
	if err == nil {
		t.Fatal("expected error for not connected")
	}
}

func TestSend_PostError(t *testing.T) {
	a, client, _ := newTestAdapter(t)
	client.postErr = fmt.Errorf("channel_not_found")

	err := a.Send(context.Background(), chat.OutboundMessage{Channel: "C1", Text: "hello"})
	if err == nil {
		t.Fatal("expected post error")
	}
}

func TestSend_RetriesRateLimit(t *testing.T) {
	a, client, _ := newTestAdapter(t)
	client.postErr = &slackapi.RateLimitedError{RetryAfter: time.Millisecond}
	client.postErrOnce = true

	err := a.Send(context.Background(), chat.OutboundMessage{Channel: "C1", Text: "hello"})
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if client.postedCount() != 1 {
		t.Errorf("expected 1 posted message after retry, got %d", client.postedCount())
	}
}

// --- Close tests ---

func TestClose_Idempotent(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	if err := a.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second close should not error: %v", err)
	}
}

func TestClose_ClosesInboundChannel(t *testing.T) {
	a, _, _ := newTestAdapter(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, _ := a.Listen(ctx)

	a.Close()

	select {
	case _, open := <-ch:
		if open {
			t.Error("expected inbound channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
}

// --- resolveUserName tests ---

func TestResolveUserName(t *testing.T) {
	a, client, _ := newTestAdapter(t)
	client.users["U1"] = &slackapi.User{
		Profile: slackapi.UserProfile{DisplayName: "Alice"},
	}
	client.users["U2"] = &slackapi.User{RealName: "Bob Builder"}

	if got := a.resolveUserName("U1"); got != "Alice" {
		t.Errorf("U1 = %q, want Alice", got)
	}
	if got := a.resolveUserName("U2"); got != "Bob Builder" {
		t.Errorf("U2 = %q, want real name fallback", got)
	}
	if got := a.resolveUserName("U_UNKNOWN"); got != "U_UNKNOWN" {
		t.Errorf("unknown = %q, want raw ID fallback", got)
	}
	if got := a.resolveUserName(""); got != "" {
		t.Errorf("empty = %q, want empty", got)
	}
}

// --- buildMessageOptions tests ---

func TestBuildMessageOptions_TextOnly(t *testing.T) {
	options := buildMessageOptions(chat.OutboundMessage{Text: "hello"})
	if len(options) != 1 {
		t.Errorf("expected 1 option for plain text, got %d", len(options))
	}
}

func TestBuildMessageOptions_WithActions(t *testing.T) {
	options := buildMessageOptions(chat.OutboundMessage{
		Text: "choose",
		Actions: []chat.Action{
			{Label: "Approve", Tag: "EXT_APPROVE_12"},
			{Label: "Reject", Tag: "EXT_REJECT_12"},
		},
	})
	// Fallback text plus the block layout.
	if len(options) != 2 {
		t.Errorf("expected 2 options with actions, got %d", len(options))
	}
}

// --- parseSlackTimestamp tests ---

func TestParseSlackTimestamp(t *testing.T) {
	ts := parseSlackTimestamp("1234567890.123456")
	if ts.Unix() != 1234567890 {
		t.Errorf("unix = %d, want 1234567890", ts.Unix())
	}
}

func TestParseSlackTimestamp_Invalid(t *testing.T) {
	if ts := parseSlackTimestamp("not-a-timestamp"); !ts.IsZero() {
		t.Errorf("expected zero time, got %v", ts)
	}
	if ts := parseSlackTimestamp(""); !ts.IsZero() {
		t.Errorf("expected zero time for empty input, got %v", ts)
	}
}

// --- Verify Adapter interface compliance ---

var _ chat.Adapter = (*Adapter)(nil)
