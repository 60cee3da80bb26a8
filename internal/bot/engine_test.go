package bot

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/chat"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	bossChannel = "boss-ch"
	eaChannel   = "ea-ch"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func openBotTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Task{}, &models.Doer{}, &models.Notification{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

func newTestEngine(t *testing.T) (*Engine, *chat.MockAdapter, *gorm.DB) {
	t.Helper()
	gdb := openBotTestDB(t)
	adapter := chat.NewMockAdapter()
	if err := adapter.Connect(context.Background()); err != nil {
		t.Fatalf("connect mock adapter: %v", err)
	}
	engine, err := NewEngine(EngineOpts{
		DB:          gdb,
		Adapter:     adapter,
		BossChannel: bossChannel,
		EAChannels:  []string{eaChannel},
		Out:         io.Discard,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine, adapter, gdb
}

func seedDoer(t *testing.T, gdb *gorm.DB, name, dept, channel string) *models.Doer {
	t.Helper()
	doer := &models.Doer{
		Name:           name,
		Department:     dept,
		ChannelID:      channel,
		IsActive:       true,
		IsApproved:     true,
		ApprovalStatus: models.ApprovalApproved,
	}
	if err := gdb.Create(doer).Error; err != nil {
		t.Fatalf("seed doer %s: %v", name, err)
	}
	return doer
}

func seedTask(t *testing.T, gdb *gorm.DB, doerName, description, status string, due *time.Time) *models.Task {
	t.Helper()
	urgency := models.UrgencyUrgent
	if due != nil {
		urgency = models.UrgencyScheduled
	}
	task := &models.Task{
		Description: description,
		Doer:        doerName,
		Urgency:     urgency,
		DueDate:     due,
		Status:      status,
	}
	if err := gdb.Create(task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func sendText(e *Engine, channel, text string) {
	e.Handle(context.Background(), chat.InboundEvent{
		Platform: "mock", Kind: chat.KindText, Channel: channel, Text: text,
	})
}

func sendAction(e *Engine, channel, tag string) {
	e.Handle(context.Background(), chat.InboundEvent{
		Platform: "mock", Kind: chat.KindAction, Channel: channel, Action: tag,
	})
}

func sendCommand(e *Engine, channel, name string) {
	e.Handle(context.Background(), chat.InboundEvent{
		Platform: "mock", Kind: chat.KindCommand, Channel: channel, Command: name,
	})
}

func lastSentTo(t *testing.T, adapter *chat.MockAdapter, channel string) chat.OutboundMessage {
	t.Helper()
	msgs := adapter.SentTo(channel)
	if len(msgs) == 0 {
		t.Fatalf("no messages sent to %s", channel)
	}
	return msgs[len(msgs)-1]
}

// ---------------------------------------------------------------------------
// NewEngine tests
// ---------------------------------------------------------------------------

func TestNewEngine_NilDB(t *testing.T) {
	_, err := NewEngine(EngineOpts{Adapter: chat.NewMockAdapter(), BossChannel: bossChannel})
	if err == nil {
		t.Fatal("expected error for nil DB")
	}
}

func TestNewEngine_NilAdapter(t *testing.T) {
	gdb := openBotTestDB(t)
	_, err := NewEngine(EngineOpts{DB: gdb, BossChannel: bossChannel})
	if err == nil {
		t.Fatal("expected error for nil adapter")
	}
}

func TestNewEngine_MissingBossChannel(t *testing.T) {
	gdb := openBotTestDB(t)
	_, err := NewEngine(EngineOpts{DB: gdb, Adapter: chat.NewMockAdapter()})
	if err == nil {
		t.Fatal("expected error for missing boss channel")
	}
}

// ---------------------------------------------------------------------------
// Dispatch tests
// ---------------------------------------------------------------------------

func TestCancelCommand_ClearsSession(t *testing.T) {
	engine, adapter, gdb := newTestEngine(t)
	seedDoer(t, gdb, "JOHN DOE", "Sales dept", "doer-ch")

	sendAction(engine, bossChannel, tagAssign)
	if engine.Sessions().Active() != 1 {
		t.Fatal("expected an active session after assignment start")
	}

	sendCommand(engine, bossChannel, "cancel")
	if engine.Sessions().Active() != 0 {
		t.Error("expected no active sessions after /cancel")
	}
	last := lastSentTo(t, adapter, bossChannel)
	if !strings.Contains(last.Text, "canceled") {
		t.Errorf("expected cancel confirmation, got %q", last.Text)
	}
}

func TestCancelCommand_AsTextIsNormalized(t *testing.T) {
	engine, adapter, gdb := newTestEngine(t)
	seedDoer(t, gdb, "JOHN DOE", "Sales dept", "doer-ch")

	sendAction(engine, bossChannel, tagAssign)
	// "/cancel" typed as plain text must behave as the command.
	sendText(engine, bossChannel, "/cancel")

	if engine.Sessions().Active() != 0 {
		t.Error("expected no active sessions after typed /cancel")
	}
	last := lastSentTo(t, adapter, bossChannel)
	if !strings.Contains(last.Text, "canceled") {
		t.Errorf("expected cancel confirmation, got %q", last.Text)
	}
}

func TestBossMenu_NonBossDenied(t *testing.T) {
	engine, adapter, _ := newTestEngine(t)

	sendCommand(engine, "random-ch", "start")
	last := lastSentTo(t, adapter, "random-ch")
	if !strings.Contains(last.Text, "not authorized") {
		t.Errorf("expected authorization refusal, got %q", last.Text)
	}
	if len(last.Actions) != 0 {
		t.Error("refusal must not carry menu actions")
	}
}

func TestBossMenu_Actions(t *testing.T) {
	engine, adapter, _ := newTestEngine(t)

	sendCommand(engine, bossChannel, "start")
	last := lastSentTo(t, adapter, bossChannel)
	if len(last.Actions) != 3 {
		t.Fatalf("expected 3 menu actions, got %d", len(last.Actions))
	}
	tags := []string{last.Actions[0].Tag, last.Actions[1].Tag, last.Actions[2].Tag}
	want := []string{tagAssign, tagStatus, tagBroadcast}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("action %d = %s, want %s", i, tags[i], want[i])
		}
	}
}

func TestGreeting_OpensBossMenuForBoss(t *testing.T) {
	engine, adapter, _ := newTestEngine(t)

	sendText(engine, bossChannel, "hi")
	last := lastSentTo(t, adapter, bossChannel)
	if !strings.Contains(last.Text, "Boss") {
		t.Errorf("expected boss menu on greeting, got %q", last.Text)
	}
}

func TestGreeting_HintForOthers(t *testing.T) {
	engine, adapter, _ := newTestEngine(t)

	sendText(engine, "someone-ch", "hello")
	last := lastSentTo(t, adapter, "someone-ch")
	if !strings.Contains(last.Text, "/tasks") {
		t.Errorf("expected usage hint, got %q", last.Text)
	}
}

func TestBareText_NoSessionIgnored(t *testing.T) {
	engine, adapter, _ := newTestEngine(t)

	sendText(engine, "someone-ch", "what is this")
	if len(adapter.SentTo("someone-ch")) != 0 {
		t.Error("non-greeting text with no session should be ignored")
	}
}

func TestUnknownCommand_Hint(t *testing.T) {
	engine, adapter, _ := newTestEngine(t)

	sendCommand(engine, bossChannel, "bogus")
	last := lastSentTo(t, adapter, bossChannel)
	if !strings.Contains(last.Text, "/start") {
		t.Errorf("expected command hint, got %q", last.Text)
	}
}

func TestStaleAction_Rejected(t *testing.T) {
	engine, adapter, _ := newTestEngine(t)

	sendAction(engine, bossChannel, "NOT_A_REAL_TAG")
	last := lastSentTo(t, adapter, bossChannel)
	if !strings.Contains(last.Text, "no longer valid") {
		t.Errorf("expected stale-button message, got %q", last.Text)
	}
}

func TestWorkflowStart_OverwritesPriorSession(t *testing.T) {
	engine, _, gdb := newTestEngine(t)
	seedDoer(t, gdb, "JOHN DOE", "Sales dept", "doer-ch")

	sendAction(engine, bossChannel, tagAssign)
	sendAction(engine, bossChannel, tagBroadcast)

	s, ok := engine.Sessions().Get(bossChannel)
	if !ok {
		t.Fatal("expected an active session")
	}
	if s.Kind != KindBroadcast {
		t.Errorf("session kind = %s, want %s", s.Kind, KindBroadcast)
	}
	if s.Department != "" || s.Description != "" {
		t.Error("fields from the overwritten session must not leak")
	}
	if engine.Sessions().Active() != 1 {
		t.Errorf("active sessions = %d, want 1", engine.Sessions().Active())
	}
}
