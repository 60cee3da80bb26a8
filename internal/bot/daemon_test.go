package bot

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/chat"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/config"
)

// syncBuffer guards a bytes.Buffer so the test can read daemon output
// while the daemon goroutine writes it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestDaemon(t *testing.T) (*Daemon, *chat.MockAdapter, *syncBuffer) {
	t.Helper()
	gdb := openBotTestDB(t)
	adapter := chat.NewMockAdapter()
	out := new(syncBuffer)

	cfg := &config.Config{Platform: "mock"}
	cfg.Roles.BossChannel = bossChannel
	cfg.Roles.EAChannels = []string{eaChannel}

	d, err := NewDaemon(DaemonOpts{
		DB:      gdb,
		Config:  cfg,
		Adapter: adapter,
		Out:     out,
	})
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	return d, adapter, out
}

func TestNewDaemon_RequiresConfig(t *testing.T) {
	_, err := NewDaemon(DaemonOpts{
		DB:      openBotTestDB(t),
		Adapter: chat.NewMockAdapter(),
	})
	if err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestDaemon_RunAndShutdown(t *testing.T) {
	d, adapter, out := newTestDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	// Engine should see events pumped through the adapter.
	waitFor(t, func() bool { return strings.Contains(out.String(), "Taskbot online") })
	adapter.SimulateCommand("random-ch", "Someone", "nope")
	waitFor(t, func() bool { return len(adapter.SentTo("random-ch")) > 0 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for shutdown")
	}
	if !strings.Contains(out.String(), "Taskbot stopped") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDaemon_StopsWhenInboundCloses(t *testing.T) {
	d, adapter, out := newTestDaemon(t)

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	waitFor(t, func() bool { return strings.Contains(out.String(), "Taskbot online") })
	if err := adapter.Close(); err != nil {
		t.Fatalf("close adapter: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for run to return")
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
