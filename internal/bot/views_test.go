package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/models"
)

func TestDoerTaskMenu_RequiresRegistration(t *testing.T) {
	engine, adapter, _ := newTestEngine(t)

	sendCommand(engine, "stranger-ch", "tasks")
	last := lastSentTo(t, adapter, "stranger-ch")
	if !strings.Contains(last.Text, "/register") {
		t.Errorf("expected registration hint, got %q", last.Text)
	}
}

func TestDoerTasks_PendingIncludesRevised(t *testing.T) {
	engine, adapter, gdb := newTestEngine(t)
	seedDoer(t, gdb, "JOHN DOE", "Sales dept", "doer-ch")
	seedTask(t, gdb, "JOHN DOE", "Pending one", models.TaskPending, nil)
	seedTask(t, gdb, "JOHN DOE", "Revised one", models.TaskRevised, nil)
	seedTask(t, gdb, "JOHN DOE", "Done one", models.TaskCompleted, nil)
	seedTask(t, gdb, "JANE ROE", "Someone else's", models.TaskPending, nil)

	sendAction(engine, "doer-ch", tagTasksPending)

	msgs := adapter.SentTo("doer-ch")
	var bodies []string
	for _, m := range msgs {
		bodies = append(bodies, m.Text)
	}
	joined := strings.Join(bodies, "\n---\n")
	if !strings.Contains(joined, "Pending one") || !strings.Contains(joined, "Revised one") {
		t.Errorf("pending view must include pending and revised tasks:\n%s", joined)
	}
	if strings.Contains(joined, "Done one") {
		t.Error("pending view must not include completed tasks")
	}
	if strings.Contains(joined, "Someone else's") {
		t.Error("doer view must only show the caller's tasks")
	}
}

func TestDoerTasks_PendingCardsCarryActions(t *testing.T) {
	engine, adapter, gdb := newTestEngine(t)
	seedDoer(t, gdb, "JOHN DOE", "Sales dept", "doer-ch")
	task := seedTask(t, gdb, "JOHN DOE", "Pending one", models.TaskPending, nil)

	sendAction(engine, "doer-ch", tagTasksPending)

	last := lastSentTo(t, adapter, "doer-ch")
	if len(last.Actions) != 3 {
		t.Fatalf("expected 3 actions on a pending card, got %d", len(last.Actions))
	}
	if last.Actions[1].Tag != tagWithID(tagTaskExtPrefix, task.ID) {
		t.Errorf("second action = %s", last.Actions[1].Tag)
	}
}

func TestDoerTasks_CompletedCardsHaveNoActions(t *testing.T) {
	engine, adapter, gdb := newTestEngine(t)
	seedDoer(t, gdb, "JOHN DOE", "Sales dept", "doer-ch")
	seedTask(t, gdb, "JOHN DOE", "Done one", models.TaskCompleted, nil)

	sendAction(engine, "doer-ch", tagTasksCompleted)

	last := lastSentTo(t, adapter, "doer-ch")
	if len(last.Actions) != 0 {
		t.Errorf("completed card must carry no actions, got %+v", last.Actions)
	}
}

func TestReviewerPanel_Gated(t *testing.T) {
	engine, adapter, _ := newTestEngine(t)

	sendCommand(engine, "stranger-ch", "heybot")
	last := lastSentTo(t, adapter, "stranger-ch")
	if !strings.Contains(last.Text, "reviewers only") {
		t.Errorf("expected reviewer refusal, got %q", last.Text)
	}

	sendCommand(engine, eaChannel, "heybot")
	last = lastSentTo(t, adapter, eaChannel)
	if len(last.Actions) != 3 {
		t.Fatalf("expected 3 panel actions, got %+v", last.Actions)
	}
}

func TestCancelQueue_ListsOpenRequests(t *testing.T) {
	engine, adapter, gdb := newTestEngine(t)
	seedDoer(t, gdb, "JOHN DOE", "Sales dept", "doer-ch")
	task := seedTask(t, gdb, "JOHN DOE", "Cancel me", models.TaskPending, nil)
	gdb.Model(task).Updates(map[string]interface{}{
		"cancellation_requested": true,
		"cancellation_reason":    "no longer needed",
	})
	seedTask(t, gdb, "JOHN DOE", "Keep me", models.TaskPending, nil)

	sendAction(engine, eaChannel, tagEACancelQueue)

	msgs := adapter.SentTo(eaChannel)
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one queue card, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0].Text, "no longer needed") {
		t.Errorf("card must include the reason, got %q", msgs[0].Text)
	}
	if msgs[0].Actions[0].Tag != tagWithID(tagCancelApprovePrefix, task.ID) {
		t.Errorf("first action = %s", msgs[0].Actions[0].Tag)
	}
}

func TestExtensionQueue_ListsOpenRequests(t *testing.T) {
	engine, adapter, gdb := newTestEngine(t)
	seedDoer(t, gdb, "JOHN DOE", "Sales dept", "doer-ch")
	task := seedTask(t, gdb, "JOHN DOE", "Extend me", models.TaskPending, nil)
	requested := time.Date(2099, 2, 1, 0, 0, 0, 0, time.UTC)
	gdb.Model(task).Update("extension_requested_date", requested)
	seedTask(t, gdb, "JOHN DOE", "Plain task", models.TaskPending, nil)

	sendAction(engine, eaChannel, tagEAExtQueue)

	msgs := adapter.SentTo(eaChannel)
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one queue card, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0].Text, "2099-02-01") {
		t.Errorf("card must include the requested date, got %q", msgs[0].Text)
	}
}

func TestStatusList_FiltersByStatus(t *testing.T) {
	engine, adapter, gdb := newTestEngine(t)
	seedDoer(t, gdb, "JOHN DOE", "Sales dept", "doer-ch")
	seedTask(t, gdb, "JOHN DOE", "Open work", models.TaskPending, nil)
	seedTask(t, gdb, "JOHN DOE", "Shipped work", models.TaskCompleted, nil)

	sendAction(engine, eaChannel, tagStatusCompleted)

	last := lastSentTo(t, adapter, eaChannel)
	if !strings.Contains(last.Text, "Shipped work") {
		t.Errorf("expected completed task, got %q", last.Text)
	}
	if strings.Contains(last.Text, "Open work") {
		t.Error("completed list must not include pending tasks")
	}
}

func TestStatusList_EmptyState(t *testing.T) {
	engine, adapter, _ := newTestEngine(t)

	sendAction(engine, eaChannel, tagStatusCanceled)
	last := lastSentTo(t, adapter, eaChannel)
	if !strings.Contains(last.Text, "No canceled tasks") {
		t.Errorf("expected empty-state message, got %q", last.Text)
	}
}

func TestStatusMenu_BossAllowed(t *testing.T) {
	engine, adapter, _ := newTestEngine(t)

	sendAction(engine, bossChannel, tagStatus)
	last := lastSentTo(t, adapter, bossChannel)
	if len(last.Actions) != 4 {
		t.Fatalf("expected 4 status actions, got %+v", last.Actions)
	}
}
