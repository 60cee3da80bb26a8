package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/chat"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/models"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/store"
)

const taskPageSize = 10

// showDoerTaskMenu answers /tasks with status filter buttons. Only a
// registered doer has tasks to list.
func (e *Engine) showDoerTaskMenu(ctx context.Context, ev chat.InboundEvent) {
	doer, err := e.doers.FindByChannel(ev.Channel)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.notifier.Reply(ctx, ev.Channel,
				"You are not registered yet. Use /register first.")
			return
		}
		e.notifier.Reply(ctx, ev.Channel, "Lookup failed, please try again.")
		return
	}

	e.notifier.Reply(ctx, ev.Channel,
		fmt.Sprintf("%s, which tasks do you want to see?", doer.Name),
		chat.Action{Label: "Pending", Tag: tagTasksPending},
		chat.Action{Label: "Completed", Tag: tagTasksCompleted},
		chat.Action{Label: "Revised", Tag: tagTasksRevised},
		chat.Action{Label: "Canceled", Tag: tagTasksCanceled},
	)
}

// showDoerTasks lists the calling doer's own tasks for the chosen status.
// Pending and revised tasks carry action buttons.
func (e *Engine) showDoerTasks(ctx context.Context, ev chat.InboundEvent) {
	doer, err := e.doers.FindByChannel(ev.Channel)
	if err != nil {
		e.notifier.Reply(ctx, ev.Channel,
			"You are not registered yet. Use /register first.")
		return
	}

	statuses, label := tasksFilterStatuses(ev.Action)
	tasks, err := e.tasks.List(store.TaskFilters{
		Statuses: statuses,
		Doer:     doer.Name,
		Limit:    taskPageSize,
	})
	if err != nil {
		e.notifier.Reply(ctx, ev.Channel, "Could not load your tasks, please try again.")
		return
	}
	if len(tasks) == 0 {
		e.notifier.Reply(ctx, ev.Channel, "No "+strings.ToLower(label)+" tasks.")
		return
	}

	actionable := ev.Action == tagTasksPending
	for i := range tasks {
		t := &tasks[i]
		if !actionable {
			e.notifier.Reply(ctx, ev.Channel, taskCard(t))
			continue
		}
		e.notifier.Reply(ctx, ev.Channel, taskCard(t),
			chat.Action{Label: "Mark as Completed", Tag: tagWithID(tagTaskDonePrefix, t.ID)},
			chat.Action{Label: "Request Extension", Tag: tagWithID(tagTaskExtPrefix, t.ID)},
			chat.Action{Label: "Request Cancellation", Tag: tagWithID(tagTaskCancelPrefix, t.ID)},
		)
	}
}

// tasksFilterStatuses maps a TASKS_* tag to the statuses it covers. The
// pending view includes revised tasks, which are still open work.
func tasksFilterStatuses(tag string) ([]string, string) {
	switch tag {
	case tagTasksCompleted:
		return []string{models.TaskCompleted}, "completed"
	case tagTasksRevised:
		return []string{models.TaskRevised}, "revised"
	case tagTasksCanceled:
		return []string{models.TaskCanceled}, "canceled"
	default:
		return []string{models.TaskPending, models.TaskRevised}, "pending"
	}
}

// showReviewerPanel answers /heybot with the reviewer's work queues.
func (e *Engine) showReviewerPanel(ctx context.Context, ev chat.InboundEvent) {
	if !e.access.IsReviewer(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "This panel is for reviewers only.")
		return
	}
	e.notifier.Reply(ctx, ev.Channel, "What would you like to review?",
		chat.Action{Label: "Cancellation Requests", Tag: tagEACancelQueue},
		chat.Action{Label: "Extension Requests", Tag: tagEAExtQueue},
		chat.Action{Label: "Task Status", Tag: tagStatus},
	)
}

// showCancelQueue lists tasks with an open cancellation request, each with
// approve and reject buttons.
func (e *Engine) showCancelQueue(ctx context.Context, ev chat.InboundEvent) {
	if !e.access.IsReviewer(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "This panel is for reviewers only.")
		return
	}

	requested := true
	tasks, err := e.tasks.List(store.TaskFilters{
		CancellationRequested: &requested,
		Limit:                 taskPageSize,
	})
	if err != nil {
		e.notifier.Reply(ctx, ev.Channel, "Could not load the queue, please try again.")
		return
	}
	if len(tasks) == 0 {
		e.notifier.Reply(ctx, ev.Channel, "No pending cancellation requests.")
		return
	}

	for i := range tasks {
		t := &tasks[i]
		body := taskCard(t)
		if t.CancellationReason != "" {
			body += "\nReason: " + t.CancellationReason
		}
		e.notifier.Reply(ctx, ev.Channel, body,
			chat.Action{Label: "Approve", Tag: tagWithID(tagCancelApprovePrefix, t.ID)},
			chat.Action{Label: "Reject", Tag: tagWithID(tagCancelRejectPrefix, t.ID)},
		)
	}
}

// showExtensionQueue lists open tasks with a requested new due date.
func (e *Engine) showExtensionQueue(ctx context.Context, ev chat.InboundEvent) {
	if !e.access.IsReviewer(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "This panel is for reviewers only.")
		return
	}

	tasks, err := e.tasks.List(store.TaskFilters{
		Statuses:            []string{models.TaskPending, models.TaskRevised},
		HasExtensionRequest: true,
		Limit:               taskPageSize,
	})
	if err != nil {
		e.notifier.Reply(ctx, ev.Channel, "Could not load the queue, please try again.")
		return
	}
	if len(tasks) == 0 {
		e.notifier.Reply(ctx, ev.Channel, "No pending extension requests.")
		return
	}

	for i := range tasks {
		t := &tasks[i]
		body := taskCard(t)
		if t.ExtensionRequestedDate != nil {
			body += "\nRequested Date: " + t.ExtensionRequestedDate.Format(dueDateLayout)
		}
		e.notifier.Reply(ctx, ev.Channel, body,
			chat.Action{Label: "Approve", Tag: tagWithID(tagExtApprovePrefix, t.ID)},
			chat.Action{Label: "Reject", Tag: tagWithID(tagExtRejectPrefix, t.ID)},
		)
	}
}

// showStatusMenu presents the by-status browse menu to boss and reviewers.
func (e *Engine) showStatusMenu(ctx context.Context, ev chat.InboundEvent) {
	if !e.access.IsReviewer(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "This view is for the boss and reviewers only.")
		return
	}
	e.notifier.Reply(ctx, ev.Channel, "Which status do you want to browse?",
		chat.Action{Label: "Pending", Tag: tagStatusPending},
		chat.Action{Label: "Completed", Tag: tagStatusCompleted},
		chat.Action{Label: "Revised", Tag: tagStatusRevised},
		chat.Action{Label: "Canceled", Tag: tagStatusCanceled},
	)
}

// showStatusList lists the newest tasks in the chosen status across all doers.
func (e *Engine) showStatusList(ctx context.Context, ev chat.InboundEvent) {
	if !e.access.IsReviewer(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "This view is for the boss and reviewers only.")
		return
	}

	var status string
	switch ev.Action {
	case tagStatusCompleted:
		status = models.TaskCompleted
	case tagStatusRevised:
		status = models.TaskRevised
	case tagStatusCanceled:
		status = models.TaskCanceled
	default:
		status = models.TaskPending
	}

	tasks, err := e.tasks.List(store.TaskFilters{
		Statuses: []string{status},
		Limit:    taskPageSize,
	})
	if err != nil {
		e.notifier.Reply(ctx, ev.Channel, "Could not load the list, please try again.")
		return
	}
	if len(tasks) == 0 {
		e.notifier.Reply(ctx, ev.Channel, "No "+status+" tasks.")
		return
	}
	e.notifier.Reply(ctx, ev.Channel, taskList(titleCase(status)+" Tasks", tasks))
}
