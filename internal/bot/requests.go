package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/chat"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/models"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/store"
)

// The extension/cancellation workflow is a two-step capture: the button on
// a task message opens a session carrying the task id, and the next
// free-text event from the channel is the payload (a due date for
// extensions, a reason for cancellations). EA approval then runs the
// lifecycle guards.

// startRequest opens an extension or cancellation capture session. The
// actor must be a registered doer and the task's assignee; a failed check
// creates no session.
func (e *Engine) startRequest(ctx context.Context, ev chat.InboundEvent, kind Kind, taskID uint) {
	doer, err := e.doers.FindByChannel(ev.Channel)
	if err != nil {
		e.notifier.Reply(ctx, ev.Channel, "You are not registered. Use /register first.")
		return
	}
	task, err := e.tasks.Get(taskID)
	if err != nil || task.Doer != doer.Name {
		e.notifier.Reply(ctx, ev.Channel, "Task not found or not assigned to you.")
		return
	}

	e.sessions.Start(ev.Channel, kind, Session{Step: StepWaitingPayload, TaskID: taskID})

	if kind == KindExtensionRequest {
		e.notifier.Reply(ctx, ev.Channel,
			"Please enter the new due date for your extension as YYYY-MM-DD (or /cancel to abort).")
		return
	}
	e.notifier.Reply(ctx, ev.Channel,
		"Please type your reason for cancelling this task (or /cancel to abort).")
}

// requestText captures the payload for an in-flight request session.
func (e *Engine) requestText(ctx context.Context, ev chat.InboundEvent, session Session, text string) {
	if session.Step != StepWaitingPayload {
		e.softReset(ctx, ev.Channel)
		return
	}

	// The requester must be the task's assigned doer, matched by resolved
	// doer name rather than raw channel id.
	doer, err := e.doers.FindByChannel(ev.Channel)
	if err != nil {
		e.sessions.Clear(ev.Channel)
		e.notifier.Reply(ctx, ev.Channel, "You are not registered. Use /register first.")
		return
	}
	task, err := e.tasks.Get(session.TaskID)
	if err != nil || task.Doer != doer.Name {
		e.sessions.Clear(ev.Channel)
		e.notifier.Reply(ctx, ev.Channel, "Task not found or not assigned to you.")
		return
	}
	if task.Status == models.TaskCompleted {
		e.sessions.Clear(ev.Channel)
		e.notifier.Reply(ctx, ev.Channel, "Task already completed.")
		return
	}

	switch session.Kind {
	case KindExtensionRequest:
		e.captureExtension(ctx, ev, task, doer.Name, text)
	case KindCancelRequest:
		e.captureCancellation(ctx, ev, task, doer.Name, text)
	}
}

// captureExtension validates the requested date, records it on the task,
// and notifies the reviewers with approve/reject actions.
func (e *Engine) captureExtension(ctx context.Context, ev chat.InboundEvent, task *models.Task, doerName, text string) {
	date, err := ParseDueDate(text, timeNow())
	if err != nil {
		if errors.Is(err, ErrPastDate) {
			e.notifier.Reply(ctx, ev.Channel, "That date is in the past. Please enter today or a future date as YYYY-MM-DD.")
		} else {
			e.notifier.Reply(ctx, ev.Channel, "Invalid date. Please type it as YYYY-MM-DD (e.g. 2026-07-15).")
		}
		return
	}

	if err := e.tasks.Update(task, map[string]interface{}{
		"extension_requested_date": date,
	}); err != nil {
		e.notifier.Reply(ctx, ev.Channel, "Saving the request failed, please try again.")
		return
	}
	task.ExtensionRequestedDate = &date
	e.sessions.Clear(ev.Channel)

	e.notifier.Reply(ctx, ev.Channel,
		fmt.Sprintf("Extension requested for %s. The EA will review your request.", date.Format(dueDateLayout)))

	body := fmt.Sprintf("*Extension Requested*\n\nDoer: %s\nTask ID: %d\nTask: %s\nRequested Date: %s",
		doerName, task.ID, task.Description, date.Format(dueDateLayout))
	for _, reviewer := range e.reviewerChannels() {
		e.notifier.Notify(ctx, notifyExtension, reviewer, body, &task.ID,
			chat.Action{Label: "Approve Extension", Tag: tagWithID(tagExtApprovePrefix, task.ID)},
			chat.Action{Label: "Reject Extension", Tag: tagWithID(tagExtRejectPrefix, task.ID)},
		)
	}
}

// captureCancellation records the reason and flag on the task and
// notifies the reviewers with approve/reject actions.
func (e *Engine) captureCancellation(ctx context.Context, ev chat.InboundEvent, task *models.Task, doerName, reason string) {
	if err := e.tasks.Update(task, map[string]interface{}{
		"cancellation_requested": true,
		"cancellation_reason":    reason,
	}); err != nil {
		e.notifier.Reply(ctx, ev.Channel, "Saving the request failed, please try again.")
		return
	}
	task.CancellationRequested = true
	task.CancellationReason = reason
	e.sessions.Clear(ev.Channel)

	e.notifier.Reply(ctx, ev.Channel, "Cancellation request submitted. Awaiting EA review.")

	body := fmt.Sprintf("*Cancellation Requested*\n\nDoer: %s\nTask ID: %d\nTask: %s\nReason: %s",
		doerName, task.ID, task.Description, reason)
	for _, reviewer := range e.reviewerChannels() {
		e.notifier.Notify(ctx, notifyCancellation, reviewer, body, &task.ID,
			chat.Action{Label: "Approve Cancel", Tag: tagWithID(tagCancelApprovePrefix, task.ID)},
			chat.Action{Label: "Reject Cancel", Tag: tagWithID(tagCancelRejectPrefix, task.ID)},
		)
	}
}

// taskDone handles the doer's "mark as completed" button. Idempotent: an
// already-completed task reports so without a second EA notification.
func (e *Engine) taskDone(ctx context.Context, ev chat.InboundEvent, taskID uint) {
	doer, err := e.doers.FindByChannel(ev.Channel)
	if err != nil {
		e.notifier.Reply(ctx, ev.Channel, "You are not registered. Use /register first.")
		return
	}
	task, err := e.tasks.Get(taskID)
	if err != nil || task.Doer != doer.Name {
		e.notifier.Reply(ctx, ev.Channel, "Task not found or not assigned to you.")
		return
	}

	outcome, err := e.lifecycle.Complete(task)
	if err != nil {
		e.notifier.Reply(ctx, ev.Channel, "Updating the task failed, please try again.")
		return
	}
	if outcome == OutcomeAlreadyDone {
		e.notifier.Reply(ctx, ev.Channel, "Already marked as completed.")
		return
	}

	e.notifier.Reply(ctx, ev.Channel, "Congrats! Task marked as completed.")
	body := fmt.Sprintf("*Task Completed*\n\nDoer: %s\nTask ID: %d\nTask: %s",
		doer.Name, task.ID, task.Description)
	for _, reviewer := range e.reviewerChannels() {
		e.notifier.Notify(ctx, notifyCompleted, reviewer, body, &task.ID)
	}
}

// decideExtension handles an EA approve/reject of an extension request.
func (e *Engine) decideExtension(ctx context.Context, ev chat.InboundEvent, taskID uint, approve bool) {
	if !e.access.IsReviewer(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "You are not authorized to review extension requests.")
		return
	}
	task, err := e.tasks.Get(taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.notifier.Reply(ctx, ev.Channel, "Task not found.")
			return
		}
		e.notifier.Reply(ctx, ev.Channel, "Could not load the task, please try again.")
		return
	}

	var outcome Outcome
	if approve {
		outcome, err = e.lifecycle.ApproveExtension(task)
	} else {
		outcome, err = e.lifecycle.RejectExtension(task)
	}
	if err != nil {
		e.notifier.Reply(ctx, ev.Channel, "Updating the task failed, please try again.")
		return
	}
	if outcome == OutcomeNoRequest {
		e.notifier.Reply(ctx, ev.Channel, "No extension requested for this task. It was already processed.")
		return
	}

	if approve {
		e.notifier.Reply(ctx, ev.Channel, fmt.Sprintf("Extension approved for task ID %d.", task.ID))
		e.notifyDoerByName(ctx, task.Doer, notifyDecision, &task.ID,
			fmt.Sprintf("*Extension Approved*\n\n%s\nNew Due Date: %s", task.Description, formatDue(task.DueDate)))
		return
	}
	e.notifier.Reply(ctx, ev.Channel, fmt.Sprintf("Extension rejected for task ID %d.", task.ID))
	e.notifyDoerByName(ctx, task.Doer, notifyDecision, &task.ID,
		"*Extension Request Rejected*\n\n"+task.Description)
}

// decideCancellation handles an EA approve/reject of a cancellation request.
func (e *Engine) decideCancellation(ctx context.Context, ev chat.InboundEvent, taskID uint, approve bool) {
	if !e.access.IsReviewer(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "You are not authorized to review cancellation requests.")
		return
	}
	task, err := e.tasks.Get(taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.notifier.Reply(ctx, ev.Channel, "Task not found.")
			return
		}
		e.notifier.Reply(ctx, ev.Channel, "Could not load the task, please try again.")
		return
	}

	var outcome Outcome
	if approve {
		outcome, err = e.lifecycle.ApproveCancellation(task)
	} else {
		outcome, err = e.lifecycle.RejectCancellation(task)
	}
	if err != nil {
		e.notifier.Reply(ctx, ev.Channel, "Updating the task failed, please try again.")
		return
	}
	if outcome == OutcomeNoRequest {
		e.notifier.Reply(ctx, ev.Channel, "No cancellation requested for this task. It was already processed.")
		return
	}

	if approve {
		e.notifier.Reply(ctx, ev.Channel, fmt.Sprintf("Task ID %d canceled.", task.ID))
		e.notifyDoerByName(ctx, task.Doer, notifyDecision, &task.ID,
			fmt.Sprintf("Your cancellation request was approved for task ID %d. The task is now canceled.\n\nTask: %s", task.ID, task.Description))
		return
	}
	e.notifier.Reply(ctx, ev.Channel, fmt.Sprintf("Cancellation rejected for task ID %d.", task.ID))
	e.notifyDoerByName(ctx, task.Doer, notifyDecision, &task.ID,
		fmt.Sprintf("Your cancellation request was rejected for task ID %d.\n\nTask: %s", task.ID, task.Description))
}

// notifyDoerByName resolves a doer's channel by name and notifies them.
// Doers without a bound channel are silently skipped.
func (e *Engine) notifyDoerByName(ctx context.Context, name, kind string, taskID *uint, body string) {
	doer, err := e.doers.FindByName(name)
	if err != nil || doer.ChannelID == "" {
		return
	}
	e.notifier.Notify(ctx, kind, doer.ChannelID, body, taskID)
}
