package bot

import (
	"github.com/judhveer/easternpanorama-office-taskbot/internal/models"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/store"
)

// Outcome reports what a lifecycle transition did. Guard violations are
// not errors: an approval that races a previous decision must surface as
// an "already handled" message with no mutation.
type Outcome int

const (
	// OutcomeApplied means the transition mutated the task.
	OutcomeApplied Outcome = iota
	// OutcomeAlreadyDone means the task was already in the target state.
	OutcomeAlreadyDone
	// OutcomeNoRequest means no matching request was pending on the task.
	OutcomeNoRequest
)

// Lifecycle is the authoritative state machine for a task's status field.
// Every status write in the system goes through one of its methods, each
// of which performs a single store call.
type Lifecycle struct {
	tasks *store.Tasks
}

// NewLifecycle creates a Lifecycle over the given task store.
func NewLifecycle(tasks *store.Tasks) *Lifecycle {
	return &Lifecycle{tasks: tasks}
}

// Complete marks a pending or revised task completed. Re-completing an
// already-completed task is an idempotent no-op.
func (l *Lifecycle) Complete(task *models.Task) (Outcome, error) {
	if task.Status == models.TaskCompleted {
		return OutcomeAlreadyDone, nil
	}
	if err := l.tasks.Update(task, map[string]interface{}{
		"status": models.TaskCompleted,
	}); err != nil {
		return OutcomeApplied, err
	}
	task.Status = models.TaskCompleted
	return OutcomeApplied, nil
}

// ApproveExtension replaces the due date with the requested date, moves
// the task to revised, and clears the request. Guarded on the request
// date still being present: a second approval reports OutcomeNoRequest.
func (l *Lifecycle) ApproveExtension(task *models.Task) (Outcome, error) {
	if task.ExtensionRequestedDate == nil {
		return OutcomeNoRequest, nil
	}
	requested := *task.ExtensionRequestedDate
	if err := l.tasks.Update(task, map[string]interface{}{
		"due_date":                 requested,
		"status":                   models.TaskRevised,
		"extension_requested_date": nil,
	}); err != nil {
		return OutcomeApplied, err
	}
	task.DueDate = &requested
	task.Status = models.TaskRevised
	task.ExtensionRequestedDate = nil
	return OutcomeApplied, nil
}

// RejectExtension clears a pending extension request without touching the
// due date. Same guard as ApproveExtension.
func (l *Lifecycle) RejectExtension(task *models.Task) (Outcome, error) {
	if task.ExtensionRequestedDate == nil {
		return OutcomeNoRequest, nil
	}
	if err := l.tasks.Update(task, map[string]interface{}{
		"extension_requested_date": nil,
	}); err != nil {
		return OutcomeApplied, err
	}
	task.ExtensionRequestedDate = nil
	return OutcomeApplied, nil
}

// ApproveCancellation moves a pending or revised task to canceled
// (terminal) and clears the request flag. Guarded on the flag.
func (l *Lifecycle) ApproveCancellation(task *models.Task) (Outcome, error) {
	if !task.CancellationRequested {
		return OutcomeNoRequest, nil
	}
	if err := l.tasks.Update(task, map[string]interface{}{
		"status":                 models.TaskCanceled,
		"cancellation_requested": false,
	}); err != nil {
		return OutcomeApplied, err
	}
	task.Status = models.TaskCanceled
	task.CancellationRequested = false
	return OutcomeApplied, nil
}

// RejectCancellation clears a pending cancellation request, leaving the
// task in its current status. Same guard as ApproveCancellation.
func (l *Lifecycle) RejectCancellation(task *models.Task) (Outcome, error) {
	if !task.CancellationRequested {
		return OutcomeNoRequest, nil
	}
	if err := l.tasks.Update(task, map[string]interface{}{
		"cancellation_requested": false,
	}); err != nil {
		return OutcomeApplied, err
	}
	task.CancellationRequested = false
	return OutcomeApplied, nil
}
