package bot

import (
	"context"
	"errors"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/chat"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/models"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/store"
)

// The assignment workflow walks the boss through building one task:
// choose_department → choose_doer → waiting_task → waiting_urgency →
// {waiting_due_date} → review_task ⇄ waiting_task → commit →
// add_another_task → {waiting_task | done}.

// startAssignment opens a fresh assignment session at department selection.
func (e *Engine) startAssignment(ctx context.Context, ev chat.InboundEvent) {
	if !e.access.IsBoss(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "Only the Boss can assign tasks.")
		return
	}

	departments, err := e.doers.Departments()
	if err != nil {
		e.notifier.Reply(ctx, ev.Channel, "Could not load departments, please try again.")
		return
	}
	if len(departments) == 0 {
		e.sessions.Clear(ev.Channel)
		e.notifier.Reply(ctx, ev.Channel, "No active doers found. Please add doers first.")
		return
	}

	e.sessions.Start(ev.Channel, KindAssignment, Session{Step: StepChooseDepartment})

	actions := make([]chat.Action, 0, len(departments))
	for _, dept := range departments {
		actions = append(actions, chat.Action{Label: dept, Tag: tagDeptPrefix + dept})
	}
	e.notifier.Reply(ctx, ev.Channel, "Select a department:", actions...)
}

// assignDepartment handles the department choice and lists its doers.
func (e *Engine) assignDepartment(ctx context.Context, ev chat.InboundEvent, dept string) {
	if !e.access.IsBoss(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "Only the Boss can assign tasks.")
		return
	}

	_, ok := e.sessions.Advance(ev.Channel, StepChooseDepartment, func(s *Session) {
		s.Department = dept
		s.Step = StepChooseDoer
	})
	if !ok {
		e.softReset(ctx, ev.Channel)
		return
	}

	doers, err := e.doers.FindAllActive(dept)
	if err != nil || len(doers) == 0 {
		e.sessions.Clear(ev.Channel)
		e.notifier.Reply(ctx, ev.Channel, "No active doers in "+dept+".")
		return
	}

	actions := make([]chat.Action, 0, len(doers))
	for _, d := range doers {
		actions = append(actions, chat.Action{Label: d.Name, Tag: tagWithID(tagDoerPrefix, d.ID)})
	}
	e.notifier.Reply(ctx, ev.Channel, "Select a doer:", actions...)
}

// assignDoer handles the doer choice and asks for the task text.
func (e *Engine) assignDoer(ctx context.Context, ev chat.InboundEvent, doerID uint) {
	if !e.access.IsBoss(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "Only the Boss can assign tasks.")
		return
	}

	doer, err := e.doers.Get(doerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.softReset(ctx, ev.Channel)
			return
		}
		e.notifier.Reply(ctx, ev.Channel, "Could not load that doer, please try again.")
		return
	}
	if !IsApprovedDoer(doer) {
		e.sessions.Clear(ev.Channel)
		e.notifier.Reply(ctx, ev.Channel, doer.Name+" is not an approved doer.")
		return
	}

	_, ok := e.sessions.Advance(ev.Channel, StepChooseDoer, func(s *Session) {
		s.DoerID = doer.ID
		s.DoerName = doer.Name
		s.DoerChannel = doer.ChannelID
		s.Step = StepWaitingTask
	})
	if !ok {
		e.softReset(ctx, ev.Channel)
		return
	}

	e.notifier.Reply(ctx, ev.Channel, "Great! Now type the task for "+doer.Name+":")
}

// assignText handles free text inside an assignment session: the task
// description or the due date, depending on the current step.
func (e *Engine) assignText(ctx context.Context, ev chat.InboundEvent, session Session, text string) {
	if !e.access.IsBoss(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "Only the Boss can perform this action.")
		return
	}

	switch session.Step {
	case StepWaitingTask:
		_, ok := e.sessions.Advance(ev.Channel, StepWaitingTask, func(s *Session) {
			s.Description = text
			s.Step = StepWaitingUrgency
		})
		if !ok {
			e.softReset(ctx, ev.Channel)
			return
		}
		e.notifier.Reply(ctx, ev.Channel, "Set urgency or due date:",
			chat.Action{Label: "Now Now (Urgent)", Tag: tagUrgent},
			chat.Action{Label: "Completed By (Pick Date)", Tag: tagDate},
		)

	case StepWaitingDueDate:
		due, err := ParseDueDate(text, timeNow())
		if err != nil {
			// Validation failure: re-prompt in place, step unchanged.
			if errors.Is(err, ErrPastDate) {
				e.notifier.Reply(ctx, ev.Channel, "That date is in the past. Please enter today or a future date as YYYY-MM-DD.")
			} else {
				e.notifier.Reply(ctx, ev.Channel, "Invalid date. Please type a real date as YYYY-MM-DD (e.g. 2026-07-15).")
			}
			return
		}
		committed, ok := e.sessions.Advance(ev.Channel, StepWaitingDueDate, func(s *Session) {
			s.DueDate = &due
			s.Urgency = models.UrgencyScheduled
			s.Step = StepReviewTask
		})
		if !ok {
			e.softReset(ctx, ev.Channel)
			return
		}
		e.showReview(ctx, ev.Channel, committed)

	default:
		e.softReset(ctx, ev.Channel)
	}
}

// assignUrgency handles the urgent/scheduled branch. Urgent forces a nil
// due date and skips straight to review; scheduled advances to date capture.
func (e *Engine) assignUrgency(ctx context.Context, ev chat.InboundEvent, scheduled bool) {
	if !e.access.IsBoss(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "Only the Boss can perform this action.")
		return
	}

	if scheduled {
		_, ok := e.sessions.Advance(ev.Channel, StepWaitingUrgency, func(s *Session) {
			s.Step = StepWaitingDueDate
		})
		if !ok {
			e.softReset(ctx, ev.Channel)
			return
		}
		e.notifier.Reply(ctx, ev.Channel, "Please type the due date (YYYY-MM-DD):")
		return
	}

	committed, ok := e.sessions.Advance(ev.Channel, StepWaitingUrgency, func(s *Session) {
		s.Urgency = models.UrgencyUrgent
		s.DueDate = nil
		s.Step = StepReviewTask
	})
	if !ok {
		e.softReset(ctx, ev.Channel)
		return
	}
	e.showReview(ctx, ev.Channel, committed)
}

// showReview presents the accumulated draft with edit/confirm actions.
func (e *Engine) showReview(ctx context.Context, channel string, s Session) {
	e.notifier.Reply(ctx, channel, reviewPreview(s),
		chat.Action{Label: "Edit Task", Tag: tagEdit},
		chat.Action{Label: "Send Task", Tag: tagSend},
	)
}

// assignEdit clears only the description and loops back to waiting_task.
func (e *Engine) assignEdit(ctx context.Context, ev chat.InboundEvent) {
	if !e.access.IsBoss(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "Only the Boss can perform this action.")
		return
	}
	_, ok := e.sessions.Advance(ev.Channel, StepReviewTask, func(s *Session) {
		s.Description = ""
		s.Step = StepWaitingTask
	})
	if !ok {
		e.softReset(ctx, ev.Channel)
		return
	}
	e.notifier.Reply(ctx, ev.Channel, "Please retype the task:")
}

// assignCommit creates the task, notifies the doer (with follow-up request
// actions) and the EA, then offers to add another task for the same doer.
func (e *Engine) assignCommit(ctx context.Context, ev chat.InboundEvent) {
	if !e.access.IsBoss(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "Only the Boss can perform this action.")
		return
	}

	session, ok := e.sessions.Get(ev.Channel)
	if !ok || session.Step != StepReviewTask || session.Description == "" {
		e.softReset(ctx, ev.Channel)
		return
	}

	task := models.Task{
		Description: session.Description,
		Doer:        session.DoerName,
		Department:  session.Department,
		Urgency:     session.Urgency,
		DueDate:     session.DueDate,
		Status:      models.TaskPending,
	}
	if err := e.tasks.Create(&task); err != nil {
		e.notifier.Reply(ctx, ev.Channel, "Saving the task failed, please try again.")
		return
	}

	e.notifier.Reply(ctx, ev.Channel, "Task sent to "+session.DoerName+".")

	// Notify the doer with the follow-up request actions.
	if session.DoerChannel != "" {
		e.notifier.Notify(ctx, notifyAssignment, session.DoerChannel,
			"*New Task Assigned*\n\n"+taskCard(&task),
			&task.ID,
			chat.Action{Label: "Mark as Completed", Tag: tagWithID(tagTaskDonePrefix, task.ID)},
			chat.Action{Label: "Request Extension", Tag: tagWithID(tagTaskExtPrefix, task.ID)},
			chat.Action{Label: "Request Cancellation", Tag: tagWithID(tagTaskCancelPrefix, task.ID)},
		)
	} else {
		e.notifier.Reply(ctx, ev.Channel, "Note: "+session.DoerName+" has not registered a chat channel and was not notified.")
	}

	// Follow-up alert to the EA, unless the doer is the EA.
	for _, ea := range e.reviewerChannels() {
		if ea == session.DoerChannel {
			continue
		}
		e.notifier.Notify(ctx, notifyFollowUp, ea,
			"*Follow-up Task Alert*\n\nDoer: "+session.DoerName+"\n"+taskCard(&task), &task.ID)
	}

	_, ok = e.sessions.Advance(ev.Channel, StepReviewTask, func(s *Session) {
		s.Step = StepAddAnother
	})
	if !ok {
		return
	}
	e.notifier.Reply(ctx, ev.Channel, "Add another task for "+session.DoerName+"?",
		chat.Action{Label: "Add Another", Tag: tagAddMore},
		chat.Action{Label: "Done", Tag: tagAddDone},
	)
}

// assignAddAnother repeats the flow for the same doer or ends the session.
// Repeating keeps the doer identity and clears the per-task draft fields.
func (e *Engine) assignAddAnother(ctx context.Context, ev chat.InboundEvent, more bool) {
	if !e.access.IsBoss(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "Only the Boss can perform this action.")
		return
	}

	if !more {
		e.sessions.Clear(ev.Channel)
		e.notifier.Reply(ctx, ev.Channel, "All done. Use /start whenever you need me.")
		return
	}

	committed, ok := e.sessions.Advance(ev.Channel, StepAddAnother, func(s *Session) {
		s.Description = ""
		s.Urgency = ""
		s.DueDate = nil
		s.Step = StepWaitingTask
	})
	if !ok {
		e.softReset(ctx, ev.Channel)
		return
	}
	e.notifier.Reply(ctx, ev.Channel, "Type the next task for "+committed.DoerName+":")
}
