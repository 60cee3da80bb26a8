package bot

import (
	"context"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/chat"
)

// handleAction routes a button press by its tag. Exact tags first, then
// the prefixed tags that embed a task, doer, or department identifier.
func (e *Engine) handleAction(ctx context.Context, ev chat.InboundEvent) {
	switch ev.Action {
	case tagAssign:
		e.startAssignment(ctx, ev)
		return
	case tagUrgent:
		e.assignUrgency(ctx, ev, false)
		return
	case tagDate:
		e.assignUrgency(ctx, ev, true)
		return
	case tagEdit:
		e.assignEdit(ctx, ev)
		return
	case tagSend:
		e.assignCommit(ctx, ev)
		return
	case tagAddMore:
		e.assignAddAnother(ctx, ev, true)
		return
	case tagAddDone:
		e.assignAddAnother(ctx, ev, false)
		return
	case tagBroadcast:
		e.startBroadcast(ctx, ev)
		return
	case tagBroadcastSend:
		e.broadcastSend(ctx, ev)
		return
	case tagBroadcastCancel:
		e.sessions.Clear(ev.Channel)
		e.notifier.Reply(ctx, ev.Channel, "Broadcast canceled.")
		return
	case tagStatus:
		e.showStatusMenu(ctx, ev)
		return
	case tagStatusPending, tagStatusCompleted, tagStatusRevised, tagStatusCanceled:
		e.showStatusList(ctx, ev)
		return
	case tagTasksPending, tagTasksCompleted, tagTasksRevised, tagTasksCanceled:
		e.showDoerTasks(ctx, ev)
		return
	case tagEACancelQueue:
		e.showCancelQueue(ctx, ev)
		return
	case tagEAExtQueue:
		e.showExtensionQueue(ctx, ev)
		return
	case tagRegSelf:
		e.registrationOffer(ctx, ev, true)
		return
	case tagRegDecline:
		e.registrationOffer(ctx, ev, false)
		return
	case tagRegKeep:
		e.registrationKeepOrChange(ctx, ev, true)
		return
	case tagRegChange:
		e.registrationKeepOrChange(ctx, ev, false)
		return
	}

	if dept, ok := splitTagName(ev.Action, tagDeptPrefix); ok {
		e.assignDepartment(ctx, ev, dept)
		return
	}
	if id, ok := splitTag(ev.Action, tagDoerPrefix); ok {
		e.assignDoer(ctx, ev, id)
		return
	}
	if dept, ok := splitTagName(ev.Action, tagRegDeptPrefix); ok {
		e.registrationDepartment(ctx, ev, dept)
		return
	}
	if id, ok := splitTag(ev.Action, tagTaskDonePrefix); ok {
		e.taskDone(ctx, ev, id)
		return
	}
	if id, ok := splitTag(ev.Action, tagTaskExtPrefix); ok {
		e.startRequest(ctx, ev, KindExtensionRequest, id)
		return
	}
	if id, ok := splitTag(ev.Action, tagTaskCancelPrefix); ok {
		e.startRequest(ctx, ev, KindCancelRequest, id)
		return
	}
	if id, ok := splitTag(ev.Action, tagExtApprovePrefix); ok {
		e.decideExtension(ctx, ev, id, true)
		return
	}
	if id, ok := splitTag(ev.Action, tagExtRejectPrefix); ok {
		e.decideExtension(ctx, ev, id, false)
		return
	}
	if id, ok := splitTag(ev.Action, tagCancelApprovePrefix); ok {
		e.decideCancellation(ctx, ev, id, true)
		return
	}
	if id, ok := splitTag(ev.Action, tagCancelRejectPrefix); ok {
		e.decideCancellation(ctx, ev, id, false)
		return
	}
	if id, ok := splitTag(ev.Action, tagRegApprovePrefix); ok {
		e.decideRegistration(ctx, ev, id, true)
		return
	}
	if id, ok := splitTag(ev.Action, tagRegRejectPrefix); ok {
		e.decideRegistration(ctx, ev, id, false)
		return
	}

	e.notifier.Reply(ctx, ev.Channel, "That button is no longer valid.")
}
