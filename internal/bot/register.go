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

// The registration workflow lets any actor bind their chat channel to a
// doer record, self-register as a new doer, or change department. New
// registrations and department changes are held PENDING until an approved
// MIS-department actor decides; linking a channel to an existing record
// that already has a department completes immediately (a trusted link).

// startRegistration branches on what the directory knows about the channel.
func (e *Engine) startRegistration(ctx context.Context, ev chat.InboundEvent) {
	doer, err := e.doers.FindByChannel(ev.Channel)
	switch {
	case err == nil:
		e.registrationForKnown(ctx, ev, doer)
		return
	case !errors.Is(err, store.ErrNotFound):
		e.notifier.Reply(ctx, ev.Channel, "Registration lookup failed, please try again.")
		return
	}

	// Not bound by channel; try matching the platform display name
	// against an unbound directory record.
	if name := strings.ToUpper(strings.TrimSpace(ev.UserName)); name != "" {
		byName, err := e.doers.FindByName(name)
		if err == nil && byName.ChannelID == "" {
			e.linkExisting(ctx, ev, byName)
			return
		}
	}

	// Unknown actor: offer self-registration.
	e.sessions.Start(ev.Channel, KindRegistration, Session{Step: StepOfferRegister})
	e.notifier.Reply(ctx, ev.Channel,
		"You are not in the system yet. Would you like to register as a doer?",
		chat.Action{Label: "Register Me", Tag: tagRegSelf},
		chat.Action{Label: "Not Now", Tag: tagRegDecline},
	)
}

// registrationForKnown handles a /register from a channel that is already
// bound to a doer record.
func (e *Engine) registrationForKnown(ctx context.Context, ev chat.InboundEvent, doer *models.Doer) {
	if doer.ApprovalStatus == models.ApprovalPending {
		e.notifier.Reply(ctx, ev.Channel,
			"Your previous request is still awaiting MIS review. Please wait.")
		return
	}

	if doer.Department == "" {
		e.beginDepartmentSelection(ctx, ev.Channel, KindRegistration, doer.ID,
			"Select your department:")
		return
	}

	e.sessions.Start(ev.Channel, KindDepartmentChange, Session{Step: StepKeepOrChange, DoerID: doer.ID})
	e.notifier.Reply(ctx, ev.Channel,
		fmt.Sprintf("You are registered as %s in %s. Keep this department or change it?", doer.Name, doer.Department),
		chat.Action{Label: "Keep", Tag: tagRegKeep},
		chat.Action{Label: "Change", Tag: tagRegChange},
	)
}

// linkExisting binds the channel to a known-but-unbound record. With a
// department already on file the link completes immediately; otherwise the
// actor picks one, subject to MIS approval.
func (e *Engine) linkExisting(ctx context.Context, ev chat.InboundEvent, doer *models.Doer) {
	if err := e.doers.Update(doer, map[string]interface{}{
		"channel_id": ev.Channel,
	}); err != nil {
		e.notifier.Reply(ctx, ev.Channel, "Registration failed, please try again.")
		return
	}

	if doer.Department != "" {
		e.notifier.Reply(ctx, ev.Channel,
			fmt.Sprintf("%s, you are now registered.", doer.Name))
		return
	}
	e.beginDepartmentSelection(ctx, ev.Channel, KindRegistration, doer.ID,
		"Welcome back, "+doer.Name+"! Select your department:")
}

// registrationOffer handles the self-registration yes/no choice.
func (e *Engine) registrationOffer(ctx context.Context, ev chat.InboundEvent, accept bool) {
	if !accept {
		e.sessions.Clear(ev.Channel)
		e.notifier.Reply(ctx, ev.Channel, "No problem. Use /register whenever you are ready.")
		return
	}
	_, ok := e.sessions.Advance(ev.Channel, StepOfferRegister, func(s *Session) {
		s.Step = StepWaitingName
	})
	if !ok {
		e.softReset(ctx, ev.Channel)
		return
	}
	e.notifier.Reply(ctx, ev.Channel, "Please type your full name:")
}

// registrationText captures the full name during self-registration.
func (e *Engine) registrationText(ctx context.Context, ev chat.InboundEvent, session Session, text string) {
	if session.Step != StepWaitingName {
		e.softReset(ctx, ev.Channel)
		return
	}

	name := strings.ToUpper(strings.TrimSpace(text))
	if name == "" {
		e.notifier.Reply(ctx, ev.Channel, "Please type your full name:")
		return
	}
	if existing, err := e.doers.FindByName(name); err == nil && existing.ChannelID != "" {
		e.sessions.Clear(ev.Channel)
		e.notifier.Reply(ctx, ev.Channel,
			name+" is already registered. Contact MIS if this is your name.")
		return
	}

	committed, ok := e.sessions.Advance(ev.Channel, StepWaitingName, func(s *Session) {
		s.RequestedName = name
		s.Step = StepChooseDepartment
	})
	if !ok {
		e.softReset(ctx, ev.Channel)
		return
	}
	e.sendDepartmentChoices(ctx, ev.Channel, "Thanks, "+committed.RequestedName+". Now select your department:")
}

// registrationKeepOrChange handles the keep/change choice for a doer who
// already has a department.
func (e *Engine) registrationKeepOrChange(ctx context.Context, ev chat.InboundEvent, keep bool) {
	if keep {
		e.sessions.Clear(ev.Channel)
		e.notifier.Reply(ctx, ev.Channel, "Nothing changed. You are all set.")
		return
	}
	if _, ok := e.sessions.Advance(ev.Channel, StepKeepOrChange, func(s *Session) {
		s.Step = StepChooseDepartment
	}); !ok {
		e.softReset(ctx, ev.Channel)
		return
	}
	e.sendDepartmentChoices(ctx, ev.Channel, "Select your new department:")
}

// beginDepartmentSelection starts a session at the department step for an
// existing doer record.
func (e *Engine) beginDepartmentSelection(ctx context.Context, channel string, kind Kind, doerID uint, prompt string) {
	e.sessions.Start(channel, kind, Session{Step: StepChooseDepartment, DoerID: doerID})
	e.sendDepartmentChoices(ctx, channel, prompt)
}

// sendDepartmentChoices lists the known departments as buttons.
func (e *Engine) sendDepartmentChoices(ctx context.Context, channel, prompt string) {
	departments, err := e.doers.Departments()
	if err != nil || len(departments) == 0 {
		e.sessions.Clear(channel)
		e.notifier.Reply(ctx, channel, "No departments are set up yet. Please contact MIS.")
		return
	}
	actions := make([]chat.Action, 0, len(departments))
	for _, dept := range departments {
		actions = append(actions, chat.Action{Label: dept, Tag: tagRegDeptPrefix + dept})
	}
	e.notifier.Reply(ctx, channel, prompt, actions...)
}

// registrationDepartment handles the department choice for both new
// registrations and department changes, parks the record PENDING, and
// prompts every approved MIS actor to decide.
func (e *Engine) registrationDepartment(ctx context.Context, ev chat.InboundEvent, dept string) {
	session, ok := e.sessions.Advance(ev.Channel, StepChooseDepartment, func(s *Session) {
		s.RequestedDepartment = dept
	})
	if !ok || (session.Kind != KindRegistration && session.Kind != KindDepartmentChange) {
		e.softReset(ctx, ev.Channel)
		return
	}

	var doer *models.Doer
	if session.DoerID != 0 {
		existing, err := e.doers.Get(session.DoerID)
		if err != nil {
			e.softReset(ctx, ev.Channel)
			return
		}
		if err := e.doers.Update(existing, map[string]interface{}{
			"approval_status":      models.ApprovalPending,
			"requested_department": dept,
			"channel_id":           ev.Channel,
		}); err != nil {
			e.notifier.Reply(ctx, ev.Channel, "Saving the request failed, please try again.")
			return
		}
		doer = existing
	} else {
		doer = &models.Doer{
			Name:                session.RequestedName,
			ChannelID:           ev.Channel,
			IsActive:            false,
			ApprovalStatus:      models.ApprovalPending,
			RequestedDepartment: dept,
		}
		if err := e.doers.Create(doer); err != nil {
			e.notifier.Reply(ctx, ev.Channel, "Saving the registration failed, please try again.")
			return
		}
	}

	e.sessions.Clear(ev.Channel)
	e.notifier.Reply(ctx, ev.Channel,
		fmt.Sprintf("Request submitted for %s. MIS will review it shortly.", dept))

	body := fmt.Sprintf("*Registration Request*\n\nName: %s\nRequested Department: %s",
		doer.Name, dept)
	for _, mis := range e.misChannels() {
		e.notifier.Notify(ctx, notifyRegistration, mis, body, nil,
			chat.Action{Label: "Approve", Tag: tagWithID(tagRegApprovePrefix, doer.ID)},
			chat.Action{Label: "Reject", Tag: tagWithID(tagRegRejectPrefix, doer.ID)},
		)
	}
}

// decideRegistration handles an MIS approve/reject on a pending doer
// record. Deciding a record that is no longer PENDING reports
// already-processed and performs no mutation.
func (e *Engine) decideRegistration(ctx context.Context, ev chat.InboundEvent, doerID uint, approve bool) {
	if !e.access.IsReviewer(ev.Channel) {
		e.notifier.Reply(ctx, ev.Channel, "You are not authorized to review registrations.")
		return
	}

	doer, err := e.doers.Get(doerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.notifier.Reply(ctx, ev.Channel, "Registration already processed.")
			return
		}
		e.notifier.Reply(ctx, ev.Channel, "Could not load the record, please try again.")
		return
	}
	if doer.ApprovalStatus != models.ApprovalPending {
		e.notifier.Reply(ctx, ev.Channel, "Registration already processed.")
		return
	}

	if approve {
		if err := e.doers.Update(doer, map[string]interface{}{
			"department":           doer.RequestedDepartment,
			"requested_department": "",
			"approval_status":      models.ApprovalApproved,
			"is_active":            true,
			"is_approved":          true,
			"approved_by":          ev.UserName,
		}); err != nil {
			e.notifier.Reply(ctx, ev.Channel, "Updating the record failed, please try again.")
			return
		}
		e.notifier.Reply(ctx, ev.Channel, "Approved "+doer.Name+" for "+doer.RequestedDepartment+".")
		e.notifier.Notify(ctx, notifyRegistration, doer.ChannelID,
			fmt.Sprintf("Your registration for %s was approved. Welcome aboard!", doer.RequestedDepartment), nil)
		return
	}

	// Reject: a brand-new registration (no department yet) is destroyed;
	// a department change reverts to APPROVED with the old department.
	if doer.Department == "" {
		if err := e.doers.Delete(doer); err != nil {
			e.notifier.Reply(ctx, ev.Channel, "Updating the record failed, please try again.")
			return
		}
		e.notifier.Reply(ctx, ev.Channel, "Rejected and removed "+doer.Name+".")
		e.notifier.Notify(ctx, notifyRegistration, doer.ChannelID,
			"Your registration was rejected. Contact MIS if you believe this is a mistake.", nil)
		return
	}

	if err := e.doers.Update(doer, map[string]interface{}{
		"approval_status":      models.ApprovalApproved,
		"requested_department": "",
	}); err != nil {
		e.notifier.Reply(ctx, ev.Channel, "Updating the record failed, please try again.")
		return
	}
	e.notifier.Reply(ctx, ev.Channel, "Rejected the department change for "+doer.Name+".")
	e.notifier.Notify(ctx, notifyRegistration, doer.ChannelID,
		fmt.Sprintf("Your department change was rejected. You remain in %s.", doer.Department), nil)
}
