// Package bot implements the conversational workflow engine: per-channel
// sessions, role gates, the task lifecycle state machine, the guided
// workflows, and the notification fan-out they require.
package bot

import (
	"sync"
	"time"
)

// Kind identifies which workflow a session belongs to.
type Kind string

const (
	KindAssignment       Kind = "assignment"
	KindBroadcast        Kind = "broadcast"
	KindExtensionRequest Kind = "extension-request"
	KindCancelRequest    Kind = "cancellation-request"
	KindRegistration     Kind = "registration"
	KindDepartmentChange Kind = "department-change"
)

// Workflow steps. Each workflow only ever observes its own steps; the
// session manager rejects events whose expected step does not match.
const (
	StepChooseDepartment = "choose_department"
	StepChooseDoer       = "choose_doer"
	StepWaitingTask      = "waiting_task"
	StepWaitingUrgency   = "waiting_urgency"
	StepWaitingDueDate   = "waiting_due_date"
	StepReviewTask       = "review_task"
	StepAddAnother       = "add_another_task"

	StepWaitingBroadcast = "waiting_broadcast"
	StepConfirmBroadcast = "confirm_broadcast"

	StepWaitingPayload = "waiting_payload"

	StepOfferRegister = "offer_register"
	StepWaitingName   = "waiting_name"
	StepKeepOrChange  = "keep_or_change"
)

// Session is the transient per-channel state of one in-flight workflow.
// It is owned by the SessionManager; handlers receive copies and mutate
// through Advance only.
type Session struct {
	Kind Kind
	Step string

	// Assignment draft.
	Department  string
	DoerID      uint
	DoerName    string
	DoerChannel string
	Description string
	Urgency     string
	DueDate     *time.Time

	// Extension / cancellation target.
	TaskID uint

	// Registration draft.
	RequestedName       string
	RequestedDepartment string

	// Broadcast draft.
	Draft string
}

// SessionManager owns one mutable session per actor channel and enforces
// at-most-one-active-workflow-per-channel. All mutation goes through
// Start, Advance, and Clear.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates an empty SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Start installs a fresh session for the channel, unconditionally
// discarding any existing one. No fields leak between workflow kinds.
func (sm *SessionManager) Start(channel string, kind Kind, init Session) Session {
	init.Kind = kind
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s := init
	sm.sessions[channel] = &s
	return s
}

// Get returns a copy of the channel's session, if one exists.
func (sm *SessionManager) Get(channel string) (Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[channel]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Advance mutates the channel's session through patch, but only when a
// session exists and its current step matches expectedStep. Returns false
// as a no-op signal otherwise; the caller must then re-prompt or reject.
func (sm *SessionManager) Advance(channel, expectedStep string, patch func(*Session)) (Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.sessions[channel]
	if !ok || s.Step != expectedStep {
		return Session{}, false
	}
	patch(s)
	return *s, true
}

// Clear removes the channel's session. Clearing an absent session is a no-op.
func (sm *SessionManager) Clear(channel string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, channel)
}

// Active returns the number of in-flight sessions.
func (sm *SessionManager) Active() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}
