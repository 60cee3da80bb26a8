// Package models defines the GORM models shared across the task bot.
package models

import "time"

// Task statuses. Transitions between them are owned by the lifecycle
// engine in internal/bot; nothing else writes the status column.
const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
	TaskRevised   = "revised"
	TaskCanceled  = "canceled"
)

// Task urgencies.
const (
	UrgencyUrgent    = "urgent"
	UrgencyScheduled = "scheduled"
)

// Task is a unit of delegated work. Doer holds the worker's uppercased
// name rather than a foreign key: tasks deliberately keep their historical
// assignee even if the doer record is later renamed or removed.
type Task struct {
	ID                     uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Description            string     `gorm:"type:text;not null" json:"description"`
	Doer                   string     `gorm:"size:128;not null;index" json:"doer"`
	Department             string     `gorm:"size:64" json:"department"`
	Urgency                string     `gorm:"size:16;not null" json:"urgency"`
	DueDate                *time.Time `json:"dueDate"`
	Status                 string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	CancellationRequested  bool       `gorm:"default:false" json:"cancellationRequested"`
	CancellationReason     string     `gorm:"type:text" json:"cancellationReason"`
	ExtensionRequestedDate *time.Time `json:"extensionRequestedDate"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}
