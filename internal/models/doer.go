package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Doer approval statuses. ApprovalStatus is authoritative; the IsApproved
// boolean is a dashboard convenience and is never consulted by access checks.
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// Doer is a worker who can receive tasks. Name is the natural key used to
// cross-reference tasks; it is stored uppercased. ChannelID is empty until
// the doer self-registers from their own chat channel.
type Doer struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                string    `gorm:"size:128;not null;uniqueIndex" json:"name"`
	ChannelID           string    `gorm:"size:128;index" json:"channelId"`
	IsActive            bool      `gorm:"default:true" json:"isActive"`
	Department          string    `gorm:"size:64;index" json:"department"`
	ApprovalStatus      string    `gorm:"size:16;not null;default:PENDING" json:"approvalStatus"`
	RequestedDepartment string    `gorm:"size:64" json:"requestedDepartment"`
	ApprovedBy          string    `gorm:"size:128" json:"approvedBy"`
	IsApproved          bool      `gorm:"default:false" json:"isApproved"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// BeforeSave uppercases the name so lookups by name are case-insensitive.
func (d *Doer) BeforeSave(tx *gorm.DB) error {
	d.Name = strings.ToUpper(strings.TrimSpace(d.Name))
	return nil
}
