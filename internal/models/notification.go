package models

import "time"

// Notification records an outbound message sent to an actor channel.
// Delivery is best-effort; the row is written whether or not the platform
// send succeeded so the dashboard can audit the fan-out.
type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Channel   string    `gorm:"size:128;not null;index" json:"channel"`
	Kind      string    `gorm:"size:32;not null;index" json:"kind"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	TaskID    *uint     `gorm:"index" json:"taskId"`
	Delivered bool      `gorm:"default:true" json:"delivered"`
	CreatedAt time.Time `json:"createdAt"`
}
