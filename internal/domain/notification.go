package domain

import "time"

// Notification types
const (
	NotificationDeleteRequest = "delete_request"
	NotificationGeneral       = "general"
)

// Notification Model: messages from residents to the admins
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SenderID  uint      `gorm:"not null;index" json:"sender_id"`
	Sender    *User     `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"size:30;default:general" json:"type"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
