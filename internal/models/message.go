package models

import (
	"time"
)

// Chat message types. Messages are append-only once written.
const (
	MessageTypePlayer = "player"
	MessageTypeDM     = "dm"
	MessageTypeSystem = "system"
)

type ChatMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CampaignID  uint      `gorm:"not null;index" json:"campaign_id"`
	MessageType string    `gorm:"not null;type:varchar(20)" json:"message_type"`
	Content     string    `gorm:"not null;type:text" json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
