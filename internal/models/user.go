package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;type:varchar(20)" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null;type:varchar(255)" json:"email"`
	PasswordHash string    `gorm:"not null;type:varchar(255)" json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	Campaigns []Campaign `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"campaigns,omitempty"`
}

func (User) TableName() string {
	return "users"
}
