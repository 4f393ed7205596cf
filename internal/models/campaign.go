package models

import (
	"time"
)

// Game states a campaign moves through.
const (
	GameStateCharacterCreation = "character-creation"
	GameStateSettingSelection  = "setting-selection"
	GameStatePlaying           = "playing"
)

// ValidGameState reports whether s is one of the known campaign phases.
func ValidGameState(s string) bool {
	switch s {
	case GameStateCharacterCreation, GameStateSettingSelection, GameStatePlaying:
		return true
	}
	return false
}

type Campaign struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"not null;index" json:"user_id"`
	Title              string    `gorm:"not null;type:varchar(255)" json:"title"`
	CharacterData      *string   `gorm:"type:text" json:"character_data"`
	ChatHistory        *string   `gorm:"type:text" json:"chat_history"`
	SettingDescription string    `gorm:"type:text" json:"setting_description"`
	GameState          string    `gorm:"not null;type:varchar(50);default:'character-creation'" json:"game_state"`
	CreatedAt          time.Time `json:"created_at"`
	LastPlayed         time.Time `gorm:"not null" json:"last_played"`

	Sheets   []CharacterSheet `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE" json:"-"`
	Messages []ChatMessage    `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// CampaignSummary is a campaign row joined with its character's name, as
// returned by the campaign listing.
type CampaignSummary struct {
	ID                 uint      `json:"id"`
	UserID             uint      `json:"user_id"`
	Title              string    `json:"title"`
	CharacterData      *string   `json:"character_data"`
	ChatHistory        *string   `json:"chat_history"`
	SettingDescription string    `json:"setting_description"`
	GameState          string    `json:"game_state"`
	CreatedAt          time.Time `json:"created_at"`
	LastPlayed         time.Time `json:"last_played"`
	CharacterName      *string   `json:"character_name"`
}
