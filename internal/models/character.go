package models

import (
	"time"
)

type CharacterSheet struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CampaignID    uint      `gorm:"not null;uniqueIndex" json:"campaign_id"`
	CharacterName string    `gorm:"not null;type:varchar(255)" json:"character_name"`
	Race          string    `gorm:"not null;type:varchar(100)" json:"race"`
	Class         string    `gorm:"not null;type:varchar(100)" json:"class"`
	Level         int       `gorm:"default:1" json:"level"`
	Strength      int       `gorm:"default:10" json:"strength"`
	Dexterity     int       `gorm:"default:10" json:"dexterity"`
	Constitution  int       `gorm:"default:10" json:"constitution"`
	Intelligence  int       `gorm:"default:10" json:"intelligence"`
	Wisdom        int       `gorm:"default:10" json:"wisdom"`
	Charisma      int       `gorm:"default:10" json:"charisma"`
	HitPoints     int       `gorm:"default:10" json:"hit_points"`
	ArmorClass    int       `gorm:"default:10" json:"armor_class"`
	Background    string    `gorm:"type:text" json:"background"`
	CreatedAt     time.Time `json:"created_at"`
}

func (CharacterSheet) TableName() string {
	return "character_sheets"
}

// ApplyDefaults seeds the standard starting values for fields the client
// left at zero.
func (c *CharacterSheet) ApplyDefaults() {
	if c.Level == 0 {
		c.Level = 1
	}
	for _, score := range []*int{
		&c.Strength, &c.Dexterity, &c.Constitution,
		&c.Intelligence, &c.Wisdom, &c.Charisma,
		&c.HitPoints, &c.ArmorClass,
	} {
		if *score == 0 {
			*score = 10
		}
	}
}
