// Package store is the persistence layer. It holds the only database handle
// in the process; every component that needs storage receives a *Store
// explicitly instead of reaching for a global.
package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dndsim/internal/models"
)

// ErrNotFound is returned when a requested record does not exist. Callers
// decide whether that maps to a 404 or a 403 for the requester.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "store: CreateUser")
	}
	return nil
}

// UserByLogin looks a user up by email or username in a single query.
func (s *Store) UserByLogin(ctx context.Context, emailOrUsername string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("email = ? OR username = ?", emailOrUsername, emailOrUsername).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "store: UserByLogin")
	}
	return &u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "store: UserByEmail")
	}
	return &u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "store: UserByUsername")
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "store: UserByID")
	}
	return &u, nil
}

// ---- campaigns ----

func (s *Store) CreateCampaign(ctx context.Context, c *models.Campaign) error {
	if c.LastPlayed.IsZero() {
		c.LastPlayed = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return errors.Wrap(err, "store: CreateCampaign")
	}
	return nil
}

// CampaignsByOwner lists a user's campaigns most-recently-played first,
// with the campaign's character name joined in when a sheet exists.
func (s *Store) CampaignsByOwner(ctx context.Context, ownerID uint) ([]models.CampaignSummary, error) {
	var rows []models.CampaignSummary
	err := s.db.WithContext(ctx).
		Table("campaigns").
		Select("campaigns.*, character_sheets.character_name").
		Joins("LEFT JOIN character_sheets ON campaigns.id = character_sheets.campaign_id").
		Where("campaigns.user_id = ?", ownerID).
		Order("campaigns.last_played DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "store: CampaignsByOwner")
	}
	return rows, nil
}

// CampaignByID performs no ownership check; that lives at the HTTP layer so
// a foreign campaign can be rejected with 403 rather than 404.
func (s *Store) CampaignByID(ctx context.Context, id uint) (*models.Campaign, error) {
	var c models.Campaign
	err := s.db.WithContext(ctx).First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "store: CampaignByID")
	}
	return &c, nil
}

func (s *Store) UpdateCampaign(ctx context.Context, c *models.Campaign) error {
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return errors.Wrap(err, "store: UpdateCampaign")
	}
	return nil
}

// DeleteCampaign removes the campaign row; sheets and messages go with it
// via the foreign-key cascade.
func (s *Store) DeleteCampaign(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Campaign{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "store: DeleteCampaign")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastPlayed stamps the campaign's last_played to now. Concurrent
// turns race on this column; last write wins.
func (s *Store) TouchLastPlayed(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", id).
		Update("last_played", time.Now()).Error
	if err != nil {
		return errors.Wrap(err, "store: TouchLastPlayed")
	}
	return nil
}

// ---- character sheets ----

// UpsertCharacter creates the campaign's sheet or overwrites the existing
// one. campaign_id is unique, so concurrent writes resolve in the conflict
// clause instead of racing a lookup.
func (s *Store) UpsertCharacter(ctx context.Context, sheet *models.CharacterSheet) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "campaign_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"character_name", "race", "class", "level",
				"strength", "dexterity", "constitution",
				"intelligence", "wisdom", "charisma",
				"hit_points", "armor_class", "background",
			}),
		}).
		Create(sheet).Error
	if err != nil {
		return errors.Wrap(err, "store: UpsertCharacter")
	}
	// On the update path the insert's generated values don't apply; reload
	// so the caller sees the row that actually won.
	var saved models.CharacterSheet
	if err := s.db.WithContext(ctx).
		Where("campaign_id = ?", sheet.CampaignID).
		First(&saved).Error; err != nil {
		return errors.Wrap(err, "store: UpsertCharacter reload")
	}
	*sheet = saved
	return nil
}

func (s *Store) CharacterByCampaign(ctx context.Context, campaignID uint) (*models.CharacterSheet, error) {
	var sheet models.CharacterSheet
	err := s.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		First(&sheet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "store: CharacterByCampaign")
	}
	return &sheet, nil
}

// ---- chat messages ----

func (s *Store) AppendMessage(ctx context.Context, m *models.ChatMessage) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return errors.Wrap(err, "store: AppendMessage")
	}
	return nil
}

// RecentMessages returns up to limit of the campaign's newest messages in
// chronological order.
func (s *Store) RecentMessages(ctx context.Context, campaignID uint, limit int) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := s.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, errors.Wrap(err, "store: RecentMessages")
	}
	// Newest-first from the query, oldest-first for the caller.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
