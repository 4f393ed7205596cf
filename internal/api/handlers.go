package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dndsim/internal/auth"
	"dndsim/internal/dm"
	"dndsim/internal/models"
)

// Store is the persistence surface the handlers consume. The gorm-backed
// *store.Store satisfies it; tests supply an in-memory fake.
type Store interface {
	UserByID(ctx context.Context, id uint) (*models.User, error)

	CreateCampaign(ctx context.Context, c *models.Campaign) error
	CampaignsByOwner(ctx context.Context, ownerID uint) ([]models.CampaignSummary, error)
	CampaignByID(ctx context.Context, id uint) (*models.Campaign, error)
	UpdateCampaign(ctx context.Context, c *models.Campaign) error
	DeleteCampaign(ctx context.Context, id uint) error
	TouchLastPlayed(ctx context.Context, id uint) error

	UpsertCharacter(ctx context.Context, sheet *models.CharacterSheet) error
	CharacterByCampaign(ctx context.Context, campaignID uint) (*models.CharacterSheet, error)

	AppendMessage(ctx context.Context, m *models.ChatMessage) error
	RecentMessages(ctx context.Context, campaignID uint, limit int) ([]models.ChatMessage, error)
}

// Handler carries the collaborators for all routes. Everything is injected
// at startup; a missing collaborator is a wiring bug, not a runtime
// fallback.
type Handler struct {
	store  Store
	auth   *auth.Service
	relay  *dm.Relay
	log    *zap.Logger
	env    string
	isProd bool
}

func NewHandler(store Store, authSvc *auth.Service, relay *dm.Relay, log *zap.Logger, env string, isProd bool) *Handler {
	return &Handler{
		store:  store,
		auth:   authSvc,
		relay:  relay,
		log:    log,
		env:    env,
		isProd: isProd,
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.env,
	})
}
