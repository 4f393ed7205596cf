package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"dndsim/internal/models"
)

type createCampaignRequest struct {
	Title              string `json:"title"`
	SettingDescription string `json:"setting_description"`
}

type updateCampaignRequest struct {
	Title              *string `json:"title"`
	SettingDescription *string `json:"setting_description"`
	GameState          *string `json:"game_state"`
	CharacterData      *string `json:"character_data"`
	ChatHistory        *string `json:"chat_history"`
}

// campaignID parses the :id path parameter. A non-numeric id is a 400, not
// a 404.
func campaignID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil || id <= 0 {
		failValidation(c, "campaign ID must be a number")
		return 0, false
	}
	return uint(id), true
}

// ownedCampaign loads a campaign and enforces that it belongs to the
// requester: 404 when it doesn't exist, 403 when it belongs to someone
// else.
func (h *Handler) ownedCampaign(c *gin.Context, id uint) (*models.Campaign, bool) {
	campaign, err := h.store.CampaignByID(c.Request.Context(), id)
	if err != nil {
		h.failErr(c, err)
		return nil, false
	}
	if campaign.UserID != currentUserID(c) {
		fail(c, http.StatusForbidden, "forbidden", "you do not have permission to access this campaign")
		return nil, false
	}
	return campaign, true
}

// ListCampaigns returns the caller's campaigns, most recently played first.
func (h *Handler) ListCampaigns(c *gin.Context) {
	campaigns, err := h.store.CampaignsByOwner(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.failErr(c, err)
		return
	}
	if campaigns == nil {
		campaigns = []models.CampaignSummary{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Campaigns retrieved successfully",
		"campaigns": campaigns,
	})
}

// CreateCampaign starts a new campaign in the character-creation phase.
func (h *Handler) CreateCampaign(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		failValidation(c, "campaign title is required")
		return
	}

	campaign := &models.Campaign{
		UserID:             currentUserID(c),
		Title:              req.Title,
		SettingDescription: req.SettingDescription,
		GameState:          models.GameStateCharacterCreation,
	}
	if err := h.store.CreateCampaign(c.Request.Context(), campaign); err != nil {
		h.failErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Campaign created successfully",
		"campaign": campaign,
	})
}

// GetCampaign returns one campaign owned by the caller.
func (h *Handler) GetCampaign(c *gin.Context) {
	id, ok := campaignID(c, "id")
	if !ok {
		return
	}
	campaign, ok := h.ownedCampaign(c, id)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Campaign retrieved successfully",
		"campaign": campaign,
	})
}

// UpdateCampaign applies partial updates to an owned campaign and bumps
// last_played.
func (h *Handler) UpdateCampaign(c *gin.Context) {
	id, ok := campaignID(c, "id")
	if !ok {
		return
	}
	campaign, ok := h.ownedCampaign(c, id)
	if !ok {
		return
	}

	var req updateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			failValidation(c, "campaign title is required")
			return
		}
		campaign.Title = title
	}
	if req.SettingDescription != nil {
		campaign.SettingDescription = *req.SettingDescription
	}
	if req.GameState != nil {
		if !models.ValidGameState(*req.GameState) {
			failValidation(c, "game_state must be one of character-creation, setting-selection, playing")
			return
		}
		campaign.GameState = *req.GameState
	}
	if req.CharacterData != nil {
		campaign.CharacterData = req.CharacterData
	}
	if req.ChatHistory != nil {
		campaign.ChatHistory = req.ChatHistory
	}

	campaign.LastPlayed = time.Now()
	if err := h.store.UpdateCampaign(c.Request.Context(), campaign); err != nil {
		h.failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Campaign updated successfully",
		"campaign": campaign,
	})
}

// DeleteCampaign removes an owned campaign and everything under it.
func (h *Handler) DeleteCampaign(c *gin.Context) {
	id, ok := campaignID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedCampaign(c, id); !ok {
		return
	}

	if err := h.store.DeleteCampaign(c.Request.Context(), id); err != nil {
		h.failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Campaign deleted successfully"})
}

type characterRequest struct {
	CharacterName string `json:"character_name"`
	Race          string `json:"race"`
	Class         string `json:"class"`
	Level         int    `json:"level"`
	Strength      int    `json:"strength"`
	Dexterity     int    `json:"dexterity"`
	Constitution  int    `json:"constitution"`
	Intelligence  int    `json:"intelligence"`
	Wisdom        int    `json:"wisdom"`
	Charisma      int    `json:"charisma"`
	HitPoints     int    `json:"hit_points"`
	ArmorClass    int    `json:"armor_class"`
	Background    string `json:"background"`
}

// PutCharacter creates or replaces the campaign's character sheet.
func (h *Handler) PutCharacter(c *gin.Context) {
	id, ok := campaignID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedCampaign(c, id); !ok {
		return
	}

	var req characterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}
	req.CharacterName = strings.TrimSpace(req.CharacterName)
	if req.CharacterName == "" || req.Race == "" || req.Class == "" {
		failValidation(c, "character_name, race and class are required")
		return
	}

	sheet := &models.CharacterSheet{
		CampaignID:    id,
		CharacterName: req.CharacterName,
		Race:          req.Race,
		Class:         req.Class,
		Level:         req.Level,
		Strength:      req.Strength,
		Dexterity:     req.Dexterity,
		Constitution:  req.Constitution,
		Intelligence:  req.Intelligence,
		Wisdom:        req.Wisdom,
		Charisma:      req.Charisma,
		HitPoints:     req.HitPoints,
		ArmorClass:    req.ArmorClass,
		Background:    req.Background,
	}
	sheet.ApplyDefaults()

	if err := h.store.UpsertCharacter(c.Request.Context(), sheet); err != nil {
		h.failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Character saved successfully",
		"character": sheet,
	})
}

// GetCharacter returns the campaign's character sheet.
func (h *Handler) GetCharacter(c *gin.Context) {
	id, ok := campaignID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedCampaign(c, id); !ok {
		return
	}

	sheet, err := h.store.CharacterByCampaign(c.Request.Context(), id)
	if err != nil {
		h.failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"character": sheet})
}
