package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dndsim/internal/dm"
	"dndsim/internal/models"
)

// transcriptLimit caps how many messages a transcript read returns.
const transcriptLimit = 50

type chatRequest struct {
	Message     string        `json:"message"`
	CampaignID  uint          `json:"campaignId"`
	Character   *dm.Character `json:"character"`
	ChatHistory []dm.Turn     `json:"chatHistory"`
}

// Chat produces the next DM turn for a player message and persists both
// sides of the exchange.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" || req.CampaignID == 0 {
		failValidation(c, "campaign ID and message are required")
		return
	}

	if _, ok := h.ownedCampaign(c, req.CampaignID); !ok {
		return
	}

	result := h.relay.Respond(c.Request.Context(), dm.Request{
		Message:   req.Message,
		Character: req.Character,
		History:   req.ChatHistory,
	})

	h.recordTurn(c, req.CampaignID, req.Message, result.Text)

	c.JSON(http.StatusOK, gin.H{
		"message":     "Message sent successfully",
		"response":    result.Text,
		"usingRealAI": result.UsedAI,
	})
}

// recordTurn persists both sides of the exchange and stamps last_played.
// Persistence is best-effort; a storage failure must not fail the chat
// request, so errors are logged and swallowed.
func (h *Handler) recordTurn(c *gin.Context, campaignID uint, playerMsg, dmMsg string) {
	ctx := c.Request.Context()

	if err := h.store.AppendMessage(ctx, &models.ChatMessage{
		CampaignID:  campaignID,
		MessageType: models.MessageTypePlayer,
		Content:     playerMsg,
	}); err != nil {
		h.log.Warn("failed to persist player message", zap.Uint("campaign_id", campaignID), zap.Error(err))
		return
	}
	if err := h.store.AppendMessage(ctx, &models.ChatMessage{
		CampaignID:  campaignID,
		MessageType: models.MessageTypeDM,
		Content:     dmMsg,
	}); err != nil {
		h.log.Warn("failed to persist dm message", zap.Uint("campaign_id", campaignID), zap.Error(err))
	}
	if err := h.store.TouchLastPlayed(ctx, campaignID); err != nil {
		h.log.Warn("failed to update last_played", zap.Uint("campaign_id", campaignID), zap.Error(err))
	}
}

// GetTranscript returns the campaign's most recent messages in
// chronological order.
func (h *Handler) GetTranscript(c *gin.Context) {
	id, ok := campaignID(c, "campaignId")
	if !ok {
		return
	}
	if _, ok := h.ownedCampaign(c, id); !ok {
		return
	}

	messages, err := h.store.RecentMessages(c.Request.Context(), id, transcriptLimit)
	if err != nil {
		h.failErr(c, err)
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Messages retrieved successfully",
		"messages": messages,
	})
}
