package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "giveaway-bot-backend/internal/common/errors"
	"giveaway-bot-backend/internal/common/middleware"
	"giveaway-bot-backend/internal/features/giveaway/mapper"
	"giveaway-bot-backend/internal/features/giveaway/models"
	giveawayservice "giveaway-bot-backend/internal/features/giveaway/service"
)

type GiveawayHandler struct {
	service    giveawayservice.GiveawayService
	settlement giveawayservice.SettlementService
	adminToken string
}

func NewGiveawayHandler(service giveawayservice.GiveawayService, settlement giveawayservice.SettlementService, adminToken string) *GiveawayHandler {
	return &GiveawayHandler{
		service:    service,
		settlement: settlement,
		adminToken: adminToken,
	}
}

func (h *GiveawayHandler) RegisterRoutes(router *gin.RouterGroup) {
	giveaways := router.Group("/giveaways")
	{
		giveaways.GET("/:id", h.getByID)
		giveaways.GET("/:id/participants", h.getParticipants)
		giveaways.GET("/:id/winners", h.getWinners)
	}

	admin := giveaways.Group("", middleware.AdminAuth(h.adminToken))
	{
		admin.POST("/:id/end", h.end)
		admin.POST("/:id/announce", h.announce)
	}
}

// @Summary Get giveaway
// @Description Returns a giveaway with its reward slots and the active participant count
// @Tags giveaways
// @Produce json
// @Param id path int true "Giveaway ID"
// @Success 200 {object} models.GiveawayResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid id"
// @Failure 404 {object} middleware.ErrorResponse "Giveaway not found"
// @Router /giveaways/{id} [get]
func (h *GiveawayHandler) getByID(c *gin.Context) {
	id, ok := giveawayID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	g, err := h.service.GetByID(ctx, id)
	if err != nil {
		middleware.RespondError(c, toAppError(err, id))
		return
	}

	rewards, err := h.service.GetRewards(ctx, id)
	if err != nil {
		middleware.RespondError(c, toAppError(err, id))
		return
	}

	users, err := h.service.Participants(ctx, id)
	if err != nil {
		middleware.RespondError(c, toAppError(err, id))
		return
	}

	c.JSON(http.StatusOK, mapper.ToGiveawayResponse(g, rewards, len(users)))
}

// @Summary Get participants
// @Description Lists active participants in join order
// @Tags giveaways
// @Produce json
// @Param id path int true "Giveaway ID"
// @Success 200 {object} models.ParticipantsResponse
// @Failure 404 {object} middleware.ErrorResponse "Giveaway not found"
// @Router /giveaways/{id}/participants [get]
func (h *GiveawayHandler) getParticipants(c *gin.Context) {
	id, ok := giveawayID(c)
	if !ok {
		return
	}

	users, err := h.service.Participants(c.Request.Context(), id)
	if err != nil {
		middleware.RespondError(c, toAppError(err, id))
		return
	}

	c.JSON(http.StatusOK, mapper.ToParticipantsResponse(id, users))
}

// @Summary Get winners
// @Description Returns committed winners per reward slot in slot order
// @Tags giveaways
// @Produce json
// @Param id path int true "Giveaway ID"
// @Success 200 {object} models.ResultsResponse
// @Failure 404 {object} middleware.ErrorResponse "Giveaway not found"
// @Failure 409 {object} middleware.ErrorResponse "Giveaway has not ended"
// @Router /giveaways/{id}/winners [get]
func (h *GiveawayHandler) getWinners(c *gin.Context) {
	id, ok := giveawayID(c)
	if !ok {
		return
	}

	settlement, err := h.settlement.Results(c.Request.Context(), id)
	if err != nil {
		middleware.RespondError(c, toAppError(err, id))
		return
	}

	c.JSON(http.StatusOK, mapper.ToResultsResponse(settlement))
}

// @Summary End giveaway
// @Description Settles the giveaway exactly once and announces the winners
// @Tags admin
// @Produce json
// @Security AdminToken
// @Param id path int true "Giveaway ID"
// @Success 200 {object} models.ResultsResponse
// @Failure 401 {object} middleware.ErrorResponse "Invalid admin token"
// @Failure 404 {object} middleware.ErrorResponse "Giveaway not found"
// @Failure 409 {object} middleware.ErrorResponse "Giveaway already ended"
// @Router /giveaways/{id}/end [post]
func (h *GiveawayHandler) end(c *gin.Context) {
	id, ok := giveawayID(c)
	if !ok {
		return
	}

	settlement, err := h.settlement.EndGiveaway(c.Request.Context(), id)
	if err != nil {
		middleware.RespondError(c, toAppError(err, id))
		return
	}

	c.JSON(http.StatusOK, mapper.ToResultsResponse(settlement))
}

// @Summary Republish results
// @Description Posts the committed results again, e.g. after the announcement failed
// @Tags admin
// @Produce json
// @Security AdminToken
// @Param id path int true "Giveaway ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} middleware.ErrorResponse "Giveaway not found"
// @Failure 409 {object} middleware.ErrorResponse "Giveaway has not ended"
// @Failure 502 {object} middleware.ErrorResponse "Discord rejected the announcement"
// @Router /giveaways/{id}/announce [post]
func (h *GiveawayHandler) announce(c *gin.Context) {
	id, ok := giveawayID(c)
	if !ok {
		return
	}

	if err := h.settlement.Reannounce(c.Request.Context(), id); err != nil {
		middleware.RespondError(c, toAppError(err, id))
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "results published"})
}

func giveawayID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondError(c, apperrors.NewValidationError("id", "must be a positive integer"))
		return 0, false
	}
	return id, true
}

// toAppError maps service sentinels onto API error codes.
func toAppError(err error, id int64) error {
	switch {
	case errors.Is(err, giveawayservice.ErrNotFound):
		return apperrors.NewGiveawayNotFoundError(id)
	case errors.Is(err, giveawayservice.ErrGiveawayEnded):
		return apperrors.NewGiveawayEndedError(id)
	case errors.Is(err, giveawayservice.ErrAlreadyEnded):
		return apperrors.NewGiveawayAlreadyEndedError(id)
	case errors.Is(err, giveawayservice.ErrNotEnded):
		return apperrors.NewGiveawayNotEndedError(id)
	case errors.Is(err, giveawayservice.ErrPublishFailed):
		return apperrors.NewDiscordAPIError("publish results", err)
	default:
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "Internal server error")
	}
}
