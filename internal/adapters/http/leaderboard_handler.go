package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flapboard/core/internal/domain/entities"
	"github.com/flapboard/core/internal/infrastructure/logger"
	"github.com/flapboard/core/internal/ports"
)

// LeaderboardHandler handles score-related requests
type LeaderboardHandler struct {
	leaderboard ports.LeaderboardService
	logger      *logger.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboard ports.LeaderboardService, logger *logger.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: leaderboard,
		logger:      logger,
	}
}

// GetScores godoc
// @Summary Top scores
// @Description Up to ten best scores, highest first
// @Tags scores
// @Produce json
// @Success 200 {array} entities.ScoreEntry
// @Router /scores [get]
func (h *LeaderboardHandler) GetScores(c echo.Context) error {
	scores := h.leaderboard.TopScores(c.Request().Context(), entities.DefaultTopScores)
	return c.JSON(http.StatusOK, scores)
}

// SubmitScore godoc
// @Summary Submit a score
// @Description Record a score, keeping the best one per player name
// @Tags scores
// @Accept json
// @Produce json
// @Param request body ports.SubmitScoreRequest true "Score"
// @Success 201 {object} ports.MessageResponse
// @Failure 400 {object} ports.ErrorResponse
// @Failure 500 {object} ports.ErrorResponse
// @Router /submit [post]
func (h *LeaderboardHandler) SubmitScore(c echo.Context) error {
	var req ports.SubmitScoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.leaderboard.Submit(c.Request().Context(), req.Name, *req.Score); err != nil {
		h.logger.WithError(err).Errorw("Submit score failed", "name", req.Name)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, ports.MessageResponse{Message: "Score saved"})
}
