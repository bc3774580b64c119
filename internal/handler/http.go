package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"novel-relay/internal/domain"
	"novel-relay/internal/middleware"
	"novel-relay/internal/models"
	"novel-relay/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RoundHandler обрабатывает HTTP-запросы движка раундов.
type RoundHandler struct {
	rounds      service.RoundService
	history     service.HistoryService
	voteRecords service.VoteRecordService
	verifier    middleware.TokenVerifier
	voteLimiter *middleware.RateLimiter
	logger      *zap.Logger
}

// NewRoundHandler создаёт RoundHandler. voteLimiter может быть nil.
func NewRoundHandler(
	rounds service.RoundService,
	history service.HistoryService,
	voteRecords service.VoteRecordService,
	verifier middleware.TokenVerifier,
	voteLimiter *middleware.RateLimiter,
	logger *zap.Logger,
) *RoundHandler {
	return &RoundHandler{
		rounds:      rounds,
		history:     history,
		voteRecords: voteRecords,
		verifier:    verifier,
		voteLimiter: voteLimiter,
		logger:      logger.Named("RoundHandler"),
	}
}

// RegisterRoutes регистрирует маршруты историй и личного кабинета.
func (h *RoundHandler) RegisterRoutes(e *echo.Echo) {
	authMiddleware := echo.WrapMiddleware(middleware.AuthMiddleware(h.verifier, h.logger))

	voteMiddlewares := []echo.MiddlewareFunc{}
	if h.voteLimiter != nil {
		voteMiddlewares = append(voteMiddlewares, h.voteLimiter.Middleware())
	}

	stories := e.Group("/stories", authMiddleware)
	{
		stories.POST("", h.createStory)
		stories.GET("/:id", h.getStory)
		stories.POST("/:id/extensions", h.submitExtension)
		stories.DELETE("/:id/extensions/:extensionId", h.withdrawExtension)
		stories.PATCH("/:id/extensions/:extensionId/vote", h.castVote, voteMiddlewares...)
		stories.GET("/:id/standings", h.getStandings)
		stories.POST("/:id/merge", h.mergeRound)
		stories.POST("/:id/chapters", h.openChapter)
		stories.PATCH("/:id/clear", h.clearRound)
		stories.PATCH("/:id/window", h.rescheduleWindow)
		stories.GET("/:id/window", h.getWindow)
	}

	me := e.Group("/me", authMiddleware)
	{
		me.GET("/extensions", h.listExtensionHistory)
		me.GET("/extensions/latest", h.listLatestExtensions)
		me.DELETE("/extensions/:entryId", h.deleteHistoryEntry)
		me.GET("/votes", h.listVoteRecords)
		me.GET("/votes/:storyId/:extensionId", h.hasVoteRecord)
		me.DELETE("/votes/:recordId", h.deleteVoteRecord)
	}
}

func (h *RoundHandler) createStory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	var req createStoryRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return handleServiceError(c, err)
	}

	story, err := h.rounds.CreateStory(c.Request().Context(), domain.NewStoryParams{
		MainAuthorID:    userID,
		Title:           req.Title,
		ChapterName:     req.ChapterName,
		Content:         req.Content,
		TotalWordCount:  req.TotalWordCount,
		WordsPerChapter: req.WordsPerChapter,
		ExtendWordLimit: req.ExtendWordLimit,
		VoteTime:        time.Duration(req.VoteTimeSeconds) * time.Second,
	})
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, story)
}

func (h *RoundHandler) getStory(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}
	story, err := h.rounds.GetStory(c.Request().Context(), storyID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, story)
}

func (h *RoundHandler) submitExtension(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}
	var req submitExtensionRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return handleServiceError(c, err)
	}

	extID, err := h.rounds.SubmitExtension(c.Request().Context(), storyID, userID, req.ChapterName, req.Content)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, submitExtensionResponse{ExtensionID: extID})
}

func (h *RoundHandler) withdrawExtension(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}
	extID, err := parseUUIDParam(c, "extensionId")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.rounds.WithdrawExtension(c.Request().Context(), storyID, extID, userID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RoundHandler) castVote(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}
	extID, err := parseUUIDParam(c, "extensionId")
	if err != nil {
		return handleServiceError(c, err)
	}
	var req castVoteRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return handleServiceError(c, err)
	}

	result, err := h.rounds.CastVote(c.Request().Context(), storyID, extID, userID, req.Delta)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *RoundHandler) getStandings(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}
	standings, err := h.rounds.Standings(c.Request().Context(), storyID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toStandingResponses(standings))
}

// mergeRound закрывает раунд. Без extensionId побеждает лидер.
func (h *RoundHandler) mergeRound(c echo.Context) error {
	storyID, err := h.authorizeManage(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	var req mergeRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return handleServiceError(c, err)
	}

	ctx := c.Request().Context()
	var result *service.MergeResult
	if req.ExtensionID != nil {
		result, err = h.rounds.MergeWinner(ctx, storyID, *req.ExtensionID)
	} else {
		result, err = h.rounds.MergeLeader(ctx, storyID)
	}
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *RoundHandler) openChapter(c echo.Context) error {
	storyID, err := h.authorizeManage(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	var req openChapterRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return handleServiceError(c, err)
	}

	chapter, err := h.rounds.OpenChapter(c.Request().Context(), storyID, req.Content, req.ChapterName)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, chapter)
}

func (h *RoundHandler) clearRound(c echo.Context) error {
	storyID, err := h.authorizeManage(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	cleared, err := h.rounds.ClearRound(c.Request().Context(), storyID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, clearRoundResponse{Cleared: cleared})
}

func (h *RoundHandler) rescheduleWindow(c echo.Context) error {
	storyID, err := h.authorizeManage(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	var req rescheduleWindowRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return handleServiceError(c, err)
	}

	if err := h.rounds.RescheduleWindow(c.Request().Context(), storyID, req.VoteStart, req.VoteEnd); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RoundHandler) getWindow(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}
	status, err := h.rounds.WindowStatus(c.Request().Context(), storyID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toWindowStatusResponse(status))
}

func (h *RoundHandler) listExtensionHistory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	views, err := h.history.ListUserExtensionHistory(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *RoundHandler) listLatestExtensions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	views, err := h.history.ListForAuthor(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *RoundHandler) deleteHistoryEntry(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	entryID, err := parseUUIDParam(c, "entryId")
	if err != nil {
		return handleServiceError(c, err)
	}
	if err := h.history.SoftDeleteHistoryEntry(c.Request().Context(), userID, entryID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RoundHandler) listVoteRecords(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	records, err := h.voteRecords.ListVoteRecords(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, records)
}

func (h *RoundHandler) hasVoteRecord(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "storyId")
	if err != nil {
		return handleServiceError(c, err)
	}
	extID, err := parseUUIDParam(c, "extensionId")
	if err != nil {
		return handleServiceError(c, err)
	}
	has, err := h.voteRecords.HasVoteRecord(c.Request().Context(), userID, storyID, extID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, hasVoteResponse{HasVoted: has})
}

func (h *RoundHandler) deleteVoteRecord(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	recordID, err := parseUUIDParam(c, "recordId")
	if err != nil {
		return handleServiceError(c, err)
	}
	if err := h.voteRecords.DeleteVoteRecord(c.Request().Context(), userID, recordID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// authorizeManage разбирает :id и проверяет право управлять раундом истории.
func (h *RoundHandler) authorizeManage(c echo.Context) (uuid.UUID, error) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return uuid.Nil, err
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return uuid.Nil, err
	}
	roles, _ := models.GetRolesFromContext(c.Request().Context())
	if err := h.rounds.EnsureCanManage(c.Request().Context(), storyID, userID, roles); err != nil {
		if errors.Is(err, models.ErrForbidden) {
			h.logger.Warn("Round management denied",
				zap.String("userID", userID.String()), zap.String("storyID", storyID.String()))
		}
		return uuid.Nil, err
	}
	return storyID, nil
}

func (h *RoundHandler) bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		h.logger.Debug("Failed to bind request", zap.String("path", c.Path()), zap.Error(err))
		return fmt.Errorf("%w: malformed request body", models.ErrInvalidInput)
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := models.GetUserIDFromContext(c.Request().Context())
	if !ok || userID == uuid.Nil {
		return uuid.Nil, models.ErrUnauthorized
	}
	return userID, nil
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", models.ErrInvalidInput, name)
	}
	return id, nil
}
