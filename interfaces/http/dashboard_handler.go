package http

import (
	"errors"
	"net/http"

	"creator-dashboard/domain/dto"
	"creator-dashboard/domain/model"
	"creator-dashboard/domain/repository"
	"creator-dashboard/infrastructure/logger"
	"creator-dashboard/usecase"

	"github.com/gin-gonic/gin"
)

// IDashboardHandler defines the dashboard HTTP handlers.
type IDashboardHandler interface {
	GetChannelStats(ctx *gin.Context)
	GetTopVideos(ctx *gin.Context)
	SearchVideos(ctx *gin.Context)
	RefreshVideos(ctx *gin.Context)
	GetVideoMirror(ctx *gin.Context)
}

// DashboardHandler implements the dashboard HTTP handlers.
type DashboardHandler struct {
	dashboardUseCase usecase.IDashboardUseCase
	tokenSource      repository.ITokenSource
}

// NewDashboardHandler creates a new dashboard handler instance.
func NewDashboardHandler(dashboardUseCase usecase.IDashboardUseCase, tokenSource repository.ITokenSource) IDashboardHandler {
	return &DashboardHandler{
		dashboardUseCase: dashboardUseCase,
		tokenSource:      tokenSource,
	}
}

// owner returns the authenticated user name set by the auth middleware.
func (h *DashboardHandler) owner(ctx *gin.Context) string {
	v, _ := ctx.Get("user_name")
	s, _ := v.(string)
	return s
}

// accessToken resolves the owner's upstream token. A missing token
// means the user never connected their channel, which reads the same
// as not being signed in upstream.
func (h *DashboardHandler) accessToken(ctx *gin.Context, owner string) (string, bool) {
	token, err := h.tokenSource.AccessToken(ctx.Request.Context(), owner)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("access token lookup failed")
		ctx.JSON(http.StatusUnauthorized, dto.Unauthorized)
		return "", false
	}
	return token, true
}

func forceRefresh(ctx *gin.Context) bool {
	v := ctx.Query("refresh")
	return v == "1" || v == "true"
}

// respondError maps domain failures onto the uniform error envelope.
func respondError(ctx *gin.Context, err error, fallback dto.ErrorResponse) {
	logger.GetLogger().WithField("error", err).Error("dashboard request failed")

	var pErr *model.ProviderError
	if errors.As(err, &pErr) {
		if pErr.Code == http.StatusUnauthorized || pErr.Code == http.StatusForbidden {
			ctx.JSON(http.StatusUnauthorized, dto.Unauthorized)
			return
		}
		if pErr.Provider == "youtube" {
			ctx.JSON(http.StatusInternalServerError, dto.YouTubeAPIGenericError.WithDetail(0, pErr.Message))
			return
		}
		ctx.JSON(http.StatusInternalServerError, fallback.WithDetail(0, pErr.Message))
		return
	}

	var sErr *model.StorageError
	if errors.As(err, &sErr) {
		ctx.JSON(http.StatusInternalServerError, dto.StorageGenericError)
		return
	}

	ctx.JSON(http.StatusInternalServerError, fallback)
}

// GetChannelStats handles GET /api/channel/stats
func (h *DashboardHandler) GetChannelStats(ctx *gin.Context) {
	owner := h.owner(ctx)
	token, ok := h.accessToken(ctx, owner)
	if !ok {
		return
	}
	stats, err := h.dashboardUseCase.GetChannelStats(ctx.Request.Context(), owner, token, forceRefresh(ctx))
	if err != nil {
		respondError(ctx, err, dto.StatsGenericError)
		return
	}
	ctx.JSON(http.StatusOK, dto.ChannelStatsResponse{Stats: stats})
}

// GetTopVideos handles GET /api/youtube/top-videos
func (h *DashboardHandler) GetTopVideos(ctx *gin.Context) {
	owner := h.owner(ctx)
	token, ok := h.accessToken(ctx, owner)
	if !ok {
		return
	}
	record, err := h.dashboardUseCase.GetTopVideos(ctx.Request.Context(), owner, token, forceRefresh(ctx))
	if err != nil {
		respondError(ctx, err, dto.CatchAllGenericError)
		return
	}
	ctx.JSON(http.StatusOK, dto.CachedRecordResponse{Success: true, Data: record})
}

// SearchVideos handles GET /api/youtube/search
func (h *DashboardHandler) SearchVideos(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.ErrorBody{
			Code:    http.StatusBadRequest,
			Message: "Search query is required.",
		}})
		return
	}
	owner := h.owner(ctx)
	token, ok := h.accessToken(ctx, owner)
	if !ok {
		return
	}
	record, err := h.dashboardUseCase.SearchVideos(ctx.Request.Context(), owner, token, query, forceRefresh(ctx))
	if err != nil {
		respondError(ctx, err, dto.CatchAllGenericError)
		return
	}
	ctx.JSON(http.StatusOK, dto.CachedRecordResponse{Success: true, Data: record})
}

// RefreshVideos handles POST /api/youtube/refresh
func (h *DashboardHandler) RefreshVideos(ctx *gin.Context) {
	var req dto.RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || len(req.VideoIDs) == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.ErrorBody{
			Code:    http.StatusBadRequest,
			Message: "videoIds are required.",
		}})
		return
	}
	owner := h.owner(ctx)
	token, ok := h.accessToken(ctx, owner)
	if !ok {
		return
	}
	count, err := h.dashboardUseCase.RefreshVideos(ctx.Request.Context(), owner, token, req.VideoIDs)
	if err != nil {
		respondError(ctx, err, dto.CatchAllGenericError)
		return
	}
	ctx.JSON(http.StatusOK, dto.RefreshResponse{Message: "videos refreshed", Count: count})
}

// GetVideoMirror handles GET /api/youtube/videos/:videoId
func (h *DashboardHandler) GetVideoMirror(ctx *gin.Context) {
	videoID := ctx.Param("videoId")
	video, err := h.dashboardUseCase.GetVideoMirror(ctx.Request.Context(), videoID)
	if err != nil {
		respondError(ctx, err, dto.CatchAllGenericError)
		return
	}
	if video == nil {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: dto.ErrorBody{
			Code:    http.StatusNotFound,
			Message: "Video not found.",
		}})
		return
	}
	ctx.JSON(http.StatusOK, dto.VideoMirrorResponse{Success: true, Data: video})
}
