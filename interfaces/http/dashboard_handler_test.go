package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"creator-dashboard/domain/model"
	httpHandler "creator-dashboard/interfaces/http"
)

// MockDashboardUseCase is a mock implementation of usecase.IDashboardUseCase
type MockDashboardUseCase struct{ mock.Mock }

func (m *MockDashboardUseCase) GetChannelStats(ctx context.Context, owner, accessToken string, forceRefresh bool) (*model.ChannelStats, error) {
	args := m.Called(ctx, owner, accessToken, forceRefresh)
	if v := args.Get(0); v != nil {
		return v.(*model.ChannelStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDashboardUseCase) GetTopVideos(ctx context.Context, owner, accessToken string, forceRefresh bool) (*model.CachedRecord, error) {
	args := m.Called(ctx, owner, accessToken, forceRefresh)
	if v := args.Get(0); v != nil {
		return v.(*model.CachedRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDashboardUseCase) SearchVideos(ctx context.Context, owner, accessToken, query string, forceRefresh bool) (*model.CachedRecord, error) {
	args := m.Called(ctx, owner, accessToken, query, forceRefresh)
	if v := args.Get(0); v != nil {
		return v.(*model.CachedRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDashboardUseCase) RefreshVideos(ctx context.Context, owner, accessToken string, videoIDs []string) (int, error) {
	args := m.Called(ctx, owner, accessToken, videoIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockDashboardUseCase) GetVideoMirror(ctx context.Context, videoID string) (*model.VideoMirror, error) {
	args := m.Called(ctx, videoID)
	if v := args.Get(0); v != nil {
		return v.(*model.VideoMirror), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTokenSource is a mock implementation of repository.ITokenSource
type MockTokenSource struct{ mock.Mock }

func (m *MockTokenSource) AccessToken(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func newTestRouter(uc *MockDashboardUseCase, ts *MockTokenSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := httpHandler.NewDashboardHandler(uc, ts)

	router := gin.New()
	router.Use(func(ctx *gin.Context) {
		ctx.Set("user_name", "alice")
		ctx.Next()
	})
	router.GET("/api/channel/stats", handler.GetChannelStats)
	router.GET("/api/youtube/top-videos", handler.GetTopVideos)
	router.GET("/api/youtube/search", handler.SearchVideos)
	router.POST("/api/youtube/refresh", handler.RefreshVideos)
	router.GET("/api/youtube/videos/:videoId", handler.GetVideoMirror)
	return router
}

func TestGetTopVideos_ReturnsRecord(t *testing.T) {
	uc := new(MockDashboardUseCase)
	ts := new(MockTokenSource)
	ts.On("AccessToken", mock.Anything, "alice").Return("token", nil)

	now := time.Now()
	uc.On("GetTopVideos", mock.Anything, "alice", "token", false).Return(&model.CachedRecord{
		ID: 1, Kind: model.KindTopVideos, Owner: "alice", UpdatedAt: &now,
		Videos: []model.VideoMirror{{VideoID: "v1", Title: "one"}},
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/youtube/top-videos", nil)
	newTestRouter(uc, ts).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), "v1")
}

func TestGetTopVideos_ForceRefreshQueryParam(t *testing.T) {
	uc := new(MockDashboardUseCase)
	ts := new(MockTokenSource)
	ts.On("AccessToken", mock.Anything, "alice").Return("token", nil)
	uc.On("GetTopVideos", mock.Anything, "alice", "token", true).Return(&model.CachedRecord{ID: 1}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/youtube/top-videos?refresh=true", nil)
	newTestRouter(uc, ts).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}

func TestGetTopVideos_ProviderFailureMapsToGenericError(t *testing.T) {
	uc := new(MockDashboardUseCase)
	ts := new(MockTokenSource)
	ts.On("AccessToken", mock.Anything, "alice").Return("token", nil)
	uc.On("GetTopVideos", mock.Anything, "alice", "token", false).
		Return(nil, &model.ProviderError{Provider: "youtube", Code: 500, Message: "backend error"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/youtube/top-videos", nil)
	newTestRouter(uc, ts).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "YouTube API")
}

func TestGetTopVideos_UpstreamUnauthorizedMapsTo401(t *testing.T) {
	uc := new(MockDashboardUseCase)
	ts := new(MockTokenSource)
	ts.On("AccessToken", mock.Anything, "alice").Return("token", nil)
	uc.On("GetTopVideos", mock.Anything, "alice", "token", false).
		Return(nil, &model.ProviderError{Provider: "youtube", Code: 401, Message: "invalid credentials"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/youtube/top-videos", nil)
	newTestRouter(uc, ts).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Unauthorized")
}

func TestGetChannelStats_StorageFailureMapsToStorageError(t *testing.T) {
	uc := new(MockDashboardUseCase)
	ts := new(MockTokenSource)
	ts.On("AccessToken", mock.Anything, "alice").Return("token", nil)
	uc.On("GetChannelStats", mock.Anything, "alice", "token", false).
		Return(nil, &model.StorageError{Op: "read channel stats", Err: assert.AnError})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/channel/stats", nil)
	newTestRouter(uc, ts).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "save dashboard data")
}

func TestSearchVideos_MissingQueryIsBadRequest(t *testing.T) {
	uc := new(MockDashboardUseCase)
	ts := new(MockTokenSource)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/youtube/search", nil)
	newTestRouter(uc, ts).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "SearchVideos", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshVideos_EmptyBodyIsBadRequest(t *testing.T) {
	uc := new(MockDashboardUseCase)
	ts := new(MockTokenSource)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/youtube/refresh", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(uc, ts).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshVideos_ReturnsCount(t *testing.T) {
	uc := new(MockDashboardUseCase)
	ts := new(MockTokenSource)
	ts.On("AccessToken", mock.Anything, "alice").Return("token", nil)
	uc.On("RefreshVideos", mock.Anything, "alice", "token", []string{"v1", "v2"}).Return(2, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/youtube/refresh", strings.NewReader(`{"videoIds":["v1","v2"]}`))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(uc, ts).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
}

func TestGetVideoMirror_AbsentIs404(t *testing.T) {
	uc := new(MockDashboardUseCase)
	ts := new(MockTokenSource)
	uc.On("GetVideoMirror", mock.Anything, "ghost").Return(nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/youtube/videos/ghost", nil)
	newTestRouter(uc, ts).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMissingUpstreamToken_Is401(t *testing.T) {
	uc := new(MockDashboardUseCase)
	ts := new(MockTokenSource)
	ts.On("AccessToken", mock.Anything, "alice").Return("", assert.AnError)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/youtube/top-videos", nil)
	newTestRouter(uc, ts).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	uc.AssertNotCalled(t, "GetTopVideos", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
