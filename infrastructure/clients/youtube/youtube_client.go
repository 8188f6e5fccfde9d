package youtube

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"creator-dashboard/domain/model"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
	youtubeanalytics "google.golang.org/api/youtubeanalytics/v2"
)

// analyticsMetrics are the lifetime channel metrics mirrored into the
// cached stats record, keyed by their API column names.
var analyticsMetrics = []string{
	"views",
	"estimatedMinutesWatched",
	"comments",
	"likes",
	"dislikes",
	"shares",
}

// Client calls the YouTube Data and Analytics APIs on behalf of the
// request owner. Tokens are per call: each request builds its services
// from the caller's access token, so one client instance serves every
// user.
type Client struct{}

// NewYouTubeClient creates a YouTube API client.
func NewYouTubeClient() *Client {
	return &Client{}
}

func (c *Client) dataService(ctx context.Context, accessToken string) (*youtube.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := youtube.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return svc, nil
}

func (c *Client) analyticsService(ctx context.Context, accessToken string) (*youtubeanalytics.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := youtubeanalytics.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube Analytics service: %w", err)
	}
	return svc, nil
}

// providerErr maps an upstream API failure into a provider error so the
// route layer can distinguish upstream faults from storage faults.
func providerErr(err error) error {
	if gErr, ok := err.(*googleapi.Error); ok {
		return &model.ProviderError{Provider: "youtube", Code: gErr.Code, Message: gErr.Message}
	}
	return &model.ProviderError{Provider: "youtube", Message: err.Error()}
}

// SearchMyVideos lists the owner's videos via search, optionally
// filtered by q and sorted by order. Results carry snippet-level fields
// only; use ListVideos when statistics are needed.
func (c *Client) SearchMyVideos(ctx context.Context, accessToken, q, order string, maxResults int64) ([]model.UpstreamVideo, error) {
	svc, err := c.dataService(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	call := svc.Search.List([]string{"id", "snippet"}).
		ForMine(true).
		Type("video").
		MaxResults(maxResults)
	if q != "" {
		call = call.Q(q)
	}
	if order != "" {
		call = call.Order(order)
	}
	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, providerErr(err)
	}

	out := make([]model.UpstreamVideo, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		video := model.UpstreamVideo{VideoID: item.Id.VideoId}
		if item.Snippet != nil {
			video.Title = item.Snippet.Title
			video.Description = item.Snippet.Description
			video.PublishedAt, _ = time.Parse(time.RFC3339, item.Snippet.PublishedAt)
			video.ThumbnailURL = bestThumbnail(item.Snippet.Thumbnails)
		}
		out = append(out, video)
	}
	return out, nil
}

// ListVideos fetches snippet and statistics for the given ids,
// returning them in the requested order. Ids unknown upstream are
// silently absent from the result.
func (c *Client) ListVideos(ctx context.Context, accessToken string, videoIDs []string) ([]model.UpstreamVideo, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	svc, err := c.dataService(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	response, err := svc.Videos.List([]string{"snippet", "statistics"}).
		Id(strings.Join(videoIDs, ",")).
		Context(ctx).Do()
	if err != nil {
		return nil, providerErr(err)
	}

	byID := make(map[string]model.UpstreamVideo, len(response.Items))
	for _, item := range response.Items {
		video := model.UpstreamVideo{VideoID: item.Id}
		if item.Snippet != nil {
			video.Title = item.Snippet.Title
			video.Description = item.Snippet.Description
			video.PublishedAt, _ = time.Parse(time.RFC3339, item.Snippet.PublishedAt)
			video.Tags = item.Snippet.Tags
			video.ThumbnailURL = bestThumbnail(item.Snippet.Thumbnails)
		}
		if item.Statistics != nil {
			video.Stats = &model.EngagementStats{
				ViewCount:     int64(item.Statistics.ViewCount),
				LikeCount:     int64(item.Statistics.LikeCount),
				DislikeCount:  int64(item.Statistics.DislikeCount),
				FavoriteCount: int64(item.Statistics.FavoriteCount),
				CommentCount:  int64(item.Statistics.CommentCount),
			}
		}
		byID[item.Id] = video
	}

	// Preserve the caller's ordering
	out := make([]model.UpstreamVideo, 0, len(byID))
	for _, id := range videoIDs {
		if video, ok := byID[id]; ok {
			out = append(out, video)
		}
	}
	return out, nil
}

// GetMyChannel returns the authenticated user's channel summary.
func (c *Client) GetMyChannel(ctx context.Context, accessToken string) (*model.ChannelSummary, error) {
	svc, err := c.dataService(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	response, err := svc.Channels.List([]string{"snippet", "statistics"}).
		Mine(true).
		Context(ctx).Do()
	if err != nil {
		return nil, providerErr(err)
	}
	if len(response.Items) == 0 {
		return nil, &model.ProviderError{Provider: "youtube", Message: "no channel found for authenticated user"}
	}

	channel := response.Items[0]
	summary := &model.ChannelSummary{ChannelID: channel.Id}
	if channel.Snippet != nil {
		summary.Title = channel.Snippet.Title
		summary.PublishedAt, _ = time.Parse(time.RFC3339, channel.Snippet.PublishedAt)
	}
	if channel.Statistics != nil {
		summary.SubscriberCount = int64(channel.Statistics.SubscriberCount)
		summary.VideoCount = int64(channel.Statistics.VideoCount)
		summary.ViewCount = int64(channel.Statistics.ViewCount)
	}
	return summary, nil
}

// ChannelAnalytics queries lifetime channel metrics between the given
// dates (YYYY-MM-DD), keyed by column name in the result.
func (c *Client) ChannelAnalytics(ctx context.Context, accessToken, startDate, endDate string) (map[string]float64, error) {
	svc, err := c.analyticsService(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	response, err := svc.Reports.Query().
		Ids("channel==MINE").
		StartDate(startDate).
		EndDate(endDate).
		Metrics(strings.Join(analyticsMetrics, ",")).
		Context(ctx).Do()
	if err != nil {
		return nil, providerErr(err)
	}

	out := make(map[string]float64, len(response.ColumnHeaders))
	if len(response.Rows) == 0 {
		return out, nil
	}
	row := response.Rows[0]
	for i, header := range response.ColumnHeaders {
		if i >= len(row) {
			break
		}
		out[header.Name] = toFloat(row[i])
	}
	return out, nil
}

// bestThumbnail prefers the highest resolution variant available.
func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, candidate := range []*youtube.Thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if candidate != nil && candidate.Url != "" {
			return candidate.Url
		}
	}
	return ""
}

// toFloat coerces an analytics row cell; the API returns JSON numbers
// but cells are typed interface{}.
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
