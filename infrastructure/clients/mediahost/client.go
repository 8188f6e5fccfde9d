package mediahost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"creator-dashboard/domain/model"

	"github.com/google/go-querystring/query"
)

// uploadParams is the form body of an unsigned remote-fetch upload.
// File carries the source URL; the host fetches it server side.
type uploadParams struct {
	File         string `url:"file"`
	PublicID     string `url:"public_id"`
	UploadPreset string `url:"upload_preset,omitempty"`
}

type uploadResult struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client re-hosts images on the configured media host. Uploads are
// keyed by public id, so re-uploading the same key replaces the asset
// in place rather than accumulating copies.
type Client struct {
	baseURL      string
	uploadPreset string
	httpClient   *http.Client
}

// NewClient creates a media host client for the given upload endpoint.
func NewClient(baseURL, uploadPreset string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		uploadPreset: uploadPreset,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload fetch-uploads sourceURL under destinationKey and returns the
// hosted URL.
func (c *Client) Upload(ctx context.Context, sourceURL, destinationKey string) (string, error) {
	params := uploadParams{
		File:         sourceURL,
		PublicID:     destinationKey,
		UploadPreset: c.uploadPreset,
	}
	values, err := query.Values(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode upload params: %w", err)
	}

	endpoint := c.baseURL + "/image/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &model.ProviderError{Provider: "mediahost", Message: err.Error()}
	}
	defer resp.Body.Close()

	var result uploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &model.ProviderError{Provider: "mediahost", Code: resp.StatusCode, Message: "invalid upload response"}
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		return "", &model.ProviderError{Provider: "mediahost", Code: resp.StatusCode, Message: msg}
	}
	if result.SecureURL == "" {
		return "", &model.ProviderError{Provider: "mediahost", Code: resp.StatusCode, Message: "upload response missing secure_url"}
	}
	return result.SecureURL, nil
}
