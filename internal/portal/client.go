package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/models"
	"github.com/google/uuid"
)

// Transport is the server surface a Session commits against. The production
// implementation is Client; tests substitute a fake.
type Transport interface {
	ListAchievements(ctx context.Context, listID uuid.UUID) ([]models.Achievement, error)
	CreateAchievement(ctx context.Context, listID uuid.UUID, req *dto.CreateAchievementRequest) (*models.Achievement, error)
	UpdateAchievement(ctx context.Context, listID, achievementID uuid.UUID, req *dto.UpdateAchievementRequest) (*models.Achievement, error)
	DeleteAchievement(ctx context.Context, listID, achievementID uuid.UUID) error
	UploadImage(ctx context.Context, listID, achievementID uuid.UUID, filename string, data []byte) (string, error)
}

// Client talks to the REST API with an x-api-key credential.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ResolveKey exchanges the raw key for the list and app it is scoped to.
func (c *Client) ResolveKey(ctx context.Context) (*dto.KeyScopeResponse, error) {
	u := c.baseURL + "/api/apikeys?key=" + url.QueryEscape(c.apiKey)
	var scope dto.KeyScopeResponse
	if err := c.do(ctx, http.MethodGet, u, nil, &scope); err != nil {
		return nil, err
	}
	return &scope, nil
}

func (c *Client) ListAchievements(ctx context.Context, listID uuid.UUID) ([]models.Achievement, error) {
	u := fmt.Sprintf("%s/api/lists/%s/achievements", c.baseURL, listID)
	var achs []models.Achievement
	if err := c.do(ctx, http.MethodGet, u, nil, &achs); err != nil {
		return nil, err
	}
	return achs, nil
}

func (c *Client) CreateAchievement(ctx context.Context, listID uuid.UUID, req *dto.CreateAchievementRequest) (*models.Achievement, error) {
	u := fmt.Sprintf("%s/api/lists/%s/achievements", c.baseURL, listID)
	var ach models.Achievement
	if err := c.do(ctx, http.MethodPost, u, req, &ach); err != nil {
		return nil, err
	}
	return &ach, nil
}

func (c *Client) UpdateAchievement(ctx context.Context, listID, achievementID uuid.UUID, req *dto.UpdateAchievementRequest) (*models.Achievement, error) {
	u := fmt.Sprintf("%s/api/lists/%s/achievements/%s", c.baseURL, listID, achievementID)
	var ach models.Achievement
	if err := c.do(ctx, http.MethodPatch, u, req, &ach); err != nil {
		return nil, err
	}
	return &ach, nil
}

func (c *Client) DeleteAchievement(ctx context.Context, listID, achievementID uuid.UUID) error {
	u := fmt.Sprintf("%s/api/lists/%s/achievements/%s", c.baseURL, listID, achievementID)
	return c.do(ctx, http.MethodDelete, u, nil, nil)
}

// Reorder applies a full permutation of the list in one request.
func (c *Client) Reorder(ctx context.Context, listID uuid.UUID, orderedIDs []uuid.UUID) ([]models.Achievement, error) {
	u := fmt.Sprintf("%s/api/lists/%s/achievements/reorder", c.baseURL, listID)
	var achs []models.Achievement
	req := dto.ReorderRequest{OrderedIDs: orderedIDs}
	if err := c.do(ctx, http.MethodPatch, u, &req, &achs); err != nil {
		return nil, err
	}
	return achs, nil
}

// UploadImage posts a multipart image and returns the stored URL.
func (c *Client) UploadImage(ctx context.Context, listID, achievementID uuid.UUID, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write image data: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	u := fmt.Sprintf("%s/api/lists/%s/achievements/%s/uploadImage", c.baseURL, listID, achievementID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	var out dto.UploadImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	return out.ImageURL, nil
}

func (c *Client) do(ctx context.Context, method, url string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func apiError(resp *http.Response) error {
	var e dto.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Message != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Message)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}
