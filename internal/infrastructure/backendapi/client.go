package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"estate-marketplace/internal/domain"

	"github.com/rs/zerolog/log"
)

// Backend REST paths.
const (
	pathProperties  = "/api/properties/"
	pathSearch      = "/api/properties/search/"
	pathCoordinates = "/api/properties/%d/coordinates/"
	pathFeatures    = "/api/properties/%d/features/"
	pathFiles       = "/api/properties/%d/files/"
	pathBookmark    = "/api/properties/%d/bookmark/"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s %s: status %d body: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client talks to the property backend. Every call is authenticated with
// "Authorization: Token <token>"; an empty token fails before any request is made.
type Client struct {
	BaseURL string
	// MediaDir is where local image files live; local image refs are resolved inside it.
	MediaDir string
	// Timeout for each request. Zero leaves the http.Client default (no timeout).
	Timeout time.Duration
	Client  *http.Client
}

func (c *Client) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return &http.Client{Timeout: c.Timeout}
}

func (c *Client) newRequest(ctx context.Context, token, method, path string, body io.Reader) (*http.Request, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrMissingToken
	}
	if c.BaseURL == "" {
		return nil, fmt.Errorf("backend: BACKEND_API_URL is not set")
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and decodes a JSON response into out (if non-nil).
func (c *Client) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	log.Debug().Str("method", req.Method).Str("path", req.URL.Path).Int("status", resp.StatusCode).
		Int64("ms", time.Since(start).Milliseconds()).Msg("Backend call")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Method: req.Method, Path: req.URL.Path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("backend response decode: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, token, path string, in, out interface{}) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, token, http.MethodPost, path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// CreateProperty creates the base property record and returns its id.
func (c *Client) CreateProperty(ctx context.Context, token string, in domain.BackendPropertyInput) (int64, error) {
	var created struct {
		ID int64 `json:"id"`
	}
	if err := c.postJSON(ctx, token, pathProperties, in, &created); err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, fmt.Errorf("backend returned no property id")
	}
	return created.ID, nil
}

// UploadCoordinates attaches a coordinate record to a property.
func (c *Client) UploadCoordinates(ctx context.Context, token string, propertyID int64, in domain.BackendCoordinates) error {
	return c.postJSON(ctx, token, fmt.Sprintf(pathCoordinates, propertyID), in, nil)
}

// UploadFeatures attaches a features record to a property.
func (c *Client) UploadFeatures(ctx context.Context, token string, propertyID int64, in domain.BackendFeatures) error {
	return c.postJSON(ctx, token, fmt.Sprintf(pathFeatures, propertyID), in, nil)
}

// UploadFile sends one image as multipart/form-data. Local files are read from MediaDir;
// remote images are passed by URL in the file_url field.
func (c *Client) UploadFile(ctx context.Context, token string, propertyID int64, image domain.ImageRef) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("property", strconv.FormatInt(propertyID, 10)); err != nil {
		return err
	}
	switch image.Kind {
	case domain.ImageRemote:
		if err := mw.WriteField("file_url", image.URI); err != nil {
			return err
		}
	default:
		path := c.localPath(image.URI)
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer f.Close()
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f); err != nil {
			return fmt.Errorf("read image: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, token, http.MethodPost, fmt.Sprintf(pathFiles, propertyID), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, nil)
}

// localPath confines uri to MediaDir.
func (c *Client) localPath(uri string) string {
	dir := c.MediaDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, filepath.Clean("/"+uri))
}

// propertyPage accepts both a bare array and a paginated {"results": [...]} body.
type propertyPage []domain.BackendProperty

func (p *propertyPage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]domain.BackendProperty)(p))
	}
	var page struct {
		Results []domain.BackendProperty `json:"results"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return err
	}
	*p = page.Results
	return nil
}

func (c *Client) getProperties(ctx context.Context, token, path string) ([]domain.BackendProperty, error) {
	req, err := c.newRequest(ctx, token, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var page propertyPage
	if err := c.do(req, &page); err != nil {
		return nil, err
	}
	if page == nil {
		return []domain.BackendProperty{}, nil
	}
	return page, nil
}

// ListProperties returns the marketplace property list.
func (c *Client) ListProperties(ctx context.Context, token string) ([]domain.BackendProperty, error) {
	return c.getProperties(ctx, token, pathProperties)
}

// SearchProperties runs a free-text search on the marketplace.
func (c *Client) SearchProperties(ctx context.Context, token, query string) ([]domain.BackendProperty, error) {
	return c.getProperties(ctx, token, pathSearch+"?q="+url.QueryEscape(query))
}

// BookmarkProperty bookmarks a property for the token's user.
func (c *Client) BookmarkProperty(ctx context.Context, token string, propertyID int64) error {
	req, err := c.newRequest(ctx, token, http.MethodPost, fmt.Sprintf(pathBookmark, propertyID), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}
