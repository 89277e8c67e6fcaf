package marketplace

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	mktsvc "estate-marketplace/internal/application/marketplace"
	"estate-marketplace/internal/domain"
	"estate-marketplace/internal/infrastructure/backendapi"
	"estate-marketplace/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	props      []domain.BackendProperty
	err        error
	query      string
	bookmarked []int64
}

func (f *fakeFeed) ListProperties(context.Context, string) ([]domain.BackendProperty, error) {
	return f.props, f.err
}

func (f *fakeFeed) SearchProperties(_ context.Context, _, q string) ([]domain.BackendProperty, error) {
	f.query = q
	return f.props, f.err
}

func (f *fakeFeed) BookmarkProperty(_ context.Context, _ string, id int64) error {
	f.bookmarked = append(f.bookmarked, id)
	return f.err
}

func setupMarketplaceTest(feed *fakeFeed) *fiber.App {
	h := &Handlers{Service: &mktsvc.Service{Feed: feed}}
	app := fiber.New()
	g := app.Group("/marketplace", middleware.RequireToken())
	g.Get("/properties", h.GetAllProperties)
	g.Get("/properties/search", h.Search)
	g.Post("/properties/:id/bookmark", h.Bookmark)
	return app
}

func call(t *testing.T, app *fiber.App, method, path string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Token tok")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

func TestGetAllProperties_MapsToListings(t *testing.T) {
	feed := &fakeFeed{props: []domain.BackendProperty{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}}
	app := setupMarketplaceTest(feed)

	status, result := call(t, app, "GET", "/marketplace/properties")
	require.Equal(t, 200, status)
	data := result["data"].([]interface{})
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "backend_1", first["id"])
	assert.Equal(t, "Published", first["status"])
	assert.Equal(t, float64(2), result["metadata"].(map[string]interface{})["count"])
}

func TestGetAllProperties_BackendDown(t *testing.T) {
	app := setupMarketplaceTest(&fakeFeed{err: &backendapi.APIError{StatusCode: 503}})
	status, _ := call(t, app, "GET", "/marketplace/properties")
	assert.Equal(t, 502, status)
}

func TestSearch(t *testing.T) {
	feed := &fakeFeed{props: []domain.BackendProperty{{ID: 3}}}
	app := setupMarketplaceTest(feed)

	status, _ := call(t, app, "GET", "/marketplace/properties/search?q=")
	assert.Equal(t, 400, status)

	status, result := call(t, app, "GET", "/marketplace/properties/search?q=lekki%20duplex")
	require.Equal(t, 200, status)
	assert.Equal(t, "lekki duplex", feed.query)
	assert.Len(t, result["data"], 1)
}

func TestBookmark(t *testing.T) {
	feed := &fakeFeed{}
	app := setupMarketplaceTest(feed)

	status, _ := call(t, app, "POST", "/marketplace/properties/482/bookmark")
	assert.Equal(t, 200, status)
	status, _ = call(t, app, "POST", "/marketplace/properties/backend_7/bookmark")
	assert.Equal(t, 200, status)
	assert.Equal(t, []int64{482, 7}, feed.bookmarked)

	status, _ = call(t, app, "POST", "/marketplace/properties/draft_1/bookmark")
	assert.Equal(t, 400, status)
}

func TestBookmark_NotFoundOnBackend(t *testing.T) {
	app := setupMarketplaceTest(&fakeFeed{err: &backendapi.APIError{StatusCode: 404}})
	status, _ := call(t, app, "POST", "/marketplace/properties/9/bookmark")
	assert.Equal(t, 404, status)
}
