package backendapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"estate-marketplace/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProperty_SendsTokenAndDecodesID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/properties/", r.URL.Path)
		assert.Equal(t, "Token abc123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in domain.BackendPropertyInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Lekki villa", in.Title)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 900, "title": "Lekki villa"}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL + "/"}
	id, err := c.CreateProperty(context.Background(), "abc123", domain.BackendPropertyInput{Title: "Lekki villa"})
	require.NoError(t, err)
	assert.Equal(t, int64(900), id)
}

func TestClient_MissingTokenMakesNoRequest(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	_, err := c.CreateProperty(context.Background(), "", domain.BackendPropertyInput{})
	assert.ErrorIs(t, err, domain.ErrMissingToken)
	_, err = c.ListProperties(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrMissingToken)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestClient_NoBaseURL(t *testing.T) {
	c := &Client{}
	err := c.BookmarkProperty(context.Background(), "tok", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_API_URL")
}

func TestClient_Non2xxIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"latitude": ["invalid"]}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	err := c.UploadCoordinates(context.Background(), "tok", 900, domain.BackendCoordinates{Latitude: 6.4, Longitude: 3.4})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "/api/properties/900/coordinates/", apiErr.Path)
	assert.Contains(t, apiErr.Body, "latitude")
}

func TestUploadFeatures_Path(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/properties/7/features/", r.URL.Path)
		var in domain.BackendFeatures
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "borehole", in.WaterSupply)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	require.NoError(t, c.UploadFeatures(context.Background(), "tok", 7, domain.BackendFeatures{WaterSupply: "borehole"}))
}

func TestUploadFile_LocalMultipart(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "front.jpg"), []byte("jpeg-bytes"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/properties/900/files/", r.URL.Path)
		assert.Equal(t, "Token tok", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "900", r.FormValue("property"))
		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "front.jpg", fh.Filename)
		b, _ := io.ReadAll(f)
		assert.Equal(t, "jpeg-bytes", string(b))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, MediaDir: dir}
	err := c.UploadFile(context.Background(), "tok", 900, domain.NewImageRef("file://front.jpg"))
	require.NoError(t, err)
}

func TestUploadFile_RemoteByURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "https://cdn.example.com/a.jpg", r.FormValue("file_url"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	require.NoError(t, c.UploadFile(context.Background(), "tok", 1, domain.NewImageRef("https://cdn.example.com/a.jpg")))
}

func TestUploadFile_LocalPathStaysInMediaDir(t *testing.T) {
	c := &Client{MediaDir: "/srv/media"}
	assert.Equal(t, "/srv/media/etc/passwd", c.localPath("../../etc/passwd"))
	assert.Equal(t, "/srv/media/a.jpg", c.localPath("a.jpg"))
}

func TestListProperties_ArrayAndPaginated(t *testing.T) {
	body := `[{"id": 1, "title": "A", "property_value": "10.5"}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/properties/search/" {
			assert.Equal(t, "ikoyi terrace", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"count": 1, "results": [{"id": 2, "title": "B"}]}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	props, err := c.ListProperties(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, domain.Decimal(10.5), props[0].PropertyValue)

	props, err = c.SearchProperties(context.Background(), "tok", "ikoyi terrace")
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, int64(2), props[0].ID)

	body = `null`
	props, err = c.ListProperties(context.Background(), "tok")
	require.NoError(t, err)
	assert.NotNil(t, props)
	assert.Empty(t, props)
}

func TestBookmarkProperty(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	require.NoError(t, c.BookmarkProperty(context.Background(), "tok", 482))
	assert.Equal(t, "/api/properties/482/bookmark/", path)
}
