package listings

import (
	"encoding/json"
	"testing"
	"time"

	"estate-marketplace/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backendPropertyJSON = `{
	"id": 482,
	"title": "Ikoyi terrace",
	"property_type": "terrace",
	"address": "4 Bourdillon Rd",
	"city": "Ikoyi",
	"state": "Lagos",
	"description": "Four bedroom terrace",
	"property_value": "250000000.00",
	"roi_percentage": "12.50",
	"estimated_yield": 8.1,
	"features": [
		{"id": 1, "furnished": true, "security": true, "parking": false, "electricity": true,
		 "bedrooms": 4, "bathrooms": 5, "water_supply": "borehole", "road_network": "tarred"},
		{"id": 2, "furnished": false, "bedrooms": 1, "water_supply": "well", "road_network": "untarred"}
	],
	"market_coordinates": [
		{"id": 9, "latitude": "6.4474", "longitude": "3.4246"},
		{"id": 10, "latitude": "0", "longitude": "0"}
	],
	"files": [
		{"id": 3, "file": "https://cdn.example.com/properties/482/front.jpg"},
		{"id": 4, "file": ""}
	],
	"created_at": "2026-03-01T10:00:00Z",
	"updated_at": "2026-03-02T10:00:00Z"
}`

func decodeBackendProperty(t *testing.T, raw string) domain.BackendProperty {
	t.Helper()
	var p domain.BackendProperty
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func TestMapBackendToListing_Full(t *testing.T) {
	p := decodeBackendProperty(t, backendPropertyJSON)
	l := MapBackendToListing(p)

	assert.Equal(t, "backend_482", l.ID.String())
	require.NotNil(t, l.PropertyID)
	assert.Equal(t, int64(482), *l.PropertyID)
	assert.Equal(t, domain.StatusPublished, l.Status)
	assert.Equal(t, 100, l.CompletionPercentage)
	assert.Equal(t, domain.StepReview, l.CurrentStep)
	assert.Equal(t, 250000000.0, l.PropertyValue)
	assert.Equal(t, 12.5, l.ROIPercentage)
	assert.Equal(t, 8.1, l.EstimatedYield)

	require.NotNil(t, l.Features)
	assert.True(t, l.Features.Furnished)
	assert.Equal(t, 4, l.Features.Bedrooms)
	assert.Equal(t, domain.WaterBorehole, l.Features.WaterSupply)
	assert.Equal(t, domain.RoadTarred, l.Features.RoadNetwork)

	require.NotNil(t, l.Coordinates)
	assert.Equal(t, 6.4474, l.Coordinates.Latitude)
	assert.Equal(t, 3.4246, l.Coordinates.Longitude)
	assert.NotEmpty(t, l.AreaGeohash)

	require.Len(t, l.Images, 1)
	assert.Equal(t, domain.ImageRemote, l.Images[0].Kind)

	require.NotNil(t, l.PublishedAt)
	assert.True(t, l.PublishedAt.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))
}

func TestMapBackendToListing_MissingSubRecords(t *testing.T) {
	p := decodeBackendProperty(t, `{"id": 7, "title": "Plot", "property_value": null}`)
	l := MapBackendToListing(p)

	assert.Equal(t, "backend_7", l.ID.String())
	require.NotNil(t, l.Features)
	assert.Equal(t, domain.DefaultFeatures(), *l.Features)
	assert.Nil(t, l.Coordinates)
	assert.Empty(t, l.Images)
	assert.Nil(t, l.PublishedAt)
	assert.Equal(t, 0.0, l.PropertyValue)
	assert.Equal(t, 100, l.CompletionPercentage)
}

func TestEnumFromBackend_UnknownCodes(t *testing.T) {
	assert.Equal(t, domain.RoadPartial, RoadNetworkFromBackend(" Partially Tarred "))
	assert.Equal(t, domain.RoadUnknown, RoadNetworkFromBackend("gravel"))
	assert.Equal(t, domain.RoadUnknown, RoadNetworkFromBackend(""))
	assert.Equal(t, domain.WaterPublic, WaterSupplyFromBackend("MAINS"))
	assert.Equal(t, domain.WaterUnknown, WaterSupplyFromBackend("river"))
}

func TestMapFeaturesToRequest_UnknownGoesOutEmpty(t *testing.T) {
	f := domain.DefaultFeatures()
	f.Bedrooms = 3
	req := MapFeaturesToRequest(f)
	assert.Equal(t, "", req.WaterSupply)
	assert.Equal(t, "", req.RoadNetwork)
	assert.Equal(t, 3, req.Bedrooms)

	f.WaterSupply = domain.WaterWell
	f.RoadNetwork = domain.RoadPartial
	req = MapFeaturesToRequest(f)
	assert.Equal(t, "well", req.WaterSupply)
	assert.Equal(t, "partially_tarred", req.RoadNetwork)
}

func TestMapListingToCreateRequest_TrimsText(t *testing.T) {
	l := basicDraft()
	l.Title = "  Lekki villa "
	l.PropertyValue = 1000
	req := MapListingToCreateRequest(l)
	assert.Equal(t, "Lekki villa", req.Title)
	assert.Equal(t, 1000.0, req.PropertyValue)
}

func TestGetBackendID(t *testing.T) {
	p := decodeBackendProperty(t, `{"id": 482}`)
	mapped := MapBackendToListing(p)
	id, ok := GetBackendID(&mapped)
	assert.True(t, ok)
	assert.Equal(t, int64(482), id)
	assert.True(t, IsBackendListing(&mapped))

	parsed := domain.Listing{ID: domain.ParseRef("backend_482")}
	id, ok = GetBackendID(&parsed)
	assert.True(t, ok)
	assert.Equal(t, int64(482), id)

	local := domain.Listing{ID: domain.ParseRef("draft_123")}
	_, ok = GetBackendID(&local)
	assert.False(t, ok)
	assert.False(t, IsBackendListing(&local))

	odd := domain.Listing{ID: domain.ParseRef("backend_abc")}
	_, ok = GetBackendID(&odd)
	assert.False(t, ok, "non-numeric backend suffix is not a backend id")
}
