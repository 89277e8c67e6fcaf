package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Decimal is a float that accepts both JSON numbers and decimal strings ("250000.00"),
// since the backend serialises money fields as strings.
type Decimal float64

// UnmarshalJSON implements json.Unmarshaler. null and "" decode to zero.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*d = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("decimal %q: %w", s, err)
		}
		*d = Decimal(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*d = Decimal(f)
	return nil
}

// BackendFeatures is one row of a property's features on the backend.
type BackendFeatures struct {
	ID          int64  `json:"id,omitempty"`
	Furnished   bool   `json:"furnished"`
	Security    bool   `json:"security"`
	Parking     bool   `json:"parking"`
	Electricity bool   `json:"electricity"`
	Bedrooms    int    `json:"bedrooms"`
	Bathrooms   int    `json:"bathrooms"`
	WaterSupply string `json:"water_supply"`
	RoadNetwork string `json:"road_network"`
}

// BackendCoordinates is one row of a property's market coordinates on the backend.
type BackendCoordinates struct {
	ID        int64   `json:"id,omitempty"`
	Latitude  Decimal `json:"latitude"`
	Longitude Decimal `json:"longitude"`
}

// BackendFile is an uploaded property file.
type BackendFile struct {
	ID   int64  `json:"id,omitempty"`
	File string `json:"file"`
}

// BackendProperty is a property record as returned by the backend API.
// Features and MarketCoordinates are one-to-many on the backend; only the first entry is used.
type BackendProperty struct {
	ID                int64                `json:"id"`
	Title             string               `json:"title"`
	PropertyType      string               `json:"property_type"`
	Address           string               `json:"address"`
	City              string               `json:"city"`
	State             string               `json:"state"`
	Description       string               `json:"description"`
	PropertyValue     Decimal              `json:"property_value"`
	ROIPercentage     Decimal              `json:"roi_percentage"`
	EstimatedYield    Decimal              `json:"estimated_yield"`
	Features          []BackendFeatures    `json:"features"`
	MarketCoordinates []BackendCoordinates `json:"market_coordinates"`
	Files             []BackendFile        `json:"files"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// BackendPropertyInput is the body of the property create call.
type BackendPropertyInput struct {
	Title          string  `json:"title"`
	PropertyType   string  `json:"property_type"`
	Address        string  `json:"address"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	Description    string  `json:"description"`
	PropertyValue  float64 `json:"property_value"`
	ROIPercentage  float64 `json:"roi_percentage"`
	EstimatedYield float64 `json:"estimated_yield"`
}
