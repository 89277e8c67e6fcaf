package domain

import (
	"time"

	"gorm.io/datatypes"
)

// DraftCollection is the SQL row holding one serialised draft collection.
// Key is the storage key ("marketplaceListings" or an owner-namespaced variant).
type DraftCollection struct {
	Key       string         `gorm:"column:storage_key;primaryKey;size:191" json:"key"`
	Payload   datatypes.JSON `gorm:"column:payload;not null" json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (DraftCollection) TableName() string {
	return "draft_collections"
}
