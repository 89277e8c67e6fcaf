package draftstore

import (
	"context"
	"errors"
	"fmt"

	"estate-marketplace/internal/application/listings"
	"estate-marketplace/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps each owner's collection as one row in draft_collections.
type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) LoadAll(ctx context.Context, owner string) ([]domain.Listing, error) {
	key := listings.StorageKeyFor(owner)
	var row domain.DraftCollection
	err := s.DB.WithContext(ctx).Where("storage_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []domain.Listing{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return decode(key, row.Payload), nil
}

func (s *GormStore) SaveAll(ctx context.Context, owner string, all []domain.Listing) error {
	key := listings.StorageKeyFor(owner)
	b, err := encode(all)
	if err != nil {
		return err
	}
	row := domain.DraftCollection{Key: key, Payload: datatypes.JSON(b)}
	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
