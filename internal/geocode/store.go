package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaceLabel is a persisted lookup result.
type PlaceLabel struct {
	CoordKey  string `gorm:"primaryKey;size:32"`
	Label     string `gorm:"not null"`
	Address   datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName implements gorm's tabler.
func (PlaceLabel) TableName() string {
	return "place_labels"
}

// Store persists labels across runs.
type Store struct {
	db *gorm.DB
}

// NewStore migrates the label table on db.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&PlaceLabel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate place labels: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the stored label for key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var row PlaceLabel
	err := s.db.WithContext(ctx).Where("coord_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Label, true, nil
}

// Put upserts a label.
func (s *Store) Put(ctx context.Context, key, label string, address map[string]string) error {
	row := PlaceLabel{CoordKey: key, Label: label}
	if len(address) > 0 {
		raw, err := json.Marshal(address)
		if err != nil {
			return err
		}
		row.Address = datatypes.JSON(raw)
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "coord_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"label", "address", "updated_at"}),
	}).Create(&row).Error
}

// Count returns the number of stored labels.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&PlaceLabel{}).Count(&n).Error
	return n, err
}
