package repository

import (
	"context"
	"errors"

	"gatekeeper/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PublicAccessRepository interface {
	Get(ctx context.Context) (*entity.PublicAccessConfig, error)
	Set(ctx context.Context, config *entity.PublicAccessConfig) error
}

type publicAccessRepository struct {
	db *gorm.DB
}

func NewPublicAccessRepository(db *gorm.DB) PublicAccessRepository {
	return &publicAccessRepository{db: db}
}

// Get returns the singleton config. Before the first toggle the row does not
// exist yet; that reads as the default disabled state.
func (r *publicAccessRepository) Get(ctx context.Context) (*entity.PublicAccessConfig, error) {
	var config entity.PublicAccessConfig
	err := r.db.WithContext(ctx).
		First(&config, "id = ?", entity.PublicAccessConfigID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &entity.PublicAccessConfig{ID: entity.PublicAccessConfigID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// Set replaces the whole record in one upsert so the audit fields always
// belong to the write that set the current value.
func (r *publicAccessRepository) Set(ctx context.Context, config *entity.PublicAccessConfig) error {
	config.ID = entity.PublicAccessConfigID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(config).Error
}
