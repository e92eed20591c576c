package repository

import (
	"context"
	"errors"

	"gatekeeper/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AllowListRepository interface {
	List(ctx context.Context) ([]entity.AllowedAddress, error)
	Add(ctx context.Context, address *entity.AllowedAddress) error
	Remove(ctx context.Context, id uuid.UUID) error
}

type allowListRepository struct {
	db *gorm.DB
}

func NewAllowListRepository(db *gorm.DB) AllowListRepository {
	return &allowListRepository{db: db}
}

func (r *allowListRepository) List(ctx context.Context) ([]entity.AllowedAddress, error) {
	var addresses []entity.AllowedAddress
	err := r.db.WithContext(ctx).
		Order("added_at DESC").
		Find(&addresses).Error
	return addresses, err
}

// Add inserts the entry; the unique index on address makes the duplicate
// check consistent at write time.
func (r *allowListRepository) Add(ctx context.Context, address *entity.AllowedAddress) error {
	err := r.db.WithContext(ctx).Create(address).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateAddress
	}
	return err
}

func (r *allowListRepository) Remove(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.AllowedAddress{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
