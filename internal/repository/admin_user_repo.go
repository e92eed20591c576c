package repository

import (
	"context"
	"errors"

	"gatekeeper/internal/entity"

	"gorm.io/gorm"
)

type AdminUserRepository interface {
	Create(ctx context.Context, user *entity.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*entity.AdminUser, error)
	Count(ctx context.Context) (int64, error)
}

type adminUserRepository struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &adminUserRepository{db: db}
}

func (r *adminUserRepository) Create(ctx context.Context, user *entity.AdminUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *adminUserRepository) FindByEmail(ctx context.Context, email string) (*entity.AdminUser, error) {
	var user entity.AdminUser
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *adminUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.AdminUser{}).Count(&count).Error
	return count, err
}
