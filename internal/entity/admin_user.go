package entity

import (
	"time"

	"github.com/google/uuid"
)

type AdminRole string

const (
	AdminRoleOperator AdminRole = "operator"
	AdminRoleAdmin    AdminRole = "admin"
)

// AdminUser is an operator account allowed to manage the allow-list, the
// public-access override, and token administration.
type AdminUser struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	Role         AdminRole `gorm:"type:varchar(32);default:'admin';not null"`

	IsActive bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
