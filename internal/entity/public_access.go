package entity

import "time"

// PublicAccessConfigID is the primary key of the single logical
// PublicAccessConfig row.
const PublicAccessConfigID int64 = 1

// PublicAccessConfig is the administrator-controlled override that bypasses
// all address checks when enabled. Exactly one row exists; every write
// replaces the whole record and carries the acting administrator and a
// reason for audit.
type PublicAccessConfig struct {
	ID int64 `gorm:"primaryKey"`

	Enabled   bool      `gorm:"not null;default:false"`
	EnabledBy string    `gorm:"type:varchar(255)"`
	EnabledAt time.Time
	Reason    string `gorm:"type:varchar(512)"`
}
