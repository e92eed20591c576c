package entity

import (
	"time"

	"github.com/google/uuid"

	"gatekeeper/internal/ipaddr"
)

// AllowedAddress is an allow-list entry. Entries are created and deleted by
// administrators, never updated; Address is stored in normalized form and is
// unique across all entries.
type AllowedAddress struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Address     string      `gorm:"type:varchar(45);uniqueIndex;not null"`
	AddressType ipaddr.Type `gorm:"type:varchar(8);not null"`
	Description string      `gorm:"type:varchar(255)"`

	AddedBy string    `gorm:"type:varchar(255);not null"`
	AddedAt time.Time `gorm:"autoCreateTime"`
}
