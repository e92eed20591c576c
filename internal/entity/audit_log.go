package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditAction string

const (
	AllowListAdded      AuditAction = "allowlist_added"
	AllowListRemoved    AuditAction = "allowlist_removed"
	PublicAccessToggled AuditAction = "public_access_toggled"
	TokenIssued         AuditAction = "token_issued"
	TokenConsumed       AuditAction = "token_consumed"
	AccessDenied        AuditAction = "access_denied"
	AdminLoginSuccess   AuditAction = "admin_login_success"
	AdminLoginFailed    AuditAction = "admin_login_failed"
)

type AuditLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Actor     *string     `gorm:"type:varchar(255);index"`
	IPAddress *string     `gorm:"type:varchar(45)"`
	Action    AuditAction `gorm:"type:varchar(64);not null"`

	Metadata datatypes.JSON

	CreatedAt time.Time
}
