package entity

import (
	"time"

	"github.com/google/uuid"
)

type TokenKind string

const (
	// RegistrationToken authorizes one new-account creation for an email.
	RegistrationToken TokenKind = "registration"
	// LoginReverifyToken re-confirms an already-authenticated session.
	LoginReverifyToken TokenKind = "login_reverify"
)

type TokenStatus string

const (
	TokenActive  TokenStatus = "active"
	TokenUsed    TokenStatus = "used"
	TokenExpired TokenStatus = "expired"
)

// VerificationToken is a single-use, time-boxed credential. Status moves
// active -> used or active -> expired and never back; the partial unique
// index on Subject guarantees at most one active token per subject even under
// concurrent issuance.
type VerificationToken struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Subject string    `gorm:"type:varchar(255);not null;index;uniqueIndex:idx_tokens_one_active_per_subject,where:status = 'active'"`
	Kind    TokenKind `gorm:"type:varchar(32);not null"`

	SecretHash string  `gorm:"type:text;not null;index"`
	Code       *string `gorm:"type:varchar(16)"`

	Status   TokenStatus `gorm:"type:varchar(16);not null;default:'active'"`
	Attempts int         `gorm:"not null;default:0"`

	LastAttemptAt *time.Time
	UsedAt        *time.Time

	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"not null;index"`
}

// ExpiredAt reports whether the token's window has passed at the given time,
// regardless of whether the stored status was already flipped to expired.
func (t *VerificationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
