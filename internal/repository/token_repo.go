package repository

import (
	"context"
	"errors"
	"time"

	"gatekeeper/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TokenRepository interface {
	// Create inserts the token. The partial unique index on subject rejects a
	// second active token; that conflict surfaces as ErrActiveTokenExists.
	Create(ctx context.Context, token *entity.VerificationToken) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.VerificationToken, error)
	FindBySecretHash(ctx context.Context, secretHash string) (*entity.VerificationToken, error)
	FindActiveBySubject(ctx context.Context, subject string) (*entity.VerificationToken, error)
	// UsedTokenExists reports whether subject already consumed a token of the
	// given kind.
	UsedTokenExists(ctx context.Context, subject string, kind entity.TokenKind) (bool, error)
	// CompareAndSwapStatus atomically moves the token from expected to next
	// and reports whether this call performed the transition.
	CompareAndSwapStatus(ctx context.Context, id uuid.UUID, expected, next entity.TokenStatus) (bool, error)
	RecordAttempt(ctx context.Context, id uuid.UUID, at time.Time) error
	CountCreatedSince(ctx context.Context, subject string, since time.Time) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *entity.VerificationToken) error {
	err := r.db.WithContext(ctx).Create(token).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrActiveTokenExists
	}
	return err
}

func (r *tokenRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.VerificationToken, error) {
	var token entity.VerificationToken
	err := r.db.WithContext(ctx).First(&token, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) FindBySecretHash(ctx context.Context, secretHash string) (*entity.VerificationToken, error) {
	var token entity.VerificationToken
	err := r.db.WithContext(ctx).First(&token, "secret_hash = ?", secretHash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) FindActiveBySubject(ctx context.Context, subject string) (*entity.VerificationToken, error) {
	var token entity.VerificationToken
	err := r.db.WithContext(ctx).
		First(&token, "subject = ? AND status = ?", subject, entity.TokenActive).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) UsedTokenExists(ctx context.Context, subject string, kind entity.TokenKind) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.VerificationToken{}).
		Where("subject = ? AND kind = ? AND status = ?", subject, kind, entity.TokenUsed).
		Count(&count).Error
	return count > 0, err
}

// CompareAndSwapStatus is a single conditional UPDATE, never read-then-write:
// under concurrent calls exactly one observes RowsAffected == 1.
func (r *tokenRepository) CompareAndSwapStatus(ctx context.Context, id uuid.UUID, expected, next entity.TokenStatus) (bool, error) {
	updates := map[string]any{"status": next}
	if next == entity.TokenUsed {
		now := time.Now()
		updates["used_at"] = &now
	}
	result := r.db.WithContext(ctx).
		Model(&entity.VerificationToken{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *tokenRepository) RecordAttempt(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.VerificationToken{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":        gorm.Expr("attempts + 1"),
			"last_attempt_at": &at,
		}).Error
}

func (r *tokenRepository) CountCreatedSince(ctx context.Context, subject string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.VerificationToken{}).
		Where("subject = ? AND created_at >= ?", subject, since).
		Count(&count).Error
	return count, err
}
