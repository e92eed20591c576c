package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gatekeeper/internal/entity"
	"gatekeeper/internal/repository"
	"gatekeeper/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// TokenReason is the closed set of token validation and consumption outcomes.
type TokenReason string

const (
	TokenReasonOK              TokenReason = "OK"
	TokenReasonNotFound        TokenReason = "TOKEN_NOT_FOUND"
	TokenReasonExpired         TokenReason = "TOKEN_EXPIRED"
	TokenReasonAlreadyUsed     TokenReason = "TOKEN_ALREADY_USED"
	TokenReasonSubjectMismatch TokenReason = "TOKEN_SUBJECT_MISMATCH"
	TokenReasonCodeMismatch    TokenReason = "TOKEN_CODE_MISMATCH"
)

type ValidationResult struct {
	Valid  bool
	Reason TokenReason
	Token  *entity.VerificationToken
}

type ConsumeResult struct {
	Success bool
	Reason  TokenReason
}

type IssueResult struct {
	Token *entity.VerificationToken
	// Secret is the raw link secret; it exists only in this result, the
	// store keeps its hash.
	Secret string
	Code   string
}

type TokenConfig struct {
	RegistrationTTL time.Duration
	ReverifyTTL     time.Duration

	// RateLimitMax caps how many tokens a subject may have created within
	// the trailing RateLimitWindow before Issue rejects.
	RateLimitWindow time.Duration
	RateLimitMax    int64

	CodeLength int
}

const (
	defaultRegistrationTTL = 12 * time.Hour
	defaultReverifyTTL     = 15 * time.Minute
	defaultRateLimitWindow = time.Hour
	defaultRateLimitMax    = 5
	defaultCodeLength      = 6
)

// TokenService owns the verification-token lifecycle: issuance, validation,
// single-use consumption, and the issuance rate-limit counter. All state
// transitions go through the repository's conditional writes, so concurrent
// callers can never double-spend a token.
type TokenService struct {
	tokens repository.TokenRepository
	audits repository.AuditLogRepository

	sender CodeSender
	clock  Clock
	logger *logrus.Logger
	config TokenConfig
}

func NewTokenService(
	tokens repository.TokenRepository,
	audits repository.AuditLogRepository,
	sender CodeSender,
	clock Clock,
	logger *logrus.Logger,
	config TokenConfig,
) *TokenService {
	if config.RegistrationTTL == 0 {
		config.RegistrationTTL = defaultRegistrationTTL
	}
	if config.ReverifyTTL == 0 {
		config.ReverifyTTL = defaultReverifyTTL
	}
	if config.RateLimitWindow == 0 {
		config.RateLimitWindow = defaultRateLimitWindow
	}
	if config.RateLimitMax == 0 {
		config.RateLimitMax = defaultRateLimitMax
	}
	if config.CodeLength == 0 {
		config.CodeLength = defaultCodeLength
	}
	return &TokenService{
		tokens: tokens,
		audits: audits,
		sender: sender,
		clock:  clock,
		logger: logger,
		config: config,
	}
}

// Issue creates a new active token for subject. window <= 0 selects the
// configured TTL for the kind. Rejections: ErrRateLimited when the subject
// exceeded the issuance ceiling, ErrSubjectConsumed when a registration
// subject already redeemed a registration token (registration stays
// single-use per subject; re-verification tokens are reissued every login),
// and ErrTokenAlreadyActive when an unexpired active token exists. The
// partial unique index behind Create closes the race between two concurrent
// issuances for the same subject.
func (s *TokenService) Issue(ctx context.Context, subject string, kind entity.TokenKind, window time.Duration) (*IssueResult, error) {
	subject = utils.NormalizeSubject(subject)
	if subject == "" {
		return nil, ErrInvalidInput
	}
	now := s.clock.Now()

	count, err := s.tokens.CountCreatedSince(ctx, subject, now.Add(-s.config.RateLimitWindow))
	if err != nil {
		return nil, err
	}
	if count >= s.config.RateLimitMax {
		return nil, ErrRateLimited
	}

	if kind == entity.RegistrationToken {
		consumed, err := s.tokens.UsedTokenExists(ctx, subject, entity.RegistrationToken)
		if err != nil {
			return nil, err
		}
		if consumed {
			return nil, ErrSubjectConsumed
		}
	}

	active, err := s.tokens.FindActiveBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	if active != nil {
		if !active.Expired(now) {
			return nil, ErrTokenAlreadyActive
		}
		// The previous token sat past its window without being observed;
		// retire it so the one-active-per-subject index admits a new one.
		if _, err := s.tokens.CompareAndSwapStatus(ctx, active.ID, entity.TokenActive, entity.TokenExpired); err != nil {
			return nil, err
		}
	}

	secret, err := utils.GenerateRandomToken(32)
	if err != nil {
		return nil, err
	}
	token := &entity.VerificationToken{
		Subject:    subject,
		Kind:       kind,
		SecretHash: utils.HashToken(secret),
		Status:     entity.TokenActive,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.windowFor(kind, window)),
	}

	var code string
	if kind == entity.RegistrationToken {
		code, err = utils.GenerateNumericCode(s.config.CodeLength)
		if err != nil {
			return nil, err
		}
		token.Code = &code
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		if errors.Is(err, repository.ErrActiveTokenExists) {
			return nil, ErrTokenAlreadyActive
		}
		return nil, err
	}

	if err := s.deliver(ctx, subject, kind, secret, code); err != nil {
		return nil, err
	}

	s.audit(ctx, subject, entity.TokenIssued, map[string]any{"kind": kind, "token_id": token.ID.String()})
	return &IssueResult{Token: token, Secret: secret, Code: code}, nil
}

// Validate checks a presented secret against the stored token without
// consuming it. A stale active token is lazily flipped to expired here, and
// a wrong code bumps the attempt counter.
func (s *TokenService) Validate(ctx context.Context, secret, presentedSubject, presentedCode string) (ValidationResult, error) {
	token, err := s.tokens.FindBySecretHash(ctx, utils.HashToken(secret))
	if err != nil {
		return ValidationResult{}, err
	}
	if token == nil {
		return ValidationResult{Reason: TokenReasonNotFound}, nil
	}

	now := s.clock.Now()
	switch token.Status {
	case entity.TokenUsed:
		return ValidationResult{Reason: TokenReasonAlreadyUsed}, nil
	case entity.TokenExpired:
		return ValidationResult{Reason: TokenReasonExpired}, nil
	}

	if token.Expired(now) {
		if _, err := s.tokens.CompareAndSwapStatus(ctx, token.ID, entity.TokenActive, entity.TokenExpired); err != nil {
			return ValidationResult{}, err
		}
		return ValidationResult{Reason: TokenReasonExpired}, nil
	}

	if presentedSubject != "" && utils.NormalizeSubject(presentedSubject) != token.Subject {
		return ValidationResult{Reason: TokenReasonSubjectMismatch}, nil
	}

	if token.Code != nil && presentedCode != "" {
		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(presentedCode)), []byte(*token.Code)) != 1 {
			if err := s.tokens.RecordAttempt(ctx, token.ID, now); err != nil {
				return ValidationResult{}, err
			}
			return ValidationResult{Reason: TokenReasonCodeMismatch}, nil
		}
	}

	return ValidationResult{Valid: true, Reason: TokenReasonOK, Token: token}, nil
}

// Consume redeems a token, transitioning active -> used with a single
// compare-and-swap. Under concurrent redemption exactly one caller gets
// Success; every other caller observes TOKEN_ALREADY_USED.
func (s *TokenService) Consume(ctx context.Context, secret string) (ConsumeResult, error) {
	token, err := s.tokens.FindBySecretHash(ctx, utils.HashToken(secret))
	if err != nil {
		return ConsumeResult{}, err
	}
	if token == nil {
		return ConsumeResult{Reason: TokenReasonNotFound}, nil
	}

	now := s.clock.Now()
	switch token.Status {
	case entity.TokenUsed:
		return ConsumeResult{Reason: TokenReasonAlreadyUsed}, nil
	case entity.TokenExpired:
		return ConsumeResult{Reason: TokenReasonExpired}, nil
	}

	if token.Expired(now) {
		if _, err := s.tokens.CompareAndSwapStatus(ctx, token.ID, entity.TokenActive, entity.TokenExpired); err != nil {
			return ConsumeResult{}, err
		}
		return ConsumeResult{Reason: TokenReasonExpired}, nil
	}

	swapped, err := s.tokens.CompareAndSwapStatus(ctx, token.ID, entity.TokenActive, entity.TokenUsed)
	if err != nil {
		return ConsumeResult{}, err
	}
	if !swapped {
		// Someone else won the swap between our read and our write.
		return ConsumeResult{Reason: TokenReasonAlreadyUsed}, nil
	}

	s.audit(ctx, token.Subject, entity.TokenConsumed, map[string]any{"kind": token.Kind, "token_id": token.ID.String()})
	return ConsumeResult{Success: true, Reason: TokenReasonOK}, nil
}

// AttemptsInWindow reports how many tokens were created for subject within
// the trailing window ending at now.
func (s *TokenService) AttemptsInWindow(ctx context.Context, subject string, window time.Duration, now time.Time) (int64, error) {
	return s.tokens.CountCreatedSince(ctx, utils.NormalizeSubject(subject), now.Add(-window))
}

func (s *TokenService) windowFor(kind entity.TokenKind, window time.Duration) time.Duration {
	if window > 0 {
		return window
	}
	if kind == entity.RegistrationToken {
		return s.config.RegistrationTTL
	}
	return s.config.ReverifyTTL
}

func (s *TokenService) deliver(ctx context.Context, subject string, kind entity.TokenKind, secret, code string) error {
	if s.sender == nil {
		return nil
	}
	if kind == entity.RegistrationToken {
		return s.sender.SendRegistrationCode(ctx, subject, secret, code)
	}
	return s.sender.SendReverificationCode(ctx, subject, secret)
}

func (s *TokenService) audit(ctx context.Context, subject string, action entity.AuditAction, metadata map[string]any) {
	if s.audits == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		if bytes, err := json.Marshal(metadata); err == nil {
			payload = datatypes.JSON(bytes)
		}
	}
	if err := s.audits.Log(ctx, &entity.AuditLog{Actor: &subject, Action: action, Metadata: payload}); err != nil && s.logger != nil {
		s.logger.WithError(err).Warn("audit log write failed")
	}
}
