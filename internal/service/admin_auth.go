package service

import (
	"context"
	"strings"
	"time"

	"gatekeeper/internal/entity"
	"gatekeeper/internal/repository"
	"gatekeeper/internal/utils"
)

// dummyPasswordHash keeps verification time constant when the account does
// not exist.
const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

type LoginResult struct {
	AccessToken string
	ExpiresIn   int64
	Admin       *entity.AdminUser
}

// AdminAuthService authenticates administrators and issues the short-lived
// access tokens that guard allow-list and public-access management.
type AdminAuthService struct {
	admins repository.AdminUserRepository
	audits repository.AuditLogRepository

	passwordHash PasswordHasher
	jwt          *utils.JWTManager
}

func NewAdminAuthService(
	admins repository.AdminUserRepository,
	audits repository.AuditLogRepository,
	passwordHash PasswordHasher,
	jwt *utils.JWTManager,
) *AdminAuthService {
	return &AdminAuthService{
		admins:       admins,
		audits:       audits,
		passwordHash: passwordHash,
		jwt:          jwt,
	}
}

func (s *AdminAuthService) Login(ctx context.Context, email, password string, ipAddress *string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidInput
	}

	email = utils.NormalizeSubject(email)
	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if admin == nil || !admin.IsActive {
		_ = s.passwordHash.Verify(dummyPasswordHash, password)
		s.logLogin(ctx, email, ipAddress, entity.AdminLoginFailed)
		return nil, ErrInvalidCredentials
	}
	if !s.passwordHash.Verify(admin.PasswordHash, password) {
		s.logLogin(ctx, email, ipAddress, entity.AdminLoginFailed)
		return nil, ErrInvalidCredentials
	}

	token, ttl, err := s.jwt.IssueAccessToken(admin.ID.String(), admin.Email, string(admin.Role))
	if err != nil {
		return nil, err
	}

	s.logLogin(ctx, email, ipAddress, entity.AdminLoginSuccess)
	return &LoginResult{
		AccessToken: token,
		ExpiresIn:   int64(ttl.Seconds()),
		Admin:       admin,
	}, nil
}

// Seed creates an initial administrator when the table is empty, so a fresh
// deployment can be bootstrapped from environment variables.
func (s *AdminAuthService) Seed(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}
	count, err := s.admins.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := s.passwordHash.Hash(password)
	if err != nil {
		return err
	}
	return s.admins.Create(ctx, &entity.AdminUser{
		Email:        utils.NormalizeSubject(email),
		PasswordHash: hash,
		Role:         entity.AdminRoleAdmin,
		IsActive:     true,
	})
}

func (s *AdminAuthService) logLogin(ctx context.Context, email string, ipAddress *string, action entity.AuditAction) {
	if s.audits == nil {
		return
	}
	_ = s.audits.Log(ctx, &entity.AuditLog{
		Actor:     &email,
		IPAddress: ipAddress,
		Action:    action,
		CreatedAt: time.Now(),
	})
}
