package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AddressDetector is the external endpoint that reports the caller's
// public address(es). Unreachability maps to a NETWORK_ERROR verdict,
// distinct from store failures.
type AddressDetector interface {
	Detect(ctx context.Context) ([]string, error)
}

// CodeSender delivers a freshly issued verification secret and code to the
// subject. A nil sender is allowed; issuance then still returns the secret
// to the caller.
type CodeSender interface {
	SendRegistrationCode(ctx context.Context, subject string, secret string, code string) error
	SendReverificationCode(ctx context.Context, subject string, secret string) error
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
