package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gatekeeper/internal/entity"
	"gatekeeper/internal/ipaddr"
	"gatekeeper/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// DecisionReason is the closed set of access-verdict outcomes.
type DecisionReason string

const (
	ReasonPublicAccess       DecisionReason = "PUBLIC_ACCESS"
	ReasonIPAuthorized       DecisionReason = "IP_AUTHORIZED"
	ReasonIPNotAuthorized    DecisionReason = "IP_NOT_AUTHORIZED"
	ReasonIPNotDetected      DecisionReason = "IP_NOT_DETECTED"
	ReasonInvalidIPFormat    DecisionReason = "INVALID_IP_FORMAT"
	ReasonVerificationFailed DecisionReason = "VERIFICATION_FAILED"
	ReasonNetworkError       DecisionReason = "NETWORK_ERROR"
)

// Verdict is the structured outcome of an access decision.
type Verdict struct {
	Allowed        bool
	Reason         DecisionReason
	MatchedAddress string
	DetectedType   ipaddr.Type
	Message        string
}

type AccessConfig struct {
	// DevBypass short-circuits every decision to an allow. It must only be
	// set through explicit configuration and is logged loudly.
	DevBypass bool
}

// AccessService decides whether a caller may reach the platform and manages
// the allow-list and the public-access override. Decisions are read-only;
// only the administrator operations mutate state.
type AccessService struct {
	allowList    repository.AllowListRepository
	publicAccess repository.PublicAccessRepository
	audits       repository.AuditLogRepository

	detector AddressDetector
	logger   *logrus.Logger
	config   AccessConfig
}

func NewAccessService(
	allowList repository.AllowListRepository,
	publicAccess repository.PublicAccessRepository,
	audits repository.AuditLogRepository,
	detector AddressDetector,
	logger *logrus.Logger,
	config AccessConfig,
) *AccessService {
	if config.DevBypass && logger != nil {
		logger.Warn("ACCESS DEV BYPASS ENABLED: every access decision will be allowed; never run this in a deployed environment")
	}
	return &AccessService{
		allowList:    allowList,
		publicAccess: publicAccess,
		audits:       audits,
		detector:     detector,
		logger:       logger,
		config:       config,
	}
}

// Decide turns the caller's detected addresses into a verdict. The checks are
// ordered and the first match wins: public access, detection, format,
// allow-list membership. When detected is empty and a detector is configured,
// the detector supplies the addresses; its failure is a NETWORK_ERROR,
// while store failures are VERIFICATION_FAILED.
func (s *AccessService) Decide(ctx context.Context, detected []string) Verdict {
	if s.config.DevBypass {
		if s.logger != nil {
			s.logger.Warn("access decision bypassed by dev flag")
		}
		return Verdict{
			Allowed: true,
			Reason:  ReasonPublicAccess,
			Message: "development bypass enabled",
		}
	}

	config, err := s.publicAccess.Get(ctx)
	if err != nil {
		return Verdict{
			Reason:  ReasonVerificationFailed,
			Message: "could not verify access configuration, try again later",
		}
	}
	if config.Enabled {
		return Verdict{
			Allowed: true,
			Reason:  ReasonPublicAccess,
			Message: "public access is enabled",
		}
	}

	if len(detected) == 0 && s.detector != nil {
		detected, err = s.detector.Detect(ctx)
		if err != nil {
			return Verdict{
				Reason:  ReasonNetworkError,
				Message: "could not reach the address detection service, check your connection",
			}
		}
	}
	if len(detected) == 0 {
		return Verdict{
			Reason:  ReasonIPNotDetected,
			Message: "no client address could be detected",
		}
	}

	type candidate struct {
		normalized string
		kind       ipaddr.Type
	}
	var candidates []candidate
	for _, address := range detected {
		validation := ipaddr.Validate(address)
		if !validation.Valid {
			continue
		}
		candidates = append(candidates, candidate{
			normalized: ipaddr.Normalize(address),
			kind:       validation.Type,
		})
	}
	if len(candidates) == 0 {
		return Verdict{
			Reason:  ReasonInvalidIPFormat,
			Message: "none of the detected addresses is a well-formed IPv4 or IPv6 address",
		}
	}

	allowed, err := s.allowList.List(ctx)
	if err != nil {
		return Verdict{
			Reason:  ReasonVerificationFailed,
			Message: "could not verify the allow-list, try again later",
		}
	}
	for _, c := range candidates {
		for _, entry := range allowed {
			if entry.Address == c.normalized {
				return Verdict{
					Allowed:        true,
					Reason:         ReasonIPAuthorized,
					MatchedAddress: entry.Address,
					DetectedType:   c.kind,
					Message:        "address is on the allow-list",
				}
			}
		}
	}

	s.audit(ctx, nil, entity.AccessDenied, map[string]any{"addresses": detected})
	return Verdict{
		Reason:       ReasonIPNotAuthorized,
		DetectedType: candidates[0].kind,
		Message:      "address is not on the allow-list and public access is disabled",
	}
}

func (s *AccessService) ListAllowed(ctx context.Context) ([]entity.AllowedAddress, error) {
	return s.allowList.List(ctx)
}

// AddAllowed validates and normalizes the address before insertion; the
// repository's unique index turns a lost race into ErrDuplicateAddress.
func (s *AccessService) AddAllowed(ctx context.Context, address, description, actor string) (*entity.AllowedAddress, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, ErrInvalidInput
	}
	validation := ipaddr.Validate(address)
	if !validation.Valid {
		return nil, ErrInvalidAddress
	}

	entry := &entity.AllowedAddress{
		Address:     ipaddr.Normalize(address),
		AddressType: validation.Type,
		Description: strings.TrimSpace(description),
		AddedBy:     actor,
	}
	if err := s.allowList.Add(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateAddress) {
			return nil, ErrDuplicateAddress
		}
		return nil, err
	}

	s.audit(ctx, &actor, entity.AllowListAdded, map[string]any{"address": entry.Address})
	return entry, nil
}

func (s *AccessService) RemoveAllowed(ctx context.Context, id uuid.UUID, actor string) error {
	if err := s.allowList.Remove(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAddressNotFound
		}
		return err
	}
	s.audit(ctx, &actor, entity.AllowListRemoved, map[string]any{"id": id.String()})
	return nil
}

func (s *AccessService) GetPublicAccess(ctx context.Context) (*entity.PublicAccessConfig, error) {
	return s.publicAccess.Get(ctx)
}

// SetPublicAccess replaces the singleton with a full record carrying the
// acting administrator and timestamp.
func (s *AccessService) SetPublicAccess(ctx context.Context, enabled bool, actor, reason string, now time.Time) (*entity.PublicAccessConfig, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, ErrInvalidInput
	}
	config := &entity.PublicAccessConfig{
		Enabled:   enabled,
		EnabledBy: actor,
		EnabledAt: now,
		Reason:    strings.TrimSpace(reason),
	}
	if err := s.publicAccess.Set(ctx, config); err != nil {
		return nil, err
	}
	s.audit(ctx, &actor, entity.PublicAccessToggled, map[string]any{"enabled": enabled, "reason": reason})
	return config, nil
}

func (s *AccessService) audit(ctx context.Context, actor *string, action entity.AuditAction, metadata map[string]any) {
	if s.audits == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		if bytes, err := json.Marshal(metadata); err == nil {
			payload = datatypes.JSON(bytes)
		}
	}
	if err := s.audits.Log(ctx, &entity.AuditLog{Actor: actor, Action: action, Metadata: payload}); err != nil && s.logger != nil {
		s.logger.WithError(err).Warn("audit log write failed")
	}
}
