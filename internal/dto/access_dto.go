package dto

import (
	"time"

	"gatekeeper/internal/entity"
	"gatekeeper/internal/service"
)

type DecisionResponse struct {
	Allowed        bool   `json:"allowed"`
	ReasonCode     string `json:"reason_code"`
	MatchedAddress string `json:"matched_address,omitempty"`
	DetectedType   string `json:"detected_type,omitempty"`
	Message        string `json:"message"`
}

func DecisionResponseFromVerdict(v service.Verdict) DecisionResponse {
	return DecisionResponse{
		Allowed:        v.Allowed,
		ReasonCode:     string(v.Reason),
		MatchedAddress: v.MatchedAddress,
		DetectedType:   string(v.DetectedType),
		Message:        v.Message,
	}
}

type AddAllowedAddressRequest struct {
	Address     string `json:"address" validate:"required"`
	Description string `json:"description" validate:"omitempty,max=255"`
}

type AllowedAddressResponse struct {
	ID          string    `json:"id"`
	Address     string    `json:"address"`
	AddressType string    `json:"address_type"`
	Description string    `json:"description,omitempty"`
	AddedBy     string    `json:"added_by"`
	AddedAt     time.Time `json:"added_at"`
}

func AllowedAddressResponseFromEntity(entry *entity.AllowedAddress) AllowedAddressResponse {
	return AllowedAddressResponse{
		ID:          entry.ID.String(),
		Address:     entry.Address,
		AddressType: string(entry.AddressType),
		Description: entry.Description,
		AddedBy:     entry.AddedBy,
		AddedAt:     entry.AddedAt,
	}
}

func AllowedAddressResponsesFromEntities(entries []entity.AllowedAddress) []AllowedAddressResponse {
	responses := make([]AllowedAddressResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, AllowedAddressResponseFromEntity(&entries[i]))
	}
	return responses
}

type SetPublicAccessRequest struct {
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason" validate:"omitempty,max=512"`
}

type PublicAccessResponse struct {
	Enabled   bool      `json:"enabled"`
	EnabledBy string    `json:"enabled_by,omitempty"`
	EnabledAt time.Time `json:"enabled_at,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

func PublicAccessResponseFromEntity(config *entity.PublicAccessConfig) PublicAccessResponse {
	return PublicAccessResponse{
		Enabled:   config.Enabled,
		EnabledBy: config.EnabledBy,
		EnabledAt: config.EnabledAt,
		Reason:    config.Reason,
	}
}
