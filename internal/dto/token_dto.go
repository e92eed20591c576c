package dto

import "time"

type IssueTokenRequest struct {
	Subject string `json:"subject" validate:"required,email"`
}

type IssueTokenResponse struct {
	TokenID   string    `json:"token_id"`
	Secret    string    `json:"secret"`
	Code      string    `json:"code,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ValidateTokenRequest struct {
	Secret  string `json:"secret" validate:"required"`
	Subject string `json:"subject" validate:"omitempty,email"`
	Code    string `json:"code" validate:"omitempty,max=16"`
}

type ValidateTokenResponse struct {
	Valid      bool   `json:"valid"`
	ReasonCode string `json:"reason_code"`
}

type ConsumeTokenRequest struct {
	Secret string `json:"secret" validate:"required"`
}

type ConsumeTokenResponse struct {
	Success    bool   `json:"success"`
	ReasonCode string `json:"reason_code"`
}
