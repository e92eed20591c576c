package handler

import (
	"errors"
	"net/http"

	"gatekeeper/api/middleware"
	"gatekeeper/internal/dto"
	"gatekeeper/internal/entity"
	"gatekeeper/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type TokenHandler struct {
	Service  *service.TokenService
	Validate *validator.Validate
}

func NewTokenHandler(svc *service.TokenService, validate *validator.Validate) *TokenHandler {
	return &TokenHandler{Service: svc, Validate: validate}
}

func (h *TokenHandler) IssueRegistration(c echo.Context) error {
	var req dto.IssueTokenRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	result, err := h.Service.Issue(c.Request().Context(), req.Subject, entity.RegistrationToken, 0)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, mapIssueResponse(result))
}

// IssueReverify issues a short-lived re-verification token for the
// authenticated caller; the subject is taken from the session, never from
// the request body.
func (h *TokenHandler) IssueReverify(c echo.Context) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	result, err := h.Service.Issue(c.Request().Context(), actor, entity.LoginReverifyToken, 0)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, mapIssueResponse(result))
}

func (h *TokenHandler) ValidateToken(c echo.Context) error {
	var req dto.ValidateTokenRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	result, err := h.Service.Validate(c.Request().Context(), req.Secret, req.Subject, req.Code)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ValidateTokenResponse{
		Valid:      result.Valid,
		ReasonCode: string(result.Reason),
	})
}

func (h *TokenHandler) ConsumeToken(c echo.Context) error {
	var req dto.ConsumeTokenRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	result, err := h.Service.Consume(c.Request().Context(), req.Secret)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ConsumeTokenResponse{
		Success:    result.Success,
		ReasonCode: string(result.Reason),
	})
}

func (h *TokenHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func mapIssueResponse(result *service.IssueResult) dto.IssueTokenResponse {
	return dto.IssueTokenResponse{
		TokenID:   result.Token.ID.String(),
		Secret:    result.Secret,
		Code:      result.Code,
		ExpiresAt: result.Token.ExpiresAt,
	}
}
