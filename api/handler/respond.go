package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gatekeeper/internal/service"

	"github.com/labstack/echo/v4"
)

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeError(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"message": err.Error()})
}

func writeServiceError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidAddress):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrAddressNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateAddress),
		errors.Is(err, service.ErrTokenAlreadyActive),
		errors.Is(err, service.ErrSubjectConsumed):
		status = http.StatusConflict
	case errors.Is(err, service.ErrRateLimited):
		status = http.StatusTooManyRequests
	}
	payload := map[string]string{"message": err.Error()}
	if code := issueReasonCode(err); code != "" {
		payload["reason_code"] = code
	}
	return c.JSON(status, payload)
}

// issueReasonCode exposes issuance rejections under the same reason-code
// vocabulary the validation and consumption responses use.
func issueReasonCode(err error) string {
	switch {
	case errors.Is(err, service.ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, service.ErrTokenAlreadyActive):
		return "TOKEN_ALREADY_ACTIVE"
	case errors.Is(err, service.ErrSubjectConsumed):
		return "SUBJECT_ALREADY_CONSUMED"
	}
	return ""
}

func stringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
