package handler

import (
	"errors"
	"net/http"
	"strings"

	"gatekeeper/api/middleware"
	"gatekeeper/internal/dto"
	"gatekeeper/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AccessHandler struct {
	Service  *service.AccessService
	Validate *validator.Validate
}

func NewAccessHandler(svc *service.AccessService, validate *validator.Validate) *AccessHandler {
	return &AccessHandler{Service: svc, Validate: validate}
}

// Decision runs the access decision for the calling client. Clients that
// know their own public address may report it via the addresses query
// parameter (comma-separated); the requesting IP is always considered too.
func (h *AccessHandler) Decision(c echo.Context) error {
	var detected []string
	if reported := c.QueryParam("addresses"); reported != "" {
		for _, address := range strings.Split(reported, ",") {
			if address = strings.TrimSpace(address); address != "" {
				detected = append(detected, address)
			}
		}
	}
	if ip := c.RealIP(); ip != "" {
		detected = append(detected, ip)
	}

	verdict := h.Service.Decide(c.Request().Context(), detected)
	return c.JSON(http.StatusOK, dto.DecisionResponseFromVerdict(verdict))
}

func (h *AccessHandler) ListAllowList(c echo.Context) error {
	entries, err := h.Service.ListAllowed(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.AllowedAddressResponsesFromEntities(entries))
}

func (h *AccessHandler) AddAllowListEntry(c echo.Context) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.AddAllowedAddressRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	entry, err := h.Service.AddAllowed(c.Request().Context(), req.Address, req.Description, actor)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.AllowedAddressResponseFromEntity(entry))
}

func (h *AccessHandler) RemoveAllowListEntry(c echo.Context) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid id"))
	}
	if err := h.Service.RemoveAllowed(c.Request().Context(), id, actor); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AccessHandler) GetPublicAccess(c echo.Context) error {
	config, err := h.Service.GetPublicAccess(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.PublicAccessResponseFromEntity(config))
}

func (h *AccessHandler) SetPublicAccess(c echo.Context) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.SetPublicAccessRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	config, err := h.Service.SetPublicAccess(c.Request().Context(), req.Enabled, actor, req.Reason, service.RealClock{}.Now())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.PublicAccessResponseFromEntity(config))
}

func (h *AccessHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}
