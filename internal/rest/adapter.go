package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"floorPilot/domain"
	"floorPilot/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AdapterService interface {
	GetAllAdapters(ctx context.Context) ([]domain.Adapter, error)
	GetAdapterByID(ctx context.Context, id uint) (domain.Adapter, error)
	RegisterAdapter(ctx context.Context, adapter *domain.Adapter) (*domain.Adapter, error)
	SetAdapterEnabled(ctx context.Context, id uint, enabled bool) error
	DeleteAdapter(ctx context.Context, id uint) error
}

type AdapterHandler struct {
	adapterService AdapterService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewAdapterHandler(adapterService AdapterService) *AdapterHandler {
	return &AdapterHandler{
		adapterService: adapterService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

type RegisterAdapterRequest struct {
	Name    string `json:"name" validate:"required"`
	Enabled *bool  `json:"enabled"`
}

type SetAdapterEnabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (h *AdapterHandler) GetAllAdapters(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	adapters, err := h.adapterService.GetAllAdapters(ctx)
	if err != nil {
		logger.Error("Failed to find all adapters", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "successfully get all adapters",
		"adapters": adapters,
	})
}

func (h *AdapterHandler) GetAdapterByID(c echo.Context) error {
	idStr := c.Param("id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		logger.Error("Invalid adapter id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid adapter id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	adapter, err := h.adapterService.GetAdapterByID(ctx, uint(id))
	if err != nil {
		logger.Error("Failed to find adapter", err)
		if err.Error() == "adapter not found" || err.Error() == "invalid adapter id" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get adapter",
		"adapter": adapter,
	})
}

func (h *AdapterHandler) RegisterAdapter(c echo.Context) error {
	var req RegisterAdapterRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate adapter request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	adapter, err := h.adapterService.RegisterAdapter(ctx, &domain.Adapter{
		Name:    req.Name,
		Enabled: enabled,
	})
	if err != nil {
		logger.Error("Failed to register adapter", err)
		if err.Error() == "adapter name is required" || err.Error() == "adapter already exists" {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "adapter successfully registered",
		"adapter": adapter,
	})
}

// SetAdapterEnabled toggles whether the adapter may be served floor decisions
func (h *AdapterHandler) SetAdapterEnabled(c echo.Context) error {
	idStr := c.Param("id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		logger.Error("Invalid adapter id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid adapter id"})
	}

	var req SetAdapterEnabledRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate adapter request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.adapterService.SetAdapterEnabled(ctx, uint(id), *req.Enabled); err != nil {
		logger.Error("Failed to update adapter", err)
		if err.Error() == "adapter not found" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "adapter successfully updated",
	})
}

func (h *AdapterHandler) DeleteAdapter(c echo.Context) error {
	idStr := c.Param("id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		logger.Error("Invalid adapter id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid adapter id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.adapterService.DeleteAdapter(ctx, uint(id)); err != nil {
		logger.Error("Failed to delete adapter", err)
		if err.Error() == "adapter not found" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "adapter successfully deleted",
	})
}
