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

type AppService interface {
	GetAllApps(ctx context.Context) ([]domain.App, error)
	GetAppByID(ctx context.Context, id uint) (domain.App, error)
	RegisterApp(ctx context.Context, app *domain.App) (*domain.App, error)
	IssueSDKKey(ctx context.Context, id uint) (string, error)
	SetAppActive(ctx context.Context, id uint, active bool) error
}

type AppHandler struct {
	appService AppService
	validator  *validator.Validate
	timeout    time.Duration
}

func NewAppHandler(appService AppService) *AppHandler {
	return &AppHandler{
		appService: appService,
		validator:  validator.New(),
		timeout:    10 * time.Second,
	}
}

type RegisterAppRequest struct {
	Name     string `json:"name" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android"`
	BundleID string `json:"bundle_id" validate:"required"`
}

type SetAppActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (h *AppHandler) GetAllApps(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	apps, err := h.appService.GetAllApps(ctx)
	if err != nil {
		logger.Error("Failed to find all apps", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get all apps",
		"apps":    apps,
	})
}

func (h *AppHandler) GetAppByID(c echo.Context) error {
	idStr := c.Param("id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		logger.Error("Invalid app id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid app id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	app, err := h.appService.GetAppByID(ctx, uint(id))
	if err != nil {
		logger.Error("Failed to find app", err)
		if err.Error() == "app not found" || err.Error() == "invalid app id" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get app",
		"app":     app,
	})
}

// RegisterApp creates the app and returns it with its first SDK key. The key
// is only shown in this response; rotate it to get a new one.
func (h *AppHandler) RegisterApp(c echo.Context) error {
	var req RegisterAppRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate app request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	app, err := h.appService.RegisterApp(ctx, &domain.App{
		Name:     req.Name,
		Platform: req.Platform,
		BundleID: req.BundleID,
	})
	if err != nil {
		logger.Error("Failed to register app", err)
		if err.Error() == "app name is required" || err.Error() == "bundle id is required" {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "app successfully registered",
		"app":     app,
	})
}

// RotateSDKKey mints a fresh SDK key, revoking the old one
func (h *AppHandler) RotateSDKKey(c echo.Context) error {
	idStr := c.Param("id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		logger.Error("Invalid app id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid app id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	sdkKey, err := h.appService.IssueSDKKey(ctx, uint(id))
	if err != nil {
		logger.Error("Failed to rotate sdk key", err)
		if err.Error() == "app not found" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "sdk key rotated",
		"sdk_key": sdkKey,
	})
}

func (h *AppHandler) SetAppActive(c echo.Context) error {
	idStr := c.Param("id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		logger.Error("Invalid app id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid app id"})
	}

	var req SetAppActiveRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate app request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.appService.SetAppActive(ctx, uint(id), *req.Active); err != nil {
		logger.Error("Failed to update app", err)
		if err.Error() == "app not found" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "app successfully updated",
	})
}
