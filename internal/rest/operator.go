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

type OperatorService interface {
	Register(ctx context.Context, operator *domain.Operator) (domain.Operator, error)
	Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, domain.Operator, error)
	ValidateTokenFromRedis(ctx context.Context, token string) (string, error)
	RefreshToken(ctx context.Context, oldToken, ipAddress, userAgent string) (string, domain.Operator, error)
	Logout(ctx context.Context, operatorID uint, token string) error
	GetOperatorByID(ctx context.Context, id uint) (domain.Operator, error)
	GetAllOperators(ctx context.Context) ([]domain.Operator, error)
	UpdateOperator(ctx context.Context, id uint, updateData *domain.Operator) (domain.Operator, error)
	DeleteOperator(ctx context.Context, id uint) error
}

type OperatorHandler struct {
	operatorService OperatorService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewOperatorHandler(operatorService OperatorService) *OperatorHandler {
	return &OperatorHandler{
		operatorService: operatorService,
		validator:       validator.New(),
		timeout:         10 * time.Second,
	}
}

type OperatorRegisterRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=viewer admin"`
}

type OperatorLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type OperatorUpdateRequest struct {
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=viewer admin"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

func (h *OperatorHandler) Register(c echo.Context) error {
	var req OperatorRegisterRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate operator register", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	operator, err := h.operatorService.Register(ctx, &domain.Operator{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		logger.Error("Failed to register operator", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "Operator registered successfully",
		"operator": operator,
	})
}

func (h *OperatorHandler) Login(c echo.Context) error {
	var req OperatorLoginRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate operator login", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	// get ip address and user agent
	ipAddress := c.RealIP()
	userAgent := c.Request().UserAgent()

	token, operator, err := h.operatorService.Login(ctx, req.Email, req.Password, ipAddress, userAgent)
	if err != nil {
		logger.Error("Failed to login operator", err)
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Login successful",
		"token":    token,
		"operator": operator,
	})
}

// Logout handles operator logout by invalidating the Redis session
func (h *OperatorHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	// Get operator_id from context (set by auth middleware)
	operatorID, ok := c.Get("operator_id").(uint)
	if !ok {
		logger.Error("Failed to get operator_id from context")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	// Get token from context (set by auth middleware)
	token, ok := c.Get("token").(string)
	if !ok {
		logger.Error("Failed to get token from context")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	if err := h.operatorService.Logout(ctx, operatorID, token); err != nil {
		logger.Error("Failed to logout operator", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Logout successful",
	})
}

// RefreshToken swaps a still-valid session token for a fresh one
func (h *OperatorHandler) RefreshToken(c echo.Context) error {
	var req RefreshTokenRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate refresh token request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	ipAddress := c.RealIP()
	userAgent := c.Request().UserAgent()

	newToken, operator, err := h.operatorService.RefreshToken(ctx, req.Token, ipAddress, userAgent)
	if err != nil {
		logger.Error("Failed to refresh token", err)
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Token refreshed successfully",
		"token":    newToken,
		"operator": operator,
	})
}

func (h *OperatorHandler) GetAllOperators(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	operators, err := h.operatorService.GetAllOperators(ctx)
	if err != nil {
		logger.Error("Failed to get all operators", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "successfully get all operators",
		"operators": operators,
	})
}

func (h *OperatorHandler) GetOperatorByID(c echo.Context) error {
	idStr := c.Param("id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		logger.Error("Invalid operator id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid operator id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	operator, err := h.operatorService.GetOperatorByID(ctx, uint(id))
	if err != nil {
		logger.Error("Failed to get operator", err)
		if err.Error() == "operator not found" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "successfully get operator",
		"operator": operator,
	})
}

func (h *OperatorHandler) UpdateOperator(c echo.Context) error {
	idStr := c.Param("id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		logger.Error("Invalid operator id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid operator id"})
	}

	var req OperatorUpdateRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate operator update", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	operator, err := h.operatorService.UpdateOperator(ctx, uint(id), &domain.Operator{
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		logger.Error("Failed to update operator", err)
		if err.Error() == "operator not found" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "operator successfully updated",
		"operator": operator,
	})
}

func (h *OperatorHandler) DeleteOperator(c echo.Context) error {
	idStr := c.Param("id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		logger.Error("Invalid operator id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid operator id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.operatorService.DeleteOperator(ctx, uint(id)); err != nil {
		logger.Error("Failed to delete operator", err)
		if err.Error() == "operator not found" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "operator successfully deleted",
	})
}
