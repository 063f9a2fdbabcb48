package middleware

import (
	"context"
	"net/http"
	"time"

	"floorPilot/domain"
	"floorPilot/pkg/logger"
	jsonres "floorPilot/pkg/response"

	"github.com/labstack/echo/v4"
)

// SDKKeyHeader carries the credential issued to a mediated app.
const SDKKeyHeader = "X-SDK-Key"

// SDKKeyValidator checks an SDK key and returns the app it belongs to.
type SDKKeyValidator interface {
	ValidateSDKKey(ctx context.Context, sdkKey string) (domain.App, error)
}

// SDKKeyAuth guards the data-plane endpoints. Decision and outcome calls
// must present the key issued to an active app.
func SDKKeyAuth(validator SDKKeyValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sdkKey := c.Request().Header.Get(SDKKeyHeader)
			if sdkKey == "" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Missing SDK key", nil,
				))
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			app, err := validator.ValidateSDKKey(ctx, sdkKey)
			if err != nil {
				logger.Warn("SDK key rejected", "error", err)
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid SDK key", nil,
				))
			}

			c.Set("app_id", app.ID)
			c.Set("app_name", app.Name)

			return next(c)
		}
	}
}
