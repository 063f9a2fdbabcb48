package router

import (
	"floorPilot/internal/rest"

	"github.com/labstack/echo/v4"
)

// SetupFloorRoutes wires the SDK data plane: the decision call the mediation
// SDK makes before every auction, and the outcome report it sends after.
func SetupFloorRoutes(api *echo.Group, handler *rest.FloorHandler, sdkAuth echo.MiddlewareFunc) {
	floors := api.Group("/floors", sdkAuth)

	floors.GET("/decision", handler.GetDecision)
	floors.POST("/outcome", handler.ReportOutcome)
}

func SetupFloorAdminRoutes(api *echo.Group, handler *rest.FloorAdminHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin/floors", authRequired)

	admin.GET("/experiments", handler.GetExperimentStats)
	admin.GET("/experiments/detail", handler.GetExperimentDetail)
	admin.POST("/experiments/reset", handler.ResetExperiment, adminOnly)

	admin.GET("/config", handler.GetConfig)
	admin.PUT("/config", handler.UpsertConfig, adminOnly)

	admin.GET("/overrides", handler.ListOverrides)
	admin.PUT("/override", handler.UpsertOverride, adminOnly)
	admin.DELETE("/override", handler.DeleteOverride, adminOnly)
}

func SetupAdapterRoutes(api *echo.Group, handler *rest.AdapterHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	adapters := api.Group("/adapters", authRequired)

	adapters.GET("", handler.GetAllAdapters)
	adapters.GET("/:id", handler.GetAdapterByID)
	adapters.POST("", handler.RegisterAdapter, adminOnly)
	adapters.PUT("/:id/enabled", handler.SetAdapterEnabled, adminOnly)
	adapters.DELETE("/:id", handler.DeleteAdapter, adminOnly)
}

func SetupAppRoutes(api *echo.Group, handler *rest.AppHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	apps := api.Group("/apps", authRequired)

	apps.GET("", handler.GetAllApps)
	apps.GET("/:id", handler.GetAppByID)
	apps.POST("", handler.RegisterApp, adminOnly)
	apps.POST("/:id/sdk-key", handler.RotateSDKKey, adminOnly)
	apps.PUT("/:id/active", handler.SetAppActive, adminOnly)
}

func SetupOperatorRoutes(api *echo.Group, handler *rest.OperatorHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc, selfOrAdmin echo.MiddlewareFunc) {
	operators := api.Group("/operators")

	operators.POST("/login", handler.Login)
	operators.POST("/refresh", handler.RefreshToken)

	operators.POST("/logout", handler.Logout, authRequired)
	operators.POST("/register", handler.Register, authRequired, adminOnly)
	operators.GET("", handler.GetAllOperators, authRequired, adminOnly)
	operators.GET("/:id", handler.GetOperatorByID, authRequired, selfOrAdmin)
	operators.PUT("/:id", handler.UpdateOperator, authRequired, selfOrAdmin)
	operators.DELETE("/:id", handler.DeleteOperator, authRequired, adminOnly)
}
