package rest

import (
	"context"
	"errors"
	"net/http"

	"floorPilot/business/floorbandit"
	"floorPilot/domain"
	jsonres "floorPilot/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	FloorAdminHandler struct {
		validate     *validator.Validate
		floorService FloorAdminService
		cfgRepo      FloorConfigRepository
		overrideRepo FloorOverrideRepository
	}

	FloorAdminService interface {
		ExperimentStats(ctx context.Context) ([]domain.FloorExperimentStats, error)
		ExperimentDetail(ctx context.Context, adapterID, geo, adFormat string) (domain.FloorExperimentDetail, error)
		ResetExperiment(ctx context.Context, adapterID, geo, adFormat string) error
	}

	FloorConfigRepository interface {
		GetConfig(ctx context.Context, adapterID string) (domain.FloorBanditConfig, bool, error)
		UpsertConfig(ctx context.Context, cfg domain.FloorBanditConfig) error
	}

	FloorOverrideRepository interface {
		ListOverrides(ctx context.Context) ([]domain.FloorOverride, error)
		UpsertOverride(ctx context.Context, override domain.FloorOverride) error
		DeleteOverride(ctx context.Context, adapterID, geo, adFormat string) error
	}

	SegmentQuery struct {
		AdapterID string `query:"adapter_id" validate:"required"`
		Geo       string `query:"geo" validate:"required"`
		AdFormat  string `query:"ad_format" validate:"required"`
	}

	ResetRequest struct {
		AdapterID string `json:"adapter_id" validate:"required"`
		Geo       string `json:"geo" validate:"required"`
		AdFormat  string `json:"ad_format" validate:"required"`
	}

	UpsertConfigRequest struct {
		AdapterID       string    `json:"adapter_id" validate:"required"`
		CandidatePrices []float64 `json:"candidate_prices" validate:"omitempty,min=2,dive,gt=0"`
		WarmUpTrials    int       `json:"warmup_trials" validate:"gte=0"`
		ExplorationRate float64   `json:"exploration_rate" validate:"gte=0,lte=1"`
	}

	UpsertOverrideRequest struct {
		AdapterID  string  `json:"adapter_id" validate:"required"`
		Geo        string  `json:"geo" validate:"required"`
		AdFormat   string  `json:"ad_format" validate:"required"`
		FloorPrice float64 `json:"floor_price" validate:"required,gt=0"`
	}
)

func NewFloorAdminHandler(
	floorService FloorAdminService,
	cfgRepo FloorConfigRepository,
	overrideRepo FloorOverrideRepository,
) *FloorAdminHandler {
	return &FloorAdminHandler{
		validate:     validator.New(),
		floorService: floorService,
		cfgRepo:      cfgRepo,
		overrideRepo: overrideRepo,
	}
}

// ---- experiments ----

// GET /api/v1/admin/floors/experiments
func (h *FloorAdminHandler) GetExperimentStats(c echo.Context) error {
	stats, err := h.floorService.ExperimentStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":       len(stats),
		"experiments": stats,
	})
}

// GET /api/v1/admin/floors/experiments/detail?adapter_id=applovin&geo=US&ad_format=banner
func (h *FloorAdminHandler) GetExperimentDetail(c echo.Context) error {
	var q SegmentQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid query: " + err.Error(),
		})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	}

	detail, err := h.floorService.ExperimentDetail(c.Request().Context(), q.AdapterID, q.Geo, q.AdFormat)
	if err != nil {
		if errors.Is(err, floorbandit.ErrExperimentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "experiment not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, detail)
}

// POST /api/v1/admin/floors/experiments/reset
// body: { "adapter_id": "applovin", "geo": "US", "ad_format": "banner" }
func (h *FloorAdminHandler) ResetExperiment(c echo.Context) error {
	var body ResetRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid body: " + err.Error(),
		})
	}
	if err := h.validate.Struct(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	}

	if err := h.floorService.ResetExperiment(c.Request().Context(), body.AdapterID, body.Geo, body.AdFormat); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, jsonres.Success("OK", "experiment reset", nil))
}

// ---- per-adapter config ----

// GET /api/v1/admin/floors/config?adapter_id=applovin
func (h *FloorAdminHandler) GetConfig(c echo.Context) error {
	ctx := c.Request().Context()
	adapterID := c.QueryParam("adapter_id")

	if adapterID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "adapter_id is required",
		})
	}

	cfg, ok, err := h.cfgRepo.GetConfig(ctx, adapterID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "config not found",
		})
	}

	return c.JSON(http.StatusOK, cfg)
}

// PUT /api/v1/admin/floors/config
func (h *FloorAdminHandler) UpsertConfig(c echo.Context) error {
	ctx := c.Request().Context()

	var body UpsertConfigRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid body: " + err.Error(),
		})
	}
	if err := h.validate.Struct(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	}

	cfg := domain.FloorBanditConfig{
		AdapterID:       body.AdapterID,
		CandidatePrices: body.CandidatePrices,
		WarmUpTrials:    body.WarmUpTrials,
		ExplorationRate: body.ExplorationRate,
	}

	if err := h.cfgRepo.UpsertConfig(ctx, cfg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, jsonres.Success("OK", "config saved", nil))
}

// ---- manual overrides ----

// GET /api/v1/admin/floors/overrides
func (h *FloorAdminHandler) ListOverrides(c echo.Context) error {
	overrides, err := h.overrideRepo.ListOverrides(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":     len(overrides),
		"overrides": overrides,
	})
}

// PUT /api/v1/admin/floors/override
// body: { "adapter_id": "applovin", "geo": "US", "ad_format": "banner", "floor_price": 3.5 }
func (h *FloorAdminHandler) UpsertOverride(c echo.Context) error {
	var body UpsertOverrideRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid body: " + err.Error(),
		})
	}
	if err := h.validate.Struct(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	}

	override := domain.FloorOverride{
		AdapterID:  body.AdapterID,
		Geo:        body.Geo,
		AdFormat:   body.AdFormat,
		FloorPrice: body.FloorPrice,
	}

	if err := h.overrideRepo.UpsertOverride(c.Request().Context(), override); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, jsonres.Success("OK", "override saved", nil))
}

// DELETE /api/v1/admin/floors/override?adapter_id=applovin&geo=US&ad_format=banner
func (h *FloorAdminHandler) DeleteOverride(c echo.Context) error {
	var q SegmentQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid query: " + err.Error(),
		})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	}

	if err := h.overrideRepo.DeleteOverride(c.Request().Context(), q.AdapterID, q.Geo, q.AdFormat); err != nil {
		if err.Error() == "override not found" {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, jsonres.Success("OK", "override deleted", nil))
}
