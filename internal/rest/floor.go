package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"floorPilot/business/floorbandit"
	"floorPilot/domain"
	"floorPilot/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

type (
	FloorHandler struct {
		validate     *validator.Validate
		floorService FloorService
	}

	FloorService interface {
		GetOptimalBidFloor(ctx context.Context, adapterID, geo, adFormat, currency string) (domain.FloorDecision, error)
		UpdateBidFloor(ctx context.Context, event domain.FloorOutcomeEvent) error
	}

	DecisionQuery struct {
		AdapterID string `query:"adapter_id" validate:"required"`
		Geo       string `query:"geo" validate:"required"`
		AdFormat  string `query:"ad_format" validate:"required,oneof=banner interstitial rewarded native"`
		Currency  string `query:"currency"`
	}

	OutcomeRequest struct {
		AdapterID  string                 `json:"adapter_id" validate:"required"`
		Geo        string                 `json:"geo" validate:"required"`
		AdFormat   string                 `json:"ad_format" validate:"required,oneof=banner interstitial rewarded native"`
		FloorPrice float64                `json:"floor_price" validate:"required,gt=0"`
		Won        bool                   `json:"won"`
		Revenue    float64                `json:"revenue" validate:"gte=0"`
		Currency   string                 `json:"currency"`
		DecisionID string                 `json:"decision_id"`
		Metadata   map[string]interface{} `json:"metadata"`
	}
)

func NewFloorHandler(svc FloorService) *FloorHandler {
	return &FloorHandler{
		validate:     validator.New(),
		floorService: svc,
	}
}

// GET /api/v1/floors/decision?adapter_id=applovin&geo=US&ad_format=banner&currency=USD
func (h *FloorHandler) GetDecision(c echo.Context) error {
	start := time.Now()

	var q DecisionQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if q.Currency == "" {
		q.Currency = "USD"
	}

	ctx := c.Request().Context()
	// a retried SDK request carries the decision id of the attempt it replaces
	if did := c.Request().Header.Get("X-Decision-Id"); did != "" {
		ctx = context.WithValue(ctx, floorbandit.DecisionIDKey, did)
	}

	decision, err := h.floorService.GetOptimalBidFloor(ctx, q.AdapterID, q.Geo, q.AdFormat, q.Currency)
	if err != nil {
		if errors.Is(err, floorbandit.ErrAdapterNotAllowed) {
			return c.JSON(http.StatusForbidden, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	metrics.FloorDecisionRequests.Inc()
	metrics.FloorDecisionLatency.Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, fres.Response.StatusOK(decision))
}

// POST /api/v1/floors/outcome
func (h *FloorHandler) ReportOutcome(c echo.Context) error {
	var req OutcomeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	event := domain.FloorOutcomeEvent{
		AdapterID:  req.AdapterID,
		Geo:        req.Geo,
		AdFormat:   req.AdFormat,
		FloorPrice: req.FloorPrice,
		Won:        req.Won,
		Revenue:    req.Revenue,
		Currency:   req.Currency,
		DecisionID: req.DecisionID,
		Metadata:   datatypes.JSONMap(req.Metadata),
		CreatedAt:  time.Now(),
	}

	if err := h.floorService.UpdateBidFloor(c.Request().Context(), event); err != nil {
		if errors.Is(err, floorbandit.ErrExperimentNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		if errors.Is(err, floorbandit.ErrNoCandidateMatch) {
			return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	metrics.FloorOutcomeRequests.Inc()

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("outcome recorded"))
}
