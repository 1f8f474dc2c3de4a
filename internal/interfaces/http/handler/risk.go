package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appscoring "github.com/polarisaistudio/tenant-prediction/internal/application/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/telemetry"
	"github.com/polarisaistudio/tenant-prediction/internal/interfaces/http/dto"
)

// RiskHandler exposes scoring and batch scan endpoints.
type RiskHandler struct {
	BaseHandler
	scoreService *appscoring.ScoreService
	scanService  *appscoring.ScanService
	metrics      *telemetry.RiskMetrics
}

func NewRiskHandler(scoreService *appscoring.ScoreService, scanService *appscoring.ScanService, logger *zap.Logger) *RiskHandler {
	return &RiskHandler{
		BaseHandler:  NewBaseHandler(logger),
		scoreService: scoreService,
		scanService:  scanService,
	}
}

// SetMetrics attaches domain metrics; nil disables recording.
func (h *RiskHandler) SetMetrics(metrics *telemetry.RiskMetrics) {
	h.metrics = metrics
}

// Scan runs a batch risk scan over leases expiring within the window.
// POST /api/v1/risk/scan
func (h *RiskHandler) Scan(c *gin.Context) {
	var req appscoring.ScanRequest
	if c.Request.ContentLength > 0 {
		if !h.BindJSON(c, &req) {
			return
		}
	}

	summary, err := h.scanService.ScanExpiring(c.Request.Context(), time.Now(), req.WindowDays)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordScan(c.Request.Context(), summary.Duration)
		for _, scanErr := range summary.Errors {
			h.metrics.RecordScanError(c.Request.Context(), string(scanErr.Kind))
		}
	}
	h.Success(c, summary)
}

// ScoreLease recomputes the risk prediction for one lease.
// POST /api/v1/risk/leases/:id/score
func (h *RiskHandler) ScoreLease(c *gin.Context) {
	leaseID, ok := h.parseLeaseID(c)
	if !ok {
		return
	}

	prediction, err := h.scoreService.ScoreLeaseByID(c.Request.Context(), leaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordPrediction(c.Request.Context(), string(prediction.RiskTier), prediction.ModelVersion)
	}
	h.Created(c, appscoring.NewPredictionResponse(prediction))
}

// GetPrediction returns the current prediction for a lease.
// GET /api/v1/risk/leases/:id/prediction
func (h *RiskHandler) GetPrediction(c *gin.Context) {
	leaseID, ok := h.parseLeaseID(c)
	if !ok {
		return
	}

	prediction, err := h.scoreService.GetCurrentPrediction(c.Request.Context(), leaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, appscoring.NewPredictionResponse(prediction))
}

// GetPredictionHistory returns past predictions for a lease, newest first.
// GET /api/v1/risk/leases/:id/predictions
func (h *RiskHandler) GetPredictionHistory(c *gin.Context) {
	leaseID, ok := h.parseLeaseID(c)
	if !ok {
		return
	}

	filter := shared.DefaultFilter()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil && size > 0 && size <= 200 {
		filter.PageSize = size
	}
	history, err := h.scoreService.PredictionHistory(c.Request.Context(), leaseID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	views := make([]*appscoring.PredictionResponse, 0, len(history))
	for i := range history {
		views = append(views, appscoring.NewPredictionResponse(&history[i]))
	}
	h.Success(c, views)
}

func (h *RiskHandler) parseLeaseID(c *gin.Context) (uuid.UUID, bool) {
	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, dto.ErrCodeValidation, "invalid lease id")
		return uuid.Nil, false
	}
	return leaseID, true
}
