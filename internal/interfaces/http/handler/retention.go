package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appretention "github.com/polarisaistudio/tenant-prediction/internal/application/retention"
	appscoring "github.com/polarisaistudio/tenant-prediction/internal/application/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/telemetry"
	"github.com/polarisaistudio/tenant-prediction/internal/interfaces/http/dto"
)

// RetentionHandler exposes workflow, metrics and ROI endpoints.
type RetentionHandler struct {
	BaseHandler
	workflowService *appretention.WorkflowService
	roiService      *appretention.ROIService
	scoreService    *appscoring.ScoreService
	metrics         *telemetry.RiskMetrics
}

func NewRetentionHandler(
	workflowService *appretention.WorkflowService,
	roiService *appretention.ROIService,
	scoreService *appscoring.ScoreService,
	logger *zap.Logger,
) *RetentionHandler {
	return &RetentionHandler{
		BaseHandler:     NewBaseHandler(logger),
		workflowService: workflowService,
		roiService:      roiService,
		scoreService:    scoreService,
	}
}

// SetMetrics attaches domain metrics; nil disables recording.
func (h *RetentionHandler) SetMetrics(metrics *telemetry.RiskMetrics) {
	h.metrics = metrics
}

// StartWorkflow starts (or previews, with dry_run) a retention workflow
// for a lease based on its current prediction.
// POST /api/v1/retention/leases/:id/workflow
func (h *RetentionHandler) StartWorkflow(c *gin.Context) {
	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, dto.ErrCodeValidation, "invalid lease id")
		return
	}

	var req appretention.StartWorkflowRequest
	if c.Request.ContentLength > 0 {
		if !h.BindJSON(c, &req) {
			return
		}
	}

	prediction, err := h.scoreService.GetCurrentPrediction(c.Request.Context(), leaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	result, err := h.workflowService.StartWorkflow(c.Request.Context(), leaseID, prediction, req.DryRun)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if result.Started {
		if h.metrics != nil {
			h.metrics.RecordWorkflowStarted(c.Request.Context(), string(prediction.RiskTier))
		}
		h.Created(c, result)
		return
	}
	h.Success(c, result)
}

// GetWorkflowRun returns a workflow run and its recorded actions.
// GET /api/v1/retention/workflows/:id
func (h *RetentionHandler) GetWorkflowRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, dto.ErrCodeValidation, "invalid workflow run id")
		return
	}

	run, actions, err := h.workflowService.GetRun(c.Request.Context(), runID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	actionViews := make([]*appretention.ActionResponse, 0, len(actions))
	for i := range actions {
		actionViews = append(actionViews, appretention.NewActionResponse(&actions[i]))
	}
	h.Success(c, gin.H{
		"run":     appretention.NewWorkflowRunResponse(run),
		"actions": actionViews,
	})
}

// GetMetrics aggregates run and action counts for a time range.
// GET /api/v1/retention/metrics?from=...&to=...
func (h *RetentionHandler) GetMetrics(c *gin.Context) {
	from, to, ok := h.parseTimeRange(c)
	if !ok {
		return
	}

	metrics, err := h.workflowService.Metrics(c.Request.Context(), from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, metrics)
}

// GetROI returns the retention program's cost/benefit report for a range.
// GET /api/v1/retention/roi?from=...&to=...
func (h *RetentionHandler) GetROI(c *gin.Context) {
	from, to, ok := h.parseTimeRange(c)
	if !ok {
		return
	}

	report, err := h.roiService.Report(c.Request.Context(), from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, report)
}

// parseTimeRange reads from/to RFC 3339 query params, defaulting to the
// trailing 30 days when absent.
func (h *RetentionHandler) parseTimeRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Error(c, dto.ErrCodeValidation, "invalid 'from' timestamp, expected RFC 3339")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Error(c, dto.ErrCodeValidation, "invalid 'to' timestamp, expected RFC 3339")
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	if !to.After(from) {
		h.Error(c, dto.ErrCodeValidation, "'to' must be after 'from'")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
