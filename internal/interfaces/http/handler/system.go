package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthChecker reports whether the risk classifier endpoint is reachable.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// SystemHandler serves liveness and readiness probes.
type SystemHandler struct {
	BaseHandler
	db         *gorm.DB
	classifier HealthChecker
}

func NewSystemHandler(db *gorm.DB, classifier HealthChecker, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(logger),
		db:          db,
		classifier:  classifier,
	}
}

// Health is the liveness probe. It answers as long as the process runs.
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{"status": "ok"})
}

// Ready is the readiness probe. It checks the database connection and
// the classifier endpoint. The classifier being down degrades readiness
// to 503 so load balancers stop routing scoring traffic here.
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		checks["database"] = "down"
		healthy = false
	} else {
		checks["database"] = "up"
	}

	if h.classifier != nil {
		if err := h.classifier.Healthy(ctx); err != nil {
			checks["classifier"] = "down"
			healthy = false
		} else {
			checks["classifier"] = "up"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": checks, "ready": healthy})
}
