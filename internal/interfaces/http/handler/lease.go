package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appleasing "github.com/polarisaistudio/tenant-prediction/internal/application/leasing"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
	"github.com/polarisaistudio/tenant-prediction/internal/interfaces/http/dto"
)

// LeaseHandler exposes lease lifecycle endpoints.
type LeaseHandler struct {
	BaseHandler
	leaseService *appleasing.LeaseService
}

func NewLeaseHandler(leaseService *appleasing.LeaseService, logger *zap.Logger) *LeaseHandler {
	return &LeaseHandler{
		BaseHandler:  NewBaseHandler(logger),
		leaseService: leaseService,
	}
}

// GetLease returns one lease.
// GET /api/v1/leases/:id
func (h *LeaseHandler) GetLease(c *gin.Context) {
	leaseID, ok := h.parseLeaseID(c)
	if !ok {
		return
	}

	lease, err := h.leaseService.GetLease(c.Request.Context(), leaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, appleasing.NewLeaseResponse(lease))
}

// ListLeases returns a page of leases.
// GET /api/v1/leases
func (h *LeaseHandler) ListLeases(c *gin.Context) {
	filter := shared.DefaultFilter()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil && size > 0 && size <= 200 {
		filter.PageSize = size
	}

	leases, err := h.leaseService.ListLeases(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	views := make([]*appleasing.LeaseResponse, 0, len(leases))
	for i := range leases {
		views = append(views, appleasing.NewLeaseResponse(&leases[i]))
	}
	h.SuccessWithMeta(c, views, dto.NewMeta(filter.Page, filter.PageSize, int64(len(views))))
}

// RenewLease renews a lease with a new end date and rent.
// POST /api/v1/leases/:id/renew
func (h *LeaseHandler) RenewLease(c *gin.Context) {
	leaseID, ok := h.parseLeaseID(c)
	if !ok {
		return
	}

	var req appleasing.RenewLeaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lease, err := h.leaseService.RenewLease(c.Request.Context(), leaseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, appleasing.NewLeaseResponse(lease))
}

// TerminateLease marks a lease terminated ahead of schedule.
// POST /api/v1/leases/:id/terminate
func (h *LeaseHandler) TerminateLease(c *gin.Context) {
	leaseID, ok := h.parseLeaseID(c)
	if !ok {
		return
	}

	lease, err := h.leaseService.TerminateLease(c.Request.Context(), leaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, appleasing.NewLeaseResponse(lease))
}

func (h *LeaseHandler) parseLeaseID(c *gin.Context) (uuid.UUID, bool) {
	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, dto.ErrCodeValidation, "invalid lease id")
		return uuid.Nil, false
	}
	return leaseID, true
}
