// internal/handlers/ippool/ippool.go
package ippool

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/ippool"
	"github.com/jejak-awan/ja-kdua-sub010/internal/pkg/response"
	service "github.com/jejak-awan/ja-kdua-sub010/internal/service/ippool"
)

type IPPoolHandler struct {
	poolService *service.Service
}

func NewIPPoolHandler(poolService *service.Service) *IPPoolHandler {
	return &IPPoolHandler{poolService: poolService}
}

type createPoolRequest struct {
	Name    string `json:"name" binding:"required"`
	Network string `json:"network" binding:"required"` // CIDR
}

type setStatusRequest struct {
	Status ippool.PoolStatus `json:"status" binding:"required"`
}

// CreatePool expands a CIDR block into an address pool
func (h *IPPoolHandler) CreatePool(c *gin.Context) {
	var req createPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	pool, err := h.poolService.CreatePool(c.Request.Context(), req.Name, req.Network)
	if err != nil {
		response.Error(c, response.StatusFor(err), "failed to create pool", err)
		return
	}

	response.Success(c, http.StatusCreated, "pool created", pool)
}

// Capacity lists per-pool allocation counts
func (h *IPPoolHandler) Capacity(c *gin.Context) {
	capacities, err := h.poolService.Capacity(c.Request.Context())
	if err != nil {
		response.Error(c, response.StatusFor(err), "failed to list capacity", err)
		return
	}

	response.Success(c, http.StatusOK, "pool capacity", capacities)
}

// SetStatus activates or deactivates a pool
func (h *IPPoolHandler) SetStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid pool ID", err)
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.poolService.SetPoolStatus(c.Request.Context(), id, req.Status); err != nil {
		response.Error(c, response.StatusFor(err), "failed to set pool status", err)
		return
	}

	response.Success(c, http.StatusOK, "pool status updated", nil)
}
