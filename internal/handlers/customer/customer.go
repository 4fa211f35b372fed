// internal/handlers/customer/customer.go
package customer

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/customer"
	"github.com/jejak-awan/ja-kdua-sub010/internal/pkg/response"
	service "github.com/jejak-awan/ja-kdua-sub010/internal/service/customer"
	oltsvc "github.com/jejak-awan/ja-kdua-sub010/internal/service/olt"
)

type CustomerHandler struct {
	customerService *service.CustomerService
	oltService      *oltsvc.Service
}

func NewCustomerHandler(customerService *service.CustomerService, oltService *oltsvc.Service) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		oltService:      oltService,
	}
}

// CreateCustomer creates and provisions a new subscriber
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req customer.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.customerService.CreateCustomer(c.Request.Context(), &req)
	if err != nil {
		if result != nil {
			// Record exists, provisioning did not finish
			response.Error(c, http.StatusBadGateway, "customer created but provisioning incomplete", err)
			return
		}
		response.Error(c, response.StatusFor(err), "failed to create customer", err)
		return
	}

	response.Success(c, http.StatusCreated, "customer created successfully", result)
}

// GetCustomer retrieves a customer by ID
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	result, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, response.StatusFor(err), "customer not found", err)
		return
	}

	response.Success(c, http.StatusOK, "customer retrieved", result)
}

// UpdateStatus changes the billing lifecycle status and reconciles network
// state against it
func (h *CustomerHandler) UpdateStatus(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	var req customer.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.customerService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if result != nil {
			response.Error(c, http.StatusBadGateway, "status updated but network state not converged", err)
			return
		}
		response.Error(c, response.StatusFor(err), "failed to update status", err)
		return
	}

	response.Success(c, http.StatusOK, "status updated", result)
}

// DeleteCustomer tears down network state and removes the record
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		response.Error(c, response.StatusFor(err), "failed to delete customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer deleted", nil)
}

// RegisterONU provisions the customer's ONU on its OLT
func (h *CustomerHandler) RegisterONU(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	var req customer.RegisterONURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	cust, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, response.StatusFor(err), "customer not found", err)
		return
	}

	if err := h.oltService.RegisterONU(c.Request.Context(), cust, req); err != nil {
		response.Error(c, response.StatusFor(err), "failed to register ONU", err)
		return
	}

	response.Success(c, http.StatusOK, "ONU registered", nil)
}

// RebootONU power-cycles the customer's ONU
func (h *CustomerHandler) RebootONU(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	cust, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, response.StatusFor(err), "customer not found", err)
		return
	}

	if err := h.oltService.RebootONU(c.Request.Context(), cust); err != nil {
		response.Error(c, response.StatusFor(err), "failed to reboot ONU", err)
		return
	}

	response.Success(c, http.StatusOK, "ONU reboot issued", nil)
}

func paramID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
