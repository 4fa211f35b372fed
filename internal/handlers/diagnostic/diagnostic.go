// internal/handlers/diagnostic/diagnostic.go
package diagnostic

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	diagdomain "github.com/jejak-awan/ja-kdua-sub010/internal/domain/diagnostic"
	"github.com/jejak-awan/ja-kdua-sub010/internal/pkg/response"
	customersvc "github.com/jejak-awan/ja-kdua-sub010/internal/service/customer"
	diagsvc "github.com/jejak-awan/ja-kdua-sub010/internal/service/diagnostic"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Self-care runs on a separate origin from the API
	CheckOrigin: func(r *http.Request) bool { return true },
}

type DiagnosticHandler struct {
	customerService   *customersvc.CustomerService
	diagnosticService *diagsvc.Service
	logger            *zap.Logger
}

func NewDiagnosticHandler(customerService *customersvc.CustomerService, diagnosticService *diagsvc.Service, logger *zap.Logger) *DiagnosticHandler {
	return &DiagnosticHandler{
		customerService:   customerService,
		diagnosticService: diagnosticService,
		logger:            logger,
	}
}

// Diagnose runs the full pipeline and returns the finished report
func (h *DiagnosticHandler) Diagnose(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	cust, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, response.StatusFor(err), "customer not found", err)
		return
	}

	report, err := h.diagnosticService.Diagnose(c.Request.Context(), cust, nil)
	if err != nil {
		response.Error(c, response.StatusFor(err), "diagnostic run refused", err)
		return
	}

	response.Success(c, http.StatusOK, "diagnostic finished", report)
}

// LastReport returns the most recent cached report without probing
func (h *DiagnosticHandler) LastReport(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	report, err := h.diagnosticService.LastReport(c.Request.Context(), id)
	if err != nil {
		response.Error(c, response.StatusFor(err), "no cached report", err)
		return
	}

	response.Success(c, http.StatusOK, "cached report", report)
}

type streamEvent struct {
	Type   string             `json:"type"` // "stage" or "report"
	Stage  *diagdomain.Stage  `json:"stage,omitempty"`
	Report *diagdomain.Report `json:"report,omitempty"`
}

// Stream upgrades to WebSocket, runs the pipeline and pushes each stage
// outcome as it lands, then the final report, then closes.
func (h *DiagnosticHandler) Stream(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	cust, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, response.StatusFor(err), "customer not found", err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	writeEvent := func(event streamEvent) {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Debug("websocket write failed", zap.Error(err))
		}
	}

	report, err := h.diagnosticService.Diagnose(c.Request.Context(), cust, func(stage diagdomain.Stage) {
		writeEvent(streamEvent{Type: "stage", Stage: &stage})
	})
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(time.Second))
		return
	}

	writeEvent(streamEvent{Type: "report", Report: report})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}
