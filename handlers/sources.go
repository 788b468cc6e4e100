package handlers

import (
	"net/http"

	"backoffice/models"
	"backoffice/services/aggregator"
	"backoffice/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// SourceHandler exposes the raw entity listings the activity view is built from.
type SourceHandler struct {
	sources aggregator.Sources
}

func NewSourceHandler(sources aggregator.Sources) *SourceHandler {
	return &SourceHandler{sources: sources}
}

func bindListRequest(c *gin.Context) (models.ListRequest, bool) {
	var req models.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid query", err.Error())
		return req, false
	}
	req = req.Normalize(defaultListLimit)
	req.Limit = min(req.Limit, maxListLimit)
	return req, true
}

func (h *SourceHandler) listFailed(c *gin.Context, what string, err error) {
	getLogger(c).Error("Failed to list "+what, zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch " + what})
}

// ListCustomersHandler handles GET /customers.
func (h *SourceHandler) ListCustomersHandler(c *gin.Context) {
	req, ok := bindListRequest(c)
	if !ok {
		return
	}
	page, err := h.sources.Customers.List(c.Request.Context(), req)
	if err != nil {
		h.listFailed(c, "customers", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListPaymentsHandler handles GET /payments.
func (h *SourceHandler) ListPaymentsHandler(c *gin.Context) {
	req, ok := bindListRequest(c)
	if !ok {
		return
	}
	page, err := h.sources.Payments.List(c.Request.Context(), req)
	if err != nil {
		h.listFailed(c, "payments", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListSubscriptionsHandler handles GET /subscriptions.
func (h *SourceHandler) ListSubscriptionsHandler(c *gin.Context) {
	req, ok := bindListRequest(c)
	if !ok {
		return
	}
	page, err := h.sources.Subscriptions.List(c.Request.Context(), req)
	if err != nil {
		h.listFailed(c, "subscriptions", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListTokenTransactionsHandler handles GET /tokens/transactions. The listing
// takes no status filter.
func (h *SourceHandler) ListTokenTransactionsHandler(c *gin.Context) {
	req, ok := bindListRequest(c)
	if !ok {
		return
	}
	req.Status = ""
	page, err := h.sources.Tokens.List(c.Request.Context(), req)
	if err != nil {
		h.listFailed(c, "token transactions", err)
		return
	}
	c.JSON(http.StatusOK, page)
}
