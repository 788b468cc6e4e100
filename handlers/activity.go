package handlers

import (
	"errors"
	"net/http"

	"backoffice/models"
	"backoffice/services/aggregator"
	"backoffice/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ActivityHandler serves the merged activity view.
type ActivityHandler struct {
	agg aggregator.AggregationService
}

func NewActivityHandler(agg aggregator.AggregationService) *ActivityHandler {
	return &ActivityHandler{agg: agg}
}

// GetActivityHandler handles GET /activity. The query string carries the
// filter state; anything left out takes its default.
func (h *ActivityHandler) GetActivityHandler(c *gin.Context) {
	filters := models.DefaultFilterState()
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid filters", err.Error())
		return
	}

	res, err := h.agg.Aggregate(c.Request.Context(), filters)
	if err != nil {
		if errors.Is(err, aggregator.ErrInvalidFilter) {
			utils.JSONError(c, http.StatusBadRequest, "Invalid filters", err.Error())
			return
		}
		if aggErr, ok := aggregator.IsAggregationError(err); ok {
			getLogger(c).Warn("Activity aggregation failed", zap.Strings("causes", aggErr.Messages()))
			c.JSON(http.StatusBadGateway, utils.ErrorResponse{
				Message: "Failed to load activity",
				Details: "One or more sources could not be reached. Retry with the same filters.",
				Causes:  aggErr.Messages(),
			})
			return
		}
		getLogger(c).Error("Activity aggregation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load activity"})
		return
	}
	c.JSON(http.StatusOK, res)
}
