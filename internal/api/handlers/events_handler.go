package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"example.com/storefront/services/orders/internal/repositories"
)

// EventsHandler exposes the committed event log.
type EventsHandler struct {
	eventLog *repositories.EventLogRepository
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(eventLog *repositories.EventLogRepository) *EventsHandler {
	return &EventsHandler{eventLog: eventLog}
}

// ListByAggregate handles GET /events/aggregate/:id
func (h *EventsHandler) ListByAggregate(c *gin.Context) {
	entries, err := h.eventLog.ListByAggregate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": entries, "count": len(entries)})
}

// ListRecent handles GET /events/recent
func (h *EventsHandler) ListRecent(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := h.eventLog.ListRecent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": entries, "count": len(entries)})
}

// RegisterRoutes registers the handler's routes
func (h *EventsHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/events/aggregate/:id", h.ListByAggregate)
	router.GET("/events/recent", h.ListRecent)
}
