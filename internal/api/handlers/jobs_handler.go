package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/storefront/services/orders/internal/commands"
	"example.com/storefront/services/orders/internal/repositories"
	"example.com/storefront/services/orders/internal/tracing"
	"example.com/storefront/services/orders/internal/uow"
)

// JobsHandler exposes on-demand triggers for the background jobs. The worker
// runs them on a schedule; these endpoints exist for operations.
type JobsHandler struct {
	flusher    *uow.OutboxFlusher
	recurrence *commands.RecurrenceProcessor
	eventLog   *repositories.EventLogRepository
	tracer     tracing.Tracer
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(flusher *uow.OutboxFlusher, recurrence *commands.RecurrenceProcessor, eventLog *repositories.EventLogRepository, tracer tracing.Tracer) *JobsHandler {
	return &JobsHandler{
		flusher:    flusher,
		recurrence: recurrence,
		eventLog:   eventLog,
		tracer:     tracer,
	}
}

// FlushOutbox handles POST /jobs/flush-outbox
func (h *JobsHandler) FlushOutbox(c *gin.Context) {
	txn := h.tracer.StartTransaction("job-flush-outbox")
	defer h.tracer.EndTransaction(txn)

	if err := h.flusher.Flush(c.Request.Context()); err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "flushed"})
}

// ProcessSubscriptions handles POST /jobs/process-subscriptions
func (h *JobsHandler) ProcessSubscriptions(c *gin.Context) {
	txn := h.tracer.StartTransaction("job-process-subscriptions")
	defer h.tracer.EndTransaction(txn)

	result, err := h.recurrence.Run(c.Request.Context())
	if err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// OutboxStatus handles GET /jobs/outbox
func (h *JobsHandler) OutboxStatus(c *gin.Context) {
	pending, err := h.eventLog.CountUnflushed(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

// RegisterRoutes registers the handler's routes
func (h *JobsHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/jobs/flush-outbox", h.FlushOutbox)
	router.POST("/jobs/process-subscriptions", h.ProcessSubscriptions)
	router.GET("/jobs/outbox", h.OutboxStatus)
}
