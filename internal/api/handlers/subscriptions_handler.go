package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"example.com/storefront/services/orders/internal/clock"
	"example.com/storefront/services/orders/internal/commands"
	"example.com/storefront/services/orders/internal/domain"
	"example.com/storefront/services/orders/internal/repositories"
	"example.com/storefront/services/orders/internal/tracing"
	"example.com/storefront/services/orders/internal/uow"
)

// SubscriptionsHandler handles subscription HTTP requests
type SubscriptionsHandler struct {
	factory       uow.Factory
	subscriptions *repositories.SubscriptionRepository
	clk           clock.Clock
	ids           clock.IDGenerator
	tracer        tracing.Tracer
}

// NewSubscriptionsHandler creates a new subscriptions handler
func NewSubscriptionsHandler(factory uow.Factory, subscriptions *repositories.SubscriptionRepository, clk clock.Clock, ids clock.IDGenerator, tracer tracing.Tracer) *SubscriptionsHandler {
	return &SubscriptionsHandler{
		factory:       factory,
		subscriptions: subscriptions,
		clk:           clk,
		ids:           ids,
		tracer:        tracer,
	}
}

// SubscriptionResponse is the API shape of a subscription.
type SubscriptionResponse struct {
	ID             string            `json:"id"`
	CustomerID     string            `json:"customer_id"`
	Status         string            `json:"status"`
	IntervalDays   int               `json:"interval_days"`
	NextDeliveryAt time.Time         `json:"next_delivery_at"`
	Items          []domain.LineItem `json:"items"`
	Shipping       domain.Address    `json:"shipping"`
	Version        int64             `json:"version"`
}

func subscriptionResponse(sub domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:             sub.AggregateID(),
		CustomerID:     sub.CustomerID(),
		Status:         string(sub.Status()),
		IntervalDays:   sub.IntervalDays(),
		NextDeliveryAt: sub.NextDeliveryAt(),
		Items:          sub.Items(),
		Shipping:       sub.ShippingAddress(),
		Version:        sub.AggregateVersion(),
	}
}

// CreateSubscription handles POST /subscriptions
func (h *SubscriptionsHandler) CreateSubscription(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-create-subscription")
	defer h.tracer.EndTransaction(txn)

	var params commands.CreateSubscriptionParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := principalFrom(c)
	u := h.factory()
	cmd := commands.NewCreateSubscription(u, h.subscriptions, h.clk, h.ids)

	result, err := cmd.Execute(c.Request.Context(), principal, params)
	if err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}
	if err := u.Commit(c.Request.Context(), cmd.Meta(principal)); err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetSubscription handles GET /subscriptions/:id
func (h *SubscriptionsHandler) GetSubscription(c *gin.Context) {
	sub, err := h.subscriptions.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscriptionResponse(sub))
}

// PauseSubscription handles POST /subscriptions/:id/pause
func (h *SubscriptionsHandler) PauseSubscription(c *gin.Context) {
	h.changeStatus(c, "api-pause-subscription", commands.NewPauseSubscription)
}

// ResumeSubscription handles POST /subscriptions/:id/resume
func (h *SubscriptionsHandler) ResumeSubscription(c *gin.Context) {
	h.changeStatus(c, "api-resume-subscription", commands.NewResumeSubscription)
}

// CancelSubscription handles POST /subscriptions/:id/cancel
func (h *SubscriptionsHandler) CancelSubscription(c *gin.Context) {
	h.changeStatus(c, "api-cancel-subscription", commands.NewCancelSubscription)
}

type lifecycleConstructor func(uow.UnitOfWork, commands.SubscriptionStore, clock.Clock, clock.IDGenerator) *commands.ChangeSubscriptionStatus

func (h *SubscriptionsHandler) changeStatus(c *gin.Context, txnName string, construct lifecycleConstructor) {
	txn := h.tracer.StartTransaction(txnName)
	defer h.tracer.EndTransaction(txn)

	principal := principalFrom(c)
	u := h.factory()
	cmd := construct(u, h.subscriptions, h.clk, h.ids)

	result, err := cmd.Execute(c.Request.Context(), principal, commands.SubscriptionLifecycleParams{
		SubscriptionID: c.Param("id"),
	})
	if err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}
	if err := u.Commit(c.Request.Context(), cmd.Meta(principal)); err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes registers the handler's routes
func (h *SubscriptionsHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/subscriptions", h.CreateSubscription)
	router.GET("/subscriptions/:id", h.GetSubscription)
	router.POST("/subscriptions/:id/pause", h.PauseSubscription)
	router.POST("/subscriptions/:id/resume", h.ResumeSubscription)
	router.POST("/subscriptions/:id/cancel", h.CancelSubscription)
}
