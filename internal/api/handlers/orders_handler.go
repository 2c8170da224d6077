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

// OrdersHandler handles order HTTP requests
type OrdersHandler struct {
	factory   uow.Factory
	inventory *repositories.InventoryRepository
	orders    *repositories.OrderRepository
	clk       clock.Clock
	ids       clock.IDGenerator
	tracer    tracing.Tracer
}

// NewOrdersHandler creates a new orders handler
func NewOrdersHandler(factory uow.Factory, inventory *repositories.InventoryRepository, orders *repositories.OrderRepository, clk clock.Clock, ids clock.IDGenerator, tracer tracing.Tracer) *OrdersHandler {
	return &OrdersHandler{
		factory:   factory,
		inventory: inventory,
		orders:    orders,
		clk:       clk,
		ids:       ids,
		tracer:    tracer,
	}
}

// OrderResponse is the API shape of an order.
type OrderResponse struct {
	ID          string            `json:"id"`
	CustomerID  string            `json:"customer_id"`
	Status      string            `json:"status"`
	Items       []domain.LineItem `json:"items"`
	Shipping    domain.Address    `json:"shipping"`
	TotalAmount domain.Money      `json:"total_amount"`
	PlacedAt    time.Time         `json:"placed_at"`
	Version     int64             `json:"version"`
}

func orderResponse(order domain.Order) OrderResponse {
	return OrderResponse{
		ID:          order.AggregateID(),
		CustomerID:  order.CustomerID(),
		Status:      string(order.Status()),
		Items:       order.Items(),
		Shipping:    order.ShippingAddress(),
		TotalAmount: order.TotalAmount(),
		PlacedAt:    order.PlacedAt(),
		Version:     order.AggregateVersion(),
	}
}

// PlaceOrder handles POST /orders
func (h *OrdersHandler) PlaceOrder(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-place-order")
	defer h.tracer.EndTransaction(txn)

	var params commands.PlaceOrderParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := principalFrom(c)
	u := h.factory()
	cmd := commands.NewPlaceOrder(u, h.inventory, h.orders, h.clk, h.ids)

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

	h.tracer.AddAttribute(txn, "order_id", result.OrderID)
	c.JSON(http.StatusCreated, result)
}

// GetOrder handles GET /orders/:id
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order))
}

// ListOrders handles GET /orders
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	filter := repositories.OrderFilter{
		CustomerID: c.Query("customer_id"),
		Status:     domain.OrderStatus(c.Query("status")),
	}

	orders, err := h.orders.FindAll(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, orderResponse(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out, "count": len(out)})
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrdersHandler) CancelOrder(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-cancel-order")
	defer h.tracer.EndTransaction(txn)

	principal := principalFrom(c)
	u := h.factory()
	cmd := commands.NewCancelOrder(u, h.inventory, h.orders, h.clk, h.ids)

	result, err := cmd.Execute(c.Request.Context(), principal, commands.CancelOrderParams{OrderID: c.Param("id")})
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

// UpdateOrderStatus handles POST /orders/:id/status
func (h *OrdersHandler) UpdateOrderStatus(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-update-order-status")
	defer h.tracer.EndTransaction(txn)

	var body struct {
		NextStatus string `json:"next_status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := principalFrom(c)
	u := h.factory()
	cmd := commands.NewUpdateOrderStatus(u, h.orders, h.clk, h.ids)

	result, err := cmd.Execute(c.Request.Context(), principal, commands.UpdateOrderStatusParams{
		OrderID:    c.Param("id"),
		NextStatus: body.NextStatus,
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
func (h *OrdersHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/orders", h.PlaceOrder)
	router.GET("/orders", h.ListOrders)
	router.GET("/orders/:id", h.GetOrder)
	router.POST("/orders/:id/cancel", h.CancelOrder)
	router.POST("/orders/:id/status", h.UpdateOrderStatus)
}
