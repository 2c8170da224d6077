package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/storefront/services/orders/internal/cache"
	"example.com/storefront/services/orders/internal/clock"
	"example.com/storefront/services/orders/internal/commands"
	"example.com/storefront/services/orders/internal/domain"
	"example.com/storefront/services/orders/internal/repositories"
	"example.com/storefront/services/orders/internal/tracing"
	"example.com/storefront/services/orders/internal/uow"
)

// InventoryHandler handles inventory HTTP requests
type InventoryHandler struct {
	factory   uow.Factory
	inventory *repositories.InventoryRepository
	cache     *cache.RedisCache
	clk       clock.Clock
	ids       clock.IDGenerator
	tracer    tracing.Tracer
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(factory uow.Factory, inventory *repositories.InventoryRepository, redisCache *cache.RedisCache, clk clock.Clock, ids clock.IDGenerator, tracer tracing.Tracer) *InventoryHandler {
	return &InventoryHandler{
		factory:   factory,
		inventory: inventory,
		cache:     redisCache,
		clk:       clk,
		ids:       ids,
		tracer:    tracer,
	}
}

func snapshotOf(item domain.InventoryItem) cache.AvailabilitySnapshot {
	return cache.AvailabilitySnapshot{
		ProductID:         item.ProductID(),
		SKU:               string(item.SKU()),
		QuantityOnHand:    item.QuantityOnHand(),
		QuantityAvailable: item.QuantityAvailable(),
		NeedsReorder:      item.NeedsReorder(),
	}
}

// CreateItem handles POST /inventory
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-create-inventory-item")
	defer h.tracer.EndTransaction(txn)

	var params commands.CreateInventoryItemParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := principalFrom(c)
	u := h.factory()
	cmd := commands.NewCreateInventoryItem(u, h.inventory, h.clk, h.ids)

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

// GetAvailability handles GET /inventory/:product_id
func (h *InventoryHandler) GetAvailability(c *gin.Context) {
	productID := c.Param("product_id")
	ctx := c.Request.Context()

	if snapshot, ok, err := h.cache.GetAvailability(ctx, productID); err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("Availability cache read failed")
	} else if ok {
		c.JSON(http.StatusOK, snapshot)
		return
	}

	item, err := h.inventory.FindByProductID(ctx, productID)
	if err != nil {
		writeError(c, err)
		return
	}

	snapshot := snapshotOf(item)
	if err := h.cache.SetAvailability(ctx, snapshot); err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("Availability cache write failed")
	}
	c.JSON(http.StatusOK, snapshot)
}

// ListItems handles GET /inventory
func (h *InventoryHandler) ListItems(c *gin.Context) {
	filter := repositories.InventoryFilter{
		NeedsReorder: c.Query("needs_reorder") == "true",
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		filter.Limit = n
	}

	items, err := h.inventory.FindAll(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]cache.AvailabilitySnapshot, 0, len(items))
	for _, item := range items {
		out = append(out, snapshotOf(item))
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "count": len(out)})
}

// ReplenishItem handles POST /inventory/:product_id/replenish
func (h *InventoryHandler) ReplenishItem(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-replenish-inventory")
	defer h.tracer.EndTransaction(txn)

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	productID := c.Param("product_id")
	principal := principalFrom(c)
	u := h.factory()
	cmd := commands.NewReplenishInventory(u, h.inventory, h.clk, h.ids)

	result, err := cmd.Execute(c.Request.Context(), principal, commands.ReplenishInventoryParams{
		ProductID: productID,
		Quantity:  body.Quantity,
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

	if err := h.cache.InvalidateAvailability(c.Request.Context(), productID); err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("Availability cache invalidation failed")
	}
	c.JSON(http.StatusOK, result)
}

// RegisterRoutes registers the handler's routes
func (h *InventoryHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/inventory", h.CreateItem)
	router.GET("/inventory", h.ListItems)
	router.GET("/inventory/:product_id", h.GetAvailability)
	router.POST("/inventory/:product_id/replenish", h.ReplenishItem)
}
