package controllers

import (
	"net/http"
	"strconv"

	"bidding-service/middleware"
	"bidding-service/models"
	"bidding-service/services"

	"github.com/gin-gonic/gin"
)

// OrderController handles staff order endpoints.
type OrderController struct {
	orders services.OrderService
	bids   services.BidService
}

func NewOrderController(orders services.OrderService, bids services.BidService) *OrderController {
	return &OrderController{orders: orders, bids: bids}
}

// CreateOrder handles POST /orders
func (oc *OrderController) CreateOrder(ctx *gin.Context) {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	order, err := oc.orders.CreateOrder(ctx.Request.Context(), principal, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"order": order})
}

// ListOrders handles GET /orders?status=&page=&limit=
func (oc *OrderController) ListOrders(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	resp, err := oc.orders.ListOrders(ctx.Request.Context(), models.OrderFilter{
		Status: ctx.Query("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetOrder handles GET /orders/:id
func (oc *OrderController) GetOrder(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	order, err := oc.orders.GetOrder(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateOrder handles PUT /orders/:id
func (oc *OrderController) UpdateOrder(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	var req models.UpdateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	order, err := oc.orders.UpdateOrder(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// StopBidding handles POST /orders/:id/stop
func (oc *OrderController) StopBidding(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	order, err := oc.orders.StopBidding(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// RepostOrder handles POST /orders/:id/repost
func (oc *OrderController) RepostOrder(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	order, err := oc.orders.RepostOrder(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// History handles GET /orders/history
func (oc *OrderController) History(ctx *gin.Context) {
	orders, err := oc.orders.History(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"orders": orders})
}

// LowestBid handles GET /orders/:id/lowest-bid
func (oc *OrderController) LowestBid(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	lowest, err := oc.bids.LowestBidForOrder(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, lowest)
}
