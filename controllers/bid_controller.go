package controllers

import (
	"net/http"

	"bidding-service/models"
	"bidding-service/services"

	"github.com/gin-gonic/gin"
)

// BidController handles staff bid and load endpoints.
type BidController struct {
	bids       services.BidService
	acceptance services.AcceptanceService
	queries    services.QueryService
}

func NewBidController(bids services.BidService, acceptance services.AcceptanceService, queries services.QueryService) *BidController {
	return &BidController{bids: bids, acceptance: acceptance, queries: queries}
}

// ListBids handles GET /bids?session_id=&order_id=
func (bc *BidController) ListBids(ctx *gin.Context) {
	sessionID, ok := queryUUID(ctx, "session_id")
	if !ok {
		return
	}
	orderID, ok := queryUUID(ctx, "order_id")
	if !ok {
		return
	}

	bids, err := bc.bids.ListBids(ctx.Request.Context(), models.BidFilter{SessionID: sessionID, OrderID: orderID})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"bids": bids})
}

// AcceptBid handles POST /bids/accept
func (bc *BidController) AcceptBid(ctx *gin.Context) {
	var req models.AcceptBidRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	order, err := bc.acceptance.AcceptBid(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// Loads handles GET /loads for staff.
func (bc *BidController) Loads(ctx *gin.Context) {
	loads, err := bc.queries.GetOpenLoads(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"loads": loads})
}
