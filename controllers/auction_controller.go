package controllers

import (
	"net/http"

	"bidding-service/models"
	"bidding-service/services"

	"github.com/gin-gonic/gin"
)

// AuctionController handles bidding session endpoints for staff.
type AuctionController struct {
	sessions services.SessionService
	bids     services.BidService
	queries  services.QueryService
}

func NewAuctionController(sessions services.SessionService, bids services.BidService, queries services.QueryService) *AuctionController {
	return &AuctionController{sessions: sessions, bids: bids, queries: queries}
}

// Launch handles POST /auctions
func (ac *AuctionController) Launch(ctx *gin.Context) {
	var req models.LaunchAuctionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	session, err := ac.sessions.Launch(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"session": session})
}

// Get handles GET /auctions/:id
func (ac *AuctionController) Get(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	session, err := ac.sessions.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": session})
}

// Stop handles POST /auctions/:id/stop
func (ac *AuctionController) Stop(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	session, err := ac.sessions.Stop(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": session})
}

// Repost handles POST /auctions/:id/repost
func (ac *AuctionController) Repost(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	session, err := ac.sessions.Repost(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": session})
}

// LowestBid handles GET /auctions/:id/lowest-bid
func (ac *AuctionController) LowestBid(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	lowest, err := ac.bids.LowestBid(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, lowest)
}

// Board handles GET /auctions/board
func (ac *AuctionController) Board(ctx *gin.Context) {
	board, err := ac.queries.Board(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, board)
}
