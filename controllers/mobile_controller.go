package controllers

import (
	"net/http"
	"strings"

	"bidding-service/middleware"
	"bidding-service/models"
	"bidding-service/services"

	"github.com/gin-gonic/gin"
)

// MobileController serves the truck owner app.
type MobileController struct {
	otp      services.OTPService
	bids     services.BidService
	queries  services.QueryService
	partners services.PartnerService
}

func NewMobileController(otp services.OTPService, bids services.BidService, queries services.QueryService, partners services.PartnerService) *MobileController {
	return &MobileController{otp: otp, bids: bids, queries: queries, partners: partners}
}

// SendOTP handles POST /mobile/otp/send
func (mc *MobileController) SendOTP(ctx *gin.Context) {
	var req models.SendOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	if err := mc.otp.SendOTP(ctx.Request.Context(), &req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "OTP sent"})
}

// VerifyOTP handles POST /mobile/otp/verify
func (mc *MobileController) VerifyOTP(ctx *gin.Context) {
	var req models.VerifyOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	resp, err := mc.otp.VerifyOTP(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Loads handles GET /mobile/loads
func (mc *MobileController) Loads(ctx *gin.Context) {
	loads, err := mc.queries.GetOpenLoads(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"loads": loads})
}

// PlaceBid handles POST /mobile/bids
func (mc *MobileController) PlaceBid(ctx *gin.Context) {
	var req models.PlaceBidRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	if !mc.samePhone(ctx, req.Phone) {
		return
	}
	bid, err := mc.bids.PlaceBid(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"bid": bid, "price": services.FormatPrice(bid.Amount)})
}

// Register handles POST /mobile/register
func (mc *MobileController) Register(ctx *gin.Context) {
	var req models.RegisterOwnerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	if !mc.samePhone(ctx, req.Phone) {
		return
	}
	owner, err := mc.partners.RegisterOwner(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"owner": owner})
}

// AddTruck handles POST /mobile/trucks
func (mc *MobileController) AddTruck(ctx *gin.Context) {
	var req models.AddTruckRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	if !mc.samePhone(ctx, req.Phone) {
		return
	}
	truck, err := mc.partners.AddTruck(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"truck": truck})
}

// samePhone rejects bodies that act for a phone other than the token's.
func (mc *MobileController) samePhone(ctx *gin.Context, phone string) bool {
	tokenPhone, err := middleware.GetPhone(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return false
	}
	if strings.TrimSpace(phone) != tokenPhone {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Phone does not match the signed-in account"})
		return false
	}
	return true
}
