package controllers

import (
	"net/http"

	"bidding-service/models"
	"bidding-service/services"

	"github.com/gin-gonic/gin"
)

// PartnerController handles truck owner verification for staff.
type PartnerController struct {
	partners services.PartnerService
}

func NewPartnerController(partners services.PartnerService) *PartnerController {
	return &PartnerController{partners: partners}
}

// PendingTrucks handles GET /partners/trucks/pending
func (pc *PartnerController) PendingTrucks(ctx *gin.Context) {
	trucks, err := pc.partners.PendingTrucks(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"trucks": trucks})
}

// VerifyTruck handles POST /partners/trucks/:id/verify
func (pc *PartnerController) VerifyTruck(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	var req models.VerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	truck, err := pc.partners.VerifyTruck(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"truck": truck})
}

// VerifyOwner handles POST /partners/owners/:id/verify
func (pc *PartnerController) VerifyOwner(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	var req models.VerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	owner, err := pc.partners.VerifyOwner(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"owner": owner})
}

// Suppliers handles GET /partners/suppliers
func (pc *PartnerController) Suppliers(ctx *gin.Context) {
	owners, err := pc.partners.VerifiedSuppliers(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"suppliers": owners})
}
