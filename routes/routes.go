package routes

import (
	"net/http"

	"bidding-service/auth"
	"bidding-service/controllers"
	"bidding-service/middleware"
	"bidding-service/models"

	"github.com/gin-gonic/gin"
)

// Controllers groups every HTTP controller the router serves.
type Controllers struct {
	Orders   *controllers.OrderController
	Auctions *controllers.AuctionController
	Bids     *controllers.BidController
	Partners *controllers.PartnerController
	Mobile   *controllers.MobileController
}

// Register sets up the health check, staff routes and mobile routes.
func Register(r *gin.Engine, c Controllers, tokens *auth.TokenManager, bidLimit gin.HandlerFunc) {
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "bidding-service"})
	})

	api := r.Group("/api/v1")
	RegisterStaffRoutes(api, c)
	RegisterMobileRoutes(api, c.Mobile, tokens, bidLimit)
}

// RegisterStaffRoutes mounts endpoints used by the operations dashboard.
// Identity comes from gateway headers.
func RegisterStaffRoutes(api *gin.RouterGroup, c Controllers) {
	staff := api.Group("")
	staff.Use(middleware.StaffAuth())

	staff.GET("/loads", c.Bids.Loads)

	orders := staff.Group("/orders")
	{
		editors := orders.Group("", middleware.RequireRoles(models.OrderRoles...))
		editors.POST("", c.Orders.CreateOrder)
		editors.GET("", c.Orders.ListOrders)
		editors.GET("/history", c.Orders.History)
		editors.GET("/:id", c.Orders.GetOrder)
		editors.PUT("/:id", c.Orders.UpdateOrder)

		bidding := orders.Group("", middleware.RequireRoles(models.BiddingRoles...))
		bidding.POST("/:id/stop", c.Orders.StopBidding)
		bidding.POST("/:id/repost", c.Orders.RepostOrder)
		bidding.GET("/:id/lowest-bid", c.Orders.LowestBid)
	}

	auctions := staff.Group("/auctions", middleware.RequireRoles(models.BiddingRoles...))
	{
		auctions.POST("", c.Auctions.Launch)
		auctions.GET("/board", c.Auctions.Board)
		auctions.GET("/:id", c.Auctions.Get)
		auctions.POST("/:id/stop", c.Auctions.Stop)
		auctions.POST("/:id/repost", c.Auctions.Repost)
		auctions.GET("/:id/lowest-bid", c.Auctions.LowestBid)
	}

	bids := staff.Group("/bids", middleware.RequireRoles(models.BiddingRoles...))
	{
		bids.GET("", c.Bids.ListBids)
		bids.POST("/accept", c.Bids.AcceptBid)
	}

	partners := staff.Group("/partners", middleware.RequireRoles(models.VerificationRoles...))
	{
		partners.GET("/trucks/pending", c.Partners.PendingTrucks)
		partners.POST("/trucks/:id/verify", c.Partners.VerifyTruck)
		partners.POST("/owners/:id/verify", c.Partners.VerifyOwner)
		partners.GET("/suppliers", c.Partners.Suppliers)
	}
}

// RegisterMobileRoutes mounts the truck owner app endpoints. OTP routes are
// public; the rest need a mobile bearer token.
func RegisterMobileRoutes(api *gin.RouterGroup, mc *controllers.MobileController, tokens *auth.TokenManager, bidLimit gin.HandlerFunc) {
	mobile := api.Group("/mobile")
	mobile.POST("/otp/send", mc.SendOTP)
	mobile.POST("/otp/verify", mc.VerifyOTP)

	authed := mobile.Group("", middleware.MobileAuth(tokens))
	authed.GET("/loads", mc.Loads)
	authed.POST("/register", mc.Register)
	authed.POST("/trucks", mc.AddTruck)
	if bidLimit != nil {
		authed.POST("/bids", bidLimit, mc.PlaceBid)
	} else {
		authed.POST("/bids", mc.PlaceBid)
	}
}
