package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"

	"bidding-service/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mock services ---

type mockOrderService struct {
	createFn  func(ctx context.Context, p models.Principal, req *models.CreateOrderRequest) (*models.Order, error)
	getFn     func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	listFn    func(ctx context.Context, f models.OrderFilter) (*models.OrderListResponse, error)
	updateFn  func(ctx context.Context, id uuid.UUID, req *models.UpdateOrderRequest) (*models.Order, error)
	stopFn    func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	repostFn  func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	historyFn func(ctx context.Context) ([]models.Order, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, p models.Principal, req *models.CreateOrderRequest) (*models.Order, error) {
	return m.createFn(ctx, p, req)
}
func (m *mockOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return m.getFn(ctx, id)
}
func (m *mockOrderService) ListOrders(ctx context.Context, f models.OrderFilter) (*models.OrderListResponse, error) {
	return m.listFn(ctx, f)
}
func (m *mockOrderService) UpdateOrder(ctx context.Context, id uuid.UUID, req *models.UpdateOrderRequest) (*models.Order, error) {
	return m.updateFn(ctx, id, req)
}
func (m *mockOrderService) StopBidding(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return m.stopFn(ctx, id)
}
func (m *mockOrderService) RepostOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return m.repostFn(ctx, id)
}
func (m *mockOrderService) History(ctx context.Context) ([]models.Order, error) {
	return m.historyFn(ctx)
}

type mockSessionService struct {
	launchFn func(ctx context.Context, req *models.LaunchAuctionRequest) (*models.BiddingSession, error)
	stopFn   func(ctx context.Context, id uuid.UUID) (*models.BiddingSession, error)
	repostFn func(ctx context.Context, id uuid.UUID) (*models.BiddingSession, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*models.BiddingSession, error)
}

func (m *mockSessionService) Launch(ctx context.Context, req *models.LaunchAuctionRequest) (*models.BiddingSession, error) {
	return m.launchFn(ctx, req)
}
func (m *mockSessionService) Stop(ctx context.Context, id uuid.UUID) (*models.BiddingSession, error) {
	return m.stopFn(ctx, id)
}
func (m *mockSessionService) Repost(ctx context.Context, id uuid.UUID) (*models.BiddingSession, error) {
	return m.repostFn(ctx, id)
}
func (m *mockSessionService) Get(ctx context.Context, id uuid.UUID) (*models.BiddingSession, error) {
	return m.getFn(ctx, id)
}

type mockBidService struct {
	placeFn       func(ctx context.Context, req *models.PlaceBidRequest) (*models.Bid, error)
	listFn        func(ctx context.Context, f models.BidFilter) ([]models.BidView, error)
	lowestFn      func(ctx context.Context, sessionID uuid.UUID) (*models.LowestBidResponse, error)
	lowestOrderFn func(ctx context.Context, orderID uuid.UUID) (*models.LowestBidResponse, error)
}

func (m *mockBidService) PlaceBid(ctx context.Context, req *models.PlaceBidRequest) (*models.Bid, error) {
	return m.placeFn(ctx, req)
}
func (m *mockBidService) ListBids(ctx context.Context, f models.BidFilter) ([]models.BidView, error) {
	return m.listFn(ctx, f)
}
func (m *mockBidService) LowestBid(ctx context.Context, sessionID uuid.UUID) (*models.LowestBidResponse, error) {
	return m.lowestFn(ctx, sessionID)
}
func (m *mockBidService) LowestBidForOrder(ctx context.Context, orderID uuid.UUID) (*models.LowestBidResponse, error) {
	return m.lowestOrderFn(ctx, orderID)
}

type mockQueryService struct {
	loadsFn func(ctx context.Context) ([]models.Load, error)
	boardFn func(ctx context.Context) (*models.AuctionBoard, error)
}

func (m *mockQueryService) GetOpenLoads(ctx context.Context) ([]models.Load, error) {
	return m.loadsFn(ctx)
}
func (m *mockQueryService) Board(ctx context.Context) (*models.AuctionBoard, error) {
	return m.boardFn(ctx)
}

type mockAcceptanceService struct {
	acceptFn func(ctx context.Context, req *models.AcceptBidRequest) (*models.Order, error)
}

func (m *mockAcceptanceService) AcceptBid(ctx context.Context, req *models.AcceptBidRequest) (*models.Order, error) {
	return m.acceptFn(ctx, req)
}

type mockPartnerService struct {
	registerFn    func(ctx context.Context, req *models.RegisterOwnerRequest) (*models.TruckOwner, error)
	addTruckFn    func(ctx context.Context, req *models.AddTruckRequest) (*models.Truck, error)
	pendingFn     func(ctx context.Context) ([]models.PendingTruck, error)
	verifyOwnerFn func(ctx context.Context, id uuid.UUID, req *models.VerifyRequest) (*models.TruckOwner, error)
	verifyTruckFn func(ctx context.Context, id uuid.UUID, req *models.VerifyRequest) (*models.Truck, error)
	suppliersFn   func(ctx context.Context) ([]models.TruckOwner, error)
}

func (m *mockPartnerService) RegisterOwner(ctx context.Context, req *models.RegisterOwnerRequest) (*models.TruckOwner, error) {
	return m.registerFn(ctx, req)
}
func (m *mockPartnerService) AddTruck(ctx context.Context, req *models.AddTruckRequest) (*models.Truck, error) {
	return m.addTruckFn(ctx, req)
}
func (m *mockPartnerService) PendingTrucks(ctx context.Context) ([]models.PendingTruck, error) {
	return m.pendingFn(ctx)
}
func (m *mockPartnerService) VerifyOwner(ctx context.Context, id uuid.UUID, req *models.VerifyRequest) (*models.TruckOwner, error) {
	return m.verifyOwnerFn(ctx, id, req)
}
func (m *mockPartnerService) VerifyTruck(ctx context.Context, id uuid.UUID, req *models.VerifyRequest) (*models.Truck, error) {
	return m.verifyTruckFn(ctx, id, req)
}
func (m *mockPartnerService) VerifiedSuppliers(ctx context.Context) ([]models.TruckOwner, error) {
	return m.suppliersFn(ctx)
}

type mockOTPService struct {
	sendFn   func(ctx context.Context, req *models.SendOTPRequest) error
	verifyFn func(ctx context.Context, req *models.VerifyOTPRequest) (*models.LoginResponse, error)
}

func (m *mockOTPService) SendOTP(ctx context.Context, req *models.SendOTPRequest) error {
	return m.sendFn(ctx, req)
}
func (m *mockOTPService) VerifyOTP(ctx context.Context, req *models.VerifyOTPRequest) (*models.LoginResponse, error) {
	return m.verifyFn(ctx, req)
}

// --- Helpers ---

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func errorOf(w *httptest.ResponseRecorder) string {
	msg, _ := decode(w)["error"].(string)
	return msg
}
