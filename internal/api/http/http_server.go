package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nftmarket/auction-engine/internal/api/dto"
	"github.com/nftmarket/auction-engine/internal/core"
	"github.com/nftmarket/auction-engine/internal/domain"
	"github.com/nftmarket/auction-engine/internal/middleware"
)

type HTTPServer struct {
	market *core.Market
}

func NewHTTPServer(market *core.Market) *HTTPServer {
	return &HTTPServer{market: market}
}

func (s *HTTPServer) Run(addr string) error {
	r := gin.Default()

	rl := middleware.NewRateLimiter(time.Millisecond * 100)
	r.Use(rl.Middleware())

	r.POST("/assets", s.createAsset)
	r.POST("/assets/:id/transfer", s.transferAsset)
	r.DELETE("/assets/:id", s.removeAsset)

	r.POST("/orders", s.listOrder)
	r.GET("/orders", s.getSnapshot)
	r.GET("/orders/:id", s.getOrder)
	r.POST("/orders/:id/bids", s.placeBid)
	r.POST("/orders/:id/stakes", s.placeStake)
	r.POST("/orders/:id/settle", s.settle)

	return r.Run(addr)
}

func (s *HTTPServer) createAsset(c *gin.Context) {
	var req dto.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := s.market.CreateAsset(c, domain.Account(req.Owner), []byte(req.Data))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CreateAssetResponse{AssetID: uint64(id)})
}

func (s *HTTPServer) transferAsset(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.TransferAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.market.TransferAsset(c, domain.Account(req.Owner), domain.Account(req.Target), domain.AssetID(id)); err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TransferAssetResponse{AssetID: id, Owner: req.Target})
}

func (s *HTTPServer) removeAsset(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	owner := c.Query("owner")
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner required"})
		return
	}
	if err := s.market.RemoveAsset(c, domain.Account(owner), domain.AssetID(id)); err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RemoveAssetResponse{AssetID: id, Removed: true})
}

func (s *HTTPServer) listOrder(c *gin.Context) {
	var req dto.ListOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := s.market.ListOrder(c, domain.Account(req.Seller), domain.AssetID(req.AssetID),
		req.FloorPrice, req.CeilingPrice, req.Duration)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListOrderResponse{Order: convertOrder(order)})
}

func (s *HTTPServer) placeBid(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	outcome, report, err := s.market.PlaceBid(c, domain.Account(req.Bidder), domain.OrderID(id), req.Price)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PlaceBidResponse{
		OrderID: id,
		Outcome: string(outcome),
		Report:  convertReport(report),
	})
}

func (s *HTTPServer) placeStake(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.PlaceStakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stake, err := s.market.PlaceStake(c, domain.Account(req.Staker), domain.OrderID(id), req.Amount)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PlaceStakeResponse{
		OrderID:   id,
		Amount:    stake.Amount,
		Remaining: stake.Remaining,
	})
}

func (s *HTTPServer) settle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, report, err := s.market.Settle(c, domain.Account(req.Caller), domain.OrderID(id))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SettleResponse{
		OrderID: id,
		Status:  string(status),
		Report:  convertReport(report),
	})
}

func (s *HTTPServer) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := s.market.GetOrder(c, domain.OrderID(id))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, convertView(view))
}

func (s *HTTPServer) getSnapshot(c *gin.Context) {
	snap := s.market.CachedSnapshot(c)
	resp := dto.SnapshotResponse{
		Orders:  make([]dto.GetOrderResponse, 0, len(snap.Orders)),
		TakenAt: snap.TakenAt,
	}
	for i := range snap.Orders {
		resp.Orders = append(resp.Orders, convertView(&snap.Orders[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// abortWith maps the engine's error taxonomy onto HTTP status codes.
func abortWith(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAssetNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyListed),
		errors.Is(err, domain.ErrPriceNotIncreasing),
		errors.Is(err, domain.ErrTooEarly),
		errors.Is(err, domain.ErrTooLate):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrInvalidPriceRange),
		errors.Is(err, domain.ErrPriceBelowFloor),
		errors.Is(err, domain.ErrDurationOutOfBounds),
		errors.Is(err, domain.ErrStakeTooLow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func convertOrder(o *domain.Order) dto.Order {
	return dto.Order{
		ID:           uint64(o.ID),
		AssetID:      uint64(o.AssetID),
		Seller:       string(o.Seller),
		FloorPrice:   o.FloorPrice,
		CeilingPrice: o.CeilingPrice,
		CreatedAt:    o.CreatedAt,
		Duration:     o.Duration,
	}
}

func convertView(v *domain.OrderView) dto.GetOrderResponse {
	resp := dto.GetOrderResponse{
		Order:       convertOrder(&v.Order),
		StakeCount:  v.StakeCount,
		StakedTotal: v.StakedTotal,
	}
	if v.Bid != nil {
		resp.Bid = &dto.Bid{
			OrderID: uint64(v.Bid.OrderID),
			Price:   v.Bid.Price,
			Bidder:  string(v.Bid.Bidder),
		}
	}
	return resp
}

func convertReport(r *domain.YieldReport) *dto.YieldReport {
	if r == nil {
		return nil
	}
	out := &dto.YieldReport{
		ID:            r.ID,
		OrderID:       uint64(r.OrderID),
		ClearingPrice: r.ClearingPrice,
		RewardPool:    r.RewardPool,
		AuctionDays:   r.AuctionDays,
		Entries:       make([]dto.YieldEntry, 0, len(r.Entries)),
	}
	for _, e := range r.Entries {
		out.Entries = append(out.Entries, dto.YieldEntry{
			Staker:        string(e.Staker),
			Amount:        e.Amount,
			StakeDays:     e.StakeDays,
			ExchangeRate:  e.ExchangeRate,
			AnnualRate:    e.AnnualRate,
			Credit:        e.Credit,
			RunningCredit: e.RunningCredit,
		})
	}
	return out
}
