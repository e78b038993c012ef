package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fleetbook/internal/services"
)

type BookingHandler struct {
	Bookings services.BookingService
	Pricing  services.PricingService
}

type tripPayload struct {
	StartTime     *time.Time `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
	StartLocation string     `json:"startLocation"`
	EndLocation   string     `json:"endLocation"`
	DistanceKm    float64    `json:"distanceKm"`
}

type bookingPayload struct {
	CustomerID     int64                        `json:"customerId"`
	BranchID       int64                        `json:"branchId"`
	ConsultantID   *int64                       `json:"consultantId"`
	HireType       string                       `json:"hireType"`
	UseHighway     bool                         `json:"useHighway"`
	IsHoliday      bool                         `json:"isHoliday"`
	IsWeekend      bool                         `json:"isWeekend"`
	Vehicles       []services.CategoryQuantity  `json:"vehicles"`
	Trips          []tripPayload                `json:"trips"`
	EstimatedCost  *decimal.Decimal             `json:"estimatedCost"`
	DiscountAmount decimal.Decimal              `json:"discountAmount"`
	DepositAmount  *decimal.Decimal             `json:"depositAmount"`
	Status         string                       `json:"status"`
	Note           string                       `json:"note"`
}

func (p bookingPayload) tripInputs() []services.TripInput {
	if p.Trips == nil {
		return nil
	}
	out := make([]services.TripInput, 0, len(p.Trips))
	for _, t := range p.Trips {
		out = append(out, services.TripInput{
			StartTime:     t.StartTime,
			EndTime:       t.EndTime,
			StartLocation: t.StartLocation,
			EndLocation:   t.EndLocation,
			DistanceKm:    t.DistanceKm,
		})
	}
	return out
}

func (h BookingHandler) Create(c *gin.Context) {
	var req bookingPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	detail, err := h.Bookings.Create(services.CreateBookingCommand{
		CustomerID:     req.CustomerID,
		BranchID:       req.BranchID,
		ConsultantID:   req.ConsultantID,
		HireType:       req.HireType,
		UseHighway:     req.UseHighway,
		IsHoliday:      req.IsHoliday,
		IsWeekend:      req.IsWeekend,
		Lines:          req.Vehicles,
		Trips:          req.tripInputs(),
		EstimatedCost:  req.EstimatedCost,
		DiscountAmount: req.DiscountAmount,
		DepositAmount:  req.DepositAmount,
		Status:         req.Status,
		Note:           req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h BookingHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.Bookings.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h BookingHandler) List(c *gin.Context) {
	branchID, _ := strconv.ParseInt(c.Query("branchId"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.Bookings.List(branchID, c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h BookingHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req bookingPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	detail, err := h.Bookings.Update(id, services.UpdateBookingCommand{
		HireType:       req.HireType,
		UseHighway:     req.UseHighway,
		IsHoliday:      req.IsHoliday,
		IsWeekend:      req.IsWeekend,
		Lines:          req.Vehicles,
		Trips:          req.tripInputs(),
		EstimatedCost:  req.EstimatedCost,
		DiscountAmount: req.DiscountAmount,
		DepositAmount:  req.DepositAmount,
		Note:           req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	b, err := h.Bookings.UpdateStatus(id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	res, err := h.Bookings.Cancel(id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h BookingHandler) AddPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Kind   string          `json:"kind" binding:"required"`
		Amount decimal.Decimal `json:"amount"`
		Note   string          `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind and amount are required"})
		return
	}
	inv, err := h.Bookings.AddPayment(id, req.Kind, req.Amount, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// CalculatePrice quotes a booking shape without persisting anything.
func (h BookingHandler) CalculatePrice(c *gin.Context) {
	var req struct {
		Vehicles   []services.CategoryQuantity `json:"vehicles"`
		DistanceKm float64                     `json:"distanceKm"`
		UseHighway bool                        `json:"useHighway"`
		HireType   string                      `json:"hireType"`
		IsHoliday  bool                        `json:"isHoliday"`
		IsWeekend  bool                        `json:"isWeekend"`
		StartTime  *time.Time                  `json:"startTime"`
		EndTime    *time.Time                  `json:"endTime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	quote, err := h.Pricing.Quote(services.PriceRequest{
		Lines:      req.Vehicles,
		DistanceKm: req.DistanceKm,
		UseHighway: req.UseHighway,
		HireType:   req.HireType,
		IsHoliday:  req.IsHoliday,
		IsWeekend:  req.IsWeekend,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":    quote.Total,
		"deposit":  quote.Deposit,
		"hireType": quote.HireType,
		"days":     quote.Days,
	})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
