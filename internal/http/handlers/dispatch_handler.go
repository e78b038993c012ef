package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fleetbook/internal/services"
)

type DispatchHandler struct {
	Dispatch     services.DispatchService
	Availability services.AvailabilityService
	WorkOrders   services.WorkOrderService
}

func (h DispatchHandler) Pending(c *gin.Context) {
	branchID, _ := strconv.ParseInt(c.Query("branchId"), 10, 64)
	bookings, err := h.Dispatch.PendingBookings(branchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h DispatchHandler) Assign(c *gin.Context) {
	var req struct {
		BookingID int64   `json:"bookingId" binding:"required"`
		TripIDs   []int64 `json:"tripIds"`
		DriverID  int64   `json:"driverId"`
		VehicleID int64   `json:"vehicleId"`
		Note      string  `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bookingId is required"})
		return
	}

	res, err := h.Dispatch.Assign(services.AssignCommand{
		BookingID: req.BookingID,
		TripIDs:   req.TripIDs,
		DriverID:  req.DriverID,
		VehicleID: req.VehicleID,
		Note:      req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h DispatchHandler) Unassign(c *gin.Context) {
	var req struct {
		TripID int64 `json:"tripId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tripId is required"})
		return
	}
	if err := h.Dispatch.Unassign(req.TripID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tripId": req.TripID, "status": "SCHEDULED"})
}

func (h DispatchHandler) Reassign(c *gin.Context) {
	var req struct {
		TripID    int64  `json:"tripId" binding:"required"`
		DriverID  int64  `json:"driverId"`
		VehicleID int64  `json:"vehicleId"`
		Note      string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tripId is required"})
		return
	}
	res, err := h.Dispatch.Reassign(req.TripID, req.DriverID, req.VehicleID, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h DispatchHandler) CheckAvailability(c *gin.Context) {
	var req struct {
		BranchID   int64     `json:"branchId" binding:"required"`
		CategoryID int64     `json:"categoryId" binding:"required"`
		StartTime  time.Time `json:"startTime" binding:"required"`
		EndTime    time.Time `json:"endTime" binding:"required"`
		Quantity   int       `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "branchId, categoryId, startTime and endTime are required"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	res, err := h.Availability.Check(services.AvailabilityRequest{
		BranchID:   req.BranchID,
		CategoryID: req.CategoryID,
		Start:      req.StartTime,
		End:        req.EndTime,
		Quantity:   req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// WorkOrder streams the trip's work order PDF.
func (h DispatchHandler) WorkOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	pdf, err := h.WorkOrders.BuildPDF(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="work-order-`+strconv.FormatInt(id, 10)+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
