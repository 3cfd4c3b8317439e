package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"autofleet/internal/app/bookings"
	"autofleet/internal/app/dto"
	domainbooking "autofleet/internal/domain/booking"
	domainlocation "autofleet/internal/domain/location"
	domainuser "autofleet/internal/domain/user"
	domainvehicle "autofleet/internal/domain/vehicle"
)

type BookingHandler struct {
	Service *bookings.Service
}

type createBookingRequest struct {
	VehicleID         string    `json:"vehicle_id"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	PickupLocationID  string    `json:"pickup_location_id"`
	DropoffLocationID string    `json:"dropoff_location_id"`

	// Administrative overrides, ignored for regular customers.
	UserID         string `json:"user_id"`
	Status         string `json:"status"`
	TotalCostCents *int64 `json:"total_cost_cents"`
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	booking, err := h.Service.Create(c.Request.Context(), actorFrom(p), bookings.CreateParams{
		VehicleID:         domainvehicle.VehicleID(req.VehicleID),
		Start:             req.StartDate,
		End:               req.EndDate,
		PickupLocationID:  domainlocation.LocationID(req.PickupLocationID),
		DropoffLocationID: domainlocation.LocationID(req.DropoffLocationID),
		ForUserID:         domainuser.ID(req.UserID),
		RequestedStatus:   req.Status,
		RequestedCostCent: req.TotalCostCents,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapBooking(booking))
}

type updateBookingRequest struct {
	UserID            string    `json:"user_id"`
	VehicleID         string    `json:"vehicle_id"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	PickupLocationID  string    `json:"pickup_location_id"`
	DropoffLocationID string    `json:"dropoff_location_id"`
	Status            string    `json:"status"`
	TotalCostCents    *int64    `json:"total_cost_cents"`
}

func (h BookingHandler) Update(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleAdmin))
	if !ok {
		return
	}
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	booking, err := h.Service.Update(c.Request.Context(), actorFrom(p), domainbooking.BookingID(c.Param("id")), bookings.UpdateParams{
		UserID:            domainuser.ID(req.UserID),
		VehicleID:         domainvehicle.VehicleID(req.VehicleID),
		Start:             req.StartDate,
		End:               req.EndDate,
		PickupLocationID:  domainlocation.LocationID(req.PickupLocationID),
		DropoffLocationID: domainlocation.LocationID(req.DropoffLocationID),
		Status:            req.Status,
		RequestedCostCent: req.TotalCostCents,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBooking(booking))
}

func (h BookingHandler) ConfirmPayment(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	booking, err := h.Service.ConfirmPayment(c.Request.Context(), actorFrom(p), domainbooking.BookingID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBooking(booking))
}

func (h BookingHandler) Cancel(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	booking, err := h.Service.Cancel(c.Request.Context(), actorFrom(p), domainbooking.BookingID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBooking(booking))
}

func (h BookingHandler) Delete(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleAdmin))
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), actorFrom(p), domainbooking.BookingID(c.Param("id"))); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h BookingHandler) Get(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	booking, err := h.Service.Get(c.Request.Context(), actorFrom(p), domainbooking.BookingID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBooking(booking))
}

func (h BookingHandler) List(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	items, total, err := h.Service.List(c.Request.Context(), actorFrom(p), bookings.ListParams{
		Status: c.Query("status"),
		Limit:  parseIntWithDefault(c.Query("limit"), 20),
		Offset: parseIntWithDefault(c.Query("offset"), 0),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBookingCollection(items, total))
}

func actorFrom(p principal) bookings.Actor {
	return bookings.Actor{UserID: domainuser.ID(p.ID), Admin: p.isAdmin()}
}

var _ BookingHTTP = BookingHandler{}
