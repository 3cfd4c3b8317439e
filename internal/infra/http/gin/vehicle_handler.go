package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"autofleet/internal/app/dto"
	"autofleet/internal/app/fleet"
	domainuser "autofleet/internal/domain/user"
	domainvehicle "autofleet/internal/domain/vehicle"
)

type VehicleHandler struct {
	Service *fleet.Service
}

type vehicleRequest struct {
	Make           string `json:"make"`
	Model          string `json:"model"`
	Year           int    `json:"year"`
	Plate          string `json:"plate"`
	Category       string `json:"category"`
	Seats          int    `json:"seats"`
	Transmission   string `json:"transmission"`
	DailyRateCents int64  `json:"daily_rate_cents"`
	Label          string `json:"label"`
	ImageURL       string `json:"image_url"`
}

func (r vehicleRequest) toParams() fleet.VehicleParams {
	return fleet.VehicleParams{
		Make:           r.Make,
		Model:          r.Model,
		Year:           r.Year,
		Plate:          r.Plate,
		Category:       r.Category,
		Seats:          r.Seats,
		Transmission:   r.Transmission,
		DailyRateCents: r.DailyRateCents,
		Label:          r.Label,
		ImageURL:       r.ImageURL,
	}
}

func (h VehicleHandler) Catalog(c *gin.Context) {
	items, total, err := h.Service.List(c.Request.Context(), domainvehicle.ListParams{
		Category: c.Query("category"),
		Label:    domainvehicle.AvailabilityLabel(c.Query("label")),
		Query:    c.Query("q"),
		Limit:    parseIntWithDefault(c.Query("limit"), 20),
		Offset:   parseIntWithDefault(c.Query("offset"), 0),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapVehicleCollection(items, total))
}

func (h VehicleHandler) Get(c *gin.Context) {
	vehicle, err := h.Service.Get(c.Request.Context(), domainvehicle.VehicleID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapVehicle(vehicle))
}

func (h VehicleHandler) Create(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vehicle, err := h.Service.Create(c.Request.Context(), req.toParams())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapVehicle(vehicle))
}

func (h VehicleHandler) Update(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vehicle, err := h.Service.Update(c.Request.Context(), domainvehicle.VehicleID(c.Param("id")), req.toParams())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapVehicle(vehicle))
}

func (h VehicleHandler) Delete(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), domainvehicle.VehicleID(c.Param("id"))); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseIntWithDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return def
	}
	return val
}

var _ VehicleHTTP = VehicleHandler{}
