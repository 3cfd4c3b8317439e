package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"autofleet/internal/app/dto"
	"autofleet/internal/app/locations"
	domainlocation "autofleet/internal/domain/location"
	domainuser "autofleet/internal/domain/user"
)

type LocationHandler struct {
	Service *locations.Service
}

type locationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
}

func (r locationRequest) toParams() locations.LocationParams {
	return locations.LocationParams{
		Name:    r.Name,
		Address: r.Address,
		City:    r.City,
		Country: r.Country,
	}
}

func (h LocationHandler) List(c *gin.Context) {
	items, err := h.Service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapLocationCollection(items))
}

func (h LocationHandler) Get(c *gin.Context) {
	loc, err := h.Service.Get(c.Request.Context(), domainlocation.LocationID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapLocation(loc))
}

func (h LocationHandler) Create(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loc, err := h.Service.Create(c.Request.Context(), req.toParams())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapLocation(loc))
}

func (h LocationHandler) Update(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loc, err := h.Service.Update(c.Request.Context(), domainlocation.LocationID(c.Param("id")), req.toParams())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapLocation(loc))
}

func (h LocationHandler) Delete(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), domainlocation.LocationID(c.Param("id"))); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ LocationHTTP = LocationHandler{}
