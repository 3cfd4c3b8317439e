package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"autofleet/internal/app/dto"
	"autofleet/internal/app/users"
	domainuser "autofleet/internal/domain/user"
)

// UserHandler exposes the administrative account console.
type UserHandler struct {
	Service *users.Service
}

type createUserRequest struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type updateUserRequest struct {
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

func (h UserHandler) Create(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	account, err := h.Service.Create(c.Request.Context(), users.CreateParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapUserProfile(account))
}

func (h UserHandler) Update(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	account, err := h.Service.Update(c.Request.Context(), domainuser.ID(c.Param("id")), users.UpdateParams{
		Name:     req.Name,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(account))
}

func (h UserHandler) Delete(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), domainuser.ID(c.Param("id"))); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h UserHandler) Get(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	account, err := h.Service.Get(c.Request.Context(), domainuser.ID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(account))
}

func (h UserHandler) List(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	items, total, err := h.Service.List(c.Request.Context(), domainuser.ListParams{
		Query:  c.Query("q"),
		Limit:  parseIntWithDefault(c.Query("limit"), 20),
		Offset: parseIntWithDefault(c.Query("offset"), 0),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserList(items, total))
}

// Me returns the authenticated principal's own profile.
func (h UserHandler) Me(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	account, err := h.Service.Get(c.Request.Context(), domainuser.ID(p.ID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(account))
}

var _ UserHTTP = UserHandler{}
