package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"autofleet/internal/infra/config"
	"autofleet/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	ConfirmPayment(c *gin.Context)
	Cancel(c *gin.Context)
	Delete(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
}

type VehicleHTTP interface {
	Catalog(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type LocationHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type UserHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	Me(c *gin.Context)
}

type Handlers struct {
	Booking        BookingHTTP
	Vehicle        VehicleHTTP
	Location       LocationHTTP
	User           UserHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Vehicle != nil {
		api.GET("/vehicles", h.Vehicle.Catalog)
		api.GET("/vehicles/:id", h.Vehicle.Get)
		api.POST("/vehicles", h.Vehicle.Create)
		api.PUT("/vehicles/:id", h.Vehicle.Update)
		api.DELETE("/vehicles/:id", h.Vehicle.Delete)
	}
	if h.Location != nil {
		api.GET("/locations", h.Location.List)
		api.GET("/locations/:id", h.Location.Get)
		api.POST("/locations", h.Location.Create)
		api.PUT("/locations/:id", h.Location.Update)
		api.DELETE("/locations/:id", h.Location.Delete)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings", h.Booking.List)
		api.GET("/bookings/:id", h.Booking.Get)
		api.PUT("/bookings/:id", h.Booking.Update)
		api.DELETE("/bookings/:id", h.Booking.Delete)
		api.POST("/bookings/:id/confirm-payment", h.Booking.ConfirmPayment)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
	}
	if h.User != nil {
		api.GET("/me", h.User.Me)
		usersGroup := api.Group("/users")
		usersGroup.GET("", h.User.List)
		usersGroup.POST("", h.User.Create)
		usersGroup.GET("/:id", h.User.Get)
		usersGroup.PUT("/:id", h.User.Update)
		usersGroup.DELETE("/:id", h.User.Delete)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
