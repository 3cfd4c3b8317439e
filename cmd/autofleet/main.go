package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"autofleet/internal/app/availability"
	"autofleet/internal/app/bookings"
	"autofleet/internal/app/fleet"
	"autofleet/internal/app/locations"
	appoutbox "autofleet/internal/app/outbox"
	"autofleet/internal/app/users"
	domainbooking "autofleet/internal/domain/booking"
	domainlocation "autofleet/internal/domain/location"
	domainuser "autofleet/internal/domain/user"
	domainvehicle "autofleet/internal/domain/vehicle"
	"autofleet/internal/infra/broker/kafka"
	"autofleet/internal/infra/config"
	mongodb "autofleet/internal/infra/db/mongo"
	ginserver "autofleet/internal/infra/http/gin"
	"autofleet/internal/infra/obs"
	"autofleet/internal/infra/outbox"
	"autofleet/internal/infra/security"
	"autofleet/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	if app.fleetRepo != nil {
		fixturesPath := getenv("FLEET_FIXTURES", defaultFleetFixturesPath())
		if err := loadFleetFixtures(ctx, app.fleetRepo, fixturesPath, logger); err != nil {
			logger.Warn("fleet fixtures load failed", "error", err, "path", fixturesPath)
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers  ginserver.Handlers
	worker    *outbox.Worker
	ready     func() error
	fleetRepo domainvehicle.Repository
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		bookingRepo  domainbooking.Repository
		vehicleRepo  domainvehicle.Repository
		locationRepo domainlocation.Repository
		userRepo     domainuser.Repository
		eventOutbox  appoutbox.Outbox
		worker       *outbox.Worker
		ready        = func() error { return nil }
		fixturesRepo domainvehicle.Repository
	)

	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		bookingRepo = mongodb.NewBookingRepository(client.DB)
		vehicleRepo = mongodb.NewVehicleRepository(client.DB)
		locationRepo = mongodb.NewLocationRepository(client.DB)
		userRepo = mongodb.NewUserRepository(client.DB)
		store := outbox.NewStore(client.DB)
		eventOutbox = store
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, fmt.Errorf("kafka producer: %w", err)
			}
			worker = &outbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		} else {
			logger.Info("no kafka brokers configured, outbox records will accumulate")
		}
	} else {
		logger.Info("running with in-memory storage")
		bookingRepo = memory.NewBookingRepository()
		vehicleRepo = memory.NewVehicleRepository()
		locationRepo = memory.NewLocationRepository()
		userRepo = memory.NewUserRepository()
		eventOutbox = memory.NewOutbox()
		fixturesRepo = vehicleRepo
	}

	bookingSvc := &bookings.Service{
		Bookings:  bookingRepo,
		Vehicles:  vehicleRepo,
		Locations: locationRepo,
		Users:     userRepo,
		Checker:   availability.Checker{Bookings: bookingRepo},
		Outbox:    eventOutbox,
		Encoder:   appoutbox.JSONEventEncoder{},
		Logger:    logger,
	}
	fleetSvc := &fleet.Service{Vehicles: vehicleRepo, Logger: logger}
	locationSvc := &locations.Service{Locations: locationRepo}
	userSvc := &users.Service{
		Users:  userRepo,
		Hasher: security.BcryptHasher{Cost: cfg.BcryptCost},
	}

	authMW := ginserver.AuthMiddleware{Users: userRepo, Logger: logger}

	return application{
		handlers: ginserver.Handlers{
			Booking:        ginserver.BookingHandler{Service: bookingSvc},
			Vehicle:        ginserver.VehicleHandler{Service: fleetSvc},
			Location:       ginserver.LocationHandler{Service: locationSvc},
			User:           ginserver.UserHandler{Service: userSvc},
			AuthMiddleware: authMW.Handle,
		},
		worker:    worker,
		ready:     ready,
		fleetRepo: fixturesRepo,
	}, nil
}

type vehicleFixture struct {
	ID             string `json:"id"`
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

func loadFleetFixtures(ctx context.Context, repo domainvehicle.Repository, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("fleet fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("fleet fixtures file empty", "path", path)
		return nil
	}

	var fixtures []vehicleFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		vehicle, err := domainvehicle.NewVehicle(domainvehicle.CreateParams{
			ID:             domainvehicle.VehicleID(fx.ID),
			Make:           fx.Make,
			Model:          fx.Model,
			Year:           fx.Year,
			Plate:          fx.Plate,
			Category:       fx.Category,
			Seats:          fx.Seats,
			Transmission:   fx.Transmission,
			DailyRateCents: fx.DailyRateCents,
			Label:          domainvehicle.AvailabilityLabel(fx.Label),
			ImageURL:       fx.ImageURL,
			Now:            now,
		})
		if err != nil {
			logger.Error("fixture invalid", "vehicle_id", fx.ID, "error", err)
			continue
		}
		if err := repo.Save(ctx, vehicle); err != nil {
			logger.Error("cannot store fixture vehicle", "vehicle_id", fx.ID, "error", err)
			continue
		}
		logger.Info("vehicle fixture imported", "vehicle_id", vehicle.ID)
	}
	return nil
}

func defaultFleetFixturesPath() string {
	return filepath.Join("data", "vehicles.json")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
