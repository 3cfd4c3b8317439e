// Package fleet backs the vehicle catalog and the administrative inventory
// console.
package fleet

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"autofleet/internal/app/apperr"
	domainvehicle "autofleet/internal/domain/vehicle"
)

type Service struct {
	Vehicles domainvehicle.Repository
	Logger   *slog.Logger

	Now   func() time.Time
	IDGen func() string
}

type VehicleParams struct {
	Make           string
	Model          string
	Year           int
	Plate          string
	Category       string
	Seats          int
	Transmission   string
	DailyRateCents int64
	Label          string
	ImageURL       string
}

func (s *Service) Create(ctx context.Context, params VehicleParams) (*domainvehicle.Vehicle, error) {
	vehicle, err := domainvehicle.NewVehicle(domainvehicle.CreateParams{
		ID:             domainvehicle.VehicleID(s.newID()),
		Make:           params.Make,
		Model:          params.Model,
		Year:           params.Year,
		Plate:          params.Plate,
		Category:       params.Category,
		Seats:          params.Seats,
		Transmission:   params.Transmission,
		DailyRateCents: params.DailyRateCents,
		Label:          domainvehicle.AvailabilityLabel(params.Label),
		ImageURL:       params.ImageURL,
		Now:            s.now(),
	})
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	if err := s.Vehicles.Save(ctx, vehicle); err != nil {
		return nil, apperr.Storage(err)
	}
	if s.Logger != nil {
		s.Logger.Info("vehicle created", "vehicle_id", vehicle.ID, "plate", vehicle.Plate)
	}
	return vehicle, nil
}

func (s *Service) Update(ctx context.Context, id domainvehicle.VehicleID, params VehicleParams) (*domainvehicle.Vehicle, error) {
	vehicle, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := vehicle.UpdateAttributes(domainvehicle.UpdateParams{
		Make:           params.Make,
		Model:          params.Model,
		Year:           params.Year,
		Plate:          params.Plate,
		Category:       params.Category,
		Seats:          params.Seats,
		Transmission:   params.Transmission,
		DailyRateCents: params.DailyRateCents,
		Label:          domainvehicle.AvailabilityLabel(params.Label),
		ImageURL:       params.ImageURL,
		Now:            s.now(),
	}); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	if err := s.Vehicles.Save(ctx, vehicle); err != nil {
		return nil, apperr.Storage(err)
	}
	return vehicle, nil
}

func (s *Service) Delete(ctx context.Context, id domainvehicle.VehicleID) error {
	if _, err := s.byID(ctx, id); err != nil {
		return err
	}
	if err := s.Vehicles.Delete(ctx, id); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id domainvehicle.VehicleID) (*domainvehicle.Vehicle, error) {
	return s.byID(ctx, id)
}

func (s *Service) List(ctx context.Context, params domainvehicle.ListParams) ([]*domainvehicle.Vehicle, int, error) {
	items, total, err := s.Vehicles.List(ctx, params)
	if err != nil {
		return nil, 0, apperr.Storage(err)
	}
	return items, total, nil
}

func (s *Service) byID(ctx context.Context, id domainvehicle.VehicleID) (*domainvehicle.Vehicle, error) {
	vehicle, err := s.Vehicles.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainvehicle.ErrNotFound) {
			return nil, apperr.NotFound("vehicle", string(id))
		}
		return nil, apperr.Storage(err)
	}
	return vehicle, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.IDGen != nil {
		return s.IDGen()
	}
	return uuid.NewString()
}
