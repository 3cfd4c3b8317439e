// Package locations manages the pickup/dropoff branch directory.
package locations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"autofleet/internal/app/apperr"
	domainlocation "autofleet/internal/domain/location"
)

type Service struct {
	Locations domainlocation.Repository

	Now   func() time.Time
	IDGen func() string
}

type LocationParams struct {
	Name    string
	Address string
	City    string
	Country string
}

func (s *Service) Create(ctx context.Context, params LocationParams) (*domainlocation.Location, error) {
	loc, err := domainlocation.NewLocation(domainlocation.CreateParams{
		ID:      domainlocation.LocationID(s.newID()),
		Name:    params.Name,
		Address: params.Address,
		City:    params.City,
		Country: params.Country,
		Now:     s.now(),
	})
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	if err := s.Locations.Save(ctx, loc); err != nil {
		return nil, apperr.Storage(err)
	}
	return loc, nil
}

func (s *Service) Update(ctx context.Context, id domainlocation.LocationID, params LocationParams) (*domainlocation.Location, error) {
	loc, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := loc.UpdateDetails(params.Name, params.Address, params.City, params.Country, s.now()); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	if err := s.Locations.Save(ctx, loc); err != nil {
		return nil, apperr.Storage(err)
	}
	return loc, nil
}

func (s *Service) Delete(ctx context.Context, id domainlocation.LocationID) error {
	if _, err := s.byID(ctx, id); err != nil {
		return err
	}
	if err := s.Locations.Delete(ctx, id); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id domainlocation.LocationID) (*domainlocation.Location, error) {
	return s.byID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domainlocation.Location, error) {
	items, err := s.Locations.List(ctx)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return items, nil
}

func (s *Service) byID(ctx context.Context, id domainlocation.LocationID) (*domainlocation.Location, error) {
	loc, err := s.Locations.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainlocation.ErrNotFound) {
			return nil, apperr.NotFound("location", string(id))
		}
		return nil, apperr.Storage(err)
	}
	return loc, nil
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
