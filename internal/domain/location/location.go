package location

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired   = errors.New("location: id is required")
	ErrNameRequired = errors.New("location: name is required")
	ErrCityRequired = errors.New("location: city is required")
	ErrNotFound     = errors.New("location: not found")
)

type LocationID string

// Location is a pickup/dropoff branch of the rental network.
type Location struct {
	ID        LocationID
	Name      string
	Address   string
	City      string
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id LocationID) (*Location, error)
	Save(ctx context.Context, loc *Location) error
	Delete(ctx context.Context, id LocationID) error
	List(ctx context.Context) ([]*Location, error)
}

type CreateParams struct {
	ID      LocationID
	Name    string
	Address string
	City    string
	Country string
	Now     time.Time
}

func NewLocation(params CreateParams) (*Location, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(params.City) == "" {
		return nil, ErrCityRequired
	}
	now := params.Now.UTC()
	return &Location{
		ID:        params.ID,
		Name:      strings.TrimSpace(params.Name),
		Address:   strings.TrimSpace(params.Address),
		City:      strings.TrimSpace(params.City),
		Country:   strings.TrimSpace(params.Country),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (l *Location) UpdateDetails(name, address, city, country string, now time.Time) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(city) == "" {
		return ErrCityRequired
	}
	l.Name = strings.TrimSpace(name)
	l.Address = strings.TrimSpace(address)
	l.City = strings.TrimSpace(city)
	l.Country = strings.TrimSpace(country)
	l.UpdatedAt = now.UTC()
	return nil
}
