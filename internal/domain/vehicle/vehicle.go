package vehicle

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired    = errors.New("vehicle: id is required")
	ErrMakeRequired  = errors.New("vehicle: make is required")
	ErrModelRequired = errors.New("vehicle: model is required")
	ErrInvalidRate   = errors.New("vehicle: daily rate must be non-negative")
	ErrInvalidSeats  = errors.New("vehicle: seats must be positive")
	ErrNotFound      = errors.New("vehicle: not found")
)

type VehicleID string

// AvailabilityLabel is the informational fleet-console label shown next to a
// vehicle. It never decides booking admission: the overlap check against
// existing bookings does.
type AvailabilityLabel string

const (
	LabelAvailable   AvailabilityLabel = "available"
	LabelRented      AvailabilityLabel = "rented"
	LabelMaintenance AvailabilityLabel = "maintenance"
)

func (l AvailabilityLabel) IsValid() bool {
	switch l {
	case LabelAvailable, LabelRented, LabelMaintenance:
		return true
	}
	return false
}

type Vehicle struct {
	ID             VehicleID
	Make           string
	Model          string
	Year           int
	Plate          string
	Category       string
	Seats          int
	Transmission   string
	DailyRateCents int64
	Label          AvailabilityLabel
	ImageURL       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ListParams filter and paginate fleet listings.
type ListParams struct {
	Category string
	Label    AvailabilityLabel
	Query    string
	Limit    int
	Offset   int
}

type Repository interface {
	ByID(ctx context.Context, id VehicleID) (*Vehicle, error)
	Save(ctx context.Context, vehicle *Vehicle) error
	Delete(ctx context.Context, id VehicleID) error
	List(ctx context.Context, params ListParams) ([]*Vehicle, int, error)
}

type CreateParams struct {
	ID             VehicleID
	Make           string
	Model          string
	Year           int
	Plate          string
	Category       string
	Seats          int
	Transmission   string
	DailyRateCents int64
	Label          AvailabilityLabel
	ImageURL       string
	Now            time.Time
}

func NewVehicle(params CreateParams) (*Vehicle, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(params.Make) == "" {
		return nil, ErrMakeRequired
	}
	if strings.TrimSpace(params.Model) == "" {
		return nil, ErrModelRequired
	}
	if params.DailyRateCents < 0 {
		return nil, ErrInvalidRate
	}
	if params.Seats < 0 {
		return nil, ErrInvalidSeats
	}
	label := params.Label
	if label == "" {
		label = LabelAvailable
	}
	if !label.IsValid() {
		return nil, errors.New("vehicle: invalid availability label")
	}
	now := params.Now.UTC()
	return &Vehicle{
		ID:             params.ID,
		Make:           strings.TrimSpace(params.Make),
		Model:          strings.TrimSpace(params.Model),
		Year:           params.Year,
		Plate:          strings.ToUpper(strings.TrimSpace(params.Plate)),
		Category:       strings.TrimSpace(params.Category),
		Seats:          params.Seats,
		Transmission:   strings.TrimSpace(params.Transmission),
		DailyRateCents: params.DailyRateCents,
		Label:          label,
		ImageURL:       strings.TrimSpace(params.ImageURL),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

type UpdateParams struct {
	Make           string
	Model          string
	Year           int
	Plate          string
	Category       string
	Seats          int
	Transmission   string
	DailyRateCents int64
	Label          AvailabilityLabel
	ImageURL       string
	Now            time.Time
}

func (v *Vehicle) UpdateAttributes(params UpdateParams) error {
	if strings.TrimSpace(params.Make) == "" {
		return ErrMakeRequired
	}
	if strings.TrimSpace(params.Model) == "" {
		return ErrModelRequired
	}
	if params.DailyRateCents < 0 {
		return ErrInvalidRate
	}
	if params.Seats < 0 {
		return ErrInvalidSeats
	}
	if params.Label != "" && !params.Label.IsValid() {
		return errors.New("vehicle: invalid availability label")
	}
	v.Make = strings.TrimSpace(params.Make)
	v.Model = strings.TrimSpace(params.Model)
	v.Year = params.Year
	v.Plate = strings.ToUpper(strings.TrimSpace(params.Plate))
	v.Category = strings.TrimSpace(params.Category)
	v.Seats = params.Seats
	v.Transmission = strings.TrimSpace(params.Transmission)
	v.DailyRateCents = params.DailyRateCents
	if params.Label != "" {
		v.Label = params.Label
	}
	v.ImageURL = strings.TrimSpace(params.ImageURL)
	v.UpdatedAt = params.Now.UTC()
	return nil
}
