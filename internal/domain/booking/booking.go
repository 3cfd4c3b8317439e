package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"autofleet/internal/domain/location"
	"autofleet/internal/domain/shared/daterange"
	"autofleet/internal/domain/shared/events"
	"autofleet/internal/domain/user"
	"autofleet/internal/domain/vehicle"
)

var (
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrUserRequired    = errors.New("booking: user id required")
	ErrVehicleRequired = errors.New("booking: vehicle id required")
	ErrLocationMissing = errors.New("booking: pickup and dropoff locations required")
	ErrNegativeCost    = errors.New("booking: total cost must be non-negative")
	ErrNotFound        = errors.New("booking: not found")
)

type BookingID string

type Booking struct {
	ID                BookingID
	UserID            user.ID
	VehicleID         vehicle.VehicleID
	Range             daterange.DateRange
	PickupLocationID  location.LocationID
	DropoffLocationID location.LocationID
	TotalCostCents    int64
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int64
	events.EventRecorder
}

// ListParams filter and paginate booking listings.
type ListParams struct {
	UserID user.ID
	Status Status
	Limit  int
	Offset int
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id BookingID) error
	List(ctx context.Context, params ListParams) ([]*Booking, int, error)
	// FindHolds returns bookings for the vehicle whose status is in the
	// provided set, optionally skipping one booking id.
	FindHolds(ctx context.Context, vehicleID vehicle.VehicleID, statuses []Status, exclude BookingID) ([]*Booking, error)
}

type CreateParams struct {
	ID                BookingID
	UserID            user.ID
	VehicleID         vehicle.VehicleID
	Range             daterange.DateRange
	PickupLocationID  location.LocationID
	DropoffLocationID location.LocationID
	TotalCostCents    int64
	Status            Status
	CreatedAt         time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("booking: id is required")
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUserRequired
	}
	if strings.TrimSpace(string(params.VehicleID)) == "" {
		return nil, ErrVehicleRequired
	}
	if strings.TrimSpace(string(params.PickupLocationID)) == "" || strings.TrimSpace(string(params.DropoffLocationID)) == "" {
		return nil, ErrLocationMissing
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.TotalCostCents < 0 {
		return nil, ErrNegativeCost
	}
	status := params.Status
	if status == "" {
		status = StatusPendingPayment
	}
	if !status.IsValid() {
		return nil, ErrInvalidState
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:                params.ID,
		UserID:            params.UserID,
		VehicleID:         params.VehicleID,
		Range:             params.Range,
		PickupLocationID:  params.PickupLocationID,
		DropoffLocationID: params.DropoffLocationID,
		TotalCostCents:    params.TotalCostCents,
		Status:            status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	b.Record(BookingCreated{BookingID: b.ID, VehicleID: b.VehicleID, UserID: b.UserID, Range: b.Range, TotalCostCents: b.TotalCostCents, Status: b.Status, At: now})
	return b, nil
}

// ConfirmPayment transitions a pending booking to confirmed.
func (b *Booking) ConfirmPayment(now time.Time) error {
	if b.Status != StatusPendingPayment {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(PaymentConfirmed{BookingID: b.ID, VehicleID: b.VehicleID, Range: b.Range, TotalCostCents: b.TotalCostCents, At: b.UpdatedAt})
	return nil
}

// Cancel marks the booking cancelled if it has not reached a terminal state.
func (b *Booking) Cancel(now time.Time) error {
	if b.Status.IsTerminal() {
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, VehicleID: b.VehicleID, At: b.UpdatedAt})
	return nil
}

// UpdateParams carry the full administrative field set for an edit.
type UpdateParams struct {
	UserID            user.ID
	VehicleID         vehicle.VehicleID
	Range             daterange.DateRange
	PickupLocationID  location.LocationID
	DropoffLocationID location.LocationID
	TotalCostCents    int64
	Status            Status
	Now               time.Time
}

// ApplyUpdate overwrites the booking with a validated administrative edit.
// The status is applied without enforcing the forward transition order:
// administrators fix mistakes through this path.
func (b *Booking) ApplyUpdate(params UpdateParams) error {
	if strings.TrimSpace(string(params.UserID)) == "" {
		return ErrUserRequired
	}
	if strings.TrimSpace(string(params.VehicleID)) == "" {
		return ErrVehicleRequired
	}
	if strings.TrimSpace(string(params.PickupLocationID)) == "" || strings.TrimSpace(string(params.DropoffLocationID)) == "" {
		return ErrLocationMissing
	}
	if err := params.Range.Validate(); err != nil {
		return err
	}
	if params.TotalCostCents < 0 {
		return ErrNegativeCost
	}
	if !params.Status.IsValid() {
		return ErrInvalidState
	}
	b.UserID = params.UserID
	b.VehicleID = params.VehicleID
	b.Range = params.Range
	b.PickupLocationID = params.PickupLocationID
	b.DropoffLocationID = params.DropoffLocationID
	b.TotalCostCents = params.TotalCostCents
	b.Status = params.Status
	b.UpdatedAt = params.Now.UTC()
	b.Record(BookingUpdated{BookingID: b.ID, VehicleID: b.VehicleID, Range: b.Range, Status: b.Status, At: b.UpdatedAt})
	return nil
}
