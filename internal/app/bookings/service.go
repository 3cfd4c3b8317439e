// Package bookings owns the booking lifecycle: it is the sole writer of
// booking records and the admission gate for vehicle/date-range holds.
package bookings

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"autofleet/internal/app/apperr"
	"autofleet/internal/app/availability"
	appoutbox "autofleet/internal/app/outbox"
	domainbooking "autofleet/internal/domain/booking"
	domainlocation "autofleet/internal/domain/location"
	"autofleet/internal/domain/shared/daterange"
	"autofleet/internal/domain/shared/events"
	domainuser "autofleet/internal/domain/user"
	domainvehicle "autofleet/internal/domain/vehicle"
)

// Actor identifies the caller of an operation. Role-based branching is
// resolved here, at the call boundary, not by inspecting the request shape.
type Actor struct {
	UserID domainuser.ID
	Admin  bool
}

type Service struct {
	Bookings  domainbooking.Repository
	Vehicles  domainvehicle.Repository
	Locations domainlocation.Repository
	Users     domainuser.Repository
	Checker   availability.Checker
	Outbox    appoutbox.Outbox
	Encoder   appoutbox.EventEncoder
	Logger    *slog.Logger

	// Now and IDGen are swappable for tests.
	Now   func() time.Time
	IDGen func() string

	locks vehicleLocks
}

type CreateParams struct {
	VehicleID         domainvehicle.VehicleID
	Start             time.Time
	End               time.Time
	PickupLocationID  domainlocation.LocationID
	DropoffLocationID domainlocation.LocationID

	// Administrative overrides; ignored for non-admin callers.
	ForUserID         domainuser.ID
	RequestedStatus   string
	RequestedCostCent *int64
}

// Create validates the request, admits it against existing holds and persists
// the new booking.
func (s *Service) Create(ctx context.Context, actor Actor, params CreateParams) (*domainbooking.Booking, error) {
	dr, err := daterange.New(params.Start, params.End)
	if err != nil {
		return nil, apperr.Validation("end date must be after start date")
	}
	if !actor.Admin && startsBefore(dr, today(s.now())) {
		return nil, apperr.Validation("start date cannot be in the past")
	}

	ownerID := actor.UserID
	if actor.Admin && params.ForUserID != "" {
		ownerID = params.ForUserID
	}
	if _, err := s.Users.ByID(ctx, ownerID); err != nil {
		return nil, lookupError(err, domainuser.ErrNotFound, "user", string(ownerID))
	}
	vehicle, err := s.Vehicles.ByID(ctx, params.VehicleID)
	if err != nil {
		return nil, lookupError(err, domainvehicle.ErrNotFound, "vehicle", string(params.VehicleID))
	}
	if err := s.checkLocations(ctx, params.PickupLocationID, params.DropoffLocationID); err != nil {
		return nil, err
	}

	totalCost := int64(dr.Days()) * vehicle.DailyRateCents
	if actor.Admin && params.RequestedCostCent != nil {
		if *params.RequestedCostCent < 0 {
			return nil, apperr.Validation("total cost must be non-negative")
		}
		totalCost = *params.RequestedCostCent
	}

	status := domainbooking.StatusPendingPayment
	if actor.Admin && params.RequestedStatus != "" {
		if parsed, err := domainbooking.ParseStatus(params.RequestedStatus); err == nil {
			status = parsed
		}
	}

	unlock := s.locks.acquire(params.VehicleID)
	defer unlock()

	result, err := s.Checker.Check(ctx, params.VehicleID, dr, "")
	if err != nil {
		return nil, err
	}
	if !result.Available {
		return nil, apperr.Conflict("vehicle %s is already booked for %s to %s (booking %s)",
			params.VehicleID, dr.Start.Format("2006-01-02"), dr.End.Format("2006-01-02"), result.Conflicts[0])
	}

	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:                domainbooking.BookingID(s.newID()),
		UserID:            ownerID,
		VehicleID:         params.VehicleID,
		Range:             dr,
		PickupLocationID:  params.PickupLocationID,
		DropoffLocationID: params.DropoffLocationID,
		TotalCostCents:    totalCost,
		Status:            status,
		CreatedAt:         s.now(),
	})
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	if err := s.persist(ctx, booking); err != nil {
		return nil, err
	}
	s.log("booking created", "booking_id", booking.ID, "vehicle_id", booking.VehicleID, "user_id", booking.UserID)
	return booking, nil
}

type UpdateParams struct {
	UserID            domainuser.ID
	VehicleID         domainvehicle.VehicleID
	Start             time.Time
	End               time.Time
	PickupLocationID  domainlocation.LocationID
	DropoffLocationID domainlocation.LocationID
	Status            string
	RequestedCostCent *int64
}

// Update replaces a booking's field set after full re-validation. The status
// is applied as supplied: the administrative path may rewind or skip the
// forward transition order.
func (s *Service) Update(ctx context.Context, actor Actor, id domainbooking.BookingID, params UpdateParams) (*domainbooking.Booking, error) {
	if !actor.Admin {
		return nil, apperr.Forbidden("administrator role required")
	}
	booking, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, domainbooking.ErrNotFound, "booking", string(id))
	}

	dr, err := daterange.New(params.Start, params.End)
	if err != nil {
		return nil, apperr.Validation("end date must be after start date")
	}
	if _, err := s.Users.ByID(ctx, params.UserID); err != nil {
		return nil, lookupError(err, domainuser.ErrNotFound, "user", string(params.UserID))
	}
	vehicle, err := s.Vehicles.ByID(ctx, params.VehicleID)
	if err != nil {
		return nil, lookupError(err, domainvehicle.ErrNotFound, "vehicle", string(params.VehicleID))
	}
	if err := s.checkLocations(ctx, params.PickupLocationID, params.DropoffLocationID); err != nil {
		return nil, err
	}
	status, err := domainbooking.ParseStatus(params.Status)
	if err != nil {
		return nil, apperr.Validation("unknown status %q", params.Status)
	}

	totalCost := int64(dr.Days()) * vehicle.DailyRateCents
	if params.RequestedCostCent != nil {
		if *params.RequestedCostCent < 0 {
			return nil, apperr.Validation("total cost must be non-negative")
		}
		totalCost = *params.RequestedCostCent
	}

	unlock := s.locks.acquire(params.VehicleID)
	defer unlock()

	result, err := s.Checker.Check(ctx, params.VehicleID, dr, id)
	if err != nil {
		return nil, err
	}
	if !result.Available {
		return nil, apperr.Conflict("vehicle %s is already booked for %s to %s (booking %s)",
			params.VehicleID, dr.Start.Format("2006-01-02"), dr.End.Format("2006-01-02"), result.Conflicts[0])
	}

	if err := booking.ApplyUpdate(domainbooking.UpdateParams{
		UserID:            params.UserID,
		VehicleID:         params.VehicleID,
		Range:             dr,
		PickupLocationID:  params.PickupLocationID,
		DropoffLocationID: params.DropoffLocationID,
		TotalCostCents:    totalCost,
		Status:            status,
		Now:               s.now(),
	}); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	if err := s.persist(ctx, booking); err != nil {
		return nil, err
	}
	s.log("booking updated", "booking_id", booking.ID, "status", booking.Status)
	return booking, nil
}

// ConfirmPayment transitions a pending booking to confirmed. The hold is
// re-checked here: two overlapping pending bookings may coexist, so only the
// first confirmation for a window can win.
func (s *Service) ConfirmPayment(ctx context.Context, actor Actor, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	booking, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, domainbooking.ErrNotFound, "booking", string(id))
	}
	if booking.UserID != actor.UserID && !actor.Admin {
		return nil, apperr.Forbidden("booking belongs to another user")
	}
	if booking.Status != domainbooking.StatusPendingPayment {
		return nil, apperr.InvalidState("booking is already %s, cannot confirm", booking.Status)
	}

	unlock := s.locks.acquire(booking.VehicleID)
	defer unlock()

	result, err := s.Checker.Check(ctx, booking.VehicleID, booking.Range, booking.ID)
	if err != nil {
		return nil, err
	}
	if !result.Available {
		return nil, apperr.Conflict("vehicle %s was confirmed for an overlapping range by booking %s",
			booking.VehicleID, result.Conflicts[0])
	}

	if err := booking.ConfirmPayment(s.now()); err != nil {
		return nil, apperr.InvalidState("booking is already %s, cannot confirm", booking.Status)
	}
	if err := s.persist(ctx, booking); err != nil {
		return nil, err
	}
	s.log("payment confirmed", "booking_id", booking.ID)
	return booking, nil
}

// Cancel is the customer-facing soft cancellation, permitted only while the
// booking is confirmed.
func (s *Service) Cancel(ctx context.Context, actor Actor, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	booking, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, domainbooking.ErrNotFound, "booking", string(id))
	}
	if booking.UserID != actor.UserID && !actor.Admin {
		return nil, apperr.Forbidden("booking belongs to another user")
	}
	if booking.Status != domainbooking.StatusConfirmed {
		return nil, apperr.InvalidState("booking is %s, only confirmed bookings can be cancelled", booking.Status)
	}
	if err := booking.Cancel(s.now()); err != nil {
		return nil, apperr.InvalidState("booking is %s, only confirmed bookings can be cancelled", booking.Status)
	}
	if err := s.persist(ctx, booking); err != nil {
		return nil, err
	}
	s.log("booking cancelled", "booking_id", booking.ID)
	return booking, nil
}

// Delete removes the record entirely. Administrative cleanup only; customers
// cancel instead.
func (s *Service) Delete(ctx context.Context, actor Actor, id domainbooking.BookingID) error {
	if !actor.Admin {
		return apperr.Forbidden("administrator role required")
	}
	booking, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return lookupError(err, domainbooking.ErrNotFound, "booking", string(id))
	}
	if err := s.Bookings.Delete(ctx, booking.ID); err != nil {
		return apperr.Storage(err)
	}
	deleted := []events.DomainEvent{domainbooking.BookingDeleted{BookingID: booking.ID, At: s.now()}}
	if err := appoutbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, deleted); err != nil {
		return apperr.Storage(err)
	}
	s.log("booking deleted", "booking_id", booking.ID)
	return nil
}

func (s *Service) Get(ctx context.Context, actor Actor, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	booking, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, domainbooking.ErrNotFound, "booking", string(id))
	}
	if booking.UserID != actor.UserID && !actor.Admin {
		return nil, apperr.Forbidden("booking belongs to another user")
	}
	return booking, nil
}

type ListParams struct {
	Status string
	Limit  int
	Offset int
}

// List returns the actor's own bookings, or every booking (filterable by
// status) for administrators.
func (s *Service) List(ctx context.Context, actor Actor, params ListParams) ([]*domainbooking.Booking, int, error) {
	filter := domainbooking.ListParams{Limit: params.Limit, Offset: params.Offset}
	if !actor.Admin {
		filter.UserID = actor.UserID
	}
	if params.Status != "" {
		status, err := domainbooking.ParseStatus(params.Status)
		if err != nil {
			return nil, 0, apperr.Validation("unknown status %q", params.Status)
		}
		filter.Status = status
	}
	items, total, err := s.Bookings.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Storage(err)
	}
	return items, total, nil
}

func (s *Service) checkLocations(ctx context.Context, pickup, dropoff domainlocation.LocationID) error {
	if _, err := s.Locations.ByID(ctx, pickup); err != nil {
		return lookupError(err, domainlocation.ErrNotFound, "location", string(pickup))
	}
	if _, err := s.Locations.ByID(ctx, dropoff); err != nil {
		return lookupError(err, domainlocation.ErrNotFound, "location", string(dropoff))
	}
	return nil
}

func (s *Service) persist(ctx context.Context, booking *domainbooking.Booking) error {
	if err := s.Bookings.Save(ctx, booking); err != nil {
		return apperr.Storage(err)
	}
	pending := booking.PendingEvents()
	booking.ClearEvents()
	if err := appoutbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, pending); err != nil {
		return apperr.Storage(err)
	}
	return nil
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

func (s *Service) log(msg string, args ...any) {
	if s.Logger != nil {
		s.Logger.Info(msg, args...)
	}
}

func lookupError(err, notFound error, entity, id string) error {
	if errors.Is(err, notFound) {
		return apperr.NotFound(entity, id)
	}
	return apperr.Storage(err)
}

func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func startsBefore(dr daterange.DateRange, day time.Time) bool {
	start := time.Date(dr.Start.Year(), dr.Start.Month(), dr.Start.Day(), 0, 0, 0, 0, time.UTC)
	return start.Before(day)
}
