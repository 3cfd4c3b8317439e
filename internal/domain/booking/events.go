package booking

import (
	"time"

	"autofleet/internal/domain/shared/daterange"
	"autofleet/internal/domain/user"
	"autofleet/internal/domain/vehicle"
)

type BookingCreated struct {
	BookingID      BookingID
	VehicleID      vehicle.VehicleID
	UserID         user.ID
	Range          daterange.DateRange
	TotalCostCents int64
	Status         Status
	At             time.Time
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type PaymentConfirmed struct {
	BookingID      BookingID
	VehicleID      vehicle.VehicleID
	Range          daterange.DateRange
	TotalCostCents int64
	At             time.Time
}

func (e PaymentConfirmed) EventName() string     { return "booking.payment_confirmed" }
func (e PaymentConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e PaymentConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID
	VehicleID vehicle.VehicleID
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type BookingUpdated struct {
	BookingID BookingID
	VehicleID vehicle.VehicleID
	Range     daterange.DateRange
	Status    Status
	At        time.Time
}

func (e BookingUpdated) EventName() string     { return "booking.updated" }
func (e BookingUpdated) AggregateID() string   { return string(e.BookingID) }
func (e BookingUpdated) OccurredAt() time.Time { return e.At }

type BookingDeleted struct {
	BookingID BookingID
	At        time.Time
}

func (e BookingDeleted) EventName() string     { return "booking.deleted" }
func (e BookingDeleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingDeleted) OccurredAt() time.Time { return e.At }
