// Package availability decides whether a vehicle is free for a requested
// date range. It only reads booking state; admission decisions that write
// stay in the bookings service.
package availability

import (
	"context"

	"autofleet/internal/app/apperr"
	domainbooking "autofleet/internal/domain/booking"
	"autofleet/internal/domain/shared/daterange"
	domainvehicle "autofleet/internal/domain/vehicle"
)

// HoldFinder is the slice of the booking repository the checker needs.
type HoldFinder interface {
	FindHolds(ctx context.Context, vehicleID domainvehicle.VehicleID, statuses []domainbooking.Status, exclude domainbooking.BookingID) ([]*domainbooking.Booking, error)
}

type Result struct {
	Available bool
	// Conflicts holds the ids of the bookings blocking the range, newest
	// overlap first is not guaranteed; order follows the store.
	Conflicts []domainbooking.BookingID
}

type Checker struct {
	Bookings HoldFinder
}

// Check reports whether the vehicle is free over the half-open range,
// skipping excludeID so an update never conflicts with itself. Only bookings
// in a hold status (confirmed, active) block the range; pending, completed
// and cancelled bookings never do.
func (c Checker) Check(ctx context.Context, vehicleID domainvehicle.VehicleID, dr daterange.DateRange, excludeID domainbooking.BookingID) (Result, error) {
	holds, err := c.Bookings.FindHolds(ctx, vehicleID, domainbooking.HoldStatuses(), excludeID)
	if err != nil {
		return Result{}, apperr.Storage(err)
	}
	result := Result{Available: true}
	for _, existing := range holds {
		if existing.Range.Overlaps(dr) {
			result.Available = false
			result.Conflicts = append(result.Conflicts, existing.ID)
		}
	}
	return result, nil
}
