package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autofleet/internal/app/apperr"
	domainbooking "autofleet/internal/domain/booking"
	"autofleet/internal/domain/shared/daterange"
	domainvehicle "autofleet/internal/domain/vehicle"
)

type stubHoldFinder struct {
	holds    []*domainbooking.Booking
	err      error
	statuses []domainbooking.Status
	exclude  domainbooking.BookingID
}

func (s *stubHoldFinder) FindHolds(ctx context.Context, vehicleID domainvehicle.VehicleID, statuses []domainbooking.Status, exclude domainbooking.BookingID) ([]*domainbooking.Booking, error) {
	s.statuses = statuses
	s.exclude = exclude
	if s.err != nil {
		return nil, s.err
	}
	var out []*domainbooking.Booking
	for _, b := range s.holds {
		if b.ID == exclude {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func mustRange(t *testing.T, startDay, endDay int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2024, 3, startDay, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, endDay, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return dr
}

func TestCheck_ReportsOverlappingHolds(t *testing.T) {
	finder := &stubHoldFinder{holds: []*domainbooking.Booking{
		{ID: "bk-1", VehicleID: "veh-1", Range: mustRange(t, 10, 15), Status: domainbooking.StatusConfirmed},
	}}
	checker := Checker{Bookings: finder}

	result, err := checker.Check(context.Background(), "veh-1", mustRange(t, 12, 16), "")
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Equal(t, []domainbooking.BookingID{"bk-1"}, result.Conflicts)
	assert.Equal(t, domainbooking.HoldStatuses(), finder.statuses)
}

func TestCheck_AdjacentRangesDoNotConflict(t *testing.T) {
	finder := &stubHoldFinder{holds: []*domainbooking.Booking{
		{ID: "bk-1", VehicleID: "veh-1", Range: mustRange(t, 10, 15), Status: domainbooking.StatusConfirmed},
	}}
	checker := Checker{Bookings: finder}

	result, err := checker.Check(context.Background(), "veh-1", mustRange(t, 15, 18), "")
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Empty(t, result.Conflicts)
}

func TestCheck_ExcludesTheGivenBooking(t *testing.T) {
	finder := &stubHoldFinder{holds: []*domainbooking.Booking{
		{ID: "bk-1", VehicleID: "veh-1", Range: mustRange(t, 10, 15), Status: domainbooking.StatusConfirmed},
	}}
	checker := Checker{Bookings: finder}

	result, err := checker.Check(context.Background(), "veh-1", mustRange(t, 10, 15), "bk-1")
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Equal(t, domainbooking.BookingID("bk-1"), finder.exclude)
}

func TestCheck_WrapsStoreErrors(t *testing.T) {
	finder := &stubHoldFinder{err: errors.New("boom")}
	checker := Checker{Bookings: finder}

	_, err := checker.Check(context.Background(), "veh-1", mustRange(t, 10, 15), "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
}
