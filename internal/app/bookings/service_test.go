package bookings

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autofleet/internal/app/apperr"
	"autofleet/internal/app/availability"
	appoutbox "autofleet/internal/app/outbox"
	domainbooking "autofleet/internal/domain/booking"
	domainlocation "autofleet/internal/domain/location"
	domainuser "autofleet/internal/domain/user"
	domainvehicle "autofleet/internal/domain/vehicle"
	"autofleet/internal/infra/storage/memory"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	bookings *memory.BookingRepository
	outbox   *memory.Outbox
	customer Actor
	other    Actor
	admin    Actor
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserRepository()
	vehicles := memory.NewVehicleRepository()
	locations := memory.NewLocationRepository()
	bookings := memory.NewBookingRepository()
	box := memory.NewOutbox()

	seedUser(t, users, "usr-1", "alice@example.com", domainuser.RoleCustomer)
	seedUser(t, users, "usr-2", "bob@example.com", domainuser.RoleCustomer)
	seedUser(t, users, "adm-1", "root@example.com", domainuser.RoleAdmin)

	vehicle, err := domainvehicle.NewVehicle(domainvehicle.CreateParams{
		ID:             "veh-1",
		Make:           "Toyota",
		Model:          "Corolla",
		Year:           2021,
		Plate:          "KA-01-1234",
		Category:       "sedan",
		Seats:          5,
		Transmission:   "automatic",
		DailyRateCents: 5000,
		Now:            fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, vehicles.Save(ctx, vehicle))

	for _, id := range []string{"loc-a", "loc-b"} {
		loc, err := domainlocation.NewLocation(domainlocation.CreateParams{
			ID:      domainlocation.LocationID(id),
			Name:    "Branch " + id,
			Address: "1 Main St",
			City:    "Springfield",
			Country: "US",
			Now:     fixedNow,
		})
		require.NoError(t, err)
		require.NoError(t, locations.Save(ctx, loc))
	}

	seq := 0
	svc := &Service{
		Bookings:  bookings,
		Vehicles:  vehicles,
		Locations: locations,
		Users:     users,
		Checker:   availability.Checker{Bookings: bookings},
		Outbox:    box,
		Encoder:   appoutbox.JSONEventEncoder{},
		Now:       func() time.Time { return fixedNow },
		IDGen: func() string {
			seq++
			return fmt.Sprintf("bk-%d", seq)
		},
	}
	return &fixture{
		svc:      svc,
		bookings: bookings,
		outbox:   box,
		customer: Actor{UserID: "usr-1"},
		other:    Actor{UserID: "usr-2"},
		admin:    Actor{UserID: "adm-1", Admin: true},
	}
}

func seedUser(t *testing.T, repo *memory.UserRepository, id domainuser.ID, email string, role domainuser.Role) {
	t.Helper()
	account, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           id,
		Email:        email,
		Name:         "Test User",
		PasswordHash: "$2a$10$hash",
		Roles:        []domainuser.Role{role},
		CreatedAt:    fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), account))
}

func (f *fixture) createParams(startDay, endDay int) CreateParams {
	return CreateParams{
		VehicleID:         "veh-1",
		Start:             day(startDay),
		End:               day(endDay),
		PickupLocationID:  "loc-a",
		DropoffLocationID: "loc-b",
	}
}

func TestCreate_ComputesCostAndDefaultsToPending(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.Create(context.Background(), f.customer, f.createParams(10, 12))
	require.NoError(t, err)

	assert.Equal(t, int64(10000), booking.TotalCostCents, "2 days at 5000 cents/day")
	assert.Equal(t, domainbooking.StatusPendingPayment, booking.Status)
	assert.Equal(t, domainuser.ID("usr-1"), booking.UserID)

	records := f.outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "booking.created", records[0].Name)
}

func TestCreate_RejectsInvertedRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.customer, f.createParams(12, 12))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.Create(context.Background(), f.customer, f.createParams(12, 10))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreate_PastStartDate(t *testing.T) {
	f := newFixture(t)
	params := f.createParams(10, 12)
	params.Start = day(-10) // well before fixedNow
	params.End = day(-8)

	_, err := f.svc.Create(context.Background(), f.customer, params)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// Administrators may backdate.
	booking, err := f.svc.Create(context.Background(), f.admin, params)
	require.NoError(t, err)
	assert.Equal(t, domainuser.ID("adm-1"), booking.UserID)
}

func TestCreate_UnknownReferencesAreNotFound(t *testing.T) {
	f := newFixture(t)

	params := f.createParams(10, 12)
	params.VehicleID = "veh-missing"
	_, err := f.svc.Create(context.Background(), f.customer, params)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	params = f.createParams(10, 12)
	params.PickupLocationID = "loc-missing"
	_, err = f.svc.Create(context.Background(), f.customer, params)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreate_ConflictsWithConfirmedHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	held, err := f.svc.Create(ctx, f.customer, f.createParams(10, 15))
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(ctx, f.customer, held.ID)
	require.NoError(t, err)

	// Overlapping request from another customer is rejected.
	_, err = f.svc.Create(ctx, f.other, f.createParams(12, 16))
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(t, err.Error(), string(held.ID))

	// Back-to-back pickup on the return day is fine.
	adjacent, err := f.svc.Create(ctx, f.other, f.createParams(15, 18))
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPendingPayment, adjacent.Status)
}

func TestCreate_PendingBookingsDoNotBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.customer, f.createParams(10, 15))
	require.NoError(t, err)

	// A second overlapping pending request is admitted.
	second, err := f.svc.Create(ctx, f.other, f.createParams(12, 16))
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPendingPayment, second.Status)
}

func TestCreate_RacingConfirmedAdmissionsSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Two overlapping requests for the same vehicle race through
	// admission; the per-vehicle lock must let exactly one hold through.
	requests := []CreateParams{f.createParams(10, 15), f.createParams(12, 16)}
	for i := range requests {
		requests[i].RequestedStatus = string(domainbooking.StatusConfirmed)
	}

	errs := make([]error, len(requests))
	var wg sync.WaitGroup
	for i, params := range requests {
		wg.Add(1)
		go func(i int, params CreateParams) {
			defer wg.Done()
			_, errs[i] = f.svc.Create(ctx, f.admin, params)
		}(i, params)
	}
	wg.Wait()

	var admitted, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			admitted++
		case apperr.KindOf(err) == apperr.KindConflict:
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, admitted, "exactly one request should win the vehicle")
	assert.Equal(t, 1, rejected, "the loser should see a conflict")

	holds, err := f.bookings.FindHolds(ctx, "veh-1", domainbooking.HoldStatuses(), "")
	require.NoError(t, err)
	assert.Len(t, holds, 1)
}

func TestConfirmPayment_FirstConfirmationWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.customer, f.createParams(10, 15))
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, f.other, f.createParams(12, 16))
	require.NoError(t, err)

	_, err = f.svc.ConfirmPayment(ctx, f.customer, first.ID)
	require.NoError(t, err)

	_, err = f.svc.ConfirmPayment(ctx, f.other, second.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// The loser stays pending so the customer can rebook other dates.
	stored, err := f.bookings.ByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPendingPayment, stored.Status)
}

func TestConfirmPayment_ReportsCurrentState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.Create(ctx, f.customer, f.createParams(10, 12))
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(ctx, f.customer, booking.ID)
	require.NoError(t, err)

	_, err = f.svc.ConfirmPayment(ctx, f.customer, booking.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "confirmed")
}

func TestConfirmPayment_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.Create(ctx, f.customer, f.createParams(10, 12))
	require.NoError(t, err)

	_, err = f.svc.ConfirmPayment(ctx, f.other, booking.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// Admin can confirm on the customer's behalf.
	confirmed, err := f.svc.ConfirmPayment(ctx, f.admin, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, confirmed.Status)
}

func TestCancel_OnlyFromConfirmed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.Create(ctx, f.customer, f.createParams(10, 12))
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, f.customer, booking.ID)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	_, err = f.svc.ConfirmPayment(ctx, f.customer, booking.ID)
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, f.customer, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, cancelled.Status)

	// Cancelled bookings release the hold.
	_, err = f.svc.Create(ctx, f.other, f.createParams(10, 12))
	require.NoError(t, err)
}

func TestCancel_OwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.Create(ctx, f.customer, f.createParams(10, 12))
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(ctx, f.customer, booking.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, f.other, booking.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.svc.Cancel(ctx, f.admin, booking.ID)
	require.NoError(t, err)
}

func TestUpdate_AdminOnlyAndSelfExclusion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.Create(ctx, f.customer, f.createParams(10, 15))
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(ctx, f.customer, booking.ID)
	require.NoError(t, err)

	update := UpdateParams{
		UserID:            "usr-1",
		VehicleID:         "veh-1",
		Start:             day(11),
		End:               day(14),
		PickupLocationID:  "loc-a",
		DropoffLocationID: "loc-b",
		Status:            "confirmed",
	}

	_, err = f.svc.Update(ctx, f.customer, booking.ID, update)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// The booking's own hold never conflicts with its edit.
	updated, err := f.svc.Update(ctx, f.admin, booking.ID, update)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), updated.TotalCostCents, "3 days at 5000 cents/day")
	assert.Equal(t, domainbooking.StatusConfirmed, updated.Status)
}

func TestUpdate_UnknownStatusIsValidationError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.Create(ctx, f.customer, f.createParams(10, 12))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.admin, booking.ID, UpdateParams{
		UserID:            "usr-1",
		VehicleID:         "veh-1",
		Start:             day(10),
		End:               day(12),
		PickupLocationID:  "loc-a",
		DropoffLocationID: "loc-b",
		Status:            "shipped",
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdate_ConflictAgainstOtherHolds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	held, err := f.svc.Create(ctx, f.customer, f.createParams(10, 15))
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(ctx, f.customer, held.ID)
	require.NoError(t, err)

	target, err := f.svc.Create(ctx, f.other, f.createParams(20, 25))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.admin, target.ID, UpdateParams{
		UserID:            "usr-2",
		VehicleID:         "veh-1",
		Start:             day(12),
		End:               day(16),
		PickupLocationID:  "loc-a",
		DropoffLocationID: "loc-b",
		Status:            "pending_payment",
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreate_AdminStatusAndCostOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cost := int64(1234)
	params := f.createParams(10, 12)
	params.ForUserID = "usr-1"
	params.RequestedStatus = "confirmed"
	params.RequestedCostCent = &cost

	booking, err := f.svc.Create(ctx, f.admin, params)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, booking.Status)
	assert.Equal(t, cost, booking.TotalCostCents)
	assert.Equal(t, domainuser.ID("usr-1"), booking.UserID)
}

func TestCreate_InvalidAdminStatusFallsBackToPending(t *testing.T) {
	f := newFixture(t)

	params := f.createParams(10, 12)
	params.RequestedStatus = "shipped"

	booking, err := f.svc.Create(context.Background(), f.admin, params)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPendingPayment, booking.Status)
}

func TestGet_OwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.Create(ctx, f.customer, f.createParams(10, 12))
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, f.customer, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = f.svc.Get(ctx, f.other, booking.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.svc.Get(ctx, f.admin, booking.ID)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, f.customer, "bk-missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestList_ScopedToOwnerUnlessAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.customer, f.createParams(10, 12))
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(ctx, f.customer, first.ID)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.other, f.createParams(20, 22))
	require.NoError(t, err)

	mine, total, err := f.svc.List(ctx, f.customer, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	all, total, err := f.svc.List(ctx, f.admin, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	confirmed, total, err := f.svc.List(ctx, f.admin, ListParams{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, confirmed, 1)
	assert.Equal(t, first.ID, confirmed[0].ID)

	_, _, err = f.svc.List(ctx, f.admin, ListParams{Status: "shipped"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDelete_AdminOnlyHardDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.Create(ctx, f.customer, f.createParams(10, 12))
	require.NoError(t, err)

	err = f.svc.Delete(ctx, f.customer, booking.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	require.NoError(t, f.svc.Delete(ctx, f.admin, booking.ID))

	_, err = f.bookings.ByID(ctx, booking.ID)
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)

	err = f.svc.Delete(ctx, f.admin, booking.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	records := f.outbox.Records()
	require.NotEmpty(t, records)
	assert.Equal(t, "booking.deleted", records[len(records)-1].Name)
}
