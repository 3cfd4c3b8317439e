package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autofleet/internal/domain/shared/daterange"
)

func validParams(t *testing.T) CreateParams {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return CreateParams{
		ID:                "bk-1",
		UserID:            "usr-1",
		VehicleID:         "veh-1",
		Range:             dr,
		PickupLocationID:  "loc-a",
		DropoffLocationID: "loc-b",
		TotalCostCents:    10000,
		CreatedAt:         time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewBooking_DefaultsToPendingPayment(t *testing.T) {
	b, err := NewBooking(validParams(t))
	require.NoError(t, err)

	assert.Equal(t, StatusPendingPayment, b.Status)
	assert.Equal(t, int64(10000), b.TotalCostCents)

	pending := b.PendingEvents()
	require.Len(t, pending, 1)
	created, ok := pending[0].(BookingCreated)
	require.True(t, ok)
	assert.Equal(t, BookingID("bk-1"), created.BookingID)
	assert.Equal(t, StatusPendingPayment, created.Status)
}

func TestNewBooking_Validation(t *testing.T) {
	params := validParams(t)
	params.UserID = ""
	_, err := NewBooking(params)
	assert.ErrorIs(t, err, ErrUserRequired)

	params = validParams(t)
	params.VehicleID = " "
	_, err = NewBooking(params)
	assert.ErrorIs(t, err, ErrVehicleRequired)

	params = validParams(t)
	params.DropoffLocationID = ""
	_, err = NewBooking(params)
	assert.ErrorIs(t, err, ErrLocationMissing)

	params = validParams(t)
	params.TotalCostCents = -1
	_, err = NewBooking(params)
	assert.ErrorIs(t, err, ErrNegativeCost)

	params = validParams(t)
	params.Status = Status("shipped")
	_, err = NewBooking(params)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestConfirmPayment_OnlyFromPending(t *testing.T) {
	b, err := NewBooking(validParams(t))
	require.NoError(t, err)
	b.ClearEvents()

	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, b.ConfirmPayment(now))
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, now, b.UpdatedAt)

	pending := b.PendingEvents()
	require.Len(t, pending, 1)
	_, ok := pending[0].(PaymentConfirmed)
	assert.True(t, ok)

	// Second confirmation is rejected.
	assert.ErrorIs(t, b.ConfirmPayment(now), ErrInvalidState)
}

func TestCancel_RejectedInTerminalStates(t *testing.T) {
	b, err := NewBooking(validParams(t))
	require.NoError(t, err)

	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, b.Cancel(now))
	assert.Equal(t, StatusCancelled, b.Status)

	assert.ErrorIs(t, b.Cancel(now), ErrInvalidState)

	b2, err := NewBooking(validParams(t))
	require.NoError(t, err)
	b2.Status = StatusCompleted
	assert.ErrorIs(t, b2.Cancel(now), ErrInvalidState)
}

func TestApplyUpdate_OverwritesAndAllowsRewind(t *testing.T) {
	b, err := NewBooking(validParams(t))
	require.NoError(t, err)
	require.NoError(t, b.ConfirmPayment(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))
	b.ClearEvents()

	dr, err := daterange.New(
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	// Rewinding to pending_payment is allowed on this path.
	err = b.ApplyUpdate(UpdateParams{
		UserID:            "usr-2",
		VehicleID:         "veh-2",
		Range:             dr,
		PickupLocationID:  "loc-b",
		DropoffLocationID: "loc-a",
		TotalCostCents:    20000,
		Status:            StatusPendingPayment,
		Now:               time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPendingPayment, b.Status)
	assert.Equal(t, int64(20000), b.TotalCostCents)
	assert.True(t, b.Range.Equal(dr))

	pending := b.PendingEvents()
	require.Len(t, pending, 1)
	_, ok := pending[0].(BookingUpdated)
	assert.True(t, ok)
}

func TestApplyUpdate_RejectsUnknownStatus(t *testing.T) {
	b, err := NewBooking(validParams(t))
	require.NoError(t, err)

	params := UpdateParams{
		UserID:            b.UserID,
		VehicleID:         b.VehicleID,
		Range:             b.Range,
		PickupLocationID:  b.PickupLocationID,
		DropoffLocationID: b.DropoffLocationID,
		TotalCostCents:    b.TotalCostCents,
		Status:            Status("shipped"),
		Now:               time.Now(),
	}
	assert.ErrorIs(t, b.ApplyUpdate(params), ErrInvalidState)
}
