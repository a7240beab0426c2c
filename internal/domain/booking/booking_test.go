package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	bk, err := NewBooking("customer-1", Form{
		CargoDescription: "furniture",
		EstimatedHours:   2,
		NeedsAssistance:  true,
	}.Normalize(), Quote{TotalCost: 140, AssistanceCost: 50})
	require.NoError(t, err)
	return bk
}

func TestNewBooking(t *testing.T) {
	bk := newTestBooking(t)

	assert.NotEmpty(t, bk.ID())
	assert.Equal(t, "customer-1", bk.CustomerID())
	assert.Equal(t, DefaultOwnerID, bk.OwnerID())
	assert.Equal(t, DefaultVehicleID, bk.VehicleID())
	assert.Equal(t, StatusPending, bk.Status())
	assert.Equal(t, 140.0, bk.TotalCost())
	assert.Equal(t, 50.0, bk.AssistanceCost())
	assert.Nil(t, bk.CompletedAt())
	assert.Equal(t, int64(1), bk.Version())
}

func TestNewBooking_RequiresCustomer(t *testing.T) {
	_, err := NewBooking("", Form{}.Normalize(), Quote{})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestBooking_Lifecycle(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Confirm())
	assert.Equal(t, StatusConfirmed, bk.Status())

	require.NoError(t, bk.Start())
	assert.Equal(t, StatusInProgress, bk.Status())

	require.NoError(t, bk.Complete())
	assert.Equal(t, StatusCompleted, bk.Status())
	require.NotNil(t, bk.CompletedAt())
}

func TestBooking_DeclineFromPending(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Decline())
	assert.Equal(t, StatusDeclined, bk.Status())
}

func TestBooking_InvalidTransitions(t *testing.T) {
	bk := newTestBooking(t)

	// Cannot start or complete straight from pending.
	err := bk.Start()
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))
	assert.Error(t, bk.Complete())

	// Terminal states reject everything.
	require.NoError(t, bk.Cancel())
	assert.Error(t, bk.Confirm())
	assert.Error(t, bk.Cancel())
}

func TestBooking_CancelAfterComplete(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Confirm())
	require.NoError(t, bk.Start())
	require.NoError(t, bk.Complete())

	err := bk.Cancel()
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))
	assert.Equal(t, StatusCompleted, bk.Status())
}

func TestBooking_Ownership(t *testing.T) {
	bk := newTestBooking(t)

	assert.True(t, bk.IsOwnedByCustomer("customer-1"))
	assert.False(t, bk.IsOwnedByCustomer("customer-2"))
	assert.True(t, bk.IsAssignedToOwner(DefaultOwnerID))
	assert.False(t, bk.IsAssignedToOwner("owner-9"))
}

func TestBooking_IncrementVersion(t *testing.T) {
	bk := newTestBooking(t)
	bk.IncrementVersion()
	assert.Equal(t, int64(2), bk.Version())
}
