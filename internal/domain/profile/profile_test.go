package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
)

func TestNewProfile(t *testing.T) {
	p, err := NewProfile("uid-1", "Sam", "sam@example.com", "")
	require.NoError(t, err)

	assert.Equal(t, RoleCustomer, p.Role(), "empty role defaults to customer")
	assert.False(t, p.HasCompletedOnboarding())
	assert.Empty(t, p.Vehicles())
}

func TestNewProfile_Validation(t *testing.T) {
	_, err := NewProfile("", "Sam", "sam@example.com", RoleCustomer)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewProfile("uid-1", "Sam", "", RoleCustomer)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewProfile("uid-1", "Sam", "sam@example.com", Role("runner"))
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestProfile_Apply_LeavesUnsetFieldsUntouched(t *testing.T) {
	p, err := NewProfile("uid-1", "Sam", "sam@example.com", RoleCustomer)
	require.NoError(t, err)

	p.Apply(Updates{Phone: "555-0101"})

	assert.Equal(t, "Sam", p.Name())
	assert.Equal(t, "555-0101", p.Phone())
	assert.Equal(t, RoleCustomer, p.Role())
	assert.Nil(t, p.NotificationPrefs())
}

func TestProfile_Apply_RolePromotion(t *testing.T) {
	p, err := NewProfile("uid-1", "Sam", "sam@example.com", RoleCustomer)
	require.NoError(t, err)

	p.Apply(Updates{Role: RoleOwner, BusinessName: "Sam's Hauling"})
	assert.Equal(t, RoleOwner, p.Role())
	assert.Equal(t, "Sam's Hauling", p.BusinessName())

	// Unknown roles are ignored, not applied.
	p.Apply(Updates{Role: Role("superuser")})
	assert.Equal(t, RoleOwner, p.Role())
}

func TestProfile_CompleteOnboarding_Monotonic(t *testing.T) {
	p, err := NewProfile("uid-1", "Sam", "sam@example.com", RoleCustomer)
	require.NoError(t, err)

	p.CompleteOnboarding()
	assert.True(t, p.HasCompletedOnboarding())

	// Later updates never clear the flag.
	p.Apply(Updates{Name: "Samantha"})
	p.CompleteOnboarding()
	assert.True(t, p.HasCompletedOnboarding())
}

func TestProfile_AddVehicle_Dedup(t *testing.T) {
	p, err := NewProfile("uid-1", "Sam", "sam@example.com", RoleOwner)
	require.NoError(t, err)

	p.AddVehicle("v-1")
	p.AddVehicle("v-2")
	p.AddVehicle("v-1")

	assert.Equal(t, []string{"v-1", "v-2"}, p.Vehicles())
}

func TestAvailability_CountSelected(t *testing.T) {
	days := WeekdayAvailability{Monday: true, Wednesday: true, Saturday: true}
	assert.Equal(t, 3, days.CountSelected())
	assert.Equal(t, 0, WeekdayAvailability{}.CountSelected())

	slots := TimeSlotAvailability{Morning: true, Evening: true}
	assert.Equal(t, 2, slots.CountSelected())
}
