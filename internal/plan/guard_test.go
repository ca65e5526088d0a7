package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

func TestCanAddResourceStrictness(t *testing.T) {
	g := NewGuard(Default())

	tests := []struct {
		name    string
		tier    domain.PlanTier
		current int
		allowed bool
	}{
		{"below limit", domain.PlanTierCore, 24, true},
		{"at limit", domain.PlanTierCore, 25, false},
		{"over limit", domain.PlanTierCore, 40, false},
		{"zero usage", domain.PlanTierCore, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.CanAddResource(tt.tier, ResourceDevices, tt.current)
			assert.Equal(t, tt.allowed, d.Allowed)
			require.NotNil(t, d.Limit)
			assert.Equal(t, 25, *d.Limit)
			assert.Equal(t, tt.current, d.Current)
		})
	}
}

func TestNilLimitAlwaysAllows(t *testing.T) {
	g := NewGuard(Default())

	for _, current := range []int{0, 1, 1000000} {
		d := g.CanAddResource(domain.PlanTierScale, ResourceDevices, current)
		assert.True(t, d.Allowed)
		assert.Nil(t, d.Limit)
	}
}

func TestEnforceResourceLimit(t *testing.T) {
	g := NewGuard(Default())

	require.NoError(t, g.EnforceResourceLimit(domain.PlanTierCore, ResourceDevices, 24))

	err := g.EnforceResourceLimit(domain.PlanTierCore, ResourceDevices, 25)
	var limitErr *PlanLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, ResourceDevices, limitErr.Resource)
	assert.Equal(t, 25, limitErr.Limit)
	assert.Equal(t, 25, limitErr.Current)
	assert.Equal(t, domain.PlanTierCore, limitErr.Tier)
}

func TestFeatureAccess(t *testing.T) {
	g := NewGuard(Default())

	assert.False(t, g.CanUseFeature(domain.PlanTierCore, FeatureLicensesInventory))
	assert.True(t, g.CanUseFeature(domain.PlanTierPlus, FeatureLicensesInventory))
	// Tier strings other than off grant access.
	assert.True(t, g.CanUseFeature(domain.PlanTierPlus, FeatureAPIAccess))
	assert.Equal(t, LevelReadOnly, g.FeatureLevel(domain.PlanTierPlus, FeatureAPIAccess))

	require.NoError(t, g.EnforceFeatureAccess(domain.PlanTierPlus, FeatureLicensesInventory))

	err := g.EnforceFeatureAccess(domain.PlanTierCore, FeatureLicensesInventory)
	var featErr *FeatureError
	require.ErrorAs(t, err, &featErr)
	assert.Equal(t, FeatureLicensesInventory, featErr.Feature)
	assert.Equal(t, domain.PlanTierCore, featErr.Tier)
	require.NotNil(t, featErr.MinimumTier)
	assert.Equal(t, domain.PlanTierPlus, *featErr.MinimumTier)
}

func TestEnforceFeatureAccessUnknownFeature(t *testing.T) {
	g := NewGuard(Default())

	err := g.EnforceFeatureAccess(domain.PlanTierScale, Feature("teleportation"))
	var featErr *FeatureError
	require.ErrorAs(t, err, &featErr)
	assert.Nil(t, featErr.MinimumTier)
}

func TestEnforceNotSuspended(t *testing.T) {
	require.NoError(t, EnforceNotSuspended(domain.OrgStatusActive))
	require.NoError(t, EnforceNotSuspended(domain.OrgStatusTrial))

	err := EnforceNotSuspended(domain.OrgStatusSuspended)
	var suspErr *SuspendedError
	require.ErrorAs(t, err, &suspErr)
}

func TestSeatGuard(t *testing.T) {
	assert.True(t, CanAddSeat(5, 4))
	assert.False(t, CanAddSeat(5, 5))
	assert.False(t, CanAddSeat(5, 6))
	assert.False(t, CanAddSeat(0, 0))

	require.NoError(t, EnforceSeatAvailable(5, 4))

	err := EnforceSeatAvailable(5, 5)
	var seatErr *SeatLimitError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, 5, seatErr.Seats)
	assert.Equal(t, 5, seatErr.Active)
}
