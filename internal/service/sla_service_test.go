package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/plan"
	apperrors "github.com/josoro11/FOXITE-V2/pkg/util/errorutil"
)

type slaEnv struct {
	svc     *SLAService
	orgs    *fakeOrgRepo
	slaRepo *fakeSLARepo
	org     *domain.Organization
}

func newSLAEnv(t *testing.T, tier domain.PlanTier) *slaEnv {
	t.Helper()
	env := &slaEnv{
		orgs:    newFakeOrgRepo(),
		slaRepo: newFakeSLARepo(),
	}
	env.org = &domain.Organization{
		Name:     "Acme MSP",
		PlanTier: tier,
		Status:   domain.OrgStatusActive,
	}
	require.NoError(t, env.orgs.Create(context.Background(), env.org))
	env.svc = NewSLAService(SLAServiceDependencies{
		OrgRepo: env.orgs,
		SLARepo: env.slaRepo,
		Guard:   plan.NewGuard(plan.Default()),
	})
	return env
}

func validPolicyInput() PolicyInput {
	return PolicyInput{
		Name:              "High priority",
		Priority:          domain.TicketPriorityHigh,
		ResponseMinutes:   30,
		ResolutionMinutes: 240,
		IsActive:          true,
	}
}

func TestCreatePolicyValidation(t *testing.T) {
	env := newSLAEnv(t, domain.PlanTierPrime)

	cases := map[string]PolicyInput{
		"empty name":                 {Priority: domain.TicketPriorityHigh, ResponseMinutes: 30, ResolutionMinutes: 60},
		"unknown priority":           {Name: "x", Priority: "EXTREME", ResponseMinutes: 30, ResolutionMinutes: 60},
		"zero response budget":       {Name: "x", Priority: domain.TicketPriorityHigh, ResponseMinutes: 0, ResolutionMinutes: 60},
		"resolution below response":  {Name: "x", Priority: domain.TicketPriorityHigh, ResponseMinutes: 120, ResolutionMinutes: 60},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.svc.CreatePolicy(context.Background(), env.org.ID, input)
			var domainErr *apperrors.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
		})
	}
}

func TestCreatePolicyRejectsActiveDuplicatePriority(t *testing.T) {
	env := newSLAEnv(t, domain.PlanTierPrime)

	_, err := env.svc.CreatePolicy(context.Background(), env.org.ID, validPolicyInput())
	require.NoError(t, err)

	_, err = env.svc.CreatePolicy(context.Background(), env.org.ID, validPolicyInput())
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)

	// an inactive policy for the same priority is allowed
	inactive := validPolicyInput()
	inactive.IsActive = false
	_, err = env.svc.CreatePolicy(context.Background(), env.org.ID, inactive)
	require.NoError(t, err)
}

func TestCreatePolicyEnforcesPlanCeiling(t *testing.T) {
	env := newSLAEnv(t, domain.PlanTierCore)
	catalog := plan.Default()
	limit := catalog.LimitFor(domain.PlanTierCore, plan.ResourceSLAPolicies)
	require.NotNil(t, limit)

	priorities := []domain.TicketPriority{
		domain.TicketPriorityLow,
		domain.TicketPriorityMedium,
		domain.TicketPriorityHigh,
		domain.TicketPriorityUrgent,
	}
	for i := 0; i < *limit; i++ {
		input := validPolicyInput()
		input.Priority = priorities[i%len(priorities)]
		input.IsActive = i < len(priorities)
		_, err := env.svc.CreatePolicy(context.Background(), env.org.ID, input)
		require.NoError(t, err)
	}

	_, err := env.svc.CreatePolicy(context.Background(), env.org.ID, PolicyInput{
		Name: "over the top", Priority: domain.TicketPriorityLow,
		ResponseMinutes: 60, ResolutionMinutes: 120,
	})
	var limitErr *plan.PlanLimitError
	require.ErrorAs(t, err, &limitErr)
}

func TestUpdatePolicyActivationChecksDuplicates(t *testing.T) {
	env := newSLAEnv(t, domain.PlanTierPrime)

	first, err := env.svc.CreatePolicy(context.Background(), env.org.ID, validPolicyInput())
	require.NoError(t, err)

	secondInput := validPolicyInput()
	secondInput.IsActive = false
	second, err := env.svc.CreatePolicy(context.Background(), env.org.ID, secondInput)
	require.NoError(t, err)

	// activating the duplicate must conflict with the first
	secondInput.IsActive = true
	_, err = env.svc.UpdatePolicy(context.Background(), env.org.ID, second.ID, secondInput)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)

	// updating the active policy itself does not trip the check
	input := validPolicyInput()
	input.ResponseMinutes = 20
	updated, err := env.svc.UpdatePolicy(context.Background(), env.org.ID, first.ID, input)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.ResponseMinutes)
}

func TestSetBusinessHoursValidatesCalendar(t *testing.T) {
	env := newSLAEnv(t, domain.PlanTierPlus)

	base := BusinessHoursInput{
		Timezone:  "Europe/Berlin",
		WorkDays:  []int{1, 2, 3, 4, 5},
		StartTime: "09:00",
		EndTime:   "17:00",
	}

	saved, err := env.svc.SetBusinessHours(context.Background(), env.org.ID, base)
	require.NoError(t, err)
	assert.Equal(t, "Default", saved.Name)

	bad := base
	bad.Timezone = "Mars/Olympus"
	_, err = env.svc.SetBusinessHours(context.Background(), env.org.ID, bad)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	bad = base
	bad.StartTime = "18:00"
	_, err = env.svc.SetBusinessHours(context.Background(), env.org.ID, bad)
	require.ErrorAs(t, err, &domainErr)

	bad = base
	bad.WorkDays = []int{0, 8}
	_, err = env.svc.SetBusinessHours(context.Background(), env.org.ID, bad)
	require.ErrorAs(t, err, &domainErr)

	bad = base
	bad.Holidays = []string{"not-a-date"}
	_, err = env.svc.SetBusinessHours(context.Background(), env.org.ID, bad)
	require.ErrorAs(t, err, &domainErr)

	// an empty work-day set can never satisfy a walk
	bad = base
	bad.WorkDays = nil
	_, err = env.svc.SetBusinessHours(context.Background(), env.org.ID, bad)
	require.ErrorAs(t, err, &domainErr)
}

func TestGetBusinessHoursAbsentMeansAlwaysOpen(t *testing.T) {
	env := newSLAEnv(t, domain.PlanTierPlus)

	hours, err := env.svc.GetBusinessHours(context.Background(), env.org.ID)
	require.NoError(t, err)
	assert.Nil(t, hours)
}
