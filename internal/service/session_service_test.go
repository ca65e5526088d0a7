package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/plan"
	apperrors "github.com/josoro11/FOXITE-V2/pkg/util/errorutil"
)

type sessionEnv struct {
	svc      *SessionService
	orgs     *fakeOrgRepo
	sessions *fakeSessionRepo
	tickets  *fakeTicketRepo
	org      *domain.Organization
	now      time.Time
}

func newSessionEnv(t *testing.T, tier domain.PlanTier) *sessionEnv {
	t.Helper()
	env := &sessionEnv{
		orgs:     newFakeOrgRepo(),
		sessions: newFakeSessionRepo(),
		tickets:  newFakeTicketRepo(),
		now:      time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	env.org = &domain.Organization{
		Name:     "Acme MSP",
		PlanTier: tier,
		Status:   domain.OrgStatusActive,
	}
	require.NoError(t, env.orgs.Create(context.Background(), env.org))
	env.svc = NewSessionService(SessionDependencies{
		OrgRepo:     env.orgs,
		SessionRepo: env.sessions,
		TicketRepo:  env.tickets,
		Guard:       plan.NewGuard(plan.Default()),
		Now:         func() time.Time { return env.now },
	})
	return env
}

func (env *sessionEnv) technician(id string) *domain.StaffMember {
	return &domain.StaffMember{
		ID:             id,
		OrganizationID: env.org.ID,
		Role:           domain.StaffRoleTechnician,
		Active:         true,
	}
}

func TestTimeTrackingGatedByPlanFeature(t *testing.T) {
	env := newSessionEnv(t, domain.PlanTierCore)
	staff := env.technician("stf-1")

	_, err := env.svc.StartSession(context.Background(), staff, SessionStartInput{})

	var featureErr *plan.FeatureError
	require.ErrorAs(t, err, &featureErr)
	assert.Equal(t, plan.FeatureTimeTracking, featureErr.Feature)
}

func TestStopSessionRoundsDurationUp(t *testing.T) {
	env := newSessionEnv(t, domain.PlanTierPlus)
	staff := env.technician("stf-1")

	session, err := env.svc.StartSession(context.Background(), staff, SessionStartInput{Notes: "patching"})
	require.NoError(t, err)

	env.now = env.now.Add(7*time.Minute + 30*time.Second)
	stopped, err := env.svc.StopSession(context.Background(), staff, session.ID)
	require.NoError(t, err)

	require.NotNil(t, stopped.DurationMinutes)
	assert.Equal(t, 8, *stopped.DurationMinutes)
	require.NotNil(t, stopped.EndTime)
}

func TestStopSessionSubMinuteCountsAsOne(t *testing.T) {
	env := newSessionEnv(t, domain.PlanTierPlus)
	staff := env.technician("stf-1")

	session, err := env.svc.StartSession(context.Background(), staff, SessionStartInput{})
	require.NoError(t, err)

	env.now = env.now.Add(20 * time.Second)
	stopped, err := env.svc.StopSession(context.Background(), staff, session.ID)
	require.NoError(t, err)

	require.NotNil(t, stopped.DurationMinutes)
	assert.Equal(t, 1, *stopped.DurationMinutes)
}

func TestStopSessionAlreadyClosed(t *testing.T) {
	env := newSessionEnv(t, domain.PlanTierPlus)
	staff := env.technician("stf-1")

	session, err := env.svc.StartSession(context.Background(), staff, SessionStartInput{})
	require.NoError(t, err)
	env.now = env.now.Add(time.Minute)
	_, err = env.svc.StopSession(context.Background(), staff, session.ID)
	require.NoError(t, err)

	_, err = env.svc.StopSession(context.Background(), staff, session.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestTechnicianCannotStopForeignSession(t *testing.T) {
	env := newSessionEnv(t, domain.PlanTierPlus)
	owner := env.technician("stf-owner")
	other := env.technician("stf-other")

	session, err := env.svc.StartSession(context.Background(), owner, SessionStartInput{})
	require.NoError(t, err)

	_, err = env.svc.StopSession(context.Background(), other, session.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)

	// supervisors may close anyone's session
	supervisor := &domain.StaffMember{
		ID:             "stf-super",
		OrganizationID: env.org.ID,
		Role:           domain.StaffRoleSupervisor,
		Active:         true,
	}
	env.now = env.now.Add(time.Minute)
	_, err = env.svc.StopSession(context.Background(), supervisor, session.ID)
	require.NoError(t, err)
}

func TestStartSessionUnknownTicket(t *testing.T) {
	env := newSessionEnv(t, domain.PlanTierPlus)
	staff := env.technician("stf-1")

	_, err := env.svc.StartSession(context.Background(), staff, SessionStartInput{TicketID: strptr("tck-missing")})

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestStartSessionBindsTicket(t *testing.T) {
	env := newSessionEnv(t, domain.PlanTierPlus)
	staff := env.technician("stf-1")
	ticket := &domain.Ticket{OrganizationID: env.org.ID, Title: "Patch window", Status: domain.TicketStatusOpen}
	require.NoError(t, env.tickets.Create(context.Background(), ticket))

	session, err := env.svc.StartSession(context.Background(), staff, SessionStartInput{TicketID: &ticket.ID})
	require.NoError(t, err)

	bound, err := env.svc.ListTicketSessions(context.Background(), staff, ticket.ID)
	require.NoError(t, err)
	require.Len(t, bound, 1)
	assert.Equal(t, session.ID, bound[0].ID)
}
