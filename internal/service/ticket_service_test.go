package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/events"
	"github.com/josoro11/FOXITE-V2/internal/plan"
	apperrors "github.com/josoro11/FOXITE-V2/pkg/util/errorutil"
)

type ticketEnv struct {
	svc        *TicketService
	orgs       *fakeOrgRepo
	companies  *fakeCompanyRepo
	tickets    *fakeTicketRepo
	comments   *fakeCommentRepo
	history    *fakeHistoryRepo
	slaRepo    *fakeSLARepo
	dispatcher *recordingDispatcher
	now        time.Time
	org        *domain.Organization
}

func newTicketEnv(t *testing.T) *ticketEnv {
	t.Helper()
	env := &ticketEnv{
		orgs:       newFakeOrgRepo(),
		companies:  newFakeCompanyRepo(),
		tickets:    newFakeTicketRepo(),
		comments:   newFakeCommentRepo(),
		history:    newFakeHistoryRepo(),
		slaRepo:    newFakeSLARepo(),
		dispatcher: &recordingDispatcher{},
		now:        time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
	}
	env.org = &domain.Organization{
		Name:      "Acme MSP",
		PlanTier:  domain.PlanTierPlus,
		Status:    domain.OrgStatusActive,
		SeatCount: 15,
	}
	require.NoError(t, env.orgs.Create(context.Background(), env.org))

	env.svc = NewTicketService(TicketDependencies{
		TicketRepo:  env.tickets,
		CommentRepo: env.comments,
		HistoryRepo: env.history,
		SLARepo:     env.slaRepo,
		OrgRepo:     env.orgs,
		CompanyRepo: env.companies,
		Dispatcher:  env.dispatcher,
		Now:         func() time.Time { return env.now },
	})
	return env
}

func (env *ticketEnv) addPolicy(t *testing.T, priority domain.TicketPriority, responseMin, resolutionMin int) *domain.SLAPolicy {
	t.Helper()
	policy := &domain.SLAPolicy{
		OrganizationID:    env.org.ID,
		Name:              string(priority) + " policy",
		Priority:          priority,
		ResponseMinutes:   responseMin,
		ResolutionMinutes: resolutionMin,
		IsActive:          true,
	}
	require.NoError(t, env.slaRepo.CreatePolicy(context.Background(), policy))
	return policy
}

func (env *ticketEnv) createTicket(t *testing.T, input TicketCreateInput) *domain.Ticket {
	t.Helper()
	actor := events.Actor{Type: domain.SubjectTypeUser, UserID: input.RequesterID}
	ticket, err := env.svc.CreateTicket(context.Background(), env.org.ID, actor, input)
	require.NoError(t, err)
	return ticket
}

func testStaff(env *ticketEnv) *domain.StaffMember {
	return &domain.StaffMember{
		ID:             "stf-agent",
		OrganizationID: env.org.ID,
		Role:           domain.StaffRoleTechnician,
		Active:         true,
	}
}

func TestCreateTicketAppliesSLADueDates(t *testing.T) {
	env := newTicketEnv(t)
	policy := env.addPolicy(t, domain.TicketPriorityHigh, 30, 240)

	ticket := env.createTicket(t, TicketCreateInput{
		RequesterID: strptr("usr-1"),
		Title:       "Server down",
		Description: "Production API unreachable",
		Priority:    domain.TicketPriorityHigh,
	})

	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.True(t, len(ticket.ExternalKey) > 4 && ticket.ExternalKey[:4] == "TCK-")
	require.NotNil(t, ticket.SLAPolicyID)
	assert.Equal(t, policy.ID, *ticket.SLAPolicyID)
	require.NotNil(t, ticket.ResponseDueAt)
	require.NotNil(t, ticket.ResolutionDueAt)
	assert.Equal(t, env.now.Add(30*time.Minute), *ticket.ResponseDueAt)
	assert.Equal(t, env.now.Add(240*time.Minute), *ticket.ResolutionDueAt)

	created := env.dispatcher.ofType(events.EventTicketCreated)
	require.Len(t, created, 1)
	assert.Equal(t, ticket.ID, created[0].TicketID)
	assert.Equal(t, env.org.ID, created[0].OrganizationID)
}

func TestCreateTicketWithoutPolicyHasNoSLA(t *testing.T) {
	env := newTicketEnv(t)
	env.addPolicy(t, domain.TicketPriorityUrgent, 15, 120)

	ticket := env.createTicket(t, TicketCreateInput{
		Title:    "Printer jam",
		Priority: domain.TicketPriorityLow,
	})

	assert.Nil(t, ticket.SLAPolicyID)
	assert.Nil(t, ticket.ResponseDueAt)
	assert.Nil(t, ticket.ResolutionDueAt)
}

func TestCreateTicketIgnoresInactivePolicy(t *testing.T) {
	env := newTicketEnv(t)
	policy := env.addPolicy(t, domain.TicketPriorityHigh, 30, 240)
	policy.IsActive = false
	require.NoError(t, env.slaRepo.UpdatePolicy(context.Background(), policy))

	ticket := env.createTicket(t, TicketCreateInput{
		Title:    "Broken VPN",
		Priority: domain.TicketPriorityHigh,
	})

	assert.Nil(t, ticket.SLAPolicyID)
}

func TestCreateTicketBrokenCalendarSkipsSLA(t *testing.T) {
	env := newTicketEnv(t)
	env.addPolicy(t, domain.TicketPriorityHigh, 30, 240)
	require.NoError(t, env.slaRepo.UpsertBusinessHours(context.Background(), &domain.BusinessHours{
		OrganizationID: env.org.ID,
		Timezone:       "Mars/Olympus",
		WorkDays:       []int{1, 2, 3, 4, 5},
		StartTime:      "09:00",
		EndTime:        "17:00",
	}))

	ticket := env.createTicket(t, TicketCreateInput{
		Title:    "Disk full",
		Priority: domain.TicketPriorityHigh,
	})

	assert.Nil(t, ticket.SLAPolicyID)
	assert.Nil(t, ticket.ResponseDueAt)
	assert.Nil(t, ticket.ResolutionDueAt)
}

func TestCreateTicketDefaultsToMediumPriority(t *testing.T) {
	env := newTicketEnv(t)

	ticket := env.createTicket(t, TicketCreateInput{Title: "Question about billing"})

	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
}

func TestCreateTicketSuspendedOrganization(t *testing.T) {
	env := newTicketEnv(t)
	env.org.Status = domain.OrgStatusSuspended
	require.NoError(t, env.orgs.Update(context.Background(), env.org))

	_, err := env.svc.CreateTicket(context.Background(), env.org.ID, events.Actor{Type: domain.SubjectTypeUser}, TicketCreateInput{Title: "x"})

	var suspended *plan.SuspendedError
	require.ErrorAs(t, err, &suspended)
}

func TestCreateTicketInactiveCompanyRejected(t *testing.T) {
	env := newTicketEnv(t)
	company := &domain.ClientCompany{OrganizationID: env.org.ID, Name: "Globex", IsActive: false}
	require.NoError(t, env.companies.Create(context.Background(), company))

	_, err := env.svc.CreateTicket(context.Background(), env.org.ID, events.Actor{Type: domain.SubjectTypeUser}, TicketCreateInput{
		CompanyID: &company.ID,
		Title:     "Onboarding",
	})

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestAddCommentFirstStaffReplyStampsFirstResponse(t *testing.T) {
	env := newTicketEnv(t)
	ticket := env.createTicket(t, TicketCreateInput{Title: "Mail bounce", RequesterID: strptr("usr-1")})
	staff := testStaff(env)

	firstAt := env.now.Add(12 * time.Minute)
	env.now = firstAt
	_, err := env.svc.AddComment(context.Background(), domain.SubjectTypeStaff, env.org.ID, staff.ID, ticket.ID, domain.CommentTypePublicReply, "Looking into it")
	require.NoError(t, err)

	stored, err := env.tickets.GetByID(context.Background(), env.org.ID, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.FirstResponseAt)
	assert.Equal(t, firstAt, *stored.FirstResponseAt)

	// a later reply must not move the stamp
	env.now = env.now.Add(time.Hour)
	_, err = env.svc.AddComment(context.Background(), domain.SubjectTypeStaff, env.org.ID, staff.ID, ticket.ID, domain.CommentTypePublicReply, "Fixed")
	require.NoError(t, err)

	stored, err = env.tickets.GetByID(context.Background(), env.org.ID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, firstAt, *stored.FirstResponseAt)
}

func TestAddCommentInternalNoteKeepsResponseClockRunning(t *testing.T) {
	env := newTicketEnv(t)
	ticket := env.createTicket(t, TicketCreateInput{Title: "Slow laptop"})
	staff := testStaff(env)

	_, err := env.svc.AddComment(context.Background(), domain.SubjectTypeStaff, env.org.ID, staff.ID, ticket.ID, domain.CommentTypeInternalNote, "Probably the disk")
	require.NoError(t, err)

	stored, err := env.tickets.GetByID(context.Background(), env.org.ID, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.FirstResponseAt)
}

func TestAddCommentUserRestrictions(t *testing.T) {
	env := newTicketEnv(t)
	ticket := env.createTicket(t, TicketCreateInput{Title: "Password reset", RequesterID: strptr("usr-1")})

	_, err := env.svc.AddComment(context.Background(), domain.SubjectTypeUser, env.org.ID, "usr-2", ticket.ID, domain.CommentTypePublicReply, "me too")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)

	_, err = env.svc.AddComment(context.Background(), domain.SubjectTypeUser, env.org.ID, "usr-1", ticket.ID, domain.CommentTypeInternalNote, "sneaky")
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestBreachDetectedOnReadIsIdempotent(t *testing.T) {
	env := newTicketEnv(t)
	env.addPolicy(t, domain.TicketPriorityHigh, 30, 240)
	ticket := env.createTicket(t, TicketCreateInput{Title: "Outage", Priority: domain.TicketPriorityHigh})
	staff := testStaff(env)

	env.now = env.now.Add(45 * time.Minute)
	loaded, _, err := env.svc.GetTicketForStaff(context.Background(), staff, ticket.ID)
	require.NoError(t, err)
	assert.True(t, loaded.SLAResponseBreached)
	assert.False(t, loaded.SLAResolutionBreached)

	slaEntries := env.history.byType(domain.ChangeTypeSLA)
	require.Len(t, slaEntries, 1)
	assert.Equal(t, domain.AuthorTypeSystem, slaEntries[0].ChangedByType)
	assert.Equal(t, false, slaEntries[0].OldValue["sla_breached_response"])
	assert.Equal(t, true, slaEntries[0].NewValue["sla_breached_response"])

	// second read past the same due date records nothing new
	_, _, err = env.svc.GetTicketForStaff(context.Background(), staff, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, env.history.byType(domain.ChangeTypeSLA), 1)
	assert.Len(t, env.dispatcher.ofType(events.EventSLABreached), 1)
}

func TestResolutionBreachRecordedBeforeResolving(t *testing.T) {
	env := newTicketEnv(t)
	env.addPolicy(t, domain.TicketPriorityUrgent, 15, 60)
	ticket := env.createTicket(t, TicketCreateInput{Title: "Data loss", Priority: domain.TicketPriorityUrgent})
	staff := testStaff(env)

	env.now = env.now.Add(90 * time.Minute)
	updated, err := env.svc.UpdateStatus(context.Background(), staff, ticket.ID, domain.TicketStatusResolved, "restored from backup")
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	assert.True(t, updated.SLAResolutionBreached)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, env.now, *updated.ResolvedAt)
}

func TestResolvedTicketStopsResolutionClock(t *testing.T) {
	env := newTicketEnv(t)
	env.addPolicy(t, domain.TicketPriorityHigh, 30, 240)
	ticket := env.createTicket(t, TicketCreateInput{Title: "Flaky wifi", Priority: domain.TicketPriorityHigh})
	staff := testStaff(env)

	_, err := env.svc.AddComment(context.Background(), domain.SubjectTypeStaff, env.org.ID, staff.ID, ticket.ID, domain.CommentTypePublicReply, "on it")
	require.NoError(t, err)
	env.now = env.now.Add(time.Hour)
	_, err = env.svc.UpdateStatus(context.Background(), staff, ticket.ID, domain.TicketStatusResolved, "")
	require.NoError(t, err)

	// a read long after the resolution due date must not flag a breach
	env.now = env.now.Add(48 * time.Hour)
	loaded, _, err := env.svc.GetTicketForStaff(context.Background(), staff, ticket.ID)
	require.NoError(t, err)
	assert.False(t, loaded.SLAResponseBreached)
	assert.False(t, loaded.SLAResolutionBreached)
}

func TestUpdateStatusTransitions(t *testing.T) {
	env := newTicketEnv(t)
	staff := testStaff(env)
	ticket := env.createTicket(t, TicketCreateInput{Title: "Licensing question"})

	for _, status := range []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
	} {
		_, err := env.svc.UpdateStatus(context.Background(), staff, ticket.ID, status, "")
		require.NoError(t, err)
	}

	// resolved tickets can only reopen or close
	_, err := env.svc.UpdateStatus(context.Background(), staff, ticket.ID, domain.TicketStatusInProgress, "")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)

	updated, err := env.svc.UpdateStatus(context.Background(), staff, ticket.ID, domain.TicketStatusClosed, "done")
	require.NoError(t, err)
	require.NotNil(t, updated.ClosedAt)

	_, err = env.svc.UpdateStatus(context.Background(), staff, ticket.ID, domain.TicketStatusOpen, "")
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestReopeningClearsCompletionTimestamps(t *testing.T) {
	env := newTicketEnv(t)
	staff := testStaff(env)
	ticket := env.createTicket(t, TicketCreateInput{Title: "Recurring crash"})

	_, err := env.svc.UpdateStatus(context.Background(), staff, ticket.ID, domain.TicketStatusOpen, "")
	require.NoError(t, err)
	resolved, err := env.svc.UpdateStatus(context.Background(), staff, ticket.ID, domain.TicketStatusResolved, "")
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)

	reopened, err := env.svc.UpdateStatus(context.Background(), staff, ticket.ID, domain.TicketStatusOpen, "came back")
	require.NoError(t, err)
	assert.Nil(t, reopened.ResolvedAt)
	assert.Nil(t, reopened.ClosedAt)
}

func TestCloseTicketAsUserOnlyFromResolved(t *testing.T) {
	env := newTicketEnv(t)
	staff := testStaff(env)
	ticket := env.createTicket(t, TicketCreateInput{Title: "Monitor flicker", RequesterID: strptr("usr-1")})

	_, err := env.svc.CloseTicketAsUser(context.Background(), env.org.ID, "usr-1", ticket.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)

	_, err = env.svc.UpdateStatus(context.Background(), staff, ticket.ID, domain.TicketStatusResolved, "")
	require.NoError(t, err)

	_, err = env.svc.CloseTicketAsUser(context.Background(), env.org.ID, "usr-other", ticket.ID)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)

	closed, err := env.svc.CloseTicketAsUser(context.Background(), env.org.ID, "usr-1", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)
}

func TestUpdatePriorityKeepsDueDates(t *testing.T) {
	env := newTicketEnv(t)
	env.addPolicy(t, domain.TicketPriorityHigh, 30, 240)
	env.addPolicy(t, domain.TicketPriorityLow, 480, 2880)
	staff := testStaff(env)
	ticket := env.createTicket(t, TicketCreateInput{Title: "Degraded perf", Priority: domain.TicketPriorityHigh})
	originalResponseDue := *ticket.ResponseDueAt
	originalResolutionDue := *ticket.ResolutionDueAt

	updated, err := env.svc.UpdatePriority(context.Background(), staff, ticket.ID, domain.TicketPriorityLow)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketPriorityLow, updated.Priority)
	assert.Equal(t, originalResponseDue, *updated.ResponseDueAt)
	assert.Equal(t, originalResolutionDue, *updated.ResolutionDueAt)

	entries := env.history.byType(domain.ChangeTypePriority)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.TicketPriorityHigh, entries[0].OldValue["priority"])
}

func TestUpdatePrioritySameValueIsNoOp(t *testing.T) {
	env := newTicketEnv(t)
	staff := testStaff(env)
	ticket := env.createTicket(t, TicketCreateInput{Title: "Minor typo", Priority: domain.TicketPriorityLow})

	_, err := env.svc.UpdatePriority(context.Background(), staff, ticket.ID, domain.TicketPriorityLow)
	require.NoError(t, err)

	assert.Empty(t, env.history.byType(domain.ChangeTypePriority))
	assert.Empty(t, env.dispatcher.ofType(events.EventTicketPriorityChanged))
}

func TestGetTicketForUserFiltersInternalNotes(t *testing.T) {
	env := newTicketEnv(t)
	staff := testStaff(env)
	ticket := env.createTicket(t, TicketCreateInput{Title: "Can't log in", RequesterID: strptr("usr-1")})

	_, err := env.svc.AddComment(context.Background(), domain.SubjectTypeStaff, env.org.ID, staff.ID, ticket.ID, domain.CommentTypeInternalNote, "account was disabled by HR")
	require.NoError(t, err)
	_, err = env.svc.AddComment(context.Background(), domain.SubjectTypeStaff, env.org.ID, staff.ID, ticket.ID, domain.CommentTypePublicReply, "access restored")
	require.NoError(t, err)

	_, visible, err := env.svc.GetTicketForUser(context.Background(), env.org.ID, "usr-1", ticket.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, domain.CommentTypePublicReply, visible[0].CommentType)

	_, _, err = env.svc.GetTicketForUser(context.Background(), env.org.ID, "usr-2", ticket.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestCommentPreviewTruncatesOnRuneBoundaries(t *testing.T) {
	long := strings.Repeat("ü", 200)

	got := stringPreview(long, 120)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ü", 117)+"...", got)

	assert.Equal(t, "short note", stringPreview("  short note  ", 120))
	assert.Equal(t, "ab", stringPreview("abcdef", 2))
}
