package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/events"
	"github.com/josoro11/FOXITE-V2/internal/repository"
)

// In-memory repository fakes. They mirror the contracts of the postgres
// implementations closely enough for service tests: missing rows return
// pgx.ErrNoRows and Create assigns IDs.

type idSeq struct {
	prefix string
	n      int
}

func (s *idSeq) next() string {
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

type fakeOrgRepo struct {
	orgs map[string]*domain.Organization
	seq  idSeq
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{orgs: map[string]*domain.Organization{}, seq: idSeq{prefix: "org"}}
}

func (r *fakeOrgRepo) Create(_ context.Context, org *domain.Organization) error {
	if org.ID == "" {
		org.ID = r.seq.next()
	}
	copied := *org
	r.orgs[org.ID] = &copied
	return nil
}

func (r *fakeOrgRepo) Update(_ context.Context, org *domain.Organization) error {
	if _, ok := r.orgs[org.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *org
	r.orgs[org.ID] = &copied
	return nil
}

func (r *fakeOrgRepo) GetByID(_ context.Context, id string) (*domain.Organization, error) {
	org, ok := r.orgs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *org
	return &copied, nil
}

type fakeStaffRepo struct {
	staff map[string]*domain.StaffMember
	seq   idSeq
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{staff: map[string]*domain.StaffMember{}, seq: idSeq{prefix: "stf"}}
}

func (r *fakeStaffRepo) Create(_ context.Context, staff *domain.StaffMember) error {
	if staff.ID == "" {
		staff.ID = r.seq.next()
	}
	copied := *staff
	r.staff[staff.ID] = &copied
	return nil
}

func (r *fakeStaffRepo) Update(_ context.Context, staff *domain.StaffMember) error {
	if _, ok := r.staff[staff.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *staff
	r.staff[staff.ID] = &copied
	return nil
}

func (r *fakeStaffRepo) GetByID(_ context.Context, orgID, id string) (*domain.StaffMember, error) {
	staff, ok := r.staff[id]
	if !ok || staff.OrganizationID != orgID {
		return nil, pgx.ErrNoRows
	}
	copied := *staff
	return &copied, nil
}

func (r *fakeStaffRepo) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	for _, staff := range r.staff {
		if staff.Email == email {
			copied := *staff
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeStaffRepo) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	var result []domain.StaffMember
	for _, staff := range r.staff {
		if staff.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.Role != nil && staff.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && staff.Active != *filter.Active {
			continue
		}
		result = append(result, *staff)
	}
	return result, nil
}

func (r *fakeStaffRepo) CountActiveByOrganization(_ context.Context, orgID string) (int, error) {
	count := 0
	for _, staff := range r.staff {
		if staff.OrganizationID == orgID && staff.Active {
			count++
		}
	}
	return count, nil
}

func (r *fakeStaffRepo) RecordLogin(_ context.Context, id string, at time.Time) error {
	staff, ok := r.staff[id]
	if !ok {
		return pgx.ErrNoRows
	}
	staff.LastLoginAt = &at
	return nil
}

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	seq     idSeq
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}, seq: idSeq{prefix: "tck"}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = r.seq.next()
	}
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, orgID, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok || ticket.OrganizationID != orgID {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.RequesterID != nil && (ticket.RequesterID == nil || *ticket.RequesterID != *filter.RequesterID) {
			continue
		}
		if filter.AssigneeID != nil && (ticket.AssigneeID == nil || *ticket.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (r *fakeTicketRepo) CountByOrganization(_ context.Context, orgID string) (int, error) {
	count := 0
	for _, ticket := range r.tickets {
		if ticket.OrganizationID == orgID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) SetFirstResponse(_ context.Context, orgID, id string, at time.Time) error {
	ticket, ok := r.tickets[id]
	if !ok || ticket.OrganizationID != orgID {
		return pgx.ErrNoRows
	}
	if ticket.FirstResponseAt == nil {
		ticket.FirstResponseAt = &at
	}
	return nil
}

func (r *fakeTicketRepo) RecordBreach(_ context.Context, orgID, id string, response, resolution bool) error {
	ticket, ok := r.tickets[id]
	if !ok || ticket.OrganizationID != orgID {
		return pgx.ErrNoRows
	}
	ticket.SLAResponseBreached = ticket.SLAResponseBreached || response
	ticket.SLAResolutionBreached = ticket.SLAResolutionBreached || resolution
	return nil
}

func (r *fakeTicketRepo) ListBreachCandidates(_ context.Context, now time.Time, limit int) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.Status.IsTerminal() {
			continue
		}
		responsePending := !ticket.SLAResponseBreached && ticket.FirstResponseAt == nil &&
			ticket.ResponseDueAt != nil && now.After(*ticket.ResponseDueAt)
		resolutionPending := !ticket.SLAResolutionBreached &&
			ticket.ResolutionDueAt != nil && now.After(*ticket.ResolutionDueAt)
		if !responsePending && !resolutionPending {
			continue
		}
		result = append(result, *ticket)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

type fakeCommentRepo struct {
	comments []domain.TicketComment
	seq      idSeq
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{seq: idSeq{prefix: "cmt"}}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.TicketComment) error {
	if comment.ID == "" {
		comment.ID = r.seq.next()
	}
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, orgID, ticketID string) ([]domain.TicketComment, error) {
	var result []domain.TicketComment
	for _, c := range r.comments {
		if c.OrganizationID == orgID && c.TicketID == ticketID {
			result = append(result, c)
		}
	}
	return result, nil
}

type fakeHistoryRepo struct {
	entries []domain.TicketHistory
	seq     idSeq
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{seq: idSeq{prefix: "his"}}
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.TicketHistory) error {
	if entry.ID == "" {
		entry.ID = r.seq.next()
	}
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, orgID, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	var result []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.OrganizationID == orgID && entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *fakeHistoryRepo) byType(changeType domain.TicketChangeType) []domain.TicketHistory {
	var result []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.ChangeType == changeType {
			result = append(result, entry)
		}
	}
	return result
}

type fakeSLARepo struct {
	policies map[string]*domain.SLAPolicy
	hours    map[string]*domain.BusinessHours
	seq      idSeq
}

func newFakeSLARepo() *fakeSLARepo {
	return &fakeSLARepo{
		policies: map[string]*domain.SLAPolicy{},
		hours:    map[string]*domain.BusinessHours{},
		seq:      idSeq{prefix: "pol"},
	}
}

func (r *fakeSLARepo) CreatePolicy(_ context.Context, policy *domain.SLAPolicy) error {
	if policy.ID == "" {
		policy.ID = r.seq.next()
	}
	copied := *policy
	r.policies[policy.ID] = &copied
	return nil
}

func (r *fakeSLARepo) UpdatePolicy(_ context.Context, policy *domain.SLAPolicy) error {
	if _, ok := r.policies[policy.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *policy
	r.policies[policy.ID] = &copied
	return nil
}

func (r *fakeSLARepo) GetPolicy(_ context.Context, orgID, id string) (*domain.SLAPolicy, error) {
	policy, ok := r.policies[id]
	if !ok || policy.OrganizationID != orgID {
		return nil, pgx.ErrNoRows
	}
	copied := *policy
	return &copied, nil
}

func (r *fakeSLARepo) ListActivePolicies(_ context.Context, orgID string) ([]domain.SLAPolicy, error) {
	var result []domain.SLAPolicy
	for _, policy := range r.policies {
		if policy.OrganizationID == orgID && policy.IsActive {
			result = append(result, *policy)
		}
	}
	return result, nil
}

func (r *fakeSLARepo) CountPoliciesByOrganization(_ context.Context, orgID string) (int, error) {
	count := 0
	for _, policy := range r.policies {
		if policy.OrganizationID == orgID {
			count++
		}
	}
	return count, nil
}

func (r *fakeSLARepo) UpsertBusinessHours(_ context.Context, hours *domain.BusinessHours) error {
	if hours.ID == "" {
		hours.ID = "bh-" + hours.OrganizationID
	}
	copied := *hours
	r.hours[hours.OrganizationID] = &copied
	return nil
}

func (r *fakeSLARepo) GetBusinessHours(_ context.Context, orgID string) (*domain.BusinessHours, error) {
	hours, ok := r.hours[orgID]
	if !ok {
		return nil, nil
	}
	copied := *hours
	return &copied, nil
}

type fakeCompanyRepo struct {
	companies map[string]*domain.ClientCompany
	seq       idSeq
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: map[string]*domain.ClientCompany{}, seq: idSeq{prefix: "cmp"}}
}

func (r *fakeCompanyRepo) Create(_ context.Context, company *domain.ClientCompany) error {
	if company.ID == "" {
		company.ID = r.seq.next()
	}
	copied := *company
	r.companies[company.ID] = &copied
	return nil
}

func (r *fakeCompanyRepo) Update(_ context.Context, company *domain.ClientCompany) error {
	if _, ok := r.companies[company.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *company
	r.companies[company.ID] = &copied
	return nil
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, orgID, id string) (*domain.ClientCompany, error) {
	company, ok := r.companies[id]
	if !ok || company.OrganizationID != orgID {
		return nil, pgx.ErrNoRows
	}
	copied := *company
	return &copied, nil
}

func (r *fakeCompanyRepo) ListByOrganization(_ context.Context, orgID string, limit, offset int) ([]domain.ClientCompany, error) {
	var result []domain.ClientCompany
	for _, company := range r.companies {
		if company.OrganizationID == orgID {
			result = append(result, *company)
		}
	}
	return result, nil
}

func (r *fakeCompanyRepo) CountByOrganization(_ context.Context, orgID string) (int, error) {
	count := 0
	for _, company := range r.companies {
		if company.OrganizationID == orgID {
			count++
		}
	}
	return count, nil
}

type fakeEndUserRepo struct {
	users map[string]*domain.User
	seq   idSeq
}

func newFakeEndUserRepo() *fakeEndUserRepo {
	return &fakeEndUserRepo{users: map[string]*domain.User{}, seq: idSeq{prefix: "usr"}}
}

func (r *fakeEndUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = r.seq.next()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeEndUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeEndUserRepo) GetByID(_ context.Context, orgID, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok || user.OrganizationID != orgID {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeEndUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeEndUserRepo) ListByOrganization(_ context.Context, orgID string, limit, offset int) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.users {
		if user.OrganizationID == orgID {
			result = append(result, *user)
		}
	}
	return result, nil
}

func (r *fakeEndUserRepo) CountByOrganization(_ context.Context, orgID string) (int, error) {
	count := 0
	for _, user := range r.users {
		if user.OrganizationID == orgID {
			count++
		}
	}
	return count, nil
}

type fakeDeviceRepo struct {
	devices map[string]*domain.Device
	seq     idSeq
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: map[string]*domain.Device{}, seq: idSeq{prefix: "dev"}}
}

func (r *fakeDeviceRepo) Create(_ context.Context, device *domain.Device) error {
	if device.ID == "" {
		device.ID = r.seq.next()
	}
	copied := *device
	r.devices[device.ID] = &copied
	return nil
}

func (r *fakeDeviceRepo) Update(_ context.Context, device *domain.Device) error {
	if _, ok := r.devices[device.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *device
	r.devices[device.ID] = &copied
	return nil
}

func (r *fakeDeviceRepo) GetByID(_ context.Context, orgID, id string) (*domain.Device, error) {
	device, ok := r.devices[id]
	if !ok || device.OrganizationID != orgID {
		return nil, pgx.ErrNoRows
	}
	copied := *device
	return &copied, nil
}

func (r *fakeDeviceRepo) ListByOrganization(_ context.Context, orgID string, limit, offset int) ([]domain.Device, error) {
	var result []domain.Device
	for _, device := range r.devices {
		if device.OrganizationID == orgID {
			result = append(result, *device)
		}
	}
	return result, nil
}

func (r *fakeDeviceRepo) CountByOrganization(_ context.Context, orgID string) (int, error) {
	count := 0
	for _, device := range r.devices {
		if device.OrganizationID == orgID {
			count++
		}
	}
	return count, nil
}

type fakeLicenseRepo struct {
	licenses map[string]*domain.License
	seq      idSeq
}

func newFakeLicenseRepo() *fakeLicenseRepo {
	return &fakeLicenseRepo{licenses: map[string]*domain.License{}, seq: idSeq{prefix: "lic"}}
}

func (r *fakeLicenseRepo) Create(_ context.Context, license *domain.License) error {
	if license.ID == "" {
		license.ID = r.seq.next()
	}
	copied := *license
	r.licenses[license.ID] = &copied
	return nil
}

func (r *fakeLicenseRepo) Update(_ context.Context, license *domain.License) error {
	if _, ok := r.licenses[license.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *license
	r.licenses[license.ID] = &copied
	return nil
}

func (r *fakeLicenseRepo) GetByID(_ context.Context, orgID, id string) (*domain.License, error) {
	license, ok := r.licenses[id]
	if !ok || license.OrganizationID != orgID {
		return nil, pgx.ErrNoRows
	}
	copied := *license
	return &copied, nil
}

func (r *fakeLicenseRepo) ListByOrganization(_ context.Context, orgID string, limit, offset int) ([]domain.License, error) {
	var result []domain.License
	for _, license := range r.licenses {
		if license.OrganizationID == orgID {
			result = append(result, *license)
		}
	}
	return result, nil
}

func (r *fakeLicenseRepo) CountByOrganization(_ context.Context, orgID string) (int, error) {
	count := 0
	for _, license := range r.licenses {
		if license.OrganizationID == orgID {
			count++
		}
	}
	return count, nil
}

type fakeSessionRepo struct {
	sessions map[string]*domain.WorkSession
	seq      idSeq
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*domain.WorkSession{}, seq: idSeq{prefix: "ses"}}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *domain.WorkSession) error {
	if session.ID == "" {
		session.ID = r.seq.next()
	}
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) Update(_ context.Context, session *domain.WorkSession) error {
	if _, ok := r.sessions[session.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, orgID, id string) (*domain.WorkSession, error) {
	session, ok := r.sessions[id]
	if !ok || session.OrganizationID != orgID {
		return nil, pgx.ErrNoRows
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) ListByOrganization(_ context.Context, orgID string, limit, offset int) ([]domain.WorkSession, error) {
	var result []domain.WorkSession
	for _, session := range r.sessions {
		if session.OrganizationID == orgID {
			result = append(result, *session)
		}
	}
	return result, nil
}

func (r *fakeSessionRepo) ListByTicket(_ context.Context, orgID, ticketID string) ([]domain.WorkSession, error) {
	var result []domain.WorkSession
	for _, session := range r.sessions {
		if session.OrganizationID == orgID && session.TicketID != nil && *session.TicketID == ticketID {
			result = append(result, *session)
		}
	}
	return result, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) ofType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, e := range d.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

func strptr(s string) *string { return &s }
