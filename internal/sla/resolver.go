package sla

import (
	"time"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// Applied carries the due dates computed for a ticket at creation, plus the
// policy that produced them.
type Applied struct {
	PolicyID        string
	ResponseDueAt   time.Time
	ResolutionDueAt time.Time
}

// Apply looks up the active policy matching the ticket priority and computes
// both due dates from createdAt. A missing policy is a valid state, not an
// error: the ticket simply carries no SLA and (nil, nil) is returned. A
// ConfigurationError from the calendar walk propagates to the caller.
func Apply(priority domain.TicketPriority, createdAt time.Time, policies []domain.SLAPolicy, hours *domain.BusinessHours) (*Applied, error) {
	policy := matchPolicy(policies, priority)
	if policy == nil {
		return nil, nil
	}

	responseDue, err := Advance(createdAt, policy.ResponseMinutes, hours)
	if err != nil {
		return nil, err
	}
	resolutionDue, err := Advance(createdAt, policy.ResolutionMinutes, hours)
	if err != nil {
		return nil, err
	}

	return &Applied{
		PolicyID:        policy.ID,
		ResponseDueAt:   responseDue,
		ResolutionDueAt: resolutionDue,
	}, nil
}

func matchPolicy(policies []domain.SLAPolicy, priority domain.TicketPriority) *domain.SLAPolicy {
	for i := range policies {
		if policies[i].IsActive && policies[i].Priority == priority {
			return &policies[i]
		}
	}
	return nil
}

// Breach is the evaluated breach state for a ticket at a point in time.
type Breach struct {
	Response   bool
	Resolution bool
}

// EvaluateBreach computes the breach state of a ticket at now. Flags are
// monotonic: once recorded true on the ticket they are carried forward
// unconditionally, so evaluation is idempotent and breach stays a permanent
// historical fact even if the ticket's status or dues later change.
//
// Response breaches when the due date passed without a first response;
// resolution breaches when the due date passed and the ticket is not
// resolved or closed.
func EvaluateBreach(t *domain.Ticket, now time.Time) Breach {
	b := Breach{
		Response:   t.SLAResponseBreached,
		Resolution: t.SLAResolutionBreached,
	}
	if !b.Response && t.FirstResponseAt == nil && t.ResponseDueAt != nil && now.After(*t.ResponseDueAt) {
		b.Response = true
	}
	if !b.Resolution && !t.Status.IsTerminal() && t.ResolutionDueAt != nil && now.After(*t.ResolutionDueAt) {
		b.Resolution = true
	}
	return b
}

// ChangedFrom reports whether the evaluated state differs from the flags
// already stored on the ticket, i.e. a new breach was detected.
func (b Breach) ChangedFrom(t *domain.Ticket) bool {
	return b.Response != t.SLAResponseBreached || b.Resolution != t.SLAResolutionBreached
}
