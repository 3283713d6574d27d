package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose so stores can
// apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers identity review and money movement.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers authentication and abuse signals.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine attendance and job activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. It never carries a
// raw national identifier; SubjectIDHash holds the fingerprint instead.
type Event struct {
	ID            uuid.UUID     `json:"id"`
	Category      EventCategory `json:"category"`
	Timestamp     time.Time     `json:"timestamp"`
	Wallet        string        `json:"wallet,omitempty"`
	Action        string        `json:"action"`
	Decision      string        `json:"decision,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	SubjectIDHash string        `json:"subject_id_hash,omitempty"`
	RequestID     string        `json:"request_id,omitempty"`
	ActorID       string        `json:"actor_id,omitempty"`
}

type AuditEvent string

const (
	// Identity
	EventIdentitySubmitted AuditEvent = "identity_submitted"
	EventIdentityVerified  AuditEvent = "identity_verified"
	EventIdentityRejected  AuditEvent = "identity_rejected"

	// Bond lifecycle
	EventBondStaked       AuditEvent = "bond_staked"
	EventWorkerHired      AuditEvent = "worker_hired"
	EventWorkerTerminated AuditEvent = "worker_terminated"
	EventCheckInRecorded  AuditEvent = "check_in_recorded"
	EventCheckInRejected  AuditEvent = "check_in_rejected"
	EventWageReleased     AuditEvent = "wage_released"
	EventJobCompleted     AuditEvent = "job_completed"
	EventJobPosted        AuditEvent = "job_posted"
	EventJobStarted       AuditEvent = "job_started"
	EventJobCancelled     AuditEvent = "job_cancelled"

	// Ledger
	EventLedgerIntentFailed    AuditEvent = "ledger_intent_failed"
	EventLedgerIntentConfirmed AuditEvent = "ledger_intent_confirmed"

	// Access
	EventAuthFailed        AuditEvent = "auth_failed"
	EventRateLimitExceeded AuditEvent = "rate_limit_exceeded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventIdentitySubmitted:     CategoryCompliance,
	EventIdentityVerified:      CategoryCompliance,
	EventIdentityRejected:      CategoryCompliance,
	EventBondStaked:            CategoryCompliance,
	EventWageReleased:          CategoryCompliance,
	EventLedgerIntentFailed:    CategoryCompliance,
	EventLedgerIntentConfirmed: CategoryCompliance,

	EventAuthFailed:        CategorySecurity,
	EventRateLimitExceeded: CategorySecurity,

	EventWorkerHired:      CategoryOperations,
	EventWorkerTerminated: CategoryOperations,
	EventCheckInRecorded:  CategoryOperations,
	EventCheckInRejected:  CategoryOperations,
	EventJobCompleted:     CategoryOperations,
	EventJobPosted:        CategoryOperations,
	EventJobStarted:       CategoryOperations,
	EventJobCancelled:     CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByWallet(ctx context.Context, wallet string) ([]Event, error)
}
