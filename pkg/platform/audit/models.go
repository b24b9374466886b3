package audit

import (
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers custody events with legal significance.
	// Asset registration and every hand-off belong here.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers changes to who may act on the ledger:
	// actor onboarding, disabling, administrator hand-over and token revocation.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	// Actor events
	EventActorRegistered AuditEvent = "actor_registered"
	EventActorDisabled   AuditEvent = "actor_disabled"

	// Asset events
	EventAssetRegistered AuditEvent = "asset_registered"
	EventAssetTransfered AuditEvent = "asset_transfered"

	// Administration events
	EventAdministrationTransferred AuditEvent = "administration_transferred"

	// Auth events
	EventTokenRevoked AuditEvent = "token_revoked"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventAssetRegistered: CategoryCompliance,
	EventAssetTransfered: CategoryCompliance,

	EventActorRegistered:           CategorySecurity,
	EventActorDisabled:             CategorySecurity,
	EventAdministrationTransferred: CategorySecurity,
	EventTokenRevoked:              CategorySecurity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// Addresses are carried in their canonical lowercase form.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`

	// Caller is the account whose call produced the event.
	Caller string `json:"caller"`
	// Subject is the actor the event is about (registered/disabled actor,
	// new administrator). Empty for asset events.
	Subject string `json:"subject,omitempty"`
	// AssetID is set for asset events only.
	AssetID uint64 `json:"asset_id,omitempty"`
	// Role is the role name for actor_registered.
	Role string `json:"role,omitempty"`
	// From and To carry the previous and next holder or administrator.
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	Device    string `json:"device,omitempty"`
}

// AggregateKey names the entity an event belongs to. Events sharing a key are
// published to the same partition, so one asset's hand-offs stay ordered.
func (e Event) AggregateKey() (aggregateType, aggregateID string) {
	if e.AssetID != 0 {
		return "asset", formatAssetID(e.AssetID)
	}
	if e.Subject != "" {
		return "actor", e.Subject
	}
	return "audit", e.Caller
}
