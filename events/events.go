package events

import "encoding/json"

// Event defines a type that can yield itself as JSON bytes and describe
// itself to publish-time filters.
type Event interface {
	Yield() []byte
	EventAction() string
	IsSuccessful() bool
}

// GEM is the global event model, the envelope for every event published to
// the queue. The payload carries the engine specific fields.
type GEM struct {
	// ID is a unique identifier for this event.
	ID string `json:"eventId"`
	// EventChain carries the IDs of causally related earlier events.
	EventChain []string `json:"eventChain,omitempty"`
	// SchemaVersion identifies the revision of this envelope format.
	SchemaVersion string `json:"schemaVersion"`
	// OriginatorTokens carries the credentials presented with the originating
	// request.
	OriginatorTokens []string `json:"originatorTokens,omitempty"`
	// EventType partitions our events from other emitters on a shared topic.
	EventType string `json:"eventType"`
	// Timestamp is seconds since the epoch when the event was assembled.
	Timestamp int64 `json:"timestamp"`
	// XForwardedForIP is the client address reported by an upstream proxy.
	XForwardedForIP string `json:"xForwardedForIp,omitempty"`
	// SystemIP is the address of the node that emitted the event.
	SystemIP string `json:"systemIp"`
	// Action is the operation that produced this event, e.g. create or update.
	Action string `json:"action"`
	// Payload carries the compliance engine fields.
	Payload ComplianceEvent `json:"payload"`
}

// ComplianceEvent is the engine specific payload of a GEM. Identifier fields
// are populated as far as the operation that emitted the event touches them.
type ComplianceEvent struct {
	// ObjectType names the kind of record acted on: rule, checklist, or check.
	ObjectType string `json:"objectType,omitempty"`
	// ObjectID is the identifier of the record acted on.
	ObjectID string `json:"objectId,omitempty"`
	// RuleID is the rule involved, for rule and check events.
	RuleID string `json:"ruleId,omitempty"`
	// RuleCode is the human-meaningful code of the rule involved.
	RuleCode string `json:"ruleCode,omitempty"`
	// ChecklistID is the checklist involved, for checklist and check events.
	ChecklistID string `json:"checklistId,omitempty"`
	// CheckID is the check involved, for check events.
	CheckID string `json:"checkId,omitempty"`
	// Status is the resulting status of the record acted on.
	Status string `json:"status,omitempty"`
	// PendingCount is the owning checklist's remaining pending checks, for
	// check events.
	PendingCount int `json:"pendingCount,omitempty"`
	// ActionResult is SUCCESS or FAILURE.
	ActionResult string `json:"actionResult"`
	// Messages carries failure details when ActionResult is FAILURE.
	Messages []string `json:"messages,omitempty"`
	// UserDN is the distinguished name of the acting user.
	UserDN string `json:"userDn"`
	// SessionID correlates this event with the log entries of its request.
	SessionID string `json:"sessionId"`
}

// Yield satisfies the Event interface.
func (e GEM) Yield() []byte {
	b, _ := json.Marshal(e)
	return b
}

// EventAction satisfies the Event interface.
func (e GEM) EventAction() string {
	return e.Action
}

// IsSuccessful satisfies the Event interface. An event is successful unless
// its payload was explicitly marked failed.
func (e GEM) IsSuccessful() bool {
	return e.Payload.ActionResult != "FAILURE"
}
