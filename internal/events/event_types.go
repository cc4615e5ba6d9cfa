package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProviderApproved EventType = "provider_approved"
	EventProviderRejected EventType = "provider_rejected"
	EventRequestCreated   EventType = "request_created"
	EventRequestAccepted  EventType = "request_accepted"
	EventRequestRejected  EventType = "request_rejected"
)

// Event represents a domain event emitted by the workflow services.
// Events are published only after the owning transaction commits, so a
// subscriber never observes a transition that later rolled back.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ProviderDecisionPayload accompanies provider_approved/provider_rejected.
type ProviderDecisionPayload struct {
	ProfileID     string `json:"profile_id"`
	ProviderEmail string `json:"provider_email"`
	ProviderName  string `json:"provider_name"`
}

// RequestCreatedPayload accompanies request_created.
type RequestCreatedPayload struct {
	RequestID     string `json:"request_id"`
	ServiceName   string `json:"service_name"`
	ProviderEmail string `json:"provider_email"`
	ProviderName  string `json:"provider_name"`
	RequesterName string `json:"requester_name"`
}

// RequestDecisionPayload accompanies request_accepted/request_rejected.
type RequestDecisionPayload struct {
	RequestID      string `json:"request_id"`
	ServiceName    string `json:"service_name"`
	RequesterEmail string `json:"requester_email"`
	RequesterName  string `json:"requester_name"`
	ProviderName   string `json:"provider_name"`
}
