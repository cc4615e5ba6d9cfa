package domain

import "time"

// RequestStatus enumerates lifecycle states of a service request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusAccepted  RequestStatus = "ACCEPTED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCompleted RequestStatus = "COMPLETED"
)

// Valid reports whether the status is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusRejected, RequestStatusCompleted:
		return true
	}
	return false
}

// RequestAction is an operation attempted against a service request.
type RequestAction string

const (
	RequestActionAccept RequestAction = "accept"
	RequestActionReject RequestAction = "reject"
)

// requestTransitions maps current status x action to the next status.
// Only PENDING has outbound edges; ACCEPTED, REJECTED and COMPLETED are
// terminal. COMPLETED has no inbound edge here: nothing in the API moves
// a request to COMPLETED, the value is settable only outside the
// workflow.
var requestTransitions = map[RequestStatus]map[RequestAction]RequestStatus{
	RequestStatusPending: {
		RequestActionAccept: RequestStatusAccepted,
		RequestActionReject: RequestStatusRejected,
	},
}

// NextRequestStatus resolves the transition table. ok is false when the
// action is not permitted from the current status.
func NextRequestStatus(current RequestStatus, action RequestAction) (RequestStatus, bool) {
	next, ok := requestTransitions[current][action]
	return next, ok
}

// ServiceRequest links one service, one requester and the service's
// provider. ProviderID is denormalized from the service at creation time
// and always equals service.ProviderID.
type ServiceRequest struct {
	ID          string
	ServiceID   string
	RequesterID string
	ProviderID  string
	Status      RequestStatus
	Message     string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Populated on joined reads.
	Service   *Service
	Requester *User
	Provider  *User
}
