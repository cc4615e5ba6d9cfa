package domain

import "time"

// ApprovalStatus enumerates lifecycle states of a provider application.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// Valid reports whether the status is a known approval status.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}

// ApprovalAction is an operation attempted against a provider profile.
type ApprovalAction string

const (
	ApprovalActionApprove ApprovalAction = "approve"
	ApprovalActionReject  ApprovalAction = "reject"
)

// approvalTransitions maps current status x action to the next status.
// Re-approving an approved profile and re-rejecting a rejected one are
// both absent from the table and fail with a conflict.
var approvalTransitions = map[ApprovalStatus]map[ApprovalAction]ApprovalStatus{
	ApprovalStatusPending: {
		ApprovalActionApprove: ApprovalStatusApproved,
		ApprovalActionReject:  ApprovalStatusRejected,
	},
	// The guard is "not already in the target state": a rejected
	// profile may still be approved and an approved one revoked.
	ApprovalStatusRejected: {
		ApprovalActionApprove: ApprovalStatusApproved,
	},
	ApprovalStatusApproved: {
		ApprovalActionReject: ApprovalStatusRejected,
	},
}

// NextApprovalStatus resolves the transition table. ok is false when the
// action is not permitted from the current status.
func NextApprovalStatus(current ApprovalStatus, action ApprovalAction) (ApprovalStatus, bool) {
	next, ok := approvalTransitions[current][action]
	return next, ok
}

// ProviderProfile is the 1:1 extension of a PROVIDER-role user. It exists
// iff the owning user has role PROVIDER and starts in PENDING.
type ProviderProfile struct {
	ID                 string
	UserID             string
	ServiceDescription string
	ApprovalStatus     ApprovalStatus
	ApprovedByID       *string
	ApprovedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// User is the owning identity, populated on joined reads.
	User *User
}
