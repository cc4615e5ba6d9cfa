package auth

import "github.com/spec-kit/marketplace-service/internal/domain"

// Action names a role-gated operation on the platform. Ownership and
// state checks stay in the workflow services; the policy table only
// answers "may this role attempt this action at all".
type Action string

const (
	ActionCreateService      Action = "service:create"
	ActionManageOwnServices  Action = "service:manage"
	ActionCreateRequest      Action = "request:create"
	ActionDecideRequest      Action = "request:decide"
	ActionListRequests       Action = "request:list"
	ActionReviewApplications Action = "application:review"
	ActionViewAnalytics      Action = "analytics:view"
)

// policy is the single capability table mapping role x action to
// allow. Absence means deny.
var policy = map[domain.Role]map[Action]struct{}{
	domain.RoleRegular: {
		ActionCreateRequest: {},
		ActionListRequests:  {},
	},
	domain.RoleProvider: {
		ActionCreateService:     {},
		ActionManageOwnServices: {},
		ActionDecideRequest:     {},
		ActionListRequests:      {},
	},
	domain.RoleAdmin: {
		ActionListRequests:       {},
		ActionReviewApplications: {},
		ActionViewAnalytics:      {},
	},
}

// Allowed reports whether the role may attempt the action.
func Allowed(role domain.Role, action Action) bool {
	_, ok := policy[role][action]
	return ok
}
