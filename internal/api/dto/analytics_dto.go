package dto

import "time"

// DashboardResponse is the admin metric snapshot.
type DashboardResponse struct {
	TotalUsers          int `json:"total_users"`
	TotalRegularUsers   int `json:"total_regular_users"`
	TotalProviders      int `json:"total_providers"`
	ActiveProviders     int `json:"active_providers"`
	PendingApplications int `json:"pending_applications"`
	PendingRequests     int `json:"pending_requests"`
	AcceptedRequests    int `json:"accepted_requests"`
	CompletedRequests   int `json:"completed_requests"`
	RejectedRequests    int `json:"rejected_requests"`
	TotalServices       int `json:"total_services"`
}

// DailyCountResponse is one bucket of a per-day histogram.
type DailyCountResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ProviderActivityResponse is the per-provider rollup row.
type ProviderActivityResponse struct {
	ProviderID             string    `json:"provider_id"`
	Email                  string    `json:"email"`
	FirstName              string    `json:"first_name"`
	LastName               string    `json:"last_name"`
	CreatedAt              time.Time `json:"created_at"`
	ServicesCount          int       `json:"services_count"`
	ReceivedRequestsCount  int       `json:"received_requests_count"`
	AcceptedRequestsCount  int       `json:"accepted_requests_count"`
	CompletedRequestsCount int       `json:"completed_requests_count"`
}
