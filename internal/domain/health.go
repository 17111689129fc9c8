package domain

import "github.com/shopspring/decimal"

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"` // up, disabled
	LastChecked string `json:"lastChecked"`
}

// LedgerMetrics is returned by GET /v1/metrics/ledger.
type LedgerMetrics struct {
	AppointmentsCreated int64            `json:"appointmentsCreated"`
	StatusTransitions   map[string]int64 `json:"statusTransitions"`
	Postings            map[string]int64 `json:"postings"` // by outcome
	IncomePosted        decimal.Decimal  `json:"incomePosted"`
	CacheHitRate        float64          `json:"cacheHitRate"`
	MessagesSent        int64            `json:"messagesSent"`
	ExternalErrors      int64            `json:"externalErrors"`
}

// ============================================================
// Generic API Response wrappers
// ============================================================

// ListResponse wraps list results.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
