package domain

import "github.com/shopspring/decimal"

// UnknownRef is rendered in place of a client, professional or service that
// no longer exists.
const UnknownRef = "unknown"

// PostingOutcome describes what the ledger did when an appointment reached
// COMPLETED.
type PostingOutcome string

const (
	OutcomeNone            PostingOutcome = "none" // target was not COMPLETED
	OutcomePosted          PostingOutcome = "posted"
	OutcomeSkippedNoClient PostingOutcome = "skipped_no_client"
	OutcomeAlreadyPosted   PostingOutcome = "already_posted"
)

// StatusChangeResult is returned by every status change.
type StatusChangeResult struct {
	Appointment    Appointment       `json:"appointment"`
	PreviousStatus AppointmentStatus `json:"previousStatus"`
	Posted         bool              `json:"posted"`
	Outcome        PostingOutcome    `json:"outcome"`
	Transaction    *Transaction      `json:"transaction,omitempty"`
	PointsEarned   int64             `json:"pointsEarned"`
}

// StatusChangeRequest is the body for PATCH /v1/appointments/{id}/status.
type StatusChangeRequest struct {
	Status string `json:"status" validate:"required"`
}

// AppointmentView is an appointment with its references resolved for
// display. Dangling references render as UnknownRef.
type AppointmentView struct {
	Appointment
	StatusLabel      string   `json:"statusLabel"`
	ClientName       string   `json:"clientName"`
	ClientPhone      string   `json:"clientPhone,omitempty"`
	ProfessionalName string   `json:"professionalName"`
	ServiceNames     []string `json:"serviceNames"`
}

// FinanceSummary aggregates a set of transactions.
type FinanceSummary struct {
	Income     decimal.Decimal            `json:"income"`
	Expense    decimal.Decimal            `json:"expense"`
	Balance    decimal.Decimal            `json:"balance"`
	ByCategory map[string]decimal.Decimal `json:"byCategory"`
	Count      int                        `json:"count"`
}

// Summarize totals the given transactions.
func Summarize(txs []Transaction) FinanceSummary {
	s := FinanceSummary{ByCategory: make(map[string]decimal.Decimal)}
	for _, t := range txs {
		switch t.Type {
		case TransactionIncome:
			s.Income = s.Income.Add(t.Value)
		case TransactionExpense:
			s.Expense = s.Expense.Add(t.Value)
		}
		s.ByCategory[t.Category] = s.ByCategory[t.Category].Add(t.Value)
		s.Count++
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}

// ============================================================
// Schedule grid
// ============================================================

// Hours covered by the agenda grid, inclusive.
const (
	ScheduleFirstHour = 8
	ScheduleLastHour  = 20
)

// ScheduleGrid buckets a day's appointments by professional and start hour.
type ScheduleGrid struct {
	Date          string            `json:"date"` // YYYY-MM-DD
	Professionals []Professional    `json:"professionals"`
	Rows          []ScheduleRow     `json:"rows"`
	OffGrid       []AppointmentView `json:"offGrid"`
}

// ScheduleRow is one hour of the grid; Cells follow Professionals order.
type ScheduleRow struct {
	Hour  int            `json:"hour"`
	Label string         `json:"label"` // "08:00"
	Cells []ScheduleCell `json:"cells"`
}

// ScheduleCell holds the appointments of one professional in one hour.
type ScheduleCell struct {
	ProfessionalID string            `json:"professionalId"`
	Appointments   []AppointmentView `json:"appointments"`
}

// ============================================================
// Dashboard
// ============================================================

// Dashboard is the landing view of the admin panel.
type Dashboard struct {
	Date              string            `json:"date"`
	AppointmentsToday int               `json:"appointmentsToday"`
	Upcoming          []AppointmentView `json:"upcoming"`
	ClientCount       int               `json:"clientCount"`
	Financials        *FinanceSummary   `json:"financials,omitempty"` // OWNER only
}

// DashboardUpcomingLimit caps the appointments listed on the dashboard.
const DashboardUpcomingLimit = 5

var pointsBase = decimal.NewFromInt(10)

// LoyaltyPoints is floor(total / divisor) where divisor is
// 10 / pointsPerCurrency, or 10 when pointsPerCurrency is not positive.
// It is evaluated as floor(total * pointsPerCurrency / 10) so no rounded
// intermediate divisor is ever formed.
func LoyaltyPoints(total, pointsPerCurrency decimal.Decimal) int64 {
	if total.Sign() <= 0 {
		return 0
	}
	if pointsPerCurrency.Sign() > 0 {
		return total.Mul(pointsPerCurrency).Div(pointsBase).Floor().IntPart()
	}
	return total.Div(pointsBase).Floor().IntPart()
}

// ServiceIncomeDescription is the ledger description of a completion.
func ServiceIncomeDescription(clientName string) string {
	return ServiceIncomeLabel + " - " + clientName
}
