package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Catalog
// ============================================================

// ServiceStatus marks whether a service is offered for new bookings.
type ServiceStatus string

const (
	ServiceActive   ServiceStatus = "ACTIVE"
	ServiceInactive ServiceStatus = "INACTIVE"
)

// Service is an item of the salon catalog.
type Service struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"durationMinutes"`
	Category        string          `json:"category"`
	Description     string          `json:"description,omitempty"`
	Status          ServiceStatus   `json:"status"`
}

// Professional is a member of staff who performs services.
type Professional struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	PhotoURL    string   `json:"photoUrl,omitempty"`
	Color       string   `json:"color"`       // hex color used by the calendar
	Specialties []string `json:"specialties"` // service ids
}

// Clone returns a copy that shares no slices with p.
func (p Professional) Clone() Professional {
	p.Specialties = append([]string(nil), p.Specialties...)
	return p
}

// ============================================================
// Clients
// ============================================================

// Client is a salon customer. TotalSpent and LoyaltyPoints only grow, and
// only the ledger engine raises them.
type Client struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email,omitempty"`
	PhotoURL      string          `json:"photoUrl,omitempty"`
	BirthDate     string          `json:"birthDate,omitempty"` // YYYY-MM-DD
	Allergies     string          `json:"allergies,omitempty"`
	ColorFormula  string          `json:"colorFormula,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Tags          []string        `json:"tags"`
	LastVisit     string          `json:"lastVisit,omitempty"` // YYYY-MM-DD
	TotalSpent    decimal.Decimal `json:"totalSpent"`
	LoyaltyPoints int64           `json:"loyaltyPoints"`
}

// Clone returns a copy that shares no slices with c.
func (c Client) Clone() Client {
	c.Tags = append([]string(nil), c.Tags...)
	return c
}

// DefaultClientTag is attached to every client created through the admin or
// the booking flow.
const DefaultClientTag = "Novo"

// ============================================================
// Appointments
// ============================================================

// Appointment is a scheduled engagement between a client and a professional.
// TotalValue is frozen at creation time.
type Appointment struct {
	ID             string            `json:"id"`
	ClientID       string            `json:"clientId"`
	ProfessionalID string            `json:"professionalId"`
	ServiceIDs     []string          `json:"serviceIds"`
	DateTime       time.Time         `json:"dateTime"`
	Status         AppointmentStatus `json:"status"`
	TotalValue     decimal.Decimal   `json:"totalValue"`
	Notes          string            `json:"notes,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`

	// PostedTransactionID is set once the completion income has been posted.
	PostedTransactionID string `json:"postedTransactionId,omitempty"`
}

// Clone returns a copy that shares no slices with a.
func (a Appointment) Clone() Appointment {
	a.ServiceIDs = append([]string(nil), a.ServiceIDs...)
	return a
}

// IsPosted reports whether the completion income was already posted.
func (a *Appointment) IsPosted() bool {
	return a.PostedTransactionID != ""
}

// DefaultAppointmentMinutes is the occupied time assumed for an appointment
// whose services carry no duration.
const DefaultAppointmentMinutes = 60

// AppointmentFilter narrows appointment listings. Zero values mean "any".
type AppointmentFilter struct {
	From           *time.Time // inclusive
	To             *time.Time // exclusive
	ProfessionalID string
	ClientID       string
}

// Matches reports whether a satisfies the filter.
func (f AppointmentFilter) Matches(a *Appointment) bool {
	if f.From != nil && a.DateTime.Before(*f.From) {
		return false
	}
	if f.To != nil && !a.DateTime.Before(*f.To) {
		return false
	}
	if f.ProfessionalID != "" && a.ProfessionalID != f.ProfessionalID {
		return false
	}
	if f.ClientID != "" && a.ClientID != f.ClientID {
		return false
	}
	return true
}

// ============================================================
// Ledger
// ============================================================

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Transaction is an append-only financial ledger entry.
type Transaction struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Type          TransactionType `json:"type"`
	Value         decimal.Decimal `json:"value"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	AppointmentID string          `json:"appointmentId,omitempty"`
}

// Ledger labels used for completion postings.
const (
	ServiceIncomeCategory = "Services"
	ServiceIncomeLabel    = "Service"
)

// TransactionFilter narrows ledger listings. Zero values mean "any".
type TransactionFilter struct {
	Type TransactionType
	From *time.Time // inclusive
	To   *time.Time // exclusive
}

// Matches reports whether t satisfies the filter.
func (f TransactionFilter) Matches(t *Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && !t.Date.Before(*f.To) {
		return false
	}
	return true
}

// ============================================================
// Settings
// ============================================================

// Settings holds the salon profile and loyalty configuration.
type Settings struct {
	SalonName                string          `json:"salonName"`
	Phone                    string          `json:"phone"`
	Address                  string          `json:"address"`
	LogoURL                  string          `json:"logoUrl"`
	LoyaltyEnabled           bool            `json:"loyaltyEnabled"`
	PointsPerCurrency        decimal.Decimal `json:"pointsPerCurrency"`
	LoyaltyRewardDescription string          `json:"loyaltyRewardDescription"`
	BookingLinkSlug          string          `json:"bookingLinkSlug"`
}
