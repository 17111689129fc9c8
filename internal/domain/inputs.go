package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// FormValue keeps the raw text of a form field that may arrive as a JSON
// string or a JSON number, so numeric parsing happens (and fails) in the
// service layer instead of the decoder.
type FormValue string

func (v *FormValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = FormValue(strings.TrimSpace(s))
		return nil
	}
	*v = FormValue(b)
	return nil
}

// ServiceInput is the catalog form. Price and duration are validated before
// any mutation.
type ServiceInput struct {
	Name            string        `json:"name" validate:"required"`
	Price           FormValue     `json:"price" validate:"required"`
	DurationMinutes FormValue     `json:"durationMinutes" validate:"required"`
	Category        string        `json:"category" validate:"required"`
	Description     string        `json:"description"`
	Status          ServiceStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// ProfessionalInput is the staff form.
type ProfessionalInput struct {
	Name        string   `json:"name" validate:"required"`
	PhotoURL    string   `json:"photoUrl"`
	Color       string   `json:"color" validate:"omitempty,hexcolor"`
	Specialties []string `json:"specialties"`
}

// ClientInput is the client form. Spend and points are not part of it.
type ClientInput struct {
	Name         string   `json:"name" validate:"required"`
	Phone        string   `json:"phone" validate:"required"`
	Email        string   `json:"email" validate:"omitempty,email"`
	PhotoURL     string   `json:"photoUrl"`
	BirthDate    string   `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Allergies    string   `json:"allergies"`
	ColorFormula string   `json:"colorFormula"`
	Notes        string   `json:"notes"`
	Tags         []string `json:"tags"`
}

// AppointmentInput creates an appointment.
type AppointmentInput struct {
	ClientID       string    `json:"clientId" validate:"required"`
	ProfessionalID string    `json:"professionalId" validate:"required"`
	ServiceIDs     []string  `json:"serviceIds" validate:"required,min=1,dive,required"`
	DateTime       time.Time `json:"dateTime" validate:"required"`
	Notes          string    `json:"notes"`
}

// TransactionInput records a manual ledger entry.
type TransactionInput struct {
	Type        TransactionType `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Value       FormValue       `json:"value" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Category    string          `json:"category" validate:"required"`
}

// SettingsUpdate is a partial update; nil fields keep their value.
type SettingsUpdate struct {
	SalonName                *string    `json:"salonName"`
	Phone                    *string    `json:"phone"`
	Address                  *string    `json:"address"`
	LogoURL                  *string    `json:"logoUrl"`
	LoyaltyEnabled           *bool      `json:"loyaltyEnabled"`
	PointsPerCurrency        *FormValue `json:"pointsPerCurrency"`
	LoyaltyRewardDescription *string    `json:"loyaltyRewardDescription"`
	BookingLinkSlug          *string    `json:"bookingLinkSlug"`
}
