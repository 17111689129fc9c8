package domain

// BookingSlots are the start times offered by the public booking page.
var BookingSlots = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00", "17:00", "18:00"}

// BookingCatalog is what the public booking page shows for a salon.
type BookingCatalog struct {
	SalonName     string         `json:"salonName"`
	Phone         string         `json:"phone"`
	Address       string         `json:"address"`
	LogoURL       string         `json:"logoUrl,omitempty"`
	Services      []Service      `json:"services"`
	Professionals []Professional `json:"professionals"`
}

// SlotAvailability is one slot of a day for a professional.
type SlotAvailability struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// SlotsResponse is the body for GET /v1/book/{slug}/slots.
type SlotsResponse struct {
	Date           string             `json:"date"`
	ProfessionalID string             `json:"professionalId,omitempty"`
	Slots          []SlotAvailability `json:"slots"`
}

// BookingRequest is the body for POST /v1/book/{slug}.
type BookingRequest struct {
	ServiceID      string `json:"serviceId" validate:"required"`
	ProfessionalID string `json:"professionalId" validate:"required"`
	Slot           string `json:"slot" validate:"required"`
	Date           string `json:"date" validate:"omitempty,datetime=2006-01-02"` // defaults to tomorrow
	Name           string `json:"name" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
}

// BookingConfirmation is the response for a successful booking.
type BookingConfirmation struct {
	AppointmentID    string `json:"appointmentId"`
	ClientID         string `json:"clientId"`
	DateTime         string `json:"dateTime"`
	ServiceName      string `json:"serviceName"`
	ProfessionalName string `json:"professionalName"`
	TotalValue       string `json:"totalValue"` // formatted for display
}
