package domain

import "fmt"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "SCHEDULED"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusArrived   AppointmentStatus = "ARRIVED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusNoShow    AppointmentStatus = "NO_SHOW"
	StatusCancelled AppointmentStatus = "CANCELLED"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusArrived,
	StatusCompleted,
	StatusNoShow,
	StatusCancelled,
}

var statusLabels = map[AppointmentStatus]string{
	StatusScheduled: "Agendado",
	StatusConfirmed: "Confirmado",
	StatusArrived:   "Chegou",
	StatusCompleted: "Finalizado",
	StatusNoShow:    "No-Show",
	StatusCancelled: "Cancelado",
}

// ParseAppointmentStatus accepts either the enum value or its pt-BR label.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	for _, st := range AllStatuses {
		if string(st) == s || statusLabels[st] == s {
			return st, nil
		}
	}
	return "", &ErrValidation{Field: "status", Message: fmt.Sprintf("unknown appointment status %q", s)}
}

// Valid reports whether s belongs to the enum.
func (s AppointmentStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the pt-BR display name of the status.
func (s AppointmentStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// IsTerminal reports whether no further lifecycle step follows s.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusNoShow || s == StatusCancelled
}

// IsActive reports whether the appointment still occupies the professional's
// time.
func (s AppointmentStatus) IsActive() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// strictTransitions is the forward-only lifecycle table.
var strictTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled: {StatusConfirmed, StatusArrived, StatusCompleted, StatusNoShow, StatusCancelled},
	StatusConfirmed: {StatusArrived, StatusCompleted, StatusNoShow, StatusCancelled},
	StatusArrived:   {StatusCompleted, StatusNoShow, StatusCancelled},
}

// CanTransition reports whether the strict table allows from -> to.
// Writing the current status again is always allowed.
func CanTransition(from, to AppointmentStatus) bool {
	if from == to {
		return true
	}
	for _, next := range strictTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextCycleStatus is the agenda's click-to-advance shortcut:
// SCHEDULED -> CONFIRMED -> COMPLETED -> SCHEDULED. Any other status goes
// back to SCHEDULED.
func NextCycleStatus(s AppointmentStatus) AppointmentStatus {
	switch s {
	case StatusScheduled:
		return StatusConfirmed
	case StatusConfirmed:
		return StatusCompleted
	default:
		return StatusScheduled
	}
}

// TransitionPolicy is the single decision point for status changes.
type TransitionPolicy interface {
	Check(from, to AppointmentStatus) error
}

// PermissivePolicy allows any change between known statuses, including
// leaving COMPLETED.
type PermissivePolicy struct{}

func (PermissivePolicy) Check(from, to AppointmentStatus) error {
	if !to.Valid() {
		return &ErrValidation{Field: "status", Message: fmt.Sprintf("unknown appointment status %q", to)}
	}
	return nil
}

// StrictPolicy only allows the forward transitions of the lifecycle table.
type StrictPolicy struct{}

func (StrictPolicy) Check(from, to AppointmentStatus) error {
	if !to.Valid() {
		return &ErrValidation{Field: "status", Message: fmt.Sprintf("unknown appointment status %q", to)}
	}
	if !CanTransition(from, to) {
		return &ErrInvalidTransition{From: from, To: to}
	}
	return nil
}
