// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/beautypro-go/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Purge()
}

// ClientStore holds salon clients.
type ClientStore interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	CreateClient(ctx context.Context, c *domain.Client) error
	UpdateClient(ctx context.Context, c *domain.Client) error
	// EditClient applies fn to the stored client under the writer lock and
	// saves the result. Nothing is saved when fn fails.
	EditClient(ctx context.Context, id string, fn func(c *domain.Client) error) (*domain.Client, error)
	DeleteClient(ctx context.Context, id string) error
}

// CatalogStore holds the services the salon offers.
type CatalogStore interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	GetService(ctx context.Context, id string) (*domain.Service, error)
	CreateService(ctx context.Context, s *domain.Service) error
	UpdateService(ctx context.Context, s *domain.Service) error
	DeleteService(ctx context.Context, id string) error
}

// ProfessionalStore holds the staff who perform services.
type ProfessionalStore interface {
	ListProfessionals(ctx context.Context) ([]domain.Professional, error)
	GetProfessional(ctx context.Context, id string) (*domain.Professional, error)
	CreateProfessional(ctx context.Context, p *domain.Professional) error
	UpdateProfessional(ctx context.Context, p *domain.Professional) error
	DeleteProfessional(ctx context.Context, id string) error
}

// AppointmentStore holds appointments. Appointments are never deleted.
type AppointmentStore interface {
	ListAppointments(ctx context.Context, f domain.AppointmentFilter) ([]domain.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*domain.Appointment, error)
	CreateAppointment(ctx context.Context, a *domain.Appointment) error
	UpdateAppointment(ctx context.Context, a *domain.Appointment) error
}

// TransactionStore is the append-only financial ledger. A second INCOME
// posting for the same appointment is refused with *domain.ErrDuplicate.
type TransactionStore interface {
	ListTransactions(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error)
	AppendTransaction(ctx context.Context, t *domain.Transaction) error
}

// SettingsStore holds the single salon settings record.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*domain.Settings, error)
	SaveSettings(ctx context.Context, s *domain.Settings) error
	// EditSettings applies fn to the stored settings under the writer lock.
	EditSettings(ctx context.Context, fn func(s *domain.Settings) error) (*domain.Settings, error)
}

// UserStore holds staff accounts.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// LedgerTx is the view of the store available inside a ledger transaction.
type LedgerTx interface {
	ListAppointments(ctx context.Context, f domain.AppointmentFilter) ([]domain.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*domain.Appointment, error)
	CreateAppointment(ctx context.Context, a *domain.Appointment) error
	UpdateAppointment(ctx context.Context, a *domain.Appointment) error
	ListClients(ctx context.Context) ([]domain.Client, error)
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	CreateClient(ctx context.Context, c *domain.Client) error
	UpdateClient(ctx context.Context, c *domain.Client) error
	AppendTransaction(ctx context.Context, t *domain.Transaction) error
	GetSettings(ctx context.Context) (*domain.Settings, error)
}

// TxRunner runs fn as one serialized unit of work: either every write made
// through tx commits or none does.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// SalonStore is everything the back office persists.
type SalonStore interface {
	ClientStore
	CatalogStore
	ProfessionalStore
	AppointmentStore
	TransactionStore
	SettingsStore
	UserStore
	TxRunner
}

// MessageSender delivers a WhatsApp message and returns the provider's
// message id.
type MessageSender interface {
	SendWhatsApp(ctx context.Context, to, body string) (string, error)
}
