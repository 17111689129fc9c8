// Package memory is the in-process implementation of the salon store ports.
// Every list keeps insertion order and records are copied in and out, so
// callers never alias store state.
package memory

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/port"
)

// Store serializes all writers behind a single lock.
type Store struct {
	mu     sync.RWMutex
	st     *state
	logger *zap.Logger
}

var _ port.SalonStore = (*Store)(nil)

// New creates an empty store with default settings.
func New(logger *zap.Logger) *Store {
	return &Store{
		st:     &state{settings: DefaultSettings()},
		logger: logger,
	}
}

func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// InTx runs fn against the store under the writer lock. When fn fails the
// store is restored to the snapshot taken before fn ran.
func (s *Store) InTx(ctx context.Context, fn func(tx port.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(&txView{st: s.st}); err != nil {
		s.st = snapshot
		s.logger.Debug("memory: transaction rolled back", zap.Error(err))
		return err
	}
	return nil
}

// ============================================================
// Clients
// ============================================================

func (s *Store) ListClients(ctx context.Context) ([]domain.Client, error) {
	var out []domain.Client
	err := s.read(ctx, func(st *state) error {
		out = make([]domain.Client, 0, len(st.clients))
		for _, c := range st.clients {
			out = append(out, c.Clone())
		}
		return nil
	})
	return out, err
}

func (s *Store) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	var out *domain.Client
	err := s.read(ctx, func(st *state) (err error) {
		out, err = st.getClient(id)
		return err
	})
	return out, err
}

func (s *Store) CreateClient(ctx context.Context, c *domain.Client) error {
	return s.write(ctx, func(st *state) error { return st.createClient(c) })
}

func (s *Store) UpdateClient(ctx context.Context, c *domain.Client) error {
	return s.write(ctx, func(st *state) error { return st.updateClient(c) })
}

func (s *Store) EditClient(ctx context.Context, id string, fn func(c *domain.Client) error) (*domain.Client, error) {
	var out *domain.Client
	err := s.write(ctx, func(st *state) error {
		c, err := st.getClient(id)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		c.ID = id
		if err := st.updateClient(c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	return s.write(ctx, func(st *state) error {
		i := st.clientIndex(id)
		if i < 0 {
			return &domain.ErrNotFound{Resource: "client", ID: id}
		}
		st.clients = append(st.clients[:i], st.clients[i+1:]...)
		return nil
	})
}

// ============================================================
// Catalog
// ============================================================

func (s *Store) ListServices(ctx context.Context) ([]domain.Service, error) {
	var out []domain.Service
	err := s.read(ctx, func(st *state) error {
		out = append(make([]domain.Service, 0, len(st.services)), st.services...)
		return nil
	})
	return out, err
}

func (s *Store) GetService(ctx context.Context, id string) (*domain.Service, error) {
	var out *domain.Service
	err := s.read(ctx, func(st *state) error {
		for _, svc := range st.services {
			if svc.ID == id {
				cp := svc
				out = &cp
				return nil
			}
		}
		return &domain.ErrNotFound{Resource: "service", ID: id}
	})
	return out, err
}

func (s *Store) CreateService(ctx context.Context, svc *domain.Service) error {
	return s.write(ctx, func(st *state) error {
		if st.serviceIndex(svc.ID) >= 0 {
			return &domain.ErrDuplicate{Key: "service:" + svc.ID}
		}
		st.services = append(st.services, *svc)
		return nil
	})
}

func (s *Store) UpdateService(ctx context.Context, svc *domain.Service) error {
	return s.write(ctx, func(st *state) error {
		i := st.serviceIndex(svc.ID)
		if i < 0 {
			return &domain.ErrNotFound{Resource: "service", ID: svc.ID}
		}
		st.services[i] = *svc
		return nil
	})
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	return s.write(ctx, func(st *state) error {
		i := st.serviceIndex(id)
		if i < 0 {
			return &domain.ErrNotFound{Resource: "service", ID: id}
		}
		st.services = append(st.services[:i], st.services[i+1:]...)
		return nil
	})
}

// ============================================================
// Professionals
// ============================================================

func (s *Store) ListProfessionals(ctx context.Context) ([]domain.Professional, error) {
	var out []domain.Professional
	err := s.read(ctx, func(st *state) error {
		out = make([]domain.Professional, 0, len(st.professionals))
		for _, p := range st.professionals {
			out = append(out, p.Clone())
		}
		return nil
	})
	return out, err
}

func (s *Store) GetProfessional(ctx context.Context, id string) (*domain.Professional, error) {
	var out *domain.Professional
	err := s.read(ctx, func(st *state) error {
		i := st.professionalIndex(id)
		if i < 0 {
			return &domain.ErrNotFound{Resource: "professional", ID: id}
		}
		cp := st.professionals[i].Clone()
		out = &cp
		return nil
	})
	return out, err
}

func (s *Store) CreateProfessional(ctx context.Context, p *domain.Professional) error {
	return s.write(ctx, func(st *state) error {
		if st.professionalIndex(p.ID) >= 0 {
			return &domain.ErrDuplicate{Key: "professional:" + p.ID}
		}
		st.professionals = append(st.professionals, p.Clone())
		return nil
	})
}

func (s *Store) UpdateProfessional(ctx context.Context, p *domain.Professional) error {
	return s.write(ctx, func(st *state) error {
		i := st.professionalIndex(p.ID)
		if i < 0 {
			return &domain.ErrNotFound{Resource: "professional", ID: p.ID}
		}
		st.professionals[i] = p.Clone()
		return nil
	})
}

func (s *Store) DeleteProfessional(ctx context.Context, id string) error {
	return s.write(ctx, func(st *state) error {
		i := st.professionalIndex(id)
		if i < 0 {
			return &domain.ErrNotFound{Resource: "professional", ID: id}
		}
		st.professionals = append(st.professionals[:i], st.professionals[i+1:]...)
		return nil
	})
}

// ============================================================
// Appointments
// ============================================================

func (s *Store) ListAppointments(ctx context.Context, f domain.AppointmentFilter) ([]domain.Appointment, error) {
	var out []domain.Appointment
	err := s.read(ctx, func(st *state) error {
		out = st.listAppointments(f)
		return nil
	})
	return out, err
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	var out *domain.Appointment
	err := s.read(ctx, func(st *state) (err error) {
		out, err = st.getAppointment(id)
		return err
	})
	return out, err
}

func (s *Store) CreateAppointment(ctx context.Context, a *domain.Appointment) error {
	return s.write(ctx, func(st *state) error { return st.createAppointment(a) })
}

func (s *Store) UpdateAppointment(ctx context.Context, a *domain.Appointment) error {
	return s.write(ctx, func(st *state) error { return st.updateAppointment(a) })
}

// ============================================================
// Transactions
// ============================================================

func (s *Store) ListTransactions(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := s.read(ctx, func(st *state) error {
		out = make([]domain.Transaction, 0, len(st.transactions))
		for i := range st.transactions {
			if f.Matches(&st.transactions[i]) {
				out = append(out, st.transactions[i])
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) AppendTransaction(ctx context.Context, t *domain.Transaction) error {
	return s.write(ctx, func(st *state) error { return st.appendTransaction(t) })
}

// ============================================================
// Settings
// ============================================================

func (s *Store) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var out *domain.Settings
	err := s.read(ctx, func(st *state) error {
		cp := st.settings
		out = &cp
		return nil
	})
	return out, err
}

func (s *Store) SaveSettings(ctx context.Context, settings *domain.Settings) error {
	return s.write(ctx, func(st *state) error {
		st.settings = *settings
		return nil
	})
}

func (s *Store) EditSettings(ctx context.Context, fn func(settings *domain.Settings) error) (*domain.Settings, error) {
	var out domain.Settings
	err := s.write(ctx, func(st *state) error {
		next := st.settings
		if err := fn(&next); err != nil {
			return err
		}
		st.settings = next
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================
// Users
// ============================================================

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var out *domain.User
	err := s.read(ctx, func(st *state) error {
		for _, u := range st.users {
			if u.ID == id {
				cp := u
				out = &cp
				return nil
			}
		}
		return &domain.ErrNotFound{Resource: "user", ID: id}
	})
	return out, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := s.read(ctx, func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				cp := u
				out = &cp
				return nil
			}
		}
		return &domain.ErrNotFound{Resource: "user", ID: email}
	})
	return out, err
}

// AddUser registers a staff account.
func (s *Store) AddUser(ctx context.Context, u *domain.User) error {
	return s.write(ctx, func(st *state) error {
		for _, existing := range st.users {
			if existing.ID == u.ID || strings.EqualFold(existing.Email, u.Email) {
				return &domain.ErrDuplicate{Key: "user:" + u.Email}
			}
		}
		st.users = append(st.users, *u)
		return nil
	})
}

// ============================================================
// Transaction view
// ============================================================

// txView exposes the ledger operations on state already guarded by InTx.
type txView struct {
	st *state
}

func (t *txView) ListAppointments(_ context.Context, f domain.AppointmentFilter) ([]domain.Appointment, error) {
	return t.st.listAppointments(f), nil
}

func (t *txView) GetAppointment(_ context.Context, id string) (*domain.Appointment, error) {
	return t.st.getAppointment(id)
}

func (t *txView) CreateAppointment(_ context.Context, a *domain.Appointment) error {
	return t.st.createAppointment(a)
}

func (t *txView) UpdateAppointment(_ context.Context, a *domain.Appointment) error {
	return t.st.updateAppointment(a)
}

func (t *txView) ListClients(_ context.Context) ([]domain.Client, error) {
	out := make([]domain.Client, 0, len(t.st.clients))
	for _, c := range t.st.clients {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (t *txView) CreateClient(_ context.Context, c *domain.Client) error {
	return t.st.createClient(c)
}

func (t *txView) GetClient(_ context.Context, id string) (*domain.Client, error) {
	return t.st.getClient(id)
}

func (t *txView) UpdateClient(_ context.Context, c *domain.Client) error {
	return t.st.updateClient(c)
}

func (t *txView) AppendTransaction(_ context.Context, tr *domain.Transaction) error {
	return t.st.appendTransaction(tr)
}

func (t *txView) GetSettings(_ context.Context) (*domain.Settings, error) {
	cp := t.st.settings
	return &cp, nil
}
