package memory

import "github.com/boddenberg/beautypro-go/internal/domain"

// state is the whole data set. Callers hold the store lock.
type state struct {
	clients       []domain.Client
	services      []domain.Service
	professionals []domain.Professional
	appointments  []domain.Appointment
	transactions  []domain.Transaction
	users         []domain.User
	settings      domain.Settings
}

func (st *state) clone() *state {
	cp := &state{
		clients:       make([]domain.Client, len(st.clients)),
		services:      append([]domain.Service(nil), st.services...),
		professionals: make([]domain.Professional, len(st.professionals)),
		appointments:  make([]domain.Appointment, len(st.appointments)),
		transactions:  append([]domain.Transaction(nil), st.transactions...),
		users:         append([]domain.User(nil), st.users...),
		settings:      st.settings,
	}
	for i, c := range st.clients {
		cp.clients[i] = c.Clone()
	}
	for i, p := range st.professionals {
		cp.professionals[i] = p.Clone()
	}
	for i, a := range st.appointments {
		cp.appointments[i] = a.Clone()
	}
	return cp
}

func (st *state) clientIndex(id string) int {
	for i := range st.clients {
		if st.clients[i].ID == id {
			return i
		}
	}
	return -1
}

func (st *state) serviceIndex(id string) int {
	for i := range st.services {
		if st.services[i].ID == id {
			return i
		}
	}
	return -1
}

func (st *state) professionalIndex(id string) int {
	for i := range st.professionals {
		if st.professionals[i].ID == id {
			return i
		}
	}
	return -1
}

func (st *state) appointmentIndex(id string) int {
	for i := range st.appointments {
		if st.appointments[i].ID == id {
			return i
		}
	}
	return -1
}

func (st *state) getClient(id string) (*domain.Client, error) {
	i := st.clientIndex(id)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "client", ID: id}
	}
	cp := st.clients[i].Clone()
	return &cp, nil
}

func (st *state) createClient(c *domain.Client) error {
	if st.clientIndex(c.ID) >= 0 {
		return &domain.ErrDuplicate{Key: "client:" + c.ID}
	}
	st.clients = append(st.clients, c.Clone())
	return nil
}

func (st *state) updateClient(c *domain.Client) error {
	i := st.clientIndex(c.ID)
	if i < 0 {
		return &domain.ErrNotFound{Resource: "client", ID: c.ID}
	}
	st.clients[i] = c.Clone()
	return nil
}

func (st *state) listAppointments(f domain.AppointmentFilter) []domain.Appointment {
	out := make([]domain.Appointment, 0, len(st.appointments))
	for i := range st.appointments {
		if f.Matches(&st.appointments[i]) {
			out = append(out, st.appointments[i].Clone())
		}
	}
	return out
}

func (st *state) getAppointment(id string) (*domain.Appointment, error) {
	i := st.appointmentIndex(id)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "appointment", ID: id}
	}
	cp := st.appointments[i].Clone()
	return &cp, nil
}

func (st *state) createAppointment(a *domain.Appointment) error {
	if st.appointmentIndex(a.ID) >= 0 {
		return &domain.ErrDuplicate{Key: "appointment:" + a.ID}
	}
	st.appointments = append(st.appointments, a.Clone())
	return nil
}

func (st *state) updateAppointment(a *domain.Appointment) error {
	i := st.appointmentIndex(a.ID)
	if i < 0 {
		return &domain.ErrNotFound{Resource: "appointment", ID: a.ID}
	}
	st.appointments[i] = a.Clone()
	return nil
}

func (st *state) appendTransaction(t *domain.Transaction) error {
	for i := range st.transactions {
		existing := &st.transactions[i]
		if existing.ID == t.ID {
			return &domain.ErrDuplicate{Key: "transaction:" + t.ID}
		}
		if t.AppointmentID != "" && t.Type == domain.TransactionIncome &&
			existing.Type == domain.TransactionIncome && existing.AppointmentID == t.AppointmentID {
			return &domain.ErrDuplicate{Key: "posting:" + t.AppointmentID}
		}
	}
	st.transactions = append(st.transactions, *t)
	return nil
}
