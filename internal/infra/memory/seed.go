package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
)

// DefaultSettings is the salon profile a fresh store starts with.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		SalonName:                "BeautyPro Demo Salon",
		Phone:                    "11999990000",
		Address:                  "Rua das Flores, 123 - São Paulo, SP",
		LoyaltyEnabled:           true,
		PointsPerCurrency:        decimal.NewFromInt(1),
		LoyaltyRewardDescription: "A cada 100 pontos, ganhe R$ 10 de desconto.",
		BookingLinkSlug:          "beautypro-demo",
	}
}

// SeedOptions controls the demo data set.
type SeedOptions struct {
	Now          time.Time
	Location     *time.Location
	PasswordHash string // bcrypt hash given to every demo user
}

// NewSeeded creates a store holding the demo salon: three professionals,
// six services, three clients, today's agenda and a few ledger entries.
func NewSeeded(logger *zap.Logger, opts SeedOptions) (*Store, error) {
	s := New(logger)
	if err := Seed(context.Background(), s, opts); err != nil {
		return nil, err
	}
	return s, nil
}

// Seed loads the demo data set into s.
func Seed(ctx context.Context, s *Store, opts SeedOptions) error {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now.In(loc)
	at := func(hour int) time.Time {
		return time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)
	}
	brl := decimal.NewFromInt

	professionals := []domain.Professional{
		{ID: "p1", Name: "Ana Silva", PhotoURL: "https://picsum.photos/100/100?random=1", Color: "#fecdd3", Specialties: []string{"s1", "s2", "s3"}},
		{ID: "p2", Name: "Carlos Oliveira", PhotoURL: "https://picsum.photos/100/100?random=2", Color: "#bfdbfe", Specialties: []string{"s4", "s5"}},
		{ID: "p3", Name: "Fernanda Lima", PhotoURL: "https://picsum.photos/100/100?random=3", Color: "#e9d5ff", Specialties: []string{"s1", "s2", "s6"}},
	}
	services := []domain.Service{
		{ID: "s1", Name: "Corte Feminino", Price: brl(120), DurationMinutes: 60, Category: "Cabelo", Description: "Lavagem, corte e finalização.", Status: domain.ServiceActive},
		{ID: "s2", Name: "Coloração", Price: brl(250), DurationMinutes: 120, Category: "Cabelo", Description: "Coloração global com produtos premium.", Status: domain.ServiceActive},
		{ID: "s3", Name: "Hidratação Profunda", Price: brl(90), DurationMinutes: 45, Category: "Cabelo", Status: domain.ServiceActive},
		{ID: "s4", Name: "Barba Completa", Price: brl(50), DurationMinutes: 30, Category: "Barbearia", Status: domain.ServiceActive},
		{ID: "s5", Name: "Corte Masculino", Price: brl(60), DurationMinutes: 45, Category: "Barbearia", Status: domain.ServiceActive},
		{ID: "s6", Name: "Manicure", Price: brl(40), DurationMinutes: 45, Category: "Unhas", Status: domain.ServiceActive},
	}
	clients := []domain.Client{
		{ID: "c1", Name: "Mariana Souza", Phone: "11999999999", Email: "mari@email.com", Tags: []string{"VIP", "Coloração"}, TotalSpent: brl(1500), LoyaltyPoints: 120, LastVisit: "2023-10-15", PhotoURL: "https://picsum.photos/200?random=10", BirthDate: "1990-10-28"},
		{ID: "c2", Name: "João Pereira", Phone: "11988888888", Tags: []string{domain.DefaultClientTag}, TotalSpent: brl(60), LoyaltyPoints: 10, LastVisit: "2023-08-20"},
		{ID: "c3", Name: "Camila Santos", Phone: "11977777777", Tags: []string{"Frequente"}, TotalSpent: brl(3200), LoyaltyPoints: 450, LastVisit: "2023-10-25", PhotoURL: "https://picsum.photos/200?random=11", BirthDate: "1995-05-15"},
	}
	appointments := []domain.Appointment{
		{ID: "a1", ClientID: "c1", ProfessionalID: "p1", ServiceIDs: []string{"s1"}, DateTime: at(9), Status: domain.StatusConfirmed, TotalValue: brl(120)},
		{ID: "a2", ClientID: "c3", ProfessionalID: "p1", ServiceIDs: []string{"s2"}, DateTime: at(13), Status: domain.StatusScheduled, TotalValue: brl(250)},
		{ID: "a3", ClientID: "c2", ProfessionalID: "p2", ServiceIDs: []string{"s5"}, DateTime: at(10), Status: domain.StatusCompleted, TotalValue: brl(60), PostedTransactionID: "t3"},
		{ID: "a4", ClientID: "c3", ProfessionalID: "p3", ServiceIDs: []string{"s6"}, DateTime: at(11), Status: domain.StatusScheduled, TotalValue: brl(40)},
		{ID: "a5", ClientID: "c1", ProfessionalID: "p2", ServiceIDs: []string{"s4"}, DateTime: at(15), Status: domain.StatusScheduled, TotalValue: brl(50)},
		{ID: "a6", ClientID: "c2", ProfessionalID: "p3", ServiceIDs: []string{"s3"}, DateTime: at(16), Status: domain.StatusScheduled, TotalValue: brl(90)},
	}
	stamp := now.UTC()
	transactions := []domain.Transaction{
		{ID: "t1", Date: stamp, Type: domain.TransactionIncome, Value: brl(120), Description: "Corte - Mariana Souza", Category: domain.ServiceIncomeCategory},
		{ID: "t2", Date: stamp, Type: domain.TransactionExpense, Value: brl(500), Description: "Compra de Produtos", Category: "Estoque"},
		{ID: "t3", Date: stamp, Type: domain.TransactionIncome, Value: brl(60), Description: "Corte - João Pereira", Category: domain.ServiceIncomeCategory, AppointmentID: "a3"},
	}
	users := []domain.User{
		{ID: "u1", Name: "Roberto Dono", Email: "admin@beautypro.com", Role: domain.RoleOwner},
		{ID: "u2", Name: "Ana Silva", Email: "ana@beautypro.com", Role: domain.RoleProfessional, ProfessionalID: "p1"},
		{ID: "u3", Name: "Júlia Recepção", Email: "recepcao@beautypro.com", Role: domain.RoleReceptionist},
	}

	for i := range professionals {
		if err := s.CreateProfessional(ctx, &professionals[i]); err != nil {
			return fmt.Errorf("seed professional %s: %w", professionals[i].ID, err)
		}
	}
	for i := range services {
		if err := s.CreateService(ctx, &services[i]); err != nil {
			return fmt.Errorf("seed service %s: %w", services[i].ID, err)
		}
	}
	for i := range clients {
		if err := s.CreateClient(ctx, &clients[i]); err != nil {
			return fmt.Errorf("seed client %s: %w", clients[i].ID, err)
		}
	}
	for i := range appointments {
		appointments[i].CreatedAt = stamp
		if err := s.CreateAppointment(ctx, &appointments[i]); err != nil {
			return fmt.Errorf("seed appointment %s: %w", appointments[i].ID, err)
		}
	}
	for i := range transactions {
		if err := s.AppendTransaction(ctx, &transactions[i]); err != nil {
			return fmt.Errorf("seed transaction %s: %w", transactions[i].ID, err)
		}
	}
	for i := range users {
		users[i].PasswordHash = opts.PasswordHash
		if err := s.AddUser(ctx, &users[i]); err != nil {
			return fmt.Errorf("seed user %s: %w", users[i].ID, err)
		}
	}

	s.logger.Info("memory: demo data seeded",
		zap.Int("professionals", len(professionals)),
		zap.Int("services", len(services)),
		zap.Int("clients", len(clients)),
		zap.Int("appointments", len(appointments)),
	)
	return nil
}
