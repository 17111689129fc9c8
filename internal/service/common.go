// Package service provides the business logic layer (use cases) of the
// salon back office: the appointment ledger, catalog, clients, finance,
// marketing, settings, public booking and staff auth.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/boddenberg/beautypro-go/internal/domain"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Clock returns the current instant. Services take one so tests can pin time.
type Clock func() time.Time

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs the struct tags of v and reports the first failure as
// *domain.ErrValidation.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.ErrValidation{Field: fe.Field(), Message: validationMessage(fe)}
	}
	return &domain.ErrValidation{Field: "body", Message: err.Error()}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " item(s)"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid e-mail"
	case "hexcolor":
		return "must be a hex color like #fecdd3"
	case "datetime":
		return "must be a date in the form " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// parseMoney reads a non-negative currency amount from form text.
func parseMoney(field string, v domain.FormValue) (decimal.Decimal, error) {
	raw := strings.TrimSpace(string(v))
	if raw == "" {
		return decimal.Zero, &domain.ErrValidation{Field: field, Message: "is required"}
	}
	d, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
	if err != nil {
		return decimal.Zero, &domain.ErrValidation{Field: field, Message: fmt.Sprintf("%q is not a number", raw)}
	}
	if d.IsNegative() {
		return decimal.Zero, &domain.ErrValidation{Field: field, Message: "must not be negative"}
	}
	return d, nil
}

// parsePositiveInt reads a whole number greater than zero from form text.
func parsePositiveInt(field string, v domain.FormValue) (int, error) {
	raw := strings.TrimSpace(string(v))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ErrValidation{Field: field, Message: fmt.Sprintf("%q is not a whole number", raw)}
	}
	if n <= 0 {
		return 0, &domain.ErrValidation{Field: field, Message: "must be greater than zero"}
	}
	return n, nil
}

// parseDay reads a YYYY-MM-DD date in loc; empty means the day of now.
func parseDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if s == "" {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc), nil
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, &domain.ErrValidation{Field: "date", Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return d, nil
}

// dayFilter is the [midnight, next midnight) window of day.
func dayFilter(day time.Time) domain.AppointmentFilter {
	from := day
	to := day.AddDate(0, 0, 1)
	return domain.AppointmentFilter{From: &from, To: &to}
}

func isNotFound(err error) bool {
	var nf *domain.ErrNotFound
	return errors.As(err, &nf)
}

// ============================================================
// Reference resolution
// ============================================================

// refSource lists the records appointments point at.
type refSource interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
	ListProfessionals(ctx context.Context) ([]domain.Professional, error)
	ListServices(ctx context.Context) ([]domain.Service, error)
}

// refs resolves appointment references to display names. Dangling ids
// resolve to domain.UnknownRef.
type refs struct {
	clients       map[string]domain.Client
	professionals map[string]domain.Professional
	services      map[string]domain.Service
}

// loadRefs reads clients, professionals and services concurrently.
func loadRefs(ctx context.Context, src refSource) (*refs, error) {
	var (
		clients       []domain.Client
		professionals []domain.Professional
		services      []domain.Service
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		clients, err = src.ListClients(gCtx)
		return err
	})
	g.Go(func() (err error) {
		professionals, err = src.ListProfessionals(gCtx)
		return err
	})
	g.Go(func() (err error) {
		services, err = src.ListServices(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading references: %w", err)
	}

	r := &refs{
		clients:       make(map[string]domain.Client, len(clients)),
		professionals: make(map[string]domain.Professional, len(professionals)),
		services:      make(map[string]domain.Service, len(services)),
	}
	for _, c := range clients {
		r.clients[c.ID] = c
	}
	for _, p := range professionals {
		r.professionals[p.ID] = p
	}
	for _, s := range services {
		r.services[s.ID] = s
	}
	return r, nil
}

func (r *refs) view(a domain.Appointment) domain.AppointmentView {
	v := domain.AppointmentView{
		Appointment:      a,
		StatusLabel:      a.Status.Label(),
		ClientName:       domain.UnknownRef,
		ProfessionalName: domain.UnknownRef,
		ServiceNames:     make([]string, 0, len(a.ServiceIDs)),
	}
	if c, ok := r.clients[a.ClientID]; ok {
		v.ClientName = c.Name
		v.ClientPhone = c.Phone
	}
	if p, ok := r.professionals[a.ProfessionalID]; ok {
		v.ProfessionalName = p.Name
	}
	for _, id := range a.ServiceIDs {
		if s, ok := r.services[id]; ok {
			v.ServiceNames = append(v.ServiceNames, s.Name)
		} else {
			v.ServiceNames = append(v.ServiceNames, domain.UnknownRef)
		}
	}
	return v
}

func (r *refs) views(appts []domain.Appointment) []domain.AppointmentView {
	out := make([]domain.AppointmentView, 0, len(appts))
	for _, a := range appts {
		out = append(out, r.view(a))
	}
	return out
}

// sortByTime orders appointments by start time, oldest first, keeping
// insertion order for equal times.
func sortByTime(appts []domain.Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].DateTime.Before(appts[j].DateTime)
	})
}
