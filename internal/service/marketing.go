package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/infra/messaging"
	"github.com/boddenberg/beautypro-go/internal/infra/observability"
	"github.com/boddenberg/beautypro-go/internal/port"
)

var marketingTracer = otel.Tracer("service/marketing")

type campaignTemplate struct {
	id          domain.CampaignID
	title       string
	description string
	message     string
}

var campaignTemplates = []campaignTemplate{
	{
		id:          domain.CampaignBirthdays,
		title:       "Aniversariantes do Mês",
		description: "Envie um cupom de presente para quem faz aniversário.",
		message:     "Olá! Feliz aniversário! 🎂 Temos um presente especial para você: 15% de desconto em qualquer serviço esta semana!",
	},
	{
		id:          domain.CampaignInactive,
		title:       "Resgate de Clientes",
		description: "Clientes que não visitam o salão há mais de 30 dias.",
		message:     "Olá! Estamos com saudade! ❤️ Que tal agendar um horário para renovar o visual? Temos horários disponíveis!",
	},
	{
		id:          domain.CampaignFlash,
		title:       "Horários Livres",
		description: "Preencha a agenda de amanhã com uma promoção relâmpago.",
		message:     "✨ Promoção Relâmpago! Agende para amanhã e ganhe hidratação grátis no corte. Responda \"EU QUERO\"!",
	},
}

// MarketingService builds WhatsApp campaigns from the client base.
type MarketingService struct {
	clients port.ClientStore
	sender  port.MessageSender
	loc     *time.Location
	now     Clock
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewMarketingService creates the marketing service. sender may be nil, in
// which case campaigns can be listed but not sent.
func NewMarketingService(clients port.ClientStore, sender port.MessageSender, loc *time.Location, now Clock, metrics *observability.Metrics, logger *zap.Logger) *MarketingService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &MarketingService{clients: clients, sender: sender, loc: loc, now: now, metrics: metrics, logger: logger}
}

// CanSend reports whether a WhatsApp sender is configured.
func (s *MarketingService) CanSend() bool {
	return s.sender != nil
}

// Campaigns returns every campaign with its current targets.
func (s *MarketingService) Campaigns(ctx context.Context) ([]domain.Campaign, error) {
	ctx, span := marketingTracer.Start(ctx, "MarketingService.Campaigns")
	defer span.End()

	clients, err := s.clients.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	today := s.now().In(s.loc)
	out := make([]domain.Campaign, 0, len(campaignTemplates))
	for _, t := range campaignTemplates {
		out = append(out, t.build(clients, today))
	}
	return out, nil
}

// Campaign returns one campaign by id.
func (s *MarketingService) Campaign(ctx context.Context, id domain.CampaignID) (*domain.Campaign, error) {
	ctx, span := marketingTracer.Start(ctx, "MarketingService.Campaign")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", string(id)))

	t, ok := findTemplate(id)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "campaign", ID: string(id)}
	}
	clients, err := s.clients.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	c := t.build(clients, s.now().In(s.loc))
	return &c, nil
}

// Send delivers the campaign message to every target. Failures for one
// target are reported in the result and do not stop the others.
func (s *MarketingService) Send(ctx context.Context, id domain.CampaignID) (*domain.CampaignSendResult, error) {
	ctx, span := marketingTracer.Start(ctx, "MarketingService.Send")
	defer span.End()

	if s.sender == nil {
		return nil, &domain.ErrUnavailable{Feature: "WhatsApp sending"}
	}
	c, err := s.Campaign(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, c)
}

// SendBirthdayGreetings sends the birthday message to the clients whose
// birthday is today in the salon timezone.
func (s *MarketingService) SendBirthdayGreetings(ctx context.Context) (*domain.CampaignSendResult, error) {
	ctx, span := marketingTracer.Start(ctx, "MarketingService.SendBirthdayGreetings")
	defer span.End()

	if s.sender == nil {
		return nil, &domain.ErrUnavailable{Feature: "WhatsApp sending"}
	}
	clients, err := s.clients.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	today := s.now().In(s.loc)
	born := make([]domain.Client, 0)
	for _, c := range clients {
		if isBirthday(c.BirthDate, today) {
			born = append(born, c)
		}
	}
	t, _ := findTemplate(domain.CampaignBirthdays)
	c := t.build(born, today)
	return s.deliver(ctx, &c)
}

func (s *MarketingService) deliver(ctx context.Context, c *domain.Campaign) (*domain.CampaignSendResult, error) {
	res := &domain.CampaignSendResult{CampaignID: c.ID, Results: make([]domain.SendResult, 0, len(c.Targets))}
	for _, target := range c.Targets {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		r := domain.SendResult{ClientID: target.ClientID, Phone: target.Phone}
		msgID, err := s.sender.SendWhatsApp(ctx, target.Phone, c.Message)
		if err != nil {
			r.Error = err.Error()
			res.Failed++
			s.logger.Warn("campaign message failed",
				zap.String("campaign", string(c.ID)),
				zap.String("client_id", target.ClientID),
				zap.Error(err),
			)
		} else {
			r.MessageID = msgID
			res.Sent++
			s.metrics.IncrMessageSent(string(c.ID))
		}
		res.Results = append(res.Results, r)
	}

	s.logger.Info("campaign sent",
		zap.String("campaign", string(c.ID)),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// WhatsAppLink builds a click-to-chat link for an arbitrary phone.
func (s *MarketingService) WhatsAppLink(req domain.WhatsAppLinkRequest) (*domain.WhatsAppLinkResponse, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}
	if messaging.Digits(req.Phone) == "" {
		return nil, &domain.ErrValidation{Field: "phone", Message: "must contain digits"}
	}
	return &domain.WhatsAppLinkResponse{URL: messaging.WhatsAppLink(req.Phone, req.Message)}, nil
}

func findTemplate(id domain.CampaignID) (campaignTemplate, bool) {
	for _, t := range campaignTemplates {
		if t.id == id {
			return t, true
		}
	}
	return campaignTemplate{}, false
}

func (t campaignTemplate) build(clients []domain.Client, today time.Time) domain.Campaign {
	c := domain.Campaign{
		ID:          t.id,
		Title:       t.title,
		Description: t.description,
		Message:     t.message,
		Targets:     []domain.CampaignTarget{},
	}
	for _, cl := range clients {
		if !t.targets(cl, today) {
			continue
		}
		c.Targets = append(c.Targets, domain.CampaignTarget{
			ClientID:     cl.ID,
			Name:         cl.Name,
			Phone:        cl.Phone,
			WhatsAppLink: messaging.WhatsAppLink(cl.Phone, t.message),
		})
	}
	return c
}

func (t campaignTemplate) targets(c domain.Client, today time.Time) bool {
	switch t.id {
	case domain.CampaignBirthdays:
		return isBirthdayMonth(c.BirthDate, today)
	case domain.CampaignInactive:
		return isInactive(c.LastVisit, today)
	default:
		return true
	}
}

func isBirthdayMonth(birthDate string, today time.Time) bool {
	d, err := time.Parse(DateLayout, birthDate)
	return err == nil && d.Month() == today.Month()
}

func isBirthday(birthDate string, today time.Time) bool {
	d, err := time.Parse(DateLayout, birthDate)
	return err == nil && d.Month() == today.Month() && d.Day() == today.Day()
}

// isInactive reports whether lastVisit is missing or more than
// InactiveAfterDays before now. lastVisit counts from its local midnight.
func isInactive(lastVisit string, now time.Time) bool {
	if lastVisit == "" {
		return true
	}
	d, err := time.ParseInLocation(DateLayout, lastVisit, now.Location())
	if err != nil {
		return true
	}
	return now.Sub(d) > domain.InactiveAfterDays*24*time.Hour
}
