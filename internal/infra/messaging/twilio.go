package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/infra/observability"
	"github.com/boddenberg/beautypro-go/internal/infra/resilience"
	"github.com/boddenberg/beautypro-go/internal/port"
)

// messageCreator is the slice of the Twilio REST API the sender uses.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioConfig holds the WhatsApp sender credentials.
type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	WhatsAppNumber string // sender, digits or E.164
	Timeout        time.Duration
}

// Enabled reports whether every credential is present.
func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.WhatsAppNumber != ""
}

// TwilioSender delivers WhatsApp messages through Twilio behind a circuit
// breaker, retries and a bulkhead.
type TwilioSender struct {
	api      messageCreator
	from     string
	cb       *gobreaker.CircuitBreaker
	cfg      resilience.Config
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

var _ port.MessageSender = (*TwilioSender)(nil)

// NewTwilioSender creates a sender backed by the Twilio REST client.
func NewTwilioSender(tc TwilioConfig, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: tc.AccountSID,
		Password: tc.AuthToken,
	})
	if tc.Timeout > 0 {
		client.SetTimeout(tc.Timeout)
	}
	return newTwilioSender(client.Api, tc.WhatsAppNumber, cb, cfg, metrics, logger)
}

func newTwilioSender(api messageCreator, from string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *TwilioSender {
	cfg.Retryable = retryableTwilioError
	return &TwilioSender{
		api:      api,
		from:     whatsAppAddress(from),
		cb:       cb,
		cfg:      cfg,
		bulkhead: resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics:  metrics,
		logger:   logger,
	}
}

// SendWhatsApp sends body to the phone number and returns the message SID.
func (s *TwilioSender) SendWhatsApp(ctx context.Context, to, body string) (string, error) {
	if Digits(to) == "" {
		return "", fmt.Errorf("twilio: phone %q has no digits", to)
	}
	if err := s.bulkhead.Acquire(ctx); err != nil {
		return "", err
	}
	defer s.bulkhead.Release()

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(whatsAppAddress(to))
	params.SetFrom(s.from)
	params.SetBody(body)

	sid, err := resilience.Execute(ctx, s.cb, s.cfg, func() (string, error) {
		resp, err := s.api.CreateMessage(params)
		if err != nil {
			return "", err
		}
		if resp.Sid == nil {
			return "", nil
		}
		return *resp.Sid, nil
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrExternalError("twilio")
		}
		s.logger.Warn("twilio: message not sent", zap.String("to", Digits(to)), zap.Error(err))
		return "", err
	}

	s.logger.Debug("twilio: message sent", zap.String("to", Digits(to)), zap.String("sid", sid))
	return sid, nil
}

// whatsAppAddress turns a Brazilian phone into Twilio's whatsapp:+55... form.
func whatsAppAddress(phone string) string {
	return "whatsapp:+" + CountryCode + Digits(phone)
}

// retryableTwilioError skips retries for 4xx answers (bad number, auth)
// and once the breaker is open.
func retryableTwilioError(err error) bool {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) && restErr.Status < 500 {
		return false
	}
	return resilience.OpenStateRetryable(err)
}
