package observability

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/boddenberg/beautypro-go/internal/domain"
)

func TestLedgerSnapshot(t *testing.T) {
	m := NewMetrics()

	m.IncrAppointmentCreated("admin")
	m.IncrAppointmentCreated("booking")
	m.IncrStatusTransition(domain.StatusCompleted)
	m.IncrStatusTransition(domain.StatusCompleted)
	m.IncrStatusTransition(domain.StatusCancelled)
	m.RecordPosting(domain.OutcomePosted, decimal.RequireFromString("120.50"))
	m.RecordPosting(domain.OutcomeAlreadyPosted, decimal.RequireFromString("120.50"))
	m.IncrCacheHit("booking_catalog")
	m.IncrCacheMiss("booking_catalog")
	m.IncrExternalError("twilio")

	snap := m.GetLedgerSnapshot()

	assert.Equal(t, int64(2), snap.AppointmentsCreated)
	assert.Equal(t, int64(2), snap.StatusTransitions["COMPLETED"])
	assert.Equal(t, int64(1), snap.StatusTransitions["CANCELLED"])
	assert.Equal(t, int64(0), snap.StatusTransitions["SCHEDULED"])
	assert.Equal(t, int64(1), snap.Postings["posted"])
	assert.Equal(t, int64(1), snap.Postings["already_posted"])
	assert.Equal(t, int64(0), snap.Postings["skipped_no_client"])
	assert.True(t, snap.IncomePosted.Equal(decimal.RequireFromString("120.50")), snap.IncomePosted.String())
	assert.InDelta(t, 0.5, snap.CacheHitRate, 1e-9)
	assert.Equal(t, int64(1), snap.ExternalErrors)
}

func TestNewMetrics_Twice(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}

func TestNewLogger_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "bogus"} {
		assert.NotNil(t, NewLogger(lvl))
	}
}

func TestMetrics_NilRecordersAreNoOps(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordRequestDuration("GET /v1/book/{slug}", 0)
		m.IncrAppointmentCreated("booking")
		m.IncrStatusTransition(domain.StatusCompleted)
		m.RecordPosting(domain.OutcomePosted, decimal.NewFromInt(50))
		m.IncrMessageSent("birthdays")
		m.IncrExternalError("twilio")
		m.IncrCacheHit("booking_catalog")
		m.IncrCacheMiss("booking_catalog")
	})
}
