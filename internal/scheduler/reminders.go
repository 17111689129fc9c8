// Package scheduler runs the recurring marketing jobs of the salon.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
)

// BirthdaySender greets the clients whose birthday is today.
type BirthdaySender interface {
	SendBirthdayGreetings(ctx context.Context) (*domain.CampaignSendResult, error)
}

// Reminders sends birthday greetings on a cron schedule.
type Reminders struct {
	cron    *cron.Cron
	sender  BirthdaySender
	timeout time.Duration
	logger  *zap.Logger
}

// NewReminders schedules the birthday job with a standard five-field cron
// spec evaluated in loc. timeout bounds one run.
func NewReminders(spec string, loc *time.Location, sender BirthdaySender, timeout time.Duration, logger *zap.Logger) (*Reminders, error) {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger.Sugar()}
	r := &Reminders{
		cron:    cron.New(cron.WithLocation(loc), cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		sender:  sender,
		timeout: timeout,
		logger:  logger,
	}
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return r, nil
}

// Start runs the scheduler in its own goroutine.
func (r *Reminders) Start() {
	r.cron.Start()
	r.logger.Info("reminder scheduler started", zap.Time("next_run", r.Next()))
}

// Stop stops scheduling and waits for a running job until ctx is done.
func (r *Reminders) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next is the next scheduled run, zero before Start.
func (r *Reminders) Next() time.Time {
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunOnce sends today's greetings immediately.
func (r *Reminders) RunOnce(ctx context.Context) (*domain.CampaignSendResult, error) {
	res, err := r.sender.SendBirthdayGreetings(ctx)
	if err != nil {
		r.logger.Error("birthday reminders failed", zap.Error(err))
		return nil, err
	}
	r.logger.Info("birthday reminders sent",
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (r *Reminders) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	_, _ = r.RunOnce(ctx)
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
