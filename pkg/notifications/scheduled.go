package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tribehub/notify/pkg/logger"
)

// Scheduler stores payloads for later delivery.
type Scheduler struct {
	store ScheduledStore
	now   func() time.Time
}

// NewScheduler creates a scheduler over store.
func NewScheduler(store ScheduledStore) (*Scheduler, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	return &Scheduler{store: store, now: time.Now}, nil
}

// Schedule persists p to be sent at sendAt and returns the row id. A time
// in the past makes the row due on the next dispatch.
func (s *Scheduler) Schedule(ctx context.Context, p Payload, sendAt time.Time) (string, error) {
	if p == nil {
		return "", fmt.Errorf("%w: nil payload", ErrUnknownType)
	}
	if p.Recipient() == "" {
		return "", fmt.Errorf("%w: %s payload has no user id", ErrInvalidPayload, p.NotificationType())
	}
	raw, err := EncodePayload(p)
	if err != nil {
		return "", err
	}

	sn := ScheduledNotification{
		ID:        uuid.NewString(),
		UserID:    p.Recipient(),
		Type:      p.NotificationType(),
		Payload:   raw,
		SendAt:    sendAt.UTC(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateScheduled(ctx, sn); err != nil {
		return "", fmt.Errorf("schedule %s: %w", sn.Type, err)
	}
	return sn.ID, nil
}

// CancelFor cancels every pending notification of type t for userID, for
// example the reminders of an RSVP that was withdrawn.
func (s *Scheduler) CancelFor(ctx context.Context, userID string, t Type) (int, error) {
	return s.store.CancelScheduled(ctx, userID, t)
}

// DispatchStats summarizes one dispatch run.
type DispatchStats struct {
	Claimed int
	Sent    int
	Failed  int
}

// Dispatcher sends due scheduled notifications through a Notifier. Each
// claim is a single delivery attempt; a failed row becomes claimable again
// on a later run until it reaches the attempt limit.
type Dispatcher struct {
	store       ScheduledStore
	notifier    *Notifier
	maxAttempts int
	lease       time.Duration
	batchSize   int
	interval    time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithMaxAttempts sets how many claims a row gets before it is abandoned.
func WithMaxAttempts(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxAttempts = n
		}
	}
}

// WithLease sets how long a claimed row stays invisible to other dispatchers.
func WithLease(lease time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if lease > 0 {
			d.lease = lease
		}
	}
}

// WithBatchSize sets how many rows one run claims.
func WithBatchSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

// WithInterval sets the pause between runs in Run.
func WithInterval(interval time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// WithDispatcherClock replaces time.Now.
func WithDispatcherClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithDispatcherLogger sets the logger.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(store ScheduledStore, notifier *Notifier, opts ...DispatcherOption) (*Dispatcher, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if notifier == nil {
		return nil, errors.New("dispatcher requires a notifier")
	}
	d := &Dispatcher{
		store:       store,
		notifier:    notifier,
		maxAttempts: 3,
		lease:       5 * time.Minute,
		batchSize:   50,
		interval:    30 * time.Second,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// DispatchDue claims up to limit rows due at now and notifies each one.
func (d *Dispatcher) DispatchDue(ctx context.Context, now time.Time, limit int) (DispatchStats, error) {
	var stats DispatchStats
	if limit <= 0 {
		limit = d.batchSize
	}

	due, err := d.store.ClaimDue(ctx, now, limit, d.maxAttempts, d.lease)
	if err != nil {
		return stats, fmt.Errorf("claim scheduled notifications: %w", err)
	}
	stats.Claimed = len(due)

	for _, sn := range due {
		reason := d.dispatch(ctx, sn)
		if reason == "" {
			if err := d.store.MarkSent(ctx, sn.ID, d.now().UTC()); err != nil {
				d.logger.ErrorContext(ctx, "failed to mark scheduled notification sent",
					slog.String("scheduled_id", sn.ID),
					logger.Error(err),
				)
			}
			stats.Sent++
			continue
		}

		stats.Failed++
		if err := d.store.MarkFailed(ctx, sn.ID, reason); err != nil {
			d.logger.ErrorContext(ctx, "failed to record scheduled notification failure",
				slog.String("scheduled_id", sn.ID),
				logger.Error(err),
			)
		}
		d.logger.WarnContext(ctx, "scheduled notification failed",
			slog.String("scheduled_id", sn.ID),
			logger.UserID(sn.UserID),
			logger.NotificationType(sn.Type),
			slog.Int("attempt", sn.Attempts),
			slog.String("reason", reason),
		)
	}
	return stats, nil
}

// dispatch returns the failure reason, or "" on success.
func (d *Dispatcher) dispatch(ctx context.Context, sn ScheduledNotification) string {
	p, err := DecodePayload(sn.Payload)
	if err != nil {
		return err.Error()
	}
	res, err := d.notifier.Notify(ctx, p)
	if err != nil {
		return err.Error()
	}
	if !res.Success {
		reasons := make([]string, 0, len(res.Channels))
		for _, ch := range res.Failed() {
			reasons = append(reasons, fmt.Sprintf("%s: %s", ch.Channel, ch.Error))
		}
		return strings.Join(reasons, "; ")
	}
	return ""
}

// Run dispatches on every interval until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.InfoContext(ctx, "scheduled notification dispatcher started", logger.Duration(d.interval))
	for {
		stats, err := d.DispatchDue(ctx, d.now(), d.batchSize)
		switch {
		case err != nil:
			d.logger.ErrorContext(ctx, "dispatch run failed", logger.Error(err))
		case stats.Claimed > 0:
			d.logger.InfoContext(ctx, "dispatch run complete",
				logger.Count("claimed", stats.Claimed),
				logger.Count("sent", stats.Sent),
				logger.Count("failed", stats.Failed),
			)
		}

		select {
		case <-ctx.Done():
			d.logger.InfoContext(ctx, "scheduled notification dispatcher stopped")
			return nil
		case <-ticker.C:
		}
	}
}
