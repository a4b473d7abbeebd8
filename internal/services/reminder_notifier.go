package services

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"go.uber.org/zap"

	"agencycrm/internal/models"
	"agencycrm/internal/utils"
)

type dueReminderSource interface {
	DueReminders(ctx context.Context) ([]models.Lead, error)
}

// ReminderNotifier pings lead owners about follow-ups that are due.
// Each lead is announced to a given owner at most once per calendar day.
type ReminderNotifier struct {
	leads    dueReminderSource
	notifier Notifier
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	sent map[reminderKey]time.Time // day announced
}

type reminderKey struct {
	leadID string
	owner  int
}

func NewReminderNotifier(leads *LeadService, notifier Notifier, interval time.Duration, log *zap.Logger) *ReminderNotifier {
	return newReminderNotifier(leads, notifier, interval, log)
}

func newReminderNotifier(leads dueReminderSource, notifier Notifier, interval time.Duration, log *zap.Logger) *ReminderNotifier {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ReminderNotifier{
		leads:    leads,
		notifier: notifier,
		interval: interval,
		log:      log.Named("reminders"),
		now:      time.Now,
		sent:     map[reminderKey]time.Time{},
	}
}

// Run ticks until ctx is done.
func (r *ReminderNotifier) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("started", zap.Duration("interval", r.interval))
	for {
		if _, err := r.Tick(ctx); err != nil && ctx.Err() == nil {
			r.log.Warn("tick failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			r.log.Info("stopped")
			return
		case <-ticker.C:
		}
	}
}

// Tick sends one round of reminders and reports how many went out.
func (r *ReminderNotifier) Tick(ctx context.Context) (int, error) {
	due, err := r.leads.DueReminders(ctx)
	if err != nil {
		return 0, err
	}
	today := utils.StartOfDay(r.now())

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, day := range r.sent {
		if day.Before(today) {
			delete(r.sent, key)
		}
	}

	sent := 0
	for _, lead := range due {
		if lead.AssignedTo == nil {
			continue
		}
		key := reminderKey{leadID: lead.ID, owner: *lead.AssignedTo}
		if _, done := r.sent[key]; done {
			continue
		}
		text := fmt.Sprintf("⏰ Follow up <b>%s</b> (%s), status %s",
			html.EscapeString(lead.ClientName), html.EscapeString(lead.Mobile), html.EscapeString(string(lead.Status)))
		if err := r.notifier.NotifyUser(ctx, *lead.AssignedTo, text); err != nil {
			r.log.Warn("reminder not sent", zap.String("lead_id", lead.ID), zap.Error(err))
			continue
		}
		r.sent[key] = today
		sent++
	}
	if sent > 0 {
		r.log.Info("reminders sent", zap.Int("count", sent))
	}
	return sent, nil
}
