package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"agencycrm/internal/models"
)

type staticReminders struct {
	leads []models.Lead
	err   error
}

func (s staticReminders) DueReminders(context.Context) ([]models.Lead, error) {
	return s.leads, s.err
}

func TestReminderNotifier_TickOncePerDay(t *testing.T) {
	notifier := &fakeNotifier{}
	src := staticReminders{leads: []models.Lead{
		{ID: "a", ClientName: "A", Mobile: "1", Status: models.LeadCalledNoAnswer, AssignedTo: ptr(3)},
		{ID: "b", ClientName: "B", Mobile: "2", Status: models.LeadWarm, AssignedTo: ptr(4)},
		{ID: "pool", ClientName: "P", Mobile: "3", Status: models.LeadNew},
	}}
	r := newReminderNotifier(src, notifier, time.Minute, zap.NewNop())
	now := serviceNow
	r.now = func() time.Time { return now }

	n, err := r.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = r.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "same day is not repeated")

	now = now.Add(24 * time.Hour)
	n, err = r.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	msgs := notifier.messages()
	require.Len(t, msgs, 4)
	assert.Contains(t, msgs[0].Text, "Called No Answer")
}

func TestReminderNotifier_ReassignedLeadRemindsNewOwner(t *testing.T) {
	notifier := &fakeNotifier{}
	src := &staticReminders{leads: []models.Lead{{ID: "a", ClientName: "A", AssignedTo: ptr(3)}}}
	r := newReminderNotifier(src, notifier, time.Minute, zap.NewNop())
	r.now = func() time.Time { return serviceNow }

	n, err := r.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	src.leads[0].AssignedTo = ptr(5)
	n, err = r.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	msgs := notifier.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, 3, msgs[0].UserID)
	assert.Equal(t, 5, msgs[1].UserID)
}

func TestReminderNotifier_FailedSendIsRetried(t *testing.T) {
	notifier := &fakeNotifier{err: errBoom}
	src := staticReminders{leads: []models.Lead{{ID: "a", AssignedTo: ptr(3)}}}
	r := newReminderNotifier(src, notifier, time.Minute, zap.NewNop())

	n, err := r.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	notifier.err = nil
	n, err = r.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReminderNotifier_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	notifier := &fakeNotifier{}
	src := staticReminders{leads: []models.Lead{{ID: "a", AssignedTo: ptr(3)}}}
	r := newReminderNotifier(src, notifier, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()

	require.Eventually(t, func() bool { return len(notifier.messages()) == 1 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
