package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agencycrm/internal/models"
)

var rulesNow = time.Date(2025, time.March, 14, 16, 45, 0, 0, time.UTC)

func TestApplyStatusTransition_RemindersAndReassign(t *testing.T) {
	prior := date(2030, time.January, 1)
	lead := models.Lead{ID: "l1", Status: models.LeadWarm, RemindMe: &prior}

	tests := []struct {
		to       models.LeadStatus
		remind   *time.Time
		reassign bool
	}{
		{to: models.LeadCalledNoAnswer, remind: ptr(date(2025, time.March, 15))},
		{to: models.LeadCalledUnanswer2, remind: ptr(date(2025, time.March, 15))},
		{to: models.LeadLost, remind: ptr(date(2027, time.March, 14))},
		{to: models.LeadNoConnection, remind: &prior, reassign: true},
		{to: models.LeadHot, remind: &prior},
		{to: models.LeadCalledCold, remind: &prior},
		{to: models.LeadProblem, remind: &prior},
		{to: models.LeadNew, remind: &prior},
	}
	for _, tt := range tests {
		t.Run(string(tt.to), func(t *testing.T) {
			tr, err := ApplyStatusTransition(lead, tt.to, rulesNow)
			require.NoError(t, err)
			assert.Equal(t, tt.to, tr.Status)
			assert.Equal(t, tt.reassign, tr.Reassign)
			require.NotNil(t, tr.RemindMe)
			assert.True(t, tt.remind.Equal(*tr.RemindMe), "remind_me = %v, want %v", tr.RemindMe, tt.remind)
		})
	}
}

func TestApplyStatusTransition_NoAnswerIgnoresPriorReminder(t *testing.T) {
	for _, prior := range []*time.Time{nil, ptr(date(2020, time.May, 5)), ptr(date(2031, time.December, 31))} {
		tr, err := ApplyStatusTransition(models.Lead{RemindMe: prior}, models.LeadCalledNoAnswer, rulesNow)
		require.NoError(t, err)
		assert.Equal(t, date(2025, time.March, 15), *tr.RemindMe)
	}
}

func TestApplyStatusTransition_RejectsSoldAndUnknown(t *testing.T) {
	lead := models.Lead{ID: "l1", Status: models.LeadHot}
	for _, to := range []models.LeadStatus{models.LeadSold, "Maybe Later", ""} {
		tr, err := ApplyStatusTransition(lead, to, rulesNow)
		var invalid *InvalidStatusError
		require.True(t, errors.As(err, &invalid), "status %q", to)
		assert.Equal(t, to, invalid.Status)
		assert.Equal(t, Transition{}, tr)
	}
	assert.Equal(t, models.LeadHot, lead.Status)
}

func TestClaim(t *testing.T) {
	created := date(2025, time.January, 2)
	lead := models.Lead{ID: "l1", ClientName: "A", Mobile: "1", Status: models.LeadNew, CreatedAt: created}

	got, err := Claim(lead, 42)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, 42, *got.AssignedTo)

	got.AssignedTo = nil
	assert.Equal(t, lead, got, "only the owner changes")

	owned := lead
	owned.AssignedTo = ptr(7)
	again, err := Claim(owned, 42)
	assert.ErrorIs(t, err, ErrLeadAlreadyClaimed)
	assert.Equal(t, 7, *again.AssignedTo)
}

func TestUnassign(t *testing.T) {
	for _, status := range []models.LeadStatus{models.LeadHot, models.LeadProblem, models.LeadLost, models.LeadNew} {
		got := Unassign(models.Lead{ID: "l1", Status: status, AssignedTo: ptr(3)})
		assert.Nil(t, got.AssignedTo)
		assert.Equal(t, models.LeadNew, got.Status)
	}
}

func TestClaimThenNoConnection(t *testing.T) {
	remind := date(2025, time.April, 1)
	lead := models.Lead{ID: "l1", Status: models.LeadNew, RemindMe: &remind}

	claimed, err := Claim(lead, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, *claimed.AssignedTo)

	tr, err := ApplyStatusTransition(claimed, models.LeadNoConnection, rulesNow)
	require.NoError(t, err)
	assert.True(t, tr.Reassign)
	assert.Same(t, claimed.RemindMe, tr.RemindMe)
}

func TestIncomingLeads(t *testing.T) {
	leads := []models.Lead{
		{ID: "old", Status: models.LeadNew, CreatedAt: date(2025, 1, 1)},
		{ID: "owned", Status: models.LeadNew, AssignedTo: ptr(1), CreatedAt: date(2025, 1, 5)},
		{ID: "hot", Status: models.LeadHot, CreatedAt: date(2025, 1, 6)},
		{ID: "new", Status: models.LeadNew, CreatedAt: date(2025, 1, 3)},
	}
	assert.Equal(t, []string{"new", "old"}, ids(IncomingLeads(leads)))
}

func TestMyLeads_FollowUpOrder(t *testing.T) {
	leads := []models.Lead{
		{ID: "later", AssignedTo: ptr(5), RemindMe: ptr(date(2025, 3, 20)), CreatedAt: date(2025, 1, 1)},
		{ID: "none-old", AssignedTo: ptr(5), CreatedAt: date(2025, 1, 1)},
		{ID: "soon", AssignedTo: ptr(5), RemindMe: ptr(date(2025, 3, 15)), CreatedAt: date(2025, 1, 1)},
		{ID: "other", AssignedTo: ptr(6), CreatedAt: date(2025, 2, 1)},
		{ID: "none-new", AssignedTo: ptr(5), CreatedAt: date(2025, 2, 1)},
		{ID: "soon-newer", AssignedTo: ptr(5), RemindMe: ptr(date(2025, 3, 15)), CreatedAt: date(2025, 2, 1)},
	}
	assert.Equal(t, []string{"none-new", "none-old", "soon-newer", "soon", "later"}, ids(MyLeads(leads, 5)))
}

func TestSortLeads_LostLast(t *testing.T) {
	leads := []models.Lead{
		{ID: "lost-1", Status: models.LeadLost, CreatedAt: date(2025, 3, 1)},
		{ID: "warm", Status: models.LeadWarm, RemindMe: ptr(date(2026, 1, 1)), CreatedAt: date(2025, 1, 1)},
		{ID: "lost-2", Status: models.LeadLost, CreatedAt: date(2025, 1, 1)},
		{ID: "new", Status: models.LeadNew, CreatedAt: date(2025, 2, 1)},
	}
	sorted := SortLeads(leads)
	assert.Equal(t, []string{"new", "warm", "lost-1", "lost-2"}, ids(sorted))

	seenLost := false
	for _, l := range sorted {
		if l.Status == models.LeadLost {
			seenLost = true
			continue
		}
		assert.False(t, seenLost, "non-LOST lead %s after a LOST one", l.ID)
	}
	assert.Equal(t, "lost-1", leads[0].ID, "input is not reordered")
}

func ids(leads []models.Lead) []string {
	out := make([]string, 0, len(leads))
	for _, l := range leads {
		out = append(out, l.ID)
	}
	return out
}
