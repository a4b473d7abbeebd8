package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"agencycrm/internal/models"
	"agencycrm/internal/utils"
)

// lostReminderYears pushes LOST leads far enough out that they never
// resurface in a reminder queue on their own.
const lostReminderYears = 2

var ErrLeadAlreadyClaimed = errors.New("lead is already assigned")

// InvalidStatusError rejects a status that cannot be selected directly,
// SOLD included.
type InvalidStatusError struct {
	Status models.LeadStatus
}

func (e *InvalidStatusError) Error() string {
	if e.Status == models.LeadSold {
		return "status SOLD is set only by closing a deal"
	}
	return fmt.Sprintf("invalid lead status %q", string(e.Status))
}

// Transition is the outcome of a status change. RemindMe carries the lead's
// previous reminder when the new status does not touch it.
type Transition struct {
	Status   models.LeadStatus
	RemindMe *time.Time
	Reassign bool
}

// ApplyTo returns a copy of lead with the transition applied.
func (t Transition) ApplyTo(lead models.Lead) models.Lead {
	lead.Status = t.Status
	lead.RemindMe = t.RemindMe
	return lead
}

// ApplyStatusTransition decides the side effects of moving lead to `to`.
// When Reassign is set the caller must pick the next owner through a
// NextOwnerPolicy.
func ApplyStatusTransition(lead models.Lead, to models.LeadStatus, now time.Time) (Transition, error) {
	if !to.Selectable() {
		return Transition{}, &InvalidStatusError{Status: to}
	}

	tr := Transition{Status: to, RemindMe: lead.RemindMe}
	today := utils.StartOfDay(now)

	switch to {
	case models.LeadCalledNoAnswer, models.LeadCalledUnanswer2:
		d := utils.AddDays(today, 1)
		tr.RemindMe = &d
	case models.LeadLost:
		d := utils.AddYears(today, lostReminderYears)
		tr.RemindMe = &d
	case models.LeadNoConnection:
		tr.Reassign = true
	}
	return tr, nil
}

// Claim hands an unassigned lead to actorID. First claim wins.
func Claim(lead models.Lead, actorID int) (models.Lead, error) {
	if !lead.Unassigned() {
		return lead, ErrLeadAlreadyClaimed
	}
	owner := actorID
	lead.AssignedTo = &owner
	return lead, nil
}

// Unassign returns the lead to the shared pool and resets its status.
func Unassign(lead models.Lead) models.Lead {
	lead.AssignedTo = nil
	lead.Status = models.LeadNew
	return lead
}

// IncomingLeads are unowned New Lead rows, newest first.
func IncomingLeads(leads []models.Lead) []models.Lead {
	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if l.Status == models.LeadNew && l.Unassigned() {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// MyLeads are the leads owned by actorID in follow-up order.
func MyLeads(leads []models.Lead, actorID int) []models.Lead {
	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if l.AssignedTo != nil && *l.AssignedTo == actorID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return followUpBefore(out[i], out[j]) })
	return out
}

// SortLeads orders a full listing in follow-up order with LOST leads last.
func SortLeads(leads []models.Lead) []models.Lead {
	out := make([]models.Lead, len(leads))
	copy(out, leads)
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := out[i].Status == models.LeadLost, out[j].Status == models.LeadLost
		if li != lj {
			return lj
		}
		return followUpBefore(out[i], out[j])
	})
	return out
}

// followUpBefore: no reminder first, then soonest reminder, then newest.
func followUpBefore(a, b models.Lead) bool {
	switch {
	case a.RemindMe == nil && b.RemindMe != nil:
		return true
	case a.RemindMe != nil && b.RemindMe == nil:
		return false
	case a.RemindMe != nil && b.RemindMe != nil && !a.RemindMe.Equal(*b.RemindMe):
		return a.RemindMe.Before(*b.RemindMe)
	}
	return a.CreatedAt.After(b.CreatedAt)
}
