package models

import "time"

// LeadStatus is the pipeline stage of a lead.
type LeadStatus string

const (
	LeadNew             LeadStatus = "New Lead"
	LeadCalledNoAnswer  LeadStatus = "Called No Answer"
	LeadCalledEngaged   LeadStatus = "Called Engaged"
	LeadCalledCold      LeadStatus = "Called COLD"
	LeadCalledUnanswer2 LeadStatus = "Called Unanswer 2"
	LeadNoConnection    LeadStatus = "No Connection"
	LeadWarm            LeadStatus = "Warm"
	LeadHot             LeadStatus = "HOT"
	LeadLost            LeadStatus = "LOST"
	LeadProblem         LeadStatus = "PROBLEM"

	// LeadSold is set only by the deal-closing workflow.
	LeadSold LeadStatus = "SOLD"
)

// SelectableLeadStatuses are the statuses a salesperson may pick directly.
var SelectableLeadStatuses = []LeadStatus{
	LeadNew,
	LeadCalledNoAnswer,
	LeadCalledEngaged,
	LeadCalledCold,
	LeadCalledUnanswer2,
	LeadNoConnection,
	LeadWarm,
	LeadHot,
	LeadLost,
	LeadProblem,
}

// Selectable reports whether s can be set through a status change.
func (s LeadStatus) Selectable() bool {
	for _, v := range SelectableLeadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Valid reports whether s is any known status, SOLD included.
func (s LeadStatus) Valid() bool {
	return s == LeadSold || s.Selectable()
}

type Lead struct {
	ID              string     `json:"id"`
	ClientName      string     `json:"client_name"`
	Mobile          string     `json:"mobile"`
	Email           *string    `json:"email,omitempty"`
	Nationality     *string    `json:"nationality,omitempty"`
	ServiceRequired *string    `json:"service_required,omitempty"`
	LeadSource      *string    `json:"lead_source,omitempty"`
	Status          LeadStatus `json:"status"`
	AssignedTo      *int       `json:"assigned_to"`
	RemindMe        *time.Time `json:"remind_me"`
	Hot             bool       `json:"hot"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Unassigned reports whether the lead sits in the shared incoming pool.
func (l Lead) Unassigned() bool { return l.AssignedTo == nil }

// LeadFilter narrows lead listings.
type LeadFilter struct {
	Status     *LeadStatus
	AssignedTo *int
	Unassigned bool
	Limit      int
	Offset     int
}

// LeadAssignment is one row of the ownership history.
type LeadAssignment struct {
	ID         int64     `json:"id"`
	LeadID     string    `json:"lead_id"`
	UserID     int       `json:"user_id"`
	AssignedBy *int      `json:"assigned_by,omitempty"`
	Reason     string    `json:"reason"`
	AssignedAt time.Time `json:"assigned_at"`
}
