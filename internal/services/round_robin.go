package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"agencycrm/internal/authz"
	"agencycrm/internal/models"
	"agencycrm/internal/repositories"
)

var ErrNoEligibleOwner = errors.New("no eligible salesperson for reassignment")

// NextOwnerPolicy picks who takes over a lead that needs reassignment.
type NextOwnerPolicy interface {
	NextOwner(ctx context.Context, lead models.Lead) (int, error)
}

// LeastRecentlyAssignedPolicy rotates leads across active salespeople,
// skipping the current owner. Never-assigned users go first, then the one
// whose last assignment is oldest; ties break on the lower user id.
type LeastRecentlyAssignedPolicy struct {
	users       repositories.UserRepository
	assignments repositories.AssignmentRepository
}

func NewLeastRecentlyAssignedPolicy(users repositories.UserRepository, assignments repositories.AssignmentRepository) *LeastRecentlyAssignedPolicy {
	return &LeastRecentlyAssignedPolicy{users: users, assignments: assignments}
}

func (p *LeastRecentlyAssignedPolicy) NextOwner(ctx context.Context, lead models.Lead) (int, error) {
	users, err := p.users.ListActiveByRole(ctx, authz.RoleSales)
	if err != nil {
		return 0, err
	}

	candidates := make([]int, 0, len(users))
	for _, u := range users {
		if lead.AssignedTo != nil && *lead.AssignedTo == u.ID {
			continue
		}
		candidates = append(candidates, u.ID)
	}
	if len(candidates) == 0 {
		return 0, ErrNoEligibleOwner
	}

	last, err := p.assignments.LastAssignedAt(ctx, candidates)
	if err != nil {
		return 0, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		ti, iok := last[candidates[i]]
		tj, jok := last[candidates[j]]
		switch {
		case !iok && jok:
			return true
		case iok && !jok:
			return false
		case iok && jok && !ti.Equal(tj):
			return ti.Before(tj)
		}
		return candidates[i] < candidates[j]
	})
	return candidates[0], nil
}

var _ NextOwnerPolicy = (*LeastRecentlyAssignedPolicy)(nil)

// assignmentReason values stored in lead_assignments.
const (
	reasonClaim      = "claim"
	reasonRoundRobin = "round-robin"
	reasonManual     = "manual"
)

func newAssignment(leadID string, userID int, by *int, reason string, at time.Time) *models.LeadAssignment {
	return &models.LeadAssignment{LeadID: leadID, UserID: userID, AssignedBy: by, Reason: reason, AssignedAt: at}
}
