package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agencycrm/internal/authz"
	"agencycrm/internal/models"
	"agencycrm/internal/repositories"
	"agencycrm/internal/utils"
)

var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrLeadInvalid     = errors.New("client name and mobile are required")
	ErrLeadNotSellable = errors.New("lead must be owned and not LOST to close a deal")
	ErrLeadAlreadySold = errors.New("lead is already sold")
	ErrOwnerIneligible = errors.New("owner must be an active salesperson")
)

const (
	leadListHardLimit  = 5000
	reminderBatchLimit = 500
)

// LeadInput carries the editable lead fields from intake and updates.
type LeadInput struct {
	ClientName      string  `json:"client_name"`
	Mobile          string  `json:"mobile"`
	Email           *string `json:"email"`
	Nationality     *string `json:"nationality"`
	ServiceRequired *string `json:"service_required"`
	LeadSource      *string `json:"lead_source"`
	Hot             bool    `json:"hot"`
}

func (in LeadInput) validate() error {
	if strings.TrimSpace(in.ClientName) == "" || strings.TrimSpace(in.Mobile) == "" {
		return ErrLeadInvalid
	}
	return nil
}

// StatusChange is the persisted outcome of ChangeStatus.
type StatusChange struct {
	Lead       models.Lead `json:"lead"`
	Reassigned bool        `json:"reassigned"`
}

type LeadService struct {
	repo     repositories.LeadRepository
	users    repositories.UserRepository
	policy   NextOwnerPolicy
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewLeadService(
	repo repositories.LeadRepository,
	users repositories.UserRepository,
	policy NextOwnerPolicy,
	notifier Notifier,
	log *zap.Logger,
) *LeadService {
	return &LeadService{
		repo:     repo,
		users:    users,
		policy:   policy,
		notifier: notifier,
		log:      log.Named("leads"),
		now:      time.Now,
	}
}

// Create registers an intake lead in the shared pool.
func (s *LeadService) Create(ctx context.Context, in LeadInput) (*models.Lead, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	lead := &models.Lead{
		ID:              uuid.NewString(),
		ClientName:      strings.TrimSpace(in.ClientName),
		Mobile:          strings.TrimSpace(in.Mobile),
		Email:           in.Email,
		Nationality:     in.Nationality,
		ServiceRequired: in.ServiceRequired,
		LeadSource:      in.LeadSource,
		Status:          models.LeadNew,
		Hot:             in.Hot,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}
	s.log.Info("lead created", zap.String("lead_id", lead.ID))
	return lead, nil
}

func (s *LeadService) Get(ctx context.Context, id string) (*models.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}
	return lead, nil
}

// Update edits contact fields. Status and owner change only through their
// own operations.
func (s *LeadService) Update(ctx context.Context, id string, in LeadInput) (*models.Lead, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	lead.ClientName = strings.TrimSpace(in.ClientName)
	lead.Mobile = strings.TrimSpace(in.Mobile)
	lead.Email = in.Email
	lead.Nationality = in.Nationality
	lead.ServiceRequired = in.ServiceRequired
	lead.LeadSource = in.LeadSource
	lead.Hot = in.Hot
	lead.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *LeadService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrLeadNotFound
		}
		return err
	}
	s.log.Info("lead deleted", zap.String("lead_id", id))
	return nil
}

// ChangeStatus applies a status selection and its side effects. A
// No Connection result hands the lead to the next owner from the policy.
func (s *LeadService) ChangeStatus(ctx context.Context, id string, to models.LeadStatus, actorID int) (*StatusChange, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if lead.Status == models.LeadSold {
		return nil, ErrLeadAlreadySold
	}

	now := s.now()
	tr, err := ApplyStatusTransition(*lead, to, now)
	if err != nil {
		return nil, err
	}
	updated := tr.ApplyTo(*lead)
	updated.UpdatedAt = now

	if tr.Reassign {
		owner, err := s.policy.NextOwner(ctx, updated)
		if err != nil {
			return nil, fmt.Errorf("pick next owner: %w", err)
		}
		updated.AssignedTo = &owner
		by := actorID
		err = s.repo.UpdateWithAssignment(ctx, &updated, newAssignment(id, owner, &by, reasonRoundRobin, now))
		if err != nil {
			return nil, err
		}
	} else if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.log.Info("lead status changed",
		zap.String("lead_id", id),
		zap.String("from", string(lead.Status)),
		zap.String("to", string(to)),
		zap.Int("actor", actorID),
		zap.Bool("reassigned", tr.Reassign))

	if tr.Reassign {
		s.notify(ctx, *updated.AssignedTo, fmt.Sprintf("📌 Lead reassigned to you: <b>%s</b> (%s)",
			html.EscapeString(updated.ClientName), html.EscapeString(updated.Mobile)))
	}
	return &StatusChange{Lead: updated, Reassigned: tr.Reassign}, nil
}

// Claim takes an unassigned lead. The write is conditional on the owner
// still being empty, so of two racing claims only one succeeds.
func (s *LeadService) Claim(ctx context.Context, id string, actorID int) (*models.Lead, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	claimed, err := Claim(*lead, actorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ok, err := s.repo.ClaimIfUnassigned(ctx, newAssignment(id, actorID, &actorID, reasonClaim, now))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLeadAlreadyClaimed
	}
	claimed.UpdatedAt = now
	s.log.Info("lead claimed", zap.String("lead_id", id), zap.Int("actor", actorID))
	return &claimed, nil
}

// Assign sets the owner directly (elevated roles). The new owner must be
// an active salesperson.
func (s *LeadService) Assign(ctx context.Context, id string, ownerID, actorID int) (*models.Lead, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active || user.RoleID != authz.RoleSales {
		return nil, ErrOwnerIneligible
	}

	now := s.now()
	owner := ownerID
	lead.AssignedTo = &owner
	lead.UpdatedAt = now
	if err := s.repo.UpdateWithAssignment(ctx, lead, newAssignment(id, ownerID, &actorID, reasonManual, now)); err != nil {
		return nil, err
	}
	s.notify(ctx, ownerID, fmt.Sprintf("📌 Lead assigned to you: <b>%s</b>", html.EscapeString(lead.ClientName)))
	return lead, nil
}

func (s *LeadService) Unassign(ctx context.Context, id string) (*models.Lead, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := Unassign(*lead)
	updated.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	s.log.Info("lead returned to pool", zap.String("lead_id", id))
	return &updated, nil
}

// ListAll returns every lead, LOST ones last.
func (s *LeadService) ListAll(ctx context.Context) ([]models.Lead, error) {
	leads, err := s.repo.List(ctx, models.LeadFilter{Limit: leadListHardLimit})
	if err != nil {
		return nil, err
	}
	return SortLeads(leads), nil
}

// ListIncoming returns the shared pool, newest first.
func (s *LeadService) ListIncoming(ctx context.Context) ([]models.Lead, error) {
	status := models.LeadNew
	leads, err := s.repo.List(ctx, models.LeadFilter{Status: &status, Unassigned: true, Limit: leadListHardLimit})
	if err != nil {
		return nil, err
	}
	return IncomingLeads(leads), nil
}

// ListMine returns the actor's leads in follow-up order.
func (s *LeadService) ListMine(ctx context.Context, actorID int) ([]models.Lead, error) {
	owner := actorID
	leads, err := s.repo.List(ctx, models.LeadFilter{AssignedTo: &owner, Limit: leadListHardLimit})
	if err != nil {
		return nil, err
	}
	return MyLeads(leads, actorID), nil
}

// DueReminders lists owned leads whose reminder falls on or before today.
func (s *LeadService) DueReminders(ctx context.Context) ([]models.Lead, error) {
	endOfToday := utils.AddDays(utils.StartOfDay(s.now()), 1).Add(-time.Nanosecond)
	return s.repo.ListDueReminders(ctx, endOfToday, reminderBatchLimit)
}

// markSold is the only way a lead reaches SOLD; it is driven by the
// deal-closing workflow in ContractService.
func (s *LeadService) markSold(ctx context.Context, lead models.Lead) error {
	lead.Status = models.LeadSold
	lead.UpdatedAt = s.now()
	return s.repo.Update(ctx, &lead)
}

func (s *LeadService) notify(ctx context.Context, userID int, text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyUser(ctx, userID, text); err != nil {
		s.log.Warn("notify failed", zap.Int("user_id", userID), zap.Error(err))
	}
}
