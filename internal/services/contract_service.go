package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agencycrm/internal/authz"
	"agencycrm/internal/models"
	"agencycrm/internal/pdf"
	"agencycrm/internal/repositories"
	"agencycrm/internal/utils"
)

var (
	ErrContractNotFound          = errors.New("contract not found")
	ErrContractInvalid           = errors.New("invalid contract data")
	ErrInvalidContractTransition = errors.New("invalid contract status transition")
	ErrForbidden                 = errors.New("forbidden")
	ErrPaymentInvalid            = errors.New("payment amount must be positive")
	ErrPaymentNotAllowed         = errors.New("payments are not accepted on cancelled or void contracts")
	ErrPaymentNotFound           = errors.New("payment not found")
	ErrNotProjectable            = errors.New("only active contracts with a start date have a receivables projection")
	ErrNoClientEmail             = errors.New("contract has no client email")
	ErrEmailNotConfigured        = errors.New("email is not configured")
)

const contractListHardLimit = 5000

// Actor is the authenticated caller as seen by the services.
type Actor struct {
	UserID int
	RoleID int
}

type ContractInput struct {
	LeadID      *string  `json:"lead_id"`
	ClientName  string   `json:"client_name"`
	ClientPhone string   `json:"client_phone"`
	ClientEmail *string  `json:"client_email"`
	ServiceType string   `json:"service_type"`
	DealValue   float64  `json:"deal_value"`
	VATRate     *float64 `json:"vat_rate"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	WorkerID    *string  `json:"worker_id"`
}

type PaymentInput struct {
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
	Method      *string `json:"method"`
	Reference   *string `json:"reference"`
	BankAccount *string `json:"bank_account"`
}

// ReceivablesReport is the finance dashboard payload.
type ReceivablesReport struct {
	AsOf      time.Time      `json:"as_of"`
	Contracts []ARProjection `json:"contracts"`
	Summary   ARSummary      `json:"summary"`
}

type ContractService struct {
	contracts  repositories.ContractRepository
	payments   repositories.PaymentRepository
	workers    repositories.WorkerRepository
	leads      *LeadService
	pdfGen     pdf.Generator
	email      EmailService
	defaultVAT float64
	log        *zap.Logger
	now        func() time.Time
}

func NewContractService(
	contracts repositories.ContractRepository,
	payments repositories.PaymentRepository,
	workers repositories.WorkerRepository,
	leads *LeadService,
	pdfGen pdf.Generator,
	email EmailService,
	defaultVAT float64,
	log *zap.Logger,
) *ContractService {
	return &ContractService{
		contracts:  contracts,
		payments:   payments,
		workers:    workers,
		leads:      leads,
		pdfGen:     pdfGen,
		email:      email,
		defaultVAT: defaultVAT,
		log:        log.Named("contracts"),
		now:        time.Now,
	}
}

func (s *ContractService) build(in ContractInput, ownerID int, now time.Time) (*models.Contract, error) {
	if strings.TrimSpace(in.ClientName) == "" || strings.TrimSpace(in.ServiceType) == "" {
		return nil, fmt.Errorf("%w: client name and service type are required", ErrContractInvalid)
	}
	if in.DealValue < 0 {
		return nil, fmt.Errorf("%w: deal value must not be negative", ErrContractInvalid)
	}
	vatRate := s.defaultVAT
	if in.VATRate != nil {
		vatRate = *in.VATRate
	}
	if vatRate < 0 {
		return nil, fmt.Errorf("%w: vat rate must not be negative", ErrContractInvalid)
	}

	start, err := optionalDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := optionalDate(in.EndDate)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: end date before start date", ErrContractInvalid)
	}

	vat := utils.VATAmount(in.DealValue, vatRate)
	total := utils.AddAmounts(in.DealValue, vat)
	return &models.Contract{
		ID:          uuid.NewString(),
		DealNumber:  dealNumber(now),
		LeadID:      in.LeadID,
		OwnerID:     ownerID,
		ClientName:  strings.TrimSpace(in.ClientName),
		ClientPhone: strings.TrimSpace(in.ClientPhone),
		ClientEmail: in.ClientEmail,
		ServiceType: strings.TrimSpace(in.ServiceType),
		DealValue:   in.DealValue,
		VATRate:     vatRate,
		VATAmount:   vat,
		TotalAmount: total,
		BalanceDue:  total,
		Status:      models.ContractDraft,
		StartDate:   start,
		EndDate:     end,
		WorkerID:    in.WorkerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func optionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, ok := utils.ParseDate(s)
	if !ok {
		return nil, fmt.Errorf("%w: bad date %q", ErrContractInvalid, s)
	}
	return &t, nil
}

// dealNumber renders DL-YYYYMMDD-XXXXXX.
func dealNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("DL-%s-%s", now.Format("20060102"), suffix)
}

// Create opens a Draft contract owned by the actor.
func (s *ContractService) Create(ctx context.Context, in ContractInput, actor Actor) (*models.Contract, error) {
	c, err := s.build(in, actor.UserID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.contracts.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("contract created", zap.String("contract_id", c.ID), zap.String("deal_number", c.DealNumber))
	return c, nil
}

// Get loads a contract the actor may see. Sales only see their own.
func (s *ContractService) Get(ctx context.Context, id string, actor Actor) (*models.Contract, error) {
	c, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrContractNotFound
	}
	if !authz.CanSeeAll(actor.RoleID) && c.OwnerID != actor.UserID {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *ContractService) List(ctx context.Context, actor Actor, status *models.ContractStatus) ([]models.Contract, error) {
	filter := models.ContractFilter{Status: status, Limit: contractListHardLimit}
	if !authz.CanSeeAll(actor.RoleID) {
		owner := actor.UserID
		filter.OwnerID = &owner
	}
	return s.contracts.List(ctx, filter)
}

// Approve activates a Draft. Management and admin only.
func (s *ContractService) Approve(ctx context.Context, id string, actor Actor) (*models.Contract, error) {
	if !authz.CanApproveContracts(actor.RoleID) {
		return nil, ErrForbidden
	}
	c, err := s.transition(ctx, id, actor, models.ContractActive)
	if err != nil {
		return nil, err
	}
	s.setWorkerStatus(ctx, c, models.WorkerHired)
	return c, nil
}

func (s *ContractService) Close(ctx context.Context, id string, actor Actor) (*models.Contract, error) {
	return s.transition(ctx, id, actor, models.ContractClosed)
}

func (s *ContractService) Cancel(ctx context.Context, id string, actor Actor) (*models.Contract, error) {
	c, err := s.transition(ctx, id, actor, models.ContractCancelled)
	if err != nil {
		return nil, err
	}
	s.setWorkerStatus(ctx, c, models.WorkerAvailable)
	return c, nil
}

// Void annuls a Draft or Active contract and frees the placed worker.
func (s *ContractService) Void(ctx context.Context, id string, actor Actor) (*models.Contract, error) {
	if !authz.CanApproveContracts(actor.RoleID) {
		return nil, ErrForbidden
	}
	c, err := s.transition(ctx, id, actor, models.ContractVoid)
	if err != nil {
		return nil, err
	}
	s.setWorkerStatus(ctx, c, models.WorkerAvailable)
	return c, nil
}

func (s *ContractService) transition(ctx context.Context, id string, actor Actor, to models.ContractStatus) (*models.Contract, error) {
	c, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !canTransition(c.Status, to, ContractTransitions) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidContractTransition, c.Status, to)
	}

	now := s.now()
	var closedAt *time.Time
	if to == models.ContractClosed {
		closedAt = &now
		c.ClosedAt = closedAt
	}
	if err := s.contracts.UpdateStatus(ctx, id, to, closedAt, now); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	s.log.Info("contract status changed",
		zap.String("contract_id", id),
		zap.String("from", string(c.Status)),
		zap.String("to", string(to)),
		zap.Int("actor", actor.UserID))

	c.Status = to
	c.UpdatedAt = now
	return c, nil
}

// setWorkerStatus is best effort; the contract change already happened.
func (s *ContractService) setWorkerStatus(ctx context.Context, c *models.Contract, status models.WorkerStatus) {
	if c.WorkerID == nil || *c.WorkerID == "" {
		return
	}
	if err := s.workers.UpdateStatus(ctx, *c.WorkerID, status); err != nil {
		s.log.Warn("worker status not updated",
			zap.String("worker_id", *c.WorkerID),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

func (s *ContractService) Payments(ctx context.Context, contractID string, actor Actor) ([]models.Payment, error) {
	if _, err := s.Get(ctx, contractID, actor); err != nil {
		return nil, err
	}
	return s.payments.ListByContract(ctx, contractID)
}

// RecordPayment stores a payment; the repository refreshes paid_amount and
// balance_due in the same transaction.
func (s *ContractService) RecordPayment(ctx context.Context, contractID string, in PaymentInput, actor Actor) (*models.Payment, error) {
	if in.Amount <= 0 || utils.Amount(in.Amount) != in.Amount {
		return nil, ErrPaymentInvalid
	}
	c, err := s.Get(ctx, contractID, actor)
	if err != nil {
		return nil, err
	}
	if c.Status == models.ContractCancelled || c.Status == models.ContractVoid {
		return nil, ErrPaymentNotAllowed
	}

	now := s.now()
	paidOn := utils.StartOfDay(now)
	if strings.TrimSpace(in.PaymentDate) != "" {
		t, ok := utils.ParseDate(in.PaymentDate)
		if !ok {
			return nil, fmt.Errorf("%w: bad payment date %q", ErrContractInvalid, in.PaymentDate)
		}
		paidOn = t
	}

	p := &models.Payment{
		ID:          uuid.NewString(),
		ContractID:  contractID,
		Amount:      utils.Round2(in.Amount),
		PaymentDate: paidOn,
		Method:      in.Method,
		Reference:   in.Reference,
		BankAccount: in.BankAccount,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
	}
	if err := s.payments.Record(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("payment recorded",
		zap.String("contract_id", contractID),
		zap.String("payment_id", p.ID),
		zap.Float64("amount", p.Amount))
	return p, nil
}

func (s *ContractService) DeletePayment(ctx context.Context, contractID, paymentID string, actor Actor) error {
	if !authz.IsAdmin(actor.RoleID) {
		return ErrForbidden
	}
	if err := s.payments.Delete(ctx, contractID, paymentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}
	s.log.Info("payment deleted", zap.String("contract_id", contractID), zap.String("payment_id", paymentID))
	return nil
}

// Projection returns the receivables position of one contract as of asOf.
func (s *ContractService) Projection(ctx context.Context, id string, actor Actor, asOf time.Time) (*ARProjection, error) {
	c, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !Eligible(*c) {
		return nil, ErrNotProjectable
	}
	payments, err := s.payments.ListByContract(ctx, id)
	if err != nil {
		return nil, err
	}
	p := Project(*c, payments, asOf)
	return &p, nil
}

// Receivables projects every eligible contract and totals the result.
func (s *ContractService) Receivables(ctx context.Context, asOf time.Time) (*ReceivablesReport, error) {
	active := models.ContractActive
	contracts, err := s.contracts.List(ctx, models.ContractFilter{Status: &active, HasStart: true, Limit: contractListHardLimit})
	if err != nil {
		return nil, err
	}

	eligible := make([]models.Contract, 0, len(contracts))
	ids := make([]string, 0, len(contracts))
	for _, c := range contracts {
		if Eligible(c) {
			eligible = append(eligible, c)
			ids = append(ids, c.ID)
		}
	}

	byContract := map[string][]models.Payment{}
	if len(ids) > 0 {
		byContract, err = s.payments.ListByContracts(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	projections := make([]ARProjection, 0, len(eligible))
	for _, c := range eligible {
		projections = append(projections, Project(c, byContract[c.ID], asOf))
	}
	return &ReceivablesReport{
		AsOf:      asOf,
		Contracts: projections,
		Summary:   Summarize(projections),
	}, nil
}

// RenderPDF draws the contract document with its current A/R position.
func (s *ContractService) RenderPDF(ctx context.Context, id string, actor Actor) ([]byte, *models.Contract, error) {
	c, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, nil, err
	}
	if s.pdfGen == nil {
		return nil, nil, errors.New("pdf generator not configured")
	}

	data := pdf.ContractData{
		DealNumber:  c.DealNumber,
		ClientName:  c.ClientName,
		ClientPhone: c.ClientPhone,
		ServiceType: c.ServiceType,
		DealValue:   c.DealValue,
		VATRate:     c.VATRate,
		VATAmount:   c.VATAmount,
		TotalAmount: c.TotalAmount,
		PaidAmount:  c.PaidAmount,
		BalanceDue:  c.BalanceDue,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		CreatedAt:   c.CreatedAt,
	}
	if c.WorkerID != nil {
		if w, err := s.workers.GetByID(ctx, *c.WorkerID); err == nil && w != nil {
			data.WorkerName = w.FullName
		}
	}
	if Eligible(*c) {
		payments, err := s.payments.ListByContract(ctx, c.ID)
		if err != nil {
			return nil, nil, err
		}
		p := Project(*c, payments, s.now())
		data.Projection = &pdf.ProjectionData{
			MonthlyAmount:   utils.Round2(p.MonthlyAmount),
			CurrentAR:       utils.Round2(p.CurrentAR),
			FutureAR:        utils.Round2(p.FutureAR),
			MonthsRemaining: p.MonthsRemaining,
			NextPaymentDate: p.NextPaymentDate,
		}
	}

	out, err := s.pdfGen.RenderContract(data)
	if err != nil {
		return nil, nil, err
	}
	return out, c, nil
}

// EmailToClient sends the rendered contract to the client's email.
func (s *ContractService) EmailToClient(ctx context.Context, id string, actor Actor) error {
	if s.email == nil {
		return ErrEmailNotConfigured
	}
	doc, c, err := s.RenderPDF(ctx, id, actor)
	if err != nil {
		return err
	}
	if c.ClientEmail == nil || strings.TrimSpace(*c.ClientEmail) == "" {
		return ErrNoClientEmail
	}
	if err := s.email.SendContract(*c.ClientEmail, c.ClientName, c.DealNumber, doc); err != nil {
		return err
	}
	s.log.Info("contract emailed", zap.String("contract_id", c.ID))
	return nil
}

// SellLead closes a deal on an owned lead: it opens a Draft contract and
// moves the lead to SOLD. If the lead update fails the contract is removed.
func (s *ContractService) SellLead(ctx context.Context, leadID string, in ContractInput, actor Actor) (*models.Contract, error) {
	lead, err := s.leads.Get(ctx, leadID)
	if err != nil {
		return nil, err
	}
	switch {
	case lead.Status == models.LeadSold:
		return nil, ErrLeadAlreadySold
	case lead.AssignedTo == nil || lead.Status == models.LeadLost:
		return nil, ErrLeadNotSellable
	case *lead.AssignedTo != actor.UserID && !authz.IsElevated(actor.RoleID):
		return nil, ErrForbidden
	}

	in.LeadID = &lead.ID
	if strings.TrimSpace(in.ClientName) == "" {
		in.ClientName = lead.ClientName
	}
	if strings.TrimSpace(in.ClientPhone) == "" {
		in.ClientPhone = lead.Mobile
	}
	if in.ClientEmail == nil {
		in.ClientEmail = lead.Email
	}
	if strings.TrimSpace(in.ServiceType) == "" && lead.ServiceRequired != nil {
		in.ServiceType = *lead.ServiceRequired
	}

	c, err := s.build(in, *lead.AssignedTo, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.contracts.Create(ctx, c); err != nil {
		return nil, err
	}
	if err := s.leads.markSold(ctx, *lead); err != nil {
		if derr := s.contracts.Delete(ctx, c.ID); derr != nil {
			s.log.Error("rollback contract failed", zap.String("contract_id", c.ID), zap.Error(derr))
		}
		return nil, err
	}
	s.log.Info("lead sold",
		zap.String("lead_id", lead.ID),
		zap.String("contract_id", c.ID),
		zap.Int("actor", actor.UserID))
	return c, nil
}
