package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"agencycrm/internal/models"
	"agencycrm/internal/pdf"
	"agencycrm/internal/repositories"
)

var errBoom = errors.New("boom")

type fakeLeadRepo struct {
	mu        sync.Mutex
	leads     map[string]models.Lead
	updateErr error
	// history holds assignment rows written alongside the lead. historyErr
	// fails that insert, and the lead write with it.
	history    []models.LeadAssignment
	historyErr error
	// beforeClaim runs inside ClaimIfUnassigned to simulate a racing writer.
	beforeClaim func()
}

func newFakeLeadRepo(leads ...models.Lead) *fakeLeadRepo {
	r := &fakeLeadRepo{leads: map[string]models.Lead{}}
	for _, l := range leads {
		r.leads[l.ID] = l
	}
	return r
}

func (r *fakeLeadRepo) get(id string) models.Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leads[id]
}

func (r *fakeLeadRepo) Create(_ context.Context, lead *models.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads[lead.ID] = *lead
	return nil
}

func (r *fakeLeadRepo) GetByID(_ context.Context, id string) (*models.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *fakeLeadRepo) Update(_ context.Context, lead *models.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.leads[lead.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.leads[lead.ID] = *lead
	return nil
}

func (r *fakeLeadRepo) UpdateWithAssignment(_ context.Context, lead *models.Lead, a *models.LeadAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.leads[lead.ID]; !ok {
		return repositories.ErrNotFound
	}
	if r.historyErr != nil {
		return r.historyErr
	}
	r.leads[lead.ID] = *lead
	r.record(a)
	return nil
}

func (r *fakeLeadRepo) record(a *models.LeadAssignment) {
	a.ID = int64(len(r.history) + 1)
	r.history = append(r.history, *a)
}

func (r *fakeLeadRepo) assignments() []models.LeadAssignment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.LeadAssignment(nil), r.history...)
}

func (r *fakeLeadRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[id]; !ok {
		return fmt.Errorf("lead %s: %w", id, repositories.ErrNotFound)
	}
	delete(r.leads, id)
	return nil
}

func (r *fakeLeadRepo) List(_ context.Context, f models.LeadFilter) ([]models.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Lead
	for _, l := range r.leads {
		if f.Status != nil && l.Status != *f.Status {
			continue
		}
		if f.AssignedTo != nil && (l.AssignedTo == nil || *l.AssignedTo != *f.AssignedTo) {
			continue
		}
		if f.Unassigned && l.AssignedTo != nil {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeLeadRepo) ClaimIfUnassigned(_ context.Context, a *models.LeadAssignment) (bool, error) {
	if r.beforeClaim != nil {
		r.beforeClaim()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[a.LeadID]
	if !ok || l.AssignedTo != nil {
		return false, nil
	}
	if r.historyErr != nil {
		return false, r.historyErr
	}
	owner := a.UserID
	l.AssignedTo = &owner
	l.UpdatedAt = a.AssignedAt
	r.leads[a.LeadID] = l
	r.record(a)
	return true, nil
}

func (r *fakeLeadRepo) ListDueReminders(_ context.Context, until time.Time, _ int) ([]models.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Lead
	for _, l := range r.leads {
		if l.AssignedTo != nil && l.RemindMe != nil && !l.RemindMe.After(until) {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeAssignmentRepo struct {
	last map[int]time.Time
}

func (r *fakeAssignmentRepo) LastAssignedAt(_ context.Context, userIDs []int) (map[int]time.Time, error) {
	out := map[int]time.Time{}
	for _, id := range userIDs {
		if t, ok := r.last[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users []models.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	u.ID = len(r.users) + 1
	r.users = append(r.users, *u)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListActiveByRole(_ context.Context, roleID int) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.Active && u.RoleID == roleID {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeContractRepo struct {
	contracts map[string]models.Contract
	deleted   []string
}

func newFakeContractRepo(cs ...models.Contract) *fakeContractRepo {
	r := &fakeContractRepo{contracts: map[string]models.Contract{}}
	for _, c := range cs {
		r.contracts[c.ID] = c
	}
	return r
}

func (r *fakeContractRepo) Create(_ context.Context, c *models.Contract) error {
	r.contracts[c.ID] = *c
	return nil
}

func (r *fakeContractRepo) GetByID(_ context.Context, id string) (*models.Contract, error) {
	c, ok := r.contracts[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeContractRepo) List(_ context.Context, f models.ContractFilter) ([]models.Contract, error) {
	var out []models.Contract
	for _, c := range r.contracts {
		if f.Status != nil && c.Status != *f.Status {
			continue
		}
		if f.OwnerID != nil && c.OwnerID != *f.OwnerID {
			continue
		}
		if f.HasStart && c.StartDate == nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeContractRepo) UpdateStatus(_ context.Context, id string, status models.ContractStatus, closedAt *time.Time, at time.Time) error {
	c, ok := r.contracts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Status = status
	if closedAt != nil {
		c.ClosedAt = closedAt
	}
	c.UpdatedAt = at
	r.contracts[id] = c
	return nil
}

func (r *fakeContractRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.contracts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.contracts, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// fakePaymentRepo mirrors the balance refresh the SQL repository does.
type fakePaymentRepo struct {
	contracts *fakeContractRepo
	payments  map[string][]models.Payment
}

func newFakePaymentRepo(contracts *fakeContractRepo) *fakePaymentRepo {
	return &fakePaymentRepo{contracts: contracts, payments: map[string][]models.Payment{}}
}

func (r *fakePaymentRepo) ListByContract(_ context.Context, contractID string) ([]models.Payment, error) {
	return r.payments[contractID], nil
}

func (r *fakePaymentRepo) ListByContracts(_ context.Context, ids []string) (map[string][]models.Payment, error) {
	out := map[string][]models.Payment{}
	for _, id := range ids {
		if ps, ok := r.payments[id]; ok {
			out[id] = ps
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) Record(_ context.Context, p *models.Payment) error {
	r.payments[p.ContractID] = append(r.payments[p.ContractID], *p)
	r.refresh(p.ContractID)
	return nil
}

func (r *fakePaymentRepo) Delete(_ context.Context, contractID, paymentID string) error {
	ps := r.payments[contractID]
	for i, p := range ps {
		if p.ID == paymentID {
			r.payments[contractID] = append(ps[:i], ps[i+1:]...)
			r.refresh(contractID)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakePaymentRepo) refresh(contractID string) {
	c, ok := r.contracts.contracts[contractID]
	if !ok {
		return
	}
	paid := 0.0
	for _, p := range r.payments[contractID] {
		paid += p.Amount
	}
	c.PaidAmount = paid
	c.BalanceDue = c.TotalAmount - paid
	r.contracts.contracts[contractID] = c
}

type fakeWorkerRepo struct {
	workers map[string]models.Worker
}

func (r *fakeWorkerRepo) GetByID(_ context.Context, id string) (*models.Worker, error) {
	w, ok := r.workers[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *fakeWorkerRepo) UpdateStatus(_ context.Context, id string, status models.WorkerStatus) error {
	w, ok := r.workers[id]
	if !ok {
		return repositories.ErrNotFound
	}
	w.Status = status
	r.workers[id] = w
	return nil
}

type sentMessage struct {
	UserID int
	Text   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *fakeNotifier) NotifyUser(_ context.Context, userID int, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{UserID: userID, Text: text})
	return nil
}

func (n *fakeNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

type fixedPolicy struct {
	owner int
	err   error
	calls int
}

func (p *fixedPolicy) NextOwner(context.Context, models.Lead) (int, error) {
	p.calls++
	return p.owner, p.err
}

type fakePDF struct {
	last pdf.ContractData
}

func (g *fakePDF) RenderContract(data pdf.ContractData) ([]byte, error) {
	g.last = data
	return []byte("%PDF-fake"), nil
}

type fakeEmail struct {
	to, dealNumber string
	attachment     []byte
}

func (e *fakeEmail) SendContract(to, _ string, dealNumber string, doc []byte) error {
	e.to, e.dealNumber, e.attachment = to, dealNumber, doc
	return nil
}

type fakeSender struct {
	msgs []tgbotapi.MessageConfig
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		s.msgs = append(s.msgs, m)
	}
	return tgbotapi.Message{}, nil
}

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
