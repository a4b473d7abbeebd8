package models

import "time"

type ContractStatus string

const (
	ContractDraft     ContractStatus = "Draft"
	ContractActive    ContractStatus = "Active"
	ContractClosed    ContractStatus = "Closed"
	ContractCancelled ContractStatus = "Cancelled"
	ContractVoid      ContractStatus = "Void"
)

// Contract is a signed deal with a client.
type Contract struct {
	ID          string         `json:"id"`
	DealNumber  string         `json:"deal_number"`
	LeadID      *string        `json:"lead_id,omitempty"`
	OwnerID     int            `json:"owner_id"`
	ClientName  string         `json:"client_name"`
	ClientPhone string         `json:"client_phone"`
	ClientEmail *string        `json:"client_email,omitempty"`
	ServiceType string         `json:"service_type"`
	DealValue   float64        `json:"deal_value"`
	VATRate     float64        `json:"vat_rate"`
	VATAmount   float64        `json:"vat_amount"`
	TotalAmount float64        `json:"total_amount"`
	PaidAmount  float64        `json:"paid_amount"`
	BalanceDue  float64        `json:"balance_due"`
	Status      ContractStatus `json:"status"`
	StartDate   *time.Time     `json:"start_date"`
	EndDate     *time.Time     `json:"end_date"`
	WorkerID    *string        `json:"worker_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	ClosedAt    *time.Time     `json:"closed_at,omitempty"`
}

type ContractFilter struct {
	Status   *ContractStatus
	OwnerID  *int
	HasStart bool
	Limit    int
	Offset   int
}

// Payment is immutable once recorded; only an admin may delete it.
type Payment struct {
	ID          string    `json:"id"`
	ContractID  string    `json:"contract_id"`
	Amount      float64   `json:"amount"`
	PaymentDate time.Time `json:"payment_date"`
	Method      *string   `json:"method,omitempty"`
	Reference   *string   `json:"reference,omitempty"`
	BankAccount *string   `json:"bank_account,omitempty"`
	CreatedBy   int       `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
