package services

import (
	"math"
	"time"

	"agencycrm/internal/models"
	"agencycrm/internal/utils"
)

// DefaultContractMonths is assumed when a contract has no end date or its
// dates give a zero-length term.
const DefaultContractMonths = 24

// ARProjection is a point-in-time receivables view of one contract.
// It is derived for reporting and never persisted.
type ARProjection struct {
	ContractID            string    `json:"contract_id"`
	DealNumber            string    `json:"deal_number"`
	ClientName            string    `json:"client_name"`
	TotalAmount           float64   `json:"total_amount"`
	MonthsElapsed         int       `json:"months_elapsed"`
	MonthsRemaining       int       `json:"months_remaining"`
	MonthlyAmount         float64   `json:"monthly_amount"`
	ExpectedRevenueToDate float64   `json:"expected_revenue_to_date"`
	TotalPaid             float64   `json:"total_paid"`
	CurrentAR             float64   `json:"current_ar"`
	FutureAR              float64   `json:"future_ar"`
	NextPaymentDate       time.Time `json:"next_payment_date"`
}

// ARSummary totals projections for the finance dashboard.
type ARSummary struct {
	Contracts             int     `json:"contracts"`
	TotalContracted       float64 `json:"total_contracted"`
	ExpectedRevenueToDate float64 `json:"expected_revenue_to_date"`
	TotalPaid             float64 `json:"total_paid"`
	CurrentAR             float64 `json:"current_ar"`
	FutureAR              float64 `json:"future_ar"`
}

// Eligible reports whether a contract takes part in A/R projection.
func Eligible(c models.Contract) bool {
	return c.Status == models.ContractActive && c.StartDate != nil
}

// Project computes a straight-line monthly receivable position as of asOf.
// Callers filter with Eligible first; Project itself never fails.
func Project(c models.Contract, payments []models.Payment, asOf time.Time) ARProjection {
	total := utils.Amount(c.TotalAmount)

	totalPaid := utils.Amount(c.PaidAmount)
	if len(payments) > 0 {
		totalPaid = 0
		for _, p := range payments {
			totalPaid += utils.Amount(p.Amount)
		}
	}

	start := asOf
	if c.StartDate != nil {
		start = *c.StartDate
	}
	end := start.AddDate(0, DefaultContractMonths, 0)
	if c.EndDate != nil {
		end = *c.EndDate
	}

	duration := utils.MonthsBetween(start, end)
	if duration <= 0 {
		duration = DefaultContractMonths
	}
	elapsed := max(0, utils.MonthsBetween(start, asOf))

	monthly := total / float64(duration)
	expectedMonths := min(elapsed, duration)

	// A non-positive cadence reports the whole contract as due now.
	expected := total
	if monthly > 0 {
		expected = monthly * float64(expectedMonths)
	}

	currentAR := math.Max(0, expected-totalPaid)
	remaining := total - totalPaid
	futureAR := math.Max(0, remaining-currentAR)

	return ARProjection{
		ContractID:            c.ID,
		DealNumber:            c.DealNumber,
		ClientName:            c.ClientName,
		TotalAmount:           total,
		MonthsElapsed:         elapsed,
		MonthsRemaining:       max(0, duration-elapsed),
		MonthlyAmount:         monthly,
		ExpectedRevenueToDate: expected,
		TotalPaid:             totalPaid,
		CurrentAR:             currentAR,
		FutureAR:              futureAR,
		NextPaymentDate:       utils.FirstOfNextMonth(asOf),
	}
}

func Summarize(projections []ARProjection) ARSummary {
	var s ARSummary
	for _, p := range projections {
		s.Contracts++
		s.TotalContracted += p.TotalAmount
		s.ExpectedRevenueToDate += p.ExpectedRevenueToDate
		s.TotalPaid += p.TotalPaid
		s.CurrentAR += p.CurrentAR
		s.FutureAR += p.FutureAR
	}
	return s
}
