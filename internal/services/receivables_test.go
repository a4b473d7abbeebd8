package services

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"

	"agencycrm/internal/models"
)

var asOf = date(2025, time.June, 18)

func activeContract(total float64, start, end *time.Time) models.Contract {
	return models.Contract{
		ID:          "c1",
		DealNumber:  "DL-20240618-AAAAAA",
		ClientName:  "Client",
		TotalAmount: total,
		Status:      models.ContractActive,
		StartDate:   start,
		EndDate:     end,
	}
}

func TestProject_TwelveOfTwentyFourMonths(t *testing.T) {
	c := activeContract(24000, ptr(asOf.AddDate(0, -12, 0)), nil)
	payments := []models.Payment{{Amount: 6000}, {Amount: 4000}}

	got := Project(c, payments, asOf)
	want := ARProjection{
		ContractID:            "c1",
		DealNumber:            "DL-20240618-AAAAAA",
		ClientName:            "Client",
		TotalAmount:           24000,
		MonthsElapsed:         12,
		MonthsRemaining:       12,
		MonthlyAmount:         1000,
		ExpectedRevenueToDate: 12000,
		TotalPaid:             10000,
		CurrentAR:             2000,
		FutureAR:              12000,
		NextPaymentDate:       date(2025, time.July, 1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("projection mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_ZeroDurationFallsBackToDefault(t *testing.T) {
	c := activeContract(5000, ptr(asOf), ptr(asOf))
	c.PaidAmount = 1500

	got := Project(c, nil, asOf)
	assert.Equal(t, 0, got.MonthsElapsed)
	assert.Equal(t, DefaultContractMonths, got.MonthsRemaining)
	assert.InDelta(t, 5000.0/24, got.MonthlyAmount, 1e-9)
	assert.Zero(t, got.ExpectedRevenueToDate)
	assert.Zero(t, got.CurrentAR)
	assert.Equal(t, 1500.0, got.TotalPaid, "falls back to paid_amount")
	assert.Equal(t, 3500.0, got.FutureAR)
}

func TestProject_ZeroTotalIsDueNow(t *testing.T) {
	got := Project(activeContract(0, ptr(asOf.AddDate(0, -3, 0)), nil), nil, asOf)
	assert.Zero(t, got.MonthlyAmount)
	assert.Zero(t, got.ExpectedRevenueToDate)
	assert.Zero(t, got.CurrentAR)
	assert.Zero(t, got.FutureAR)
}

func TestProject_NonNumericTotalIsZero(t *testing.T) {
	got := Project(activeContract(math.NaN(), ptr(asOf.AddDate(0, -3, 0)), nil), nil, asOf)
	assert.Zero(t, got.TotalAmount)
	assert.Zero(t, got.CurrentAR)
	assert.Zero(t, got.FutureAR)
}

func TestProject_PastEndCapsExpected(t *testing.T) {
	start := date(2023, time.January, 10)
	end := date(2024, time.January, 10)
	got := Project(activeContract(12000, &start, &end), nil, asOf)

	assert.Equal(t, 29, got.MonthsElapsed)
	assert.Zero(t, got.MonthsRemaining)
	assert.Equal(t, 12000.0, got.ExpectedRevenueToDate)
	assert.Equal(t, 12000.0, got.CurrentAR)
	assert.Zero(t, got.FutureAR)
}

func TestProject_FutureStartHasNothingDue(t *testing.T) {
	got := Project(activeContract(2400, ptr(asOf.AddDate(0, 2, 0)), nil), nil, asOf)
	assert.Zero(t, got.MonthsElapsed)
	assert.Zero(t, got.CurrentAR)
	assert.Equal(t, 2400.0, got.FutureAR)
}

func TestProject_OverpaymentNeverNegative(t *testing.T) {
	c := activeContract(1200, ptr(asOf.AddDate(0, -6, 0)), ptr(asOf.AddDate(0, 6, 0)))
	got := Project(c, []models.Payment{{Amount: 5000}}, asOf)
	assert.Zero(t, got.CurrentAR)
	assert.Zero(t, got.FutureAR)
}

func TestProject_Idempotent(t *testing.T) {
	c := activeContract(9999.99, ptr(asOf.AddDate(0, -7, 0)), ptr(asOf.AddDate(0, 11, 0)))
	payments := []models.Payment{{Amount: 100.10}, {Amount: 2000}}
	first := Project(c, payments, asOf)
	second := Project(c, payments, asOf)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second call differs:\n%s", diff)
	}
}

func TestProject_PaymentsMonotonic(t *testing.T) {
	c := activeContract(24000, ptr(asOf.AddDate(0, -12, 0)), nil)
	prev := Project(c, []models.Payment{{Amount: 0.01}}, asOf)
	for paid := 500.0; paid <= 30000; paid += 500 {
		cur := Project(c, []models.Payment{{Amount: paid}}, asOf)
		assert.LessOrEqual(t, cur.CurrentAR, prev.CurrentAR, "paid=%v", paid)
		assert.GreaterOrEqual(t, cur.FutureAR, 0.0, "paid=%v", paid)
		prev = cur
	}
}

func TestEligible(t *testing.T) {
	start := asOf
	assert.True(t, Eligible(models.Contract{Status: models.ContractActive, StartDate: &start}))
	assert.False(t, Eligible(models.Contract{Status: models.ContractActive}))
	assert.False(t, Eligible(models.Contract{Status: models.ContractDraft, StartDate: &start}))
	assert.False(t, Eligible(models.Contract{Status: models.ContractClosed, StartDate: &start}))
}

func TestSummarize(t *testing.T) {
	got := Summarize([]ARProjection{
		{TotalAmount: 100, ExpectedRevenueToDate: 50, TotalPaid: 20, CurrentAR: 30, FutureAR: 50},
		{TotalAmount: 200.5, ExpectedRevenueToDate: 10, TotalPaid: 10, FutureAR: 190.5},
	})
	want := ARSummary{Contracts: 2, TotalContracted: 300.5, ExpectedRevenueToDate: 60, TotalPaid: 30, CurrentAR: 30, FutureAR: 240.5}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}
