package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReceivablesWorkbook(t *testing.T) {
	report := &ReceivablesReport{
		AsOf: date(2025, 5, 20),
		Contracts: []ARProjection{
			{DealNumber: "DL-1", ClientName: "A", TotalAmount: 24000, MonthlyAmount: 1000, CurrentAR: 2000.004, FutureAR: 12000, NextPaymentDate: date(2025, 6, 1)},
			{DealNumber: "DL-2", ClientName: "B", TotalAmount: 1200, MonthlyAmount: 100, NextPaymentDate: date(2025, 6, 1)},
		},
	}
	report.Summary = Summarize(report.Contracts)

	out, err := ReceivablesWorkbook(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	for cell, want := range map[string]string{"A1": "Deal number", "A3": "DL-2", "A5": "TOTAL", "B5": "2 contracts"} {
		got, err := f.GetCellValue(receivablesSheet, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}

	v, err := f.GetCellValue(receivablesSheet, "I2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "2000", v)
}

func TestReceivablesWorkbook_Empty(t *testing.T) {
	out, err := ReceivablesWorkbook(&ReceivablesReport{AsOf: date(2025, 5, 20)})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
