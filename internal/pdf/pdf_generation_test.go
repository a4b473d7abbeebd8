package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderContract(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewDocumentGenerator("Test Agency", "does/not/exist.ttf")
	assert.Empty(t, g.FontPath)

	out, err := g.RenderContract(ContractData{
		DealNumber:  "DL-20250101-ABC123",
		ClientName:  "Jane Client",
		ClientPhone: "+971500000000",
		ServiceType: "Live-in housemaid",
		DealValue:   10000,
		VATRate:     5,
		VATAmount:   500,
		TotalAmount: 10500,
		BalanceDue:  10500,
		StartDate:   &start,
		CreatedAt:   start,
		Projection: &ProjectionData{
			MonthlyAmount:   437.5,
			MonthsRemaining: 24,
			NextPaymentDate: start.AddDate(0, 1, 0),
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
