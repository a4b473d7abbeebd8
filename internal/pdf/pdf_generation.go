package pdf

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator renders contract documents (easy to mock in tests).
type Generator interface {
	RenderContract(data ContractData) ([]byte, error)
}

// DocumentGenerator draws A4 contracts with gofpdf.
type DocumentGenerator struct {
	CompanyName string
	FontPath    string // optional UTF-8 TTF; core Helvetica otherwise
	fontName    string
}

type ContractData struct {
	DealNumber  string
	ClientName  string
	ClientPhone string
	ServiceType string
	WorkerName  string
	DealValue   float64
	VATRate     float64
	VATAmount   float64
	TotalAmount float64
	PaidAmount  float64
	BalanceDue  float64
	StartDate   *time.Time
	EndDate     *time.Time
	CreatedAt   time.Time

	// Receivables block; omitted when the contract is not projected.
	Projection *ProjectionData
}

type ProjectionData struct {
	MonthlyAmount   float64
	CurrentAR       float64
	FutureAR        float64
	MonthsRemaining int
	NextPaymentDate time.Time
}

func NewDocumentGenerator(companyName, fontPath string) *DocumentGenerator {
	g := &DocumentGenerator{CompanyName: companyName, fontName: "Helvetica"}
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err == nil {
			g.FontPath = fontPath
			g.fontName = "DejaVu"
		}
	}
	return g
}

func (g *DocumentGenerator) RenderContract(data ContractData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Contract "+data.DealNumber, true)
	pdf.SetAuthor(g.CompanyName, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	g.addUTF8Font(pdf)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "SERVICE CONTRACT", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("No. %s  dated  %s", data.DealNumber, data.CreatedAt.Format("02.01.2006")),
		"", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.sectionTitle(pdf, "Parties")
	g.kvLine(pdf, "Agency", g.CompanyName)
	g.kvLine(pdf, "Client", data.ClientName)
	g.kvLine(pdf, "Phone", data.ClientPhone)
	if data.WorkerName != "" {
		g.kvLine(pdf, "Worker", data.WorkerName)
	}
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Service and term")
	g.kvLine(pdf, "Service", data.ServiceType)
	g.kvLine(pdf, "Start date", formatDate(data.StartDate))
	g.kvLine(pdf, "End date", formatDate(data.EndDate))
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Amounts")
	g.kvLine(pdf, "Deal value", money(data.DealValue))
	g.kvLine(pdf, fmt.Sprintf("VAT (%.2f%%)", data.VATRate), money(data.VATAmount))
	g.kvLine(pdf, "Total", money(data.TotalAmount))
	g.kvLine(pdf, "Paid", money(data.PaidAmount))
	g.kvLine(pdf, "Balance due", money(data.BalanceDue))

	if p := data.Projection; p != nil {
		pdf.Ln(2)
		g.hr(pdf)
		g.sectionTitle(pdf, "Receivables")
		g.kvLine(pdf, "Monthly amount", money(p.MonthlyAmount))
		g.kvLine(pdf, "Overdue now", money(p.CurrentAR))
		g.kvLine(pdf, "Not yet due", money(p.FutureAR))
		g.kvLine(pdf, "Months remaining", fmt.Sprintf("%d", p.MonthsRemaining))
		g.kvLine(pdf, "Next payment", p.NextPaymentDate.Format("02.01.2006"))
	}
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Signatures")
	pdf.Ln(6)
	lineY := pdf.GetY()
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(80, 6, "Agency", "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(80, 6, "Client", "", 1, "L", false, 0, "")
	pdf.SetLineWidth(0.3)
	pdf.Line(20, lineY+14, 100, lineY+14)
	pdf.Line(130, lineY+14, 190, lineY+14)

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render contract %s: %w", data.DealNumber, err)
	}
	return buf.Bytes(), nil
}

func (g *DocumentGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *DocumentGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(50, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *DocumentGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func (g *DocumentGenerator) addUTF8Font(pdf *gofpdf.Fpdf) {
	if g.FontPath == "" {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02.01.2006")
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
