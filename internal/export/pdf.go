package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"

	"plutus/internal/domain/report"
	"plutus/internal/domain/trade"
	"plutus/pkg/errors"
)

// DefaultPDFTableRows caps the transaction table in the one-page summary.
// The CSV export carries the full set.
const DefaultPDFTableRows = 15

const taxDisclosure = "This report is generated for informational purposes only and does not " +
	"constitute tax, legal or investment advice. Realized gains and fees are " +
	"reported as recorded at execution time. Consult a qualified tax " +
	"professional before filing."

// Compile-time check
var _ Renderer = (*PDFRenderer)(nil)

// PDFRenderer produces the one-page P&L summary: headline metrics, a capped
// transaction table and the disclosure block.
type PDFRenderer struct {
	maxRows int
}

// NewPDFRenderer creates a new PDF renderer. rows <= 0 falls back to the
// default cap.
func NewPDFRenderer(rows int) *PDFRenderer {
	if rows <= 0 {
		rows = DefaultPDFTableRows
	}
	return &PDFRenderer{maxRows: rows}
}

// Render produces the PDF artifact
func (p *PDFRenderer) Render(_ context.Context, r *report.Report, period trade.Period) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	p.writeHeader(pdf, period)
	p.writeMetrics(pdf, r)
	p.writeTable(pdf, r)
	p.writeDisclosure(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrExportFailed, err.Error())
	}

	return buf.Bytes(), nil
}

func (p *PDFRenderer) writeHeader(pdf *gofpdf.Fpdf, period trade.Period) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "P&L Report")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 8, period.Label())
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(12)
}

func (p *PDFRenderer) writeMetrics(pdf *gofpdf.Fpdf, r *report.Report) {
	metrics := []struct {
		label string
		value string
	}{
		{"Total Profit", money(r.TotalProfit.InexactFloat64())},
		{"Realized Gains", money(r.RealizedGains.InexactFloat64())},
		{"Total Fees", money(r.TotalFees.InexactFloat64())},
		{"Win Rate", fmt.Sprintf("%.1f%%", r.WinRate)},
		{"Trades", humanize.Comma(int64(r.TradeCount))},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, m := range metrics {
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(40, 7, m.label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 7, m.value, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}
	pdf.Ln(6)
}

func (p *PDFRenderer) writeTable(pdf *gofpdf.Fpdf, r *report.Report) {
	rows := r.Transactions
	capped := false
	if len(rows) > p.maxRows {
		rows = rows[:p.maxRows]
		capped = true
	}

	widths := []float64{24, 34, 26, 26, 26, 28, 22}
	headers := []string{"Date", "Symbol", "Exchange", "Buy", "Sell", "Profit", "ROI"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, tx := range rows {
		cells := []string{
			tx.ExecutedAt.UTC().Format("2006-01-02"),
			tx.Symbol,
			tx.Exchange,
			money(tx.BuyPrice.InexactFloat64()),
			money(tx.SellPrice.InexactFloat64()),
			money(tx.Profit.InexactFloat64()),
			fmt.Sprintf("%.1f%%", tx.ROI.InexactFloat64()),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if capped {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 6,
			fmt.Sprintf("Showing first %d of %s transactions. Export CSV for the full list.",
				p.maxRows, humanize.Comma(int64(r.TradeCount))),
			"", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(6)
}

func (p *PDFRenderer) writeDisclosure(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 4, taxDisclosure, "", "L", false)
	pdf.SetTextColor(0, 0, 0)
}

func money(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}
