package export

import (
	"context"
	"fmt"

	"plutus/internal/domain/report"
	"plutus/internal/domain/trade"
	"plutus/pkg/errors"
)

// Format is an export artifact type
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat validates a requested format string
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatPDF:
		return Format(s), nil
	}
	return "", errors.Wrapf(errors.ErrUnsupportedFormat, "format %q", s)
}

// ContentType returns the MIME type for download responses
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// Renderer turns a computed report into a downloadable artifact
type Renderer interface {
	Render(ctx context.Context, r *report.Report, period trade.Period) ([]byte, error)
}

// Filename builds the download name: pnl-report-monthly-2025-07.csv,
// pnl-report-yearly-2025.pdf. The month segment appears only in monthly mode.
func Filename(period trade.Period, format Format) string {
	if period.Mode == trade.ViewMonthly {
		return fmt.Sprintf("pnl-report-%s-%d-%02d.%s", period.Mode, period.Year, int(period.Month), format)
	}
	return fmt.Sprintf("pnl-report-%s-%d.%s", period.Mode, period.Year, format)
}

// Registry maps formats to their renderers, built once at startup.
type Registry map[Format]Renderer

// NewRegistry wires the default CSV and PDF renderers.
func NewRegistry(pdfTableRows int) Registry {
	return Registry{
		FormatCSV: NewCSVRenderer(),
		FormatPDF: NewPDFRenderer(pdfTableRows),
	}
}

// Get returns the renderer for a format.
func (reg Registry) Get(f Format) (Renderer, error) {
	r, ok := reg[f]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "format %q", f)
	}
	return r, nil
}
