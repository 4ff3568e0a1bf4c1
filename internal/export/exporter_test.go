package export

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plutus/internal/domain/trade"
	"plutus/pkg/errors"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("xlsx")
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
}

func TestFilename(t *testing.T) {
	monthly := trade.Period{Mode: trade.ViewMonthly, Year: 2025, Month: time.July}
	yearly := trade.Period{Mode: trade.ViewYearly, Year: 2025}

	assert.Equal(t, "pnl-report-monthly-2025-07.csv", Filename(monthly, FormatCSV))
	assert.Equal(t, "pnl-report-yearly-2025.pdf", Filename(yearly, FormatPDF))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(0)

	r, err := reg.Get(FormatCSV)
	require.NoError(t, err)
	assert.IsType(t, &CSVRenderer{}, r)

	r, err = reg.Get(FormatPDF)
	require.NoError(t, err)
	assert.IsType(t, &PDFRenderer{}, r)

	_, err = reg.Get(Format("docx"))
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
}

func TestPDFRenderer(t *testing.T) {
	period := trade.Period{Mode: trade.ViewMonthly, Year: 2025, Month: time.July}

	data, err := NewPDFRenderer(DefaultPDFTableRows).Render(context.Background(), sampleReport(), period)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}
