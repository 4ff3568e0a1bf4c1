package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(symbol, profit string, at time.Time) Transaction {
	return Transaction{
		ID:         uuid.New(),
		Symbol:     symbol,
		Exchange:   "binance",
		Profit:     decimal.RequireFromString(profit),
		Quantity:   decimal.NewFromInt(1),
		ExecutedAt: at,
	}
}

func TestSortTransactions_ProfitDesc(t *testing.T) {
	base := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	rows := []Transaction{
		row("A", "100", base),
		row("B", "-40", base.Add(time.Hour)),
		row("C", "25", base.Add(2*time.Hour)),
	}

	sorted := SortTransactions(rows, SortByProfit, SortDesc)

	require.Len(t, sorted, 3)
	assert.Equal(t, "100", sorted[0].Profit.String())
	assert.Equal(t, "25", sorted[1].Profit.String())
	assert.Equal(t, "-40", sorted[2].Profit.String())

	// input untouched
	assert.Equal(t, "100", rows[0].Profit.String())
	assert.Equal(t, "-40", rows[1].Profit.String())
}

func TestSortTransactions_ProfitAscReverses(t *testing.T) {
	base := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	rows := []Transaction{
		row("A", "100", base),
		row("B", "-40", base),
		row("C", "25", base),
	}

	sorted := SortTransactions(rows, SortByProfit, SortAsc)

	assert.Equal(t, "-40", sorted[0].Profit.String())
	assert.Equal(t, "25", sorted[1].Profit.String())
	assert.Equal(t, "100", sorted[2].Profit.String())
}

func TestSortTransactions_Stable(t *testing.T) {
	base := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	rows := []Transaction{
		row("first", "10", base),
		row("second", "10", base.Add(time.Hour)),
		row("third", "10", base.Add(2*time.Hour)),
	}

	sorted := SortTransactions(rows, SortByProfit, SortDesc)

	// equal keys keep their original order
	assert.Equal(t, "first", sorted[0].Symbol)
	assert.Equal(t, "second", sorted[1].Symbol)
	assert.Equal(t, "third", sorted[2].Symbol)
}

func TestSortTransactions_DateUsesTimestamp(t *testing.T) {
	// labels would collate wrong ("Jul 10" < "Jul 2" as strings); the
	// retained timestamp must win
	early := row("early", "1", time.Date(2025, time.July, 2, 0, 0, 0, 0, time.UTC))
	late := row("late", "1", time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC))
	early.DateLabel = "Jul 2"
	late.DateLabel = "Jul 10"

	sorted := SortTransactions([]Transaction{late, early}, SortByDate, SortAsc)

	assert.Equal(t, "early", sorted[0].Symbol)
	assert.Equal(t, "late", sorted[1].Symbol)
}

func TestSortTransactions_UnknownFieldKeepsOrder(t *testing.T) {
	base := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	rows := []Transaction{row("A", "1", base), row("B", "2", base)}

	sorted := SortTransactions(rows, SortField("bogus"), SortDesc)

	assert.Equal(t, "A", sorted[0].Symbol)
	assert.Equal(t, "B", sorted[1].Symbol)
}

func TestPaginate(t *testing.T) {
	base := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]Transaction, 0, 7)
	for i := 0; i < 7; i++ {
		rows = append(rows, row("S", "1", base.Add(time.Duration(i)*time.Hour)))
	}

	t.Run("first page", func(t *testing.T) {
		page := Paginate(rows, 1, 3)
		assert.Len(t, page, 3)
	})

	t.Run("last partial page", func(t *testing.T) {
		page := Paginate(rows, 3, 3)
		assert.Len(t, page, 1)
	})

	t.Run("past the end", func(t *testing.T) {
		page := Paginate(rows, 4, 3)
		assert.NotNil(t, page)
		assert.Empty(t, page)
	})

	t.Run("invalid page and size fall back to defaults", func(t *testing.T) {
		page := Paginate(rows, 0, 0)
		assert.Len(t, page, 7)
	})
}
