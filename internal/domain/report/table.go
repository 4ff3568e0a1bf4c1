package report

import (
	"sort"
	"strings"
)

// SortField selects a detail-table column to sort by
type SortField string

const (
	SortByDate     SortField = "date"
	SortBySymbol   SortField = "symbol"
	SortByExchange SortField = "exchange"
	SortByProfit   SortField = "profit"
	SortByROI      SortField = "roi"
	SortByQuantity SortField = "quantity"
)

// SortDirection is ascending or descending
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortTransactions returns a stably sorted copy of rows. Ties keep their
// original order. Date sorting compares the retained ExecutedAt timestamp,
// never the display label.
func SortTransactions(rows []Transaction, field SortField, dir SortDirection) []Transaction {
	out := make([]Transaction, len(rows))
	copy(out, rows)

	less := lessFunc(out, field)
	if less == nil {
		return out
	}

	if dir == SortDesc {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}

	sort.SliceStable(out, less)
	return out
}

func lessFunc(rows []Transaction, field SortField) func(i, j int) bool {
	switch field {
	case SortByDate:
		return func(i, j int) bool { return rows[i].ExecutedAt.Before(rows[j].ExecutedAt) }
	case SortBySymbol:
		return func(i, j int) bool { return strings.Compare(rows[i].Symbol, rows[j].Symbol) < 0 }
	case SortByExchange:
		return func(i, j int) bool { return strings.Compare(rows[i].Exchange, rows[j].Exchange) < 0 }
	case SortByProfit:
		return func(i, j int) bool { return rows[i].Profit.LessThan(rows[j].Profit) }
	case SortByROI:
		return func(i, j int) bool { return rows[i].ROI.LessThan(rows[j].ROI) }
	case SortByQuantity:
		return func(i, j int) bool { return rows[i].Quantity.LessThan(rows[j].Quantity) }
	}
	return nil
}

// Paginate slices sorted rows into the requested 1-based page. A page past
// the end yields an empty slice, not an error.
func Paginate(rows []Transaction, page, pageSize int) []Transaction {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 25
	}

	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []Transaction{}
	}

	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
