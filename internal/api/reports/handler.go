package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"plutus/internal/domain/prefs"
	"plutus/internal/domain/report"
	"plutus/internal/domain/trade"
	"plutus/internal/export"
	reportservice "plutus/internal/services/report"
	"plutus/pkg/errors"
	"plutus/pkg/logger"
)

const (
	userIDHeader    = "X-User-ID"
	defaultPageSize = 25
	maxPageSize     = 200
)

// Service is the report service surface the handler depends on
type Service interface {
	GetReport(ctx context.Context, userID uuid.UUID, period trade.Period, filter trade.Filter) (*report.Report, error)
	Export(ctx context.Context, userID uuid.UUID, period trade.Period, filter trade.Filter, format export.Format) (*reportservice.ExportResult, error)
	GetPreferences(ctx context.Context, userID uuid.UUID) (*prefs.Preferences, error)
	SavePreferences(ctx context.Context, p *prefs.Preferences) error
}

// Handler serves the P&L report endpoints
type Handler struct {
	service Service
	limiter *ExportLimiter
	log     *logger.Logger
}

// NewHandler creates a new report API handler
func NewHandler(service Service, limiter *ExportLimiter, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		limiter: limiter,
		log:     log.With("handler", "reports"),
	}
}

// Register wires the report routes onto the mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/reports/pnl", h.HandleGetReport)
	mux.HandleFunc("/api/v1/reports/pnl/export", h.HandleExport)
	mux.HandleFunc("/api/v1/reports/preferences", h.HandlePreferences)
}

// reportResponse is the pnl endpoint payload: headline metrics, the chart
// series and one page of transaction rows.
type reportResponse struct {
	report.Report
	Transactions []report.Transaction `json:"transactions"`
	Pagination   pagination           `json:"pagination"`
}

type pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalRows  int `json:"total_rows"`
	TotalPages int `json:"total_pages"`
}

// HandleGetReport serves GET /api/v1/reports/pnl
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	period, filter, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.GetReport(r.Context(), userID, period, filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	sorted := report.SortTransactions(result.Transactions,
		report.SortField(queryOr(r, "sort", string(report.SortByDate))),
		report.SortDirection(queryOr(r, "dir", string(report.SortDesc))))

	page, pageSize := parsePagination(r)
	totalRows := len(sorted)

	resp := reportResponse{
		Report:       *result,
		Transactions: report.Paginate(sorted, page, pageSize),
		Pagination: pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalRows:  totalRows,
			TotalPages: (totalRows + pageSize - 1) / pageSize,
		},
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleExport serves GET /api/v1/reports/pnl/export
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if !h.limiter.Allow(userID) {
		writeError(w, http.StatusTooManyRequests, "export rate limit exceeded")
		return
	}

	format, err := export.ParseFormat(queryOr(r, "format", string(export.FormatCSV)))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	period, filter, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Export(r.Context(), userID, period, filter, format)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

// HandlePreferences serves GET and PUT /api/v1/reports/preferences
func (h *Handler) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.service.GetPreferences(r.Context(), userID)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case http.MethodPut:
		var p prefs.Preferences
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p.UserID = userID

		if err := h.service.SavePreferences(r.Context(), &p); err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid "+userIDHeader+" header")
		return uuid.Nil, false
	}

	return userID, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrInvalidPeriod), errors.Is(err, errors.ErrInvalidInput),
		errors.Is(err, errors.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errors.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errors.ErrFetchFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.log.Error("Report request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseQuery extracts the period and filter from query parameters.
// Missing period parameters default to the current month.
func parseQuery(r *http.Request) (trade.Period, trade.Filter, error) {
	period := trade.CurrentMonth(time.Now())

	if mode := r.URL.Query().Get("mode"); mode != "" {
		period.Mode = trade.ViewMode(mode)
	}
	if rawYear := r.URL.Query().Get("year"); rawYear != "" {
		year, err := strconv.Atoi(rawYear)
		if err != nil {
			return trade.Period{}, trade.Filter{}, errors.Wrapf(errors.ErrInvalidPeriod, "bad year %q", rawYear)
		}
		period.Year = year
	}
	if rawMonth := r.URL.Query().Get("month"); rawMonth != "" {
		month, err := strconv.Atoi(rawMonth)
		if err != nil {
			return trade.Period{}, trade.Filter{}, errors.Wrapf(errors.ErrInvalidPeriod, "bad month %q", rawMonth)
		}
		period.Month = time.Month(month)
	}

	if err := period.Validate(); err != nil {
		return trade.Period{}, trade.Filter{}, err
	}

	filter := trade.Filter{
		Exchange:    r.URL.Query().Get("exchange"),
		TradingPair: r.URL.Query().Get("pair"),
		Strategy:    r.URL.Query().Get("strategy"),
	}

	return period, filter, nil
}

func parsePagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return page, pageSize
}

func queryOr(r *http.Request, key, fallback string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, map[string]string{"error": msg})
}
