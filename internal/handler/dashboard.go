package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/sarrafbook/ledger/internal/jalali"
	"github.com/sarrafbook/ledger/internal/ledger"
	"github.com/sarrafbook/ledger/internal/models"
	"github.com/sarrafbook/ledger/internal/numerals"
	"github.com/sarrafbook/ledger/internal/reconcile"
)

// DashboardView is the transaction list page: totals over every trade and
// the list narrowed by the q and status filters.
type DashboardView struct {
	Stats        ledger.Dashboard     `json:"stats"`
	Transactions []models.Transaction `json:"transactions"`
}

// ReconcileResult is a reconciled amount/rate/total triple.
type ReconcileResult struct {
	reconcile.Fields
	Mismatch bool `json:"mismatch"`
}

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Date      string `json:"date,omitempty"`
	Day       int    `json:"day,omitempty"`
	Blank     bool   `json:"blank,omitempty"`
	HasRecord bool   `json:"has_record,omitempty"`
	Today     bool   `json:"today,omitempty"`
	Selected  bool   `json:"selected,omitempty"`
}

// CalendarView is the calendar page for one month and one selected day.
type CalendarView struct {
	Title        string               `json:"title"`
	Month        string               `json:"month"`
	Prev         string               `json:"prev"`
	Next         string               `json:"next"`
	Weekdays     [7]string            `json:"weekdays"`
	Days         []CalendarDay        `json:"days"`
	Selected     string               `json:"selected"`
	Transactions []models.Transaction `json:"transactions"`
	Stats        ledger.Totals        `json:"stats"`
}

// HandleDashboard handles GET /api/dashboard.
func (d *Dependencies) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	txs, err := d.Ledger.Transactions(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, r, "Failed to get transactions", err)
		return
	}
	list, ok := listQuery(r, txs)
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	WriteJSON(w, http.StatusOK, DashboardView{
		Stats:        ledger.DashboardStats(txs),
		Transactions: list,
	})
}

// HandleReconcile handles POST /api/reconcile. It completes the triple and
// flags a filled triple that violates amount * rate = total.
func (d *Dependencies) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	var in reconcile.Fields
	if !decodeJSON(w, r, &in) {
		return
	}
	out := in.Reconcile()
	WriteJSON(w, http.StatusOK, ReconcileResult{Fields: out, Mismatch: out.Mismatch()})
}

// parseMonth reads a "YYYY/MM" or full date month parameter.
func parseMonth(s string) (jalali.Date, error) {
	s = strings.TrimSpace(numerals.ToLatin(s))
	if strings.Count(s, "/") == 1 {
		s += "/01"
	}
	d, err := jalali.ParseStrict(s)
	if err != nil {
		return jalali.Date{}, err
	}
	return jalali.StartOfMonth(d), nil
}

func monthKey(d jalali.Date) string {
	return fmt.Sprintf("%04d/%02d", d.Year, d.Month)
}

// HandleCalendar handles GET /api/calendar?month=&selected=. The selected day
// defaults to today and the month to the selected day's month.
func (d *Dependencies) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}

	selected := jalali.TodayDate()
	if s := r.URL.Query().Get("selected"); s != "" {
		parsed, err := jalali.ParseStrict(s)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		selected = parsed
	}
	month := jalali.StartOfMonth(selected)
	if s := r.URL.Query().Get("month"); s != "" {
		parsed, err := parseMonth(s)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		month = parsed
	}

	txs, err := d.Ledger.Transactions(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, r, "Failed to get transactions", err)
		return
	}
	dates := ledger.TransactionDates(txs)

	grid := jalali.MonthGrid(month)
	days := make([]CalendarDay, 0, len(grid))
	for _, c := range grid {
		if c.Blank {
			days = append(days, CalendarDay{Blank: true})
			continue
		}
		days = append(days, CalendarDay{
			Date:      c.Date.String(),
			Day:       c.Date.Day,
			HasRecord: jalali.HasRecord(c.Date, dates),
			Today:     jalali.IsToday(c.Date),
			Selected:  c.Date == selected,
		})
	}

	day := selected.String()
	list := ledger.TransactionsOnDay(txs, day)
	if list == nil {
		list = []models.Transaction{}
	}
	WriteJSON(w, http.StatusOK, CalendarView{
		Title:        jalali.MonthTitle(month),
		Month:        monthKey(month),
		Prev:         monthKey(jalali.SubtractMonths(month, 1)),
		Next:         monthKey(jalali.AddMonths(month, 1)),
		Weekdays:     jalali.WeekdayLabels,
		Days:         days,
		Selected:     day,
		Transactions: list,
		Stats:        ledger.DailyStats(txs, day),
	})
}
