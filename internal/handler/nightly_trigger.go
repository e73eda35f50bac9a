package handler

import (
	"net/http"

	"github.com/sarrafbook/ledger/internal/jalali"
	"github.com/sarrafbook/ledger/internal/ledger"
	"github.com/sarrafbook/ledger/internal/logger"
	"github.com/sarrafbook/ledger/internal/services"
)

// HandleNightlyTrigger e-mails the summary of today's trades (today in the
// calendar time zone) for the default user.
func (d *Dependencies) HandleNightlyTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	log.Info("starting nightly trigger processing")

	to := d.notify()
	if to == nil {
		log.Warn("USER_EMAIL or e-mail service not configured; skipping daily summary")
		w.WriteHeader(http.StatusOK)
		return
	}
	userID := d.Config.DefaultUserID
	if userID == "" {
		log.Warn("DEFAULT_USER_ID is not set; skipping daily summary")
		w.WriteHeader(http.StatusOK)
		return
	}

	txs, err := d.Ledger.Transactions(ctx, userID)
	if err != nil {
		log.Error("failed to fetch transactions", "user_id", userID, "error", err)
		http.Error(w, "Failed to fetch transactions", http.StatusInternalServerError)
		return
	}

	today := jalali.Today()
	stats := ledger.DailyStats(txs, today)
	summary := services.DailySummary{
		Date:       today,
		TotalValue: stats.Total,
		Received:   stats.Received,
		Remaining:  stats.Remaining,
	}
	for _, t := range ledger.TransactionsOnDay(txs, today) {
		name := ""
		if t.Customer != nil {
			name = t.Customer.Name
		}
		summary.Lines = append(summary.Lines, services.SummaryLine{
			Customer: name,
			Type:     t.Type.Label(),
			Amount:   t.Amount,
			Currency: t.Currency,
			Total:    t.TotalValue,
			Status:   t.Progress().Label(),
		})
	}

	if err := d.Email.SendDailySummary(ctx, to, summary); err != nil {
		log.Error("failed to send daily summary", "date", today, "error", err)
		http.Error(w, "Failed to send daily summary", http.StatusInternalServerError)
		return
	}
	log.Info("nightly trigger processing complete", "date", today, "transactions", stats.Count)
	w.WriteHeader(http.StatusOK)
}
