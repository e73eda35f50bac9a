package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sarrafbook/ledger/internal/jalali"
	"github.com/sarrafbook/ledger/internal/ledger"
	"github.com/sarrafbook/ledger/internal/logger"
	"github.com/sarrafbook/ledger/internal/models"
	"github.com/sarrafbook/ledger/internal/services"
)

// StatementJob is the queue message of a customer statement export.
type StatementJob struct {
	UserID     string `json:"user_id"`
	CustomerID string `json:"customer_id"`
}

// HandleRequestStatement handles POST /api/customers/{id}/statement. The
// workbook is built in the background and its link e-mailed.
func (d *Dependencies) HandleRequestStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if _, err := d.Ledger.Customer(r.Context(), userID, id); err != nil {
		writeLedgerError(w, r, "Failed to get customer", err)
		return
	}

	job := StatementJob{UserID: userID, CustomerID: id}
	if err := d.Queue.EnqueueMessage(r.Context(), d.Config.StatementQueue, job); err != nil {
		logger.FromContext(r.Context()).Error("failed to enqueue statement job", "queue", d.Config.StatementQueue, "customer_id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to enqueue message: "+err.Error())
		return
	}
	logger.FromContext(r.Context()).Info("statement job queued", "customer_id", id)
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// ExportStatement handles the queue trigger of a statement export.
func (d *Dependencies) ExportStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var job StatementJob
	if err := decodeQueueItem(r, &job); err != nil {
		logger.FromContext(ctx).Error("failed to decode statement job", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if job.UserID == "" || job.CustomerID == "" {
		WriteError(w, http.StatusBadRequest, "Missing user_id or customer_id")
		return
	}
	log := logger.FromContext(ctx).With("user_id", job.UserID, "customer_id", job.CustomerID)

	customer, err := d.Ledger.Customer(ctx, job.UserID, job.CustomerID)
	if err != nil {
		log.Error("failed to get customer", "error", err)
		WriteError(w, statusFor(err), "Failed to get customer")
		return
	}
	all, err := d.Ledger.Transactions(ctx, job.UserID)
	if err != nil {
		log.Error("failed to get transactions", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to get transactions")
		return
	}

	own := ledger.CustomerTransactions(all, customer.ID)
	txs := make([]models.Transaction, 0, len(own))
	for _, t := range own {
		full, err := d.Ledger.Transaction(ctx, job.UserID, t.ID)
		if err != nil {
			log.Error("failed to load transaction", "transaction_id", t.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to load transaction")
			return
		}
		txs = append(txs, full)
	}

	data, err := services.RenderStatement(services.Statement{
		Customer:     customer,
		Transactions: txs,
		Date:         jalali.Today(),
	})
	if err != nil {
		log.Error("failed to render statement", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to render statement")
		return
	}

	container := d.Config.StatementsContainer
	blobName := fmt.Sprintf("%s/%s-%s.xlsx", job.UserID, customer.ID, time.Now().UTC().Format("20060102-150405"))
	if err := d.Blob.Upload(ctx, container, blobName, services.XLSXContentType, data); err != nil {
		log.Error("failed to upload statement", "container", container, "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to upload statement")
		return
	}
	link := d.Blob.URL(container, blobName)
	log.Info("statement uploaded", "blob_name", blobName, "transactions", len(txs), "size_bytes", len(data))

	if to := d.notify(); to != nil {
		if err := d.Email.SendStatementReady(ctx, to, customer.Name, link); err != nil {
			log.Error("failed to send statement e-mail", "error", err)
		}
	}
	w.WriteHeader(http.StatusOK)
}
