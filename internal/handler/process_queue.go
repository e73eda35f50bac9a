package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sarrafbook/ledger/internal/csvparse"
	"github.com/sarrafbook/ledger/internal/logger"
	"github.com/sarrafbook/ledger/internal/models"
)

// invokeRequest represents the payload from Azure Functions Custom Handler.
type invokeRequest struct {
	Data     map[string]any `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// decodeQueueItem reads the queue trigger payload into v. The host delivers
// the message as a JSON string under Data.queueItem.
func decodeQueueItem(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	var invokeReq invokeRequest
	if err := json.Unmarshal(body, &invokeReq); err != nil {
		return fmt.Errorf("failed to unmarshal request: %w", err)
	}

	item, ok := invokeReq.Data["queueItem"]
	if !ok {
		if item, ok = invokeReq.Data["queueitem"]; !ok {
			return errors.New("missing queueItem in Data")
		}
	}

	var raw []byte
	switch it := item.(type) {
	case string:
		raw = []byte(it)
	case map[string]any:
		// Some hosts hand over the decoded object.
		raw, _ = json.Marshal(it)
	default:
		return errors.New("queueItem is not a string")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid queueItem JSON: %w", err)
	}
	return nil
}

// ProcessImport handles the queue trigger of a CSV import. Rows that fail to
// parse are reported by e-mail; the message is consumed either way.
func (d *Dependencies) ProcessImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var job ImportJob
	if err := decodeQueueItem(r, &job); err != nil {
		logger.FromContext(ctx).Error("failed to decode import job", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if job.BlobName == "" || job.UserID == "" {
		logger.FromContext(ctx).Warn("import job missing fields", "job", job)
		WriteError(w, http.StatusBadRequest, "Missing blob_name or user_id")
		return
	}

	log := logger.FromContext(ctx).With("user_id", job.UserID, "blob_name", job.BlobName)
	container := d.Config.UploadsContainer
	log.Info("processing import job", "container", container)

	data, err := d.Blob.Download(ctx, container, job.BlobName)
	if err != nil {
		log.Error("failed to download CSV from blob", "container", container, "error", err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to download CSV: %v", err))
		return
	}

	transactions, problems := csvparse.ParseCSV(string(data))
	log.Info("parsed CSV content", "transactions_count", len(transactions), "errors_count", len(problems))

	var saved []models.Transaction
	if len(transactions) > 0 {
		if err := d.resolveCustomers(ctx, job.UserID, transactions); err != nil {
			log.Error("failed to resolve customers", "error", err)
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to resolve customers: %v", err))
			return
		}
		saved, err = d.Ledger.ImportTransactions(ctx, job.UserID, transactions)
		if err != nil {
			log.Error("failed to save transactions", "total_count", len(transactions), "error", err)
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save transactions: %v", err))
			return
		}
		log.Info("saved new transactions", "new_count", len(saved), "total_parsed", len(transactions))
	} else if len(problems) > 0 {
		log.Warn("CSV validation failed with no valid transactions", "errors_count", len(problems))
	}

	if to := d.notify(); to != nil {
		if err := d.Email.SendImportReport(ctx, to, len(saved), problems); err != nil {
			log.Error("failed to send import report", "error", err)
		}
	}

	log.Info("import processing complete", "new_transactions_count", len(saved))
	w.WriteHeader(http.StatusOK)
}

// resolveCustomers sets CustomerID on every imported trade, matching the
// customer name case-insensitively and creating customers not seen before.
func (d *Dependencies) resolveCustomers(ctx context.Context, userID string, txs []models.Transaction) error {
	customers, err := d.Ledger.Customers(ctx, userID)
	if err != nil {
		return err
	}

	byName := make(map[string]models.Customer, len(customers))
	for _, c := range customers {
		byName[strings.ToLower(strings.TrimSpace(c.Name))] = c
	}

	for i := range txs {
		name := txs[i].Customer.Name
		key := strings.ToLower(strings.TrimSpace(name))
		c, ok := byName[key]
		if !ok {
			c, err = d.Ledger.CreateCustomer(ctx, userID, models.Customer{Name: name})
			if err != nil {
				return fmt.Errorf("customer %q: %w", name, err)
			}
			logger.FromContext(ctx).Info("customer created from import", "customer_id", c.ID, "name", name)
			byName[key] = c
		}
		txs[i].CustomerID = c.ID
		txs[i].Customer = &c
	}
	return nil
}
