package handler

import (
	"context"

	"github.com/sarrafbook/ledger/internal/models"
	"github.com/sarrafbook/ledger/internal/services"
)

// Ledger defines the application state used by handlers. It is satisfied by
// *ledger.Store.
type Ledger interface {
	Transactions(ctx context.Context, userID string) ([]models.Transaction, error)
	Transaction(ctx context.Context, userID, id string) (models.Transaction, error)
	CreateTransaction(ctx context.Context, userID string, t models.Transaction) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id string, patch models.TransactionPatch) (models.Transaction, []models.TransactionUpdate, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
	ImportTransactions(ctx context.Context, userID string, txs []models.Transaction) ([]models.Transaction, error)
	Updates(ctx context.Context, userID, transactionID string) ([]models.TransactionUpdate, error)

	Customers(ctx context.Context, userID string) ([]models.Customer, error)
	Customer(ctx context.Context, userID, id string) (models.Customer, error)
	CreateCustomer(ctx context.Context, userID string, c models.Customer) (models.Customer, error)
	UpdateCustomer(ctx context.Context, userID, id string, patch models.CustomerPatch) (models.Customer, error)
	DeleteCustomer(ctx context.Context, userID, id string) error

	Payments(ctx context.Context, userID, transactionID string) ([]models.Payment, models.PaymentSummary, error)
	AddPayment(ctx context.Context, userID, transactionID string, p models.Payment) (models.Payment, models.PaymentSummary, error)
	DeletePayment(ctx context.Context, userID, id string) (models.PaymentSummary, error)

	Currencies(ctx context.Context, userID string) ([]models.Currency, error)
	CreateCurrency(ctx context.Context, userID string, c models.Currency) (models.Currency, error)
	DeleteCurrency(ctx context.Context, userID, id string) error
	Balances(ctx context.Context, userID string) ([]models.Balance, error)
	UpsertBalance(ctx context.Context, userID string, b models.Balance) (models.Balance, error)
}

// BlobClient defines the interface for blob storage operations used by handlers.
type BlobClient interface {
	Upload(ctx context.Context, containerName, blobName, contentType string, data []byte) error
	Download(ctx context.Context, containerName, blobName string) ([]byte, error)
	URL(containerName, blobName string) string
}

// QueueClient defines the interface for queue operations used by handlers.
type QueueClient interface {
	EnqueueMessage(ctx context.Context, queueName string, message any) error
}

// EmailClient defines the interface for email operations used by handlers.
type EmailClient interface {
	SendEmail(ctx context.Context, to []string, subject, body string) error
	SendImportReport(ctx context.Context, to []string, imported int, problems []string) error
	SendDailySummary(ctx context.Context, to []string, summary services.DailySummary) error
	SendStatementReady(ctx context.Context, to []string, customerName, link string) error
}
