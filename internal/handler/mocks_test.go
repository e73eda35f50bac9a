package handler

import (
	"context"

	"github.com/sarrafbook/ledger/internal/models"
	"github.com/sarrafbook/ledger/internal/services"
)

// MockLedger is a mock implementation of Ledger. Unset funcs return zero values.
type MockLedger struct {
	TransactionsFunc       func(ctx context.Context, userID string) ([]models.Transaction, error)
	TransactionFunc        func(ctx context.Context, userID, id string) (models.Transaction, error)
	CreateTransactionFunc  func(ctx context.Context, userID string, t models.Transaction) (models.Transaction, error)
	UpdateTransactionFunc  func(ctx context.Context, userID, id string, patch models.TransactionPatch) (models.Transaction, []models.TransactionUpdate, error)
	DeleteTransactionFunc  func(ctx context.Context, userID, id string) error
	ImportTransactionsFunc func(ctx context.Context, userID string, txs []models.Transaction) ([]models.Transaction, error)
	UpdatesFunc            func(ctx context.Context, userID, transactionID string) ([]models.TransactionUpdate, error)
	CustomersFunc          func(ctx context.Context, userID string) ([]models.Customer, error)
	CustomerFunc           func(ctx context.Context, userID, id string) (models.Customer, error)
	CreateCustomerFunc     func(ctx context.Context, userID string, c models.Customer) (models.Customer, error)
	UpdateCustomerFunc     func(ctx context.Context, userID, id string, patch models.CustomerPatch) (models.Customer, error)
	DeleteCustomerFunc     func(ctx context.Context, userID, id string) error
	PaymentsFunc           func(ctx context.Context, userID, transactionID string) ([]models.Payment, models.PaymentSummary, error)
	AddPaymentFunc         func(ctx context.Context, userID, transactionID string, p models.Payment) (models.Payment, models.PaymentSummary, error)
	DeletePaymentFunc      func(ctx context.Context, userID, id string) (models.PaymentSummary, error)
	CurrenciesFunc         func(ctx context.Context, userID string) ([]models.Currency, error)
	CreateCurrencyFunc     func(ctx context.Context, userID string, c models.Currency) (models.Currency, error)
	DeleteCurrencyFunc     func(ctx context.Context, userID, id string) error
	BalancesFunc           func(ctx context.Context, userID string) ([]models.Balance, error)
	UpsertBalanceFunc      func(ctx context.Context, userID string, b models.Balance) (models.Balance, error)
}

func (m *MockLedger) Transactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	if m.TransactionsFunc != nil {
		return m.TransactionsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockLedger) Transaction(ctx context.Context, userID, id string) (models.Transaction, error) {
	if m.TransactionFunc != nil {
		return m.TransactionFunc(ctx, userID, id)
	}
	return models.Transaction{ID: id, UserID: userID}, nil
}

func (m *MockLedger) CreateTransaction(ctx context.Context, userID string, t models.Transaction) (models.Transaction, error) {
	if m.CreateTransactionFunc != nil {
		return m.CreateTransactionFunc(ctx, userID, t)
	}
	return t, nil
}

func (m *MockLedger) UpdateTransaction(ctx context.Context, userID, id string, patch models.TransactionPatch) (models.Transaction, []models.TransactionUpdate, error) {
	if m.UpdateTransactionFunc != nil {
		return m.UpdateTransactionFunc(ctx, userID, id, patch)
	}
	return models.Transaction{ID: id}, nil, nil
}

func (m *MockLedger) DeleteTransaction(ctx context.Context, userID, id string) error {
	if m.DeleteTransactionFunc != nil {
		return m.DeleteTransactionFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockLedger) ImportTransactions(ctx context.Context, userID string, txs []models.Transaction) ([]models.Transaction, error) {
	if m.ImportTransactionsFunc != nil {
		return m.ImportTransactionsFunc(ctx, userID, txs)
	}
	return txs, nil
}

func (m *MockLedger) Updates(ctx context.Context, userID, transactionID string) ([]models.TransactionUpdate, error) {
	if m.UpdatesFunc != nil {
		return m.UpdatesFunc(ctx, userID, transactionID)
	}
	return nil, nil
}

func (m *MockLedger) Customers(ctx context.Context, userID string) ([]models.Customer, error) {
	if m.CustomersFunc != nil {
		return m.CustomersFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockLedger) Customer(ctx context.Context, userID, id string) (models.Customer, error) {
	if m.CustomerFunc != nil {
		return m.CustomerFunc(ctx, userID, id)
	}
	return models.Customer{ID: id, UserID: userID}, nil
}

func (m *MockLedger) CreateCustomer(ctx context.Context, userID string, c models.Customer) (models.Customer, error) {
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, userID, c)
	}
	return c, nil
}

func (m *MockLedger) UpdateCustomer(ctx context.Context, userID, id string, patch models.CustomerPatch) (models.Customer, error) {
	if m.UpdateCustomerFunc != nil {
		return m.UpdateCustomerFunc(ctx, userID, id, patch)
	}
	return models.Customer{ID: id}, nil
}

func (m *MockLedger) DeleteCustomer(ctx context.Context, userID, id string) error {
	if m.DeleteCustomerFunc != nil {
		return m.DeleteCustomerFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockLedger) Payments(ctx context.Context, userID, transactionID string) ([]models.Payment, models.PaymentSummary, error) {
	if m.PaymentsFunc != nil {
		return m.PaymentsFunc(ctx, userID, transactionID)
	}
	return nil, models.PaymentSummary{}, nil
}

func (m *MockLedger) AddPayment(ctx context.Context, userID, transactionID string, p models.Payment) (models.Payment, models.PaymentSummary, error) {
	if m.AddPaymentFunc != nil {
		return m.AddPaymentFunc(ctx, userID, transactionID, p)
	}
	return p, models.PaymentSummary{}, nil
}

func (m *MockLedger) DeletePayment(ctx context.Context, userID, id string) (models.PaymentSummary, error) {
	if m.DeletePaymentFunc != nil {
		return m.DeletePaymentFunc(ctx, userID, id)
	}
	return models.PaymentSummary{}, nil
}

func (m *MockLedger) Currencies(ctx context.Context, userID string) ([]models.Currency, error) {
	if m.CurrenciesFunc != nil {
		return m.CurrenciesFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockLedger) CreateCurrency(ctx context.Context, userID string, c models.Currency) (models.Currency, error) {
	if m.CreateCurrencyFunc != nil {
		return m.CreateCurrencyFunc(ctx, userID, c)
	}
	return c, nil
}

func (m *MockLedger) DeleteCurrency(ctx context.Context, userID, id string) error {
	if m.DeleteCurrencyFunc != nil {
		return m.DeleteCurrencyFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockLedger) Balances(ctx context.Context, userID string) ([]models.Balance, error) {
	if m.BalancesFunc != nil {
		return m.BalancesFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockLedger) UpsertBalance(ctx context.Context, userID string, b models.Balance) (models.Balance, error) {
	if m.UpsertBalanceFunc != nil {
		return m.UpsertBalanceFunc(ctx, userID, b)
	}
	return b, nil
}

// MockBlobClient is a mock implementation of BlobClient.
type MockBlobClient struct {
	UploadFunc   func(ctx context.Context, containerName, blobName, contentType string, data []byte) error
	DownloadFunc func(ctx context.Context, containerName, blobName string) ([]byte, error)
}

func (m *MockBlobClient) Upload(ctx context.Context, containerName, blobName, contentType string, data []byte) error {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, containerName, blobName, contentType, data)
	}
	return nil
}

func (m *MockBlobClient) Download(ctx context.Context, containerName, blobName string) ([]byte, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, containerName, blobName)
	}
	return nil, nil
}

func (m *MockBlobClient) URL(containerName, blobName string) string {
	return "http://blob.test/" + containerName + "/" + blobName
}

// MockQueueClient is a mock implementation of QueueClient.
type MockQueueClient struct {
	EnqueueMessageFunc func(ctx context.Context, queueName string, message any) error
}

func (m *MockQueueClient) EnqueueMessage(ctx context.Context, queueName string, message any) error {
	if m.EnqueueMessageFunc != nil {
		return m.EnqueueMessageFunc(ctx, queueName, message)
	}
	return nil
}

// MockEmailClient is a mock implementation of EmailClient.
type MockEmailClient struct {
	SendEmailFunc          func(ctx context.Context, to []string, subject, body string) error
	SendImportReportFunc   func(ctx context.Context, to []string, imported int, problems []string) error
	SendDailySummaryFunc   func(ctx context.Context, to []string, summary services.DailySummary) error
	SendStatementReadyFunc func(ctx context.Context, to []string, customerName, link string) error
}

func (m *MockEmailClient) SendEmail(ctx context.Context, to []string, subject, body string) error {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, to, subject, body)
	}
	return nil
}

func (m *MockEmailClient) SendImportReport(ctx context.Context, to []string, imported int, problems []string) error {
	if m.SendImportReportFunc != nil {
		return m.SendImportReportFunc(ctx, to, imported, problems)
	}
	return nil
}

func (m *MockEmailClient) SendDailySummary(ctx context.Context, to []string, summary services.DailySummary) error {
	if m.SendDailySummaryFunc != nil {
		return m.SendDailySummaryFunc(ctx, to, summary)
	}
	return nil
}

func (m *MockEmailClient) SendStatementReady(ctx context.Context, to []string, customerName, link string) error {
	if m.SendStatementReadyFunc != nil {
		return m.SendStatementReadyFunc(ctx, to, customerName, link)
	}
	return nil
}
