package ledger

import (
	"context"

	"github.com/sarrafbook/ledger/internal/models"
)

// MockRepository implements Repository. Unset funcs return zero values.
type MockRepository struct {
	ListCustomersFunc  func(ctx context.Context, userID string) ([]models.Customer, error)
	GetCustomerFunc    func(ctx context.Context, userID, id string) (models.Customer, error)
	SaveCustomerFunc   func(ctx context.Context, c models.Customer) (models.Customer, error)
	DeleteCustomerFunc func(ctx context.Context, userID, id string) error

	ListTransactionsFunc  func(ctx context.Context, userID string) ([]models.Transaction, error)
	GetTransactionFunc    func(ctx context.Context, userID, id string) (models.Transaction, error)
	SaveTransactionFunc   func(ctx context.Context, t models.Transaction) (models.Transaction, error)
	SaveTransactionsFunc  func(ctx context.Context, userID string, txs []models.Transaction) ([]models.Transaction, error)
	DeleteTransactionFunc func(ctx context.Context, userID, id string) error

	ListPaymentsFunc  func(ctx context.Context, userID, transactionID string) ([]models.Payment, error)
	SavePaymentFunc   func(ctx context.Context, p models.Payment) (models.Payment, error)
	DeletePaymentFunc func(ctx context.Context, userID, id string) (models.Payment, error)

	ListUpdatesFunc func(ctx context.Context, userID, transactionID string) ([]models.TransactionUpdate, error)
	SaveUpdatesFunc func(ctx context.Context, userID string, updates []models.TransactionUpdate) ([]models.TransactionUpdate, error)

	ListCurrenciesFunc func(ctx context.Context, userID string) ([]models.Currency, error)
	SaveCurrencyFunc   func(ctx context.Context, c models.Currency) (models.Currency, error)
	DeleteCurrencyFunc func(ctx context.Context, userID, id string) error
	ListBalancesFunc   func(ctx context.Context, userID string) ([]models.Balance, error)
	UpsertBalanceFunc  func(ctx context.Context, b models.Balance) (models.Balance, error)
}

func (m *MockRepository) ListCustomers(ctx context.Context, userID string) ([]models.Customer, error) {
	if m.ListCustomersFunc != nil {
		return m.ListCustomersFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) GetCustomer(ctx context.Context, userID, id string) (models.Customer, error) {
	if m.GetCustomerFunc != nil {
		return m.GetCustomerFunc(ctx, userID, id)
	}
	return models.Customer{ID: id, UserID: userID}, nil
}

func (m *MockRepository) SaveCustomer(ctx context.Context, c models.Customer) (models.Customer, error) {
	if m.SaveCustomerFunc != nil {
		return m.SaveCustomerFunc(ctx, c)
	}
	return c, nil
}

func (m *MockRepository) DeleteCustomer(ctx context.Context, userID, id string) error {
	if m.DeleteCustomerFunc != nil {
		return m.DeleteCustomerFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockRepository) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	if m.ListTransactionsFunc != nil {
		return m.ListTransactionsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) GetTransaction(ctx context.Context, userID, id string) (models.Transaction, error) {
	if m.GetTransactionFunc != nil {
		return m.GetTransactionFunc(ctx, userID, id)
	}
	return models.Transaction{}, nil
}

func (m *MockRepository) SaveTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if m.SaveTransactionFunc != nil {
		return m.SaveTransactionFunc(ctx, t)
	}
	return t, nil
}

func (m *MockRepository) SaveTransactions(ctx context.Context, userID string, txs []models.Transaction) ([]models.Transaction, error) {
	if m.SaveTransactionsFunc != nil {
		return m.SaveTransactionsFunc(ctx, userID, txs)
	}
	return txs, nil
}

func (m *MockRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	if m.DeleteTransactionFunc != nil {
		return m.DeleteTransactionFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockRepository) ListPayments(ctx context.Context, userID, transactionID string) ([]models.Payment, error) {
	if m.ListPaymentsFunc != nil {
		return m.ListPaymentsFunc(ctx, userID, transactionID)
	}
	return nil, nil
}

func (m *MockRepository) SavePayment(ctx context.Context, p models.Payment) (models.Payment, error) {
	if m.SavePaymentFunc != nil {
		return m.SavePaymentFunc(ctx, p)
	}
	return p, nil
}

func (m *MockRepository) DeletePayment(ctx context.Context, userID, id string) (models.Payment, error) {
	if m.DeletePaymentFunc != nil {
		return m.DeletePaymentFunc(ctx, userID, id)
	}
	return models.Payment{ID: id}, nil
}

func (m *MockRepository) ListUpdates(ctx context.Context, userID, transactionID string) ([]models.TransactionUpdate, error) {
	if m.ListUpdatesFunc != nil {
		return m.ListUpdatesFunc(ctx, userID, transactionID)
	}
	return nil, nil
}

func (m *MockRepository) SaveUpdates(ctx context.Context, userID string, updates []models.TransactionUpdate) ([]models.TransactionUpdate, error) {
	if m.SaveUpdatesFunc != nil {
		return m.SaveUpdatesFunc(ctx, userID, updates)
	}
	return updates, nil
}

func (m *MockRepository) ListCurrencies(ctx context.Context, userID string) ([]models.Currency, error) {
	if m.ListCurrenciesFunc != nil {
		return m.ListCurrenciesFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) SaveCurrency(ctx context.Context, c models.Currency) (models.Currency, error) {
	if m.SaveCurrencyFunc != nil {
		return m.SaveCurrencyFunc(ctx, c)
	}
	return c, nil
}

func (m *MockRepository) DeleteCurrency(ctx context.Context, userID, id string) error {
	if m.DeleteCurrencyFunc != nil {
		return m.DeleteCurrencyFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockRepository) ListBalances(ctx context.Context, userID string) ([]models.Balance, error) {
	if m.ListBalancesFunc != nil {
		return m.ListBalancesFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) UpsertBalance(ctx context.Context, b models.Balance) (models.Balance, error) {
	if m.UpsertBalanceFunc != nil {
		return m.UpsertBalanceFunc(ctx, b)
	}
	return b, nil
}
