// Package ledger is the application state of the ledger: a per-user read
// model cached in memory and the commands that change the underlying records.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sarrafbook/ledger/internal/models"
	"github.com/sarrafbook/ledger/internal/services"
)

// ErrCustomerHasTransactions is returned when deleting a customer that still
// has trades.
var ErrCustomerHasTransactions = errors.New("customer has transactions")

// ErrUnknownCustomer is returned when a trade references a missing customer.
var ErrUnknownCustomer = errors.New("unknown customer")

// Repository is the record store behind the ledger.
type Repository interface {
	ListCustomers(ctx context.Context, userID string) ([]models.Customer, error)
	GetCustomer(ctx context.Context, userID, id string) (models.Customer, error)
	SaveCustomer(ctx context.Context, c models.Customer) (models.Customer, error)
	DeleteCustomer(ctx context.Context, userID, id string) error

	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (models.Transaction, error)
	SaveTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
	SaveTransactions(ctx context.Context, userID string, transactions []models.Transaction) ([]models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error

	ListPayments(ctx context.Context, userID, transactionID string) ([]models.Payment, error)
	SavePayment(ctx context.Context, p models.Payment) (models.Payment, error)
	DeletePayment(ctx context.Context, userID, id string) (models.Payment, error)

	ListUpdates(ctx context.Context, userID, transactionID string) ([]models.TransactionUpdate, error)
	SaveUpdates(ctx context.Context, userID string, updates []models.TransactionUpdate) ([]models.TransactionUpdate, error)

	ListCurrencies(ctx context.Context, userID string) ([]models.Currency, error)
	SaveCurrency(ctx context.Context, c models.Currency) (models.Currency, error)
	DeleteCurrency(ctx context.Context, userID, id string) error
	ListBalances(ctx context.Context, userID string) ([]models.Balance, error)
	UpsertBalance(ctx context.Context, b models.Balance) (models.Balance, error)
}

// Policy decides how the read model follows a successful mutation.
type Policy int

const (
	// PolicyMerge folds the records returned by a mutation into the cached
	// lists.
	PolicyMerge Policy = iota
	// PolicyRefresh drops the cached lists so the next read refetches.
	PolicyRefresh
)

const (
	kindTransactions = "transactions"
	kindCustomers    = "customers"
	kindCurrencies   = "currencies"
	kindBalances     = "balances"
)

// Store is shared by all requests. Lists are cached per user and kind.
type Store struct {
	repo   Repository
	cache  *cache.Cache
	policy Policy
	mu     sync.Mutex // serializes read-modify-write of cached lists
}

// NewStore creates a Store whose cached lists expire after ttl.
func NewStore(repo Repository, ttl time.Duration, policy Policy) *Store {
	return &Store{
		repo:   repo,
		cache:  cache.New(ttl, 2*ttl),
		policy: policy,
	}
}

func key(kind, userID string) string {
	return kind + ":" + userID
}

// cached returns the list stored under kind, loading it on a miss. The load
// and the store happen under s.mu so a write merged meanwhile is not
// overwritten by a snapshot taken before it.
func cached[T any](s *Store, kind, userID string, load func() ([]T, error)) ([]T, error) {
	k := key(kind, userID)
	if v, ok := s.cache.Get(k); ok {
		return v.([]T), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(k); ok {
		return v.([]T), nil
	}
	items, err := load()
	if err != nil {
		return nil, err
	}
	s.cache.Set(k, items, cache.DefaultExpiration)
	return items, nil
}

// merge applies fn to a copy of the cached list, or invalidates it under
// PolicyRefresh. A list that is not cached is left alone.
func merge[T any](s *Store, kind, userID string, fn func([]T) []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(kind, userID)
	if s.policy == PolicyRefresh {
		s.cache.Delete(k)
		return
	}
	v, ok := s.cache.Get(k)
	if !ok {
		return
	}
	s.cache.Set(k, fn(slices.Clone(v.([]T))), cache.DefaultExpiration)
}

func upsertByID[T any](items []T, item T, id func(T) string) []T {
	for i := range items {
		if id(items[i]) == id(item) {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func removeByID[T any](items []T, target string, id func(T) string) []T {
	return slices.DeleteFunc(items, func(it T) bool { return id(it) == target })
}

func transactionID(t models.Transaction) string { return t.ID }
func customerID(c models.Customer) string       { return c.ID }
func currencyID(c models.Currency) string       { return c.ID }
func balanceCurrencyID(b models.Balance) string { return b.CurrencyID }

// Invalidate drops every cached list of the user.
func (s *Store) Invalidate(userID string) {
	for _, kind := range []string{kindTransactions, kindCustomers, kindCurrencies, kindBalances} {
		s.cache.Delete(key(kind, userID))
	}
}

// --- Read model ---

// Transactions returns all trades of the user, newest first, with derived
// fields filled and the customer attached.
func (s *Store) Transactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	txs, err := cached(s, kindTransactions, userID, func() ([]models.Transaction, error) {
		return s.repo.ListTransactions(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	customers, err := s.Customers(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Customer, len(customers))
	for i := range customers {
		byID[customers[i].ID] = &customers[i]
	}

	out := slices.Clone(txs)
	for i := range out {
		out[i].Complete()
		out[i].Customer = byID[out[i].CustomerID]
	}
	SortByDateDesc(out)
	return out, nil
}

// Customers returns all customers of the user.
func (s *Store) Customers(ctx context.Context, userID string) ([]models.Customer, error) {
	customers, err := cached(s, kindCustomers, userID, func() ([]models.Customer, error) {
		return s.repo.ListCustomers(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	return slices.Clone(customers), nil
}

// Currencies returns the user's currency definitions.
func (s *Store) Currencies(ctx context.Context, userID string) ([]models.Currency, error) {
	currencies, err := cached(s, kindCurrencies, userID, func() ([]models.Currency, error) {
		return s.repo.ListCurrencies(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load currencies: %w", err)
	}
	return slices.Clone(currencies), nil
}

// Balances returns one balance per currency with the currency attached.
func (s *Store) Balances(ctx context.Context, userID string) ([]models.Balance, error) {
	balances, err := cached(s, kindBalances, userID, func() ([]models.Balance, error) {
		return s.repo.ListBalances(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}
	currencies, err := s.Currencies(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := slices.Clone(balances)
	for i := range out {
		for j := range currencies {
			if currencies[j].ID == out[i].CurrencyID {
				out[i].Currency = &currencies[j]
				break
			}
		}
	}
	return out, nil
}

// Customer returns one customer.
func (s *Store) Customer(ctx context.Context, userID, id string) (models.Customer, error) {
	return s.repo.GetCustomer(ctx, userID, id)
}

// Transaction returns one trade with its customer and payments.
func (s *Store) Transaction(ctx context.Context, userID, id string) (models.Transaction, error) {
	t, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return models.Transaction{}, err
	}
	t.Complete()

	if c, err := s.repo.GetCustomer(ctx, userID, t.CustomerID); err == nil {
		t.Customer = &c
	} else if !errors.Is(err, services.ErrNotFound) {
		return models.Transaction{}, err
	}

	payments, err := s.repo.ListPayments(ctx, userID, id)
	if err != nil {
		return models.Transaction{}, err
	}
	SortPayments(payments)
	t.Payments = payments
	return t, nil
}

// Payments returns the payments of a trade and their summary against its
// total value.
func (s *Store) Payments(ctx context.Context, userID, transactionID string) ([]models.Payment, models.PaymentSummary, error) {
	t, err := s.Transaction(ctx, userID, transactionID)
	if err != nil {
		return nil, models.PaymentSummary{}, err
	}
	return t.Payments, models.SummarizePayments(t.TotalValue, t.Payments), nil
}

// Updates returns the audit trail of a trade.
func (s *Store) Updates(ctx context.Context, userID, transactionID string) ([]models.TransactionUpdate, error) {
	return s.repo.ListUpdates(ctx, userID, transactionID)
}

// --- Commands ---

// CreateTransaction validates and stores a new trade.
func (s *Store) CreateTransaction(ctx context.Context, userID string, t models.Transaction) (models.Transaction, error) {
	t.ID = ""
	t.UserID = userID
	t.Complete()
	if err := t.Validate(); err != nil {
		return models.Transaction{}, err
	}
	if err := s.requireCustomer(ctx, userID, t.CustomerID); err != nil {
		return models.Transaction{}, err
	}

	saved, err := s.repo.SaveTransaction(ctx, t)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to save transaction: %w", err)
	}
	merge(s, kindTransactions, userID, func(txs []models.Transaction) []models.Transaction {
		return append(txs, saved)
	})
	slog.Debug("transaction created", "user_id", userID, "transaction_id", saved.ID)
	return s.withCustomer(ctx, userID, saved), nil
}

// UpdateTransaction applies patch and records an audit entry for every flag
// that changed.
func (s *Store) UpdateTransaction(ctx context.Context, userID, id string, patch models.TransactionPatch) (models.Transaction, []models.TransactionUpdate, error) {
	t, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return models.Transaction{}, nil, err
	}

	updates := patch.Apply(&t)
	t.Complete()
	if err := t.Validate(); err != nil {
		return models.Transaction{}, nil, err
	}

	saved, err := s.repo.SaveTransaction(ctx, t)
	if err != nil {
		return models.Transaction{}, nil, fmt.Errorf("failed to save transaction: %w", err)
	}
	if len(updates) > 0 {
		updates, err = s.repo.SaveUpdates(ctx, userID, updates)
		if err != nil {
			return models.Transaction{}, nil, fmt.Errorf("failed to record transaction updates: %w", err)
		}
	}

	merge(s, kindTransactions, userID, func(txs []models.Transaction) []models.Transaction {
		return upsertByID(txs, saved, transactionID)
	})
	return s.withCustomer(ctx, userID, saved), updates, nil
}

// DeleteTransaction removes a trade with its payments and updates.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	merge(s, kindTransactions, userID, func(txs []models.Transaction) []models.Transaction {
		return removeByID(txs, id, transactionID)
	})
	return nil
}

// ImportTransactions stores trades read from an import file. Rows already
// imported are skipped; the new trades are returned.
func (s *Store) ImportTransactions(ctx context.Context, userID string, txs []models.Transaction) ([]models.Transaction, error) {
	for i := range txs {
		txs[i].UserID = userID
		txs[i].Complete()
	}
	saved, err := s.repo.SaveTransactions(ctx, userID, txs)
	if err != nil {
		return nil, fmt.Errorf("failed to import transactions: %w", err)
	}
	merge(s, kindTransactions, userID, func(cur []models.Transaction) []models.Transaction {
		for _, t := range saved {
			cur = upsertByID(cur, t, transactionID)
		}
		return cur
	})
	return saved, nil
}

// CreateCustomer validates and stores a new customer.
func (s *Store) CreateCustomer(ctx context.Context, userID string, c models.Customer) (models.Customer, error) {
	c.ID = ""
	c.UserID = userID
	if err := c.Validate(); err != nil {
		return models.Customer{}, err
	}
	saved, err := s.repo.SaveCustomer(ctx, c)
	if err != nil {
		return models.Customer{}, fmt.Errorf("failed to save customer: %w", err)
	}
	merge(s, kindCustomers, userID, func(cs []models.Customer) []models.Customer {
		return append(cs, saved)
	})
	return saved, nil
}

// UpdateCustomer applies patch to an existing customer.
func (s *Store) UpdateCustomer(ctx context.Context, userID, id string, patch models.CustomerPatch) (models.Customer, error) {
	c, err := s.repo.GetCustomer(ctx, userID, id)
	if err != nil {
		return models.Customer{}, err
	}
	patch.Apply(&c)
	if err := c.Validate(); err != nil {
		return models.Customer{}, err
	}
	saved, err := s.repo.SaveCustomer(ctx, c)
	if err != nil {
		return models.Customer{}, fmt.Errorf("failed to save customer: %w", err)
	}
	merge(s, kindCustomers, userID, func(cs []models.Customer) []models.Customer {
		return upsertByID(cs, saved, customerID)
	})
	return saved, nil
}

// DeleteCustomer removes a customer that has no trades left.
func (s *Store) DeleteCustomer(ctx context.Context, userID, id string) error {
	txs, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	if n := len(CustomerTransactions(txs, id)); n > 0 {
		return fmt.Errorf("%w: %d remaining", ErrCustomerHasTransactions, n)
	}
	if err := s.repo.DeleteCustomer(ctx, userID, id); err != nil {
		return err
	}
	merge(s, kindCustomers, userID, func(cs []models.Customer) []models.Customer {
		return removeByID(cs, id, customerID)
	})
	return nil
}

// AddPayment records a partial payment on a trade and returns it with the new
// payment summary.
func (s *Store) AddPayment(ctx context.Context, userID, transactionID string, p models.Payment) (models.Payment, models.PaymentSummary, error) {
	p.ID = ""
	p.UserID = userID
	p.TransactionID = transactionID
	if err := p.Validate(); err != nil {
		return models.Payment{}, models.PaymentSummary{}, err
	}
	if _, err := s.repo.GetTransaction(ctx, userID, transactionID); err != nil {
		return models.Payment{}, models.PaymentSummary{}, err
	}

	saved, err := s.repo.SavePayment(ctx, p)
	if err != nil {
		return models.Payment{}, models.PaymentSummary{}, fmt.Errorf("failed to save payment: %w", err)
	}
	_, summary, err := s.Payments(ctx, userID, transactionID)
	if err != nil {
		return models.Payment{}, models.PaymentSummary{}, err
	}
	return saved, summary, nil
}

// DeletePayment removes a payment and returns the summary of its trade.
func (s *Store) DeletePayment(ctx context.Context, userID, id string) (models.PaymentSummary, error) {
	removed, err := s.repo.DeletePayment(ctx, userID, id)
	if err != nil {
		return models.PaymentSummary{}, err
	}
	_, summary, err := s.Payments(ctx, userID, removed.TransactionID)
	if err != nil {
		return models.PaymentSummary{}, err
	}
	return summary, nil
}

// CreateCurrency stores a currency definition.
func (s *Store) CreateCurrency(ctx context.Context, userID string, c models.Currency) (models.Currency, error) {
	c.ID = ""
	c.UserID = userID
	if err := c.Validate(); err != nil {
		return models.Currency{}, err
	}
	saved, err := s.repo.SaveCurrency(ctx, c)
	if err != nil {
		return models.Currency{}, fmt.Errorf("failed to save currency: %w", err)
	}
	merge(s, kindCurrencies, userID, func(cs []models.Currency) []models.Currency {
		return append(cs, saved)
	})
	return saved, nil
}

// DeleteCurrency removes a currency and its balance.
func (s *Store) DeleteCurrency(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteCurrency(ctx, userID, id); err != nil {
		return err
	}
	merge(s, kindCurrencies, userID, func(cs []models.Currency) []models.Currency {
		return removeByID(cs, id, currencyID)
	})
	merge(s, kindBalances, userID, func(bs []models.Balance) []models.Balance {
		return removeByID(bs, id, balanceCurrencyID)
	})
	return nil
}

// UpsertBalance sets the on-hand amount of a known currency.
func (s *Store) UpsertBalance(ctx context.Context, userID string, b models.Balance) (models.Balance, error) {
	currencies, err := s.Currencies(ctx, userID)
	if err != nil {
		return models.Balance{}, err
	}
	idx := slices.IndexFunc(currencies, func(c models.Currency) bool { return c.ID == b.CurrencyID })
	if idx < 0 {
		return models.Balance{}, fmt.Errorf("currency %s: %w", b.CurrencyID, services.ErrNotFound)
	}

	b.UserID = userID
	saved, err := s.repo.UpsertBalance(ctx, b)
	if err != nil {
		return models.Balance{}, fmt.Errorf("failed to save balance: %w", err)
	}
	merge(s, kindBalances, userID, func(bs []models.Balance) []models.Balance {
		return upsertByID(bs, saved, balanceCurrencyID)
	})
	saved.Currency = &currencies[idx]
	return saved, nil
}

func (s *Store) requireCustomer(ctx context.Context, userID, id string) error {
	_, err := s.repo.GetCustomer(ctx, userID, id)
	if errors.Is(err, services.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrUnknownCustomer, id)
	}
	return err
}

func (s *Store) withCustomer(ctx context.Context, userID string, t models.Transaction) models.Transaction {
	t.Complete()
	if c, err := s.repo.GetCustomer(ctx, userID, t.CustomerID); err == nil {
		t.Customer = &c
	}
	return t
}
