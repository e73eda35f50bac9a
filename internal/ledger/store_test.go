package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sarrafbook/ledger/internal/models"
	"github.com/sarrafbook/ledger/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const user = "u1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func trade(id, customer, date string) models.Transaction {
	return models.Transaction{
		ID:              id,
		UserID:          user,
		CustomerID:      customer,
		TransactionDate: date,
		Type:            models.TypeBuy,
		Status:          models.StatusIncomplete,
		Amount:          d("100"),
		Currency:        "USD",
		Rate:            models.KnownRate(d("58000")),
	}
}

func TestStore_TransactionsAreCachedAndCompleted(t *testing.T) {
	calls := 0
	repo := &MockRepository{
		ListTransactionsFunc: func(ctx context.Context, userID string) ([]models.Transaction, error) {
			calls++
			return []models.Transaction{trade("t1", "c1", "1404/7/1"), trade("t2", "c1", "1404/07/20")}, nil
		},
		ListCustomersFunc: func(ctx context.Context, userID string) ([]models.Customer, error) {
			return []models.Customer{{ID: "c1", Name: "رضا"}}, nil
		},
	}
	s := NewStore(repo, time.Minute, PolicyMerge)

	txs, err := s.Transactions(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "t2", txs[0].ID, "newest first")
	assert.True(t, txs[0].TotalValue.Equal(d("5800000")))
	require.NotNil(t, txs[0].Customer)
	assert.Equal(t, "رضا", txs[0].Customer.Name)

	_, err = s.Transactions(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestStore_CreateTransaction_MergePolicy(t *testing.T) {
	calls := 0
	repo := &MockRepository{
		ListTransactionsFunc: func(ctx context.Context, userID string) ([]models.Transaction, error) {
			calls++
			return []models.Transaction{trade("t1", "c1", "1404/07/01")}, nil
		},
		SaveTransactionFunc: func(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
			tx.ID = "t-new"
			return tx, nil
		},
	}
	s := NewStore(repo, time.Minute, PolicyMerge)
	ctx := context.Background()

	_, err := s.Transactions(ctx, user)
	require.NoError(t, err)

	in := trade("ignored", "c1", "1404/07/23")
	saved, err := s.CreateTransaction(ctx, user, in)
	require.NoError(t, err)
	assert.Equal(t, "t-new", saved.ID)
	assert.Equal(t, user, saved.UserID)
	assert.True(t, saved.TotalValue.Equal(d("5800000")))

	txs, err := s.Transactions(ctx, user)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
	assert.Equal(t, "t-new", txs[0].ID)
	assert.Equal(t, 1, calls, "merge must not refetch")
}

func TestStore_CreateTransaction_RefreshPolicy(t *testing.T) {
	calls := 0
	repo := &MockRepository{
		ListTransactionsFunc: func(ctx context.Context, userID string) ([]models.Transaction, error) {
			calls++
			return nil, nil
		},
	}
	s := NewStore(repo, time.Minute, PolicyRefresh)
	ctx := context.Background()

	_, _ = s.Transactions(ctx, user)
	_, err := s.CreateTransaction(ctx, user, trade("", "c1", "1404/07/23"))
	require.NoError(t, err)
	_, _ = s.Transactions(ctx, user)

	assert.Equal(t, 2, calls)
}

func TestStore_CreateTransaction_Invalid(t *testing.T) {
	saved := false
	repo := &MockRepository{
		SaveTransactionFunc: func(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
			saved = true
			return tx, nil
		},
	}
	s := NewStore(repo, time.Minute, PolicyMerge)

	bad := trade("", "c1", "1404/13/40")
	_, err := s.CreateTransaction(context.Background(), user, bad)
	assert.ErrorIs(t, err, models.ErrInvalidTransaction)
	assert.False(t, saved)
}

func TestStore_CreateTransaction_UnknownCustomer(t *testing.T) {
	repo := &MockRepository{
		GetCustomerFunc: func(ctx context.Context, userID, id string) (models.Customer, error) {
			return models.Customer{}, fmt.Errorf("customers %s: %w", id, services.ErrNotFound)
		},
	}
	s := NewStore(repo, time.Minute, PolicyMerge)

	_, err := s.CreateTransaction(context.Background(), user, trade("", "ghost", "1404/07/23"))
	assert.ErrorIs(t, err, ErrUnknownCustomer)
}

func TestStore_UpdateTransaction_RecordsUpdates(t *testing.T) {
	var recorded []models.TransactionUpdate
	repo := &MockRepository{
		GetTransactionFunc: func(ctx context.Context, userID, id string) (models.Transaction, error) {
			return trade(id, "c1", "1404/07/23"), nil
		},
		SaveUpdatesFunc: func(ctx context.Context, userID string, updates []models.TransactionUpdate) ([]models.TransactionUpdate, error) {
			recorded = updates
			return updates, nil
		},
	}
	s := NewStore(repo, time.Minute, PolicyMerge)

	yes := true
	received := d("1000000")
	tx, updates, err := s.UpdateTransaction(context.Background(), user, "t1", models.TransactionPatch{
		GoodsDelivered: &yes,
		AmountReceived: &received,
	})
	require.NoError(t, err)

	assert.True(t, tx.GoodsDelivered)
	assert.True(t, tx.AmountRemaining.Equal(d("4800000")))
	require.Len(t, updates, 1)
	assert.Equal(t, models.UpdateGoodsDelivered, updates[0].UpdateType)
	assert.Equal(t, recorded, updates)
}

func TestStore_UpdateTransaction_NoFlagChangeNoAudit(t *testing.T) {
	repo := &MockRepository{
		GetTransactionFunc: func(ctx context.Context, userID, id string) (models.Transaction, error) {
			return trade(id, "c1", "1404/07/23"), nil
		},
		SaveUpdatesFunc: func(ctx context.Context, userID string, updates []models.TransactionUpdate) ([]models.TransactionUpdate, error) {
			t.Fatal("no updates expected")
			return nil, nil
		},
	}
	s := NewStore(repo, time.Minute, PolicyMerge)

	desc := "new"
	_, updates, err := s.UpdateTransaction(context.Background(), user, "t1", models.TransactionPatch{Description: &desc})
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestStore_DeleteCustomer_Guarded(t *testing.T) {
	deleted := false
	repo := &MockRepository{
		ListTransactionsFunc: func(ctx context.Context, userID string) ([]models.Transaction, error) {
			return []models.Transaction{trade("t1", "c1", "1404/07/23")}, nil
		},
		DeleteCustomerFunc: func(ctx context.Context, userID, id string) error {
			deleted = true
			return nil
		},
	}
	s := NewStore(repo, time.Minute, PolicyMerge)

	err := s.DeleteCustomer(context.Background(), user, "c1")
	assert.ErrorIs(t, err, ErrCustomerHasTransactions)
	assert.False(t, deleted)

	require.NoError(t, s.DeleteCustomer(context.Background(), user, "c2"))
	assert.True(t, deleted)
}

func TestStore_CustomerLifecycle(t *testing.T) {
	repo := &MockRepository{
		ListCustomersFunc: func(ctx context.Context, userID string) ([]models.Customer, error) {
			return []models.Customer{{ID: "c1", Name: "اول"}}, nil
		},
		SaveCustomerFunc: func(ctx context.Context, c models.Customer) (models.Customer, error) {
			if c.ID == "" {
				c.ID = "c2"
			}
			return c, nil
		},
		GetCustomerFunc: func(ctx context.Context, userID, id string) (models.Customer, error) {
			return models.Customer{ID: id, UserID: userID, Name: "اول"}, nil
		},
	}
	s := NewStore(repo, time.Minute, PolicyMerge)
	ctx := context.Background()

	_, err := s.Customers(ctx, user)
	require.NoError(t, err)

	_, err = s.CreateCustomer(ctx, user, models.Customer{Name: " "})
	assert.ErrorIs(t, err, models.ErrInvalidCustomer)

	created, err := s.CreateCustomer(ctx, user, models.Customer{Name: "دوم"})
	require.NoError(t, err)
	assert.Equal(t, "c2", created.ID)

	name := "اول (ویرایش)"
	updated, err := s.UpdateCustomer(ctx, user, "c1", models.CustomerPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	customers, err := s.Customers(ctx, user)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, name, customers[0].Name)

	require.NoError(t, s.DeleteCustomer(ctx, user, "c2"))
	customers, _ = s.Customers(ctx, user)
	assert.Len(t, customers, 1)
}

func TestStore_Payments(t *testing.T) {
	var payments []models.Payment
	repo := &MockRepository{
		GetTransactionFunc: func(ctx context.Context, userID, id string) (models.Transaction, error) {
			return trade(id, "c1", "1404/07/23"), nil
		},
		SavePaymentFunc: func(ctx context.Context, p models.Payment) (models.Payment, error) {
			p.ID = fmt.Sprintf("p%d", len(payments)+1)
			payments = append(payments, p)
			return p, nil
		},
		ListPaymentsFunc: func(ctx context.Context, userID, transactionID string) ([]models.Payment, error) {
			return payments, nil
		},
		DeletePaymentFunc: func(ctx context.Context, userID, id string) (models.Payment, error) {
			removed := payments[0]
			payments = payments[1:]
			return removed, nil
		},
	}
	s := NewStore(repo, time.Minute, PolicyMerge)
	ctx := context.Background()

	_, _, err := s.AddPayment(ctx, user, "t1", models.Payment{Amount: d("0"), Method: models.PaymentCash})
	assert.ErrorIs(t, err, models.ErrInvalidPayment)

	p, summary, err := s.AddPayment(ctx, user, "t1", models.Payment{Amount: d("800000"), Method: models.PaymentCash, PaymentDate: "1404/07/23"})
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "t1", p.TransactionID)
	assert.True(t, summary.Total.Equal(d("5800000")))
	assert.True(t, summary.Paid.Equal(d("800000")))
	assert.True(t, summary.Remaining.Equal(d("5000000")))

	summary, err = s.DeletePayment(ctx, user, "p1")
	require.NoError(t, err)
	assert.True(t, summary.Paid.IsZero())
}

func TestStore_TransactionMissingCustomer(t *testing.T) {
	repo := &MockRepository{
		GetTransactionFunc: func(ctx context.Context, userID, id string) (models.Transaction, error) {
			return trade(id, "gone", "1404/07/23"), nil
		},
		GetCustomerFunc: func(ctx context.Context, userID, id string) (models.Customer, error) {
			return models.Customer{}, services.ErrNotFound
		},
	}
	s := NewStore(repo, time.Minute, PolicyMerge)

	tx, err := s.Transaction(context.Background(), user, "t1")
	require.NoError(t, err)
	assert.Nil(t, tx.Customer)
}

func TestStore_UpsertBalance(t *testing.T) {
	repo := &MockRepository{
		ListCurrenciesFunc: func(ctx context.Context, userID string) ([]models.Currency, error) {
			return []models.Currency{{ID: "usd", Name: "Dollar", Symbol: "USD"}}, nil
		},
	}
	s := NewStore(repo, time.Minute, PolicyMerge)
	ctx := context.Background()

	_, err := s.UpsertBalance(ctx, user, models.Balance{CurrencyID: "eur", Amount: d("5")})
	assert.ErrorIs(t, err, services.ErrNotFound)

	b, err := s.UpsertBalance(ctx, user, models.Balance{CurrencyID: "usd", Amount: d("1500")})
	require.NoError(t, err)
	require.NotNil(t, b.Currency)
	assert.Equal(t, "USD", b.Currency.Symbol)
	assert.Equal(t, user, b.UserID)
}

func TestStore_ImportTransactions(t *testing.T) {
	repo := &MockRepository{
		SaveTransactionsFunc: func(ctx context.Context, userID string, txs []models.Transaction) ([]models.Transaction, error) {
			return txs[:1], nil
		},
	}
	s := NewStore(repo, time.Minute, PolicyMerge)

	in := []models.Transaction{trade("", "c1", "1404/07/01"), trade("", "c1", "1404/07/02")}
	saved, err := s.ImportTransactions(context.Background(), user, in)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, user, saved[0].UserID)
	assert.True(t, saved[0].TotalValue.Equal(d("5800000")))
}

func TestStore_LoadErrorIsNotCached(t *testing.T) {
	fail := true
	repo := &MockRepository{
		ListCustomersFunc: func(ctx context.Context, userID string) ([]models.Customer, error) {
			if fail {
				return nil, errors.New("boom")
			}
			return []models.Customer{{ID: "c1"}}, nil
		},
	}
	s := NewStore(repo, time.Minute, PolicyMerge)

	_, err := s.Customers(context.Background(), user)
	assert.Error(t, err)

	fail = false
	customers, err := s.Customers(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, customers, 1)
}

func TestStore_WriteDuringColdLoadIsKept(t *testing.T) {
	loading := make(chan struct{})
	release := make(chan struct{})
	saved := make(chan struct{})
	var once sync.Once
	repo := &MockRepository{
		ListTransactionsFunc: func(ctx context.Context, userID string) ([]models.Transaction, error) {
			// Snapshot taken before the concurrent create is persisted.
			snapshot := []models.Transaction{trade("t1", "c1", "1404/07/01")}
			once.Do(func() { close(loading) })
			<-release
			return snapshot, nil
		},
		SaveTransactionFunc: func(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
			tx.ID = "t-new"
			close(saved)
			return tx, nil
		},
	}
	s := NewStore(repo, time.Minute, PolicyMerge)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := s.Transactions(ctx, user)
		assert.NoError(t, err)
	}()
	<-loading
	go func() {
		defer wg.Done()
		_, err := s.CreateTransaction(ctx, user, trade("", "c1", "1404/07/23"))
		assert.NoError(t, err)
	}()
	<-saved
	// Give the create a chance to reach the cache before the load finishes.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	txs, err := s.Transactions(ctx, user)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "t-new", txs[0].ID)
}
