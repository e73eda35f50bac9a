package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"
	"github.com/sarrafbook/ledger/internal/config"
	"github.com/sarrafbook/ledger/internal/models"
)

// ErrNotFound is returned when a record does not exist for the user.
var ErrNotFound = errors.New("record not found")

// Table Storage rejects batches larger than this.
const batchSize = 100

// DatabaseService stores ledger records in Azure Table Storage. Every table is
// partitioned by user id and keyed by record id.
type DatabaseService struct {
	serviceClient     *aztables.ServiceClient
	customersTable    string
	transactionsTable string
	paymentsTable     string
	currenciesTable   string
	balancesTable     string
	updatesTable      string
	now               func() time.Time
}

// NewDatabaseService connects to the table endpoint and makes sure all tables
// exist.
func NewDatabaseService(ctx context.Context, cfg *config.Config) (*DatabaseService, error) {
	tableURL := cfg.TableServiceURL
	if tableURL == "" {
		return nil, fmt.Errorf("TABLE_SERVICE_URL environment variable is required")
	}

	var client *aztables.ServiceClient
	if isLocal(tableURL) {
		slog.Info("using Azurite credentials for database service")
		name, key := azuriteCredentials()
		cred, err := aztables.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = aztables.NewServiceClientWithSharedKey(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential("database")
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = aztables.NewServiceClient(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	svc := &DatabaseService{
		serviceClient:     client,
		customersTable:    cfg.CustomersTable,
		transactionsTable: cfg.TransactionsTable,
		paymentsTable:     cfg.PaymentsTable,
		currenciesTable:   cfg.CurrenciesTable,
		balancesTable:     cfg.BalancesTable,
		updatesTable:      cfg.UpdatesTable,
		now:               time.Now,
	}

	if err := svc.CreateTables(ctx); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("database service initialized successfully",
		"table_url", tableURL,
		"transactions_table", svc.transactionsTable,
		"customers_table", svc.customersTable,
	)
	return svc, nil
}

// CreateTables ensures all required tables exist.
func (s *DatabaseService) CreateTables(ctx context.Context) error {
	tables := []string{
		s.customersTable,
		s.transactionsTable,
		s.paymentsTable,
		s.currenciesTable,
		s.balancesTable,
		s.updatesTable,
	}
	for _, tableName := range tables {
		_, err := s.serviceClient.CreateTable(ctx, tableName, nil)
		if err != nil {
			var azErr *azcore.ResponseError
			if errors.As(err, &azErr) && azErr.ErrorCode == "TableAlreadyExists" {
				continue
			}
			return fmt.Errorf("failed to create table %s: %w", tableName, err)
		}
	}
	return nil
}

func (s *DatabaseService) getClient(tableName string) *aztables.Client {
	return s.serviceClient.NewClient(tableName)
}

func (s *DatabaseService) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func isNotFound(err error) bool {
	var azErr *azcore.ResponseError
	return errors.As(err, &azErr) &&
		(azErr.StatusCode == http.StatusNotFound || azErr.ErrorCode == "ResourceNotFound")
}

// list returns every entity of table matching filter.
func (s *DatabaseService) list(ctx context.Context, table, filter string) ([]entity, error) {
	pager := s.getClient(table).NewListEntitiesPager(&aztables.ListEntitiesOptions{
		Filter: &filter,
	})

	var out []entity
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", table, err)
		}
		for _, raw := range resp.Entities {
			e, err := decodeEntity(raw)
			if err != nil {
				slog.Warn("skipping undecodable entity", "table", table, "error", err)
				continue
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *DatabaseService) get(ctx context.Context, table, userID, id string) (entity, error) {
	resp, err := s.getClient(table).GetEntity(ctx, userID, id, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s %s: %w", table, id, err)
	}
	return decodeEntity(resp.Value)
}

func (s *DatabaseService) upsert(ctx context.Context, table string, e entity) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode entity: %w", err)
	}
	if _, err := s.getClient(table).UpsertEntity(ctx, body, &aztables.UpsertEntityOptions{
		UpdateMode: aztables.UpdateModeReplace,
	}); err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", table, err)
	}
	return nil
}

func (s *DatabaseService) delete(ctx context.Context, table, userID, id string) error {
	if _, err := s.getClient(table).DeleteEntity(ctx, userID, id, nil); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
		}
		return fmt.Errorf("failed to delete %s %s: %w", table, id, err)
	}
	return nil
}

// submit sends actions in chunks. Every action in a chunk must share one
// partition, which holds since all rows are partitioned by user.
func (s *DatabaseService) submit(ctx context.Context, table string, actions []aztables.TransactionAction) error {
	client := s.getClient(table)
	for i := 0; i < len(actions); i += batchSize {
		end := min(i+batchSize, len(actions))
		if _, err := client.SubmitTransaction(ctx, actions[i:end], nil); err != nil {
			return fmt.Errorf("failed to submit %s batch %d-%d: %w", table, i, end, err)
		}
	}
	return nil
}

func deleteActions(userID string, rows []entity) []aztables.TransactionAction {
	actions := make([]aztables.TransactionAction, 0, len(rows))
	for _, row := range rows {
		key, _ := json.Marshal(entity{"PartitionKey": userID, "RowKey": row.str("RowKey")})
		actions = append(actions, aztables.TransactionAction{
			ActionType: aztables.TransactionTypeDelete,
			Entity:     key,
		})
	}
	return actions
}

// --- Customers ---

// ListCustomers returns all customers of the user.
func (s *DatabaseService) ListCustomers(ctx context.Context, userID string) ([]models.Customer, error) {
	rows, err := s.list(ctx, s.customersTable, partitionFilter(userID))
	if err != nil {
		return nil, err
	}
	customers := make([]models.Customer, 0, len(rows))
	for _, e := range rows {
		customers = append(customers, customerFromEntity(e))
	}
	return customers, nil
}

// GetCustomer returns a single customer.
func (s *DatabaseService) GetCustomer(ctx context.Context, userID, id string) (models.Customer, error) {
	e, err := s.get(ctx, s.customersTable, userID, id)
	if err != nil {
		return models.Customer{}, err
	}
	return customerFromEntity(e), nil
}

// SaveCustomer inserts or replaces a customer and returns the stored record.
func (s *DatabaseService) SaveCustomer(ctx context.Context, c models.Customer) (models.Customer, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt == "" {
		c.CreatedAt = s.timestamp()
	}
	if err := s.upsert(ctx, s.customersTable, customerEntity(c)); err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

// DeleteCustomer removes a customer. Callers check for remaining trades.
func (s *DatabaseService) DeleteCustomer(ctx context.Context, userID, id string) error {
	return s.delete(ctx, s.customersTable, userID, id)
}

// --- Transactions ---

// ListTransactions returns all trades of the user.
func (s *DatabaseService) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := s.list(ctx, s.transactionsTable, partitionFilter(userID))
	if err != nil {
		return nil, err
	}
	transactions := make([]models.Transaction, 0, len(rows))
	for _, e := range rows {
		transactions = append(transactions, transactionFromEntity(e))
	}
	return transactions, nil
}

// GetTransaction returns a single trade without its relations.
func (s *DatabaseService) GetTransaction(ctx context.Context, userID, id string) (models.Transaction, error) {
	e, err := s.get(ctx, s.transactionsTable, userID, id)
	if err != nil {
		return models.Transaction{}, err
	}
	return transactionFromEntity(e), nil
}

// SaveTransaction inserts or replaces a trade and returns the stored record.
func (s *DatabaseService) SaveTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	ts := s.timestamp()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt == "" {
		t.CreatedAt = ts
	}
	t.UpdatedAt = ts
	t.Customer, t.Payments = nil, nil
	if err := s.upsert(ctx, s.transactionsTable, transactionEntity(t)); err != nil {
		return models.Transaction{}, err
	}
	return t, nil
}

// DeleteTransaction removes a trade together with its payments and updates.
func (s *DatabaseService) DeleteTransaction(ctx context.Context, userID, id string) error {
	filter := partitionFilter(userID) + " and TransactionID eq " + odataQuote(id)
	for _, table := range []string{s.paymentsTable, s.updatesTable} {
		rows, err := s.list(ctx, table, filter)
		if err != nil {
			return err
		}
		if err := s.submit(ctx, table, deleteActions(userID, rows)); err != nil {
			return err
		}
	}
	return s.delete(ctx, s.transactionsTable, userID, id)
}

// GenerateRowKey returns a deterministic key for an imported trade, so the
// same file imported twice does not duplicate rows. index separates identical
// rows within one file.
func GenerateRowKey(t models.Transaction, index int) string {
	sig := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s|%d",
		t.UserID, t.CustomerID, t.TransactionDate, t.Type, t.Amount.String(),
		t.Currency, t.Rate.String(), t.Description, index)
	hash := sha256.Sum256([]byte(sig))
	return hex.EncodeToString(hash[:])
}

// SaveTransactions stores imported trades of one user with batched inserts,
// skipping rows that were imported before. It returns the trades that were new.
func (s *DatabaseService) SaveTransactions(ctx context.Context, userID string, transactions []models.Transaction) ([]models.Transaction, error) {
	if len(transactions) == 0 {
		return []models.Transaction{}, nil
	}

	existing, err := s.list(ctx, s.transactionsTable, partitionFilter(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list existing transactions: %w", err)
	}
	existingKeys := make(map[string]bool, len(existing))
	for _, e := range existing {
		existingKeys[e.str("RowKey")] = true
	}

	ts := s.timestamp()
	occurrences := make(map[string]int)
	var newTransactions []models.Transaction
	var batch []aztables.TransactionAction

	for _, t := range transactions {
		t.UserID = userID
		sig := GenerateRowKey(t, 0)
		idx := occurrences[sig]
		occurrences[sig]++

		t.ID = GenerateRowKey(t, idx)
		if existingKeys[t.ID] {
			continue
		}
		t.CreatedAt, t.UpdatedAt = ts, ts

		body, err := json.Marshal(transactionEntity(t))
		if err != nil {
			return nil, fmt.Errorf("failed to encode transaction: %w", err)
		}
		batch = append(batch, aztables.TransactionAction{
			ActionType: aztables.TransactionTypeInsertReplace,
			Entity:     body,
		})
		newTransactions = append(newTransactions, t)
	}

	if err := s.submit(ctx, s.transactionsTable, batch); err != nil {
		return nil, err
	}
	return newTransactions, nil
}

// --- Payments ---

// ListPayments returns the payments of one trade.
func (s *DatabaseService) ListPayments(ctx context.Context, userID, transactionID string) ([]models.Payment, error) {
	filter := partitionFilter(userID) + " and TransactionID eq " + odataQuote(transactionID)
	rows, err := s.list(ctx, s.paymentsTable, filter)
	if err != nil {
		return nil, err
	}
	payments := make([]models.Payment, 0, len(rows))
	for _, e := range rows {
		payments = append(payments, paymentFromEntity(e))
	}
	return payments, nil
}

// SavePayment stores a new payment and returns it.
func (s *DatabaseService) SavePayment(ctx context.Context, p models.Payment) (models.Payment, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt == "" {
		p.CreatedAt = s.timestamp()
	}
	if err := s.upsert(ctx, s.paymentsTable, paymentEntity(p)); err != nil {
		return models.Payment{}, err
	}
	return p, nil
}

// DeletePayment removes a payment and returns what was removed.
func (s *DatabaseService) DeletePayment(ctx context.Context, userID, id string) (models.Payment, error) {
	e, err := s.get(ctx, s.paymentsTable, userID, id)
	if err != nil {
		return models.Payment{}, err
	}
	if err := s.delete(ctx, s.paymentsTable, userID, id); err != nil {
		return models.Payment{}, err
	}
	return paymentFromEntity(e), nil
}

// --- Updates ---

// ListUpdates returns the audit trail of one trade.
func (s *DatabaseService) ListUpdates(ctx context.Context, userID, transactionID string) ([]models.TransactionUpdate, error) {
	filter := partitionFilter(userID) + " and TransactionID eq " + odataQuote(transactionID)
	rows, err := s.list(ctx, s.updatesTable, filter)
	if err != nil {
		return nil, err
	}
	updates := make([]models.TransactionUpdate, 0, len(rows))
	for _, e := range rows {
		updates = append(updates, updateFromEntity(e))
	}
	return updates, nil
}

// SaveUpdates appends audit entries in one batch.
func (s *DatabaseService) SaveUpdates(ctx context.Context, userID string, updates []models.TransactionUpdate) ([]models.TransactionUpdate, error) {
	ts := s.timestamp()
	batch := make([]aztables.TransactionAction, 0, len(updates))
	for i := range updates {
		if updates[i].ID == "" {
			updates[i].ID = uuid.NewString()
		}
		if updates[i].CreatedAt == "" {
			updates[i].CreatedAt = ts
		}
		body, err := json.Marshal(updateEntity(userID, updates[i]))
		if err != nil {
			return nil, fmt.Errorf("failed to encode update: %w", err)
		}
		batch = append(batch, aztables.TransactionAction{
			ActionType: aztables.TransactionTypeInsertReplace,
			Entity:     body,
		})
	}
	if err := s.submit(ctx, s.updatesTable, batch); err != nil {
		return nil, err
	}
	return updates, nil
}

// --- Currencies and balances ---

// ListCurrencies returns the currencies the user defined.
func (s *DatabaseService) ListCurrencies(ctx context.Context, userID string) ([]models.Currency, error) {
	rows, err := s.list(ctx, s.currenciesTable, partitionFilter(userID))
	if err != nil {
		return nil, err
	}
	currencies := make([]models.Currency, 0, len(rows))
	for _, e := range rows {
		currencies = append(currencies, currencyFromEntity(e))
	}
	return currencies, nil
}

// SaveCurrency stores a currency and returns it.
func (s *DatabaseService) SaveCurrency(ctx context.Context, c models.Currency) (models.Currency, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt == "" {
		c.CreatedAt = s.timestamp()
	}
	if err := s.upsert(ctx, s.currenciesTable, currencyEntity(c)); err != nil {
		return models.Currency{}, err
	}
	return c, nil
}

// DeleteCurrency removes a currency and its balance row.
func (s *DatabaseService) DeleteCurrency(ctx context.Context, userID, id string) error {
	if err := s.delete(ctx, s.currenciesTable, userID, id); err != nil {
		return err
	}
	if err := s.delete(ctx, s.balancesTable, userID, id); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// ListBalances returns one balance per currency.
func (s *DatabaseService) ListBalances(ctx context.Context, userID string) ([]models.Balance, error) {
	rows, err := s.list(ctx, s.balancesTable, partitionFilter(userID))
	if err != nil {
		return nil, err
	}
	balances := make([]models.Balance, 0, len(rows))
	for _, e := range rows {
		balances = append(balances, balanceFromEntity(e))
	}
	return balances, nil
}

// UpsertBalance sets the on-hand amount of one currency.
func (s *DatabaseService) UpsertBalance(ctx context.Context, b models.Balance) (models.Balance, error) {
	ts := s.timestamp()
	prev, err := s.get(ctx, s.balancesTable, b.UserID, b.CurrencyID)
	switch {
	case err == nil:
		b.ID = prev.str("BalanceID")
		b.CreatedAt = prev.str("CreatedAt")
	case errors.Is(err, ErrNotFound):
		b.ID = uuid.NewString()
		b.CreatedAt = ts
	default:
		return models.Balance{}, err
	}
	b.UpdatedAt = ts
	if err := s.upsert(ctx, s.balancesTable, balanceEntity(b)); err != nil {
		return models.Balance{}, err
	}
	return b, nil
}
