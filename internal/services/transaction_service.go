package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coinmate/internal/db"
	"coinmate/internal/loader"
	"coinmate/internal/models"
	"coinmate/internal/money"
	"coinmate/internal/scope"
	"coinmate/internal/store"
	"coinmate/internal/validator"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// CategoryGate resolves the category a transaction is filed under.
type CategoryGate interface {
	Gen(ctx context.Context, sc *scope.Scope, id string) (*models.Category, error)
}

type TransactionService struct {
	mutator
	txStore      TransactionStore
	categories   CategoryGate
	rates        RateSource
	baseCurrency string
	byID         *loader.Def[string, *models.Transaction]
}

func NewTransactionService(txRunner db.TxRunner, txStore TransactionStore, categories CategoryGate, rates RateSource, audit AuditStore, notifier Notifier, baseCurrency string) *TransactionService {
	return &TransactionService{
		mutator:      newMutator(txRunner, audit, notifier),
		txStore:      txStore,
		categories:   categories,
		rates:        rates,
		baseCurrency: baseCurrency,
		byID: loader.New("transaction", fetchByID(txStore.GetByIDs, func(t *models.Transaction) string {
			return t.ID
		})),
	}
}

type CreateTransactionInput struct {
	Concept      string  `json:"concept" validate:"required,min=1,max=64"`
	Description  *string `json:"description" validate:"omitnil,max=256"`
	Currency     string  `json:"currency" validate:"required,oneof=COP USD"`
	Amount       string  `json:"amount" validate:"required,amount"`
	TransactedAt string  `json:"transacted_at" validate:"required,timestamp"`
	Type         string  `json:"type" validate:"required,oneof=expense income saving"`
	CategoryID   string  `json:"category_id" validate:"required,uuid"`
}

type UpdateTransactionInput struct {
	ID           string  `json:"id" validate:"required,uuid"`
	Concept      *string `json:"concept" validate:"omitnil,min=1,max=64"`
	Description  *string `json:"description" validate:"omitnil,max=256"`
	Currency     *string `json:"currency" validate:"omitnil,oneof=COP USD"`
	Amount       *string `json:"amount" validate:"omitnil,amount"`
	TransactedAt *string `json:"transacted_at" validate:"omitnil,timestamp"`
	Type         *string `json:"type" validate:"omitnil,oneof=expense income saving"`
	CategoryID   *string `json:"category_id" validate:"omitnil,uuid"`
}

type ListTransactionsInput struct {
	Type   string  `json:"type" validate:"required,oneof=expense income saving"`
	Limit  *int    `json:"limit" validate:"omitnil,gte=1,lte=100"`
	Cursor *string `json:"cursor" validate:"omitnil,uuid"`
}

// Page is one page of the transaction listing. Cursor is nil on the last page.
type Page struct {
	Edges  []*models.Transaction `json:"edges"`
	Cursor *string               `json:"cursor"`
}

func (s *TransactionService) Create(ctx context.Context, sc *scope.Scope, input CreateTransactionInput) (*models.Transaction, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}
	if err := requireUser(sc, "create", "transaction"); err != nil {
		return nil, err
	}
	category, err := s.category(ctx, sc, input.CategoryID)
	if err != nil {
		return nil, err
	}
	originalCents, err := money.ParseCents(input.Amount)
	if err != nil {
		return nil, validator.Field("amount", "Amount is out of range")
	}
	transactedAt, err := validator.ParseTimestamp(input.TransactedAt)
	if err != nil {
		return nil, validator.Field("transacted_at", "Must be an ISO 8601 date or timestamp")
	}
	amountFields, err := s.convert(ctx, input.Currency, originalCents)
	if err != nil {
		return nil, err
	}

	fields := store.Fields{}.Set("concept", input.Concept)
	if input.Description != nil {
		fields = fields.Set("description", *input.Description)
	}
	fields = append(fields, amountFields...)
	fields = fields.
		Set("transacted_at", transactedAt).
		Set("type", input.Type).
		Set("user_id", sc.UserID()).
		Set("category_id", category.ID).
		Set("space_id", category.SpaceID)

	var transaction models.Transaction
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		created, err := s.txStore.Create(ctx, tx, fields)
		if err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		transaction = created
		return s.record(ctx, tx, sc, models.ObjectTransaction, models.OperationCreate, created.ID, fields)
	})
	if err != nil {
		return nil, err
	}
	s.byID.Prime(ctx, sc, transaction.ID, &transaction)
	s.committed(transaction.UserID, models.ObjectTransaction, models.OperationCreate, transaction.ID)
	return &transaction, nil
}

// Update writes only the fields present in input. A new amount or currency
// recomputes the base-currency amount from the resulting original pair.
func (s *TransactionService) Update(ctx context.Context, sc *scope.Scope, input UpdateTransactionInput) (*models.Transaction, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}
	if err := requireUser(sc, "update", "transaction"); err != nil {
		return nil, err
	}
	existing, err := s.Gen(ctx, sc, input.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &NotFoundError{Entity: "Transaction"}
	}

	fields := store.Fields{}
	if input.Concept != nil {
		fields = fields.Set("concept", *input.Concept)
	}
	if input.Description != nil {
		fields = fields.Set("description", *input.Description)
	}
	if input.Amount != nil || input.Currency != nil {
		currency := existing.OriginalCurrency
		if input.Currency != nil {
			currency = *input.Currency
		}
		originalCents := existing.OriginalAmountCents
		if input.Amount != nil {
			originalCents, err = money.ParseCents(*input.Amount)
			if err != nil {
				return nil, validator.Field("amount", "Amount is out of range")
			}
		}
		amountFields, err := s.convert(ctx, currency, originalCents)
		if err != nil {
			return nil, err
		}
		fields = append(fields, amountFields...)
	}
	if input.TransactedAt != nil {
		transactedAt, err := validator.ParseTimestamp(*input.TransactedAt)
		if err != nil {
			return nil, validator.Field("transacted_at", "Must be an ISO 8601 date or timestamp")
		}
		fields = fields.Set("transacted_at", transactedAt)
	}
	if input.Type != nil {
		fields = fields.Set("type", *input.Type)
	}
	if input.CategoryID != nil {
		category, err := s.category(ctx, sc, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		fields = fields.Set("category_id", category.ID).Set("space_id", category.SpaceID)
	}
	if len(fields) == 0 {
		return nil, validator.Field("id", "At least one field must be provided")
	}
	return s.write(ctx, sc, existing.ID, models.OperationUpdate, fields)
}

func (s *TransactionService) Delete(ctx context.Context, sc *scope.Scope, input IDInput) (*models.Transaction, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}
	if err := requireUser(sc, "delete", "transaction"); err != nil {
		return nil, err
	}
	existing, err := s.Gen(ctx, sc, input.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &NotFoundError{Entity: "Transaction"}
	}
	return s.write(ctx, sc, existing.ID, models.OperationDelete, store.Archived(s.now()))
}

func (s *TransactionService) write(ctx context.Context, sc *scope.Scope, id string, operation models.AuditOperation, fields store.Fields) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		updated, err := s.txStore.Update(ctx, tx, id, fields)
		if err != nil {
			return fmt.Errorf("%s transaction: %w", operation, err)
		}
		transaction = updated
		return s.record(ctx, tx, sc, models.ObjectTransaction, operation, updated.ID, fields)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: "Transaction"}
		}
		return nil, err
	}
	if operation == models.OperationDelete {
		s.byID.Clear(ctx, sc, transaction.ID)
	} else {
		s.byID.Prime(ctx, sc, transaction.ID, &transaction)
	}
	s.committed(transaction.UserID, models.ObjectTransaction, operation, transaction.ID)
	return &transaction, nil
}

func (s *TransactionService) Gen(ctx context.Context, sc *scope.Scope, id string) (*models.Transaction, error) {
	transaction, err := s.byID.Load(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	return owned(transaction, func(t *models.Transaction) string { return t.UserID }, sc), nil
}

// List pages through the caller's active transactions of one type, newest first.
func (s *TransactionService) List(ctx context.Context, sc *scope.Scope, input ListTransactionsInput) (Page, error) {
	if !sc.Authenticated() {
		return Page{}, ErrUnauthorized
	}
	if err := validator.Struct(input); err != nil {
		return Page{}, err
	}
	limit := defaultPageSize
	if input.Limit != nil {
		limit = *input.Limit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	query := store.ListQuery{UserID: sc.UserID(), Type: input.Type, Limit: limit + 1}
	if input.Cursor != nil {
		cursor, err := s.txStore.CursorOf(ctx, sc.UserID(), *input.Cursor)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return Page{}, validator.Field("cursor", "Cursor does not match a transaction")
			}
			return Page{}, err
		}
		query.After = &cursor
	}
	ids, err := s.txStore.ListIDs(ctx, query)
	if err != nil {
		return Page{}, err
	}
	hasMore := len(ids) > limit
	if hasMore {
		ids = ids[:limit]
	}
	rows, err := s.byID.LoadMany(ctx, sc, ids)
	if err != nil {
		return Page{}, err
	}
	page := Page{Edges: make([]*models.Transaction, 0, len(rows))}
	for _, row := range rows {
		if row != nil {
			page.Edges = append(page.Edges, row)
		}
	}
	if hasMore && len(ids) > 0 {
		last := ids[len(ids)-1]
		page.Cursor = &last
	}
	return page, nil
}

func (s *TransactionService) category(ctx context.Context, sc *scope.Scope, id string) (*models.Category, error) {
	category, err := s.categories.Gen(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, &NotFoundError{Entity: "Category"}
	}
	return category, nil
}

// convert returns the four amount columns for an amount entered in currency.
// The rate is fetched before any transaction opens.
func (s *TransactionService) convert(ctx context.Context, currency string, originalCents int64) (store.Fields, error) {
	rate := decimal.NewFromInt(1)
	if currency != s.baseCurrency {
		fetched, err := s.rates.FetchRate(ctx, currency+s.baseCurrency)
		if err != nil {
			return nil, err
		}
		rate = fetched
	}
	return store.Fields{}.
		Set("currency", s.baseCurrency).
		Set("original_currency", currency).
		Set("amount_cents", money.Convert(originalCents, rate)).
		Set("original_amount_cents", originalCents), nil
}
