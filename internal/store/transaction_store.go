package store

import (
	"context"
	"time"

	"coinmate/internal/models"
)

// TransactionStore persists transaction_ledger rows.
type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Create(ctx context.Context, tx Getter, fields Fields) (models.Transaction, error) {
	return insertReturning[models.Transaction](ctx, tx, tableTransaction, fields)
}

func (s *TransactionStore) Update(ctx context.Context, tx Getter, id string, fields Fields) (models.Transaction, error) {
	return updateReturning[models.Transaction](ctx, tx, tableTransaction, id, fields)
}

func (s *TransactionStore) GetByIDs(ctx context.Context, ids []string) ([]models.Transaction, error) {
	return selectByIDs[models.Transaction](ctx, s.db, tableTransaction, ids, true)
}

// Cursor is the sort position of a row in the (transacted_at DESC, id DESC) order.
type Cursor struct {
	ID           string    `db:"id"`
	TransactedAt time.Time `db:"transacted_at"`
}

// CursorOf resolves a cursor id among the user's rows. Archived rows still
// resolve so a page boundary survives the deletion of its last row.
func (s *TransactionStore) CursorOf(ctx context.Context, userID, id string) (Cursor, error) {
	var cursor Cursor
	err := s.db.GetContext(ctx, &cursor, `
		SELECT id, transacted_at FROM transaction_ledger WHERE user_id = $1 AND id = $2
	`, userID, id)
	return cursor, err
}

type ListQuery struct {
	UserID string
	Type   string
	Limit  int
	After  *Cursor
}

// ListIDs returns up to Limit ids of active rows in (transacted_at DESC, id DESC) order.
func (s *TransactionStore) ListIDs(ctx context.Context, q ListQuery) ([]string, error) {
	predicate := OwnedActive(q.UserID).And("type = ?", q.Type)
	if q.After != nil {
		predicate.And("(transacted_at, id) < (?, ?)", q.After.TransactedAt, q.After.ID)
	}
	where, args := predicate.Where("ORDER BY transacted_at DESC, id DESC LIMIT ?", q.Limit)
	var ids []string
	err := s.db.SelectContext(ctx, &ids, "SELECT id FROM transaction_ledger "+where, args...)
	return ids, err
}
