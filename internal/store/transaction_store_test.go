package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"coinmate/internal/models"

	"github.com/lib/pq"
)

func TestTransactionStoreCreate(t *testing.T) {
	ctx := context.Background()
	tx := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "INSERT INTO transaction_ledger (concept, amount_cents)") || !strings.Contains(query, "RETURNING *") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != "lunch" || args[1] != int64(1500) {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*models.Transaction) = models.Transaction{ID: "tx-1", Concept: "lunch", AmountCents: 1500}
			return nil
		},
	}
	store := NewTransactionStore(stubDB{})
	row, err := store.Create(ctx, tx, Fields{{Column: "concept", Value: "lunch"}, {Column: "amount_cents", Value: int64(1500)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.ID != "tx-1" {
		t.Fatalf("unexpected row: %#v", row)
	}
}

func TestTransactionStoreCreateRequiresFields(t *testing.T) {
	store := NewTransactionStore(stubDB{})
	if _, err := store.Create(context.Background(), stubGetter{}, nil); err == nil {
		t.Fatal("expected error for empty insert")
	}
}

func TestTransactionStoreGetByIDsFiltersArchived(t *testing.T) {
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "WHERE id = ANY($1) AND archived_at IS NULL") {
				t.Fatalf("unexpected query: %s", query)
			}
			ids, ok := args[0].(*pq.StringArray)
			if !ok || len(*ids) != 2 {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*[]models.Transaction) = []models.Transaction{{ID: "tx-1"}}
			return nil
		},
	})
	rows, err := store.GetByIDs(context.Background(), []string{"tx-1", "tx-2"})
	if err != nil || len(rows) != 1 {
		t.Fatalf("unexpected result: %#v %v", rows, err)
	}
}

func TestTransactionStoreGetByIDsSkipsEmpty(t *testing.T) {
	store := NewTransactionStore(stubDB{
		selectFn: func(context.Context, any, string, ...any) error {
			t.Fatal("unexpected query")
			return nil
		},
	})
	if _, err := store.GetByIDs(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionStoreListIDsFirstPage(t *testing.T) {
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "SELECT id FROM transaction_ledger WHERE user_id = $1 AND archived_at IS NULL AND type = $2") {
				t.Fatalf("unexpected query: %s", query)
			}
			if !strings.Contains(query, "ORDER BY transacted_at DESC, id DESC LIMIT $3") {
				t.Fatalf("unexpected order: %s", query)
			}
			if strings.Contains(query, "(transacted_at, id) <") {
				t.Fatalf("first page must not filter by cursor: %s", query)
			}
			if len(args) != 3 || args[0] != "user-1" || args[1] != "expense" || args[2] != 11 {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*[]string) = []string{"tx-2", "tx-1"}
			return nil
		},
	})
	ids, err := store.ListIDs(context.Background(), ListQuery{UserID: "user-1", Type: "expense", Limit: 11})
	if err != nil || len(ids) != 2 {
		t.Fatalf("unexpected result: %#v %v", ids, err)
	}
}

func TestTransactionStoreListIDsAfterCursor(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, _ any, query string, args ...any) error {
			if !strings.Contains(query, "(transacted_at, id) < ($3, $4)") || !strings.Contains(query, "LIMIT $5") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[2] != at || args[3] != "tx-9" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	})
	_, err := store.ListIDs(context.Background(), ListQuery{UserID: "user-1", Type: "income", Limit: 6, After: &Cursor{ID: "tx-9", TransactedAt: at}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionStoreCursorOfIgnoresArchival(t *testing.T) {
	store := NewTransactionStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if strings.Contains(query, "archived_at") {
				t.Fatalf("cursor lookup must not filter archived rows: %s", query)
			}
			if len(args) != 2 || args[0] != "user-1" || args[1] != "tx-9" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*Cursor) = Cursor{ID: "tx-9"}
			return nil
		},
	})
	cursor, err := store.CursorOf(context.Background(), "user-1", "tx-9")
	if err != nil || cursor.ID != "tx-9" {
		t.Fatalf("unexpected result: %#v %v", cursor, err)
	}
}

func TestTransactionStoreUpdate(t *testing.T) {
	tx := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.HasPrefix(query, "UPDATE transaction_ledger SET archived_at = $1 WHERE id = $2") {
				t.Fatalf("unexpected query: %s", query)
			}
			*dest.(*models.Transaction) = models.Transaction{ID: "tx-1"}
			return nil
		},
	}
	store := NewTransactionStore(stubDB{})
	if _, err := store.Update(context.Background(), tx, "tx-1", Archived(time.Now())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
