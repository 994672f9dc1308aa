package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	tableUser        = "app_user"
	tableSpace       = "space"
	tableSpaceUser   = "space_user"
	tableCategory    = "category"
	tableTransaction = "transaction_ledger"
	tableAudit       = "audit"
	tableRates       = "exchange_rate_cache"
)

// Field is one column written by a mutation.
type Field struct {
	Column string
	Value  any
}

// Fields is the ordered set of columns a mutation writes. The same value is
// recorded as the audit payload, so what is audited is what was written.
type Fields []Field

func (f Fields) Set(column string, value any) Fields {
	for i := range f {
		if f[i].Column == column {
			f[i].Value = value
			return f
		}
	}
	return append(f, Field{Column: column, Value: value})
}

func (f Fields) Get(column string) (any, bool) {
	for _, field := range f {
		if field.Column == column {
			return field.Value, true
		}
	}
	return nil, false
}

func (f Fields) Payload() map[string]any {
	payload := make(map[string]any, len(f))
	for _, field := range f {
		payload[field.Column] = field.Value
	}
	return payload
}

// Archived returns the fields of a soft delete.
func Archived(now time.Time) Fields {
	return Fields{{Column: "archived_at", Value: now.UTC()}}
}

func insertQuery(table string, fields Fields) (string, []any) {
	columns := make([]string, 0, len(fields))
	placeholders := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for i, field := range fields {
		columns = append(columns, field.Column)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, field.Value)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	return query, args
}

// updateQuery only touches active rows: archived rows are immutable.
func updateQuery(table, id string, fields Fields) (string, []any) {
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for i, field := range fields {
		sets = append(sets, fmt.Sprintf("%s = $%d", field.Column, i+1))
		args = append(args, field.Value)
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d AND archived_at IS NULL RETURNING *",
		table, strings.Join(sets, ", "), len(args))
	return query, args
}

func insertReturning[T any](ctx context.Context, tx Getter, table string, fields Fields) (T, error) {
	var row T
	if len(fields) == 0 {
		return row, fmt.Errorf("insert into %s: no fields", table)
	}
	query, args := insertQuery(table, fields)
	err := tx.GetContext(ctx, &row, query, args...)
	return row, err
}

func updateReturning[T any](ctx context.Context, tx Getter, table, id string, fields Fields) (T, error) {
	var row T
	if len(fields) == 0 {
		return row, fmt.Errorf("update %s: no fields", table)
	}
	query, args := updateQuery(table, id, fields)
	err := tx.GetContext(ctx, &row, query, args...)
	return row, err
}

// Predicate builds a WHERE clause with "?" placeholders, rebound for
// PostgreSQL when rendered.
type Predicate struct {
	clauses []string
	args    []any
}

// OwnedActive is the base predicate of every list query: rows owned by
// userID that have not been soft deleted.
func OwnedActive(userID string) *Predicate {
	return (&Predicate{}).And("user_id = ?", userID).And("archived_at IS NULL")
}

func (p *Predicate) And(clause string, args ...any) *Predicate {
	p.clauses = append(p.clauses, clause)
	p.args = append(p.args, args...)
	return p
}

func (p *Predicate) Args() []any {
	return p.args
}

// Where renders the clause and appends trailing, e.g. ORDER BY and LIMIT
// with their own "?" placeholders.
func (p *Predicate) Where(trailing string, args ...any) (string, []any) {
	query := "WHERE " + strings.Join(p.clauses, " AND ")
	if trailing != "" {
		query += " " + trailing
	}
	all := append(append([]any{}, p.args...), args...)
	return sqlx.Rebind(sqlx.DOLLAR, query), all
}

func selectByIDs[T any](ctx context.Context, db Selecter, table string, ids []string, activeOnly bool) ([]T, error) {
	var rows []T
	if len(ids) == 0 {
		return rows, nil
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = ANY($1)", table)
	if activeOnly {
		query += " AND archived_at IS NULL"
	}
	err := db.SelectContext(ctx, &rows, query, pq.Array(ids))
	return rows, err
}
