package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

const (
	CurrencyCOP = "COP"
	CurrencyUSD = "USD"
)

const (
	TypeExpense = "expense"
	TypeIncome  = "income"
	TypeSaving  = "saving"
)

const RoleAdmin = "admin"

type AuditObject string

const (
	ObjectUser        AuditObject = "user"
	ObjectSpace       AuditObject = "space"
	ObjectSpaceUser   AuditObject = "space_user"
	ObjectCategory    AuditObject = "category"
	ObjectTransaction AuditObject = "transaction_ledger"
)

func (o AuditObject) Valid() bool {
	switch o {
	case ObjectUser, ObjectSpace, ObjectSpaceUser, ObjectCategory, ObjectTransaction:
		return true
	}
	return false
}

type AuditOperation string

const (
	OperationCreate AuditOperation = "create"
	OperationUpdate AuditOperation = "update"
	OperationDelete AuditOperation = "delete"
)

func (o AuditOperation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Space struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	UserID      string     `db:"user_id" json:"user_id"`
	ArchivedAt  *time.Time `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

type SpaceUser struct {
	ID         string     `db:"id" json:"id"`
	SpaceID    string     `db:"space_id" json:"space_id"`
	UserID     string     `db:"user_id" json:"user_id"`
	Role       string     `db:"role" json:"role"`
	ArchivedAt *time.Time `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

type Category struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	UserID      string     `db:"user_id" json:"user_id"`
	SpaceID     string     `db:"space_id" json:"space_id"`
	ArchivedAt  *time.Time `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Transaction is a row of transaction_ledger. Currency and AmountCents hold
// the value in the base currency; the Original* fields keep what was entered.
type Transaction struct {
	ID                  string     `db:"id" json:"id"`
	Concept             string     `db:"concept" json:"concept"`
	Description         *string    `db:"description" json:"description,omitempty"`
	Currency            string     `db:"currency" json:"currency"`
	OriginalCurrency    string     `db:"original_currency" json:"original_currency"`
	AmountCents         int64      `db:"amount_cents" json:"amount_cents"`
	OriginalAmountCents int64      `db:"original_amount_cents" json:"original_amount_cents"`
	TransactedAt        time.Time  `db:"transacted_at" json:"transacted_at"`
	Type                string     `db:"type" json:"type"`
	UserID              string     `db:"user_id" json:"user_id"`
	CategoryID          string     `db:"category_id" json:"category_id"`
	SpaceID             string     `db:"space_id" json:"space_id"`
	ArchivedAt          *time.Time `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

type AuditEntry struct {
	ID        string         `db:"id" json:"id"`
	UserID    *string        `db:"user_id" json:"user_id"`
	Object    AuditObject    `db:"object" json:"object"`
	ObjectID  string         `db:"object_id" json:"object_id"`
	Operation AuditOperation `db:"operation" json:"operation"`
	Data      types.JSONText `db:"data" json:"data"`
	Metadata  types.JSONText `db:"metadata" json:"metadata"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

type ExchangeRate struct {
	ID           string             `db:"id" json:"id"`
	CurrencyCode string             `db:"currency_code" json:"currency_code"`
	RateCents    int64              `db:"rate_cents" json:"rate_cents"`
	Provider     string             `db:"provider" json:"provider"`
	Data         types.NullJSONText `db:"data" json:"-"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updated_at"`
}

// CategoryReport aggregates the expense rows of one category over one calendar month.
type CategoryReport struct {
	CategoryID         string `db:"category_id" json:"category_id"`
	Year               int    `db:"year" json:"year"`
	Month              int    `db:"month" json:"month"`
	TotalCount         int64  `db:"total_count" json:"total_count"`
	TotalAmountCents   int64  `db:"total_amount_cents" json:"total_amount_cents"`
	AverageAmountCents int64  `db:"average_amount_cents" json:"average_amount_cents"`
}
