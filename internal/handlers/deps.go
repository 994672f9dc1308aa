package handlers

import (
	"context"

	"coinmate/internal/models"
	"coinmate/internal/scope"
	"coinmate/internal/services"

	"github.com/shopspring/decimal"
)

type UserService interface {
	SignUp(ctx context.Context, sc *scope.Scope, input services.SignUpInput) (services.AuthResult, error)
	SignIn(ctx context.Context, sc *scope.Scope, input services.SignInInput) (services.AuthResult, error)
	Me(ctx context.Context, sc *scope.Scope) (services.AuthResult, error)
}

type SpaceService interface {
	Create(ctx context.Context, sc *scope.Scope, input services.CreateSpaceInput) (*models.Space, error)
	List(ctx context.Context, sc *scope.Scope) ([]models.Space, error)
	Delete(ctx context.Context, sc *scope.Scope, input services.IDInput) (*models.Space, error)
}

type CategoryService interface {
	Create(ctx context.Context, sc *scope.Scope, input services.CreateCategoryInput) (*models.Category, error)
	Update(ctx context.Context, sc *scope.Scope, input services.UpdateCategoryInput) (*models.Category, error)
	Delete(ctx context.Context, sc *scope.Scope, input services.IDInput) (*models.Category, error)
	Gen(ctx context.Context, sc *scope.Scope, id string) (*models.Category, error)
	List(ctx context.Context, sc *scope.Scope) ([]models.Category, error)
	Report(ctx context.Context, sc *scope.Scope, input services.ReportInput) (*models.CategoryReport, error)
}

type TransactionService interface {
	Create(ctx context.Context, sc *scope.Scope, input services.CreateTransactionInput) (*models.Transaction, error)
	Update(ctx context.Context, sc *scope.Scope, input services.UpdateTransactionInput) (*models.Transaction, error)
	Delete(ctx context.Context, sc *scope.Scope, input services.IDInput) (*models.Transaction, error)
	Gen(ctx context.Context, sc *scope.Scope, id string) (*models.Transaction, error)
	List(ctx context.Context, sc *scope.Scope, input services.ListTransactionsInput) (services.Page, error)
}

type AuditService interface {
	History(ctx context.Context, sc *scope.Scope, input services.HistoryInput) (services.History, error)
}

type RateService interface {
	FetchRate(ctx context.Context, pair string) (decimal.Decimal, error)
}
