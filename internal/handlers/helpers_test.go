package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"coinmate/internal/auth"
	"coinmate/internal/config"
	"coinmate/internal/models"
	"coinmate/internal/scope"
	"coinmate/internal/services"
	"coinmate/internal/websocket"

	"github.com/shopspring/decimal"
)

const testSecret = "secret"

type stubUsers struct {
	signUpFn func(ctx context.Context, sc *scope.Scope, input services.SignUpInput) (services.AuthResult, error)
	signInFn func(ctx context.Context, sc *scope.Scope, input services.SignInInput) (services.AuthResult, error)
	meFn     func(ctx context.Context, sc *scope.Scope) (services.AuthResult, error)
}

func (s stubUsers) SignUp(ctx context.Context, sc *scope.Scope, input services.SignUpInput) (services.AuthResult, error) {
	return s.signUpFn(ctx, sc, input)
}

func (s stubUsers) SignIn(ctx context.Context, sc *scope.Scope, input services.SignInInput) (services.AuthResult, error) {
	return s.signInFn(ctx, sc, input)
}

func (s stubUsers) Me(ctx context.Context, sc *scope.Scope) (services.AuthResult, error) {
	return s.meFn(ctx, sc)
}

type stubSpaces struct {
	createFn func(ctx context.Context, sc *scope.Scope, input services.CreateSpaceInput) (*models.Space, error)
	listFn   func(ctx context.Context, sc *scope.Scope) ([]models.Space, error)
	deleteFn func(ctx context.Context, sc *scope.Scope, input services.IDInput) (*models.Space, error)
}

func (s stubSpaces) Create(ctx context.Context, sc *scope.Scope, input services.CreateSpaceInput) (*models.Space, error) {
	return s.createFn(ctx, sc, input)
}

func (s stubSpaces) List(ctx context.Context, sc *scope.Scope) ([]models.Space, error) {
	return s.listFn(ctx, sc)
}

func (s stubSpaces) Delete(ctx context.Context, sc *scope.Scope, input services.IDInput) (*models.Space, error) {
	return s.deleteFn(ctx, sc, input)
}

type stubCategories struct {
	createFn func(ctx context.Context, sc *scope.Scope, input services.CreateCategoryInput) (*models.Category, error)
	updateFn func(ctx context.Context, sc *scope.Scope, input services.UpdateCategoryInput) (*models.Category, error)
	deleteFn func(ctx context.Context, sc *scope.Scope, input services.IDInput) (*models.Category, error)
	genFn    func(ctx context.Context, sc *scope.Scope, id string) (*models.Category, error)
	listFn   func(ctx context.Context, sc *scope.Scope) ([]models.Category, error)
	reportFn func(ctx context.Context, sc *scope.Scope, input services.ReportInput) (*models.CategoryReport, error)
}

func (s stubCategories) Create(ctx context.Context, sc *scope.Scope, input services.CreateCategoryInput) (*models.Category, error) {
	return s.createFn(ctx, sc, input)
}

func (s stubCategories) Update(ctx context.Context, sc *scope.Scope, input services.UpdateCategoryInput) (*models.Category, error) {
	return s.updateFn(ctx, sc, input)
}

func (s stubCategories) Delete(ctx context.Context, sc *scope.Scope, input services.IDInput) (*models.Category, error) {
	return s.deleteFn(ctx, sc, input)
}

func (s stubCategories) Gen(ctx context.Context, sc *scope.Scope, id string) (*models.Category, error) {
	return s.genFn(ctx, sc, id)
}

func (s stubCategories) List(ctx context.Context, sc *scope.Scope) ([]models.Category, error) {
	return s.listFn(ctx, sc)
}

func (s stubCategories) Report(ctx context.Context, sc *scope.Scope, input services.ReportInput) (*models.CategoryReport, error) {
	return s.reportFn(ctx, sc, input)
}

type stubTransactions struct {
	createFn func(ctx context.Context, sc *scope.Scope, input services.CreateTransactionInput) (*models.Transaction, error)
	updateFn func(ctx context.Context, sc *scope.Scope, input services.UpdateTransactionInput) (*models.Transaction, error)
	deleteFn func(ctx context.Context, sc *scope.Scope, input services.IDInput) (*models.Transaction, error)
	genFn    func(ctx context.Context, sc *scope.Scope, id string) (*models.Transaction, error)
	listFn   func(ctx context.Context, sc *scope.Scope, input services.ListTransactionsInput) (services.Page, error)
}

func (s stubTransactions) Create(ctx context.Context, sc *scope.Scope, input services.CreateTransactionInput) (*models.Transaction, error) {
	return s.createFn(ctx, sc, input)
}

func (s stubTransactions) Update(ctx context.Context, sc *scope.Scope, input services.UpdateTransactionInput) (*models.Transaction, error) {
	return s.updateFn(ctx, sc, input)
}

func (s stubTransactions) Delete(ctx context.Context, sc *scope.Scope, input services.IDInput) (*models.Transaction, error) {
	return s.deleteFn(ctx, sc, input)
}

func (s stubTransactions) Gen(ctx context.Context, sc *scope.Scope, id string) (*models.Transaction, error) {
	return s.genFn(ctx, sc, id)
}

func (s stubTransactions) List(ctx context.Context, sc *scope.Scope, input services.ListTransactionsInput) (services.Page, error) {
	return s.listFn(ctx, sc, input)
}

type stubAudit struct {
	historyFn func(ctx context.Context, sc *scope.Scope, input services.HistoryInput) (services.History, error)
}

func (s stubAudit) History(ctx context.Context, sc *scope.Scope, input services.HistoryInput) (services.History, error) {
	return s.historyFn(ctx, sc, input)
}

type stubRates struct {
	fetchFn func(ctx context.Context, pair string) (decimal.Decimal, error)
}

func (s stubRates) FetchRate(ctx context.Context, pair string) (decimal.Decimal, error) {
	return s.fetchFn(ctx, pair)
}

func newTestRouter(svc Services) http.Handler {
	cfg := config.Config{
		AppEnv:         "test",
		JWTSecret:      testSecret,
		TokenTTL:       time.Minute,
		AllowedOrigins: []string{"*"},
	}
	return New(cfg, svc, websocket.NewHub()).Routes()
}

func serve(t *testing.T, router http.Handler, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		token, err := auth.GenerateToken(testSecret, userID, time.Minute)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}
