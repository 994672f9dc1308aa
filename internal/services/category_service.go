package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"coinmate/internal/db"
	"coinmate/internal/loader"
	"coinmate/internal/models"
	"coinmate/internal/scope"
	"coinmate/internal/store"
	"coinmate/internal/validator"

	"github.com/jmoiron/sqlx"
)

// SpaceGate resolves the space a category is filed under.
type SpaceGate interface {
	Gen(ctx context.Context, sc *scope.Scope, id string) (*models.Space, error)
	Default(ctx context.Context, sc *scope.Scope) (*models.Space, error)
}

type CategoryService struct {
	mutator
	categories CategoryStore
	spaces     SpaceGate
	byID       *loader.Def[string, *models.Category]
	reports    *loader.Def[store.ReportKey, *models.CategoryReport]
}

func NewCategoryService(txRunner db.TxRunner, categories CategoryStore, reports ReportStore, spaces SpaceGate, audit AuditStore, notifier Notifier) *CategoryService {
	return &CategoryService{
		mutator:    newMutator(txRunner, audit, notifier),
		categories: categories,
		spaces:     spaces,
		byID: loader.New("category", fetchByID(categories.GetByIDs, func(c *models.Category) string {
			return c.ID
		})),
		reports: loader.New("category_report", fetchReports(reports)),
	}
}

type CreateCategoryInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=32"`
	Description *string `json:"description" validate:"omitnil,max=256"`
	SpaceID     *string `json:"space_id" validate:"omitnil,uuid"`
}

type UpdateCategoryInput struct {
	ID          string  `json:"id" validate:"required,uuid"`
	Name        *string `json:"name" validate:"omitnil,min=1,max=32"`
	Description *string `json:"description" validate:"omitnil,max=256"`
}

type ReportInput struct {
	CategoryID string `json:"category_id" validate:"required,uuid"`
	Year       *int   `json:"year" validate:"omitnil,gte=1970,lte=9999"`
	Month      *int   `json:"month" validate:"omitnil,gte=1,lte=12"`
}

func (s *CategoryService) Create(ctx context.Context, sc *scope.Scope, input CreateCategoryInput) (*models.Category, error) {
	input.Name = strings.ToLower(input.Name)
	if err := validator.Struct(input); err != nil {
		return nil, err
	}
	if err := requireUser(sc, "create", "category"); err != nil {
		return nil, err
	}
	space, err := s.resolveSpace(ctx, sc, input.SpaceID)
	if err != nil {
		return nil, err
	}
	fields := store.Fields{}.Set("name", input.Name)
	if input.Description != nil {
		fields = fields.Set("description", *input.Description)
	}
	fields = fields.Set("user_id", sc.UserID()).Set("space_id", space.ID)

	var category models.Category
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		created, err := s.categories.Create(ctx, tx, fields)
		if err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		category = created
		return s.record(ctx, tx, sc, models.ObjectCategory, models.OperationCreate, created.ID, fields)
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, &ConflictError{Entity: "Category"}
		}
		return nil, err
	}
	s.byID.Prime(ctx, sc, category.ID, &category)
	s.committed(category.UserID, models.ObjectCategory, models.OperationCreate, category.ID)
	return &category, nil
}

func (s *CategoryService) resolveSpace(ctx context.Context, sc *scope.Scope, spaceID *string) (*models.Space, error) {
	var (
		space *models.Space
		err   error
	)
	if spaceID != nil {
		space, err = s.spaces.Gen(ctx, sc, *spaceID)
	} else {
		space, err = s.spaces.Default(ctx, sc)
	}
	if err != nil {
		return nil, err
	}
	if space == nil {
		return nil, &NotFoundError{Entity: "Space"}
	}
	return space, nil
}

// Update writes only the fields present in input.
func (s *CategoryService) Update(ctx context.Context, sc *scope.Scope, input UpdateCategoryInput) (*models.Category, error) {
	if input.Name != nil {
		lowered := strings.ToLower(*input.Name)
		input.Name = &lowered
	}
	if err := validator.Struct(input); err != nil {
		return nil, err
	}
	fields := store.Fields{}
	if input.Name != nil {
		fields = fields.Set("name", *input.Name)
	}
	if input.Description != nil {
		fields = fields.Set("description", *input.Description)
	}
	if len(fields) == 0 {
		return nil, validator.Field("name", "At least one field must be provided")
	}
	if err := requireUser(sc, "update", "category"); err != nil {
		return nil, err
	}
	existing, err := s.Gen(ctx, sc, input.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &NotFoundError{Entity: "Category"}
	}
	return s.write(ctx, sc, existing.ID, models.OperationUpdate, fields)
}

func (s *CategoryService) Delete(ctx context.Context, sc *scope.Scope, input IDInput) (*models.Category, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}
	if err := requireUser(sc, "delete", "category"); err != nil {
		return nil, err
	}
	existing, err := s.Gen(ctx, sc, input.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &NotFoundError{Entity: "Category"}
	}
	return s.write(ctx, sc, existing.ID, models.OperationDelete, store.Archived(s.now()))
}

func (s *CategoryService) write(ctx context.Context, sc *scope.Scope, id string, operation models.AuditOperation, fields store.Fields) (*models.Category, error) {
	var category models.Category
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		updated, err := s.categories.Update(ctx, tx, id, fields)
		if err != nil {
			return fmt.Errorf("%s category: %w", operation, err)
		}
		category = updated
		return s.record(ctx, tx, sc, models.ObjectCategory, operation, updated.ID, fields)
	})
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, &ConflictError{Entity: "Category"}
		case errors.Is(err, sql.ErrNoRows):
			return nil, &NotFoundError{Entity: "Category"}
		}
		return nil, err
	}
	if operation == models.OperationDelete {
		s.byID.Clear(ctx, sc, category.ID)
	} else {
		s.byID.Prime(ctx, sc, category.ID, &category)
	}
	s.committed(category.UserID, models.ObjectCategory, operation, category.ID)
	return &category, nil
}

func (s *CategoryService) Gen(ctx context.Context, sc *scope.Scope, id string) (*models.Category, error) {
	category, err := s.byID.Load(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	return owned(category, func(c *models.Category) string { return c.UserID }, sc), nil
}

func (s *CategoryService) List(ctx context.Context, sc *scope.Scope) ([]models.Category, error) {
	if !sc.Authenticated() {
		return nil, ErrUnauthorized
	}
	categories, err := s.categories.ListByUser(ctx, sc.UserID())
	if err != nil {
		return nil, err
	}
	for i := range categories {
		s.byID.Prime(ctx, sc, categories[i].ID, &categories[i])
	}
	return categories, nil
}

// Report aggregates the category's expenses for one month, defaulting to the
// current one. It returns nil when the category is not the caller's or the
// month has no expenses.
func (s *CategoryService) Report(ctx context.Context, sc *scope.Scope, input ReportInput) (*models.CategoryReport, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}
	category, err := s.Gen(ctx, sc, input.CategoryID)
	if err != nil || category == nil {
		return nil, err
	}
	now := s.now().UTC()
	key := store.ReportKey{CategoryID: category.ID, Year: now.Year(), Month: int(now.Month())}
	if input.Year != nil {
		key.Year = *input.Year
	}
	if input.Month != nil {
		key.Month = *input.Month
	}
	return s.reports.Load(ctx, sc, key)
}

func fetchReports(reports ReportStore) loader.Fetch[store.ReportKey, *models.CategoryReport] {
	return func(ctx context.Context, keys []store.ReportKey) (map[store.ReportKey]*models.CategoryReport, error) {
		rows, err := reports.CategoryExpenses(ctx, keys)
		if err != nil {
			return nil, err
		}
		found := make(map[store.ReportKey]*models.CategoryReport, len(rows))
		for i := range rows {
			row := &rows[i]
			found[store.ReportKey{CategoryID: row.CategoryID, Year: row.Year, Month: row.Month}] = row
		}
		return found, nil
	}
}

