package store

import (
	"context"

	"coinmate/internal/models"
)

type CategoryStore struct {
	db DB
}

func NewCategoryStore(db DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) Create(ctx context.Context, tx Getter, fields Fields) (models.Category, error) {
	return insertReturning[models.Category](ctx, tx, tableCategory, fields)
}

func (s *CategoryStore) Update(ctx context.Context, tx Getter, id string, fields Fields) (models.Category, error) {
	return updateReturning[models.Category](ctx, tx, tableCategory, id, fields)
}

func (s *CategoryStore) GetByIDs(ctx context.Context, ids []string) ([]models.Category, error) {
	return selectByIDs[models.Category](ctx, s.db, tableCategory, ids, true)
}

func (s *CategoryStore) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	var categories []models.Category
	where, args := OwnedActive(userID).Where("ORDER BY name ASC, id ASC")
	err := s.db.SelectContext(ctx, &categories, "SELECT * FROM category "+where, args...)
	return categories, err
}
