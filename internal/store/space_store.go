package store

import (
	"context"

	"coinmate/internal/models"
)

type SpaceStore struct {
	db DB
}

func NewSpaceStore(db DB) *SpaceStore {
	return &SpaceStore{db: db}
}

func (s *SpaceStore) Create(ctx context.Context, tx Getter, fields Fields) (models.Space, error) {
	return insertReturning[models.Space](ctx, tx, tableSpace, fields)
}

func (s *SpaceStore) Update(ctx context.Context, tx Getter, id string, fields Fields) (models.Space, error) {
	return updateReturning[models.Space](ctx, tx, tableSpace, id, fields)
}

func (s *SpaceStore) GetByIDs(ctx context.Context, ids []string) ([]models.Space, error) {
	return selectByIDs[models.Space](ctx, s.db, tableSpace, ids, true)
}

// ListByUser returns the user's active spaces, oldest first.
func (s *SpaceStore) ListByUser(ctx context.Context, userID string) ([]models.Space, error) {
	var spaces []models.Space
	where, args := OwnedActive(userID).Where("ORDER BY created_at ASC, id ASC")
	err := s.db.SelectContext(ctx, &spaces, "SELECT * FROM space "+where, args...)
	return spaces, err
}
