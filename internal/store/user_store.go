package store

import (
	"context"

	"coinmate/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, tx Getter, fields Fields) (models.User, error) {
	return insertReturning[models.User](ctx, tx, tableUser, fields)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT * FROM app_user WHERE email = $1`, email)
	return user, err
}

func (s *UserStore) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	return selectByIDs[models.User](ctx, s.db, tableUser, ids, false)
}
