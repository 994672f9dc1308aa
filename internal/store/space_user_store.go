package store

import (
	"context"

	"coinmate/internal/models"
)

// SpaceUserStore manages space memberships and their roles.
type SpaceUserStore struct {
	db DB
}

func NewSpaceUserStore(db DB) *SpaceUserStore {
	return &SpaceUserStore{db: db}
}

func (s *SpaceUserStore) Create(ctx context.Context, tx Getter, fields Fields) (models.SpaceUser, error) {
	return insertReturning[models.SpaceUser](ctx, tx, tableSpaceUser, fields)
}

// ArchiveBySpace soft deletes every active membership of a space and returns the archived rows.
func (s *SpaceUserStore) ArchiveBySpace(ctx context.Context, tx Selecter, spaceID string, fields Fields) ([]models.SpaceUser, error) {
	archivedAt, _ := fields.Get("archived_at")
	var members []models.SpaceUser
	err := tx.SelectContext(ctx, &members, `
		UPDATE space_user
		SET archived_at = $1
		WHERE space_id = $2 AND archived_at IS NULL
		RETURNING *
	`, archivedAt, spaceID)
	return members, err
}

func (s *SpaceUserStore) HasRole(ctx context.Context, spaceID, userID, role string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM space_user
			WHERE space_id = $1 AND user_id = $2 AND role = $3 AND archived_at IS NULL
		)
	`, spaceID, userID, role)
	return exists, err
}
