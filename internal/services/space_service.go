package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coinmate/internal/db"
	"coinmate/internal/loader"
	"coinmate/internal/models"
	"coinmate/internal/scope"
	"coinmate/internal/store"
	"coinmate/internal/validator"

	"github.com/jmoiron/sqlx"
)

type SpaceService struct {
	mutator
	spaces  SpaceStore
	members SpaceUserStore
	byID    *loader.Def[string, *models.Space]
}

func NewSpaceService(txRunner db.TxRunner, spaces SpaceStore, members SpaceUserStore, audit AuditStore, notifier Notifier) *SpaceService {
	return &SpaceService{
		mutator: newMutator(txRunner, audit, notifier),
		spaces:  spaces,
		members: members,
		byID: loader.New("space", fetchByID(spaces.GetByIDs, func(s *models.Space) string {
			return s.ID
		})),
	}
}

type CreateSpaceInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=32"`
	Description *string `json:"description" validate:"omitnil,max=256"`
}

func (s *SpaceService) Create(ctx context.Context, sc *scope.Scope, input CreateSpaceInput) (*models.Space, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}
	if err := requireUser(sc, "create", "space"); err != nil {
		return nil, err
	}
	var space models.Space
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		created, err := createSpace(ctx, tx, s.mutator, s.spaces, s.members, sc, sc.UserID(), input)
		space = created
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, &ConflictError{Entity: "Space"}
		}
		return nil, err
	}
	s.byID.Prime(ctx, sc, space.ID, &space)
	s.committed(space.UserID, models.ObjectSpace, models.OperationCreate, space.ID)
	return &space, nil
}

// createSpace inserts a space and its owner's admin membership, auditing both.
func createSpace(ctx context.Context, tx store.Tx, m mutator, spaces SpaceStore, members SpaceUserStore, sc *scope.Scope, ownerID string, input CreateSpaceInput) (models.Space, error) {
	fields := store.Fields{}.Set("name", input.Name)
	if input.Description != nil {
		fields = fields.Set("description", *input.Description)
	}
	fields = fields.Set("user_id", ownerID)
	space, err := spaces.Create(ctx, tx, fields)
	if err != nil {
		return models.Space{}, fmt.Errorf("create space: %w", err)
	}
	if err := m.record(ctx, tx, sc, models.ObjectSpace, models.OperationCreate, space.ID, fields); err != nil {
		return models.Space{}, err
	}
	memberFields := store.Fields{}.
		Set("space_id", space.ID).
		Set("user_id", ownerID).
		Set("role", models.RoleAdmin)
	member, err := members.Create(ctx, tx, memberFields)
	if err != nil {
		return models.Space{}, fmt.Errorf("create space membership: %w", err)
	}
	if err := m.record(ctx, tx, sc, models.ObjectSpaceUser, models.OperationCreate, member.ID, memberFields); err != nil {
		return models.Space{}, err
	}
	return space, nil
}

func (s *SpaceService) Gen(ctx context.Context, sc *scope.Scope, id string) (*models.Space, error) {
	space, err := s.byID.Load(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	return owned(space, func(s *models.Space) string { return s.UserID }, sc), nil
}

func (s *SpaceService) List(ctx context.Context, sc *scope.Scope) ([]models.Space, error) {
	if !sc.Authenticated() {
		return nil, ErrUnauthorized
	}
	spaces, err := s.spaces.ListByUser(ctx, sc.UserID())
	if err != nil {
		return nil, err
	}
	for i := range spaces {
		s.byID.Prime(ctx, sc, spaces[i].ID, &spaces[i])
	}
	return spaces, nil
}

// Default returns the caller's oldest active space, or nil when they have none.
func (s *SpaceService) Default(ctx context.Context, sc *scope.Scope) (*models.Space, error) {
	spaces, err := s.List(ctx, sc)
	if err != nil || len(spaces) == 0 {
		return nil, err
	}
	return &spaces[0], nil
}

// Delete soft deletes a space and its memberships. Only the space's admins may delete it.
func (s *SpaceService) Delete(ctx context.Context, sc *scope.Scope, input IDInput) (*models.Space, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}
	if err := requireUser(sc, "delete", "space"); err != nil {
		return nil, err
	}
	existing, err := s.Gen(ctx, sc, input.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &NotFoundError{Entity: "Space"}
	}
	admin, err := s.members.HasRole(ctx, existing.ID, sc.UserID(), models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, &NotFoundError{Entity: "Space"}
	}
	fields := store.Archived(s.now())
	var space models.Space
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		archived, err := s.spaces.Update(ctx, tx, existing.ID, fields)
		if err != nil {
			return fmt.Errorf("delete space: %w", err)
		}
		if err := s.record(ctx, tx, sc, models.ObjectSpace, models.OperationDelete, archived.ID, fields); err != nil {
			return err
		}
		members, err := s.members.ArchiveBySpace(ctx, tx, archived.ID, fields)
		if err != nil {
			return fmt.Errorf("delete space memberships: %w", err)
		}
		for _, member := range members {
			if err := s.record(ctx, tx, sc, models.ObjectSpaceUser, models.OperationDelete, member.ID, fields); err != nil {
				return err
			}
		}
		space = archived
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: "Space"}
		}
		return nil, err
	}
	s.byID.Clear(ctx, sc, space.ID)
	s.committed(space.UserID, models.ObjectSpace, models.OperationDelete, space.ID)
	return &space, nil
}
