package services

import (
	"context"

	"coinmate/internal/audit"
	"coinmate/internal/models"
	"coinmate/internal/scope"
	"coinmate/internal/validator"
)

type AuditService struct {
	entries AuditReader
}

func NewAuditService(entries AuditReader) *AuditService {
	return &AuditService{entries: entries}
}

type HistoryInput struct {
	Object   string `json:"object" validate:"required,oneof=space space_user category transaction_ledger"`
	ObjectID string `json:"object_id" validate:"required,uuid"`
}

// History is the audit trail of one object, oldest first, each entry with
// the fields it changed, plus the state the trail folds into. Archived
// objects keep their history.
type History struct {
	Entries []audit.Step   `json:"entries"`
	State   map[string]any `json:"state"`
}

// History lists the caller's audit entries for an object. User entries are
// not served since their payload carries the password hash.
func (s *AuditService) History(ctx context.Context, sc *scope.Scope, input HistoryInput) (History, error) {
	if !sc.Authenticated() {
		return History{}, ErrUnauthorized
	}
	if err := validator.Struct(input); err != nil {
		return History{}, err
	}
	entries, err := s.entries.ListForObject(ctx, sc.UserID(), models.AuditObject(input.Object), input.ObjectID)
	if err != nil {
		return History{}, err
	}
	steps, state, err := audit.Replay(entries)
	if err != nil {
		return History{}, err
	}
	return History{Entries: steps, State: state}, nil
}
