package store

import (
	"context"
	"encoding/json"
	"fmt"

	"coinmate/internal/models"
)

type AuditStore struct {
	db DB
}

// AuditInput is one audit row. UserID is empty for anonymous actors.
type AuditInput struct {
	UserID    string
	Object    models.AuditObject
	ObjectID  string
	Operation models.AuditOperation
	Payload   map[string]any
	Metadata  map[string]any
}

func NewAuditStore(db DB) *AuditStore {
	return &AuditStore{db: db}
}

// Log appends an audit row inside the caller's transaction.
func (s *AuditStore) Log(ctx context.Context, tx Execer, input AuditInput) error {
	if !input.Object.Valid() {
		return fmt.Errorf("audit: unknown object %q", input.Object)
	}
	if !input.Operation.Valid() {
		return fmt.Errorf("audit: unknown operation %q", input.Operation)
	}
	if input.ObjectID == "" {
		return fmt.Errorf("audit: missing object id")
	}
	payload := input.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(map[string]any{"payload": payload})
	if err != nil {
		return fmt.Errorf("audit: encode payload: %w", err)
	}
	metadata := input.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("audit: encode metadata: %w", err)
	}
	var userID *string
	if input.UserID != "" {
		userID = &input.UserID
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit (user_id, object, object_id, operation, data, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, string(input.Object), input.ObjectID, string(input.Operation), string(data), string(meta))
	return err
}

// ListForObject returns the audit rows of one object visible to userID,
// oldest first. Rows written anonymously during sign-up are visible to the
// user they created. $1 is compared against uuid columns and a text payload
// field, so every use carries its own cast.
func (s *AuditStore) ListForObject(ctx context.Context, userID string, object models.AuditObject, objectID string) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, object, object_id, operation, data, metadata, created_at
		FROM audit
		WHERE object = $2 AND object_id = $3::uuid
		  AND (user_id = $1::uuid
		    OR (user_id IS NULL AND (object_id = $1::uuid OR data->'payload'->>'user_id' = $1::text)))
		ORDER BY created_at ASC, id ASC
	`, userID, string(object), objectID)
	return entries, err
}
