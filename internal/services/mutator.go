package services

import (
	"context"
	"time"

	"coinmate/internal/db"
	"coinmate/internal/loader"
	"coinmate/internal/logger"
	"coinmate/internal/models"
	"coinmate/internal/scope"
	"coinmate/internal/store"
	"coinmate/internal/websocket"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// IDInput is the input of operations addressing a single record.
type IDInput struct {
	ID string `json:"id" validate:"required,uuid"`
}

// mutator carries what every write path shares: the transaction runner,
// the audit log and the post-commit notifier.
type mutator struct {
	txRunner db.TxRunner
	audit    AuditStore
	notifier Notifier
	now      func() time.Time
}

func newMutator(txRunner db.TxRunner, audit AuditStore, notifier Notifier) mutator {
	return mutator{txRunner: txRunner, audit: audit, notifier: notifier, now: time.Now}
}

// record writes the audit row for a mutation inside its transaction. The
// payload is the exact field set that was written.
func (m mutator) record(ctx context.Context, tx store.Execer, sc *scope.Scope, object models.AuditObject, operation models.AuditOperation, objectID string, fields store.Fields) error {
	return m.audit.Log(ctx, tx, store.AuditInput{
		UserID:    sc.UserID(),
		Object:    object,
		ObjectID:  objectID,
		Operation: operation,
		Payload:   fields.Payload(),
		Metadata:  sc.Metadata(),
	})
}

// committed logs and publishes a mutation. Call only after commit.
func (m mutator) committed(ownerID string, object models.AuditObject, operation models.AuditOperation, objectID string) {
	logger.WithFields(logrus.Fields{
		"object":    object,
		"object_id": objectID,
		"operation": operation,
	}).Debug("mutation committed")
	if m.notifier == nil || ownerID == "" {
		return
	}
	m.notifier.Publish(ownerID, websocket.ChangeEvent{
		Object:    string(object),
		ObjectID:  objectID,
		Operation: string(operation),
	})
}

// fetchByID adapts a GetByIDs store call to a loader. Keys that are not
// canonical UUIDs resolve to nil without reaching the store, so one bad key
// cannot fail the batch it shares with valid ones.
func fetchByID[T any](list func(context.Context, []string) ([]T, error), key func(*T) string) loader.Fetch[string, *T] {
	return func(ctx context.Context, ids []string) (map[string]*T, error) {
		found := make(map[string]*T, len(ids))
		valid := ids[:0:0]
		for _, id := range ids {
			if _, err := uuid.Parse(id); err == nil && len(id) == 36 {
				valid = append(valid, id)
			}
		}
		if len(valid) == 0 {
			return found, nil
		}
		rows, err := list(ctx, valid)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			row := &rows[i]
			found[key(row)] = row
		}
		return found, nil
	}
}

// owned returns record when it belongs to the caller, otherwise nil.
func owned[T any](record *T, owner func(*T) string, sc *scope.Scope) *T {
	if record == nil || !sc.Authenticated() || owner(record) != sc.UserID() {
		return nil
	}
	return record
}
