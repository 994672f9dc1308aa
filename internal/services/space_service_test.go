package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"coinmate/internal/models"
	"coinmate/internal/scope"
	"coinmate/internal/store"
)

func TestSpaceCreateRequiresUser(t *testing.T) {
	svc := NewSpaceService(fakeTxRunner{}, stubSpaceStore{}, stubSpaceUserStore{}, &recordingAudit{}, nil)
	_, err := svc.Create(context.Background(), scope.Anonymous(), CreateSpaceInput{Name: "Home"})
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) || err.Error() != "User must be authenticated to create a space" {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestSpaceCreateAuditsSpaceAndMembership(t *testing.T) {
	audit := &recordingAudit{}
	notifier := &recordingNotifier{}
	svc := NewSpaceService(fakeTxRunner{}, stubSpaceStore{}, stubSpaceUserStore{}, audit, notifier)
	space, err := svc.Create(context.Background(), userScope(), CreateSpaceInput{Name: "Home", Description: strPtr("shared")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if space.UserID != userID {
		t.Fatalf("expected owner %s, got %s", userID, space.UserID)
	}
	if len(audit.entries) != 2 || audit.entries[0].Payload["description"] != "shared" {
		t.Fatalf("unexpected audit entries: %+v", audit.entries)
	}
	if audit.entries[0].UserID != userID || audit.entries[0].Metadata["request_id"] != "req-1" {
		t.Fatalf("expected actor and metadata on audit entry, got %+v", audit.entries[0])
	}
	if len(notifier.events) != 1 || notifier.events[0].Object != "space" {
		t.Fatalf("expected one space event, got %+v", notifier.events)
	}
}

func TestSpaceDefaultIsOldest(t *testing.T) {
	svc := NewSpaceService(fakeTxRunner{}, stubSpaceStore{
		listByUserFn: func(context.Context, string) ([]models.Space, error) {
			return []models.Space{{ID: spaceID, UserID: userID}, {ID: "77777777-7777-7777-7777-777777777777", UserID: userID}}, nil
		},
	}, stubSpaceUserStore{}, &recordingAudit{}, nil)
	space, err := svc.Default(context.Background(), userScope())
	if err != nil || space == nil || space.ID != spaceID {
		t.Fatalf("expected oldest space, got %+v %v", space, err)
	}
	if _, err := svc.List(context.Background(), scope.Anonymous()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestSpaceDeleteArchivesMemberships(t *testing.T) {
	audit := &recordingAudit{}
	var archivedAt time.Time
	svc := NewSpaceService(fakeTxRunner{}, stubSpaceStore{
		getByIDsFn: func(context.Context, []string) ([]models.Space, error) {
			return []models.Space{{ID: spaceID, UserID: userID}}, nil
		},
		updateFn: func(_ context.Context, id string, fields store.Fields) (models.Space, error) {
			value, _ := fields.Get("archived_at")
			archivedAt = value.(time.Time)
			return models.Space{ID: id, UserID: userID, ArchivedAt: &archivedAt}, nil
		},
	}, stubSpaceUserStore{
		hasRoleFn: func(_ context.Context, _, _, role string) (bool, error) {
			return role == models.RoleAdmin, nil
		},
		archiveBySpaceFn: func(context.Context, string, store.Fields) ([]models.SpaceUser, error) {
			return []models.SpaceUser{{ID: "m1"}, {ID: "m2"}}, nil
		},
	}, audit, nil)

	space, err := svc.Delete(context.Background(), userScope(), IDInput{ID: spaceID})
	if err != nil || space.ArchivedAt == nil {
		t.Fatalf("expected archived space, got %+v %v", space, err)
	}
	if len(audit.entries) != 3 {
		t.Fatalf("expected space and two membership entries, got %d", len(audit.entries))
	}
	for _, entry := range audit.entries {
		if entry.Operation != models.OperationDelete {
			t.Fatalf("expected delete entries, got %s", entry.Operation)
		}
	}
}

func TestSpaceDeleteRequiresAdmin(t *testing.T) {
	svc := NewSpaceService(fakeTxRunner{}, stubSpaceStore{
		getByIDsFn: func(context.Context, []string) ([]models.Space, error) {
			return []models.Space{{ID: spaceID, UserID: userID}}, nil
		},
	}, stubSpaceUserStore{}, &recordingAudit{}, nil)
	_, err := svc.Delete(context.Background(), userScope(), IDInput{ID: spaceID})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
