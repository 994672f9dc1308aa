package store

import (
	"strings"
	"testing"
	"time"
)

func TestInsertQuery(t *testing.T) {
	query, args := insertQuery("category", Fields{
		{Column: "name", Value: "food"},
		{Column: "user_id", Value: "user-1"},
	})
	if query != "INSERT INTO category (name, user_id) VALUES ($1, $2) RETURNING *" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 || args[0] != "food" || args[1] != "user-1" {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestUpdateQueryOnlyTouchesActiveRows(t *testing.T) {
	query, args := updateQuery("category", "cat-1", Fields{{Column: "name", Value: "rent"}})
	if query != "UPDATE category SET name = $1 WHERE id = $2 AND archived_at IS NULL RETURNING *" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 || args[1] != "cat-1" {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestFieldsSetReplacesAndPayloadMirrorsFields(t *testing.T) {
	fields := Fields{}.Set("name", "a").Set("description", nil).Set("name", "b")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	payload := fields.Payload()
	if payload["name"] != "b" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	if _, ok := payload["description"]; !ok {
		t.Fatal("expected explicit nil to be kept in payload")
	}
}

func TestArchivedUsesUTC(t *testing.T) {
	loc := time.FixedZone("COT", -5*3600)
	fields := Archived(time.Date(2024, 1, 1, 10, 0, 0, 0, loc))
	value, ok := fields.Get("archived_at")
	if !ok || value.(time.Time).Location() != time.UTC || value.(time.Time).Hour() != 15 {
		t.Fatalf("unexpected archived_at: %#v", value)
	}
}

func TestPredicateRebindsPlaceholders(t *testing.T) {
	where, args := OwnedActive("user-1").And("type = ?", "expense").Where("ORDER BY id LIMIT ?", 11)
	if !strings.HasPrefix(where, "WHERE user_id = $1 AND archived_at IS NULL AND type = $2") {
		t.Fatalf("unexpected where: %s", where)
	}
	if !strings.HasSuffix(where, "LIMIT $3") {
		t.Fatalf("unexpected trailing clause: %s", where)
	}
	if len(args) != 3 || args[0] != "user-1" || args[1] != "expense" || args[2] != 11 {
		t.Fatalf("unexpected args: %#v", args)
	}
}
