// Package audit rebuilds object state from the audit trail.
package audit

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"coinmate/internal/models"
)

// Payload extracts data.payload from an audit row.
func Payload(entry models.AuditEntry) (map[string]any, error) {
	var data struct {
		Payload map[string]any `json:"payload"`
	}
	if len(entry.Data) == 0 {
		return map[string]any{}, nil
	}
	if err := json.Unmarshal(entry.Data, &data); err != nil {
		return nil, fmt.Errorf("audit %s: decode data: %w", entry.ID, err)
	}
	if data.Payload == nil {
		data.Payload = map[string]any{}
	}
	return data.Payload, nil
}

// Step is one audit entry together with the fields it changed.
type Step struct {
	models.AuditEntry
	Changed []string `json:"changed"`
}

// Replay folds the payloads of entries, oldest first, into the state the
// object had after the last entry, recording what each entry changed.
func Replay(entries []models.AuditEntry) ([]Step, map[string]any, error) {
	steps := make([]Step, 0, len(entries))
	state := map[string]any{}
	for _, entry := range entries {
		payload, err := Payload(entry)
		if err != nil {
			return nil, nil, err
		}
		next := make(map[string]any, len(state)+len(payload))
		for key, value := range state {
			next[key] = value
		}
		for key, value := range payload {
			next[key] = value
		}
		changed := Diff(state, next)
		if changed == nil {
			changed = []string{}
		}
		steps = append(steps, Step{AuditEntry: entry, Changed: changed})
		state = next
	}
	return steps, state, nil
}

// Diff returns the sorted keys whose values differ between base and next.
// Nested maps are compared key by key and reported as "parent.child".
func Diff(base, next map[string]any) []string {
	var changed []string
	diffInto(&changed, "", base, next)
	sort.Strings(changed)
	return changed
}

func diffInto(changed *[]string, prefix string, base, next map[string]any) {
	keys := map[string]struct{}{}
	for key := range base {
		keys[key] = struct{}{}
	}
	for key := range next {
		keys[key] = struct{}{}
	}
	for key := range keys {
		left, inLeft := base[key]
		right, inRight := next[key]
		path := prefix + key
		leftMap, leftIsMap := left.(map[string]any)
		rightMap, rightIsMap := right.(map[string]any)
		switch {
		case inLeft != inRight:
			*changed = append(*changed, path)
		case leftIsMap && rightIsMap:
			diffInto(changed, path+".", leftMap, rightMap)
		case !reflect.DeepEqual(left, right):
			*changed = append(*changed, path)
		}
	}
}
