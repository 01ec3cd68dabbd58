package qdrant

import (
	"errors"
	"testing"
)

func TestTranslateFilterMapUserAndShotIDs(t *testing.T) {
	got, err := translateFilterMap(map[string]any{
		"user_id": "u-1",
		"shot_id": map[string]any{"$in": []any{"s-1", "s-2"}},
		"$and":    []any{map[string]any{"liked": map[string]any{"$ne": false}}},
	})
	if err != nil {
		t.Fatalf("translateFilterMap: %v", err)
	}
	if len(got.Must) != 2 {
		t.Fatalf("must length: want=2 got=%d", len(got.Must))
	}
	if len(got.MustNot) != 1 {
		t.Fatalf("must_not length: want=1 got=%d", len(got.MustNot))
	}

	userCond := findConditionByKey(got.Must, "user_id")
	if userCond == nil {
		t.Fatalf("missing user_id condition")
	}
	if m, _ := userCond["match"].(map[string]any); m["value"] != "u-1" {
		t.Fatalf("user_id match: got=%v", userCond["match"])
	}
	shotCond := findConditionByKey(got.Must, "shot_id")
	if shotCond == nil {
		t.Fatalf("missing shot_id condition")
	}
	anyVals, _ := shotCond["match"].(map[string]any)["any"].([]any)
	if len(anyVals) != 2 || anyVals[0] != "s-1" {
		t.Fatalf("shot_id any values: got=%v", anyVals)
	}
}

func TestTranslateFilterMapUnsupportedOperator(t *testing.T) {
	_, err := translateFilterMap(map[string]any{"distance": map[string]any{"$gt": 2}})
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got=%T", err)
	}
	if opErr.Code != OperationErrorUnsupportedFilter {
		t.Fatalf("error code: want=%q got=%q", OperationErrorUnsupportedFilter, opErr.Code)
	}
}

func findConditionByKey(items []any, key string) map[string]any {
	for _, raw := range items {
		cond, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if condKey, _ := cond["key"].(string); condKey == key {
			return cond
		}
	}
	return nil
}
