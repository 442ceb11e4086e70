package audit

import (
	"encoding/json"
	"reflect"
	"testing"
)

func decode(t *testing.T, raw json.RawMessage) any {
	t.Helper()
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return v
}

func TestRedactBodyMasksSensitiveKeysPreservingStructure(t *testing.T) {
	body := []byte(`{"password":"x","nested":{"token":"y","keep":"z"}}`)
	got := decode(t, RedactBody(body))
	want := map[string]any{
		"password": "***",
		"nested": map[string]any{
			"token": "***",
			"keep":  "z",
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRedactBodyArraysElementWise(t *testing.T) {
	body := []byte(`{"items":[{"secret":"a","name":"n"},{"secret":"b"}],"count":2}`)
	got := decode(t, RedactBody(body))
	want := map[string]any{
		"items": []any{
			map[string]any{"secret": "***", "name": "n"},
			map[string]any{"secret": "***"},
		},
		"count": float64(2),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRedactBodyIdempotent(t *testing.T) {
	body := []byte(`{"password":"x","nested":{"refresh_token":"y"}}`)
	once := RedactBody(body)
	twice := RedactBody(once)
	if !reflect.DeepEqual(decode(t, once), decode(t, twice)) {
		t.Fatalf("redaction not idempotent: %s vs %s", once, twice)
	}
}

func TestRedactBodyNonObjectValuesPassThrough(t *testing.T) {
	got := decode(t, RedactBody([]byte(`[1,"two",true,null]`)))
	want := []any{float64(1), "two", true, nil}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRedactBodyInvalidJSONDropped(t *testing.T) {
	if got := RedactBody([]byte(`{"broken`)); got != nil {
		t.Fatalf("expected invalid JSON dropped, got %s", got)
	}
	if got := RedactBody(nil); got != nil {
		t.Fatalf("expected empty body dropped, got %s", got)
	}
}

func TestRedactKeyMatchingCaseInsensitive(t *testing.T) {
	body := []byte(`{"Password":"x","AccessToken":"y","Authorization":"z"}`)
	got := decode(t, RedactBody(body)).(map[string]any)
	for key, value := range got {
		if value != "***" {
			t.Fatalf("expected %s masked, got %v", key, value)
		}
	}
}
