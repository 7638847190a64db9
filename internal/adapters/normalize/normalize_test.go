package normalize

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	n := New()

	tests := []struct {
		name       string
		in         string
		wantText   string
		wantFields string
	}{
		{"plain text", "Hello world\n", "Hello world", ""},
		{"json object", `{"total": 12.5}`, `{"total": 12.5}`, `{"total":12.5}`},
		{"fenced json", "```json\n{\"a\": 1}\n```", `{"a": 1}`, `{"a":1}`},
		{"json array", `[1, 2]`, `[1, 2]`, `[1,2]`},
		{"json scalar is text only", `"just a string"`, `"just a string"`, ""},
		{"broken json", `{"a": `, `{"a":`, ""},
		{"empty", "   ", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, fields := n.Normalize(tt.in)
			if text != tt.wantText {
				t.Errorf("text: got %q, want %q", text, tt.wantText)
			}
			if string(fields) != tt.wantFields {
				t.Errorf("fields: got %q, want %q", fields, tt.wantFields)
			}
		})
	}
}

func TestNormalizeCustomSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	schema := `{"type":"object","required":["merchant"]}`
	if err := os.WriteFile(path, []byte(schema), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}

	n, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}

	if _, fields := n.Normalize(`{"merchant":"ACME"}`); string(fields) != `{"merchant":"ACME"}` {
		t.Errorf("valid doc: got fields %q", fields)
	}
	if _, fields := n.Normalize(`{"total":"1.00"}`); fields != nil {
		t.Errorf("invalid doc: got fields %q, want nil", fields)
	}
}

func TestFromFileMissing(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing schema file")
	}
}

func TestNewWithSchemaInvalid(t *testing.T) {
	if _, err := NewWithSchema([]byte(`{"type":`)); err == nil {
		t.Fatal("expected error for malformed schema")
	}
}
