package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultSchema accepts any JSON object or array as structured fields.
const DefaultSchema = `{"type": ["object", "array"]}`

const schemaURL = "structured.json"

// Normalizer turns raw model output into canonical text plus optional
// structured fields.
type Normalizer struct {
	schema *jsonschema.Schema
}

func New() *Normalizer {
	n, err := NewWithSchema([]byte(DefaultSchema))
	if err != nil {
		panic(fmt.Sprintf("normalize: default schema: %v", err))
	}
	return n
}

// NewWithSchema compiles a JSON Schema the structured fields must satisfy.
func NewWithSchema(schema []byte) (*Normalizer, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Normalizer{schema: s}, nil
}

// FromFile loads the schema at path, or the default schema when path is empty.
func FromFile(path string) (*Normalizer, error) {
	if path == "" {
		return New(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return NewWithSchema(b)
}

// Normalize strips code fences from content. When the remainder is JSON that
// satisfies the schema it is also returned, compacted, as fields.
func (n *Normalizer) Normalize(content string) (text string, fields json.RawMessage) {
	text = strings.TrimSpace(StripCodeFences(content))
	if text == "" || !json.Valid([]byte(text)) {
		return text, nil
	}

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return text, nil
	}
	if err := n.schema.Validate(v); err != nil {
		return text, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return text, nil
	}
	return text, json.RawMessage(buf.Bytes())
}

// StripCodeFences drops Markdown fence lines such as ```json that models wrap
// around JSON answers.
func StripCodeFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
