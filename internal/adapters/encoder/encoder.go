package encoder

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/domain"
)

const (
	ContentTypeJSON = "application/json; charset=utf-8"
	ContentTypeTXT  = "text/plain; charset=utf-8"

	statusOK    = "ok"
	statusError = "error"
)

// Encoder serialises a batch into one of the supported output formats.
type Encoder struct{}

func New() *Encoder { return &Encoder{} }

func (e *Encoder) Encode(batch domain.BatchResult, format domain.Format) (domain.OutputArtifact, error) {
	var (
		data []byte
		ct   string
		err  error
	)
	switch format {
	case domain.FormatJSON:
		data, err = encodeJSON(batch)
		ct = ContentTypeJSON
	case domain.FormatTXT:
		data = encodeTXT(batch)
		ct = ContentTypeTXT
	default:
		return domain.OutputArtifact{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, string(format))
	}
	if err != nil {
		return domain.OutputArtifact{}, fmt.Errorf("%w: %v", domain.ErrEncoding, err)
	}

	return domain.OutputArtifact{
		Data:        data,
		ContentType: ct,
		Filename:    format.OutputFilename(),
	}, nil
}

type entry struct {
	File    string          `json:"file"`
	Status  string          `json:"status"`
	Text    *string         `json:"text,omitempty"`
	Fields  json.RawMessage `json:"fields,omitempty"`
	Pages   int             `json:"pages,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

func encodeJSON(batch domain.BatchResult) ([]byte, error) {
	entries := make([]entry, 0, len(batch.Results))
	for _, r := range batch.Results {
		e := entry{File: r.Filename}
		if r.OK() {
			text := r.Text
			e.Status = statusOK
			e.Text = &text
			e.Fields = r.Fields
			e.Pages = r.Pages
		} else {
			e.Status = statusError
			e.Error = string(r.Err.Kind)
			e.Message = r.Err.Message
		}
		entries = append(entries, e)
	}
	return json.Marshal(entries)
}

func encodeTXT(batch domain.BatchResult) []byte {
	var b bytes.Buffer
	for i, r := range batch.Results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "=== %s ===\n", r.Filename)
		if r.OK() {
			b.WriteString(r.Text)
		} else if r.Err.Message != "" {
			fmt.Fprintf(&b, "[ERROR %s] %s", r.Err.Kind, r.Err.Message)
		} else {
			fmt.Fprintf(&b, "[ERROR %s]", r.Err.Kind)
		}
		b.WriteString("\n")
	}
	return b.Bytes()
}
