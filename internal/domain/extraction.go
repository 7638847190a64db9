package domain

import "encoding/json"

// ErrorKind classifies a per-file extraction failure.
type ErrorKind string

const (
	ErrorKindAuth                ErrorKind = "AuthError"
	ErrorKindRateLimited         ErrorKind = "RateLimited"
	ErrorKindUnsupportedMedia    ErrorKind = "UnsupportedMedia"
	ErrorKindProviderUnavailable ErrorKind = "ProviderUnavailable"
	ErrorKindUnknown             ErrorKind = "Unknown"
)

// File is one uploaded part of a batch.
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// ExtractionRequest is a single image handed to a provider adapter.
// Page is 1-based for rasterised PDF pages and 0 for plain images.
type ExtractionRequest struct {
	Filename  string
	Data      []byte
	MediaType string
	Provider  string
	Model     string
	Page      int
}

// ExtractionError is the failure half of an ExtractionResult.
type ExtractionError struct {
	Kind    ErrorKind
	Message string
}

// ExtractionResult is the canonical outcome of extracting one file.
// Exactly one of the success fields or Err is meaningful.
type ExtractionResult struct {
	Filename string
	Text     string
	Fields   json.RawMessage
	Pages    int
	Err      *ExtractionError
}

func Success(filename, text string, fields json.RawMessage) ExtractionResult {
	return ExtractionResult{Filename: filename, Text: text, Fields: fields}
}

func Failure(filename string, kind ErrorKind, message string) ExtractionResult {
	return ExtractionResult{
		Filename: filename,
		Err:      &ExtractionError{Kind: kind, Message: message},
	}
}

// OK reports whether the result is a success.
func (r ExtractionResult) OK() bool { return r.Err == nil }

// BatchResult holds one result per uploaded file, in upload order.
type BatchResult struct {
	Provider string
	Model    string
	Results  []ExtractionResult
}

// Failed counts the failed results in the batch.
func (b BatchResult) Failed() int {
	n := 0
	for _, r := range b.Results {
		if !r.OK() {
			n++
		}
	}
	return n
}

// OutputArtifact is an encoded batch ready to stream to the caller.
type OutputArtifact struct {
	Data        []byte
	ContentType string
	Filename    string
}
