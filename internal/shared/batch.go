package shared

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

type FileInput struct {
	Filename      string `json:"filename"`
	ContentBase64 string `json:"contentBase64"`
}

type BatchRequest struct {
	Files []FileInput `json:"files"`
}

// DecodedFile is a batch item after base64 decoding.
type DecodedFile struct {
	Filename string
	Content  []byte
}

// ParseBatch decodes and validates a file batch body. Every offending field
// is reported in a single VALIDATION error.
func ParseBatch(body []byte) ([]DecodedFile, error) {
	var req BatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{Kind: KindValidation, Message: "invalid request body", Fields: []string{"files"}, Err: err}
	}
	if len(req.Files) == 0 {
		return nil, NewValidationError("at least one file is required", "files")
	}
	if len(req.Files) > MaxBatchFiles {
		return nil, NewValidationError(fmt.Sprintf("at most %d files are allowed", MaxBatchFiles), "files")
	}

	var fields []string
	files := make([]DecodedFile, len(req.Files))
	for i, f := range req.Files {
		if strings.TrimSpace(f.Filename) == "" {
			fields = append(fields, fmt.Sprintf("files[%d].filename", i))
		}
		content, err := base64.StdEncoding.DecodeString(f.ContentBase64)
		if err != nil || len(content) == 0 {
			fields = append(fields, fmt.Sprintf("files[%d].contentBase64", i))
		}
		files[i] = DecodedFile{Filename: f.Filename, Content: content}
	}
	if len(fields) > 0 {
		return nil, NewValidationError("invalid files", fields...)
	}
	return files, nil
}

// Sizes returns each file's decoded byte length.
func Sizes(files []DecodedFile) []int {
	sizes := make([]int, len(files))
	for i, f := range files {
		sizes[i] = len(f.Content)
	}
	return sizes
}
