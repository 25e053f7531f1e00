package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/harutok/chimei/internal/model"
)

// ResultSink persists one document report atomically: either the whole
// report lands or none of it does.
type ResultSink interface {
	Commit(ctx context.Context, report *model.DocumentReport) error
}

// JSONSink writes each report as a JSON file under a directory. The write
// goes to a uniquely named temp file first and is renamed into place, so a
// crashed run never leaves a half-written report behind.
type JSONSink struct {
	dir string
}

// NewJSONSink creates the sink, making dir as needed.
func NewJSONSink(dir string) (*JSONSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &JSONSink{dir: dir}, nil
}

// Commit implements ResultSink.
func (s *JSONSink) Commit(_ context.Context, report *model.DocumentReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	tmp := filepath.Join(s.dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	final := filepath.Join(s.dir, safeName(report.DocumentID)+".json")
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit report: %w", err)
	}
	return nil
}

// safeName keeps document IDs usable as file names.
func safeName(id string) string {
	out := make([]rune, 0, len(id))
	for _, r := range id {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return uuid.NewString()
	}
	return string(out)
}
