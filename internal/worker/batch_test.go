package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harutok/chimei/internal/model"
)

type stubProcessor struct {
	failID string
}

func (p *stubProcessor) ProcessDocument(_ context.Context, docID, body string) (*model.DocumentReport, error) {
	if docID == p.failID {
		return nil, errors.New("boom")
	}
	return &model.DocumentReport{DocumentID: docID, Sentences: len(body)}, nil
}

func writeDoc(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestBatchProcessDir(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", "本文A。")
	writeDoc(t, dir, "b.txt", "本文B。")
	writeDoc(t, dir, "notes.md", "ignored")

	b := NewBatchProcessor(&stubProcessor{}, 2)
	results, err := b.ProcessDir(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2 (md ignored)", len(results))
	}
	// Sorted by document ID regardless of completion order.
	if results[0].Doc.ID != "a" || results[1].Doc.ID != "b" {
		t.Errorf("order: %v, %v", results[0].Doc.ID, results[1].Doc.ID)
	}
	for _, r := range results {
		if r.Err() != nil {
			t.Errorf("document %s failed: %v", r.Doc.ID, r.Err())
		}
	}
}

func TestBatchFailedDocumentDoesNotStopRun(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "ok.txt", "本文。")
	writeDoc(t, dir, "bad.txt", "本文。")

	b := NewBatchProcessor(&stubProcessor{failID: "bad"}, 2)
	results, err := b.ProcessDir(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	var ok, failed int
	for _, r := range results {
		if r.Err() != nil {
			failed++
		} else {
			ok++
		}
	}
	if ok != 1 || failed != 1 {
		t.Errorf("ok=%d failed=%d", ok, failed)
	}
}

func TestCollectDocumentsEmptyDir(t *testing.T) {
	if _, err := CollectDocuments(t.TempDir()); err == nil {
		t.Fatal("expected error for directory without documents")
	}
}
