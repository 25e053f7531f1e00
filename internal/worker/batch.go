package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harutok/chimei/internal/model"
)

// Processor handles one document. Implemented by the pipeline.
type Processor interface {
	ProcessDocument(ctx context.Context, docID, body string) (*model.DocumentReport, error)
}

// Document is one batch input.
type Document struct {
	ID   string
	Path string
}

// DocumentJob processes a single document file.
type DocumentJob struct {
	Doc       Document
	Processor Processor
}

// Execute implements Job.
func (j *DocumentJob) Execute(ctx context.Context) Result {
	body, err := os.ReadFile(j.Doc.Path)
	if err != nil {
		return &DocumentResult{Doc: j.Doc, Error: fmt.Errorf("read document: %w", err)}
	}
	report, err := j.Processor.ProcessDocument(ctx, j.Doc.ID, string(body))
	return &DocumentResult{Doc: j.Doc, Report: report, Error: err}
}

// DocumentResult is the outcome of one document job.
type DocumentResult struct {
	Doc    Document
	Report *model.DocumentReport
	Error  error
}

// Err implements Result.
func (r *DocumentResult) Err() error { return r.Error }

// BatchProcessor fans a document set out over the pool. A failed document is
// reported and skipped; the batch always runs to completion.
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a batch processor with the given parallelism.
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{processor: processor, concurrency: concurrency}
}

// Process runs all docs and returns one result per document.
func (b *BatchProcessor) Process(ctx context.Context, docs []Document) []*DocumentResult {
	if len(docs) == 0 {
		return nil
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	for _, doc := range docs {
		pool.Submit(&DocumentJob{Doc: doc, Processor: b.processor})
	}

	results := pool.Wait()
	out := make([]*DocumentResult, 0, len(results))
	for _, res := range results {
		out = append(out, res.(*DocumentResult))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Doc.ID < out[j].Doc.ID })
	return out
}

// ProcessDir processes every .txt file under dir. The file name without
// extension becomes the document ID.
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir string) ([]*DocumentResult, error) {
	docs, err := CollectDocuments(dir)
	if err != nil {
		return nil, err
	}
	return b.Process(ctx, docs), nil
}

// CollectDocuments lists the .txt documents under dir, sorted by ID.
func CollectDocuments(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read document dir: %w", err)
	}
	var docs []Document
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		docs = append(docs, Document{
			ID:   strings.TrimSuffix(e.Name(), ".txt"),
			Path: filepath.Join(dir, e.Name()),
		})
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no .txt documents in %s", dir)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}
