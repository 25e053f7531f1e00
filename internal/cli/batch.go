package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harutok/chimei/internal/logging"
	"github.com/harutok/chimei/internal/model"
	"github.com/harutok/chimei/internal/pipeline"
	"github.com/harutok/chimei/internal/worker"
)

var batchWorkers int

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Process every document in a directory",
	Long: `Batch processes all .txt files under a directory concurrently. Each
document's report is committed atomically to the output directory; a failing
document is logged and skipped, and the run prints a summary at the end.

Example:
  chimei batch ./corpus --workers 8 --out ./chimei-out`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addRunFlags(batchCmd)
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "concurrent documents")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	cfg := buildRunConfig()
	cfg.Concurrency.Workers = batchWorkers
	if err := requireNERKey(cfg); err != nil {
		return err
	}

	log, err := logging.New(verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	sink, err := pipeline.NewJSONSink(cfg.Output.Dir)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, log, sink)
	if err != nil {
		return err
	}

	ctx := context.Background()
	proc := worker.NewBatchProcessor(a.pipeline, cfg.Concurrency.Workers)
	results, err := proc.ProcessDir(ctx, dir)
	if err != nil {
		return err
	}

	var summary model.Summary
	for _, res := range results {
		if res.Error != nil {
			summary.Failures++
			log.Error("document failed",
				zap.String("document", res.Doc.ID),
				zap.Error(res.Error))
			continue
		}
		summary.Add(res.Report)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	fmt.Println(string(out))

	if summary.Documents == 0 {
		fmt.Fprintln(os.Stderr, "no document processed successfully")
		os.Exit(1)
	}
	return nil
}
