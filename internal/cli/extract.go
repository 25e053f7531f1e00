package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harutok/chimei/internal/logging"
	"github.com/harutok/chimei/internal/model"
)

var (
	knowledgePath   string
	outDir          string
	noGeocode       bool
	noCache         bool
	cacheDir        string
	nerEnabled      bool
	nerModel        string
	classifyPattern bool
	geocoderURL     string
	minDelay        time.Duration
	maxAttempts     int
	docTimeout      time.Duration
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract and geocode place names from one document",
	Long: `Extract processes a single text file: sentences are segmented, place-name
candidates extracted and classified in context, and accepted mentions
resolved to coordinates. The report is written as JSON next to the run.

Example:
  chimei extract sanshiro.txt
  chimei extract sanshiro.txt --no-geocode
  chimei extract sanshiro.txt --ner --ner-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addRunFlags(extractCmd)
}

// addRunFlags registers the processing flags shared by extract and batch.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&knowledgePath, "knowledge", "", "knowledge tables YAML (default: embedded)")
	cmd.Flags().StringVar(&outDir, "out", "./chimei-out", "output directory for JSON reports")
	cmd.Flags().BoolVar(&noGeocode, "no-geocode", false, "skip the geocoding stage")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the geocode result cache")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", ".chimei-cache", "geocode cache directory")
	cmd.Flags().BoolVar(&nerEnabled, "ner", false, "enable the model-backed NER source")
	cmd.Flags().StringVar(&nerModel, "ner-model", "gpt-4o-mini", "NER model name")
	cmd.Flags().BoolVar(&classifyPattern, "classify-pattern", false, "context-classify pattern matches too")
	cmd.Flags().StringVar(&geocoderURL, "geocoder-url", "https://nominatim.openstreetmap.org/search", "external geocoding endpoint")
	cmd.Flags().DurationVar(&minDelay, "geocoder-delay", time.Second, "minimum delay between external geocoder calls")
	cmd.Flags().IntVar(&maxAttempts, "geocoder-attempts", 3, "max attempts per external geocoder query")
	cmd.Flags().DurationVar(&docTimeout, "timeout", 30*time.Minute, "per-document processing timeout")
}

// buildRunConfig folds the shared flags into a config.
func buildRunConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.KnowledgePath = knowledgePath
	cfg.Coordinator.ClassifyPattern = classifyPattern
	cfg.NER.Enabled = nerEnabled
	cfg.NER.Model = nerModel
	cfg.Geocode.Enabled = !noGeocode
	cfg.Geocode.ProviderURL = geocoderURL
	cfg.Geocode.MinDelay = minDelay
	cfg.Geocode.MaxAttempts = maxAttempts
	cfg.Geocode.CacheEnabled = !noCache
	cfg.Geocode.CacheDir = cacheDir
	cfg.Output.Dir = outDir
	cfg.Output.Verbose = verbose
	apiKeyFromEnv(cfg)
	return cfg
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg := buildRunConfig()
	if err := requireNERKey(cfg); err != nil {
		return err
	}

	log, err := logging.New(verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	docID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	a, err := newApp(cfg, log, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), docTimeout)
	defer cancel()

	report, err := a.pipeline.ProcessDocument(ctx, docID, string(body))
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
