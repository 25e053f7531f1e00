package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harutok/chimei/internal/logging"
	"github.com/harutok/chimei/internal/model"
)

var geocodeLabel string

// geocodeCmd represents the geocode command
var geocodeCmd = &cobra.Command{
	Use:   "geocode <name>",
	Short: "Resolve a single place name to coordinates",
	Long: `Geocode runs the resolution chain for one name without any document
context, useful for checking what the gazetteers and the external provider
would answer.

Example:
  chimei geocode 本郷
  chimei geocode 伊勢 --label historical_province`,
	Args: cobra.ExactArgs(1),
	RunE: runGeocode,
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
	addRunFlags(geocodeCmd)
	geocodeCmd.Flags().StringVar(&geocodeLabel, "label", model.LabelPlace, "classification label to resolve under")
}

func runGeocode(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := buildRunConfig()
	cfg.Geocode.Enabled = true

	log, err := logging.New(verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := newApp(cfg, log, nil)
	if err != nil {
		return err
	}
	if a.resolver == nil {
		return fmt.Errorf("geocoding is disabled by configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rec := a.resolver.Resolve(ctx, "adhoc", model.AcceptedMention{
		PlaceName:  name,
		Confidence: 1.0,
		Source:     "cli",
		Label:      geocodeLabel,
	})

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
