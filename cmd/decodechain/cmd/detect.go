package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jmylchreest/decodechain/internal/observability"
	"github.com/spf13/cobra"
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect installed decoders for every codec",
	Long: `Query the element registry for every catalog decoder and print the
result as JSON, together with the decoder each codec resolves to.

Examples:
  # Basic detection (JSON output)
  decodechain detect

  # Pretty-printed JSON, forcing the gst-inspect backend
  DECODECHAIN_REGISTRY_BACKEND=inspect decodechain detect --pretty`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().Bool("pretty", false, "pretty-print JSON output")
	detectCmd.Flags().Duration("timeout", 30*time.Second, "detection timeout")
}

// DetectionResult contains the full detection output.
type DetectionResult struct {
	Backend string `json:"backend"`
	// Queries is the number of registry lookups performed.
	Queries  int64            `json:"queries"`
	Duration string           `json:"duration"`
	Codecs   []CodecDetection `json:"codecs"`
}

// CodecDetection is one codec's availability and resolution.
type CodecDetection struct {
	Codec      string          `json:"codec"`
	Descriptor string          `json:"descriptor"`
	Kind       string          `json:"kind"`
	Decoders   []DecoderStatus `json:"decoders"`
}

// DecoderStatus is a catalog entry with its presence flag.
type DecoderStatus struct {
	Name      string `json:"name"`
	Hardware  bool   `json:"hardware"`
	Available bool   `json:"available"`
}

func runDetect(cmd *cobra.Command, _ []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	pretty, _ := cmd.Flags().GetBool("pretty")

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	a, err := newApp(appConfig, false)
	if err != nil {
		return err
	}

	start := time.Now()
	done := observability.TimedOperation(ctx, a.logger, "detect_decoders")
	if err := a.cache.Warm(ctx); err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}
	done()

	result := DetectionResult{
		Backend:  a.backend,
		Queries:  a.registry.Calls(),
		Duration: time.Since(start).Round(time.Millisecond).String(),
	}

	for _, cat := range a.cache.Catalogs().All() {
		avail := a.cache.Get(cat.Codec)
		res := a.resolver.Resolve(cat)

		det := CodecDetection{
			Codec:      cat.Codec.String(),
			Descriptor: res.Descriptor,
			Kind:       res.Kind(),
			Decoders:   make([]DecoderStatus, 0, cat.Len()),
		}
		for i, def := range cat.Decoders {
			det.Decoders = append(det.Decoders, DecoderStatus{
				Name:      def.Name,
				Hardware:  def.Hardware,
				Available: avail.At(i),
			})
		}
		result.Codecs = append(result.Codecs, det)
	}

	return writeJSON(cmd.OutOrStdout(), result, pretty)
}
