package cmd

import (
	"github.com/jmylchreest/decodechain/internal/codec"
	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain <pixel-format>",
	Short: "Show the decoder fallback chain for a pixel format",
	Long: `Show every catalog decoder for a pixel format with its state:

  ✓ Selected     the decoder used by --pipeline
  ● Available    installed but not in use
  ✗ Unavailable  not installed

Without --pipeline nothing is marked selected.

Examples:
  decodechain chain MJPG --pipeline "pipewiresrc ! jpegdec max-errors=-1 ! appsink"
  decodechain chain H264 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runChain,
}

func init() {
	chainCmd.Flags().String("pipeline", "", "full pipeline description of the running pipeline")
	chainCmd.Flags().Bool("json", false, "output the chain as JSON")
	rootCmd.AddCommand(chainCmd)
}

func runChain(cmd *cobra.Command, args []string) error {
	pipeline, _ := cmd.Flags().GetString("pipeline")
	asJSON, _ := cmd.Flags().GetBool("json")
	pixelFormat := args[0]

	a, err := newApp(appConfig, false)
	if err != nil {
		return err
	}
	a.insights.Refresh(pixelFormat, pipeline)
	st := a.insights.Snapshot()

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), st, true)
	}

	title := pixelFormat
	if c, ok := codec.ParsePixelFormat(pixelFormat); ok {
		title = c.DisplayName() + " decoders"
	}
	renderChain(cmd.OutOrStdout(), title, st)
	return nil
}
