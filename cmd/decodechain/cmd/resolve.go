package cmd

import (
	"fmt"
	"log/slog"

	"github.com/jmylchreest/decodechain/internal/codec"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <pixel-format>",
	Short: "Print the decoder element to use for a camera pixel format",
	Long: `Resolve the decoder for a camera pixel format (MJPG, MJPEG, H264, H265, HEVC).

Prints the element descriptor to place in a pipeline, e.g. "jpegdec max-errors=-1",
or "decodebin" when no catalog decoder is installed. Raw formats (YUYV, NV12, ...)
need no decoder and print nothing.

Examples:
  decodechain resolve MJPG
  decodechain resolve HEVC --json`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().Bool("json", false, "output the resolution as JSON")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	format := args[0]

	c, ok := codec.ParsePixelFormat(format)
	if !ok {
		if codec.IsRaw(format) {
			slog.Info("raw pixel format needs no decoder", slog.String("pixel_format", format))
			return nil
		}
		return fmt.Errorf("unsupported pixel format %q", format)
	}

	a, err := newApp(appConfig, false)
	if err != nil {
		return err
	}

	if !asJSON {
		descriptor, ok := a.resolver.FindAvailableForFormat(format)
		if !ok {
			return fmt.Errorf("no decoder catalog for codec %s", c)
		}
		fmt.Fprintln(cmd.OutOrStdout(), descriptor)
		return nil
	}

	res, ok := a.resolver.ResolveCodec(c)
	if !ok {
		return fmt.Errorf("no decoder catalog for codec %s", c)
	}
	return writeJSON(cmd.OutOrStdout(), res, true)
}
