package cmd

import (
	"fmt"

	"github.com/jmylchreest/decodechain/internal/codec"
	"github.com/jmylchreest/decodechain/internal/decoder"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [codec]",
	Short: "List decoder catalogs in preference order",
	Long: `List the decoders tried for each codec, in the order they are tried.
The codec is a name (mjpeg, h264, h265) or a pixel format (MJPG, HEVC), in
any case.

With --check, each entry is marked installed or missing on this system.

Examples:
  decodechain catalog
  decodechain catalog hevc --check
  decodechain catalog MJPG
  decodechain catalog --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().Bool("json", false, "output catalogs as JSON")
	catalogCmd.Flags().Bool("check", false, "query the element registry for each decoder")
	rootCmd.AddCommand(catalogCmd)
}

// catalogEntry is the JSON form of a catalog entry.
type catalogEntry struct {
	decoder.Definition
	Descriptor string `json:"descriptor"`
	Available  *bool  `json:"available,omitempty"`
}

type catalogResult struct {
	Codec    string         `json:"codec"`
	Decoders []catalogEntry `json:"decoders"`
}

func runCatalog(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	check, _ := cmd.Flags().GetBool("check")

	catalogs := decoder.DefaultCatalogs().All()
	if len(args) == 1 {
		c, ok := codec.ParseVideo(args[0])
		if !ok {
			return fmt.Errorf("unknown codec %q", args[0])
		}
		cat, _ := decoder.DefaultCatalogs().Get(c)
		catalogs = []decoder.Catalog{cat}
	}

	var a *app
	if check {
		var err error
		if a, err = newApp(appConfig, false); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	results := make([]catalogResult, 0, len(catalogs))
	installed, total := 0, 0
	for i, cat := range catalogs {
		var avail decoder.Availability
		if a != nil {
			avail = a.cache.Get(cat.Codec)
			installed += avail.Count()
			total += cat.Len()
		}

		if !asJSON {
			if i > 0 {
				fmt.Fprintln(out)
			}
			renderCatalog(out, cat, avail)
			continue
		}

		res := catalogResult{Codec: cat.Codec.String(), Decoders: make([]catalogEntry, 0, cat.Len())}
		for j, def := range cat.Decoders {
			entry := catalogEntry{Definition: def, Descriptor: def.ElementDescriptor()}
			if avail != nil {
				ok := avail.At(j)
				entry.Available = &ok
			}
			res.Decoders = append(res.Decoders, entry)
		}
		results = append(results, res)
	}

	if asJSON {
		return writeJSON(out, results, true)
	}
	if a != nil {
		fmt.Fprintln(out)
		renderSummary(out, installed, total, a.registry.Calls())
	}
	return nil
}
