package cmd

import (
	"fmt"

	"github.com/jmylchreest/decodechain/internal/config"
	"github.com/jmylchreest/decodechain/internal/registry"
	"github.com/jmylchreest/decodechain/internal/version"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version, commit, build date and compiled-in registry backends of decodechain.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		info := version.GetInfo(compiledBackends()...)
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), info, true)
		}

		fmt.Fprintln(cmd.OutOrStdout(), version.String())
		if !version.IsRelease() {
			fmt.Fprintln(cmd.OutOrStdout(), "development build")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registry backends: %v\n", info.Backends)
		return nil
	},
}

func compiledBackends() []string {
	backends := []string{config.BackendInspect, config.BackendStatic}
	if registry.GStreamerAvailable {
		backends = append([]string{config.BackendGStreamer}, backends...)
	}
	return backends
}

func init() {
	versionCmd.Flags().Bool("json", false, "output version information as JSON")
	rootCmd.AddCommand(versionCmd)
}
