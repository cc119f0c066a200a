package cmd

import (
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  `Commands for managing decodechain configuration.`,
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the effective configuration",
	Long: `Dump the effective configuration in YAML format: defaults overlaid with
the config file and DECODECHAIN_* environment variables.

Redirect the output to create a configuration template:

  decodechain config dump > config.yaml

Environment variables use the DECODECHAIN_ prefix and underscores for nesting.
Example: registry.backend -> DECODECHAIN_REGISTRY_BACKEND`,
	RunE: runConfigDump,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configDumpCmd)
}

// toMap converts a struct to a map keyed by its yaml tags, formatting
// durations for human readability.
func toMap(v any) map[string]any {
	result := make(map[string]any)
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		key := fieldType.Tag.Get("yaml")
		if key == "" {
			key = fieldType.Name
		}

		switch v := field.Interface().(type) {
		case time.Duration:
			result[key] = v.String()
		default:
			if field.Kind() == reflect.Struct {
				result[key] = toMap(field.Interface())
			} else {
				result[key] = field.Interface()
			}
		}
	}
	return result
}

func runConfigDump(cmd *cobra.Command, _ []string) error {
	data, err := yaml.Marshal(toMap(appConfig))
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "# decodechain configuration")
	fmt.Fprintln(out, "#")
	fmt.Fprintln(out, "# Duration format: 500ms, 2s, 1m")
	fmt.Fprintln(out, "# registry.backend: auto, gstreamer, inspect, static")
	fmt.Fprintln(out, "")
	fmt.Fprint(out, string(data))
	return nil
}
