// Package cmd implements the command-line interface for ytplan.
package cmd

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/ytplan-cli/ytplan/extraction"
	"github.com/ytplan-cli/ytplan/filesystem"
	"github.com/ytplan-cli/ytplan/resolve"
)

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringP("input", "i", "", "Read the extraction JSON from a file instead of stdin")
	planCmd.Flags().StringP("output", "o", "", "Specify a file path to write the resolved plan")
	planCmd.Flags().Bool("use-manifests", false, "Prefer the original adaptive manifest over stitched tracks")
}

// planCmd resolves pre-extracted JSON into a playback plan without
// touching the network or the player. Useful for scripting and for
// inspecting what playback would do.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Resolve extraction JSON from stdin or a file into a playback plan",
	Long: `Resolve an extraction result that was produced ahead of time, e.g. with
yt-dlp -J <url>, into the playback plan that would be handed to the player.
The plan is written as JSON.`,
	Example: "  yt-dlp -J 'https://example.com/watch?v=abc' | ytplan plan",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			reader io.Reader = os.Stdin
			writer io.Writer = os.Stdout
		)

		if input := lo.Must(cmd.Flags().GetString("input")); input != "" {
			file, err := filesystem.API().Open(input)
			handleErr(err)
			defer file.Close()
			reader = file
		}

		if output := lo.Must(cmd.Flags().GetString("output")); output != "" {
			file, err := filesystem.API().Create(output)
			handleErr(err)
			defer file.Close()
			writer = file
		}

		var res extraction.Result
		handleErr(json.NewDecoder(reader).Decode(&res))

		resolver := resolve.New(capabilitiesFromFlags(cmd), extraction.Overrides{})

		var plan *extraction.Plan
		if res.IsPlaylist() {
			flattened, err := resolver.Flatten(&res)
			handleErr(err)

			if flattened.Plan == nil {
				encoder := json.NewEncoder(writer)
				encoder.SetIndent("", "  ")
				handleErr(encoder.Encode(flattened.Deferred))
				return
			}

			plan = flattened.Plan
		} else {
			var err error
			plan, err = resolver.One(&res)
			handleErr(err)
		}

		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(plan))
	},
}

func init() {
	planCmd.AddCommand(planSchemaCmd)

	planSchemaCmd.Flags().BoolP("result", "r", false, "Generate the JSON Schema for extraction result objects instead")
}

// planSchemaCmd generates JSON schemas for the structured plan output.
var planSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schemas for structured plan outputs",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "plan", "result", "chapter", "fragment", "format":
				return filepath.Base(t.PkgPath()) + "." + name
			}

			return name
		}

		var schema *jsonschema.Schema

		switch {
		case lo.Must(cmd.Flags().GetBool("result")):
			schema = reflector.Reflect(&extraction.Result{})
		default:
			schema = reflector.Reflect(&extraction.Plan{})
		}

		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
