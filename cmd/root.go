// Package cmd implements the command-line interface for ytplan.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	survey "github.com/AlecAivazis/survey/v2"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/muesli/reflow/truncate"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ytplan-cli/ytplan/color"
	"github.com/ytplan-cli/ytplan/constant"
	"github.com/ytplan-cli/ytplan/extraction"
	"github.com/ytplan-cli/ytplan/history"
	"github.com/ytplan-cli/ytplan/icon"
	"github.com/ytplan-cli/ytplan/key"
	"github.com/ytplan-cli/ytplan/log"
	"github.com/ytplan-cli/ytplan/player"
	"github.com/ytplan-cli/ytplan/resolve"
	"github.com/ytplan-cli/ytplan/style"
	"github.com/ytplan-cli/ytplan/util"
	"github.com/ytplan-cli/ytplan/version"
	"github.com/ytplan-cli/ytplan/where"
	"github.com/ytplan-cli/ytplan/ytdl"
)

// maxFollowedRedirects bounds how many deferred playlist hops a single
// invocation will follow before giving up.
const maxFollowedRedirects = 10

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Persist playback progress to the localized watch history")
	lo.Must0(viper.BindPFlag(key.HistorySaveOnPlay, rootCmd.PersistentFlags().Lookup("write-history")))

	rootCmd.Flags().StringP("format", "f", "", "Format selection expression passed to the extraction tool")
	lo.Must0(viper.BindPFlag(key.YtdlFormat, rootCmd.Flags().Lookup("format")))

	rootCmd.Flags().Bool("use-manifests", false, "Prefer the original adaptive manifest over stitched tracks")

	rootCmd.Flags().BoolP("json", "j", false, "Print the resolved playback plan as JSON instead of playing it")
	rootCmd.Flags().Float64P("start", "s", 0, "Start playback at the given position in seconds")
	rootCmd.Flags().Float64("aspect-ratio", 0, "Override the video aspect ratio")
	rootCmd.Flags().Float64("hls-bitrate", 0, "Adaptive stream bitrate hint in kbit/s")
	rootCmd.Flags().StringP("user-agent", "u", "", "Override the HTTP user agent")
	rootCmd.Flags().StringArray("header", []string{}, "Additional HTTP header (Name: Value), repeatable")
	rootCmd.Flags().BoolP("continue", "c", false, "Resume playback from the saved history position")

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the ytplan application.
var rootCmd = &cobra.Command{
	Use:   constant.Ytplan + " [url]",
	Short: "Resolve extraction-tool output into a playback plan and play it",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Turn extraction-tool JSON into ready-to-play streams"),
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		var mediaURL string
		if len(args) > 0 {
			mediaURL = args[0]
		} else if lo.Must(cmd.Flags().GetBool("continue")) {
			mediaURL = pickFromHistory()
		}

		if mediaURL == "" {
			handleErr(cmd.Help())
			return
		}

		asJson := lo.Must(cmd.Flags().GetBool("json"))
		if !asJson {
			CheckDependencies()
		}

		runner, err := ytdl.NewRunner()
		handleErr(err)

		if runner.Excluded(mediaURL) {
			handleErr(fmt.Errorf("url matches an exclusion pattern: %s", mediaURL))
		}

		resolver := resolve.New(capabilitiesFromFlags(cmd), overridesFromFlags(cmd, mediaURL))

		plan, err := resolvePlan(runner, resolver, mediaURL)
		handleErr(err)

		if asJson {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(plan))
			return
		}

		handleErr(play(plan, mediaURL))
	},
}

// capabilitiesFromFlags reports what the player can handle natively.
// The flag takes precedence over the configured value.
func capabilitiesFromFlags(cmd *cobra.Command) extraction.Capabilities {
	nativeManifests := viper.GetBool(key.YtdlUseManifests)
	if cmd.Flags().Changed("use-manifests") {
		nativeManifests = lo.Must(cmd.Flags().GetBool("use-manifests"))
	}

	return extraction.Capabilities{NativeManifests: nativeManifests}
}

// overridesFromFlags collects per-invocation resolution overrides. The
// saved history position backs the start override when --continue is
// given without an explicit --start.
func overridesFromFlags(cmd *cobra.Command, mediaURL string) extraction.Overrides {
	var overrides extraction.Overrides

	if cmd.Flags().Changed("start") {
		overrides.Start = mo.Some(lo.Must(cmd.Flags().GetFloat64("start")))
	} else if lo.Must(cmd.Flags().GetBool("continue")) {
		if item, ok, err := history.Resume(mediaURL); err == nil && ok && item.PositionSecs > 0 {
			log.Infof("resuming %s at %ds", mediaURL, item.PositionSecs)
			overrides.Start = mo.Some(float64(item.PositionSecs))
		}
	}

	if cmd.Flags().Changed("aspect-ratio") {
		overrides.AspectRatio = mo.Some(lo.Must(cmd.Flags().GetFloat64("aspect-ratio")))
	}

	if cmd.Flags().Changed("hls-bitrate") {
		overrides.BitrateKbps = mo.Some(lo.Must(cmd.Flags().GetFloat64("hls-bitrate")))
	}

	if cmd.Flags().Changed("user-agent") {
		overrides.UserAgent = mo.Some(lo.Must(cmd.Flags().GetString("user-agent")))
	}

	if cmd.Flags().Changed("header") {
		overrides.Headers = mo.Some(lo.Must(cmd.Flags().GetStringArray("header")))
	}

	return overrides
}

// resolvePlan extracts the url and resolves it to a playback plan,
// interactively following deferred playlist entries.
func resolvePlan(runner *ytdl.Runner, resolver *resolve.Resolver, mediaURL string) (*extraction.Plan, error) {
	for hop := 0; hop < maxFollowedRedirects; hop++ {
		erase := util.PrintErasable(fmt.Sprintf("%s Extracting %s...", icon.Get(icon.Progress), mediaURL))
		res, err := runner.Extract(context.Background(), mediaURL)
		erase()
		if err != nil {
			return nil, err
		}

		if !res.IsPlaylist() {
			return resolver.One(res)
		}

		flattened, err := resolver.Flatten(res)
		if err != nil {
			return nil, err
		}

		if flattened.Plan != nil {
			return flattened.Plan, nil
		}

		mediaURL, err = pickDeferred(flattened.Deferred)
		if err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("too many playlist redirects (max %d)", maxFollowedRedirects)
}

// pickDeferred prompts for one entry of an unresolved playlist.
func pickDeferred(entries []extraction.DeferredEntry) (string, error) {
	width, _, err := util.TerminalSize()
	if err != nil || width <= 0 {
		width = 80
	}

	options := make([]string, 0, len(entries))
	for _, entry := range entries {
		label := entry.Title
		if label == "" {
			label = entry.URL
		}
		options = append(options, truncate.StringWithTail(label, uint(width-8), "…"))
	}

	var index int
	prompt := &survey.Select{
		Message:  "Select a playlist entry",
		Options:  options,
		PageSize: 15,
	}
	if err := survey.AskOne(prompt, &index); err != nil {
		return "", err
	}

	return entries[index].URL, nil
}

// pickFromHistory prompts for a previously watched url. Returns an
// empty string when the history is empty.
func pickFromHistory() string {
	saved, err := history.Get()
	handleErr(err)

	if len(saved) == 0 {
		return ""
	}

	items := lo.Values(saved)
	sort.Slice(items, func(i, j int) bool {
		return items[i].Title < items[j].Title
	})

	options := lo.Map(items, func(item *history.SavedItem, _ int) string {
		return item.String()
	})

	var index int
	prompt := &survey.Select{
		Message:  "Continue watching",
		Options:  options,
		PageSize: 15,
	}
	if err := survey.AskOne(prompt, &index); err != nil {
		return ""
	}

	return items[index].URL
}

// play hands the plan to mpv and tracks progress until it exits.
func play(plan *extraction.Plan, mediaURL string) error {
	mpv := player.NewMPV()
	defer util.Ignore(mpv.Close)

	if err := mpv.Load(plan); err != nil {
		return err
	}

	if err := mpv.ApplyChapters(plan.Chapters); err != nil {
		log.Warnf("applying chapters: %v", err)
	}

	if viper.GetBool(key.HistorySaveOnPlay) {
		mpv.StartIPCTicker(func(timePos int, duration int) {
			item := &history.SavedItem{
				URL:          mediaURL,
				Title:        plan.Title,
				PositionSecs: timePos,
				DurationSecs: duration,
			}
			if duration > 0 {
				item.WatchedPercentage = float64(timePos) / float64(duration) * 100
			}

			if err := history.Save(item); err != nil {
				log.Warnf("saving history: %v", err)
			}
		})
	}

	<-mpv.Wait()
	return nil
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
