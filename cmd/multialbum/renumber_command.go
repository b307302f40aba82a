package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/handiism/multialbum/internal/config"
	"github.com/handiism/multialbum/internal/console"
	"github.com/handiism/multialbum/internal/logging"
	"github.com/handiism/multialbum/internal/model"
	"github.com/handiism/multialbum/internal/renumber"
)

type renumberFlags struct {
	inputDirs       []string
	outputDir       string
	extension       string
	workers         int
	verify          bool
	playlist        bool
	playlistFormat  string
	failOnCollision bool
	noCreateOutput  bool
	dryRun          bool
	summary         bool
}

func newRenumberCommand(ctx *commandContext) *cobra.Command {
	var flags renumberFlags

	cmd := &cobra.Command{
		Use:     "renumber",
		Aliases: []string{"renumber-track-metadata", "renumber-track-metadata-for-multi-albums"},
		Short:   "Copy every disk into one directory and renumber the tracks",
		Long: `Copy the "<disk>-<track> <title>.<ext>" files of one or more input
directories into the output directory, then rewrite each copy's track
number so that the files are numbered 001, 002, ... in (disk, track)
order. Input files are never modified.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(flags.inputDirs) == 0 {
				return usageErrorf("at least one --input-dir is required")
			}
			if strings.TrimSpace(flags.outputDir) == "" {
				return usageErrorf("--output-dir is required")
			}

			base, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			settings, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:   settings.LogLevel,
				Verbose: ctx.verbose(),
				Output:  cmd.ErrOrStderr(),
				File:    settings.LogFile,
			})
			if err != nil {
				return err
			}
			defer logger.Close()

			out := cmd.OutOrStdout()
			reporter := console.NewReporter(out, ctx.verbose())
			manager := renumber.NewManager(settings, logger, reporter.Handle)

			logger.WithFields(logrus.Fields{
				"inputs": flags.inputDirs,
				"output": flags.outputDir,
			}).Debug("starting renumber")

			result, err := manager.Run(cmd.Context(), renumber.Options{
				InputDirs: flags.inputDirs,
				OutputDir: flags.outputDir,
				DryRun:    flags.dryRun,
			})
			reporter.Finish()
			if err != nil {
				return err
			}

			if (flags.dryRun || flags.summary) && len(result.Tracks) > 0 {
				fmt.Fprintln(out, console.RenderTracks(result.Tracks))
			}
			if result.Skipped > 0 {
				fmt.Fprintf(out, "Skipped %d duplicate file name(s)\n", result.Skipped)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&flags.inputDirs, "input-dir", "i", nil, "Input directory holding disk-track files (repeatable)")
	f.StringVarP(&flags.outputDir, "output-dir", "o", "", "Directory receiving the renumbered copies")
	f.StringVar(&flags.extension, "ext", "", "Audio file extension to select (default from config, m4a)")
	f.IntVar(&flags.workers, "workers", 0, "Concurrent copy workers (0 = one per CPU)")
	f.BoolVar(&flags.verify, "verify", false, "Read every track number back after renumbering")
	f.BoolVar(&flags.playlist, "playlist", false, "Write a playlist of the renumbered files")
	f.StringVar(&flags.playlistFormat, "playlist-format", "", "Playlist format: m3u, pls, wpl, zpl")
	f.BoolVar(&flags.failOnCollision, "fail-on-collision", false, "Fail when two inputs contain the same file name")
	f.BoolVar(&flags.noCreateOutput, "no-create-output", false, "Require the output directory to exist")
	f.BoolVar(&flags.dryRun, "dry-run", false, "Show the planned numbering without copying or tagging")
	f.BoolVar(&flags.summary, "summary", false, "Print a table of the renumbered files")

	return cmd
}

// apply returns a copy of base with every explicitly set flag applied.
func (f *renumberFlags) apply(cmd *cobra.Command, base *config.Settings) (*config.Settings, error) {
	settings := *base
	changed := cmd.Flags().Changed

	if changed("ext") {
		settings.AudioExtension = strings.TrimPrefix(strings.TrimSpace(f.extension), ".")
	}
	if changed("workers") {
		settings.Workers = f.workers
	}
	if changed("verify") {
		settings.Verify = f.verify
	}
	if changed("playlist") {
		settings.CreatePlaylist = f.playlist
	}
	if changed("playlist-format") {
		if _, ok := model.ParsePlaylistFormat(f.playlistFormat); !ok {
			return nil, usageErrorf("unknown playlist format %q", f.playlistFormat)
		}
		settings.PlaylistFormat = strings.ToLower(f.playlistFormat)
	}
	if changed("fail-on-collision") {
		settings.FailOnCollision = f.failOnCollision
	}
	if changed("no-create-output") {
		settings.CreateOutputDir = !f.noCreateOutput
	}

	if err := settings.Validate(); err != nil {
		return nil, &usageError{err: err}
	}
	return &settings, nil
}
