package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rlafferty/freshtracks/internal/acquire"
	"github.com/rlafferty/freshtracks/internal/app"
	"github.com/rlafferty/freshtracks/internal/config"
	"github.com/rlafferty/freshtracks/internal/model"
)

var (
	configPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:   "freshtracks",
		Short: "Keep a rotating local collection of recommended tracks",
		Long: `freshtracks fetches recommended tracks, downloads them through a
slskd daemon, tags and imports them into a bounded local collection,
and rotates out tracks that are too old or over the cap.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(runCmd(), rotateCmd(), cleanupCmd(), configInitCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "freshtracks.json"
	}
	return home + "/.config/freshtracks/config.json"
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

func printProgress(event acquire.ProgressEvent) {
	if event.Level == acquire.LevelVerbose && !verbose {
		return
	}

	prefix := "   "
	switch event.Level {
	case acquire.LevelError:
		prefix = "❌ "
	case acquire.LevelWarning:
		prefix = "⚠️  "
	case acquire.LevelSuccess:
		prefix = "✅ "
	case acquire.LevelInfo:
		prefix = "ℹ️  "
	}

	fmt.Println(prefix + event.Message)
}

func runCmd() *cobra.Command {
	var (
		tracksFile string
		limit      int
		dryRun     bool
		skipRotate bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch recommendations, acquire them, and rotate the collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if limit > 0 {
				settings.TrackLimit = limit
			}

			log := newLogger()
			runner, err := app.NewRunner(settings, log, printProgress)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			var tracks []model.WantedTrack
			if tracksFile != "" {
				tracks, err = app.LoadTracksFile(tracksFile)
			} else {
				tracks, err = runner.FetchTracks(ctx)
			}
			if err != nil {
				return err
			}
			if len(tracks) == 0 {
				fmt.Println("Nothing to acquire.")
				return nil
			}

			fmt.Printf("🎵 freshtracks: %d track(s) wanted\n\n", len(tracks))
			if dryRun {
				for _, t := range tracks {
					fmt.Printf("  ♪ %s\n", t)
				}
				fmt.Println("\n[Dry run - not downloading]")
				return nil
			}

			if removed := runner.CleanupProcessing(); removed > 0 {
				fmt.Printf("Cleaned up %d stale processing file(s)\n", removed)
			}

			summary := runner.AcquireAll(ctx, tracks)
			if ctx.Err() != nil {
				fmt.Println("\nRun cancelled.")
				os.Exit(130)
			}

			if !skipRotate {
				result, err := runner.Rotate()
				if err != nil {
					return fmt.Errorf("rotating collection: %w", err)
				}
				if err := runner.WritePlaylist(); err != nil {
					log.Warn().Err(err).Msg("playlist write failed")
				}
				fmt.Printf("\nRotation: %d archived, %d deleted, %d evicted from archive\n",
					result.Rotated, result.Deleted, result.Evicted)
			}

			fmt.Printf("✨ Complete! Acquired %d/%d track(s)\n", len(summary.Acquired), len(tracks))
			for _, t := range summary.Failed {
				fmt.Printf("   ✗ %s\n", t)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tracksFile, "tracks-file", "", `read the wanted list from a file ("Artist - Title" per line) instead of the recommendation source`)
	cmd.Flags().IntVar(&limit, "limit", 0, "override the track limit from config")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the wanted tracks without downloading")
	cmd.Flags().BoolVar(&skipRotate, "skip-rotate", false, "acquire only; leave the collection unrotated")

	return cmd
}

func rotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Apply the rotation policy to the collection without acquiring",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}

			runner, err := app.NewRunner(settings, newLogger(), nil)
			if err != nil {
				return err
			}

			result, err := runner.Rotate()
			if err != nil {
				return err
			}
			if err := runner.WritePlaylist(); err != nil {
				return fmt.Errorf("writing playlist: %w", err)
			}

			fmt.Printf("Rotation: %d archived, %d deleted, %d evicted from archive\n",
				result.Rotated, result.Deleted, result.Evicted)
			return nil
		},
	}
}

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove files stranded in the processing directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}

			runner, err := app.NewRunner(settings, newLogger(), nil)
			if err != nil {
				return err
			}

			removed := runner.CleanupProcessing()
			fmt.Printf("Removed %d stale processing file(s)\n", removed)
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-init",
		Short: "Write a config file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("%s already exists", configPath)
			}
			if err := config.DefaultSettings().Save(configPath); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", configPath)
			fmt.Println("Set FRESHTRACKS_SLSKD_API_KEY (and optionally FRESHTRACKS_LASTFM_API_KEY) in the environment or a .env file.")
			return nil
		},
	}
}
