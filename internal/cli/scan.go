package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/llehouerou/eddy/internal/library"
)

var scanFull bool

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan folders into the library",
		Long: `Scan folders for MP3 and FLAC files and update the library. With no
paths the configured library_sources are scanned. Songs whose files are
gone from a scanned folder are removed.`,
		RunE: consoleCommand(runScan),
	}
	cmd.Flags().BoolVar(&scanFull, "full", false, "re-read every file, even unchanged ones")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := []library.Option{
		library.WithProgress(func(p library.Progress) {
			if p.Phase == library.PhaseProcessing && p.Current%500 == 0 && p.Current > 0 {
				log.Info().Int("current", p.Current).Int("total", p.Total).Msg("Reading tags")
			}
		}),
	}
	if scanFull {
		opts = append(opts, library.WithFullRescan())
	}

	stats, err := scanSources(cmd.Context(), store, args, opts...)
	if err != nil {
		return err
	}
	printStats(cmd, stats)
	return nil
}

func printStats(cmd *cobra.Command, s library.Stats) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s added, %s updated, %s unchanged, %s removed",
		humanize.Comma(int64(s.Added)),
		humanize.Comma(int64(s.Updated)),
		humanize.Comma(int64(s.Unchanged)),
		humanize.Comma(int64(s.Removed)),
	)
	if s.Failed > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), ", %s failed", humanize.Comma(int64(s.Failed)))
	}
	fmt.Fprintln(cmd.OutOrStdout())
}
