package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/eddy/internal/errmsg"
	"github.com/llehouerou/eddy/internal/playback"
	"github.com/llehouerou/eddy/internal/state"
)

const defaultListLimit = 20

var (
	historyLimit int
	topLimit     int

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently played songs",
		Args:  cobra.NoArgs,
		RunE: consoleCommand(func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.RecentHistory(cmd.Context(), historyLimit)
			if err != nil {
				return errmsg.Wrap(errmsg.OpHistoryLoad, err)
			}
			printHistory(cmd.OutOrStdout(), entries, time.Now())
			return nil
		}),
	}
	cmd.Flags().IntVarP(&historyLimit, "limit", "n", defaultListLimit, "number of entries")
	return cmd
}

func newTopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show most played songs",
		Args:  cobra.NoArgs,
		RunE: consoleCommand(func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.TopPlayed(cmd.Context(), topLimit)
			if err != nil {
				return errmsg.Wrap(errmsg.OpHistoryLoad, err)
			}
			printTop(cmd.OutOrStdout(), entries, time.Now())
			return nil
		}),
	}
	cmd.Flags().IntVarP(&topLimit, "limit", "n", defaultListLimit, "number of entries")
	return cmd
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func printHistory(w io.Writer, entries []state.HistoryEntry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No listening history yet.")
		return
	}
	t := newTable("Played", "Title", "Artist", "Album")
	for _, e := range entries {
		t.Row(humanize.RelTime(e.PlayedAt, now, "ago", "from now"), title(e.Song), e.Song.ArtistName, e.Song.AlbumName)
	}
	fmt.Fprintln(w, t.Render())
}

func printTop(w io.Writer, entries []state.PlayCountEntry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No plays counted yet.")
		return
	}
	t := newTable("#", "Plays", "Title", "Artist", "Last played")
	for i, e := range entries {
		last := "never"
		if !e.LastPlayedAt.IsZero() {
			last = humanize.RelTime(e.LastPlayedAt, now, "ago", "from now")
		}
		t.Row(strconv.Itoa(i+1), humanize.Comma(int64(e.Count)), title(e.Song), e.Song.ArtistName, last)
	}
	fmt.Fprintln(w, t.Render())
}

func title(s playback.Song) string {
	if s.Title == "" {
		return "Unknown Track"
	}
	return s.Title
}
