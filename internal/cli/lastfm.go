package cli

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/llehouerou/eddy/internal/errmsg"
	"github.com/llehouerou/eddy/internal/lastfm"
)

var errLastfmNotConfigured = errors.New("set [lastfm] api_key and api_secret in the config first")

func newLastfmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lastfm",
		Short: "Manage Last.fm scrobbling",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "link",
			Short: "Authorize eddy to scrobble to your account",
			Args:  cobra.NoArgs,
			RunE:  consoleCommand(runLastfmLink),
		},
		&cobra.Command{
			Use:   "unlink",
			Short: "Forget the stored Last.fm session",
			Args:  cobra.NoArgs,
			RunE:  consoleCommand(runLastfmUnlink),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the linked account and pending scrobbles",
			Args:  cobra.NoArgs,
			RunE:  consoleCommand(runLastfmStatus),
		},
	)
	return cmd
}

func runLastfmLink(cmd *cobra.Command, _ []string) error {
	if !cfg.HasLastfmConfig() {
		return errmsg.Wrap(errmsg.OpLastfmLink, errLastfmNotConfigured)
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())
	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)

	username, err := lastfm.Link(cmd.Context(), client, store, func(authURL string) error {
		fmt.Fprintf(out, "Open this page and allow access:\n\n  %s\n\n", authURL)
		if err := lastfm.OpenBrowser(authURL); err != nil {
			log.Debug().Err(err).Msg("Could not open browser")
		}
		fmt.Fprint(out, "Press Enter once access is granted...")
		_, err := in.ReadString('\n')
		return err
	})
	if err != nil {
		return errmsg.Wrap(errmsg.OpLastfmLink, err)
	}
	fmt.Fprintf(out, "\nLinked to Last.fm as %s.\n", username)
	return nil
}

func runLastfmUnlink(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteLastfmSession(cmd.Context()); err != nil {
		return errmsg.Wrap(errmsg.OpLastfmUnlink, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Last.fm account unlinked.")
	return nil
}

func runLastfmStatus(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if !cfg.HasLastfmConfig() {
		fmt.Fprintln(out, "Last.fm: not configured")
	}

	sess, err := store.LastfmSession(cmd.Context())
	if err != nil {
		return errmsg.Wrap(errmsg.OpLastfmStatus, err)
	}
	if sess == nil {
		fmt.Fprintln(out, "Last.fm: not linked")
	} else {
		fmt.Fprintf(out, "Last.fm: linked as %s (%s)\n", sess.Username, humanize.Time(sess.LinkedAt))
	}

	pending, err := store.PendingScrobbles(cmd.Context())
	if err != nil {
		return errmsg.Wrap(errmsg.OpLastfmStatus, err)
	}
	if len(pending) == 0 {
		fmt.Fprintln(out, "No pending scrobbles.")
		return nil
	}
	oldest := pending[0].CreatedAt
	for _, p := range pending[1:] {
		if p.CreatedAt.Before(oldest) {
			oldest = p.CreatedAt
		}
	}
	fmt.Fprintf(out, "%s pending scrobbles, oldest queued %s.\n", humanize.Comma(int64(len(pending))), humanize.Time(oldest))
	return nil
}
