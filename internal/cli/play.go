package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/llehouerou/eddy/internal/errmsg"
	"github.com/llehouerou/eddy/internal/logging"
	"github.com/llehouerou/eddy/internal/mpris"
	"github.com/llehouerou/eddy/internal/notify"
	"github.com/llehouerou/eddy/internal/ui"
)

var playShuffle bool

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [paths...]",
		Short: "Open the player",
		Long: `Open the player on the library. Paths given on the command line are
scanned into the library first.

Keys:
  enter        Play from the selected song
  space        Play/pause
  n, p         Next/previous song
  left, right  Seek 5s
  s, r         Toggle shuffle, cycle repeat
  f            Toggle favorite
  ?            Help
  q            Quit`,
		RunE: runPlay,
	}
	cmd.Flags().BoolVar(&playShuffle, "shuffle", false, "enable shuffle")
	return cmd
}

func runPlay(cmd *cobra.Command, args []string) error {
	closer, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	bg, cancelBg := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancelBg()
		wg.Wait()
	}()

	if len(args) > 0 {
		stats, err := scanSources(ctx, store, args)
		if err != nil {
			return err
		}
		log.Info().Int("added", stats.Added).Int("updated", stats.Updated).Msg("Scanned paths")
	}

	songs, err := store.ListSongs(ctx)
	if err != nil {
		return errmsg.Wrap(errmsg.OpLibraryLoad, err)
	}

	h := newEngineHandle(ctx)
	defer h.Close()

	scrobbler := newScrobbler(ctx, store)
	sess := newSession(h, store, scrobbler)
	sess.Start(ctx)
	defer sess.Close()
	if playShuffle {
		sess.SetShuffle(true)
	}
	if scrobbler != nil {
		wg.Go(func() { scrobbler.Run(bg) })
	}

	if cfg.Notifications {
		stream := sess.Subscribe(bg)
		wg.Go(func() { notify.Follow(notify.New(), stream.States, mpris.FindAlbumArt) })
	}

	adapter, err := mpris.New(ctx, sess)
	if err != nil {
		log.Warn().Err(err).Msg("MPRIS unavailable")
	} else {
		defer adapter.Close()
	}

	restore, err := logging.CaptureStderr()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to capture stderr")
		restore = func() {}
	}
	defer restore()

	model := ui.New(sess, sess.Subscribe(bg), songs)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
