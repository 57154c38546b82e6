package cli

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/eddy/internal/bookkeeping"
	"github.com/llehouerou/eddy/internal/config"
	"github.com/llehouerou/eddy/internal/engine"
	"github.com/llehouerou/eddy/internal/engine/local"
	"github.com/llehouerou/eddy/internal/engine/mpdengine"
	"github.com/llehouerou/eddy/internal/errmsg"
	"github.com/llehouerou/eddy/internal/lastfm"
	"github.com/llehouerou/eddy/internal/library"
	"github.com/llehouerou/eddy/internal/session"
	"github.com/llehouerou/eddy/internal/state"
)

func openStore() (*state.Manager, error) {
	store, err := state.Open(cfg.Database)
	if err != nil {
		return nil, errmsg.Wrap(errmsg.OpStoreOpen, err)
	}
	return store, nil
}

// newEngineHandle binds the configured engine. The daemon connection is
// made in the background; commands sent before it is up are queued by the
// session.
func newEngineHandle(ctx context.Context) *engine.Handle {
	if cfg.Engine != config.EngineMPD {
		return engine.Bound(local.New())
	}
	mc := cfg.GetMPDConfig()
	h := engine.NewHandle()
	h.Bind(ctx, func(ctx context.Context) (engine.Engine, error) {
		e, err := mpdengine.Dial(ctx, mpdengine.Config{
			Host:     mc.Host,
			Port:     mc.Port,
			Password: mc.Password,
			MusicDir: mc.MusicDirectory,
		})
		if err != nil {
			log.Error().Err(err).Str("host", mc.Host).Int("port", mc.Port).Msg("MPD connection failed")
			return nil, errmsg.Wrap(errmsg.OpEngineConnect, err)
		}
		log.Info().Str("host", mc.Host).Int("port", mc.Port).Msg("Connected to MPD")
		return e, nil
	})
	return h
}

// newScrobbler returns a scrobbler when Last.fm is configured and linked.
func newScrobbler(ctx context.Context, store *state.Manager) *lastfm.Scrobbler {
	if !cfg.HasLastfmConfig() {
		return nil
	}
	sess, err := store.LastfmSession(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read Last.fm session")
		return nil
	}
	if sess == nil {
		log.Debug().Msg("Last.fm configured but not linked")
		return nil
	}
	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
	client.UseSession(sess.SessionKey)
	return lastfm.NewScrobbler(client, store)
}

func newSession(h *engine.Handle, store *state.Manager, scrobbler *lastfm.Scrobbler) *session.Session {
	threshold, fraction := cfg.GetBookkeepingConfig()
	opts := []bookkeeping.Option{
		bookkeeping.WithHistoryThreshold(threshold),
		bookkeeping.WithPlayCountFraction(fraction),
	}
	if scrobbler != nil {
		opts = append(opts, bookkeeping.WithScrobbler(scrobbler))
	}
	return session.New(h, store, store,
		session.WithFavorites(store),
		session.WithBookkeepingOptions(opts...),
	)
}

// scanSources scans sources into the store, falling back to the
// configured library sources.
func scanSources(ctx context.Context, store library.Store, sources []string, opts ...library.Option) (library.Stats, error) {
	if len(sources) == 0 {
		sources = cfg.LibrarySources
	}
	if len(sources) == 0 {
		return library.Stats{}, errors.New("no library sources: pass paths or set library_sources in the config")
	}
	abs := make([]string, 0, len(sources))
	for _, src := range sources {
		p, err := filepath.Abs(src)
		if err != nil {
			return library.Stats{}, err
		}
		abs = append(abs, p)
	}
	sources = abs
	stats, err := library.New(store, opts...).Scan(ctx, sources)
	if err != nil {
		return stats, errmsg.Wrap(errmsg.OpLibraryScan, err)
	}
	return stats, nil
}
