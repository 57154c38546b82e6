// Package playerstate folds engine events into a stream of PlayerState
// snapshots.
package playerstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/eddy/internal/engine"
	"github.com/llehouerou/eddy/internal/mailbox"
	"github.com/llehouerou/eddy/internal/playback"
)

// ErrBind is wrapped by Subscription.Err when the engine could not be bound.
var ErrBind = errors.New("engine binding failed")

// DefaultTickInterval is how often the position advances while playing.
const DefaultTickInterval = time.Second

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithTickInterval sets the position ticker period.
func WithTickInterval(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.interval = d
		}
	}
}

// Aggregator turns the engine's callbacks into PlayerState subscriptions.
type Aggregator struct {
	handle   *engine.Handle
	interval time.Duration
}

// New creates an aggregator for the engine behind h.
func New(h *engine.Handle, opts ...Option) *Aggregator {
	a := &Aggregator{handle: h, interval: DefaultTickInterval}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Subscribe starts a subscription that lives until ctx is done or the engine
// fails to bind. The first snapshot is the engine's state at bind time.
func (a *Aggregator) Subscribe(ctx context.Context) *Subscription {
	sub := newSubscription()
	act := &actor{
		sub:      sub,
		interval: a.interval,
		events:   mailbox.New[engine.Event](),
		ticks:    make(chan uint64),
	}
	go act.run(ctx, a.handle)
	return sub
}

// actor owns the snapshot. Every mutation happens on its goroutine.
type actor struct {
	sub      *Subscription
	interval time.Duration
	events   *mailbox.Mailbox[engine.Event]
	ticks    chan uint64

	state  playback.PlayerState
	active bool

	gen        uint64
	stopTicker context.CancelFunc
	tickers    sync.WaitGroup
}

func (a *actor) run(ctx context.Context, h *engine.Handle) {
	e, err := h.Await(ctx)
	if err != nil {
		if ctx.Err() != nil {
			a.sub.finish(context.Cause(ctx))
			return
		}
		log.Error().Err(err).Msg("Player state unavailable")
		a.sub.finish(fmt.Errorf("%w: %w", ErrBind, err))
		return
	}

	id := e.AddListener(func(ev engine.Event) {
		a.events.Put(ev)
	})

	// Events queued before the snapshot is taken are already part of it.
	stale := a.events.Len()
	a.state = e.Snapshot()
	a.events.Discard(stale)
	a.sub.send(a.state)
	a.updateTicker(ctx)

	for {
		select {
		case <-a.events.Ready():
			evs := a.events.Drain()
			if len(evs) == 0 {
				continue
			}
			for _, ev := range evs {
				a.state = Fold(a.state, ev)
				a.updateTicker(ctx)
			}
			a.sub.send(a.state)
		case gen := <-a.ticks:
			a.tick(gen)
		case <-ctx.Done():
			e.RemoveListener(id)
			a.cancelTicker()
			a.tickers.Wait()
			a.events.Close()
			a.sub.finish(context.Cause(ctx))
			return
		}
	}
}

// updateTicker starts the ticker on a rising edge of Active and stops it on
// a falling edge.
func (a *actor) updateTicker(ctx context.Context) {
	now := a.state.Active()
	switch {
	case now && !a.active:
		a.startTicker(ctx)
	case !now && a.active:
		a.cancelTicker()
	}
	a.active = now
}

func (a *actor) startTicker(ctx context.Context) {
	a.cancelTicker()
	a.gen++
	gen := a.gen
	tctx, cancel := context.WithCancel(ctx)
	a.stopTicker = cancel

	a.tickers.Add(1)
	go func() {
		defer a.tickers.Done()
		t := time.NewTimer(a.interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
			case <-tctx.Done():
				return
			}
			select {
			case a.ticks <- gen:
			case <-tctx.Done():
				return
			}
			t.Reset(a.interval)
		}
	}()
}

func (a *actor) cancelTicker() {
	if a.stopTicker != nil {
		a.stopTicker()
		a.stopTicker = nil
	}
}

func (a *actor) tick(gen uint64) {
	if gen != a.gen || a.stopTicker == nil || !a.state.Active() {
		return
	}
	next := a.state.Position + a.interval
	if d := a.state.Duration(); d > 0 && next > d {
		next = d
		// The next song may start without IsPlaying ever dropping; the
		// following active fold must count as a rising edge.
		a.cancelTicker()
		a.active = false
	}
	if next == a.state.Position {
		return
	}
	a.state.Position = next
	a.sub.send(a.state)
}
