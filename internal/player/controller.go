// Package player translates application intents into engine commands.
package player

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/eddy/internal/engine"
	"github.com/llehouerou/eddy/internal/mailbox"
	"github.com/llehouerou/eddy/internal/playback"
)

type command struct {
	name string
	run  func(e engine.Engine) error
}

// Controller is the command facade in front of the engine.
//
// Every method enqueues a command and returns immediately. A single goroutine
// started by Start waits for the engine binding and then executes commands in
// the order they were issued, so the engine is only ever driven from one
// place. Outcomes are observed through engine events, never returned.
type Controller struct {
	handle *engine.Handle
	cmds   *mailbox.Mailbox[command]

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// New creates a controller for the engine behind h.
func New(h *engine.Handle) *Controller {
	return &Controller{
		handle: h,
		cmds:   mailbox.New[command](),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the command goroutine. Commands issued before Start, or
// before the engine is bound, are kept and run once both have happened.
func (c *Controller) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		go c.run(ctx)
	})
}

// Close stops the command goroutine and waits for it to exit.
// Pending commands are dropped.
func (c *Controller) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	c.startOnce.Do(func() { close(c.done) })
	<-c.done
	c.cmds.Close()
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	e, err := c.handle.Await(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Int("dropped", c.cmds.Len()).Msg("Engine unavailable, dropping commands")
		}
		c.cmds.Close()
		return
	}

	for {
		for _, cmd := range c.cmds.Drain() {
			if ctx.Err() != nil {
				return
			}
			if err := cmd.run(e); err != nil {
				log.Warn().Err(err).Str("command", cmd.name).Msg("Engine command failed")
			}
		}
		select {
		case <-c.cmds.Ready():
		case <-ctx.Done():
			return
		}
	}
}

func (c *Controller) enqueue(name string, run func(e engine.Engine) error) {
	log.Debug().Str("command", name).Msg("Player command")
	c.cmds.Put(command{name: name, run: run})
}

// Do enqueues fn as a command, ordered with every other command.
func (c *Controller) Do(name string, fn func(e engine.Engine) error) {
	c.enqueue(name, fn)
}

// SetQueue replaces the engine queue.
func (c *Controller) SetQueue(songs []playback.Song) {
	queue := slices.Clone(songs)
	c.enqueue("set_queue", func(e engine.Engine) error {
		return e.SetQueue(queue)
	})
}

// PlayFromHead starts playback at the beginning of the first queued song.
func (c *Controller) PlayFromHead() {
	c.enqueue("play_from_head", func(e engine.Engine) error {
		if err := e.SeekToIndex(0, 0); err != nil {
			return err
		}
		if err := e.SetPlayWhenReady(true); err != nil {
			return err
		}
		return e.Prepare()
	})
}

// Pause pauses playback.
func (c *Controller) Pause() {
	c.enqueue("pause", engine.Engine.Pause)
}

// Resume resumes paused playback.
func (c *Controller) Resume() {
	c.enqueue("resume", engine.Engine.Resume)
}

// Stop stops playback.
func (c *Controller) Stop() {
	c.enqueue("stop", engine.Engine.Stop)
}

// Next skips to the next queued song if there is one.
func (c *Controller) Next() {
	c.enqueue("next", func(e engine.Engine) error {
		if !e.HasNext() {
			return nil
		}
		return e.Next()
	})
}

// Previous goes back one song, or restarts the current song when there is
// no previous one.
func (c *Controller) Previous() {
	c.enqueue("previous", func(e engine.Engine) error {
		if e.HasPrevious() {
			return e.Previous()
		}
		return e.Seek(0)
	})
}

// Seek moves the playback position within the current song.
func (c *Controller) Seek(position time.Duration) {
	position = max(position, 0)
	c.enqueue("seek", func(e engine.Engine) error {
		return e.Seek(position)
	})
}

// SetRepeatMode sets the engine repeat mode.
func (c *Controller) SetRepeatMode(mode playback.RepeatMode) {
	c.enqueue("set_repeat_mode", func(e engine.Engine) error {
		return e.SetRepeatMode(mode)
	})
}

// SetShuffle enables or disables shuffle in the engine.
func (c *Controller) SetShuffle(enabled bool) {
	c.enqueue("set_shuffle", func(e engine.Engine) error {
		return e.SetShuffle(enabled)
	})
}
