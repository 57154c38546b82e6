package mpdengine

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"
)

var errNotConnected = errors.New("not connected to MPD")

// conn is the subset of the MPD protocol the engine uses.
type conn interface {
	Status() (mpd.Attrs, error)
	CurrentSong() (mpd.Attrs, error)
	Play(pos int) error
	Pause(pause bool) error
	Stop() error
	Next() error
	Previous() error
	Seek(pos, seconds int) error
	Random(on bool) error
	Repeat(on bool) error
	Single(on bool) error
	Clear() error
	Add(uri string) error
	Close() error
}

// Client wraps the gompd client with reconnection on ping failure.
type Client struct {
	mu       sync.RWMutex
	client   *mpd.Client
	watcher  *mpd.Watcher
	addr     string
	password string
	closed   bool
}

// NewClient creates a client for the daemon at host:port.
func NewClient(host string, port int, password string) *Client {
	return &Client{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		password: password,
	}
}

// Connect establishes the command connection.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	log.Info().Str("addr", c.addr).Msg("Connecting to MPD")

	client, err := mpd.Dial("tcp", c.addr)
	if err != nil {
		return fmt.Errorf("connect to MPD: %w", err)
	}

	if c.password != "" {
		if err := client.Command("password %s", c.password).OK(); err != nil {
			client.Close()
			return fmt.Errorf("MPD authentication failed: %w", err)
		}
	}

	c.client = client
	log.Info().Str("addr", c.addr).Msg("Connected to MPD")
	return nil
}

func (c *Client) ensureConnected() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errNotConnected
	}
	if c.client == nil {
		return c.connectLocked()
	}
	if err := c.client.Ping(); err != nil {
		log.Warn().Err(err).Msg("MPD connection lost, reconnecting")
		c.client.Close()
		c.client = nil
		return c.connectLocked()
	}
	return nil
}

// do runs fn with a live connection.
func (c *Client) do(fn func(*mpd.Client) error) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.client == nil {
		return errNotConnected
	}
	return fn(c.client)
}

func (c *Client) attrs(fn func(*mpd.Client) (mpd.Attrs, error)) (mpd.Attrs, error) {
	var out mpd.Attrs
	err := c.do(func(cl *mpd.Client) error {
		var err error
		out, err = fn(cl)
		return err
	})
	return out, err
}

func (c *Client) Status() (mpd.Attrs, error) {
	return c.attrs((*mpd.Client).Status)
}

func (c *Client) CurrentSong() (mpd.Attrs, error) {
	return c.attrs((*mpd.Client).CurrentSong)
}

func (c *Client) Play(pos int) error {
	return c.do(func(cl *mpd.Client) error { return cl.Play(pos) })
}

func (c *Client) Pause(pause bool) error {
	return c.do(func(cl *mpd.Client) error { return cl.Pause(pause) })
}

func (c *Client) Stop() error { return c.do((*mpd.Client).Stop) }

func (c *Client) Next() error { return c.do((*mpd.Client).Next) }

func (c *Client) Previous() error { return c.do((*mpd.Client).Previous) }

func (c *Client) Seek(pos, seconds int) error {
	return c.do(func(cl *mpd.Client) error { return cl.Seek(pos, seconds) })
}

func (c *Client) Random(on bool) error {
	return c.do(func(cl *mpd.Client) error { return cl.Random(on) })
}

func (c *Client) Repeat(on bool) error {
	return c.do(func(cl *mpd.Client) error { return cl.Repeat(on) })
}

func (c *Client) Single(on bool) error {
	return c.do(func(cl *mpd.Client) error { return cl.Single(on) })
}

func (c *Client) Clear() error { return c.do((*mpd.Client).Clear) }

func (c *Client) Add(uri string) error {
	return c.do(func(cl *mpd.Client) error { return cl.Add(uri) })
}

// Watch reports changes of the given subsystems until stop is closed.
// Watcher errors are logged and watching continues.
func (c *Client) Watch(stop <-chan struct{}, subsystems ...string) (<-chan string, error) {
	watcher, err := mpd.NewWatcher("tcp", c.addr, c.password, subsystems...)
	if err != nil {
		return nil, fmt.Errorf("create MPD watcher: %w", err)
	}

	c.mu.Lock()
	c.watcher = watcher
	c.mu.Unlock()

	ch := make(chan string, 10)
	go func() {
		defer close(ch)
		for {
			select {
			case subsystem, ok := <-watcher.Event:
				if !ok {
					return
				}
				select {
				case ch <- subsystem:
				case <-stop:
					return
				}
			case err, ok := <-watcher.Error:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("MPD watcher error")
				select {
				case <-time.After(time.Second):
				case <-stop:
					return
				}
			case <-stop:
				return
			}
		}
	}()
	return ch, nil
}

// Close closes the watcher and the command connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.watcher != nil {
		c.watcher.Close()
		c.watcher = nil
	}
	if c.client != nil {
		err := c.client.Close()
		c.client = nil
		return err
	}
	return nil
}
