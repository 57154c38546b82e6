// Package lastfm scrobbles plays to Last.fm.
package lastfm

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/shkh/lastfm-go/lastfm"
)

const authEndpoint = "https://www.last.fm/api/auth/"

// ErrNotAuthenticated is returned by submissions made without a session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Track is what Last.fm needs to know about a play.
type Track struct {
	Artist   string
	Track    string
	Album    string
	Duration time.Duration
	// Timestamp is when playback started. Only scrobbles carry it.
	Timestamp time.Time
}

func (t Track) params() lastfm.P {
	p := lastfm.P{"artist": t.Artist, "track": t.Track}
	if t.Album != "" {
		p["album"] = t.Album
	}
	if secs := int(t.Duration.Seconds()); secs > 0 {
		p["duration"] = secs
	}
	if !t.Timestamp.IsZero() {
		p["timestamp"] = t.Timestamp.Unix()
	}
	return p
}

// Session is an authorized Last.fm session.
type Session struct {
	Username string
	Key      string
}

// Client talks to the Last.fm API with one application's credentials.
type Client struct {
	api     *lastfm.Api
	apiKey  string
	session string
}

func New(apiKey, apiSecret string) *Client {
	return &Client{api: lastfm.New(apiKey, apiSecret), apiKey: apiKey}
}

// UseSession authenticates later submissions with key.
func (c *Client) UseSession(key string) {
	c.session = key
	c.api.SetSession(key)
}

func (c *Client) Authenticated() bool { return c.session != "" }

// RequestToken starts the desktop authorization flow.
func (c *Client) RequestToken() (string, error) {
	token, err := c.api.GetToken()
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	return token, nil
}

// AuthURL is the page where the user approves token.
func (c *Client) AuthURL(token string) string {
	q := url.Values{"api_key": {c.apiKey}, "token": {token}}
	return authEndpoint + "?" + q.Encode()
}

// Exchange trades an approved token for a session and starts using it.
// The username is "unknown" when the profile lookup fails.
func (c *Client) Exchange(token string) (Session, error) {
	if err := c.api.LoginWithToken(token); err != nil {
		return Session{}, fmt.Errorf("exchange token: %w", err)
	}
	s := Session{Username: "unknown", Key: c.api.GetSessionKey()}
	if s.Key == "" {
		return Session{}, errors.New("exchange token: empty session key")
	}
	c.session = s.Key

	if info, err := c.api.User.GetInfo(nil); err == nil && info.Name != "" {
		s.Username = info.Name
	}
	return s, nil
}

// NowPlaying marks t as the track currently playing.
func (c *Client) NowPlaying(t Track) error {
	t.Timestamp = time.Time{}
	return c.submit("update now playing", t, func(p lastfm.P) error {
		_, err := c.api.Track.UpdateNowPlaying(p)
		return err
	})
}

// Scrobble records a finished play of t.
func (c *Client) Scrobble(t Track) error {
	return c.submit("scrobble", t, func(p lastfm.P) error {
		_, err := c.api.Track.Scrobble(p)
		return err
	})
}

func (c *Client) submit(what string, t Track, send func(lastfm.P) error) error {
	if !c.Authenticated() {
		return ErrNotAuthenticated
	}
	if err := send(t.params()); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
