package lastfm

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// SessionStore persists the Last.fm session.
type SessionStore interface {
	SaveLastfmSession(ctx context.Context, username, sessionKey string) error
}

// Link runs the desktop authorization flow: it requests a token, hands the
// authorization URL to confirm, which returns once the user has approved
// access, then exchanges the token for a session and stores it.
func Link(ctx context.Context, c *Client, store SessionStore, confirm func(authURL string) error) (string, error) {
	token, err := c.RequestToken()
	if err != nil {
		return "", err
	}
	if err := confirm(c.AuthURL(token)); err != nil {
		return "", err
	}

	sess, err := c.Exchange(token)
	if err != nil {
		return "", err
	}
	if err := store.SaveLastfmSession(ctx, sess.Username, sess.Key); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return sess.Username, nil
}

// OpenBrowser opens the given URL in the default browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
