package sierra

import (
	"net/http"
	"time"

	"github.com/s0up4200/sierra/tokenstore"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its Timeout is left untouched.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTokenStore sets where tokens are cached.
// By default tokens go to a file at Config.TokenFile.
func WithTokenStore(store tokenstore.Store) Option {
	return func(c *Client) {
		if store != nil {
			c.store = store
		}
	}
}

// WithClock overrides the time source used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithPersistErrorHandler registers fn to receive token save failures.
func WithPersistErrorHandler(fn func(*PersistError)) Option {
	return func(c *Client) {
		c.onPersistError = fn
	}
}
