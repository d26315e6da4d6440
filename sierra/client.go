package sierra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/sierra/tokenstore"
)

// Client talks to a Sierra REST API with client-credentials authentication
type Client struct {
	cfg        Config
	httpClient *http.Client
	store      tokenstore.Store
	logger     zerolog.Logger
	now        func() time.Time

	onPersistError func(*PersistError)

	mu    sync.Mutex
	token *Token
}

// NewClient creates a new Sierra client.
//
// Unless WithTokenStore is given, tokens are cached in the file named by
// cfg.TokenFile. No request is made until the first query.
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.store == nil {
		store, err := tokenstore.NewFileStore(cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create token store: %w", err)
		}
		client.store = store
	}

	return client, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Query fetches resource with GET and returns the decoded JSON document.
//
// The error is a *TokenError when no token could be obtained, an *APIError
// for any status other than 200, a *DecodeError when the body is not JSON,
// or a *TransportError when no response arrived.
func (c *Client) Query(ctx context.Context, resource string, params Params, marc bool) (any, error) {
	return c.call(ctx, http.MethodGet, resource, params, marc)
}

// Post sends params form encoded to resource and returns the decoded JSON
// document. Errors are as for Query.
func (c *Client) Post(ctx context.Context, resource string, params Params, marc bool) (any, error) {
	return c.call(ctx, http.MethodPost, resource, params, marc)
}

// QueryOrNil is Query for callers that only care whether a result arrived.
// Every failure yields nil.
func (c *Client) QueryOrNil(ctx context.Context, resource string, params Params, marc bool) any {
	result, err := c.Query(ctx, resource, params, marc)
	if err != nil {
		c.logger.Debug().Err(err).Str("resource", resource).Msg("Sierra query failed")
		return nil
	}
	return result
}

// QueryInto fetches resource with GET and decodes the body into v.
func (c *Client) QueryInto(ctx context.Context, resource string, params Params, marc bool, v any) error {
	resp, err := c.do(ctx, http.MethodGet, resource, params, marc)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &DecodeError{Body: string(resp.Body), Err: err}
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, resource string, params Params, marc bool) (any, error) {
	resp, err := c.do(ctx, method, resource, params, marc)
	if err != nil {
		return nil, err
	}

	var result any
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, &DecodeError{Body: string(resp.Body), Err: err}
	}
	return result, nil
}

// do authenticates and sends the request. Only a 200 answer is returned.
func (c *Client) do(ctx context.Context, method, resource string, params Params, marc bool) (*Response, error) {
	tok, err := c.EnsureToken(ctx)
	if err != nil {
		return nil, err
	}

	header := map[string]string{
		"Authorization": tok.Authorization(),
	}
	if marc {
		header["Accept"] = MARCContentType
	}

	resp, err := c.execute(ctx, method, c.cfg.ResourceURL(resource), params, header)
	if err != nil {
		return nil, err
	}

	if resp.Status != http.StatusOK {
		return nil, newAPIError(resp)
	}

	return resp, nil
}
