package sierra

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/s0up4200/sierra/tokenstore"
)

// EnsureToken returns a token that is valid right now, loading it from the
// store or requesting a new one when the cached token is missing or expired.
func (c *Client) EnsureToken(ctx context.Context) (*Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadToken(ctx)

	if !c.token.Valid() || c.token.Expired(c.now()) {
		return c.refreshLocked(ctx)
	}
	return c.token, nil
}

// RefreshToken requests a new token regardless of the cached one.
func (c *Client) RefreshToken(ctx context.Context) (*Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.refreshLocked(ctx)
}

// Token returns the token currently held in memory, or nil.
func (c *Client) Token() *Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil {
		return nil
	}
	tok := *c.token
	return &tok
}

// ClearToken drops the in-memory token and removes it from the store.
func (c *Client) ClearToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = nil
	return c.store.Clear(ctx)
}

// loadToken replaces the in-memory token with the stored one. An empty store
// leaves the in-memory token alone; an unreadable one clears it.
func (c *Client) loadToken(ctx context.Context) {
	data, err := c.store.Load(ctx)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to read cached Sierra token")
		c.token = nil
		return
	}

	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		c.logger.Warn().Err(err).Msg("Ignoring unparseable cached Sierra token")
		c.token = nil
		return
	}

	c.token = &tok
}

// grantParams returns the token request body.
func (c *Client) grantParams() Params {
	if c.cfg.LegacyGrant {
		return Params{"0": "grant_type", "1": "client_credentials"}
	}
	return Params{"grant_type": "client_credentials"}
}

func (c *Client) refreshLocked(ctx context.Context) (*Token, error) {
	auth := base64.StdEncoding.EncodeToString([]byte(c.cfg.Key + ":" + c.cfg.Secret))

	c.logger.Debug().Str("url", c.cfg.TokenURL()).Msg("Requesting Sierra access token")

	resp, err := c.execute(ctx, http.MethodPost, c.cfg.TokenURL(), c.grantParams(), map[string]string{
		"Authorization": "Basic " + auth,
	})
	if err != nil {
		return nil, &TokenError{Reason: "token request failed", Err: err}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body, &raw); err != nil || len(raw) == 0 {
		if err == nil {
			err = errors.New("empty token document")
		}
		return nil, &TokenError{
			Reason: "unparseable token response",
			Status: resp.Status,
			Body:   string(resp.Body),
			Err:    &DecodeError{Body: string(resp.Body), Err: err},
		}
	}

	if v, ok := raw["error"]; ok && string(v) != "null" {
		var tr tokenResponse
		_ = json.Unmarshal(resp.Body, &tr)
		reason := "auth server returned an error"
		if tr.Error != "" {
			reason = fmt.Sprintf("auth server returned %s", tr.Error)
			if tr.ErrorDescription != "" {
				reason += ": " + tr.ErrorDescription
			}
		}
		return nil, &TokenError{Reason: reason, Status: resp.Status, Body: string(resp.Body)}
	}

	if resp.Status >= http.StatusBadRequest {
		return nil, &TokenError{
			Reason: "token request rejected",
			Status: resp.Status,
			Body:   string(resp.Body),
			Err:    newAPIError(resp),
		}
	}

	var tok Token
	if err := json.Unmarshal(resp.Body, &tok); err != nil {
		return nil, &TokenError{
			Reason: "invalid token response",
			Status: resp.Status,
			Body:   string(resp.Body),
			Err:    &DecodeError{Body: string(resp.Body), Err: err},
		}
	}
	if tok.AccessToken == "" {
		return nil, &TokenError{Reason: "token response has no access_token", Status: resp.Status, Body: string(resp.Body)}
	}

	tok.ExpiresAt = c.now().Unix() + tok.ExpiresIn
	c.token = &tok

	c.logger.Debug().
		Str("token_type", tok.TokenType).
		Time("expires_at", tok.Expiry()).
		Msg("Obtained Sierra access token")

	c.saveToken(ctx, &tok)

	return c.token, nil
}

// saveToken writes tok to the store. Failures are reported, never returned.
func (c *Client) saveToken(ctx context.Context, tok *Token) {
	data, err := json.Marshal(tok)
	if err == nil {
		err = c.store.Save(ctx, data)
	}
	if err == nil {
		return
	}

	persistErr := &PersistError{Err: err}
	c.logger.Warn().Err(persistErr).Msg("Continuing with in-memory Sierra token")
	if c.onPersistError != nil {
		c.onPersistError(persistErr)
	}
}

// TokenSource exposes the client's token lifecycle as an oauth2.TokenSource,
// so other HTTP clients can share the cached Sierra token.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, client: c}
}

type tokenSource struct {
	ctx    context.Context
	client *Client
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.client.EnsureToken(s.ctx)
	if err != nil {
		return nil, err
	}
	return tok.OAuth2(), nil
}
