package sierra

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// Token is a client-credentials access token as cached by the client.
//
// ExpiresAt is derived when the token is issued and stored alongside the
// server fields. Fields the auth server returns beyond the known ones are
// kept in Extra and written back verbatim.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
	ExpiresAt   int64
	Extra       map[string]json.RawMessage
}

var tokenFields = []string{"access_token", "token_type", "expires_in", "expires_at"}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (t *Token) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	targets := map[string]any{
		"access_token": &t.AccessToken,
		"token_type":   &t.TokenType,
		"expires_in":   &t.ExpiresIn,
		"expires_at":   &t.ExpiresAt,
	}
	for _, name := range tokenFields {
		v, ok := raw[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, targets[name]); err != nil {
			return fmt.Errorf("token field %s: %w", name, err)
		}
		delete(raw, name)
	}

	t.Extra = nil
	if len(raw) > 0 {
		t.Extra = raw
	}
	return nil
}

// MarshalJSON writes Extra followed by the known fields.
func (t Token) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Extra)+len(tokenFields))
	for k, v := range t.Extra {
		out[k] = v
	}
	out["access_token"] = t.AccessToken
	out["token_type"] = t.TokenType
	out["expires_in"] = t.ExpiresIn
	out["expires_at"] = t.ExpiresAt
	return json.Marshal(out)
}

// Valid reports whether the token carries an access token.
func (t *Token) Valid() bool {
	return t != nil && t.AccessToken != ""
}

// Expired reports whether now is at or past ExpiresAt.
func (t *Token) Expired(now time.Time) bool {
	return now.Unix() >= t.ExpiresAt
}

// Expiry returns ExpiresAt as a time.
func (t *Token) Expiry() time.Time {
	return time.Unix(t.ExpiresAt, 0)
}

// Authorization returns the Authorization header value.
func (t *Token) Authorization() string {
	return t.TokenType + " " + t.AccessToken
}

// OAuth2 converts the token for use with golang.org/x/oauth2 transports.
func (t *Token) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		Expiry:      t.Expiry(),
		ExpiresIn:   t.ExpiresIn,
	}
	if len(t.Extra) == 0 {
		return tok
	}

	extra := make(map[string]any, len(t.Extra))
	for k, v := range t.Extra {
		var decoded any
		if err := json.Unmarshal(v, &decoded); err == nil {
			extra[k] = decoded
		}
	}
	return tok.WithExtra(extra)
}

// tokenResponse is the auth server answer before it becomes a Token.
type tokenResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
