package sierra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
)

// Params are request parameters, form encoded in key order.
type Params map[string]string

// Encode returns the URL form encoding of p.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	values := make(url.Values, len(p))
	for k, v := range p {
		values.Set(k, v)
	}
	return values.Encode()
}

// Response is a completed HTTP exchange.
type Response struct {
	Status int
	Header Header
	Body   []byte
}

// execute sends a single GET or POST.
//
// GET parameters go in the query string; POST parameters are form encoded in
// the body. Failures before a response arrives come back as *TransportError.
func (c *Client) execute(ctx context.Context, method, requestURL string, params Params, header map[string]string) (*Response, error) {
	method = strings.ToUpper(method)

	var body io.Reader
	switch method {
	case http.MethodPost:
		body = strings.NewReader(params.Encode())
	case http.MethodGet:
		if query := params.Encode(); query != "" {
			requestURL += "?" + query
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)
	for name, value := range header {
		req.Header.Set(name, value)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", requestURL).
		Msg("Making Sierra API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: requestURL, Err: err}
	}
	defer resp.Body.Close()

	rawHeader, err := httputil.DumpResponse(resp, false)
	if err != nil {
		return nil, &TransportError{Method: method, URL: requestURL, Err: fmt.Errorf("read headers: %w", err)}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: requestURL, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", requestURL).
		Int("status", resp.StatusCode).
		Int("bytes", len(respBody)).
		Msg("Sierra API response")

	return &Response{
		Status: resp.StatusCode,
		Header: ParseHeader(string(rawHeader)),
		Body:   respBody,
	}, nil
}
