package sierra

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid sierra configuration")
	// ErrTokenUnavailable indicates no valid access token could be obtained
	ErrTokenUnavailable = errors.New("sierra access token unavailable")
	// ErrUnexpectedStatus indicates the API answered with a non-200 status
	ErrUnexpectedStatus = errors.New("unexpected status from sierra API")
	// ErrMalformedBody indicates a response body that is not valid JSON
	ErrMalformedBody = errors.New("malformed response body")
	// ErrTransport indicates the request never produced an HTTP response
	ErrTransport = errors.New("sierra transport failure")
	// ErrUnsupportedMethod is returned for methods other than GET and POST
	ErrUnsupportedMethod = errors.New("unsupported request method")
)

// TokenError is returned when the client cannot hold a valid token.
// Body carries the auth server response when one was received.
type TokenError struct {
	Reason string
	Status int
	Body   string
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sierra token unavailable: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("sierra token unavailable: %s", e.Reason)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTokenUnavailable.
func (e *TokenError) Is(target error) bool {
	return target == ErrTokenUnavailable
}

// APIError represents a Sierra API error
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("sierra API error: status %d: %s", e.StatusCode, e.Message)
}

// Is reports whether target is ErrUnexpectedStatus.
func (e *APIError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// sierraErrorBody is the error document Sierra returns with 4xx/5xx answers.
type sierraErrorBody struct {
	Code         int    `json:"code"`
	SpecificCode int    `json:"specificCode"`
	HTTPStatus   int    `json:"httpStatus"`
	Name         string `json:"name"`
	Description  string `json:"description"`
}

// newAPIError builds an APIError, pulling a readable message out of the
// Sierra error document when the body holds one.
func newAPIError(resp *Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.Status,
		Message:    http.StatusText(resp.Status),
		Body:       string(resp.Body),
	}

	var doc sierraErrorBody
	if err := json.Unmarshal(resp.Body, &doc); err == nil && doc.Name != "" {
		apiErr.Message = doc.Name
		if doc.Description != "" {
			apiErr.Message += ": " + doc.Description
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = "unknown status"
	}

	return apiErr
}

// DecodeError indicates a 200 response whose body could not be decoded
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode sierra response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedBody.
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformedBody
}

// TransportError wraps DNS, connection and timeout failures
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// PersistError reports a token that was obtained but could not be saved.
// It never fails a call; the token stays usable from memory.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist sierra token: %v", e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
