package sierra

import (
	"context"
)

// API defines the interface for Sierra operations
type API interface {
	// Query fetches a resource and returns the decoded JSON document
	Query(ctx context.Context, resource string, params Params, marc bool) (any, error)

	// Post sends form parameters to a resource
	Post(ctx context.Context, resource string, params Params, marc bool) (any, error)
}

// TokenManager provides access to the client's token lifecycle
type TokenManager interface {
	// EnsureToken returns a currently valid token, refreshing if needed
	EnsureToken(ctx context.Context) (*Token, error)

	// RefreshToken always requests a new token
	RefreshToken(ctx context.Context) (*Token, error)

	// ClearToken forgets the cached token
	ClearToken(ctx context.Context) error
}

var (
	_ API          = (*Client)(nil)
	_ TokenManager = (*Client)(nil)
)
