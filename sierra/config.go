package sierra

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	// DefaultTimeout bounds every request made by the client.
	DefaultTimeout = 60 * time.Second
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "sierra-go/0.1"
	// MARCContentType is the Accept value that asks for MARC-in-JSON records.
	MARCContentType = "application/marc-in-json"

	tokenResource = "token"
)

// DefaultTokenFile returns the default token cache location,
// SierraToken in the OS temp directory.
func DefaultTokenFile() string {
	return filepath.Join(os.TempDir(), "SierraToken")
}

// Config holds the Sierra connection settings.
//
// Endpoint is the API base, e.g. https://lib.example.edu/iii/sierra-api/v6/.
// Resources are appended to it verbatim, so it always ends with a slash.
type Config struct {
	Endpoint  string
	Key       string
	Secret    string
	TokenFile string

	Timeout   time.Duration
	UserAgent string

	// LegacyGrant sends the token request body as "0=grant_type&1=client_credentials",
	// the form some older deployments were written against.
	LegacyGrant bool
}

// Validate checks that the required settings are present.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Endpoint, validation.Required, is.RequestURL),
		validation.Field(&c.Key, validation.Required),
		validation.Field(&c.Secret, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// withDefaults returns a copy with every unset optional field filled in.
func (c Config) withDefaults() Config {
	if c.Endpoint != "" && !strings.HasSuffix(c.Endpoint, "/") {
		c.Endpoint += "/"
	}
	if c.TokenFile == "" {
		c.TokenFile = DefaultTokenFile()
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// TokenURL returns the token endpoint.
func (c Config) TokenURL() string {
	return c.Endpoint + tokenResource
}

// ResourceURL returns the URL of resource under the endpoint.
func (c Config) ResourceURL(resource string) string {
	return c.Endpoint + strings.TrimPrefix(resource, "/")
}
