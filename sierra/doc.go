// Package sierra provides a client for the Sierra ILS REST API.
//
// Sierra authenticates API clients with the OAuth2 client-credentials grant.
// The client requests a bearer token from the token endpoint, caches it in a
// tokenstore.Store (a file by default) and reuses it until it expires, so
// short-lived processes sharing the cache do not request a token each run.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := sierra.NewClient(sierra.Config{
//		Endpoint: "https://lib.example.edu/iii/sierra-api/v6/",
//		Key:      "client-key",
//		Secret:   "client-secret",
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	items, err := client.Query(ctx, "items", sierra.Params{
//		"bibIds": "3996024",
//		"limit":  "20",
//		"fields": "id,location,status",
//	}, false)
//
// Pass marc=true to ask for MARC-in-JSON records.
//
// # Token cache
//
// Before each request the cached token is read back from the store. A
// missing or unparseable cache, or one whose expires_at has passed, triggers
// a token request; the new token is written back with its derived
// expires_at. A failed write is logged and the token is used from memory.
//
// # Error Handling
//
// Query reports each failure kind with its own type:
//
//   - *TokenError (ErrTokenUnavailable): no token could be obtained
//   - *APIError (ErrUnexpectedStatus): the API answered with a non-200 status
//   - *DecodeError (ErrMalformedBody): a 200 answer that is not JSON
//   - *TransportError (ErrTransport): no HTTP response at all
//
// QueryOrNil collapses all of them to a nil result.
package sierra
