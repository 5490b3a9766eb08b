// package auth implements the OAuth2 client-credentials flow against the
// Spotify accounts service, caching the issued token in memory.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/oferko1/toptracks/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultTokenURL is the Spotify accounts service token endpoint.
const DefaultTokenURL = "https://accounts.spotify.com/api/token"

const (
	// safetyMargin is subtracted from the reported expiry so a token is
	// never used when it could expire mid-flight.
	safetyMargin = 5 * time.Second

	// defaultExpiry applies when the token response omits expires_in.
	defaultExpiry = 3600 * time.Second

	requestTimeout = 10 * time.Second
)

// TokenError describes a failed token exchange. Status is the upstream HTTP
// status, or 0 when the endpoint was unreachable.
type TokenError struct {
	Status int
	Body   string
}

func (e *TokenError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("token exchange failed: %s", e.Body)
	}
	return fmt.Sprintf("token exchange failed: status %d: %s", e.Status, e.Body)
}

func (e *TokenError) Unwrap() error { return shared.ErrAuthFailed }

// TokenSource acquires and caches a client-credentials token. The cached
// [oauth2.Token] is the only state shared across requests; it is replaced
// wholesale under the mutex so readers never observe a partial token.
type TokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	client       *http.Client
	clock        shared.Clock

	mu    sync.Mutex
	token *oauth2.Token
}

// Option configures a [TokenSource].
type Option func(*TokenSource)

// WithTokenURL points the source at a different token endpoint.
func WithTokenURL(u string) Option {
	return func(ts *TokenSource) {
		if u != "" {
			ts.tokenURL = u
		}
	}
}

// WithHTTPClient sets the HTTP client used for the exchange.
func WithHTTPClient(c *http.Client) Option {
	return func(ts *TokenSource) {
		if c != nil {
			ts.client = c
		}
	}
}

// WithClock sets the clock used for expiry decisions.
func WithClock(c shared.Clock) Option {
	return func(ts *TokenSource) {
		if c != nil {
			ts.clock = c
		}
	}
}

// New creates a [TokenSource] for the given client-credentials pair.
func New(clientID, clientSecret string, opts ...Option) *TokenSource {
	ts := &TokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     DefaultTokenURL,
		client:       &http.Client{Timeout: requestTimeout},
		clock:        shared.SystemClock(),
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// AccessToken returns a valid bearer token, reusing the cached one until five
// seconds before its expiry. A failed refresh leaves the cache untouched and
// surfaces a [*TokenError]; there are no retries.
func (ts *TokenSource) AccessToken(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := ts.clock.Now()
	if ts.token != nil && now.Before(ts.token.Expiry.Add(-safetyMargin)) {
		return ts.token.AccessToken, nil
	}

	token, err := ts.exchange(ctx, now)
	if err != nil {
		return "", err
	}

	ts.token = token
	return token.AccessToken, nil
}

// SetToken seeds the cache. Tests use it to exercise expiry decisions.
func (ts *TokenSource) SetToken(token *oauth2.Token) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.token = token
}

func (ts *TokenSource) exchange(ctx context.Context, now time.Time) (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TokenError{Body: err.Error()}
	}

	credential := base64.StdEncoding.EncodeToString([]byte(ts.clientID + ":" + ts.clientSecret))
	req.Header.Set("Authorization", "Basic "+credential)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.client.Do(req)
	if err != nil {
		return nil, &TokenError{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TokenError{Status: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TokenError{Status: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TokenError{Status: resp.StatusCode, Body: fmt.Sprintf("malformed token response: %v", err)}
	}
	if result.AccessToken == "" {
		return nil, &TokenError{Status: resp.StatusCode, Body: "token response missing access_token"}
	}

	expiresIn := time.Duration(result.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = defaultExpiry
	}

	return &oauth2.Token{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		Expiry:      now.Add(expiresIn),
	}, nil
}
