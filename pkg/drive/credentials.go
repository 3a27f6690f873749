package drive

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/satchelhq/satchel/pkg/core"
)

// Credentials caches the bearer credential handed out by an external
// provider and refreshes it when it expires. A successful refresh
// replaces the cached credential atomically; a failed refresh clears it
// so the next call starts over instead of looping on a dead token.
type Credentials struct {
	mu     sync.Mutex
	source core.CredentialSource
	cached core.Credential
	now    func() time.Time
}

// NewCredentials wraps a provider with caching and refresh behavior.
func NewCredentials(source core.CredentialSource) *Credentials {
	return &Credentials{source: source, now: time.Now}
}

// Token returns a bearer token valid at the time of the call, following
// the cached-then-provider-then-refresh ladder. The returned error wraps
// core.ErrUnauthenticated when every rung fails.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.cached.Valid(now) {
		return c.cached.Token, nil
	}

	cred, err := c.source.Credential(ctx)
	if err == nil {
		cred = withInferredExpiry(cred)
		if cred.Valid(now) {
			c.cached = cred
			return cred.Token, nil
		}
	}

	cred, err = c.source.Refresh(ctx)
	if err != nil {
		c.cached = core.Credential{}
		return "", fmt.Errorf("credential refresh failed: %v: %w", err, core.ErrUnauthenticated)
	}
	cred = withInferredExpiry(cred)
	if !cred.Valid(now) {
		c.cached = core.Credential{}
		return "", fmt.Errorf("refresh returned an unusable credential: %w", core.ErrUnauthenticated)
	}
	c.cached = cred
	return cred.Token, nil
}

// Invalidate drops the cached credential, forcing the next Token call to
// go back to the provider. Called when the remote rejects a request with
// 401 despite a locally-unexpired token.
func (c *Credentials) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = core.Credential{}
}

// withInferredExpiry fills a missing expiry from the token's JWT exp
// claim, when the token happens to be a JWT. Signature verification is
// not our job here; only the expiry hint matters.
func withInferredExpiry(cred core.Credential) core.Credential {
	if cred.Token == "" || !cred.ExpiresAt.IsZero() {
		return cred
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(cred.Token, claims); err != nil {
		return cred
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		cred.ExpiresAt = exp.Time
	}
	return cred
}

// StaticSource is a CredentialSource for setups where a long-lived token
// is supplied out of band (config file, environment). Refresh simply
// re-validates the same token.
type StaticSource struct {
	Token string
}

func (s StaticSource) Credential(ctx context.Context) (core.Credential, error) {
	return core.Credential{Token: s.Token}, nil
}

func (s StaticSource) Refresh(ctx context.Context) (core.Credential, error) {
	if s.Token == "" {
		return core.Credential{}, fmt.Errorf("no token configured")
	}
	return core.Credential{Token: s.Token}, nil
}
