// Package identity is the gateway to the external identity provider. The
// rest of the service consumes only the resolved Principal; token parsing
// and credential revocation stay behind the Provider interface.
package identity

import (
	"context"
	"errors"
	"sync"
)

// Principal is the trusted identity of a request's caller, produced by a
// Provider from a verified bearer credential.
type Principal struct {
	UID   string
	Email string
}

// ErrUnauthenticated reports a missing, malformed, expired or revoked
// credential.
var ErrUnauthenticated = errors.New("identity: invalid credential")

// Provider verifies bearer credentials and revokes a user's outstanding
// credentials.
type Provider interface {
	// Verify resolves a raw bearer credential into a Principal.
	Verify(ctx context.Context, credential string) (Principal, error)

	// Revoke invalidates every credential previously issued to uid.
	// Credentials minted after the call verify normally again.
	Revoke(ctx context.Context, uid string) error
}

var (
	defaultOnce     sync.Once
	defaultProvider Provider
)

// Configure installs the process-wide provider handle. The first call
// wins; later calls are no-ops, making init idempotent.
func Configure(p Provider) {
	defaultOnce.Do(func() { defaultProvider = p })
}

// Default returns the process-wide provider, or nil before Configure.
func Default() Provider {
	return defaultProvider
}
