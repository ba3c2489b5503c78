package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// hmacClaims is the claim set the provider expects: the registered
// subject carries the uid and email rides alongside.
type hmacClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// HMACProvider verifies HS256 tokens minted with a shared secret. It
// stands in for a hosted identity provider: the issuing side holds the
// same secret, and revocation is modeled as a per-uid cutoff so tokens
// minted before a Revoke call no longer verify.
type HMACProvider struct {
	secret []byte

	mu        sync.RWMutex
	revokedAt map[string]time.Time
}

func NewHMACProvider(secret []byte) *HMACProvider {
	return &HMACProvider{
		secret:    secret,
		revokedAt: make(map[string]time.Time),
	}
}

func (p *HMACProvider) Verify(ctx context.Context, credential string) (Principal, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Principal{}, ErrUnauthenticated
	}

	var claims hmacClaims
	_, err := jwt.ParseWithClaims(credential, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return p.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	uid := claims.Subject
	if uid == "" || claims.Email == "" {
		return Principal{}, ErrUnauthenticated
	}

	p.mu.RLock()
	cutoff, revoked := p.revokedAt[uid]
	p.mu.RUnlock()
	if revoked {
		if claims.IssuedAt == nil || !claims.IssuedAt.Time.After(cutoff) {
			return Principal{}, ErrUnauthenticated
		}
	}

	return Principal{UID: uid, Email: claims.Email}, nil
}

func (p *HMACProvider) Revoke(ctx context.Context, uid string) error {
	if uid == "" {
		return fmt.Errorf("identity: revoke requires a uid")
	}

	p.mu.Lock()
	p.revokedAt[uid] = time.Now()
	p.mu.Unlock()
	return nil
}

// Mint issues a signed credential for uid/email. Used by the token
// issuing side and by tests.
func (p *HMACProvider) Mint(uid, email string, ttl time.Duration) (string, error) {
	return p.MintAt(uid, email, time.Now(), ttl)
}

// MintAt is Mint with an explicit issue time, for revocation tests.
func (p *HMACProvider) MintAt(uid, email string, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := hmacClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("identity: signing credential: %w", err)
	}
	return signed, nil
}
