package httpx

import (
	"context"

	"github.com/tetherchat/tether/pkg/identity"
)

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

// ContextWithPrincipal attaches the authenticated principal to ctx.
func ContextWithPrincipal(ctx context.Context, p identity.Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (identity.Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(identity.Principal)
	return p, ok
}
