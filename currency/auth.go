package currency

import (
	"context"
	"strings"
)

// DefaultPermission is the capability required to see formatted prices.
const DefaultPermission = "view_pricing"

// Authorizer decides whether the current caller holds a permission.
type Authorizer interface {
	HasPermission(ctx context.Context, permission string) bool
}

// AuthorizerFunc adapts a function to [Authorizer].
type AuthorizerFunc func(ctx context.Context, permission string) bool

// HasPermission implements [Authorizer].
func (f AuthorizerFunc) HasPermission(ctx context.Context, permission string) bool {
	return f(ctx, permission)
}

var (
	// AllowAll grants every permission.
	AllowAll Authorizer = AuthorizerFunc(func(context.Context, string) bool { return true })
	// DenyAll grants nothing.
	DenyAll Authorizer = AuthorizerFunc(func(context.Context, string) bool { return false })
)

// Permissions is a fixed set of granted permission names.
type Permissions map[string]struct{}

// ParsePermissions splits a comma separated list such as "view_pricing, orders".
func ParsePermissions(s string) Permissions {
	p := Permissions{}
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			p[name] = struct{}{}
		}
	}
	return p
}

// HasPermission implements [Authorizer].
func (p Permissions) HasPermission(_ context.Context, permission string) bool {
	_, ok := p[permission]
	return ok
}

type authorizerKey struct{}

// WithAuthorizer returns a copy of ctx carrying a.
func WithAuthorizer(ctx context.Context, a Authorizer) context.Context {
	return context.WithValue(ctx, authorizerKey{}, a)
}

// AuthorizerFrom returns the authorizer stored on ctx. A context without one
// allows everything.
func AuthorizerFrom(ctx context.Context) Authorizer {
	if a, ok := ctx.Value(authorizerKey{}).(Authorizer); ok && a != nil {
		return a
	}
	return AllowAll
}
