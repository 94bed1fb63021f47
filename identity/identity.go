// Package identity resolves the acting user for audit stamping.
package identity

import "context"

// Provider reports the identifier of the current acting user. An empty string
// means no actor is known; stamping treats that as "no actor", never as an
// error.
type Provider interface {
	CurrentUserID(ctx context.Context) string
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context) string

func (f ProviderFunc) CurrentUserID(ctx context.Context) string { return f(ctx) }

// Static returns a Provider that always reports the given actor id. Useful
// for background jobs and tests.
func Static(id string) Provider {
	return ProviderFunc(func(context.Context) string { return id })
}

type userIDKey struct{}

// WithUserID stores the acting user on the context for the Context provider.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// Context returns a Provider that reads the acting user from the request
// context, as stored by WithUserID.
func Context() Provider {
	return ProviderFunc(func(ctx context.Context) string {
		id, _ := ctx.Value(userIDKey{}).(string)
		return id
	})
}
