package types

import "context"

type invocationContextKey string

// InvocationContextKey carries free-form key/value pairs (tenant, user,
// environment) alongside an invocation.
var InvocationContextKey = invocationContextKey("invocation-context")

// EnsureInvocationContext makes sure the context carries a mutable value map
// and applies the supplied key/value pairs.
func EnsureInvocationContext(ctx context.Context, pairs ...string) context.Context {
	v := ctx.Value(InvocationContextKey)
	if v == nil {
		ctx = context.WithValue(ctx, InvocationContextKey, map[string]any{})
	}
	values := ctx.Value(InvocationContextKey).(map[string]any)
	for i := 0; i+1 < len(pairs); i += 2 {
		values[pairs[i]] = pairs[i+1]
	}
	return ctx
}
