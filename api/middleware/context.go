package middleware

import "context"

type contextKey string

const ctxActor contextKey = "admin_actor"

// Actor is the verified caller of an admin route.
type Actor struct {
	Subject string
	Role    string
	Email   string
}

// WithActor stores the authenticated actor on ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ctxActor, actor)
}

// ActorFromContext returns the actor set by Auth, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ctxActor).(Actor)
	return actor, ok
}
