// Package actor carries the authenticated principal of a request on its
// context.Context.
package actor

import (
	"context"
	"strconv"

	"marketplace/internal/models"
)

// Anonymous is the identifier logged for requests without an actor.
const Anonymous = "anonymous"

// Actor is the authenticated principal of the in-flight request.
type Actor struct {
	ID       uint
	Username string
	Role     models.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// Label renders the actor the way audit entries record it: "alice (admin)".
func (a *Actor) Label() string {
	return a.Username + " (" + a.Role.String() + ")"
}

// LogID returns the identifier used in request logs.
func LogID(a *Actor) string {
	if a == nil {
		return Anonymous
	}
	return strconv.FormatUint(uint64(a.ID), 10)
}

type ctxKey struct{}

type requestIDKey struct{}

// NewContext returns a copy of ctx carrying a.
func NewContext(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the actor stored on ctx, if any.
func FromContext(ctx context.Context) (*Actor, bool) {
	if ctx == nil {
		return nil, false
	}
	a, ok := ctx.Value(ctxKey{}).(*Actor)
	return a, ok && a != nil
}

// WithRequestID returns a copy of ctx carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored on ctx, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
