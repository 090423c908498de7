package shared

import "context"

type sessionContextKey struct{}
type principalContextKey struct{}

// Roles recognised by the application.
const (
	RoleAdmin    = "admin"
	RoleReadonly = "readonly"
)

// Principal is the signed-in user as seen by handlers and templates.
type Principal struct {
	ID    int64
	Email string
	Name  string
	Role  string
}

// IsAdmin reports whether the principal may change data.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithPrincipal stores the signed-in user in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the signed-in user or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// ActorID returns the signed-in user's id, zero for background work.
func ActorID(ctx context.Context) int64 {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.ID
	}
	return 0
}
