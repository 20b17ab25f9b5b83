package domain

import "context"

// CurrentSession is the session id the remote store resolves to the caller's own session
const CurrentSession = "current"

// Account is a remote store user account
type Account struct {
	ID    string `json:"$id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is an authenticated remote store session
type Session struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Secret string `json:"secret,omitempty"`
}

// UserProfile merges an account with its profile document in the users collection
type UserProfile struct {
	UserID     string `json:"userId"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	AvatarURL  string `json:"avatarUrl"`
	DocumentID string `json:"documentId,omitempty"`
}

type sessionKey struct{}

// ContextWithSession attaches a session secret that remote store calls will act under
func ContextWithSession(ctx context.Context, secret string) context.Context {
	return context.WithValue(ctx, sessionKey{}, secret)
}

// SessionFromContext returns the session secret attached to ctx, if any
func SessionFromContext(ctx context.Context) string {
	secret, _ := ctx.Value(sessionKey{}).(string)
	return secret
}
