package auth

import (
	"context"
	"net/http"

	"github.com/sakif/citewall/internal/model"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the actor value.
type contextKey string

const actorKey contextKey = "actor"

// CookieName is the HttpOnly cookie carrying the session token.
const CookieName = "accessToken"

// RequireAuth enforces authentication on protected routes. It reads the JWT
// from the session cookie, validates it, and stores the actor in the request
// context. Missing or invalid tokens end the request with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := extractActor(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole layers a role check on top of RequireAuth: mount it inside a
// group already protected by RequireAuth. An authenticated actor without the
// role gets 403.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || actor.Role != role {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"forbidden","message":"insufficient role"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OptionalAuth extracts the actor when a valid token is present but never
// blocks the request. Public read routes use it so logged-in readers are
// still identified.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor, err := extractActor(r, tokens); err == nil && actor.ID != "" {
				r = r.WithContext(context.WithValue(r.Context(), actorKey, actor))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActorFromContext retrieves the authenticated actor from the request
// context. Returns ok=false for anonymous requests.
func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(model.Actor)
	return actor, ok && actor.ID != ""
}

func extractActor(r *http.Request, tokens *TokenService) (model.Actor, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return model.Actor{}, err
	}
	return tokens.Validate(cookie.Value)
}
