package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/medrec/internal/handler"
	"github.com/jwalitptl/medrec/internal/policy"
	"github.com/jwalitptl/medrec/internal/service/audit"
	"github.com/jwalitptl/medrec/internal/session"
)

// ActorLoader builds the access-control view of a logged-in user.
type ActorLoader interface {
	Actor(ctx context.Context, userID int64) (policy.Actor, error)
}

type AuthMiddleware struct {
	sessions *session.Manager
	actors   ActorLoader
}

func NewAuthMiddleware(sessions *session.Manager, actors ActorLoader) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		actors:   actors,
	}
}

// LoadSession resolves the session cookie, when present, into the request's
// actor. Stale or forged cookies are cleared and the request continues
// anonymously.
func (m *AuthMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := audit.WithClient(c.Request.Context(), c.ClientIP(), c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)

		token := m.sessions.Token(c)
		if token == "" {
			c.Next()
			return
		}

		s, err := m.sessions.Resolve(ctx, token)
		if err != nil {
			m.sessions.ClearCookie(c)
			c.Next()
			return
		}
		actor, err := m.actors.Actor(ctx, s.UserID)
		if err != nil {
			log.Warn().Err(err).
				Int64("user_id", s.UserID).
				Str("request_id", c.GetString(handler.ContextRequestID)).
				Msg("session user could not be loaded")
			_ = m.sessions.Revoke(ctx, token)
			m.sessions.ClearCookie(c)
			c.Next()
			return
		}

		c.Set(handler.ContextSession, s)
		handler.SetActor(c, actor)
		c.Next()
	}
}

// RequireLogin sends anonymous users to the login page.
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := handler.CurrentActor(c); !ok {
			handler.RedirectToLogin(c)
			return
		}
		c.Next()
	}
}
