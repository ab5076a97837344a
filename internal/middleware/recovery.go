package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/medrec/internal/handler"
)

// Recovery turns a panic into the 500 page. The log line names the signed-in
// user and role when the panic happened behind RequireLogin.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			event := log.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("route", c.FullPath()).
				Str("method", c.Request.Method).
				Str("request_id", c.GetString(handler.ContextRequestID))
			if actor, ok := handler.CurrentActor(c); ok && actor.User != nil {
				event = event.Int64("user_id", actor.User.ID).Str("role", string(actor.User.Role))
			}
			event.Msg("page handler panicked")

			// Headers may already be out if the panic came mid-render.
			if c.Writer.Written() {
				c.Abort()
				return
			}
			handler.Render(c, http.StatusInternalServerError, "500.html", nil)
			c.Abort()
		}()
		c.Next()
	}
}
