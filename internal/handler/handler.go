package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medrec/internal/policy"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

// Context keys shared by the middleware and the views.
const (
	ContextRequestID = "request_id"
	ContextActor     = "actor"
	ContextSession   = "session"
)

func SetActor(c *gin.Context, actor policy.Actor) {
	c.Set(ContextActor, actor)
}

// CurrentActor returns the logged-in actor, if any.
func CurrentActor(c *gin.Context) (policy.Actor, bool) {
	v, ok := c.Get(ContextActor)
	if !ok {
		return policy.Actor{}, false
	}
	actor, ok := v.(policy.Actor)
	return actor, ok && actor.User != nil
}

// MustActor is for views behind the login middleware.
func MustActor(c *gin.Context) policy.Actor {
	actor, _ := CurrentActor(c)
	return actor
}

// ParamID reads an integer path parameter. Non-numeric ids do not match
// any route, so they are reported as not found.
func ParamID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NotFound("page", err)
	}
	return id, nil
}
