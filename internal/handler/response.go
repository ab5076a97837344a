package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/medrec/internal/session"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

// Page is what a view hands to the rendering layer: the template to use,
// its context, pending flash messages and any form errors.
type Page struct {
	Template string            `json:"template"`
	Context  gin.H             `json:"context"`
	Messages []session.Message `json:"messages"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// Render writes the page with status, consuming queued flash messages.
func Render(c *gin.Context, status int, template string, data gin.H) {
	render(c, status, template, data, nil)
}

// RenderForm re-presents a rejected form with its field errors.
func RenderForm(c *gin.Context, template string, data gin.H, errs map[string]string) {
	render(c, http.StatusBadRequest, template, data, errs)
}

func render(c *gin.Context, status int, template string, data gin.H, errs map[string]string) {
	if data == nil {
		data = gin.H{}
	}
	if actor, ok := CurrentActor(c); ok {
		data["user"] = actor.User
	}
	messages := session.Consume(c)
	if messages == nil {
		messages = []session.Message{}
	}
	c.JSON(status, Page{
		Template: template,
		Context:  data,
		Messages: messages,
		Errors:   errs,
	})
}

// Fail translates a service error into the matching page. Validation errors
// re-render template with data; everything else uses the error templates.
func Fail(c *gin.Context, template string, data gin.H, err error) {
	_ = c.Error(err)

	appErr, ok := apperrors.As(err)
	if !ok {
		log.Error().Err(err).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		Render(c, http.StatusInternalServerError, "500.html", nil)
		return
	}

	switch appErr.Code {
	case apperrors.ErrValidation:
		RenderForm(c, template, data, appErr.Fields)
	case apperrors.ErrUnauthorized:
		RedirectToLogin(c)
	case apperrors.ErrForbidden:
		Render(c, http.StatusForbidden, "403.html", gin.H{"detail": appErr.Message})
	case apperrors.ErrNotFound:
		Render(c, http.StatusNotFound, "404.html", gin.H{"detail": appErr.Message})
	case apperrors.ErrBadRequest:
		Render(c, http.StatusBadRequest, "400.html", gin.H{"detail": appErr.Message})
	case apperrors.ErrConflict:
		Render(c, http.StatusConflict, "409.html", gin.H{"detail": appErr.Message})
	default:
		log.Error().Err(err).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		Render(c, http.StatusInternalServerError, "500.html", nil)
	}
}

// Redirect sends a 303 to the named route.
func Redirect(c *gin.Context, name string, args ...int64) {
	c.Redirect(http.StatusSeeOther, URL(name, args...))
}

// RedirectToLogin sends anonymous users to the login page, remembering
// where they were going.
func RedirectToLogin(c *gin.Context) {
	target := URL(RouteLogin) + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, target)
	c.Abort()
}
