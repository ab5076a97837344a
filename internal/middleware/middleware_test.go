package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medrec/internal/handler"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
	"github.com/jwalitptl/medrec/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type actorFunc func(ctx context.Context, userID int64) (policy.Actor, error)

func (f actorFunc) Actor(ctx context.Context, userID int64) (policy.Actor, error) {
	return f(ctx, userID)
}

func newSessions() *session.Manager {
	return session.NewManager(session.NewMemoryStore(time.Minute), session.Options{
		Secret:      "0123456789abcdef0123456789abcdef",
		TTL:         time.Hour,
		RememberTTL: 24 * time.Hour,
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(handler.ContextRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderXRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())

	for _, bad := range []string{"a b", "id\nforged=1", strings.Repeat("a", 65)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderXRequestID, bad)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.NotEqual(t, bad, w.Body.String())
		assert.NotEmpty(t, w.Body.String())
	}
}

func TestAuthMiddleware(t *testing.T) {
	sessions := newSessions()
	user := &model.User{ID: 7, Username: "doc", Role: model.RoleDoctor, IsActive: true}
	loaded := 0
	m := NewAuthMiddleware(sessions, actorFunc(func(_ context.Context, id int64) (policy.Actor, error) {
		loaded++
		if id != user.ID {
			return policy.Actor{}, errors.New("unknown user")
		}
		return policy.Actor{User: user}, nil
	}))

	r := gin.New()
	r.Use(m.LoadSession())
	r.GET("/public/", func(c *gin.Context) {
		_, ok := handler.CurrentActor(c)
		c.JSON(http.StatusOK, gin.H{"logged_in": ok})
	})
	r.GET("/private/", m.RequireLogin(), func(c *gin.Context) {
		c.String(http.StatusOK, handler.MustActor(c).User.Username)
	})

	t.Run("anonymous is redirected to login", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private/", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login/?next=%2Fprivate%2F", w.Header().Get("Location"))
	})

	t.Run("valid session loads actor", func(t *testing.T) {
		token, _, err := sessions.Issue(context.Background(), user, false)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/private/", nil)
		req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: token})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "doc", w.Body.String())
	})

	t.Run("forged cookie is cleared", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public/", nil)
		req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "not-a-token"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"logged_in":false}`, w.Body.String())
		assert.Contains(t, w.Header().Get("Set-Cookie"), session.DefaultCookieName+"=;")
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 2})
	r := gin.New()
	r.POST("/login/", rl.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodPost, "/login/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.POST("/", SizeLimit(8), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("much too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	t.Run("plain http", func(t *testing.T) {
		r := gin.New()
		r.Use(SecurityHeaders(DefaultPageHeaders()))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		assert.Equal(t, "same-origin", w.Header().Get("Referrer-Policy"))
		assert.Contains(t, w.Header().Get("Content-Security-Policy"), "form-action 'self'")
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("tls sessions", func(t *testing.T) {
		cfg := DefaultPageHeaders()
		cfg.HSTS = true
		r := gin.New()
		r.Use(SecurityHeaders(cfg))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	})
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"template":"500.html"`)
}

func TestRecovery_SignedIn(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), func(c *gin.Context) {
		handler.SetActor(c, policy.Actor{User: &model.User{ID: 4, Role: model.RoleDoctor}})
	})
	r.GET("/", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
