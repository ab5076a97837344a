package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestURL(t *testing.T) {
	assert.Equal(t, "/dashboard/", URL(RouteDashboard))
	assert.Equal(t, "/records/42/", URL(RouteRecordDetail, 42))
	assert.Equal(t, "/patients/7/records/new/", URL(RouteRecordCreate, 7))
	assert.Panics(t, func() { URL(RouteRecordDetail) })
	assert.Panics(t, func() { URL("nope") })
}

func TestFail(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		template string
	}{
		{"validation", apperrors.FieldError("title", "This field is required."), http.StatusBadRequest, "form.html"},
		{"forbidden", apperrors.Forbidden(""), http.StatusForbidden, "403.html"},
		{"not found", apperrors.NotFound("record", nil), http.StatusNotFound, "404.html"},
		{"conflict", apperrors.Conflict("taken", nil), http.StatusConflict, "409.html"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "500.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/x/", nil)

			Fail(c, "form.html", gin.H{"form": "data"}, tt.err)
			assert.Equal(t, tt.status, w.Code)

			var page Page
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
			assert.Equal(t, tt.template, page.Template)
			if tt.status == http.StatusBadRequest {
				assert.Equal(t, "This field is required.", page.Errors["title"])
				assert.Equal(t, "data", page.Context["form"])
			}
		})
	}
}

func TestFail_UnauthorizedRedirectsToLogin(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/records/3/?x=1", nil)

	Fail(c, "", nil, apperrors.Unauthorized(nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/?next=%2Frecords%2F3%2F%3Fx%3D1", w.Header().Get("Location"))
}
