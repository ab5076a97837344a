package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Status(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"not found", NotFound("record", nil), http.StatusNotFound},
		{"validation", FieldError("title", "required"), http.StatusBadRequest},
		{"forbidden", Forbidden(""), http.StatusForbidden},
		{"unauthorized", Unauthorized(nil), http.StatusUnauthorized},
		{"conflict", Conflict("duplicate", nil), http.StatusConflict},
		{"internal", Internal(stderrors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
		})
	}
}

func TestAs_UnwrapsChain(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NotFound("patient", NotFoundErr))

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "patient not found", appErr.Message)
	assert.True(t, Is(wrapped, ErrNotFound))
	assert.ErrorIs(t, wrapped, NotFoundErr)
}

func TestForbidden_DefaultMessage(t *testing.T) {
	assert.Equal(t, "access denied", Forbidden("").Error())
}
