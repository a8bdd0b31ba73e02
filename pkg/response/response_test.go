package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/segyhp/rental-engine/pkg/errors"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", customError.WrapValidation("bad"), http.StatusBadRequest},
		{"unauthorized", customError.WrapUnauthorized(), http.StatusUnauthorized},
		{"forbidden", customError.WrapForbidden("no"), http.StatusForbidden},
		{"rental not found", customError.WrapRentalNotFound("x"), http.StatusNotFound},
		{"chat not found", customError.WrapChatNotFound(1), http.StatusNotFound},
		{"listing not found", customError.WrapListingNotFound(1), http.StatusNotFound},
		{"invalid transition", customError.WrapInvalidTransition("later"), http.StatusConflict},
		{"already active", customError.WrapRentalAlreadyActive(1), http.StatusConflict},
		{"verification failed", customError.WrapVerificationFailed("wrong"), http.StatusUnprocessableEntity},
		{"database", customError.WrapDatabaseError(errors.New("down")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestFromError(t *testing.T) {
	t.Run("BusinessError", func(t *testing.T) {
		w := httptest.NewRecorder()
		FromError(w, customError.WrapVerificationFailed("return code does not match"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, customError.ErrCodeVerificationFailed, body.Code)
		assert.Equal(t, "return code does not match", body.Message)
	})

	t.Run("StatusAndCodePerKind", func(t *testing.T) {
		tests := []struct {
			err      error
			wantCode int
			wantErr  string
		}{
			{customError.WrapValidation("bad date"), http.StatusBadRequest, customError.ErrCodeValidation},
			{customError.WrapUnauthorized(), http.StatusUnauthorized, customError.ErrCodeUnauthorized},
			{customError.WrapForbidden("not yours"), http.StatusForbidden, customError.ErrCodeForbidden},
			{customError.WrapRentalNotFound("x"), http.StatusNotFound, customError.ErrCodeRentalNotFound},
			{customError.WrapRentalAlreadyActive(11), http.StatusConflict, customError.ErrCodeRentalAlreadyActive},
			{customError.WrapVerificationFailed("wrong"), http.StatusUnprocessableEntity, customError.ErrCodeVerificationFailed},
		}

		for _, tt := range tests {
			w := httptest.NewRecorder()
			FromError(w, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantErr, body.Code)
			assert.Equal(t, customError.MessageOf(tt.err), body.Message)
		}
	})

	t.Run("InternalDetailHidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		FromError(w, customError.WrapDatabaseError(errors.New("password authentication failed")))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
		assert.Contains(t, w.Body.String(), customError.ErrCodeDatabaseError)
	})
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body, "data")
	assert.Nil(t, body["data"])
}

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := LoggingMiddleware(CORSMiddleware(next))

	t.Run("Preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/rentals", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-User-ID")
	})

	t.Run("PassThrough", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/rentals/1", nil))

		assert.Equal(t, http.StatusTeapot, w.Code)
	})
}
