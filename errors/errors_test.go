package errors_test

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "analytics-service/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	r.GET("/", handler)
	return r
}

func TestErrorMiddleware_AppError(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {
		_ = c.Error(apperrors.ErrValidation.Wrap(stderrors.New("cart_key is required")))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"code":400,"message":"Validation error"}`, w.Body.String())
}

func TestErrorMiddleware_PlainErrorIs500(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {
		_ = c.Error(stderrors.New("boom"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, apperrors.ErrInternalServer.Err, "shared error value is not mutated")
}

func TestErrorMiddleware_WrittenResponseKept(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {
		_ = c.Error(stderrors.New("logged only"))
		c.Status(http.StatusNoContent)
		c.Writer.WriteHeaderNow()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("cause")
	err := apperrors.ErrValidation.Wrap(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Validation error: cause", err.Error())
}

func TestSentinels_StatusCodes(t *testing.T) {
	tests := []struct {
		err  *apperrors.Error
		code int
	}{
		{apperrors.ErrBadRequest, http.StatusBadRequest},
		{apperrors.ErrValidation, http.StatusBadRequest},
		{apperrors.ErrRateLimited, http.StatusTooManyRequests},
		{apperrors.ErrInternalServer, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code, tt.err.Message)
		assert.Nil(t, tt.err.Err)
	}
}
