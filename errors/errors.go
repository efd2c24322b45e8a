package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of e carrying err.
func (e *Error) Wrap(err error) *Error {
	return New(e.Code, e.Message, err)
}

var (
	ErrBadRequest     = New(http.StatusBadRequest, "Bad request", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrValidation     = New(http.StatusBadRequest, "Validation error", nil)
	ErrRateLimited    = New(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
)

// ErrorMiddleware renders the last error attached to the gin context.
// Errors that are not *Error become a 500.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *Error
		if !stderrors.As(err, &appErr) {
			appErr = ErrInternalServer.Wrap(err)
		}
		c.AbortWithStatusJSON(appErr.Code, appErr)
	}
}
