package response

import (
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	KindUnauthenticated    = "unauthenticated"
	KindForbidden          = "forbidden"
	KindNotFound           = "not_found"
	KindConflict           = "conflict"
	KindValidationFailed   = "validation_failed"
	KindTokenInvalid       = "token_invalid"
	KindTokenExpired       = "token_expired"
	KindTokenEventMismatch = "token_event_mismatch"
	KindInternal           = "internal"
)

// Err is the body of every error response.
type Err struct {
	Err        error  `json:"-"`
	StatusCode int    `json:"-"`
	Kind       string `json:"error"`
	Message    string `json:"message"`
}

func (e *Err) Error() string {
	return e.Message
}

// RenderErr aborts the request with e. Server-side failures are logged with the request id;
// the client only sees a generic message for those.
func RenderErr(ctx *gin.Context, e *Err) {
	if e.StatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("route", ctx.FullPath()),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.StatusCode, e)
}

func newErr(status int, kind string, err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: status,
		Kind:       kind,
		Message:    err.Error(),
	}
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, KindValidationFailed, err)
}

func ErrUnauthenticated(err error) *Err {
	return newErr(http.StatusUnauthorized, KindUnauthenticated, err)
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, KindForbidden, err)
}

func ErrNotFound(err error) *Err {
	return newErr(http.StatusNotFound, KindNotFound, err)
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, KindConflict, err)
}

// ErrToken rejects an admin link token. kind is one of the KindToken* values.
func ErrToken(kind string, err error) *Err {
	return newErr(http.StatusUnauthorized, kind, err)
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusInternalServerError,
		Kind:       KindInternal,
		Message:    "internal server error",
	}
}
