package v1

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/mintsim/arena-api/internal/api/handler/v1/response"
	"github.com/mintsim/arena-api/internal/api/middleware"
	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/service"
)

var errMissingIdentity = errors.New("authentication required")

// renderServiceErr maps a service error to its response. op names the failing call for the log.
func renderServiceErr(ctx *gin.Context, op string, err error) {
	var stateErr *service.StateError

	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound(service.ErrEventNotFound))
	case errors.Is(err, service.ErrRunNotFound):
		response.RenderErr(ctx, response.ErrNotFound(service.ErrRunNotFound))
	case errors.Is(err, service.ErrForbidden):
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrForbidden))
	case errors.Is(err, service.ErrEventCodeExists):
		response.RenderErr(ctx, response.ErrConflict(service.ErrEventCodeExists))
	case errors.Is(err, service.ErrResultAlreadySubmitted):
		response.RenderErr(ctx, response.ErrConflict(service.ErrResultAlreadySubmitted))
	case errors.As(err, &stateErr):
		response.RenderErr(ctx, response.ErrConflict(stateErr))
	case errors.Is(err, service.ErrInvalidTransition):
		response.RenderErr(ctx, response.ErrConflict(err))
	case errors.Is(err, service.ErrTransitionContention):
		response.RenderErr(ctx, response.ErrConflict(service.ErrTransitionContention))
	case errors.Is(err, service.ErrInvalidAction), errors.Is(err, service.ErrInvalidState):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrTokenExpired):
		response.RenderErr(ctx, response.ErrToken(response.KindTokenExpired, service.ErrTokenExpired))
	case errors.Is(err, service.ErrTokenEventMismatch):
		response.RenderErr(ctx, response.ErrToken(response.KindTokenEventMismatch, service.ErrTokenEventMismatch))
	case errors.Is(err, service.ErrTokenInvalid):
		response.RenderErr(ctx, response.ErrToken(response.KindTokenInvalid, service.ErrTokenInvalid))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}

func getIdentityFromContext(ctx *gin.Context) (domain.Identity, *response.Err) {
	identity, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return domain.Identity{}, response.ErrUnauthenticated(errMissingIdentity)
	}

	return identity, nil
}
