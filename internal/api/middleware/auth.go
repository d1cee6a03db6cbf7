package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mintsim/arena-api/internal/api/handler/v1/response"
	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/service"
)

const (
	HeaderUserID = "X-User-ID"

	identityKey = "identity"
)

var errMalformedAuthorization = errors.New("authorization header must be 'Bearer <token>'")

type IdentityResolver interface {
	Resolve(ctx context.Context, sources ...domain.IdentitySource) (domain.Identity, error)
}

type AdminAuthorizer interface {
	RequireAdmin(ctx context.Context, identity domain.Identity) error
}

type Authenticator struct {
	resolver IdentityResolver
}

func NewAuthenticator(resolver IdentityResolver) *Authenticator {
	return &Authenticator{
		resolver: resolver,
	}
}

// RequireIdentity resolves the caller from the Authorization and X-User-ID headers
// and stores it on the context. Requests without a usable credential stop here with 401.
func (a *Authenticator) RequireIdentity() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sources, err := sourcesFromRequest(ctx)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthenticated(err))
			return
		}

		identity, err := a.resolver.Resolve(ctx.Request.Context(), sources...)
		if err != nil {
			response.RenderErr(ctx, identityErr(err))
			return
		}

		ctx.Set(identityKey, identity)
		ctx.Next()
	}
}

// RequireAdmin must run after RequireIdentity.
func (a *Authenticator) RequireAdmin(authorizer AdminAuthorizer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity, ok := IdentityFrom(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthenticated(service.ErrUnauthenticated))
			return
		}

		if err := authorizer.RequireAdmin(ctx.Request.Context(), identity); err != nil {
			if errors.Is(err, service.ErrForbidden) {
				response.RenderErr(ctx, response.ErrPermissionDenied(errors.New("admin access required")))
				return
			}

			response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("authorizer.RequireAdmin -> %w", err)))
			return
		}

		ctx.Next()
	}
}

func IdentityFrom(ctx *gin.Context) (domain.Identity, bool) {
	v, ok := ctx.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)

	return identity, ok
}

func sourcesFromRequest(ctx *gin.Context) ([]domain.IdentitySource, error) {
	var sources []domain.IdentitySource

	if header := strings.TrimSpace(ctx.GetHeader("Authorization")); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return nil, errMalformedAuthorization
		}
		sources = append(sources, domain.VerifiedSource{Token: token})
	}

	if userID := strings.TrimSpace(ctx.GetHeader(HeaderUserID)); userID != "" {
		sources = append(sources, domain.LegacyHeaderSource{UserID: userID})
	}

	return sources, nil
}

func identityErr(err error) *response.Err {
	switch {
	case errors.Is(err, service.ErrCredentialExpired):
		return response.ErrUnauthenticated(service.ErrCredentialExpired)
	case errors.Is(err, service.ErrInvalidCredential):
		return response.ErrUnauthenticated(service.ErrInvalidCredential)
	case errors.Is(err, service.ErrIdentityMismatch):
		return response.ErrUnauthenticated(service.ErrIdentityMismatch)
	case errors.Is(err, service.ErrUnauthenticated):
		return response.ErrUnauthenticated(service.ErrUnauthenticated)
	default:
		return response.ErrInternalServerError(fmt.Errorf("resolver.Resolve -> %w", err))
	}
}
