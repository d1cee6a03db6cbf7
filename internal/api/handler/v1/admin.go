package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mintsim/arena-api/internal/api/handler/v1/request"
	"github.com/mintsim/arena-api/internal/api/handler/v1/response"
	"github.com/mintsim/arena-api/internal/domain"
)

type AdminLinkService interface {
	Issue(ctx context.Context, eventCode, adminUserID string) (domain.AdminLink, error)
	Verify(eventCode, token string) (domain.AdminLinkClaims, error)
}

type AdminChecker interface {
	IsAdmin(ctx context.Context, identity domain.Identity) (bool, error)
}

type AdminHandler struct {
	links  AdminLinkService
	admins AdminChecker
}

func NewAdminHandler(links AdminLinkService, admins AdminChecker) *AdminHandler {
	return &AdminHandler{
		links:  links,
		admins: admins,
	}
}

// HandleMe godoc
// @Summary      Who am I
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.AdminMeResponse
// @Failure      401  {object}  response.Err
// @Router       /admin/me [get]
// @Security BearerAuth
func (h *AdminHandler) HandleMe(ctx *gin.Context) {
	identity, respErr := getIdentityFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	isAdmin, err := h.admins.IsAdmin(ctx.Request.Context(), identity)
	if err != nil {
		renderServiceErr(ctx, "h.admins.IsAdmin", err)
		return
	}

	ctx.JSON(http.StatusOK, response.AdminMeResponse{
		UserID:  identity.UserID,
		Email:   identity.Email,
		IsAdmin: isAdmin,
	})
}

// HandleGetAdminLink godoc
// @Summary      Issue a simulator admin link
// @Description  Only while the event is active or live. The token expires after 15 minutes.
// @Tags         admin
// @Produce      json
// @Param        code  path      string  true  "event code"
// @Success      200   {object}  domain.AdminLink
// @Failure      404   {object}  response.Err
// @Failure      409   {object}  response.Err
// @Router       /admin/events/{code}/sim-admin-link [get]
// @Security BearerAuth
func (h *AdminHandler) HandleGetAdminLink(ctx *gin.Context) {
	h.issue(ctx, ctx.Param("code"))
}

// HandleCreateAdminLink godoc
// @Summary      Issue a simulator admin link
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.AdminLinkRequest  true  "request body"
// @Success      200      {object}  domain.AdminLink
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/sim-admin-link [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateAdminLink(ctx *gin.Context) {
	var req request.AdminLinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	h.issue(ctx, req.EventCode)
}

func (h *AdminHandler) issue(ctx *gin.Context, eventCode string) {
	identity, respErr := getIdentityFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	link, err := h.links.Issue(ctx.Request.Context(), eventCode, identity.UserID)
	if err != nil {
		renderServiceErr(ctx, "h.links.Issue", err)
		return
	}

	ctx.JSON(http.StatusOK, link)
}

// HandleValidateToken godoc
// @Summary      Validate a simulator admin token
// @Description  Called by the simulator admin console. The token itself is the credential.
// @Tags         admin
// @Produce      json
// @Param        event_code   query     string  true  "event code"
// @Param        admin_token  query     string  true  "admin token"
// @Success      200          {object}  response.ValidateTokenResponse
// @Failure      400          {object}  response.Err
// @Failure      401          {object}  response.Err
// @Router       /admin/validate-token [get]
func (h *AdminHandler) HandleValidateToken(ctx *gin.Context) {
	var query request.ValidateTokenQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := query.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	claims, err := h.links.Verify(query.EventCode, query.AdminToken)
	if err != nil {
		renderServiceErr(ctx, "h.links.Verify", err)
		return
	}

	ctx.JSON(http.StatusOK, response.ValidateTokenResponse{
		Valid:       true,
		EventCode:   claims.EventCode,
		AdminUserID: claims.AdminUserID,
	})
}
