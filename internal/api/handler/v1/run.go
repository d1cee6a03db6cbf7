package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mintsim/arena-api/internal/api/handler/v1/request"
	"github.com/mintsim/arena-api/internal/api/handler/v1/response"
	"github.com/mintsim/arena-api/internal/domain"
)

type RunService interface {
	CreateRun(ctx context.Context, eventCode string, identity domain.Identity) (domain.RunLaunch, error)
	SubmitResult(ctx context.Context, identity domain.Identity, submission domain.Submission) (domain.Result, error)
	GetRunDetail(ctx context.Context, identity domain.Identity, runID string) (domain.RunDetail, error)
	GetHistory(ctx context.Context, userID string) ([]domain.RunHistoryEntry, error)
}

type RunHandler struct {
	svc RunService
}

func NewRunHandler(svc RunService) *RunHandler {
	return &RunHandler{
		svc: svc,
	}
}

// HandleCreateRun godoc
// @Summary      Start a run in an event
// @Tags         runs
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateRunRequest  true  "request body"
// @Success      201      {object}  domain.RunLaunch
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /runs/create [post]
// @Security BearerAuth
func (h *RunHandler) HandleCreateRun(ctx *gin.Context) {
	identity, respErr := getIdentityFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateRunRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	launch, err := h.svc.CreateRun(ctx.Request.Context(), req.EventCode, identity)
	if err != nil {
		renderServiceErr(ctx, "h.svc.CreateRun", err)
		return
	}

	ctx.JSON(http.StatusCreated, launch)
}

// HandleSubmitResult godoc
// @Summary      Submit the final result of a run
// @Tags         runs
// @Accept       json
// @Produce      json
// @Param        request  body      request.SubmitResultRequest  true  "request body"
// @Success      201      {object}  response.SubmitResultResponse
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /runs/submit [post]
// @Security BearerAuth
func (h *RunHandler) HandleSubmitResult(ctx *gin.Context) {
	identity, respErr := getIdentityFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SubmitResultRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.SubmitResult(ctx.Request.Context(), identity, domain.Submission{
		RunID:       req.RunID,
		Score:       *req.Score,
		PnL:         req.PnL,
		Sharpe:      req.Sharpe,
		MaxDrawdown: req.MaxDrawdown,
		WinRate:     req.WinRate,
		Extra:       req.Extra,
	})
	if err != nil {
		renderServiceErr(ctx, "h.svc.SubmitResult", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.SubmitResultResponse{OK: true, Result: result})
}

// HandleGetHistory godoc
// @Summary      List the caller's runs
// @Tags         runs
// @Produce      json
// @Success      200  {object}  response.RunHistoryResponse
// @Failure      401  {object}  response.Err
// @Router       /runs/history [get]
// @Security BearerAuth
func (h *RunHandler) HandleGetHistory(ctx *gin.Context) {
	identity, respErr := getIdentityFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	history, err := h.svc.GetHistory(ctx.Request.Context(), identity.UserID)
	if err != nil {
		renderServiceErr(ctx, "h.svc.GetHistory", err)
		return
	}

	ctx.JSON(http.StatusOK, response.RunHistoryResponse{Runs: history})
}

// HandleGetRun godoc
// @Summary      Get a run with its event and result
// @Tags         runs
// @Produce      json
// @Param        runID  path      string  true  "run id"
// @Success      200    {object}  domain.RunDetail
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Router       /runs/{runID} [get]
// @Security BearerAuth
func (h *RunHandler) HandleGetRun(ctx *gin.Context) {
	identity, respErr := getIdentityFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	detail, err := h.svc.GetRunDetail(ctx.Request.Context(), identity, ctx.Param("runID"))
	if err != nil {
		renderServiceErr(ctx, "h.svc.GetRunDetail", err)
		return
	}

	ctx.JSON(http.StatusOK, detail)
}
