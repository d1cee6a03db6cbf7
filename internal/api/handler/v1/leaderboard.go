package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mintsim/arena-api/internal/api/handler/v1/request"
	"github.com/mintsim/arena-api/internal/api/handler/v1/response"
	"github.com/mintsim/arena-api/internal/domain"
)

type LeaderboardService interface {
	Rank(ctx context.Context, eventCode string, limit int) ([]domain.LeaderboardEntry, error)
}

type LeaderboardHandler struct {
	svc LeaderboardService
}

func NewLeaderboardHandler(svc LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		svc: svc,
	}
}

// HandleGetLeaderboard godoc
// @Summary      Leaderboard of an event
// @Description  Ranked by score, then pnl, then submission time. At most 50 entries.
// @Tags         events
// @Produce      json
// @Param        code   path      string  true   "event code"
// @Param        limit  query     int     false  "max entries (default and cap 50)"
// @Success      200    {object}  response.LeaderboardResponse
// @Failure      404    {object}  response.Err
// @Router       /events/{code}/leaderboard [get]
func (h *LeaderboardHandler) HandleGetLeaderboard(ctx *gin.Context) {
	var query request.LeaderboardQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	code := ctx.Param("code")
	entries, err := h.svc.Rank(ctx.Request.Context(), code, query.Limit)
	if err != nil {
		renderServiceErr(ctx, "h.svc.Rank", err)
		return
	}

	ctx.JSON(http.StatusOK, response.LeaderboardResponse{EventCode: code, Leaderboard: entries})
}
