package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mintsim/arena-api/internal/api/handler/v1/request"
	"github.com/mintsim/arena-api/internal/api/handler/v1/response"
	"github.com/mintsim/arena-api/internal/domain"
)

type EventService interface {
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	ListPublic(ctx context.Context) ([]domain.Event, error)
	ListAll(ctx context.Context, state domain.EventState) ([]domain.Event, error)
	GetByCode(ctx context.Context, code string) (domain.Event, error)
	Transition(ctx context.Context, code string, action domain.Action) (domain.Event, error)
}

type EventHandler struct {
	svc EventService
}

func NewEventHandler(svc EventService) *EventHandler {
	return &EventHandler{
		svc: svc,
	}
}

// HandleListPublic godoc
// @Summary      List public events
// @Description  Active, live or paused events that have not ended, newest first
// @Tags         events
// @Produce      json
// @Success      200  {object}  response.EventsResponse
// @Failure      500  {object}  response.Err
// @Router       /events/public [get]
func (h *EventHandler) HandleListPublic(ctx *gin.Context) {
	events, err := h.svc.ListPublic(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "h.svc.ListPublic", err)
		return
	}

	ctx.JSON(http.StatusOK, response.EventsResponse{Events: events})
}

// HandleGetEvent godoc
// @Summary      Get an event by code
// @Tags         events
// @Produce      json
// @Param        code  path      string  true  "event code"
// @Success      200   {object}  response.EventResponse
// @Failure      404   {object}  response.Err
// @Router       /events/{code} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	event, err := h.svc.GetByCode(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		renderServiceErr(ctx, "h.svc.GetByCode", err)
		return
	}

	ctx.JSON(http.StatusOK, response.EventResponse{Event: event})
}

// HandleListEvents godoc
// @Summary      List all events
// @Tags         admin
// @Produce      json
// @Param        state  query     string  false  "filter by state"
// @Success      200    {object}  response.EventsResponse
// @Failure      400    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Router       /admin/events [get]
// @Security BearerAuth
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	var query request.ListEventsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var state domain.EventState
	if query.State != "" {
		parsed, err := domain.ParseState(query.State)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		state = parsed
	}

	events, err := h.svc.ListAll(ctx.Request.Context(), state)
	if err != nil {
		renderServiceErr(ctx, "h.svc.ListAll", err)
		return
	}

	ctx.JSON(http.StatusOK, response.EventsResponse{Events: events})
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateEventRequest  true  "request body"
// @Success      201      {object}  response.EventResponse
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/events [post]
// @Security BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event := domain.Event{
		Code:       req.Code,
		Name:       req.Name,
		ScenarioID: req.ScenarioID,
		SimURL:     req.SimURL,
	}
	if req.DurationMinutes != nil {
		event.DurationMinutes = *req.DurationMinutes
	}

	created, err := h.svc.CreateEvent(ctx.Request.Context(), event)
	if err != nil {
		renderServiceErr(ctx, "h.svc.CreateEvent", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.EventResponse{Event: created})
}

// HandleTransition godoc
// @Summary      Change an event's state
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        code     path      string                     true  "event code"
// @Param        request  body      request.TransitionRequest  true  "start, pause, resume or end"
// @Success      200      {object}  response.EventResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/events/{code}/state [post]
// @Security BearerAuth
func (h *EventHandler) HandleTransition(ctx *gin.Context) {
	var req request.TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	action, err := domain.ParseAction(req.Action)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	h.transition(ctx, action)
}

// HandleAction serves the per-action routes (/start, /pause, /resume, /end).
// @Summary      Start, pause, resume or end an event
// @Tags         admin
// @Produce      json
// @Param        code  path      string  true  "event code"
// @Success      200   {object}  response.EventResponse
// @Failure      404   {object}  response.Err
// @Failure      409   {object}  response.Err
// @Router       /admin/events/{code}/start [post]
// @Router       /admin/events/{code}/pause [post]
// @Router       /admin/events/{code}/resume [post]
// @Router       /admin/events/{code}/end [post]
// @Security BearerAuth
func (h *EventHandler) HandleAction(action domain.Action) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		h.transition(ctx, action)
	}
}

func (h *EventHandler) transition(ctx *gin.Context, action domain.Action) {
	event, err := h.svc.Transition(ctx.Request.Context(), ctx.Param("code"), action)
	if err != nil {
		renderServiceErr(ctx, "h.svc.Transition", err)
		return
	}

	ctx.JSON(http.StatusOK, response.EventResponse{Event: event})
}
