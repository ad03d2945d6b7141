package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/service"
	"github.com/maxviazov/football-manager-sim/pkg/response"
)

type WorldHandler struct {
	svc service.Simulator
}

func NewWorldHandler(svc service.Simulator) *WorldHandler { return &WorldHandler{svc: svc} }

func (h *WorldHandler) Register(r *gin.RouterGroup) {
	r.POST("/world", h.initWorld)

	leagues := r.Group("/leagues")
	{
		leagues.GET("/:league_id/standings", h.standings)
		leagues.POST("/:league_id/matchdays", h.advance)
	}

	r.GET("/teams/:team_id", h.team)

	events := r.Group("/events")
	{
		events.GET("", h.events)
		events.GET("/latest", h.latest)
	}
}

func (h *WorldHandler) initWorld(c *gin.Context) {
	var req service.InitOptions
	// an empty body means all defaults
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	info, err := h.svc.InitWorld(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, info)
}

func (h *WorldHandler) standings(c *gin.Context) {
	rows, err := h.svc.Standings(c.Request.Context(), c.Param("league_id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"league_id": c.Param("league_id"), "standings": rows})
}

func (h *WorldHandler) advance(c *gin.Context) {
	report, err := h.svc.AdvanceMatchday(c.Request.Context(), c.Param("league_id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, report)
}

func (h *WorldHandler) team(c *gin.Context) {
	team, err := h.svc.Team(c.Request.Context(), c.Param("team_id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, team)
}

type eventView struct {
	Sequence int64       `json:"sequence"`
	Type     event.Type  `json:"type"`
	Event    event.Event `json:"event"`
}

type eventsPage struct {
	Events  []eventView `json:"events"`
	Skipped int         `json:"skipped"`
	// Next is the cursor for the following page.
	Next int64 `json:"next_after_sequence"`
}

func (h *WorldHandler) events(c *gin.Context) {
	req := service.EventsRequest{}
	var err error
	if v := c.Query("after"); v != "" {
		if req.AfterSequence, err = strconv.ParseInt(v, 10, 64); err != nil {
			response.WriteError(c, service.ErrInvalidInput)
			return
		}
	}
	if v := c.Query("limit"); v != "" {
		if req.Limit, err = strconv.Atoi(v); err != nil {
			response.WriteError(c, service.ErrInvalidInput)
			return
		}
	}
	// types=goal,red_card and types=goal&types=red_card are both accepted
	for _, v := range c.QueryArray("types") {
		req.Types = append(req.Types, strings.Split(v, ",")...)
	}

	page, err := h.svc.Events(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	// the cursor runs past skipped records too, so tailers never stall on them
	out := eventsPage{Events: make([]eventView, 0, len(page.Events)), Skipped: page.Skipped, Next: max(page.LastSequence, req.AfterSequence)}
	for _, st := range page.Events {
		out.Events = append(out.Events, eventView{Sequence: st.Sequence, Type: st.Event.Type(), Event: st.Event})
	}
	response.WriteData(c, http.StatusOK, out)
}

func (h *WorldHandler) latest(c *gin.Context) {
	seq, err := h.svc.LatestSequence(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"sequence": seq})
}
