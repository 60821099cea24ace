package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"saubio/models"
	"saubio/services/flow"
	"saubio/services/locale"
	"saubio/services/matching"
	"saubio/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultHeartbeat = 25 * time.Second

// FlowHandler serves the booking flow progress endpoints.
type FlowHandler struct {
	Sessions  flow.SessionService
	Catalog   *locale.Catalog
	Logger    *zap.Logger
	Heartbeat time.Duration
}

func NewFlowHandler(sessions flow.SessionService, catalog *locale.Catalog, logger *zap.Logger) *FlowHandler {
	return &FlowHandler{
		Sessions:  sessions,
		Catalog:   catalog,
		Logger:    logger,
		Heartbeat: defaultHeartbeat,
	}
}

// TimelineRequest is the body of a stateless timeline derivation.
type TimelineRequest struct {
	FiltersComplete   bool                   `json:"filtersComplete"`
	Suggestions       models.SuggestionQuery `json:"suggestions"`
	FallbackTeams     int                    `json:"fallbackTeams"`
	SelectedTeamID    string                 `json:"selectedTeamId"`
	SmartMatch        bool                   `json:"smartMatch"`
	ManualSelected    int                    `json:"manualSelected"`
	RequiredProviders int                    `json:"requiredProviders"`
	Overrides         models.StageOverrides  `json:"overrides"`
}

// GetSteps handles GET /api/booking/flow/steps?path=.
func (h *FlowHandler) GetSteps(c *gin.Context) {
	loc := resolveLocale(c, h.Catalog)
	active := flow.ResolveStepFromPath(c.Query("path"))
	c.JSON(http.StatusOK, flow.BuildStepper(flow.BookingSteps(), active, h.Catalog, loc))
}

// DeriveTimeline handles POST /api/booking/flow/timeline.
func (h *FlowHandler) DeriveTimeline(c *gin.Context) {
	var req TimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Suggestions.Status == "" {
		req.Suggestions.Status = models.QueryIdle
	}

	in := matching.TimelineInput{
		FiltersComplete:   req.FiltersComplete,
		Suggestions:       req.Suggestions,
		FallbackTeams:     req.FallbackTeams,
		SelectedTeamID:    req.SelectedTeamID,
		SmartMatch:        req.SmartMatch,
		ManualSelected:    req.ManualSelected,
		RequiredProviders: req.RequiredProviders,
		Overrides:         req.Overrides,
	}
	c.JSON(http.StatusOK, matching.DeriveTimeline(in, h.Catalog, resolveLocale(c, h.Catalog)))
}

// StartSession handles POST /api/booking/flow/session.
func (h *FlowHandler) StartSession(c *gin.Context) {
	var in flow.StartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if in.Locale == "" {
		in.Locale = resolveLocale(c, h.Catalog)
	}

	snapshot, err := h.Sessions.Start(c.Request.Context(), c.GetString("userID"), in)
	if err != nil {
		respondFlowError(c, "StartSession", err)
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

// GetSession handles GET /api/booking/flow/session/:sessionID.
func (h *FlowHandler) GetSession(c *gin.Context) {
	snapshot, err := h.Sessions.Get(c.Request.Context(), c.Param("sessionID"), c.GetString("userID"))
	if err != nil {
		respondFlowError(c, "GetSession", err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// UpdateSession handles PATCH /api/booking/flow/session/:sessionID.
func (h *FlowHandler) UpdateSession(c *gin.Context) {
	var patch models.SessionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	snapshot, err := h.Sessions.Apply(c.Request.Context(), c.Param("sessionID"), c.GetString("userID"), patch)
	if err != nil {
		respondFlowError(c, "UpdateSession", err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// CancelSession handles DELETE /api/booking/flow/session/:sessionID.
func (h *FlowHandler) CancelSession(c *gin.Context) {
	if err := h.Sessions.Cancel(c.Request.Context(), c.Param("sessionID"), c.GetString("userID")); err != nil {
		respondFlowError(c, "CancelSession", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamSession handles GET /api/booking/flow/session/:sessionID/events.
// It sends the current snapshot, then every published one, as server-sent events.
func (h *FlowHandler) StreamSession(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("sessionID")
	userID := c.GetString("userID")

	updates, err := h.Sessions.Subscribe(ctx, sessionID, userID)
	if err != nil {
		respondFlowError(c, "StreamSession", err)
		return
	}
	current, err := h.Sessions.Get(ctx, sessionID, userID)
	if err != nil {
		respondFlowError(c, "StreamSession", err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("snapshot", current)
	c.Writer.Flush()

	interval := h.Heartbeat
	if interval <= 0 {
		interval = defaultHeartbeat
	}
	heartbeat := time.NewTicker(interval)
	defer heartbeat.Stop()

	lastVersion := current.Version
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snapshot, ok := <-updates:
			if !ok {
				return false
			}
			if snapshot.Version <= lastVersion {
				return true
			}
			lastVersion = snapshot.Version
			c.SSEvent("snapshot", snapshot)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}

func respondFlowError(c *gin.Context, op string, err error) {
	var flowErr *flow.FlowError
	switch {
	case errors.Is(err, flow.ErrSessionNotFound):
		utils.JSONError(c, http.StatusNotFound, "flow session not found or expired", "")
	case errors.Is(err, flow.ErrForbidden):
		utils.JSONError(c, http.StatusForbidden, "flow session belongs to another user", "")
	case errors.Is(err, flow.ErrVersionConflict):
		utils.JSONError(c, http.StatusConflict, "flow session was modified concurrently, retry", "")
	case errors.As(err, &flowErr):
		utils.JSONError(c, http.StatusBadRequest, flowErr.Message, flowErr.Code)
	default:
		getLogger(c).Error(op+": flow session operation failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to process flow session", "")
	}
}
