package analysis

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dashboard-gateway/internal/backend"
	"dashboard-gateway/internal/session"
	"dashboard-gateway/internal/shared/server/middleware"
	"dashboard-gateway/internal/shared/server/respond"
)

// APIFactory builds a backend API bound to one bearer token.
type APIFactory func(token string) API

// Handler owns the analysis job routes. Each session drives at most one poll
// loop; a new submission supersedes the previous one.
type Handler struct {
	api         APIFactory
	sessions    *session.Store
	registry    *Registry
	interval    time.Duration
	maxAttempts int
}

func NewHandler(api APIFactory, sessions *session.Store, registry *Registry, interval time.Duration, maxAttempts int) *Handler {
	return &Handler{
		api:         api,
		sessions:    sessions,
		registry:    registry,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// RegisterRoutes mounts the job routes on a gated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.submit)
	rg.GET("/analyses", h.history)
	rg.GET("/analyses/:id", h.get)
	rg.POST("/analyses/:id/cancel", h.cancel)
	rg.DELETE("/analyses/:id", h.remove)
}

type submitRequest struct {
	AnalysisRequest string   `json:"analysis_request"`
	QueryIDs        []string `json:"query_ids"`
}

type jobResponse struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	Attempts     int     `json:"attempts"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Result       *Result `json:"result,omitempty"`
}

func toJobResponse(job Job) jobResponse {
	return jobResponse{
		ID:           job.ID,
		Status:       job.Status,
		Attempts:     job.Attempts,
		ErrorMessage: job.ErrorMessage,
		Result:       job.Result,
	}
}

func (h *Handler) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "invalid request body", nil)
		return
	}

	token, owner, ok := h.session(c)
	if !ok {
		return
	}

	client := NewClient(h.api(token), h.interval, h.maxAttempts)
	job, err := client.Submit(c.Request.Context(), Request{
		Prompt:   req.AnalysisRequest,
		QueryIDs: req.QueryIDs,
	})
	if err != nil {
		respond.Error(c, backend.HTTPStatus(err), backend.ErrorCode(err), backend.UserMessage(err), nil)
		return
	}

	StartPoll(h.registry, owner, client, job)

	respond.JSON(c, http.StatusAccepted, toJobResponse(job))
}

func (h *Handler) get(c *gin.Context) {
	job, ok := h.registry.Get(c.Param("id"))
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "unknown analysis", nil)
		return
	}
	respond.OK(c, toJobResponse(job))
}

func (h *Handler) cancel(c *gin.Context) {
	_, owner, ok := h.session(c)
	if !ok {
		return
	}
	job, ok := h.registry.Cancel(owner)
	if !ok || job.ID != c.Param("id") {
		respond.Error(c, http.StatusNotFound, "not_found", "no analysis in progress", nil)
		return
	}
	respond.OK(c, toJobResponse(job))
}

func (h *Handler) remove(c *gin.Context) {
	token, owner, ok := h.session(c)
	if !ok {
		return
	}
	id := c.Param("id")

	if active, inFlight := h.registry.Active(owner); inFlight && active.ID == id {
		h.registry.Cancel(owner)
	}

	// Local state is only dropped once the backend confirms the delete.
	if err := h.api(token).DeleteAnalysis(c.Request.Context(), id); err != nil {
		respond.Error(c, backend.HTTPStatus(err), backend.ErrorCode(err), backend.UserMessage(err), nil)
		return
	}
	h.registry.Remove(id)
	respond.OK(c, gin.H{"deleted": id})
}

func (h *Handler) history(c *gin.Context) {
	token, _, ok := h.session(c)
	if !ok {
		return
	}
	detailed := c.Query("detailed") == "true"
	entries, err := h.api(token).AnalysisHistory(c.Request.Context(), detailed)
	if err != nil {
		respond.Error(c, backend.HTTPStatus(err), backend.ErrorCode(err), backend.UserMessage(err), nil)
		return
	}
	respond.OK(c, gin.H{"history": entries})
}

func (h *Handler) session(c *gin.Context) (token, owner string, ok bool) {
	owner = middleware.SessionIDFromContext(c)
	sess, found := h.sessions.Get(owner)
	if owner == "" || !found {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return "", "", false
	}
	return sess.Token, owner, true
}
