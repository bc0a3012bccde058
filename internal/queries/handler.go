package queries

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dashboard-gateway/internal/backend"
	"dashboard-gateway/internal/session"
	"dashboard-gateway/internal/shared/server/middleware"
	"dashboard-gateway/internal/shared/server/respond"
)

// API is the slice of the backend client the query routes use.
type API interface {
	ProcessQuery(ctx context.Context, query, tableName string) (backend.QueryResult, error)
	ExecuteRawQuery(ctx context.Context, sql string) (backend.QueryResult, error)
	SavedQueries(ctx context.Context) ([]backend.SavedQuery, error)
	SavedQueryDetails(ctx context.Context, queryID string) (backend.SavedQuery, []map[string]any, error)
	DeleteQuery(ctx context.Context, queryID string) error
}

// APIFactory builds a backend API bound to one bearer token.
type APIFactory func(token string) API

// Handler owns the saved query routes. All query translation and execution
// happen on the backend; these routes collect input and relay outcomes.
type Handler struct {
	api      APIFactory
	sessions *session.Store
}

func NewHandler(api APIFactory, sessions *session.Store) *Handler {
	return &Handler{api: api, sessions: sessions}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/queries", h.list)
	rg.GET("/queries/:id", h.details)
	rg.POST("/queries/process", h.process)
	rg.POST("/queries/execute", h.execute)
	rg.DELETE("/queries/:id", h.remove)
}

type processRequest struct {
	Query     string `json:"query"`
	TableName string `json:"table_name"`
}

type executeRequest struct {
	SQL string `json:"sql_query"`
}

func (h *Handler) list(c *gin.Context) {
	api, ok := h.backend(c)
	if !ok {
		return
	}
	saved, err := api.SavedQueries(c.Request.Context())
	if err != nil {
		relayError(c, err)
		return
	}
	respond.OK(c, gin.H{"queries": saved})
}

func (h *Handler) details(c *gin.Context) {
	api, ok := h.backend(c)
	if !ok {
		return
	}
	query, rows, err := api.SavedQueryDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		relayError(c, err)
		return
	}
	respond.OK(c, gin.H{"query": query, "results": rows})
}

func (h *Handler) process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respond.Error(c, http.StatusBadRequest, "validation", "query is required", nil)
		return
	}
	api, ok := h.backend(c)
	if !ok {
		return
	}
	result, err := api.ProcessQuery(c.Request.Context(), req.Query, req.TableName)
	if err != nil {
		relayError(c, err)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) execute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		respond.Error(c, http.StatusBadRequest, "validation", "sql_query is required", nil)
		return
	}
	api, ok := h.backend(c)
	if !ok {
		return
	}
	result, err := api.ExecuteRawQuery(c.Request.Context(), req.SQL)
	if err != nil {
		relayError(c, err)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) remove(c *gin.Context) {
	api, ok := h.backend(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := api.DeleteQuery(c.Request.Context(), id); err != nil {
		relayError(c, err)
		return
	}
	respond.OK(c, gin.H{"deleted": id})
}

func (h *Handler) backend(c *gin.Context) (API, bool) {
	id := middleware.SessionIDFromContext(c)
	sess, found := h.sessions.Get(id)
	if id == "" || !found {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return nil, false
	}
	return h.api(sess.Token), true
}

func relayError(c *gin.Context, err error) {
	respond.Error(c, backend.HTTPStatus(err), backend.ErrorCode(err), backend.UserMessage(err), nil)
}
