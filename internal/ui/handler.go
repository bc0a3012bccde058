package ui

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gomponents "maragu.dev/gomponents"

	"dashboard-gateway/internal/analysis"
	"dashboard-gateway/internal/backend"
	"dashboard-gateway/internal/session"
	"dashboard-gateway/internal/shared/server/middleware"
	"dashboard-gateway/internal/shared/telemetry"
	"dashboard-gateway/internal/tableview"
)

// Options is the page-layer configuration.
type Options struct {
	CookieName      string
	SecureCookie    bool
	PollInterval    time.Duration
	PollMaxAttempts int
}

// Handler serves the server-rendered dashboard pages. All data lives on the
// backend; pages fetch it per request through the session's bearer token.
type Handler struct {
	client   *backend.Client
	sessions *session.Store
	registry *analysis.Registry
	opts     Options
	tableCfg tableview.Config
}

func NewHandler(client *backend.Client, sessions *session.Store, registry *analysis.Registry, opts Options) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = "dash_session"
	}
	return &Handler{
		client:   client,
		sessions: sessions,
		registry: registry,
		opts:     opts,
		tableCfg: tableview.DefaultConfig(),
	}
}

// RegisterPublic mounts the routes reachable without a session.
func (h *Handler) RegisterPublic(r gin.IRouter) {
	r.GET("/static/app.css", serveStylesheet)
	r.GET("/login", h.loginForm)
	r.POST("/login", h.login)
	r.GET("/register", h.registerForm)
	r.POST("/register", h.register)
}

// RegisterPages mounts the gated page routes.
func (h *Handler) RegisterPages(rg *gin.RouterGroup) {
	rg.GET("/", h.dashboard)
	rg.POST("/upload", h.upload)
	rg.POST("/logout", h.logout)

	rg.GET("/tables", h.tables)
	rg.GET("/tables/:name", h.tableDetail)
	rg.POST("/tables/:name/delete", h.deleteTable)

	rg.GET("/queries", h.queries)
	rg.POST("/queries", h.runQuery)
	rg.GET("/queries/:id", h.queryResults)
	rg.POST("/queries/:id/delete", h.deleteQuery)

	rg.GET("/analysis", h.analysisView)
	rg.POST("/analysis", h.submitAnalysis)
	rg.POST("/analysis/cancel", h.cancelAnalysis)

	rg.GET("/history", h.history)
	rg.GET("/history/:id", h.historyDetail)
	rg.POST("/history/:id/delete", h.deleteHistory)
}

func (h *Handler) render(c *gin.Context, status int, node gomponents.Node) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := node.Render(c.Writer); err != nil {
		telemetry.Error("ui.render", map[string]any{
			"error": err.Error(),
			"path":  c.Request.URL.Path,
		})
	}
}

// api resolves the session's backend client. The gate has already validated
// the session, so a miss here means it was cleared mid-request.
func (h *Handler) api(c *gin.Context) (*backend.Client, string, bool) {
	owner := middleware.SessionIDFromContext(c)
	sess, ok := h.sessions.Get(owner)
	if owner == "" || !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return nil, "", false
	}
	return h.client.WithToken(sess.Token), owner, true
}

func (h *Handler) user(c *gin.Context) string {
	if name := middleware.UserNameFromContext(c); name != "" {
		return name
	}
	return middleware.UserEmailFromContext(c)
}

func redirectWith(c *gin.Context, path, key, message string) {
	target := path
	if message != "" {
		target += "?" + key + "=" + url.QueryEscape(message)
	}
	c.Redirect(http.StatusSeeOther, target)
}

// --- auth ---

func (h *Handler) loginForm(c *gin.Context) {
	h.render(c, http.StatusOK, loginPage(c.Query("error")))
}

func (h *Handler) login(c *gin.Context) {
	identifier := c.PostForm("identifier")
	password := c.PostForm("password")

	result, err := h.client.Login(c.Request.Context(), identifier, password)
	if err != nil {
		h.render(c, backend.HTTPStatus(err), loginPage(backend.UserMessage(err)))
		return
	}

	id, sess, err := h.sessions.Set(result.Token, result.User)
	if err != nil {
		h.render(c, http.StatusBadGateway, loginPage("The login response could not be used. Please try again."))
		return
	}

	h.setSessionCookie(c, id, sess)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) registerForm(c *gin.Context) {
	h.render(c, http.StatusOK, registerPage(c.Query("error")))
}

func (h *Handler) register(c *gin.Context) {
	result, err := h.client.Register(c.Request.Context(),
		c.PostForm("username"), c.PostForm("email"), c.PostForm("password"))
	if err != nil {
		h.render(c, backend.HTTPStatus(err), registerPage(backend.UserMessage(err)))
		return
	}
	if result.Token == "" {
		redirectWith(c, "/login", "error", "Account created. Please sign in.")
		return
	}

	id, sess, err := h.sessions.Set(result.Token, result.User)
	if err != nil {
		redirectWith(c, "/login", "error", "Account created. Please sign in.")
		return
	}
	h.setSessionCookie(c, id, sess)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) logout(c *gin.Context) {
	if owner := middleware.SessionIDFromContext(c); owner != "" {
		h.registry.Cancel(owner)
		h.sessions.Clear(owner)
	}
	c.SetCookie(h.opts.CookieName, "", -1, "/", "", h.opts.SecureCookie, true)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) setSessionCookie(c *gin.Context, id string, sess session.Session) {
	maxAge := 0
	if !sess.Claims.ExpiresAt.IsZero() {
		maxAge = int(time.Until(sess.Claims.ExpiresAt).Seconds())
	}
	c.SetCookie(h.opts.CookieName, id, maxAge, "/", "", h.opts.SecureCookie, true)
}

// --- dashboard and uploads ---

func (h *Handler) dashboard(c *gin.Context) {
	api, _, ok := h.api(c)
	if !ok {
		return
	}
	tables, err := api.Tables(c.Request.Context())
	errMsg := c.Query("error")
	if err != nil {
		errMsg = backend.UserMessage(err)
	}
	h.render(c, http.StatusOK, dashboardPage(h.user(c), tables, errMsg, c.Query("notice")))
}

func (h *Handler) upload(c *gin.Context) {
	api, _, ok := h.api(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		redirectWith(c, "/", "error", "Choose a CSV file to upload.")
		return
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(header.Filename)) != ".csv" {
		redirectWith(c, "/", "error", "Only .csv files are accepted.")
		return
	}

	result, err := api.UploadFile(c.Request.Context(), header.Filename, file)
	if err != nil {
		redirectWith(c, "/", "error", backend.UserMessage(err))
		return
	}
	if result.TableName != "" {
		c.Redirect(http.StatusSeeOther, "/tables/"+url.PathEscape(result.TableName))
		return
	}
	redirectWith(c, "/", "notice", "Upload complete.")
}

// --- tables ---

func (h *Handler) tables(c *gin.Context) {
	api, _, ok := h.api(c)
	if !ok {
		return
	}
	tables, err := api.Tables(c.Request.Context())
	errMsg := c.Query("error")
	if err != nil {
		errMsg = backend.UserMessage(err)
	}
	h.render(c, http.StatusOK, tablesPage(h.user(c), tables, errMsg))
}

func (h *Handler) tableDetail(c *gin.Context) {
	api, _, ok := h.api(c)
	if !ok {
		return
	}
	name := c.Param("name")
	detail, err := api.TableDetails(c.Request.Context(), name)
	if err != nil {
		redirectWith(c, "/tables", "error", backend.UserMessage(err))
		return
	}

	records := make([]tableview.Record, len(detail.Rows))
	for i, row := range detail.Rows {
		records[i] = tableview.Record(row)
	}
	state := tableview.ParseState(c.Request.URL.Query(), h.tableCfg)
	view := tableview.Apply(records, detail.Columns, state, h.tableCfg)

	h.render(c, http.StatusOK, tableDetailPage(h.user(c), name, view, state, h.tableCfg, ""))
}

func (h *Handler) deleteTable(c *gin.Context) {
	api, _, ok := h.api(c)
	if !ok {
		return
	}
	if err := api.DeleteTable(c.Request.Context(), c.Param("name")); err != nil {
		redirectWith(c, "/tables", "error", backend.UserMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/tables")
}

// --- queries ---

func (h *Handler) queries(c *gin.Context) {
	api, _, ok := h.api(c)
	if !ok {
		return
	}
	saved, err := api.SavedQueries(c.Request.Context())
	errMsg := c.Query("error")
	if err != nil {
		errMsg = backend.UserMessage(err)
	}
	h.render(c, http.StatusOK, queriesPage(h.user(c), saved, errMsg))
}

func (h *Handler) runQuery(c *gin.Context) {
	api, _, ok := h.api(c)
	if !ok {
		return
	}
	query := c.PostForm("query")
	if strings.TrimSpace(query) == "" {
		redirectWith(c, "/queries", "error", "Enter a question to run.")
		return
	}

	result, err := api.ProcessQuery(c.Request.Context(), query, c.PostForm("table_name"))
	if err != nil {
		redirectWith(c, "/queries", "error", backend.UserMessage(err))
		return
	}
	if result.QueryID != "" {
		c.Redirect(http.StatusSeeOther, "/queries/"+url.PathEscape(result.QueryID))
		return
	}
	redirectWith(c, "/queries", "notice", "Query executed.")
}

func (h *Handler) queryResults(c *gin.Context) {
	api, _, ok := h.api(c)
	if !ok {
		return
	}
	query, rows, err := api.SavedQueryDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		redirectWith(c, "/queries", "error", backend.UserMessage(err))
		return
	}

	records := make([]tableview.Record, len(rows))
	for i, row := range rows {
		records[i] = tableview.Record(row)
	}
	state := tableview.ParseState(c.Request.URL.Query(), h.tableCfg)
	view := tableview.Apply(records, nil, state, h.tableCfg)

	h.render(c, http.StatusOK, queryResultPage(h.user(c), query, view, state, h.tableCfg, ""))
}

func (h *Handler) deleteQuery(c *gin.Context) {
	api, _, ok := h.api(c)
	if !ok {
		return
	}
	if err := api.DeleteQuery(c.Request.Context(), c.Param("id")); err != nil {
		redirectWith(c, "/queries", "error", backend.UserMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/queries")
}

// --- analysis ---

func (h *Handler) analysisView(c *gin.Context) {
	api, owner, ok := h.api(c)
	if !ok {
		return
	}

	saved, _ := api.SavedQueries(c.Request.Context())

	var job *analysis.Job
	if latest, ok := h.registry.Latest(owner); ok {
		job = &latest
	}
	h.render(c, http.StatusOK, analysisPage(h.user(c), saved, job, c.Query("error")))
}

func (h *Handler) submitAnalysis(c *gin.Context) {
	api, owner, ok := h.api(c)
	if !ok {
		return
	}

	client := analysis.NewClient(api, h.opts.PollInterval, h.opts.PollMaxAttempts)
	job, err := client.Submit(c.Request.Context(), analysis.Request{
		Prompt:   c.PostForm("analysis_request"),
		QueryIDs: c.PostFormArray("query_ids"),
	})
	if err != nil {
		redirectWith(c, "/analysis", "error", backend.UserMessage(err))
		return
	}

	analysis.StartPoll(h.registry, owner, client, job)
	c.Redirect(http.StatusSeeOther, "/analysis")
}

func (h *Handler) cancelAnalysis(c *gin.Context) {
	_, owner, ok := h.api(c)
	if !ok {
		return
	}
	h.registry.Cancel(owner)
	c.Redirect(http.StatusSeeOther, "/analysis")
}

// --- history ---

func (h *Handler) history(c *gin.Context) {
	api, _, ok := h.api(c)
	if !ok {
		return
	}
	entries, err := api.AnalysisHistory(c.Request.Context(), false)
	errMsg := c.Query("error")
	if err != nil {
		errMsg = backend.UserMessage(err)
	}
	h.render(c, http.StatusOK, historyPage(h.user(c), entries, errMsg))
}

func (h *Handler) historyDetail(c *gin.Context) {
	api, _, ok := h.api(c)
	if !ok {
		return
	}
	id := c.Param("id")
	client := analysis.NewClient(api, h.opts.PollInterval, h.opts.PollMaxAttempts)
	result, err := client.Detail(c.Request.Context(), id)
	if err != nil {
		redirectWith(c, "/history", "error", backend.UserMessage(err))
		return
	}
	h.render(c, http.StatusOK, historyDetailPage(h.user(c), id, result, ""))
}

func (h *Handler) deleteHistory(c *gin.Context) {
	api, _, ok := h.api(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := api.DeleteAnalysis(c.Request.Context(), id); err != nil {
		redirectWith(c, "/history", "error", backend.UserMessage(err))
		return
	}
	h.registry.Remove(id)
	c.Redirect(http.StatusSeeOther, "/history")
}
