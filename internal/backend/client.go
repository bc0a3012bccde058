package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the bearer token attached to authenticated requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource, used by the CLI and by tests.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client is a typed HTTP client for the analytics backend contract. All data
// transformation and query execution happen behind it; the client only
// collects input, polls and reshapes responses.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// New constructs a Client. baseURL includes the API prefix, e.g.
// "http://localhost:3000/api".
func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// WithToken returns a copy of the client bound to a fixed bearer token. The
// gateway uses it to serve many sessions from one configured client.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.tokens = StaticToken(token)
	return &clone
}

// Login exchanges credentials for a bearer token. An identifier containing
// "@" is sent as email, anything else as username.
func (c *Client) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return LoginResult{}, ValidationError("identifier and password are required")
	}

	body := map[string]string{"password": password}
	if strings.Contains(identifier, "@") {
		body["email"] = identifier
	} else {
		body["username"] = identifier
	}

	var result LoginResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return LoginResult{}, err
	}
	if result.Token == "" {
		return LoginResult{}, malformedError("login response missing token", nil)
	}
	return result, nil
}

// Register creates an account and returns the login result when the backend
// issues a token immediately.
func (c *Client) Register(ctx context.Context, username, email, password string) (LoginResult, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return LoginResult{}, ValidationError("username, email and password are required")
	}
	body := map[string]string{"username": username, "email": email, "password": password}
	var result LoginResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", body, &result); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// UploadFile streams a tabular file to the backend as multipart form data.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader) (UploadResult, error) {
	if strings.TrimSpace(filename) == "" {
		return UploadResult{}, ValidationError("filename is required")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, malformedError("failed to build upload body", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return UploadResult{}, malformedError("failed to read upload", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, malformedError("failed to finish upload body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return UploadResult{}, transportError(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	data, _, derr := c.send(req)
	if derr != nil {
		return UploadResult{}, derr
	}
	var result UploadResult
	if err := json.Unmarshal(data, &result); err != nil {
		return UploadResult{}, malformedError("upload response is not valid JSON", err)
	}
	return result, nil
}

// ProcessQuery runs a natural-language query against an uploaded table.
func (c *Client) ProcessQuery(ctx context.Context, query, tableName string) (QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return QueryResult{}, ValidationError("query is required")
	}
	body := map[string]string{"query": query}
	if tableName != "" {
		body["table_name"] = tableName
	}
	var result QueryResult
	if err := c.doJSON(ctx, http.MethodPost, "/query/process", body, &result); err != nil {
		return QueryResult{}, err
	}
	return result, nil
}

// ExecuteRawQuery runs a raw SQL query.
func (c *Client) ExecuteRawQuery(ctx context.Context, sql string) (QueryResult, error) {
	if strings.TrimSpace(sql) == "" {
		return QueryResult{}, ValidationError("query is required")
	}
	var result QueryResult
	if err := c.doJSON(ctx, http.MethodPost, "/query/execute", map[string]string{"query": sql}, &result); err != nil {
		return QueryResult{}, err
	}
	return result, nil
}

// SavedQueries lists the user's saved queries.
func (c *Client) SavedQueries(ctx context.Context) ([]SavedQuery, error) {
	var envelope struct {
		Success bool         `json:"success"`
		Queries []SavedQuery `json:"queries"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/query/saved", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Queries, nil
}

// SavedQueryDetails fetches one saved query with its persisted result rows.
func (c *Client) SavedQueryDetails(ctx context.Context, queryID string) (SavedQuery, []map[string]any, error) {
	if queryID == "" {
		return SavedQuery{}, nil, ValidationError("query id is required")
	}
	var envelope struct {
		Success bool             `json:"success"`
		Query   SavedQuery       `json:"query"`
		Results []map[string]any `json:"results"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/query/saved/"+url.PathEscape(queryID), nil, &envelope); err != nil {
		return SavedQuery{}, nil, err
	}
	rows := envelope.Results
	if rows == nil && len(envelope.Query.Results) > 0 {
		if err := json.Unmarshal(envelope.Query.Results, &rows); err != nil {
			rows = nil
		}
	}
	return envelope.Query, rows, nil
}

// DeleteQuery removes a saved query.
func (c *Client) DeleteQuery(ctx context.Context, queryID string) error {
	if queryID == "" {
		return ValidationError("query id is required")
	}
	return c.doConfirm(ctx, http.MethodDelete, "/query/saved/"+url.PathEscape(queryID))
}

// CreateAnalysis submits an analysis job. The returned id is resolved from
// analysis_id, session_id or id, in that order.
func (c *Client) CreateAnalysis(ctx context.Context, req CreateAnalysisRequest) (CreateAnalysisResponse, error) {
	if strings.TrimSpace(req.AnalysisRequest) == "" {
		return CreateAnalysisResponse{}, ValidationError("analysis request is required")
	}
	if req.QueryIDs == nil {
		req.QueryIDs = []string{}
	}

	var raw map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/analyze", req, &raw); err != nil {
		return CreateAnalysisResponse{}, err
	}

	id := firstString(raw, "analysis_id", "session_id", "id")
	if id == "" {
		return CreateAnalysisResponse{}, malformedError("server response missing ID field (tried: analysis_id, session_id, id)", nil)
	}
	resp := CreateAnalysisResponse{AnalysisID: id, Status: "processing"}
	if status, ok := raw["status"].(string); ok && status != "" {
		resp.Status = status
	}
	if msg, ok := raw["message"].(string); ok {
		resp.Message = msg
	}
	return resp, nil
}

// AnalysisStatus fetches one poll snapshot for the job.
func (c *Client) AnalysisStatus(ctx context.Context, analysisID string) (StatusResponse, error) {
	if analysisID == "" {
		return StatusResponse{}, ValidationError("analysis id is required")
	}
	data, _, err := c.get(ctx, "/analyze/"+url.PathEscape(analysisID))
	if err != nil {
		return StatusResponse{}, err
	}

	var snapshot StatusResponse
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return StatusResponse{}, malformedError("status response is not valid JSON", err)
	}
	// Raw keeps the whole body so result normalization can see shapes the
	// typed fields do not cover.
	_ = json.Unmarshal(data, &snapshot.Raw)
	return snapshot, nil
}

// AnalysisDetail fetches the full result payload for a finished job. Some
// backend versions key the job under a session id; on a server-side miss the
// session endpoint is tried before giving up.
func (c *Client) AnalysisDetail(ctx context.Context, analysisID string) (map[string]any, error) {
	if analysisID == "" {
		return nil, ValidationError("analysis id is required")
	}
	data, _, err := c.get(ctx, "/analyze/"+url.PathEscape(analysisID))
	if err != nil {
		if !errors.Is(err, ErrServer) {
			return nil, err
		}
		data, _, err = c.get(ctx, "/analyze/session/"+url.PathEscape(analysisID))
		if err != nil {
			return nil, err
		}
	}
	var payload map[string]any
	if uerr := json.Unmarshal(data, &payload); uerr != nil {
		return nil, malformedError("analysis detail is not valid JSON", uerr)
	}
	return payload, nil
}

// DeleteAnalysis removes a finished or failed analysis.
func (c *Client) DeleteAnalysis(ctx context.Context, analysisID string) error {
	if analysisID == "" {
		return ValidationError("analysis id is required")
	}
	return c.doConfirm(ctx, http.MethodDelete, "/analyze/"+url.PathEscape(analysisID))
}

// AnalysisHistory lists past analyses, optionally with full results.
func (c *Client) AnalysisHistory(ctx context.Context, detailed bool) ([]HistoryEntry, error) {
	path := "/analyze/history"
	if detailed {
		path += "?detailed=true"
	}
	var envelope struct {
		Success bool           `json:"success"`
		History []HistoryEntry `json:"history"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.History, nil
}

// Tables lists uploaded tables.
func (c *Client) Tables(ctx context.Context) ([]TableInfo, error) {
	var envelope struct {
		Success bool        `json:"success"`
		Tables  []TableInfo `json:"tables"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/tables", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Tables, nil
}

// TableDetails fetches one table with a page of its rows.
func (c *Client) TableDetails(ctx context.Context, tableName string) (TableDetail, error) {
	if tableName == "" {
		return TableDetail{}, ValidationError("table name is required")
	}
	var envelope struct {
		Success bool        `json:"success"`
		Table   TableDetail `json:"table"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/tables/"+url.PathEscape(tableName), nil, &envelope); err != nil {
		return TableDetail{}, err
	}
	return envelope.Table, nil
}

// DeleteTable drops an uploaded table.
func (c *Client) DeleteTable(ctx context.Context, tableName string) error {
	if tableName == "" {
		return ValidationError("table name is required")
	}
	return c.doConfirm(ctx, http.MethodDelete, "/tables/"+url.PathEscape(tableName))
}

// Health checks backend reachability.
func (c *Client) Health(ctx context.Context) error {
	var out map[string]any
	return c.doJSON(ctx, http.MethodGet, "/health", nil, &out)
}

// Cleanup asks the backend to drop all uploaded data.
func (c *Client) Cleanup(ctx context.Context) error {
	return c.doConfirm(ctx, http.MethodPost, "/cleanup/all")
}

func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, transportError(err)
	}
	c.authorize(req)
	return c.send(req)
}

// doJSON performs a JSON round trip and decodes the response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return malformedError("failed to encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return transportError(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	data, status, derr := c.send(req)
	if derr != nil {
		return derr
	}
	if out == nil || status == http.StatusNoContent || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return malformedError("response is not valid JSON", err)
	}
	return nil
}

// doConfirm performs a request whose success is a 204 or {success:true}.
func (c *Client) doConfirm(ctx context.Context, method, path string) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return transportError(err)
	}
	c.authorize(req)

	data, status, derr := c.send(req)
	if derr != nil {
		return derr
	}
	if status == http.StatusNoContent || len(data) == 0 {
		return nil
	}
	var result struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return malformedError("response is not valid JSON", err)
	}
	if result.Success != nil && !*result.Success {
		msg := result.Message
		if msg == "" {
			msg = "operation failed"
		}
		return serverError(status, msg)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) send(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, 0, timeoutError("backend request timed out", err)
		}
		return nil, 0, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, transportError(err)
	}

	if resp.StatusCode >= 300 {
		return nil, resp.StatusCode, serverError(resp.StatusCode, extractMessage(data))
	}
	return data, resp.StatusCode, nil
}

// extractMessage pulls a human-readable message out of an error body. The
// backend answers either {message} or {error:{message}}.
func extractMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	switch e := body.Error.(type) {
	case string:
		return e
	case map[string]any:
		if msg, ok := e["message"].(string); ok {
			return msg
		}
	}
	return ""
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := raw[key].(string); ok && value != "" {
			return value
		}
		// Numeric ids arrive as float64 through encoding/json.
		if value, ok := raw[key].(float64); ok {
			return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", value), "0"), ".")
		}
	}
	return ""
}
