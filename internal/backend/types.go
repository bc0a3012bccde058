package backend

import "encoding/json"

// LoginResult is the backend's answer to a successful login or registration.
type LoginResult struct {
	Token string         `json:"token"`
	User  map[string]any `json:"user"`
}

// CreateAnalysisRequest is the body of POST /analyze.
type CreateAnalysisRequest struct {
	QueryIDs        []string `json:"query_ids"`
	AnalysisRequest string   `json:"analysis_request"`
}

// CreateAnalysisResponse carries the resolved job identifier. The backend has
// been observed to return it under analysis_id, session_id or id; the client
// resolves them in that priority order.
type CreateAnalysisResponse struct {
	AnalysisID string
	Status     string
	Message    string
}

// StatusResponse is one poll snapshot. The backend answers either
// {status, results?, message?} or {success, results?}; both are mapped here.
// Raw keeps the full body for result normalization.
type StatusResponse struct {
	Status  string         `json:"status"`
	Success *bool          `json:"success"`
	Message string         `json:"message"`
	Results map[string]any `json:"results"`
	Raw     map[string]any `json:"-"`
}

// Completed reports whether the snapshot is a terminal success.
func (s StatusResponse) Completed() bool {
	if s.Status == "completed" {
		return true
	}
	return s.Status == "" && s.Success != nil && *s.Success && s.Results != nil
}

// Failed reports whether the snapshot is a terminal failure.
func (s StatusResponse) Failed() bool {
	if s.Status == "failed" {
		return true
	}
	return s.Success != nil && !*s.Success
}

// Empty reports an empty or unrecognized snapshot body.
func (s StatusResponse) Empty() bool {
	return len(s.Raw) == 0
}

// SavedQuery is one persisted natural-language query.
type SavedQuery struct {
	ID        string          `json:"id"`
	Query     string          `json:"query"`
	TableName string          `json:"table_name,omitempty"`
	SQL       string          `json:"sql_query,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
	Results   json.RawMessage `json:"results,omitempty"`
}

// QueryResult is the outcome of processing or executing a query.
type QueryResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	QueryID string           `json:"query_id,omitempty"`
	SQL     string           `json:"sql_query,omitempty"`
	Rows    []map[string]any `json:"results,omitempty"`
}

// UploadResult is the outcome of a file upload.
type UploadResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	TableName string `json:"table_name,omitempty"`
	RowCount  int    `json:"row_count,omitempty"`
}

// TableInfo describes an uploaded table.
type TableInfo struct {
	Name      string `json:"name"`
	RowCount  int    `json:"row_count,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// TableDetail is a table plus a page of its contents.
type TableDetail struct {
	TableInfo
	Columns []string         `json:"columns,omitempty"`
	Rows    []map[string]any `json:"rows,omitempty"`
}

// HistoryEntry is one item of the analysis history list.
type HistoryEntry struct {
	ID        string         `json:"id"`
	Request   string         `json:"analysis_request,omitempty"`
	Status    string         `json:"status,omitempty"`
	CreatedAt string         `json:"created_at,omitempty"`
	Results   map[string]any `json:"results,omitempty"`
}
