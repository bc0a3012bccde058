package queries

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"dashboard-gateway/internal/backend"
	"dashboard-gateway/internal/session"
	"dashboard-gateway/internal/shared/server/middleware"
)

type fakeAPI struct {
	processed []string
	executed  []string
	deleted   []string
	saved     []backend.SavedQuery
	result    backend.QueryResult
	err       error
}

func (f *fakeAPI) ProcessQuery(_ context.Context, query, _ string) (backend.QueryResult, error) {
	f.processed = append(f.processed, query)
	return f.result, f.err
}

func (f *fakeAPI) ExecuteRawQuery(_ context.Context, sql string) (backend.QueryResult, error) {
	f.executed = append(f.executed, sql)
	return f.result, f.err
}

func (f *fakeAPI) SavedQueries(_ context.Context) ([]backend.SavedQuery, error) {
	return f.saved, f.err
}

func (f *fakeAPI) SavedQueryDetails(_ context.Context, id string) (backend.SavedQuery, []map[string]any, error) {
	return backend.SavedQuery{ID: id}, nil, f.err
}

func (f *fakeAPI) DeleteQuery(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func testRouter(t *testing.T, api *fakeAPI) (*gin.Engine, *http.Cookie) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	store := session.NewStore()
	id, _, err := store.Set(token, nil)
	if err != nil {
		t.Fatalf("store session: %v", err)
	}

	r := gin.New()
	group := r.Group("/api")
	group.Use(middleware.SessionGate(store, "dash_session"))
	NewHandler(func(string) API { return api }, store).RegisterRoutes(group)

	return r, &http.Cookie{Name: "dash_session", Value: id}
}

func doJSON(router *gin.Engine, cookie *http.Cookie, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestProcessQueryRelaysToBackend(t *testing.T) {
	api := &fakeAPI{result: backend.QueryResult{Success: true, QueryID: "q1"}}
	router, cookie := testRouter(t, api)

	rec := doJSON(router, cookie, http.MethodPost, "/api/queries/process",
		`{"query":"total sales by region","table_name":"sales"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(api.processed) != 1 || api.processed[0] != "total sales by region" {
		t.Fatalf("processed = %v", api.processed)
	}
}

func TestProcessQueryRejectsBlankInput(t *testing.T) {
	api := &fakeAPI{}
	router, cookie := testRouter(t, api)

	rec := doJSON(router, cookie, http.MethodPost, "/api/queries/process", `{"query":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(api.processed) != 0 {
		t.Fatal("blank query reached the backend")
	}
}

func TestExecuteRawQuery(t *testing.T) {
	api := &fakeAPI{result: backend.QueryResult{Success: true}}
	router, cookie := testRouter(t, api)

	rec := doJSON(router, cookie, http.MethodPost, "/api/queries/execute",
		`{"sql_query":"select 1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(api.executed) != 1 || api.executed[0] != "select 1" {
		t.Fatalf("executed = %v", api.executed)
	}
}

func TestBackendFailureRelaysStatusAndMessage(t *testing.T) {
	api := &fakeAPI{err: &backend.Error{Kind: backend.KindServer, Status: 502, Message: "backend down"}}
	router, cookie := testRouter(t, api)

	rec := doJSON(router, cookie, http.MethodGet, "/api/queries", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "backend down") {
		t.Fatalf("body = %s, want the backend message", rec.Body.String())
	}
}

func TestDeleteQuery(t *testing.T) {
	api := &fakeAPI{}
	router, cookie := testRouter(t, api)

	rec := doJSON(router, cookie, http.MethodDelete, "/api/queries/q9", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "q9" {
		t.Fatalf("deleted = %v", api.deleted)
	}
}
