package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
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
	uploaded  string
	uploadLen int
	result    backend.UploadResult
	tables    []backend.TableInfo
	deleted   []string
}

func (f *fakeAPI) UploadFile(_ context.Context, filename string, r io.Reader) (backend.UploadResult, error) {
	data, _ := io.ReadAll(r)
	f.uploaded = filename
	f.uploadLen = len(data)
	return f.result, nil
}

func (f *fakeAPI) Tables(_ context.Context) ([]backend.TableInfo, error) {
	return f.tables, nil
}

func (f *fakeAPI) TableDetails(_ context.Context, name string) (backend.TableDetail, error) {
	return backend.TableDetail{TableInfo: backend.TableInfo{Name: name}}, nil
}

func (f *fakeAPI) DeleteTable(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
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

func multipartCSV(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestUploadProxiesFileAndReturnsPreview(t *testing.T) {
	api := &fakeAPI{result: backend.UploadResult{Success: true, TableName: "sales", RowCount: 2}}
	router, cookie := testRouter(t, api)

	body, contentType := multipartCSV(t, "sales.csv", "region,amount\nwest,100\neast,250\n")
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if api.uploaded != "sales.csv" || api.uploadLen == 0 {
		t.Fatalf("backend did not receive the file: %q (%d bytes)", api.uploaded, api.uploadLen)
	}

	var resp struct {
		Preview Preview `json:"preview"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Preview.Columns) != 2 || resp.Preview.Columns[0] != "region" {
		t.Fatalf("preview columns = %v", resp.Preview.Columns)
	}
	if len(resp.Preview.Rows) != 2 {
		t.Fatalf("preview rows = %v", resp.Preview.Rows)
	}
}

func TestUploadRejectsNonCSV(t *testing.T) {
	api := &fakeAPI{}
	router, cookie := testRouter(t, api)

	body, contentType := multipartCSV(t, "resume.pdf", "%PDF-1.4")
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if api.uploaded != "" {
		t.Fatal("rejected file reached the backend")
	}
}

func TestUploadRequiresSession(t *testing.T) {
	router, _ := testRouter(t, &fakeAPI{})

	body, contentType := multipartCSV(t, "sales.csv", "a,b\n1,2\n")
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestPreviewCapsRowCount(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("n\n")
	for i := 0; i < 20; i++ {
		sb.WriteString("1\n")
	}
	preview, err := previewCSV(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(preview.Rows) != previewRows {
		t.Fatalf("preview rows = %d, want %d", len(preview.Rows), previewRows)
	}
}

func TestDeleteTable(t *testing.T) {
	api := &fakeAPI{}
	router, cookie := testRouter(t, api)

	req := httptest.NewRequest(http.MethodDelete, "/api/tables/sales", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "sales" {
		t.Fatalf("deleted = %v", api.deleted)
	}
}
