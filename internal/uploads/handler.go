package uploads

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"dashboard-gateway/internal/backend"
	"dashboard-gateway/internal/session"
	"dashboard-gateway/internal/shared/server/middleware"
	"dashboard-gateway/internal/shared/server/respond"
)

const (
	maxUploadBytes = 25 << 20
	previewRows    = 5
)

// API is the slice of the backend client the upload and table routes use.
type API interface {
	UploadFile(ctx context.Context, filename string, r io.Reader) (backend.UploadResult, error)
	Tables(ctx context.Context) ([]backend.TableInfo, error)
	TableDetails(ctx context.Context, tableName string) (backend.TableDetail, error)
	DeleteTable(ctx context.Context, tableName string) error
}

// APIFactory builds a backend API bound to one bearer token.
type APIFactory func(token string) API

// Handler proxies CSV uploads to the backend and serves the uploaded-table
// routes. The file is parsed locally only to produce a preview; all ingestion
// happens on the backend.
type Handler struct {
	api      APIFactory
	sessions *session.Store
}

func NewHandler(api APIFactory, sessions *session.Store) *Handler {
	return &Handler{api: api, sessions: sessions}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads", h.upload)
	rg.GET("/tables", h.tables)
	rg.GET("/tables/:name", h.tableDetails)
	rg.DELETE("/tables/:name", h.removeTable)
}

// Preview is the first few rows of an uploaded CSV, shown while the backend
// ingests the full file.
type Preview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (h *Handler) upload(c *gin.Context) {
	api, ok := h.backend(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "file is required", nil)
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
		respond.Error(c, http.StatusBadRequest, "validation", "only .csv files are accepted", nil)
		return
	}
	if header.Size > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation", "file exceeds the 25MB limit", nil)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "could not read upload", nil)
		return
	}
	if len(data) > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation", "file exceeds the 25MB limit", nil)
		return
	}

	preview, err := previewCSV(bytes.NewReader(data))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "file is not valid CSV: "+err.Error(), nil)
		return
	}

	result, err := api.UploadFile(c.Request.Context(), header.Filename, bytes.NewReader(data))
	if err != nil {
		relayError(c, err)
		return
	}
	respond.OK(c, gin.H{"upload": result, "preview": preview})
}

// previewCSV validates the header row and captures the first rows. Ragged
// rows are tolerated, matching what the backend accepts.
func previewCSV(r io.Reader) (Preview, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return Preview{}, errors.New("missing header row")
	}

	preview := Preview{Columns: header}
	for len(preview.Rows) < previewRows {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Preview{}, err
		}
		preview.Rows = append(preview.Rows, row)
	}
	return preview, nil
}

func (h *Handler) tables(c *gin.Context) {
	api, ok := h.backend(c)
	if !ok {
		return
	}
	tables, err := api.Tables(c.Request.Context())
	if err != nil {
		relayError(c, err)
		return
	}
	respond.OK(c, gin.H{"tables": tables})
}

func (h *Handler) tableDetails(c *gin.Context) {
	api, ok := h.backend(c)
	if !ok {
		return
	}
	detail, err := api.TableDetails(c.Request.Context(), c.Param("name"))
	if err != nil {
		relayError(c, err)
		return
	}
	respond.OK(c, detail)
}

func (h *Handler) removeTable(c *gin.Context) {
	api, ok := h.backend(c)
	if !ok {
		return
	}
	name := c.Param("name")
	if err := api.DeleteTable(c.Request.Context(), name); err != nil {
		relayError(c, err)
		return
	}
	respond.OK(c, gin.H{"deleted": name})
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
