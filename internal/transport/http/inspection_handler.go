package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"csvaudit/internal/audit"
	apierrors "csvaudit/internal/errors"
	"csvaudit/internal/files"
	"csvaudit/internal/infrastructure"
	"csvaudit/internal/inspect"
	custommw "csvaudit/internal/middleware"
	"csvaudit/internal/table"
)

// inspectQuery holds the keyword parameters shared by the inspection
// routes. Absent counts are nil and take the server defaults; zero is a
// real limit.
type inspectQuery struct {
	NRows       *int   `query:"nrows" validate:"omitempty,gte=0"`
	Full        bool   `query:"full"`
	LabelColumn string `query:"label_col" validate:"max=256"`
	MissingTopK *int   `query:"missing_top_k" validate:"omitempty,gte=0"`
	MaxCols     *int   `query:"max_cols" validate:"omitempty,gte=0"`
	Clean       bool   `query:"clean"`
}

func (q inspectQuery) request() inspect.Request {
	return inspect.Request{
		NRows:       count(q.NRows),
		Full:        q.Full,
		LabelColumn: q.LabelColumn,
		MissingTopK: count(q.MissingTopK),
		MaxCols:     count(q.MaxCols),
		Clean:       q.Clean,
	}
}

func count(n *int) int {
	if n == nil {
		return inspect.Unset
	}
	return *n
}

// fileQuery adds the file name path parameter
type fileQuery struct {
	Name string `query:"name" validate:"csvfile"`
	inspectQuery
}

// SummaryResponse is the body of GET /files/{name}/summary
type SummaryResponse struct {
	File           string               `json:"file"`
	Mode           string               `json:"mode"`
	RowsInspected  int                  `json:"rows_inspected"`
	NumericSummary []audit.NumericStats `json:"numeric_summary"`
}

// ColumnsResponse is the body of GET /files/{name}/columns
type ColumnsResponse struct {
	File       string                  `json:"file"`
	Mode       string                  `json:"mode"`
	Columns    []string                `json:"columns"`
	Suspicious table.SuspiciousColumns `json:"suspicious"`
}

// InspectionHandler serves the inspection API over one data directory
type InspectionHandler struct {
	service      InspectionService
	dataDir      string
	preferred    string
	validator    *custommw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewInspectionHandler creates a handler for dataDir. preferred is the
// default for GET /files/pick when the query omits it.
func NewInspectionHandler(service InspectionService, dataDir, preferred string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *InspectionHandler {
	return &InspectionHandler{
		service:      service,
		dataDir:      dataDir,
		preferred:    preferred,
		validator:    custommw.NewValidator(),
		logger:       infrastructure.WithComponent(logger, "inspection_handler"),
		errorHandler: errorHandler,
	}
}

// Routes returns the inspection routes
func (h *InspectionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/files", h.ListFiles)
	r.Get("/files/pick", h.PickFile)
	r.Route("/files/{name}", func(r chi.Router) {
		r.Get("/audit", h.AuditFile)
		r.Get("/summary", h.NumericSummary)
		r.Get("/columns", h.Columns)
	})
	r.Get("/audit", h.AuditDirectory)

	return r
}

// ListFiles handles GET /files
func (h *InspectionHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.ListCSVFiles(r.Context(), h.dataDir)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"count":  len(listing),
		"data":   listing,
	})
}

// PickFile handles GET /files/pick
func (h *InspectionHandler) PickFile(w http.ResponseWriter, r *http.Request) {
	preferred := h.preferred
	if r.URL.Query().Has("preferred") {
		preferred = r.URL.Query().Get("preferred")
	}
	if preferred != "" && preferred != filepath.Base(preferred) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("preferred", "preferred must be a plain file name"))
		return
	}

	path, err := h.service.PickFile(r.Context(), h.dataDir, preferred)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"file": filepath.Base(path)})
}

// AuditFile handles GET /files/{name}/audit
func (h *InspectionHandler) AuditFile(w http.ResponseWriter, r *http.Request) {
	q, path, ok := h.fileRequest(w, r)
	if !ok {
		return
	}

	report, err := h.service.AuditFile(r.Context(), path, q.request())
	if err == nil {
		err = r.Context().Err()
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, report)
}

// NumericSummary handles GET /files/{name}/summary
func (h *InspectionHandler) NumericSummary(w http.ResponseWriter, r *http.Request) {
	q, path, ok := h.fileRequest(w, r)
	if !ok {
		return
	}

	t, err := h.load(r, path, q.inspectQuery)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, SummaryResponse{
		File:           q.Name,
		Mode:           q.request().Mode(),
		RowsInspected:  t.NRows(),
		NumericSummary: h.service.NumericSummary(r.Context(), t, count(q.MaxCols)),
	})
}

// Columns handles GET /files/{name}/columns
func (h *InspectionHandler) Columns(w http.ResponseWriter, r *http.Request) {
	q, path, ok := h.fileRequest(w, r)
	if !ok {
		return
	}

	t, err := h.load(r, path, q.inspectQuery)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	suspicious := h.service.SuspiciousColumns(r.Context(), t)
	if q.Clean {
		t = h.service.CleanColumnNames(r.Context(), t)
	}

	render.JSON(w, r, ColumnsResponse{
		File:       q.Name,
		Mode:       q.request().Mode(),
		Columns:    t.Names(),
		Suspicious: suspicious,
	})
}

// AuditDirectory handles GET /audit
func (h *InspectionHandler) AuditDirectory(w http.ResponseWriter, r *http.Request) {
	var q inspectQuery
	if err := h.parseQuery(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.AuditDirectory(r.Context(), h.dataDir, q.request())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "directory audit served",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("run_id", report.RunID),
		slog.Int("files", len(report.Reports)),
	)
	render.JSON(w, r, report)
}

// fileRequest parses and validates the name and query of a per-file route
// and resolves the file inside the data directory. On failure the error
// response has already been written.
func (h *InspectionHandler) fileRequest(w http.ResponseWriter, r *http.Request) (fileQuery, string, bool) {
	var q fileQuery

	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("name", "name is not a valid path segment"))
		return q, "", false
	}
	q.Name = name

	if err := h.parseQuery(r, &q.inspectQuery); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, "", false
	}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, "", false
	}

	path, err := files.ResolveInDir(h.dataDir, q.Name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, "", false
	}
	return q, path, true
}

// parseQuery fills q from the query string and validates it
func (h *InspectionHandler) parseQuery(r *http.Request, q *inspectQuery) error {
	var err error
	if q.NRows, err = custommw.QueryOptionalInt(r, "nrows"); err != nil {
		return err
	}
	if q.Full, err = custommw.QueryBool(r, "full", false); err != nil {
		return err
	}
	if q.MissingTopK, err = custommw.QueryOptionalInt(r, "missing_top_k"); err != nil {
		return err
	}
	if q.MaxCols, err = custommw.QueryOptionalInt(r, "max_cols"); err != nil {
		return err
	}
	if q.Clean, err = custommw.QueryBool(r, "clean", false); err != nil {
		return err
	}
	q.LabelColumn = r.URL.Query().Get("label_col")

	return h.validator.ValidateStruct(q)
}

func (h *InspectionHandler) load(r *http.Request, path string, q inspectQuery) (*table.Table, error) {
	var (
		t   *table.Table
		err error
	)
	if q.Full {
		t, err = h.service.LoadFull(r.Context(), path)
	} else {
		t, err = h.service.LoadPeek(r.Context(), path, count(q.NRows))
	}
	if err != nil {
		return nil, err
	}
	return t, r.Context().Err()
}
