package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yhlin/memberdir/internal/auth"
	"github.com/yhlin/memberdir/internal/importer"
	"github.com/yhlin/memberdir/internal/models"
	"github.com/yhlin/memberdir/internal/services"
	pkghttp "github.com/yhlin/memberdir/pkg/http"
)

// ImportServiceInterface defines the interface for the bulk import pipeline
type ImportServiceInterface interface {
	Preview(r io.Reader) (*services.Preview, error)
	Run(ctx context.Context, actor string, candidates []models.ImportCandidate) (*models.ImportReport, error)
	RecentRuns(ctx context.Context, limit int) ([]*models.ImportRun, error)
}

// ImportHandler handles spreadsheet upload requests
type ImportHandler struct {
	service        ImportServiceInterface
	maxUploadBytes int64
}

func NewImportHandler(service ImportServiceInterface, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// PreviewResponse lists what an upload would import and what was dropped.
type PreviewResponse struct {
	Candidates []models.ImportCandidate `json:"candidates"`
	Skipped    []importer.SkippedRow    `json:"skipped"`
}

// ImportResponse carries the run report plus the parse-stage drops.
type ImportResponse struct {
	Report  *models.ImportReport  `json:"report"`
	Skipped []importer.SkippedRow `json:"skipped"`
}

// ImportRunResponse represents a past import run
type ImportRunResponse struct {
	ID           string `json:"id"`
	Actor        string `json:"actor"`
	TotalRows    int    `json:"total_rows"`
	SuccessCount int    `json:"success_count"`
	SkippedCount int    `json:"skipped_count"`
	ErrorCount   int    `json:"error_count"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at"`
}

// Preview parses the uploaded workbook without touching the store.
func (h *ImportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	file, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	preview, err := h.service.Preview(file)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Could not read spreadsheet")
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{
		Candidates: preview.Candidates,
		Skipped:    preview.Skipped,
	})
}

// Import parses the uploaded workbook and imports every accepted row.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	file, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	preview, err := h.service.Preview(file)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Could not read spreadsheet")
		return
	}

	actor := ""
	if user := auth.GetUserFromContext(r); user != nil {
		actor = user.Account
	}

	report, err := h.service.Run(r.Context(), actor, preview.Candidates)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{
		Report:  report,
		Skipped: preview.Skipped,
	})
}

// Runs lists recent import runs for the history panel.
func (h *ImportHandler) Runs(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			pkghttp.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	runs, err := h.service.RecentRuns(r.Context(), limit)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]ImportRunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, ImportRunResponse{
			ID:           run.ID,
			Actor:        run.Actor,
			TotalRows:    run.TotalRows,
			SuccessCount: run.SuccessCount,
			SkippedCount: run.SkippedCount,
			ErrorCount:   run.ErrorCount,
			StartedAt:    run.StartedAt.Format(time.RFC3339),
			FinishedAt:   run.FinishedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": resp})
}

// openUpload extracts the spreadsheet part from a multipart request and
// enforces the size and extension limits.
func (h *ImportHandler) openUpload(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			pkghttp.WritePayloadTooLarge(w, "Uploaded file is too large")
			return nil, false
		}
		pkghttp.WriteBadRequest(w, "Invalid multipart request")
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		pkghttp.WriteBadRequest(w, "Missing file upload")
		return nil, false
	}

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".xlsx", ".xls":
	default:
		file.Close()
		pkghttp.WriteBadRequest(w, "Only .xlsx and .xls files are accepted")
		return nil, false
	}
	return file, true
}
