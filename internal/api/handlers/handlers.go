package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ledgerlift/statement-ingest/internal/api/middleware"
	"github.com/ledgerlift/statement-ingest/internal/logger"
	"github.com/ledgerlift/statement-ingest/internal/pipeline"
	"github.com/ledgerlift/statement-ingest/internal/sheet"
)

// Ingester is the pipeline surface the handler needs; the concrete
// implementation is pipeline.Service.
type Ingester interface {
	Ingest(ctx context.Context, data []byte) ([]pipeline.Transaction, error)
}

// Multipart field names accepted for the uploaded statement.
var uploadFieldNames = []string{"file", "excel", "spreadsheet"}

// StatementsHandler exposes the statement ingestion endpoint.
type StatementsHandler struct {
	ingester       Ingester
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewStatementsHandler creates the handler.
func NewStatementsHandler(ingester Ingester, maxUploadBytes int64, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		ingester:       ingester,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// ParseStatement handles POST /api/statements/parse: multipart upload in,
// {"success":true,"expenses":[...]} out.
func (h *StatementsHandler) ParseStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	// Enforce the size cap before any parsing happens.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := openUpload(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest,
			"No file uploaded. Use form field 'file', 'excel' or 'spreadsheet'.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	log.Info().Str("filename", header.Filename).Int("bytes", len(data)).Msg("statement upload received")

	expenses, err := h.ingester.Ingest(ctx, data)
	if err != nil {
		h.writeIngestError(w, log, err)
		return
	}

	// nil marshals to JSON null, not [].
	if expenses == nil {
		expenses = []pipeline.Transaction{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"expenses": expenses,
	})
}

func openUpload(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	var lastErr error
	for _, field := range uploadFieldNames {
		file, header, err := r.FormFile(field)
		if err == nil {
			return file, header, nil
		}
		lastErr = err
	}
	return nil, nil, lastErr
}

func (h *StatementsHandler) writeIngestError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var apf *pipeline.AllProvidersFailedError

	switch {
	case errors.Is(err, sheet.ErrEmptyFile):
		middleware.WriteError(w, http.StatusUnprocessableEntity, "The uploaded file contains no rows")
	case errors.Is(err, sheet.ErrUnreadableFile):
		middleware.WriteError(w, http.StatusUnprocessableEntity,
			"The uploaded file could not be read as a spreadsheet or CSV")
	case errors.As(err, &apf):
		// Provider names and upstream messages stay in the logs.
		log.Error().Err(err).Msg("All extraction providers failed")
		middleware.WriteError(w, http.StatusBadGateway,
			"Statement extraction is temporarily unavailable. Please try again later.")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
		log.Warn().Msg("Request canceled during ingestion")
	default:
		log.Error().Err(err).Msg("Statement ingestion failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Statement ingestion failed")
	}
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
