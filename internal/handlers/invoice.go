// internal/handlers/invoice.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
	"github.com/phonedesk/phonedesk-be/internal/workers"
)

// InvoiceHandler handles supplier invoice HTTP requests, including the
// asynchronous document scan flow.
type InvoiceHandler struct {
	service     ports.InvoiceService
	store       ports.ObjectStore
	db          ports.Database
	asynqClient *asynq.Client
	logger      *slog.Logger
	maxScanSize int64
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(
	service ports.InvoiceService,
	store ports.ObjectStore,
	db ports.Database,
	asynqClient *asynq.Client,
	logger *slog.Logger,
	maxScanSizeMB int,
) *InvoiceHandler {
	return &InvoiceHandler{
		service:     service,
		store:       store,
		db:          db,
		asynqClient: asynqClient,
		logger:      logger.With(slog.String("handler", "invoice")),
		maxScanSize: int64(maxScanSizeMB) << 20,
	}
}

// CreateInvoice handles POST /api/v1/invoices
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var invoice domain.SupplierInvoice
	if err := json.NewDecoder(r.Body).Decode(&invoice); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.SaveInvoice(ctx, &invoice); err != nil {
		h.logger.ErrorContext(ctx, "failed to create invoice",
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to create invoice")
		return
	}

	h.logger.InfoContext(ctx, "invoice created",
		slog.String("invoice_id", invoice.InvoiceID.String()),
		slog.String("supplier", invoice.SupplierName))

	respondJSON(w, h.logger, http.StatusCreated, invoice)
}

// GetInvoice handles GET /api/v1/invoices/{id}
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	invoiceID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	invoice, err := h.service.GetInvoice(ctx, invoiceID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get invoice",
			slog.String("invoice_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to retrieve invoice")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, invoice)
}

// UpdateInvoice handles PUT /api/v1/invoices/{id}
func (h *InvoiceHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	invoiceID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var invoice domain.SupplierInvoice
	if err := json.NewDecoder(r.Body).Decode(&invoice); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateInvoice(ctx, invoiceID, &invoice); err != nil {
		h.logger.ErrorContext(ctx, "failed to update invoice",
			slog.String("invoice_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to update invoice")
		return
	}

	updated, err := h.service.GetInvoice(ctx, invoiceID)
	if err != nil {
		respondJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Invoice updated successfully"})
		return
	}

	h.logger.InfoContext(ctx, "invoice updated", slog.String("invoice_id", idStr))

	respondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteInvoice handles DELETE /api/v1/invoices/{id}
func (h *InvoiceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	invoiceID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	if err := h.service.DeleteInvoice(ctx, invoiceID); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete invoice",
			slog.String("invoice_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to delete invoice")
		return
	}

	h.logger.InfoContext(ctx, "invoice deleted", slog.String("invoice_id", idStr))

	respondJSON(w, h.logger, http.StatusOK, map[string]string{"invoice_id": idStr})
}

// ListInvoices handles GET /api/v1/invoices
func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := ports.InvoiceListParams{
		Page:     1,
		PageSize: 50,
	}

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > 100 {
				params.PageSize = 100
			} else {
				params.PageSize = l
			}
		}
	}

	params.Search = r.URL.Query().Get("search")
	params.Supplier = r.URL.Query().Get("supplier")

	result, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list invoices",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to list invoices")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// ScanInvoice handles POST /api/v1/invoices/scan. The uploaded document is
// stored first, then extraction runs on the worker; the response only carries
// the job id to poll.
func (h *InvoiceHandler) ScanInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(h.maxScanSize); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxScanSize {
		respondError(w, h.logger, http.StatusBadRequest,
			fmt.Sprintf("File exceeds maximum size of %d bytes", h.maxScanSize))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !isScannable(contentType, header.Filename) {
		respondError(w, h.logger, http.StatusBadRequest, "Only PDF, JPEG and PNG files are allowed")
		return
	}

	fileKey := fmt.Sprintf("invoices/%s_%s", uuid.New().String(), header.Filename)
	if _, err := h.store.Upload(ctx, fileKey, file, contentType); err != nil {
		h.logger.ErrorContext(ctx, "failed to upload scan document",
			slog.String("file_key", fileKey),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	jobID := uuid.New().String()
	payload := workers.ScanJobPayload{
		JobID:       jobID,
		FileKey:     fileKey,
		FileName:    header.Filename,
		ContentType: contentType,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to queue scan job")
		return
	}

	if err := h.createScanJob(r.Context(), jobID, b); err != nil {
		h.logger.ErrorContext(ctx, "failed to create job record",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to create scan job")
		return
	}

	info, err := h.asynqClient.Enqueue(asynq.NewTask(workers.TypeInvoiceScan, b),
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to enqueue scan task",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to queue scan job")
		return
	}

	h.logger.InfoContext(ctx, "invoice scan queued",
		slog.String("job_id", jobID),
		slog.String("task_id", info.ID),
		slog.String("file_key", fileKey))

	respondJSON(w, h.logger, http.StatusAccepted, map[string]any{
		"job_id": jobID,
		"status": "queued",
	})
}

// ScanStatus handles GET /api/v1/invoices/scan/{jobId}
func (h *InvoiceHandler) ScanStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := r.PathValue("jobId")

	if _, err := uuid.Parse(jobID); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	query := `
		SELECT status, result, error, created_at, updated_at, completed_at
		FROM async_jobs
		WHERE id = $1`

	var (
		status      string
		result      json.RawMessage
		errorMsg    *string
		createdAt   time.Time
		updatedAt   time.Time
		completedAt *time.Time
	)

	err := h.db.QueryRow(ctx, query, jobID).
		Scan(&status, &result, &errorMsg, &createdAt, &updatedAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, h.logger, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get job status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to get job status")
		return
	}

	resp := map[string]any{
		"job_id":     jobID,
		"status":     status,
		"created_at": createdAt,
		"updated_at": updatedAt,
	}
	if len(result) > 0 {
		resp["result"] = result
	}
	if errorMsg != nil {
		resp["error"] = *errorMsg
	}
	if completedAt != nil {
		resp["completed_at"] = *completedAt
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *InvoiceHandler) createScanJob(ctx context.Context, jobID string, payload []byte) error {
	query := `
		INSERT INTO async_jobs (id, job_type, status, payload, created_at, updated_at)
		VALUES ($1, $2, 'queued', $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

	_, err := h.db.Exec(ctx, query, jobID, workers.TypeInvoiceScan, payload)
	return err
}

func isScannable(contentType, fileName string) bool {
	switch contentType {
	case "application/pdf", "image/jpeg", "image/png":
		return true
	}
	lower := strings.ToLower(fileName)
	return strings.HasSuffix(lower, ".pdf") ||
		strings.HasSuffix(lower, ".jpg") ||
		strings.HasSuffix(lower, ".jpeg") ||
		strings.HasSuffix(lower, ".png")
}
