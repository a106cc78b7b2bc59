// internal/workers/scan_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/ledongthuc/pdf"

	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

const (
	TypeInvoiceScan      = "invoice:scan"
	TypeStockReconcile   = "stock:reconcile"
	TypeCleanupTempFiles = "cleanup:temp_files"
)

// ScanJobPayload represents the payload for invoice scan jobs
type ScanJobPayload struct {
	JobID       string `json:"job_id"`
	FileKey     string `json:"file_key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	UserID      string `json:"user_id,omitempty"`
}

// ScanJobResult represents the result of an invoice scan
type ScanJobResult struct {
	InvoiceID      string   `json:"invoice_id,omitempty"`
	SupplierName   string   `json:"supplier_name,omitempty"`
	ProductLines   int      `json:"product_lines"`
	Confidence     float64  `json:"confidence"`
	Errors         []string `json:"errors,omitempty"`
	ProcessingTime string   `json:"processing_time"`
}

// ScanProcessor downloads uploaded invoice documents, runs the OCR
// extraction and stores the resulting supplier invoice.
type ScanProcessor struct {
	scanner  ports.InvoiceScanner
	invoices ports.InvoiceService
	store    ports.ObjectStore
	db       ports.Database
	logger   *slog.Logger
}

// NewScanProcessor creates a new invoice scan processor
func NewScanProcessor(
	scanner ports.InvoiceScanner,
	invoices ports.InvoiceService,
	store ports.ObjectStore,
	db ports.Database,
	logger *slog.Logger,
) *ScanProcessor {
	return &ScanProcessor{
		scanner:  scanner,
		invoices: invoices,
		store:    store,
		db:       db,
		logger:   logger.With(slog.String("processor", "scan")),
	}
}

// ProcessScan handles one invoice scan task
func (p *ScanProcessor) ProcessScan(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload ScanJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	p.logger.InfoContext(ctx, "scanning invoice document",
		slog.String("job_id", payload.JobID),
		slog.String("file_key", payload.FileKey))

	_ = p.updateJobStatus(ctx, payload.JobID, "processing", nil)

	input, err := p.buildScanInput(ctx, payload)
	if err != nil {
		errMsg := fmt.Sprintf("failed to read document: %v", err)
		_ = p.updateJobStatus(ctx, payload.JobID, "failed", &errMsg)
		return fmt.Errorf("%s", errMsg)
	}

	scan, err := p.scanner.Scan(ctx, input)
	if err != nil {
		errMsg := fmt.Sprintf("extraction failed: %v", err)
		_ = p.updateJobStatus(ctx, payload.JobID, "failed", &errMsg)
		return fmt.Errorf("%s", errMsg)
	}

	invoice := scan.Invoice
	invoice.FileKey = payload.FileKey

	var errs []string
	status := "completed"
	if err := p.invoices.SaveInvoice(ctx, &invoice); err != nil {
		status = "completed_with_errors"
		errs = append(errs, err.Error())
	}

	result := ScanJobResult{
		InvoiceID:      invoice.InvoiceID.String(),
		SupplierName:   invoice.SupplierName,
		ProductLines:   len(invoice.Products),
		Confidence:     scan.Confidence,
		Errors:         errs,
		ProcessingTime: time.Since(start).String(),
	}

	resultJSON, _ := json.Marshal(result)
	_ = p.updateJobStatusWithResult(ctx, payload.JobID, status, resultJSON)

	p.logger.InfoContext(ctx, "invoice scan completed",
		slog.String("job_id", payload.JobID),
		slog.String("supplier", invoice.SupplierName),
		slog.Float64("confidence", scan.Confidence))

	if len(errs) > 0 {
		return fmt.Errorf("invoice save failed: %s", errs[0])
	}
	return nil
}

// buildScanInput fetches the stored document. PDFs are reduced to their text
// layer locally; images go to the scanner as raw bytes.
func (p *ScanProcessor) buildScanInput(ctx context.Context, payload ScanJobPayload) (ports.ScanInput, error) {
	body, err := p.store.Download(ctx, payload.FileKey)
	if err != nil {
		return ports.ScanInput{}, fmt.Errorf("failed to download %s: %w", payload.FileKey, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return ports.ScanInput{}, fmt.Errorf("failed to read document body: %w", err)
	}

	if isPDF(payload.ContentType, payload.FileName) {
		text, err := p.extractPDFText(data)
		if err != nil {
			return ports.ScanInput{}, err
		}
		return ports.ScanInput{Text: text}, nil
	}

	return ports.ScanInput{
		ImageData:   data,
		ContentType: payload.ContentType,
	}, nil
}

func isPDF(contentType, fileName string) bool {
	return contentType == "application/pdf" ||
		strings.HasSuffix(strings.ToLower(fileName), ".pdf")
}

func (p *ScanProcessor) extractPDFText(data []byte) (string, error) {
	// the pdf package wants a file on disk
	tmp, err := os.CreateTemp("", "scan-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	tmp.Close()

	f, r, err := pdf.Open(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	totalPages := r.NumPage()
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			p.logger.Warn("failed to extract text from page",
				slog.Int("page", pageNum),
				slog.String("error", err.Error()))
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("PDF has no extractable text layer")
	}
	return text, nil
}

func (p *ScanProcessor) updateJobStatus(ctx context.Context, jobID string, status string, errorMsg *string) error {
	query := `
		UPDATE async_jobs
		SET status = $2, error = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	_, err := p.db.Exec(ctx, query, jobID, status, errorMsg)
	return err
}

func (p *ScanProcessor) updateJobStatusWithResult(ctx context.Context, jobID string, status string, result json.RawMessage) error {
	query := `
		UPDATE async_jobs
		SET status = $2, result = $3, completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	_, err := p.db.Exec(ctx, query, jobID, status, result)
	return err
}
