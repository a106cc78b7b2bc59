// internal/core/ports/ocr.go
package ports

import (
	"context"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
)

// ScanInput is the document handed to the invoice scanner. Either Text (a
// pre-extracted PDF text layer) or ImageData + ContentType is set.
type ScanInput struct {
	Text        string
	ImageData   []byte
	ContentType string
}

// ScanResult is the scanner's best-effort structured reading of a supplier
// invoice, with a confidence score in [0,1].
type ScanResult struct {
	Invoice    domain.SupplierInvoice `json:"invoice"`
	Confidence float64                `json:"confidence"`
}

// InvoiceScanner extracts structured invoice data from a scanned document.
// Implementations are opaque; callers only see the structured guess.
type InvoiceScanner interface {
	Scan(ctx context.Context, input ScanInput) (*ScanResult, error)
}
