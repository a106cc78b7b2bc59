// internal/adapters/ocr/openai.go
package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
	"github.com/shopspring/decimal"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// invoiceExtraction is the structured answer the model is constrained to.
// Amounts are strings so the schema stays exact; they are parsed into
// decimals before leaving this package.
type invoiceExtraction struct {
	SupplierName  string              `json:"supplier_name" jsonschema_description:"Name of the supplier on the invoice"`
	InvoiceNumber string              `json:"invoice_number" jsonschema_description:"Invoice or document number, empty if absent"`
	InvoiceDate   string              `json:"invoice_date" jsonschema_description:"Invoice date in YYYY-MM-DD format, empty if unreadable"`
	TotalAmount   string              `json:"total_amount" jsonschema_description:"Invoice total as an exact decimal string, e.g. \"1499.50\""`
	Products      []productExtraction `json:"products" jsonschema_description:"Line items found on the invoice"`
	RawText       string              `json:"raw_text" jsonschema_description:"All legible text on the document, transcribed verbatim"`
	Confidence    float64             `json:"confidence" jsonschema_description:"Extraction confidence between 0.0 and 1.0"`
}

type productExtraction struct {
	Description string   `json:"description" jsonschema_description:"Line description as printed"`
	Model       string   `json:"model" jsonschema_description:"Phone model if identifiable, empty otherwise"`
	Quantity    int      `json:"quantity" jsonschema_description:"Unit count for the line"`
	UnitPrice   string   `json:"unit_price" jsonschema_description:"Per-unit price as an exact decimal string"`
	IMEIs       []string `json:"imeis" jsonschema_description:"IMEI numbers listed for this line, empty if none"`
}

const scanPrompt = `You are reading a supplier invoice for a mobile-phone wholesale shop.
Extract the structured fields exactly as printed. Rules:
1. Transcribe every legible character into raw_text, including IMEI numbers.
2. Amounts must be exact decimal strings (e.g. "1499.50"), never rounded.
3. List each product line separately with its quantity and unit price.
4. When an IMEI (14-16 digit number) appears near a line, attach it to that line.
5. Leave fields you cannot read empty and lower the confidence score accordingly.`

// Scanner extracts structured invoice data via an OpenAI vision model
type Scanner struct {
	client *openai.Client
	model  shared.ChatModel
	logger *slog.Logger
}

var _ ports.InvoiceScanner = (*Scanner)(nil)

// NewScanner creates a new OpenAI-backed invoice scanner
func NewScanner(apiKey string, model string, logger *slog.Logger) *Scanner {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	if model == "" {
		model = shared.ChatModelGPT4o
	}
	return &Scanner{
		client: &client,
		model:  model,
		logger: logger.With(slog.String("component", "ocr")),
	}
}

// Scan runs one extraction over a pre-extracted text layer or a document image
func (s *Scanner) Scan(ctx context.Context, input ports.ScanInput) (*ports.ScanResult, error) {
	if input.Text == "" && len(input.ImageData) == 0 {
		return nil, fmt.Errorf("scan input is empty")
	}

	schemaMap, err := extractionSchema()
	if err != nil {
		return nil, err
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(s.model),
		Input: buildInput(input),
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "supplier_invoice_extraction",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Structured reading of a supplier invoice"),
				},
			},
		},
	}

	resp, err := s.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var extraction invoiceExtraction
	if err := json.Unmarshal([]byte(content), &extraction); err != nil {
		return nil, fmt.Errorf("failed to parse extraction: %w", err)
	}

	result, err := toScanResult(&extraction)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "invoice scanned",
		slog.String("supplier", result.Invoice.SupplierName),
		slog.Float64("confidence", result.Confidence))
	return result, nil
}

func buildInput(input ports.ScanInput) responses.ResponseNewParamsInputUnion {
	if len(input.ImageData) == 0 {
		return responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(scanPrompt + "\n\nInvoice text:\n" + input.Text),
		}
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s",
		contentType, base64.StdEncoding.EncodeToString(input.ImageData))

	return responses.ResponseNewParamsInputUnion{
		OfInputItemList: responses.ResponseInputParam{
			responses.ResponseInputItemUnionParam{
				OfMessage: &responses.EasyInputMessageParam{
					Role: responses.EasyInputMessageRoleUser,
					Content: responses.EasyInputMessageContentUnionParam{
						OfInputItemContentList: responses.ResponseInputMessageContentListParam{
							responses.ResponseInputContentUnionParam{
								OfInputText: &responses.ResponseInputTextParam{
									Text: scanPrompt,
								},
							},
							responses.ResponseInputContentUnionParam{
								OfInputImage: &responses.ResponseInputImageParam{
									ImageURL: param.NewOpt(dataURL),
									Detail:   responses.ResponseInputImageDetailAuto,
								},
							},
						},
					},
				},
			},
		},
	}
}

func extractionSchema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaJSON, err := json.Marshal(reflector.Reflect(invoiceExtraction{}))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return schemaMap, nil
}

func toScanResult(e *invoiceExtraction) (*ports.ScanResult, error) {
	invoice := domain.SupplierInvoice{
		SupplierName:  e.SupplierName,
		InvoiceNumber: e.InvoiceNumber,
		RawText:       e.RawText,
		Status:        "scanned",
	}

	if e.InvoiceDate != "" {
		if d, err := time.Parse("2006-01-02", e.InvoiceDate); err == nil {
			invoice.InvoiceDate = d
		}
	}
	if e.TotalAmount != "" {
		total, err := decimal.NewFromString(e.TotalAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid total_amount %q: %w", e.TotalAmount, err)
		}
		invoice.TotalAmount = total
	}

	for _, p := range e.Products {
		product := domain.InvoiceProduct{
			Description: p.Description,
			Model:       p.Model,
			Quantity:    p.Quantity,
			IMEIs:       p.IMEIs,
		}
		if p.UnitPrice != "" {
			price, err := decimal.NewFromString(p.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("invalid unit_price %q: %w", p.UnitPrice, err)
			}
			product.UnitPrice = price
		}
		invoice.Products = append(invoice.Products, product)
	}

	confidence := e.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &ports.ScanResult{Invoice: invoice, Confidence: confidence}, nil
}
