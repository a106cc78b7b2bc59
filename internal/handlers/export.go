// internal/handlers/export.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	redis_a "github.com/phonedesk/phonedesk-be/internal/adapters/redis_adapter"
	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// exportPageSize is how many sales are pulled per repository page while
// streaming an export.
const exportPageSize = 500

// ExportParams defines parameters for export operations
type ExportParams struct {
	Status   string     `json:"status"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
}

// SaleExportRow is one flattened line of the export: a sale item joined with
// its parent sale, so per-device cost and profit stay visible.
type SaleExportRow struct {
	SaleNumber    string          `json:"sale_number"`
	SaleDate      time.Time       `json:"sale_date"`
	CustomerName  string          `json:"customer_name"`
	Model         string          `json:"model"`
	Brand         string          `json:"brand"`
	Storage       string          `json:"storage"`
	IMEI          string          `json:"imei"`
	Condition     string          `json:"condition"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Profit        decimal.Decimal `json:"profit"`
	SaleStatus    string          `json:"sale_status"`
	PaymentStatus string          `json:"payment_status"`
	SalesChannel  string          `json:"sales_channel"`
}

// ExportMetadata contains metadata about the export
type ExportMetadata struct {
	ExportDate time.Time `json:"export_date"`
	TotalRows  int       `json:"total_rows"`
	Status     string    `json:"status,omitempty"`
	DateFrom   *string   `json:"date_from,omitempty"`
	DateTo     *string   `json:"date_to,omitempty"`
}

// JSONExportResponse represents the JSON export response structure
type JSONExportResponse struct {
	Sales    []SaleExportRow `json:"sales"`
	Metadata ExportMetadata  `json:"metadata"`
}

// ExportHandler handles sales export operations
type ExportHandler struct {
	sales  ports.SaleRepository
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(sales ports.SaleRepository, cache ports.CacheRepository, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		sales:  sales,
		cache:  cache,
		logger: logger.With(slog.String("handler", "export")),
	}
}

// ExportExcel handles GET /api/v1/export/sales.xlsx
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseExportParams(r)

	rows, err := h.collectRows(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to collect export rows",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve sales data")
		return
	}

	excelData, err := h.generateExcelFile(rows)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("sales_export_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(excelData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(excelData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "Excel export completed",
		slog.Int("total_rows", len(rows)),
		slog.String("filename", filename))
}

// ExportJSON handles GET /api/v1/export/sales.json
func (h *ExportHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseExportParams(r)

	cacheKey := redis_a.BuildKey(redis_a.PrefixExport, "sales_json", h.cacheKeyFromParams(params))
	var cachedData []byte
	if err := h.cache.Get(ctx, cacheKey, &cachedData); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.Header().Set("Content-Length", strconv.Itoa(len(cachedData)))

		if _, err := w.Write(cachedData); err != nil {
			h.logger.ErrorContext(ctx, "failed to write cached JSON response",
				slog.String("error", err.Error()))
		}
		return
	}

	rows, err := h.collectRows(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to collect export rows",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve sales data")
		return
	}

	meta := ExportMetadata{
		ExportDate: time.Now(),
		TotalRows:  len(rows),
		Status:     params.Status,
	}
	if params.DateFrom != nil {
		s := params.DateFrom.Format("2006-01-02")
		meta.DateFrom = &s
	}
	if params.DateTo != nil {
		s := params.DateTo.Format("2006-01-02")
		meta.DateTo = &s
	}

	responseData, err := json.Marshal(JSONExportResponse{Sales: rows, Metadata: meta})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal JSON export",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to generate JSON")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.Header().Set("Content-Length", strconv.Itoa(len(responseData)))

	if _, err := w.Write(responseData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write JSON response",
			slog.String("error", err.Error()))
		return
	}

	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := h.cache.Set(cacheCtx, cacheKey, responseData); err != nil {
			h.logger.WarnContext(cacheCtx, "failed to cache JSON export",
				slog.String("error", err.Error()))
		}
	}()

	h.logger.InfoContext(ctx, "JSON export completed",
		slog.Int("total_rows", len(rows)))
}

func (h *ExportHandler) parseExportParams(r *http.Request) *ExportParams {
	params := &ExportParams{}

	params.Status = r.URL.Query().Get("status")

	if from := r.URL.Query().Get("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			params.DateFrom = &t
		}
	}
	if to := r.URL.Query().Get("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			params.DateTo = &t
		}
	}

	return params
}

// collectRows pages through the sale repository and flattens every sale line
// into an export row.
func (h *ExportHandler) collectRows(ctx context.Context, params *ExportParams) ([]SaleExportRow, error) {
	var rows []SaleExportRow

	listParams := ports.SaleListParams{
		Status:   params.Status,
		DateFrom: params.DateFrom,
		DateTo:   params.DateTo,
		Page:     1,
		PageSize: exportPageSize,
	}

	for {
		page, err := h.sales.List(ctx, listParams)
		if err != nil {
			return nil, fmt.Errorf("failed to list sales: %w", err)
		}

		for _, sale := range page.Sales {
			rows = append(rows, flattenSale(sale)...)
		}

		if listParams.Page >= page.TotalPages {
			break
		}
		listParams.Page++
	}

	return rows, nil
}

func flattenSale(sale *domain.Sale) []SaleExportRow {
	rows := make([]SaleExportRow, 0, len(sale.Items))
	for _, item := range sale.Items {
		rows = append(rows, SaleExportRow{
			SaleNumber:    sale.SaleNumber,
			SaleDate:      sale.CreatedAt,
			CustomerName:  sale.CustomerName,
			Model:         item.Model,
			Brand:         item.Brand,
			Storage:       item.Storage,
			IMEI:          item.IMEI,
			Condition:     string(item.Condition),
			CostPrice:     item.CostPrice,
			SalePrice:     item.SalePrice,
			Profit:        item.Profit,
			SaleStatus:    string(sale.Status),
			PaymentStatus: string(sale.PaymentStatus),
			SalesChannel:  sale.SalesChannel,
		})
	}
	return rows
}

var excelHeaders = []string{
	"Sale Number", "Sale Date", "Customer", "Model", "Brand", "Storage",
	"IMEI", "Condition", "Cost Price", "Sale Price", "Profit",
	"Sale Status", "Payment Status", "Channel",
}

func (h *ExportHandler) generateExcelFile(rows []SaleExportRow) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Sales")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range excelHeaders {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, row := range rows {
		dataRow := sheet.AddRow()
		for _, value := range []string{
			row.SaleNumber,
			row.SaleDate.Format("2006-01-02 15:04:05"),
			row.CustomerName,
			row.Model,
			row.Brand,
			row.Storage,
			row.IMEI,
			row.Condition,
			row.CostPrice.StringFixed(2),
			row.SalePrice.StringFixed(2),
			row.Profit.StringFixed(2),
			row.SaleStatus,
			row.PaymentStatus,
			row.SalesChannel,
		} {
			cell := dataRow.AddCell()
			cell.Value = value
		}
	}

	for i := range excelHeaders {
		sheet.SetColWidth(i, i, 15)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}

func (h *ExportHandler) cacheKeyFromParams(params *ExportParams) string {
	key := "all"
	if params.Status != "" {
		key = params.Status
	}
	if params.DateFrom != nil {
		key += "_from_" + params.DateFrom.Format("20060102")
	}
	if params.DateTo != nil {
		key += "_to_" + params.DateTo.Format("20060102")
	}
	return key
}
