// internal/handlers/export_test.go
package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
	"github.com/phonedesk/phonedesk-be/internal/handlers"
	"github.com/phonedesk/phonedesk-be/test/helpers"
	"github.com/phonedesk/phonedesk-be/test/mocks"
)

func TestExportHandler_ExportExcel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sale := helpers.CreateTestSale()

	sales := mocks.NewMockSaleRepository(ctrl)
	sales.EXPECT().
		List(gomock.Any(), gomock.Any()).
		Return(&ports.SaleListResult{
			Sales:      []*domain.Sale{sale},
			Page:       1,
			PageSize:   500,
			TotalCount: 1,
			TotalPages: 1,
		}, nil)

	cache := mocks.NewMockCacheRepository(ctrl)

	handler := handlers.NewExportHandler(sales, cache, helpers.TestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/sales.xlsx", nil)
	w := httptest.NewRecorder()

	handler.ExportExcel(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sales_export_")

	// The produced workbook must round-trip: one header row plus one row per
	// sale line.
	file, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Sales", sheet.Name)
	assert.Equal(t, 1+len(sale.Items), sheet.MaxRow)

	headerCell, err := sheet.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Sale Number", headerCell.Value)

	numberCell, err := sheet.Cell(1, 0)
	require.NoError(t, err)
	assert.Equal(t, sale.SaleNumber, numberCell.Value)

	imeiCell, err := sheet.Cell(1, 6)
	require.NoError(t, err)
	assert.Equal(t, sale.Items[0].IMEI, imeiCell.Value)
}

func TestExportHandler_ExportJSON(t *testing.T) {
	t.Run("cache_miss_builds_export", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sale := helpers.CreateTestSale()

		sales := mocks.NewMockSaleRepository(ctrl)
		sales.EXPECT().
			List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, params ports.SaleListParams) (*ports.SaleListResult, error) {
				assert.Equal(t, "completed", params.Status)
				return &ports.SaleListResult{
					Sales:      []*domain.Sale{sale},
					Page:       1,
					PageSize:   500,
					TotalCount: 1,
					TotalPages: 1,
				}, nil
			})

		cache := mocks.NewMockCacheRepository(ctrl)
		cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("cache miss"))
		// The response is cached on a goroutine after the body is written;
		// block until it lands so the controller sees the call.
		cacheWritten := make(chan struct{})
		cache.EXPECT().
			Set(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, _ string, _ any) error {
				close(cacheWritten)
				return nil
			})

		handler := handlers.NewExportHandler(sales, cache, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/export/sales.json?status=completed", nil)
		w := httptest.NewRecorder()

		handler.ExportJSON(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

		var resp handlers.JSONExportResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Sales, len(sale.Items))
		assert.Equal(t, sale.SaleNumber, resp.Sales[0].SaleNumber)
		assert.Equal(t, len(sale.Items), resp.Metadata.TotalRows)

		select {
		case <-cacheWritten:
		case <-time.After(5 * time.Second):
			t.Fatal("export was never cached")
		}
	})

	t.Run("cache_hit_short_circuits", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cached := []byte(`{"sales":[],"metadata":{"total_rows":0}}`)

		sales := mocks.NewMockSaleRepository(ctrl)

		cache := mocks.NewMockCacheRepository(ctrl)
		cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, _ string, dest any) error {
				*dest.(*[]byte) = cached
				return nil
			})

		handler := handlers.NewExportHandler(sales, cache, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/export/sales.json", nil)
		w := httptest.NewRecorder()

		handler.ExportJSON(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
		assert.Equal(t, cached, w.Body.Bytes())
	})
}
