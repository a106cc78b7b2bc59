// internal/handlers/invoice_handler_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
	"github.com/phonedesk/phonedesk-be/internal/handlers"
	"github.com/phonedesk/phonedesk-be/test/helpers"
	"github.com/phonedesk/phonedesk-be/test/mocks"
)

// newInvoiceHandler builds a handler for the CRUD paths. The scan flow needs
// the database and asynq client, so those tests stay in the e2e suite; here
// only the pre-upload validation of ScanInvoice is exercised.
func newInvoiceHandler(service ports.InvoiceService, store ports.ObjectStore) *handlers.InvoiceHandler {
	return handlers.NewInvoiceHandler(service, store, nil, nil, helpers.TestLogger(), 10)
}

func TestInvoiceHandler_CreateInvoice(t *testing.T) {
	tests := []struct {
		name           string
		payload        map[string]any
		setupMocks     func(*mocks.MockInvoiceService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "creates_invoice_and_returns_201",
			payload: map[string]any{
				"invoice_number": "INV-2026-042",
				"supplier_name":  "Dubai Phones FZE",
				"total_amount":   "700.00",
			},
			setupMocks: func(m *mocks.MockInvoiceService) {
				m.EXPECT().
					SaveInvoice(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, inv *domain.SupplierInvoice) error {
						assert.Equal(t, "Dubai Phones FZE", inv.SupplierName)
						inv.InvoiceID = uuid.New()
						return nil
					})
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.True(t, env.Success)

				var invoice domain.SupplierInvoice
				require.NoError(t, json.Unmarshal(env.Data, &invoice))
				assert.NotEqual(t, uuid.Nil, invoice.InvoiceID)
			},
		},
		{
			name:    "missing_supplier_is_a_bad_request",
			payload: map[string]any{"invoice_number": "INV-2026-042"},
			setupMocks: func(m *mocks.MockInvoiceService) {
				m.EXPECT().
					SaveInvoice(gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("validation failed: supplier_name is required"))
			},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.False(t, env.Success)
				assert.Contains(t, env.Message, "supplier_name is required")
			},
		},
		{
			name:    "storage_failure_maps_to_500",
			payload: map[string]any{"supplier_name": "Dubai Phones FZE"},
			setupMocks: func(m *mocks.MockInvoiceService) {
				m.EXPECT().
					SaveInvoice(gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("failed to save invoice: connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.Equal(t, "Failed to create invoice", env.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := mocks.NewMockInvoiceService(ctrl)
			tt.setupMocks(service)

			handler := newInvoiceHandler(service, nil)

			body, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreateInvoice(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.validateBody(t, w.Body.Bytes())
		})
	}
}

func TestInvoiceHandler_GetInvoice(t *testing.T) {
	invoice := helpers.CreateTestInvoice()

	t.Run("returns_invoice", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockInvoiceService(ctrl)
		service.EXPECT().
			GetInvoice(gomock.Any(), invoice.InvoiceID).
			Return(invoice, nil)

		handler := newInvoiceHandler(service, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+invoice.InvoiceID.String(), nil)
		req.SetPathValue("id", invoice.InvoiceID.String())
		w := httptest.NewRecorder()

		handler.GetInvoice(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w.Body.Bytes())
		var got domain.SupplierInvoice
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, invoice.SupplierName, got.SupplierName)
		assert.Len(t, got.Products, 1)
	})

	t.Run("invalid_uuid_is_a_bad_request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		handler := newInvoiceHandler(mocks.NewMockInvoiceService(ctrl), nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/not-a-uuid", nil)
		req.SetPathValue("id", "not-a-uuid")
		w := httptest.NewRecorder()

		handler.GetInvoice(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "Invalid invoice ID format", env.Message)
	})

	t.Run("unknown_invoice_maps_to_404", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		id := uuid.New()
		service := mocks.NewMockInvoiceService(ctrl)
		service.EXPECT().
			GetInvoice(gomock.Any(), id).
			Return(nil, fmt.Errorf("invoice %s: %w", id, ports.ErrNotFound))

		handler := newInvoiceHandler(service, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+id.String(), nil)
		req.SetPathValue("id", id.String())
		w := httptest.NewRecorder()

		handler.GetInvoice(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestInvoiceHandler_DeleteInvoice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	service := mocks.NewMockInvoiceService(ctrl)
	service.EXPECT().
		DeleteInvoice(gomock.Any(), id).
		Return(nil)

	handler := newInvoiceHandler(service, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/invoices/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	w := httptest.NewRecorder()

	handler.DeleteInvoice(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Success)

	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, id.String(), data["invoice_id"])
}

func TestInvoiceHandler_ListInvoices(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mocks.NewMockInvoiceService(ctrl)
	service.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, params ports.InvoiceListParams) (*ports.InvoiceListResult, error) {
			assert.Equal(t, "dubai", params.Supplier)
			assert.Equal(t, 100, params.PageSize)
			return &ports.InvoiceListResult{
				Invoices:   []*domain.SupplierInvoice{helpers.CreateTestInvoice()},
				Page:       1,
				PageSize:   100,
				TotalCount: 1,
				TotalPages: 1,
			}, nil
		})

	handler := newInvoiceHandler(service, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices?supplier=dubai&limit=500", nil)
	w := httptest.NewRecorder()

	handler.ListInvoices(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// multipartBody builds a multipart request body carrying a single file part.
func multipartBody(t *testing.T, fieldName, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{
		fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, fileName)}
	header["Content-Type"] = []string{contentType}

	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return buf, mw.FormDataContentType()
}

func TestInvoiceHandler_ScanInvoice_Validation(t *testing.T) {
	t.Run("missing_file_is_a_bad_request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		handler := newInvoiceHandler(mocks.NewMockInvoiceService(ctrl), nil)

		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		require.NoError(t, mw.WriteField("note", "no file here"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/scan", buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()

		handler.ScanInvoice(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "File is required", env.Message)
	})

	t.Run("unsupported_file_type_is_rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		handler := newInvoiceHandler(mocks.NewMockInvoiceService(ctrl), nil)

		buf, contentType := multipartBody(t, "file", "stock.xlsx",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			[]byte("not a scan"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/scan", buf)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.ScanInvoice(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "Only PDF, JPEG and PNG files are allowed", env.Message)
	})

	t.Run("store_failure_maps_to_500", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := mocks.NewMockObjectStore(ctrl)
		store.EXPECT().
			Upload(gomock.Any(), gomock.Any(), gomock.Any(), "application/pdf").
			Return("", fmt.Errorf("bucket unavailable"))

		handler := newInvoiceHandler(mocks.NewMockInvoiceService(ctrl), store)

		buf, contentType := multipartBody(t, "file", "invoice.pdf",
			"application/pdf", []byte("%PDF-1.4"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/scan", buf)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.ScanInvoice(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "Failed to store upload", env.Message)
	})
}

func TestInvoiceHandler_ScanStatus_InvalidJobID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := newInvoiceHandler(mocks.NewMockInvoiceService(ctrl), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/scan/not-a-uuid", nil)
	req.SetPathValue("jobId", "not-a-uuid")
	w := httptest.NewRecorder()

	handler.ScanStatus(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "Invalid job ID format", env.Message)
}
