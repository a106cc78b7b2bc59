//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/phonedesk/phonedesk-be/internal/adapters/db"
	redis_a "github.com/phonedesk/phonedesk-be/internal/adapters/redis_adapter"
	"github.com/phonedesk/phonedesk-be/internal/core/services"
	"github.com/phonedesk/phonedesk-be/internal/handlers"
	"github.com/phonedesk/phonedesk-be/test/helpers"
)

type SalesE2ESuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis
}

func (s *SalesE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *SalesE2ESuite) TearDownSuite() {
	s.server.Close()
}

// startTestServer wires the real repositories, services and handlers
// against the containerized database and the in-memory Redis.
func (s *SalesE2ESuite) startTestServer() *httptest.Server {
	logger := helpers.TestLogger()
	cache := redis_a.NewCache(s.testRedis.Client, time.Minute, logger)

	lotRepo := db.NewLotRepository(s.testDB.Database, logger)
	saleRepo := db.NewSaleRepository(s.testDB.Database, logger)
	customerRepo := db.NewCustomerRepository(s.testDB.Database, logger)
	invoiceRepo := db.NewInvoiceRepository(s.testDB.Database, logger)
	testRepo := db.NewDeviceTestRepository(s.testDB.Database, logger)

	ledgerService := services.NewLedgerService(lotRepo, cache, logger)
	customerService := services.NewCustomerService(customerRepo, logger)
	saleService := services.NewSaleService(saleRepo, ledgerService, customerService, cache, logger)
	invoiceService := services.NewInvoiceService(invoiceRepo, nil, logger)
	testService := services.NewDeviceTestService(testRepo, logger)
	lifecycleService := services.NewLifecycleService(lotRepo, saleRepo, invoiceRepo, testRepo, cache, logger)

	inventoryHandler := handlers.NewInventoryHandler(ledgerService, logger)
	saleHandler := handlers.NewSaleHandler(saleService, customerService, logger)
	customerHandler := handlers.NewCustomerHandler(customerService, logger)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, nil, s.testDB.Database, nil, logger, 10)
	deviceTestHandler := handlers.NewDeviceTestHandler(testService, logger)
	lifecycleHandler := handlers.NewLifecycleHandler(lifecycleService, logger)
	exportHandler := handlers.NewExportHandler(saleRepo, cache, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/inventory/{id}", inventoryHandler.GetLot)
	mux.HandleFunc("GET /api/v1/inventory", inventoryHandler.ListLots)
	mux.HandleFunc("POST /api/v1/inventory", inventoryHandler.CreateLot)
	mux.HandleFunc("PUT /api/v1/inventory/{id}", inventoryHandler.UpdateLot)
	mux.HandleFunc("DELETE /api/v1/inventory/{id}", inventoryHandler.DeleteLot)
	mux.HandleFunc("GET /api/v1/sales/stats", saleHandler.GetStats)
	mux.HandleFunc("GET /api/v1/sales/{id}", saleHandler.GetSale)
	mux.HandleFunc("GET /api/v1/sales", saleHandler.ListSales)
	mux.HandleFunc("POST /api/v1/sales", saleHandler.CreateSale)
	mux.HandleFunc("PUT /api/v1/sales/{id}", saleHandler.UpdateSale)
	mux.HandleFunc("DELETE /api/v1/sales/{id}", saleHandler.DeleteSale)
	mux.HandleFunc("GET /api/v1/customers/{id}", customerHandler.GetCustomer)
	mux.HandleFunc("GET /api/v1/customers", customerHandler.ListCustomers)
	mux.HandleFunc("POST /api/v1/customers", customerHandler.CreateCustomer)
	mux.HandleFunc("GET /api/v1/invoices/{id}", invoiceHandler.GetInvoice)
	mux.HandleFunc("GET /api/v1/invoices", invoiceHandler.ListInvoices)
	mux.HandleFunc("POST /api/v1/invoices", invoiceHandler.CreateInvoice)
	mux.HandleFunc("POST /api/v1/tests", deviceTestHandler.RecordTest)
	mux.HandleFunc("GET /api/v1/tests", deviceTestHandler.ListTests)
	mux.HandleFunc("GET /api/v1/imei/{imei}", lifecycleHandler.GetHistory)
	mux.HandleFunc("GET /api/v1/export/sales.xlsx", exportHandler.ExportExcel)
	mux.HandleFunc("GET /api/v1/export/sales.json", exportHandler.ExportJSON)

	return httptest.NewServer(mux)
}

func (s *SalesE2ESuite) TestCompleteSaleWorkflow() {
	const imei = "490154203237518"

	// 1. Receive a lot with one tracked device
	lotReq := map[string]interface{}{
		"model":        "iPhone 13",
		"brand":        "Apple",
		"storage":      "128GB",
		"cost_price":   "380.00",
		"retail_price": "520.00",
		"devices": []map[string]interface{}{
			{"imei": imei, "condition": "used", "grade": "A"},
		},
	}

	resp := s.makeRequest("POST", "/inventory", lotReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var lot map[string]interface{}
	s.decodeData(resp, &lot)
	lotID := lot["lot_id"].(string)
	s.NotEmpty(lotID)

	// 2. Register the buyer
	customerReq := map[string]interface{}{
		"name":  "E2E Buyer",
		"phone": "+35699112233",
		"type":  "retail",
	}

	resp = s.makeRequest("POST", "/customers", customerReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var customer map[string]interface{}
	s.decodeData(resp, &customer)
	customerID := customer["customer_id"].(string)

	// 3. Sell the device
	saleReq := map[string]interface{}{
		"customer_id":    customerID,
		"customer_name":  "E2E Buyer",
		"payment_status": "paid",
		"items": []map[string]interface{}{
			{
				"lot_id":     lotID,
				"imei":       imei,
				"model":      "iPhone 13",
				"cost_price": "380.00",
				"sale_price": "520.00",
			},
		},
	}

	resp = s.makeRequest("POST", "/sales", saleReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var sale map[string]interface{}
	s.decodeData(resp, &sale)
	s.Contains(sale["sale_number"], "SL")
	s.Equal("140", sale["total_profit"].(string)[:3])

	// 4. Selling the same device again degrades the line to a manual one:
	// the sale still goes through but no longer claims inventory.
	resp = s.makeRequest("POST", "/sales", saleReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var secondSale map[string]interface{}
	s.decodeData(resp, &secondSale)
	secondItems := secondSale["items"].([]interface{})
	s.Nil(secondItems[0].(map[string]interface{})["lot_id"])

	// 5. The IMEI timeline shows intake and sale
	resp = s.makeRequest("GET", "/imei/"+imei, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var history map[string]interface{}
	s.decodeData(resp, &history)
	s.Equal(true, history["found"])
	timeline := history["timeline"].([]interface{})
	s.GreaterOrEqual(len(timeline), 2)

	// 6. The buyer's lifetime stats reflect both purchases
	resp = s.makeRequest("GET", "/customers/"+customerID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	s.decodeData(resp, &customer)
	s.EqualValues(2, customer["total_purchases"])

	// 7. Aggregated stats include the sale
	resp = s.makeRequest("GET", "/sales/stats", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var stats map[string]interface{}
	s.decodeData(resp, &stats)
	allTime := stats["all_time"].(map[string]interface{})
	s.GreaterOrEqual(allTime["count"].(float64), float64(1))
}

func (s *SalesE2ESuite) TestDeviceTestTimeline() {
	const imei = "356938035643809"

	lotReq := map[string]interface{}{
		"model": "Galaxy S23",
		"brand": "Samsung",
		"devices": []map[string]interface{}{
			{"imei": imei, "condition": "refurbished"},
		},
	}
	resp := s.makeRequest("POST", "/inventory", lotReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	testReq := map[string]interface{}{
		"imei":        imei,
		"model":       "Galaxy S23",
		"result":      "passed",
		"battery_pct": 87,
		"checks":      map[string]string{"screen": "ok", "speaker": "ok"},
		"technician":  "e2e",
	}
	resp = s.makeRequest("POST", "/tests", testReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp = s.makeRequest("GET", "/imei/"+imei, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var history map[string]interface{}
	s.decodeData(resp, &history)
	s.Equal(true, history["found"])

	tests := history["tests"].([]interface{})
	s.Len(tests, 1)
}

func (s *SalesE2ESuite) TestInvoiceCRUD() {
	invoiceReq := map[string]interface{}{
		"supplier_name":  "HK Wholesale Ltd",
		"invoice_number": "INV-2026-081",
		"invoice_date":   "2026-08-10T00:00:00Z",
		"total_amount":   "7600.00",
		"products": []map[string]interface{}{
			{"model": "iPhone 13", "quantity": 20, "unit_price": "380.00"},
		},
	}

	resp := s.makeRequest("POST", "/invoices", invoiceReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var invoice map[string]interface{}
	s.decodeData(resp, &invoice)
	invoiceID := invoice["invoice_id"].(string)

	resp = s.makeRequest("GET", "/invoices/"+invoiceID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	s.decodeData(resp, &invoice)
	s.Equal("HK Wholesale Ltd", invoice["supplier_name"])

	resp = s.makeRequest("GET", "/invoices?supplier=HK", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *SalesE2ESuite) TestConcurrentSales() {
	// Ten devices in one lot, ten concurrent buyers for distinct IMEIs.
	devices := make([]map[string]interface{}, 10)
	imeis := make([]string, 10)
	for i := range devices {
		imeis[i] = fmt.Sprintf("86123456789%04d", i)
		devices[i] = map[string]interface{}{"imei": imeis[i]}
	}

	lotReq := map[string]interface{}{
		"model":   "Pixel 8",
		"brand":   "Google",
		"devices": devices,
	}
	resp := s.makeRequest("POST", "/inventory", lotReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var lot map[string]interface{}
	s.decodeData(resp, &lot)
	lotID := lot["lot_id"].(string)

	done := make(chan int, len(imeis))
	for i, imei := range imeis {
		go func(idx int, imei string) {
			saleReq := map[string]interface{}{
				"customer_name": fmt.Sprintf("Concurrent Buyer %d", idx),
				"items": []map[string]interface{}{
					{
						"lot_id":     lotID,
						"imei":       imei,
						"model":      "Pixel 8",
						"sale_price": "600.00",
					},
				},
			}
			resp := s.makeRequest("POST", "/sales", saleReq)
			done <- resp.StatusCode
		}(i, imei)
	}

	for range imeis {
		s.Equal(http.StatusCreated, <-done)
	}

	// All ten devices are now sold
	resp = s.makeRequest("GET", "/inventory/"+lotID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	s.decodeData(resp, &lot)
	for _, d := range lot["devices"].([]interface{}) {
		s.Equal(true, d.(map[string]interface{})["is_sold"])
	}
}

func (s *SalesE2ESuite) TestExportExcel() {
	resp := s.makeRequest("GET", "/export/sales.xlsx", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	resp.Body.Close()
}

// Helper methods

func (s *SalesE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.NoError(err)

	return resp
}

// decodeData unwraps the {"success":true,"data":...} envelope.
func (s *SalesE2ESuite) decodeData(resp *http.Response, v interface{}) {
	defer resp.Body.Close()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	s.NoError(json.NewDecoder(resp.Body).Decode(&env))
	s.True(env.Success, "expected success envelope, got message: %s", env.Message)
	s.NoError(json.Unmarshal(env.Data, v))
}

func TestSalesE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(SalesE2ESuite))
}
