package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// These tests cover the synchronous validation layer only: every request
// here must be rejected before any store access happens.

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/promo-codes/generate", GeneratePromoCodes)
	r.POST("/events/product-catalog/created", CatalogCreated)
	r.POST("/events/product-catalog/updated", CatalogUpdated)
	r.POST("/events/inventory/items/added", InventoryAdded)
	r.POST("/events/inventory/items/removed", InventoryRemoved)
	r.POST("/events/promo-codes/cancelled", PromoCodesCancelled)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var envelope map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return rec, envelope
}

// A caller-supplied correlation id must come back as the ack's process_id;
// the context is seeded by the correlation middleware in production.
func TestRequestProcessId_ReusesCorrelationId(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	c.Request = req.WithContext(utils.SetProcessIdInContext(req.Context(), "corr-123"))

	if got := requestProcessId(c); got != "corr-123" {
		t.Fatalf("expected supplied correlation id echoed, got %q", got)
	}
}

func TestRequestProcessId_MintsUuidWhenAbsent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	got := requestProcessId(c)
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("expected a uuid process id, got %q: %v", got, err)
	}
}

func TestCatalogCreated_EmptyProductsRejected(t *testing.T) {
	rec, envelope := postJSON(t, testRouter(), "/events/product-catalog/created", `{"products":[]}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if envelope["ok"] != false {
		t.Fatalf("expected ok:false, got %v", envelope["ok"])
	}
	if envelope["code"] != float64(http.StatusBadRequest) {
		t.Fatalf("expected code 400 in envelope, got %v", envelope["code"])
	}
	if _, hasMeta := envelope["meta"].(map[string]any); !hasMeta {
		t.Fatalf("expected meta.timestamp, got %v", envelope["meta"])
	}
}

func TestCatalogCreated_BarcodeCharsetRejected(t *testing.T) {
	body := `{"products":[{"id":"P-1","name":"Soap","barcode":"AB_123!","price":"10","unit":"pcs"}]}`
	rec, envelope := postJSON(t, testRouter(), "/events/product-catalog/created", body, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	result, _ := envelope["result"].(map[string]any)
	if _, found := result["products[0].barcode"]; !found {
		t.Fatalf("expected field error for products[0].barcode, got %v", result)
	}
}

func TestCatalogUpdated_NegativePriceRejected(t *testing.T) {
	body := `{"products":[{"id":"P-1","name":"Soap","barcode":"AB-123","price":"-1","unit":"pcs"}]}`
	rec, envelope := postJSON(t, testRouter(), "/events/product-catalog/updated", body, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	result, _ := envelope["result"].(map[string]any)
	if _, found := result["products[0].price"]; !found {
		t.Fatalf("expected field error for products[0].price, got %v", result)
	}
}

func TestCatalogCreated_MalformedSequenceHeaderRejected(t *testing.T) {
	body := `{"products":[{"id":"P-1","name":"Soap","barcode":"AB-123","price":"10","unit":"pcs"}]}`
	rec, _ := postJSON(t, testRouter(), "/events/product-catalog/created", body, map[string]string{
		SequenceHeader: "not-a-number",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed %s, got %d", SequenceHeader, rec.Code)
	}
}

func TestInventoryAdded_MissingTotalRejected(t *testing.T) {
	body := `{"items":[{"product_id":"P-1","branch_id":"B-1","quantity":"5","previous_quantity":"10"}]}`
	rec, envelope := postJSON(t, testRouter(), "/events/inventory/items/added", body, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	result, _ := envelope["result"].(map[string]any)
	if _, found := result["items[0].total_quantity"]; !found {
		t.Fatalf("expected field error for items[0].total_quantity, got %v", result)
	}
}

func TestInventoryRemoved_QuantityGranularityRejected(t *testing.T) {
	body := `{"items":[{"product_id":"P-1","branch_id":"B-1","quantity":"0.0001","previous_quantity":"10"}]}`
	rec, envelope := postJSON(t, testRouter(), "/events/inventory/items/removed", body, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	result, _ := envelope["result"].(map[string]any)
	if _, found := result["items[0].quantity"]; !found {
		t.Fatalf("expected field error for items[0].quantity, got %v", result)
	}
}

func TestInventoryRemoved_EmptyItemsRejected(t *testing.T) {
	rec, _ := postJSON(t, testRouter(), "/events/inventory/items/removed", `{"items":[]}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGeneratePromoCodes_MissingFieldsRejected(t *testing.T) {
	rec, envelope := postJSON(t, testRouter(), "/promo-codes/generate", `{"total_amount":"100"}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if envelope["message"] != "validation failed" {
		t.Fatalf("expected validation failure message, got %v", envelope["message"])
	}
}

func TestPromoCodesCancelled_EmptyCancelledItemsRejected(t *testing.T) {
	body := `{"receipt_id":"R-1","branch_id":"B-1","cashier_id":"C-1","cancelled_items":[]}`
	rec, _ := postJSON(t, testRouter(), "/events/promo-codes/cancelled", body, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
