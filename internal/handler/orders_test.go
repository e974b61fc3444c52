package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"refab-api/internal/cache"
	"refab-api/internal/catalog"
	"refab-api/internal/handler"
	"refab-api/internal/repository"
	"refab-api/internal/router"
	"refab-api/internal/service"
	"refab-api/internal/session"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	repo, err := repository.NewSQLiteQuoteRepository(filepath.Join(t.TempDir(), "quotes.db"))
	if err != nil {
		t.Fatalf("failed to open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	mem := cache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })

	svc := service.NewQuoteService(cat, repo, mem, nil, service.DefaultPriceTolerance)
	sessions := session.NewStore(mem)

	return router.New(router.Config{
		HealthHandler:  handler.NewHealthHandler(repo, mem),
		OrderHandler:   handler.NewOrderHandler(svc),
		CatalogHandler: handler.NewCatalogHandler(cat),
		WizardHandler:  handler.NewWizardHandler(cat, sessions, svc),
	})
}

// orderBody is a complete iPhone 13 buyback submission whose server price
// is 189 (base 400 + 20 storage, perfect condition, x0.45 margin).
func orderBody(price float64) map[string]interface{} {
	return map[string]interface{}{
		"type":       "buyback",
		"deviceType": "smartphone",
		"brand":      "Apple",
		"model":      "iPhone 13",
		"storage":    "256GB",
		"condition": map[string]interface{}{
			"powersOn":          true,
			"fullyFunctional":   true,
			"isUnlocked":        true,
			"batteryHealthGood": true,
			"screenCondition":   "flawless",
			"bodyCondition":     "flawless",
		},
		"price":          price,
		"deliveryMethod": "send",
		"customerName":   "Ana Pereira",
		"customerEmail":  "ana@example.com",
		"customerPhone":  "+351900000000",
	}
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestSubmitOrderSuccess(t *testing.T) {
	h := newTestRouter(t)

	rec := postJSON(t, h, "/orders", orderBody(189))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Error("expected success=true")
	}
	if body["price"] != float64(189) {
		t.Errorf("expected price 189, got %v", body["price"])
	}
	for _, field := range []string{"id", "orderId", "trackingToken"} {
		if s, _ := body[field].(string); s == "" {
			t.Errorf("expected non-empty %s", field)
		}
	}
}

func TestSubmitOrderMissingFields(t *testing.T) {
	h := newTestRouter(t)

	body := orderBody(189)
	delete(body, "brand")
	rec := postJSON(t, h, "/orders", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["error"] != "Missing required fields" {
		t.Errorf("expected error %q, got %v", "Missing required fields", resp["error"])
	}
	if _, ok := resp["serverPrice"]; ok {
		t.Error("validation errors must not carry serverPrice")
	}
}

func TestSubmitOrderMalformedJSON(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubmitOrderPriceMismatch(t *testing.T) {
	h := newTestRouter(t)

	rec := postJSON(t, h, "/orders", orderBody(250))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["serverPrice"] != float64(189) {
		t.Errorf("expected serverPrice 189, got %v", resp["serverPrice"])
	}
	if s, _ := resp["error"].(string); s == "" {
		t.Error("expected an error message")
	}
}

func TestSubmitOrderToleranceBoundary(t *testing.T) {
	h := newTestRouter(t)

	for _, tc := range []struct {
		price float64
		want  int
	}{
		{189, http.StatusOK},
		{184, http.StatusOK},
		{194, http.StatusOK},
		{183, http.StatusUnprocessableEntity},
		{195, http.StatusUnprocessableEntity},
	} {
		rec := postJSON(t, h, "/orders", orderBody(tc.price))
		if rec.Code != tc.want {
			t.Errorf("price %.0f: expected %d, got %d", tc.price, tc.want, rec.Code)
		}
	}
}

func TestSubmitOrderUnknownDevice(t *testing.T) {
	h := newTestRouter(t)

	body := orderBody(189)
	body["model"] = "iPhone 99"
	rec := postJSON(t, h, "/orders", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSubmitOrderIdempotencyHeader(t *testing.T) {
	h := newTestRouter(t)

	data, _ := json.Marshal(orderBody(189))
	submit := func() map[string]interface{} {
		req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		return decodeBody(t, rec)
	}

	first := submit()
	second := submit()
	if first["orderId"] != second["orderId"] {
		t.Errorf("expected replayed orderId %v, got %v", first["orderId"], second["orderId"])
	}
}

func TestTrackOrder(t *testing.T) {
	h := newTestRouter(t)

	created := decodeBody(t, postJSON(t, h, "/orders", orderBody(189)))
	orderID := created["orderId"].(string)
	token := created["trackingToken"].(string)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/orders/%s/tracking?token=%s", orderID, token), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/orders/%s/tracking?token=%s", orderID, "wrong"), nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("wrong token should yield 404, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if decodeBody(t, rec)["status"] != "healthy" {
		t.Error("expected healthy status")
	}
}
