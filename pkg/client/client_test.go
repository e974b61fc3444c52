package client_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"refab-api/internal/cache"
	"refab-api/internal/catalog"
	"refab-api/internal/handler"
	"refab-api/internal/model"
	"refab-api/internal/repository"
	"refab-api/internal/router"
	"refab-api/internal/service"
	"refab-api/internal/session"
	"refab-api/internal/wizard"
	"refab-api/pkg/client"
)

func boolp(b bool) *bool { return &b }

func newTestServer(t *testing.T) (*httptest.Server, *catalog.Catalog) {
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
	srv := httptest.NewServer(router.New(router.Config{
		OrderHandler:   handler.NewOrderHandler(svc),
		CatalogHandler: handler.NewCatalogHandler(cat),
		WizardHandler:  handler.NewWizardHandler(cat, session.NewStore(mem), svc),
	}))
	t.Cleanup(srv.Close)
	return srv, cat
}

func finishedBuybackState(t *testing.T, cat *catalog.Catalog) wizard.State {
	t.Helper()

	m, err := wizard.New(cat, model.QuoteBuyback)
	if err != nil {
		t.Fatal(err)
	}
	m.SetDeviceCategory("smartphone")
	m.SetBrandModel("Apple", "iPhone 13")
	m.SetStorage("256GB")
	m.SetPowersOn(true)
	m.SetFullyFunctional(true)
	m.SetUnlocked(true)
	m.SetBatteryHealthGood(true)
	m.SetScreenCondition(model.ScreenFlawless)
	m.SetBodyCondition(model.BodyFlawless)
	m.SetDeliveryMethod(model.DeliverySend)
	m.SetContact(wizard.Contact{Name: "Ana Pereira", Email: "ana@example.com", Phone: "+351900000000"})
	return m.State()
}

func TestClientSubmitsWizardState(t *testing.T) {
	srv, cat := newTestServer(t)
	c := client.New(srv.URL, cat)

	st := finishedBuybackState(t, cat)
	estimate, err := c.EstimateBuyback(st.DeviceCategory, st.Brand, st.Model, st.Condition)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	if estimate != 189 {
		t.Fatalf("expected local estimate 189, got %d", estimate)
	}

	result, err := c.Submit(context.Background(), client.FromWizardState(st, float64(estimate)))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !result.Success || result.Price != 189 {
		t.Errorf("expected accepted order at 189, got %+v", result)
	}
	if result.OrderID == "" || result.TrackingToken == "" {
		t.Error("expected order id and tracking token")
	}
}

func TestClientSurfacesPriceMismatch(t *testing.T) {
	srv, cat := newTestServer(t)
	c := client.New(srv.URL, cat)

	st := finishedBuybackState(t, cat)
	_, err := c.Submit(context.Background(), client.FromWizardState(st, 500))

	var mismatch *client.PriceMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected PriceMismatchError, got %v", err)
	}
	if mismatch.ServerPrice != 189 {
		t.Errorf("expected server price 189, got %d", mismatch.ServerPrice)
	}
}

func TestClientSurfacesValidationError(t *testing.T) {
	srv, cat := newTestServer(t)
	c := client.New(srv.URL, cat)

	st := finishedBuybackState(t, cat)
	st.Contact.Email = ""
	req := client.FromWizardState(st, 189)

	_, err := c.Submit(context.Background(), req)
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != 400 {
		t.Errorf("expected status 400, got %d", apiErr.StatusCode)
	}
}

func TestClientFallbackEstimateForUnknownDevice(t *testing.T) {
	_, cat := newTestServer(t)
	c := client.New("http://unused", cat)

	cond := model.ConditionAssessment{
		PowersOn:        boolp(true),
		FullyFunctional: boolp(true),
		IsUnlocked:      boolp(true),
	}
	price, err := c.EstimateBuyback("smartphone", "Apple", "iPhone 99", cond)
	if err != nil {
		t.Fatalf("fallback estimate failed: %v", err)
	}
	// 50 x 0.45 floored.
	if price != 22 {
		t.Errorf("expected fallback estimate 22, got %d", price)
	}
}
