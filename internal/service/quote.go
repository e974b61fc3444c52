// Package service contains the order verification flow: the server-side
// recomputation that turns an untrusted client quote into a persisted order.
package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"refab-api/internal/cache"
	"refab-api/internal/catalog"
	"refab-api/internal/dispatch"
	"refab-api/internal/model"
	"refab-api/internal/pricing"
	"refab-api/internal/repository"
	"refab-api/pkg/apierror"
	"refab-api/pkg/uid"
)

const (
	// DefaultPriceTolerance is the maximum accepted absolute difference
	// between the client-declared price and the server recomputation, in
	// whole currency units. It absorbs client-side rounding drift from
	// stale catalog snapshots without opening the door to tampering.
	DefaultPriceTolerance = 5

	idempotencyKeyPrefix = "refab:idem:"
	idempotencyTTL       = 24 * time.Hour

	orderIDCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	orderIDLength  = 8
)

// QuoteService verifies, persists and dispatches order submissions. The
// client-declared price is never trusted: the server recomputes it from the
// catalog and the submitted parameters before anything is written.
type QuoteService struct {
	catalog   *catalog.Catalog
	repo      repository.QuoteRepository
	cache     cache.Cache
	runner    *dispatch.Runner
	tolerance int
}

// NewQuoteService creates a quote service. The cache backs the optional
// idempotency guard and may be nil to disable it; the runner may be nil
// when no post-persistence dispatch is wanted (tests).
func NewQuoteService(cat *catalog.Catalog, repo repository.QuoteRepository, c cache.Cache, runner *dispatch.Runner, tolerance int) *QuoteService {
	if tolerance < 0 {
		tolerance = DefaultPriceTolerance
	}
	return &QuoteService{
		catalog:   cat,
		repo:      repo,
		cache:     c,
		runner:    runner,
		tolerance: tolerance,
	}
}

// Submit verifies and persists an order submission. idempotencyKey is
// optional; when present, a repeated submission with the same key replays
// the original response instead of creating a second order.
//
// Error returns are *apierror.Error for client-attributable failures
// (missing fields, unknown device, price mismatch) and plain errors for
// infrastructure failures.
func (s *QuoteService) Submit(ctx context.Context, req *model.PriceQuoteRequest, idempotencyKey string) (*model.Quote, error) {
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	if q, ok := s.replayIdempotent(ctx, idempotencyKey); ok {
		log.Printf("[Order] Replaying idempotent submission key=%s order=%s", idempotencyKey, q.OrderID)
		return q, nil
	}

	entry, err := s.resolveDevice(req)
	if err != nil {
		return nil, err
	}

	q := &model.Quote{
		ID:             uid.New(),
		OrderID:        newOrderID(),
		TrackingToken:  uid.New(),
		Type:           req.Type,
		DeviceCategory: entry.Category,
		Brand:          entry.Brand,
		Model:          entry.Model,
		Storage:        req.Storage,
		ScreenQuality:  req.SelectedScreenQuality,
		DeliveryMethod: req.DeliveryMethod,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		CustomerAddr:   req.CustomerAddress,
		CustomerCity:   req.CustomerCity,
		CustomerZip:    req.CustomerZip,
		IsCompany:      req.IsCompany,
		Language:       req.Language,
		PartnerID:      req.PartnerID,
		Status:         model.QuoteStatusCreated,
		CreatedAt:      time.Now().UTC(),
	}

	switch req.Type {
	case model.QuoteBuyback:
		if err := s.verifyBuyback(entry, req, q); err != nil {
			return nil, err
		}
	case model.QuoteRepair:
		if err := s.priceRepair(entry, req, q); err != nil {
			return nil, err
		}
	}

	selections, err := json.Marshal(submissionSelections{
		Condition: req.Condition,
		Issues:    req.Issues,
		Storage:   req.Storage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode selections: %w", err)
	}
	q.SelectionsJSON = selections

	if err := s.repo.Insert(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	s.storeIdempotent(ctx, idempotencyKey, q)

	if s.runner != nil {
		if failed := s.runner.Run(ctx, q); failed > 0 {
			log.Printf("[Order] %d dispatcher(s) failed for order %s", failed, q.OrderID)
		}
	}
	return q, nil
}

// GetOrder retrieves a persisted order by its human-readable id.
func (s *QuoteService) GetOrder(ctx context.Context, orderID string) (*model.Quote, error) {
	q, err := s.repo.GetByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrQuoteNotFound) {
		return nil, apierror.NotFound("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return q, nil
}

// Track retrieves an order gated on its tracking token. A wrong token is
// indistinguishable from a missing order.
func (s *QuoteService) Track(ctx context.Context, orderID, trackingToken string) (*model.Quote, error) {
	q, err := s.repo.GetByTracking(ctx, orderID, trackingToken)
	if errors.Is(err, repository.ErrQuoteNotFound) {
		return nil, apierror.NotFound("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return q, nil
}

// EstimateBuyback computes a non-binding buyback offer for display.
func (s *QuoteService) EstimateBuyback(deviceType, brand, mdl string, cond model.ConditionAssessment) (int, error) {
	entry, err := s.catalog.Resolve(deviceType, brand, mdl)
	if err != nil {
		return 0, apierror.UnknownDevice()
	}
	price, err := pricing.ComputeBuyback(entry, cond)
	if errors.Is(err, pricing.ErrIncompleteAssessment) {
		return 0, apierror.BadRequest("Condition assessment incomplete")
	}
	return price, err
}

// EstimateRepair computes a non-binding repair estimate for display.
func (s *QuoteService) EstimateRepair(deviceType, brand, mdl string, issues []model.IssueID) (pricing.Estimate, error) {
	entry, err := s.catalog.Resolve(deviceType, brand, mdl)
	if err != nil {
		return pricing.Estimate{}, apierror.UnknownDevice()
	}
	est, err := pricing.ComputeRepair(entry, issues, s.catalog)
	if errors.Is(err, pricing.ErrNoIssues) {
		return pricing.Estimate{}, apierror.BadRequest("No repair issues selected")
	}
	return est, err
}

// verifyBuyback recomputes the buyback price and gates the submission on the
// tolerance. The persisted price is always the server computation, never the
// client's.
func (s *QuoteService) verifyBuyback(entry model.DeviceCatalogEntry, req *model.PriceQuoteRequest, q *model.Quote) error {
	cond := *req.Condition
	if req.Storage != "" && cond.Storage == "" {
		cond.Storage = req.Storage
	}
	serverPrice, err := pricing.ComputeBuyback(entry, cond)
	if err != nil {
		if errors.Is(err, pricing.ErrIncompleteAssessment) {
			return apierror.ValidationError()
		}
		return err
	}
	declared := *req.Price
	if math.Abs(declared-float64(serverPrice)) > float64(s.tolerance) {
		log.Printf("[Order] Price mismatch for %s %s: declared=%.2f server=%d", entry.Brand, entry.Model, declared, serverPrice)
		return apierror.PriceMismatch(serverPrice)
	}
	q.VerifiedPrice = serverPrice
	return nil
}

// priceRepair recomputes the repair total. Repair mismatches never reject
// the order: the shop confirms the final price at intake anyway, so a
// divergent client number is only worth a log line. Diagnostic-required
// selections carry no verifiable price at all.
func (s *QuoteService) priceRepair(entry model.DeviceCatalogEntry, req *model.PriceQuoteRequest, q *model.Quote) error {
	est, err := pricing.ComputeRepair(entry, req.Issues, s.catalog)
	if err != nil {
		if errors.Is(err, pricing.ErrNoIssues) {
			return apierror.ValidationError()
		}
		return err
	}
	if est.DiagnosticRequired {
		q.Diagnostic = true
		q.VerifiedPrice = 0
		return nil
	}
	serverPrice := est.SelectedTotal(req.SelectedScreenQuality)
	if declared := *req.Price; declared != float64(serverPrice) {
		log.Printf("[Order] Repair price divergence for %s %s: declared=%.2f server=%d", entry.Brand, entry.Model, declared, serverPrice)
	}
	q.VerifiedPrice = serverPrice
	return nil
}

func (s *QuoteService) resolveDevice(req *model.PriceQuoteRequest) (model.DeviceCatalogEntry, error) {
	var (
		entry model.DeviceCatalogEntry
		err   error
	)
	if req.DeviceType != "" {
		entry, err = s.catalog.Resolve(req.DeviceType, req.Brand, req.Model)
	} else {
		entry, err = s.catalog.ResolveByBrandModel(req.Brand, req.Model)
	}
	var unknown *catalog.ErrUnknownDevice
	if errors.As(err, &unknown) {
		return model.DeviceCatalogEntry{}, apierror.UnknownDevice()
	}
	return entry, err
}

func (s *QuoteService) replayIdempotent(ctx context.Context, key string) (*model.Quote, bool) {
	if key == "" || s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, idempotencyKeyPrefix+key)
	if err != nil {
		return nil, false
	}
	var q model.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, false
	}
	return &q, true
}

func (s *QuoteService) storeIdempotent(ctx context.Context, key string, q *model.Quote) {
	if key == "" || s.cache == nil {
		return
	}
	data, err := json.Marshal(q)
	if err != nil {
		return
	}
	if _, err := s.cache.SetNX(ctx, idempotencyKeyPrefix+key, data, idempotencyTTL); err != nil {
		log.Printf("[Order] Failed to store idempotency record for key %s: %v", key, err)
	}
}

// submissionSelections is the persisted snapshot of what the customer
// actually selected, kept verbatim for auditability.
type submissionSelections struct {
	Condition *model.ConditionAssessment `json:"condition,omitempty"`
	Issues    []model.IssueID            `json:"issues,omitempty"`
	Storage   string                     `json:"storage,omitempty"`
}

func validateSubmission(req *model.PriceQuoteRequest) error {
	if req == nil {
		return apierror.ValidationError()
	}
	if !req.Type.Valid() || req.Brand == "" || req.Model == "" || req.Price == nil {
		return apierror.ValidationError()
	}
	if req.CustomerName == "" || req.CustomerEmail == "" || req.DeliveryMethod == "" {
		return apierror.ValidationError()
	}
	switch req.DeliveryMethod {
	case model.DeliveryDropoff, model.DeliverySend, model.DeliveryCourier:
	default:
		return apierror.ValidationError()
	}
	if req.Type == model.QuoteBuyback && req.Condition == nil {
		return apierror.ValidationError()
	}
	return nil
}

// newOrderID generates a human-readable order id. The charset drops the
// ambiguous 0/O/1/I/L glyphs so the id survives being read over the phone.
func newOrderID() string {
	b := make([]byte, orderIDLength)
	if _, err := rand.Read(b); err != nil {
		return "RF-" + uid.New()[:orderIDLength]
	}
	for i := range b {
		b[i] = orderIDCharset[int(b[i])%len(orderIDCharset)]
	}
	return "RF-" + string(b)
}
