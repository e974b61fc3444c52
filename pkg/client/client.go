// Package client is the submission-side counterpart of the orders API. UI
// frontends use it to turn finished wizard state into an order request, show
// an instant estimate, and interpret the server's verification verdict.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"refab-api/internal/catalog"
	"refab-api/internal/model"
	"refab-api/internal/pricing"
	"refab-api/internal/wizard"
)

// FallbackBaseValue is the conservative base value used for display-only
// estimates when the local catalog snapshot cannot resolve the device. It is
// never submitted: the server always recomputes from its own catalog.
const FallbackBaseValue = 50

// PriceMismatchError is returned when the server rejects a buyback
// submission because the declared price diverged from its own computation.
// ServerPrice carries the authoritative offer so the UI can re-display it
// and let the user accept the corrected price.
type PriceMismatchError struct {
	ServerPrice int
	Message     string
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("%s (server price %d)", e.Message, e.ServerPrice)
}

// APIError is any other structured error response from the orders API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("orders api returned %d: %s", e.StatusCode, e.Message)
}

// SubmitResult is a successful order submission.
type SubmitResult struct {
	Success       bool   `json:"success"`
	ID            string `json:"id"`
	OrderID       string `json:"orderId"`
	Price         int    `json:"price"`
	TrackingToken string `json:"trackingToken"`
}

// Client submits verified quote requests to the orders API.
type Client struct {
	baseURL string
	http    *http.Client
	catalog *catalog.Catalog
}

// New creates a client for the given API base URL. The catalog is used for
// local display estimates only and may be nil when estimates are not needed.
func New(baseURL string, cat *catalog.Catalog) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		catalog: cat,
	}
}

// FromWizardState assembles an order submission from a finished wizard
// state. The declared price is the client-side estimate; the server verifies
// it before accepting the order.
func FromWizardState(st wizard.State, declaredPrice float64) *model.PriceQuoteRequest {
	cond := st.Condition
	if st.Storage != "" && cond.Storage == "" {
		cond.Storage = st.Storage
	}
	req := &model.PriceQuoteRequest{
		Type:                  st.Flow,
		DeviceType:            st.DeviceCategory,
		Brand:                 st.Brand,
		Model:                 st.Model,
		Storage:               st.Storage,
		Issues:                st.Issues,
		Price:                 &declaredPrice,
		SelectedScreenQuality: st.ScreenQuality,
		DeliveryMethod:        st.DeliveryMethod,
		CustomerName:          st.Contact.Name,
		CustomerEmail:         st.Contact.Email,
		CustomerPhone:         st.Contact.Phone,
	}
	if st.Flow == model.QuoteBuyback {
		req.Condition = &cond
	}
	return req
}

// EstimateBuyback computes a local, display-only buyback estimate. An
// unresolvable device falls back to a conservative base value instead of
// failing; the number is advisory and the server recomputes it at
// submission.
func (c *Client) EstimateBuyback(deviceType, brand, mdl string, cond model.ConditionAssessment) (int, error) {
	entry := model.DeviceCatalogEntry{
		Category:  deviceType,
		Brand:     brand,
		Model:     mdl,
		BaseValue: FallbackBaseValue,
	}
	if c.catalog != nil {
		if resolved, err := c.catalog.Resolve(deviceType, brand, mdl); err == nil {
			entry = resolved
		}
	}
	return pricing.ComputeBuyback(entry, cond)
}

// Submit posts an order to the server. A price-verification rejection comes
// back as *PriceMismatchError; other structured rejections as *APIError.
func (c *Client) Submit(ctx context.Context, req *model.PriceQuoteRequest) (*SubmitResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach orders api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		var result SubmitResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &result, nil
	}

	var errBody struct {
		Error       string `json:"error"`
		ServerPrice *int   `json:"serverPrice"`
	}
	if err := json.Unmarshal(body, &errBody); err != nil || errBody.Error == "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if resp.StatusCode == http.StatusUnprocessableEntity && errBody.ServerPrice != nil {
		return nil, &PriceMismatchError{ServerPrice: *errBody.ServerPrice, Message: errBody.Error}
	}
	return nil, &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
}
