package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"refab-api/internal/catalog"
	"refab-api/internal/model"
	"refab-api/internal/service"
	"refab-api/internal/session"
	"refab-api/internal/wizard"
	"refab-api/pkg/apierror"
	"refab-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// WizardHandler manages server-persisted wizard sessions and instant price
// estimates. The wizard itself runs wherever the UI runs; these endpoints
// only persist, restore and price its state.
type WizardHandler struct {
	catalog      *catalog.Catalog
	sessions     *session.Store
	quoteService *service.QuoteService
}

// NewWizardHandler creates a new wizard handler.
func NewWizardHandler(cat *catalog.Catalog, sessions *session.Store, quoteService *service.QuoteService) *WizardHandler {
	return &WizardHandler{
		catalog:      cat,
		sessions:     sessions,
		quoteService: quoteService,
	}
}

// CreateSessionRequest starts a wizard session.
type CreateSessionRequest struct {
	Flow model.QuoteType `json:"flow"`
}

// SessionResponse carries a resume token and the current wizard state.
type SessionResponse struct {
	Token string       `json:"token"`
	State wizard.State `json:"state"`
}

// CreateSession handles POST /wizard/sessions. Deep-link parameters
// ("device", "brand", "model") may be supplied as query parameters; a triple
// that resolves against the catalog fast-forwards the new session past the
// device selection steps.
func (h *WizardHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	m, err := wizard.New(h.catalog, req.Flow)
	if err != nil {
		response.Error(w, apierror.BadRequest("flow must be buyback or repair"))
		return
	}
	m.InitFromDeepLink(r.URL.Query())

	data, err := m.Serialize()
	if err != nil {
		response.Error(w, err)
		return
	}
	token, err := h.sessions.Save(r.Context(), data)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, SessionResponse{Token: token, State: m.State()})
}

// GetSession handles GET /wizard/sessions/{token}
func (h *WizardHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	data, err := h.sessions.Load(r.Context(), token)
	if errors.Is(err, session.ErrNotFound) {
		response.Error(w, apierror.NotFound("Session not found or expired"))
		return
	}
	if err != nil {
		response.Error(w, err)
		return
	}

	m, err := wizard.Restore(h.catalog, data)
	if err != nil {
		response.Error(w, apierror.NotFound("Session not found or expired"))
		return
	}
	response.OK(w, SessionResponse{Token: token, State: m.State()})
}

// UpdateSession handles PUT /wizard/sessions/{token}. The body is a full
// wizard state; it is re-validated through Restore before being stored, so a
// state claiming a step its fields cannot justify is rejected.
func (h *WizardHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.Error(w, apierror.BadRequest("failed to read request body"))
		return
	}
	defer r.Body.Close()

	m, err := wizard.Restore(h.catalog, body)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid wizard state"))
		return
	}
	data, err := m.Serialize()
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.sessions.Update(r.Context(), token, data); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			response.Error(w, apierror.NotFound("Session not found or expired"))
			return
		}
		response.Error(w, err)
		return
	}
	response.OK(w, SessionResponse{Token: token, State: m.State()})
}

// DeleteSession handles DELETE /wizard/sessions/{token}
func (h *WizardHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.sessions.Delete(r.Context(), token); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"deleted": true})
}

// EstimateRequest asks for a non-binding price for the current wizard
// selections.
type EstimateRequest struct {
	Type       model.QuoteType            `json:"type"`
	DeviceType string                     `json:"deviceType"`
	Brand      string                     `json:"brand"`
	Model      string                     `json:"model"`
	Condition  *model.ConditionAssessment `json:"condition,omitempty"`
	Issues     []model.IssueID            `json:"issues,omitempty"`
}

// Estimate handles POST /estimate. The result is for display only; the
// binding price is recomputed at submission time.
func (h *WizardHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	switch req.Type {
	case model.QuoteBuyback:
		var cond model.ConditionAssessment
		if req.Condition != nil {
			cond = *req.Condition
		}
		price, err := h.quoteService.EstimateBuyback(req.DeviceType, req.Brand, req.Model, cond)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.OK(w, map[string]interface{}{"type": req.Type, "price": price})
	case model.QuoteRepair:
		est, err := h.quoteService.EstimateRepair(req.DeviceType, req.Brand, req.Model, req.Issues)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.OK(w, map[string]interface{}{"type": req.Type, "estimate": est})
	default:
		response.Error(w, apierror.BadRequest("type must be buyback or repair"))
	}
}
