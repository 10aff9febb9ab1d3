package question

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	httperrors "github.com/fragmentforge/escape-api/pkg/http/errors"
)

// HTTPHandlers exposes the bank to the browser client plus an operator-only
// reload endpoint.
type HTTPHandlers struct {
	service           *Service
	adminPasswordHash string
	logger            zerolog.Logger
}

func NewHTTPHandlers(service *Service, adminPasswordHash string, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service:           service,
		adminPasswordHash: adminPasswordHash,
		logger:            logger.With().Str("component", "question_http").Logger(),
	}
}

// GetBank handles GET /v1/questions. The bank is served verbatim, answers
// included: this is a party game whose client grades locally, not an exam.
func (h *HTTPHandlers) GetBank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "method not allowed")
		return
	}

	bank := h.service.Bank()
	if len(bank) == 0 {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeBankUnavailable, "question bank not loaded yet")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(bank)
}

// Reload handles POST /v1/admin/questions/reload, refetching the bank from
// its source. Guarded by the operator password from config.
func (h *HTTPHandlers) Reload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "method not allowed")
		return
	}
	if !h.authorized(r) {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "invalid admin credentials")
		return
	}

	if err := h.service.Reload(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("bank reload failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeBankReloadFailed, "could not reload question bank")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"count": len(h.service.Bank())})
}

func (h *HTTPHandlers) authorized(r *http.Request) bool {
	if h.adminPasswordHash == "" {
		return false
	}
	password := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(h.adminPasswordHash), []byte(password)) == nil
}
