package httptransport

import (
	"net/http"

	"github.com/google/uuid"

	"surety/internal/ledger"
	dErrors "surety/pkg/domain-errors"
	"surety/pkg/platform/httputil"
)

func (h *Handler) handleListIntents(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	intents, err := h.ledger.ListByWallet(r.Context(), wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"intents": intents})
}

func (h *Handler) handleRetryIntents(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ledger.RetryFailed(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

type ledgerWebhookRequest struct {
	IntentID string `json:"intent_id"`
	TxHash   string `json:"tx_hash"`
	Status   string `json:"status"`
}

// handleLedgerWebhook applies a chain confirmation. Replays of the same
// confirmation succeed.
func (h *Handler) handleLedgerWebhook(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[ledgerWebhookRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := uuid.Parse(req.IntentID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "intent_id must be a UUID"))
		return
	}
	status, err := ledger.ParseStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	in, err := h.ledger.Confirm(r.Context(), id, req.TxHash, status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, in)
}
