package httptransport

import (
	"context"
	"net/http"

	"surety/internal/bond"
	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	"surety/pkg/platform/httputil"
)

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	h.walletOp(w, r, h.bond.Verify)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.walletOp(w, r, h.bond.Reject)
}

func (h *Handler) walletOp(w http.ResponseWriter, r *http.Request, op func(context.Context, domain.WalletAddress) (*bond.Result, error)) {
	req, err := httputil.DecodeJSON[walletRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	wallet, err := req.wallet()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := op(r.Context(), wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

type amountRequest struct {
	WalletAddress string        `json:"wallet_address"`
	Amount        domain.Amount `json:"amount"`
}

func (h *Handler) handleStake(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[amountRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	wallet, err := domain.ParseWallet(req.WalletAddress)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.bond.StakeBond(r.Context(), wallet, req.Amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

type oracleCheckInRequest struct {
	WalletAddress string `json:"wallet_address"`
	TrustScore    *int   `json:"trust_score"`
}

func (h *Handler) handleOracleCheckIn(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[oracleCheckInRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	wallet, err := domain.ParseWallet(req.WalletAddress)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.TrustScore == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "trust_score is required"))
		return
	}
	res, err := h.bond.SubmitCheckIn(r.Context(), wallet, *req.TrustScore)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleReleaseWage(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[walletRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	wallet, err := req.wallet()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.bond.ReleaseWage(r.Context(), wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// handleSetupWorker reports each step. A failed step yields 207 with the
// earlier steps still applied.
func (h *Handler) handleSetupWorker(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[amountRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	wallet, err := domain.ParseWallet(req.WalletAddress)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.bond.SetupWorker(r.Context(), wallet, req.Amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if !res.Succeeded() {
		status = http.StatusMultiStatus
	}
	httputil.WriteJSON(w, status, res)
}

func (h *Handler) handleRecalculateRisk(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	profile, err := h.bond.RecalculateRisk(r.Context(), wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}
