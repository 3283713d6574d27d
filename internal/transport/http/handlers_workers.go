package httptransport

import (
	"net/http"

	"surety/pkg/domain"
	"surety/pkg/platform/httputil"
)

type checkInRequest struct {
	SiteID     string `json:"site_id"`
	TrustScore *int   `json:"trust_score"`
	position
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := requireSelf(r, wallet); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeJSON[checkInRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	point, err := req.required()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.bond.CheckIn(r.Context(), wallet, point, req.SiteID, req.TrustScore)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

type hireRequest struct {
	WorkerAddress string        `json:"worker_address"`
	WeeklyWage    domain.Amount `json:"weekly_wage"`
}

// handleHire records the authenticated employer as the worker's employer.
func (h *Handler) handleHire(w http.ResponseWriter, r *http.Request) {
	employer, err := callerWallet(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeJSON[hireRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	worker, err := domain.ParseWallet(req.WorkerAddress)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.bond.Hire(r.Context(), worker, employer, req.WeeklyWage)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

type walletRequest struct {
	WalletAddress string `json:"wallet_address"`
	WorkerAddress string `json:"worker_address"`
}

// wallet accepts either field name.
func (req walletRequest) wallet() (domain.WalletAddress, error) {
	if req.WalletAddress != "" {
		return domain.ParseWallet(req.WalletAddress)
	}
	return domain.ParseWallet(req.WorkerAddress)
}

// handleTerminate only lets the current employer end the engagement.
func (h *Handler) handleTerminate(w http.ResponseWriter, r *http.Request) {
	employer, err := callerWallet(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeJSON[walletRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	worker, err := req.wallet()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.bond.Terminate(r.Context(), worker, employer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
