package httptransport

import (
	"net/http"

	"surety/internal/identity"
	"surety/pkg/domain"
	"surety/pkg/platform/httputil"
)

type submitIdentityRequest struct {
	WalletAddress string `json:"wallet_address"`
	IDType        string `json:"id_type"`
	IDNumber      string `json:"id_number"`
}

// handleSubmitIdentity never echoes or logs id_number.
func (h *Handler) handleSubmitIdentity(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[submitIdentityRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	wallet, err := domain.ParseWallet(req.WalletAddress)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	idType, err := identity.ParseIDType(req.IDType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.bond.SubmitIdentity(r.Context(), wallet, idType, req.IDNumber)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res.Identity)
}

func (h *Handler) handleIdentityStatus(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.identity.Status(r.Context(), wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}
