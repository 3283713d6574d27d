package httptransport

import (
	"net/http"
	"strconv"

	"surety/internal/geofence"
	"surety/internal/scoring"
	"surety/internal/wage"
	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	"surety/pkg/platform/httputil"
)

type verifyLocationRequest struct {
	WalletAddress string `json:"wallet_address"`
	SiteID        string `json:"site_id"`
	position
}

// handleVerifyLocation answers the fence question without touching state.
func (h *Handler) handleVerifyLocation(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[verifyLocationRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if _, err := domain.ParseWallet(req.WalletAddress); err != nil {
		httputil.WriteError(w, err)
		return
	}
	point, err := req.required()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := geofence.Verify(point, h.sites.Lookup(req.SiteID))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleListSites(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"sites": h.sites.All()})
}

func (h *Handler) handleRiskScore(w http.ResponseWriter, r *http.Request) {
	jobs, err := strconv.Atoi(r.URL.Query().Get("jobs_completed"))
	if err != nil || jobs < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "jobs_completed must be a non-negative integer"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{
		"jobs_completed": jobs,
		"score":          scoring.RiskScore(jobs),
	})
}

func (h *Handler) handleRiskProfile(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	profile, err := h.bond.RiskProfile(r.Context(), wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

type wageBreakdownResponse struct {
	WeeklyWage domain.Amount  `json:"weekly_wage"`
	Breakdown  wage.Breakdown `json:"breakdown"`
	Policy     wage.Policy    `json:"policy"`
}

func (h *Handler) handleWageBreakdown(w http.ResponseWriter, r *http.Request) {
	amount, err := domain.ParseAmount(r.URL.Query().Get("weekly_wage"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, wageBreakdownResponse{
		WeeklyWage: amount,
		Breakdown:  h.wages.Split(amount),
		Policy:     h.wages.Policy(),
	})
}

func (h *Handler) handleGetWorker(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	acc, err := h.bond.Get(r.Context(), wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acc)
}
