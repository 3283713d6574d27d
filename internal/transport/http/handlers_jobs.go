package httptransport

import (
	"net/http"

	"surety/internal/jobs"
	"surety/pkg/domain"
	"surety/pkg/platform/httputil"
)

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f jobs.Filter
	if raw := q.Get("employer"); raw != "" {
		employer, err := domain.ParseWallet(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		f.Employer = employer
	}
	if raw := q.Get("worker"); raw != "" {
		worker, err := domain.ParseWallet(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		f.Worker = worker
	}
	if raw := q.Get("status"); raw != "" {
		status, err := jobs.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		f.Status = status
	}
	list, err := h.jobs.List(r.Context(), f)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"jobs": list})
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, job)
}

type createJobRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Amount      domain.Amount `json:"amount"`
	SiteID      string        `json:"site_id"`
}

func (h *Handler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	employer, err := callerWallet(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeJSON[createJobRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	job, err := h.jobs.Create(r.Context(), jobs.CreateRequest{
		Employer:    employer,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		SiteID:      req.SiteID,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, job)
}

type startJobRequest struct {
	WorkerAddress string `json:"worker_address"`
	position
}

// handleStartJob assigns the calling worker. Oracles must name the worker.
func (h *Handler) handleStartJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeJSON[startJobRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	worker, err := h.actingWorker(r, req.WorkerAddress)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pos, err := req.coordinate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	job, err := h.jobs.Start(r.Context(), id, worker, pos)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, job)
}

// actingWorker resolves the worker for a worker-or-oracle route.
func (h *Handler) actingWorker(r *http.Request, named string) (domain.WalletAddress, error) {
	if named == "" {
		return callerWallet(r)
	}
	worker, err := domain.ParseWallet(named)
	if err != nil {
		return "", err
	}
	if err := requireSelf(r, worker); err != nil {
		return "", err
	}
	return worker, nil
}

type completeJobRequest struct {
	WorkerAddress string `json:"worker_address"`
	position
}

func (h *Handler) handleCompleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeJSON[completeJobRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	worker, err := domain.ParseWallet(req.WorkerAddress)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pos, err := req.coordinate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.jobs.Complete(r.Context(), id, worker, pos)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	employer, err := callerWallet(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	job, err := h.jobs.Cancel(r.Context(), id, employer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, job)
}
