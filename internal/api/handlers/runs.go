package handlers

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/runner"
	"github.com/testforge/hrm-e2e/pkg/httputil"
)

// RunService executes scenarios and remembers the last report
type RunService interface {
	Run(ctx context.Context, scenarios []runner.Scenario) (*domain.RunReport, error)
	Latest() *domain.RunReport
}

// RunHandler serves the scenario catalog and the run report, and starts
// runs in the background
type RunHandler struct {
	ctx     context.Context
	svc     RunService
	catalog []runner.Scenario
	logger  *zap.Logger

	running atomic.Bool
	started atomic.Value // time.Time
	wg      sync.WaitGroup
}

// NewRunHandler creates a run handler. Background runs are cancelled
// with ctx.
func NewRunHandler(ctx context.Context, svc RunService, catalog []runner.Scenario, logger *zap.Logger) *RunHandler {
	return &RunHandler{ctx: ctx, svc: svc, catalog: catalog, logger: logger}
}

// ScenarioResponse is the API representation of a scenario
type ScenarioResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ReportResponse wraps a run report with its summary
type ReportResponse struct {
	Report    *domain.RunReport `json:"report"`
	Summary   domain.Summary    `json:"summary"`
	Succeeded bool              `json:"succeeded"`
	Duration  string            `json:"duration"`
}

// StartRunRequest selects scenarios by glob; empty runs the catalog
type StartRunRequest struct {
	Scenarios []string `json:"scenarios"`
}

// StartRunResponse lists what was started
type StartRunResponse struct {
	Status    string   `json:"status"`
	Scenarios []string `json:"scenarios"`
}

// StatusResponse tells whether a run is in progress
type StatusResponse struct {
	Running   bool       `json:"running"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// ListScenarios handles GET /api/v1/scenarios
func (h *RunHandler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioResponse, len(h.catalog))
	for i, sc := range h.catalog {
		out[i] = ScenarioResponse{Name: sc.Name, Description: sc.Description}
	}
	httputil.JSON(w, http.StatusOK, out)
}

// LatestReport handles GET /api/v1/report
func (h *RunHandler) LatestReport(w http.ResponseWriter, r *http.Request) {
	report := h.svc.Latest()
	if report == nil {
		httputil.JSONError(w, http.StatusNotFound, httputil.ErrCodeNotFound, "no run has finished yet", nil)
		return
	}
	httputil.JSON(w, http.StatusOK, ReportResponse{
		Report:    report,
		Summary:   report.Summary(),
		Succeeded: report.Succeeded(),
		Duration:  report.Duration().String(),
	})
}

// Status handles GET /api/v1/runs/status
func (h *RunHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Running: h.running.Load()}
	if resp.Running {
		if t, ok := h.started.Load().(time.Time); ok {
			resp.StartedAt = &t
		}
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// StartRun handles POST /api/v1/runs
func (h *RunHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	var req StartRunRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	selected, err := runner.Select(h.catalog, req.Scenarios...)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	if !h.running.CompareAndSwap(false, true) {
		httputil.JSONError(w, http.StatusConflict, httputil.ErrCodeConflict, "a run is already in progress", nil)
		return
	}
	h.started.Store(time.Now().UTC())

	names := make([]string, len(selected))
	for i, sc := range selected {
		names[i] = sc.Name
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.running.Store(false)

		report, err := h.svc.Run(h.ctx, selected)
		if err != nil {
			h.logger.Error("background run failed", zap.Error(err))
			return
		}
		h.logger.Info("background run finished",
			zap.String("run_id", report.ID.String()),
			zap.Bool("succeeded", report.Succeeded()),
		)
	}()

	httputil.JSON(w, http.StatusAccepted, StartRunResponse{Status: "started", Scenarios: names})
}

// Wait blocks until background runs have returned
func (h *RunHandler) Wait() {
	h.wg.Wait()
}
