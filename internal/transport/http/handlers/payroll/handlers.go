package payrollhandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"ghpayroll/internal/domain/employee"
	"ghpayroll/internal/domain/payroll"
	"ghpayroll/internal/domain/tax"
	"ghpayroll/internal/platform/jobs"
	"ghpayroll/internal/platform/metrics"
	"ghpayroll/internal/platform/validate"
	"ghpayroll/internal/transport/http/api"
	"ghpayroll/internal/transport/http/middleware"
	"ghpayroll/internal/transport/http/shared"
)

type Handler struct {
	Rates     *payroll.Registry
	Employees *employee.Service
	Jobs      *jobs.Service
	Metrics   *metrics.Collector
	Workers   int
	Currency  string
}

func NewHandler(rates *payroll.Registry, employees *employee.Service, jobsSvc *jobs.Service, collector *metrics.Collector, workers int, currency string) *Handler {
	return &Handler{Rates: rates, Employees: employees, Jobs: jobsSvc, Metrics: collector, Workers: workers, Currency: currency}
}

// RegisterRoutes mounts the payroll routes. Rate tables, preview and batch
// are public; protect wraps the routes that read or change stored records.
func (h *Handler) RegisterRoutes(r chi.Router, protect func(http.Handler) http.Handler) {
	r.Route("/payroll", func(r chi.Router) {
		r.Get("/rate-tables", h.handleListRateTables)
		r.Get("/rate-tables/{name}", h.handleGetRateTable)
		r.Post("/preview", h.handlePreview)
		r.Post("/batch", h.handleBatch)
		r.With(protect).Get("/register", h.handleRegister)
		r.With(protect).Post("/recompute", h.handleRecompute)
	})
	r.With(protect).Get("/jobs/{runID}", h.handleGetJob)
}

type RateTableView struct {
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Default       bool       `json:"default"`
	Periods       int        `json:"periods"`
	SSNITEmployee []float64  `json:"ssnitEmployee"`
	NHISEmployee  float64    `json:"nhisEmployee"`
	SSNITEmployer []float64  `json:"ssnitEmployer,omitempty"`
	NHISEmployer  float64    `json:"nhisEmployer,omitempty"`
	Tiers         []tax.Tier `json:"tiers"`
	Bands         []tax.Band `json:"bands"`
}

func (h *Handler) rateTableView(cfg payroll.RateConfig) RateTableView {
	return RateTableView{
		Name:          cfg.Name,
		Description:   cfg.Description,
		Default:       cfg.Name == h.Rates.DefaultName(),
		Periods:       max(cfg.Schedule.Periods, 1),
		SSNITEmployee: cfg.SSNITEmployee,
		NHISEmployee:  cfg.NHISEmployee,
		SSNITEmployer: cfg.SSNITEmployer,
		NHISEmployer:  cfg.NHISEmployer,
		Tiers:         cfg.Schedule.Tiers,
		Bands:         cfg.Schedule.Bands(),
	}
}

func (h *Handler) handleListRateTables(w http.ResponseWriter, r *http.Request) {
	views := lo.Map(h.Rates.All(), func(cfg payroll.RateConfig, _ int) RateTableView { return h.rateTableView(cfg) })
	api.Success(w, views, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRateTable(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	cfg, err := h.Rates.Lookup(chi.URLParam(r, "name"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
		return
	}
	api.Success(w, h.rateTableView(cfg), reqID)
}

type previewRequest struct {
	BasicSalary float64             `json:"basicSalary" validate:"gte=0"`
	Allowances  []payroll.Allowance `json:"allowances" validate:"max=100,dive"`
	RateTable   string              `json:"rateTable" validate:"max=64"`
}

type PreviewResponse struct {
	Breakdown payroll.Breakdown `json:"breakdown"`
	Display   map[string]string `json:"display"`
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload previewRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.FailError(w, reqID, fmt.Errorf("%w: %w", payroll.ErrInvalidInput, err))
		return
	}
	if err := validate.Struct(payload); err != nil {
		shared.FailError(w, reqID, err)
		return
	}
	cfg, err := h.Rates.Lookup(payload.RateTable)
	if err != nil {
		shared.FailError(w, reqID, err)
		return
	}
	breakdown, err := payroll.Compute(payload.BasicSalary, payload.Allowances, cfg)
	h.Metrics.RecordComputation(err)
	if err != nil {
		shared.FailError(w, reqID, err)
		return
	}
	api.Success(w, PreviewResponse{Breakdown: breakdown, Display: h.display(breakdown)}, reqID)
}

func (h *Handler) display(b payroll.Breakdown) map[string]string {
	money := func(v float64) string { return h.Currency + " " + payroll.FormatAmount(v) }
	out := map[string]string{
		"grossPay":        money(b.GrossPay),
		"ssnitEmployee":   money(b.TotalSSNITEmployee),
		"nhisEmployee":    money(b.NHISEmployee),
		"taxableIncome":   money(b.TaxableIncome),
		"paye":            money(b.PAYE),
		"totalDeductions": money(b.TotalDeductions),
		"netPay":          money(b.NetPay),
	}
	if b.TotalEmployerCost > 0 {
		out["totalEmployerCost"] = money(b.TotalEmployerCost)
	}
	return out
}

type batchRequest struct {
	Items []payroll.BatchItem `json:"items" validate:"required,min=1,max=1000,dive"`
}

type BatchItemResult struct {
	Key       string             `json:"key"`
	Breakdown *payroll.Breakdown `json:"breakdown,omitempty"`
	Error     *api.Error         `json:"error,omitempty"`
}

type BatchResponse struct {
	Items     []BatchItemResult `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	TotalNet  float64           `json:"totalNet"`
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload batchRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.FailError(w, reqID, fmt.Errorf("%w: %w", payroll.ErrInvalidInput, err))
		return
	}
	if err := validate.Struct(payload); err != nil {
		shared.FailError(w, reqID, err)
		return
	}
	results, err := payroll.ComputeBatch(r.Context(), payload.Items, h.Rates, h.Workers)
	if err != nil {
		shared.FailError(w, reqID, err)
		return
	}

	resp := BatchResponse{Items: make([]BatchItemResult, 0, len(results))}
	for _, res := range results {
		h.Metrics.RecordComputation(res.Err)
		item := BatchItemResult{Key: res.Key}
		if res.Err != nil {
			code := "validation_error"
			if errors.Is(res.Err, payroll.ErrUnknownRateTable) {
				code = "unknown_rate_table"
			}
			item.Error = &api.Error{Code: code, Message: res.Err.Error()}
			resp.Failed++
		} else {
			b := res.Breakdown
			item.Breakdown = &b
			resp.Succeeded++
			resp.TotalNet += b.NetPay
		}
		resp.Items = append(resp.Items, item)
	}
	api.Success(w, resp, reqID)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	emps, err := h.Employees.List(r.Context())
	if err != nil {
		shared.FailError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=payroll-register.csv")
	if err := employee.WriteRegister(w, emps); err != nil {
		slog.Warn("export register write failed", "err", err)
	}
}

// handleRecompute queues a recompute of every stored breakdown. With
// ?sync=true it runs inline and returns the finished run.
func (h *Handler) handleRecompute(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	task := func(ctx context.Context) (any, error) {
		return h.Employees.Recompute(ctx)
	}
	if r.URL.Query().Get("sync") == "true" {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()
		run, err := h.Jobs.RunNow(ctx, jobs.JobRecompute, task)
		if err != nil {
			slog.Warn("recompute failed", "runId", run.ID, "err", err)
		}
		api.Success(w, run, reqID)
		return
	}
	runID, err := h.Jobs.Enqueue(jobs.JobRecompute, task)
	if err != nil {
		shared.FailError(w, reqID, err)
		return
	}
	api.Accepted(w, map[string]string{"runId": runID, "status": jobs.StatusQueued}, reqID)
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	run, err := h.Jobs.Run(chi.URLParam(r, "runID"))
	if err != nil {
		shared.FailError(w, reqID, err)
		return
	}
	api.Success(w, run, reqID)
}
