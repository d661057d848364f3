package employeeshandler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ghpayroll/internal/domain/employee"
	"ghpayroll/internal/domain/payroll"
	"ghpayroll/internal/platform/validate"
	"ghpayroll/internal/transport/http/api"
	"ghpayroll/internal/transport/http/middleware"
	"ghpayroll/internal/transport/http/shared"
)

type Handler struct {
	Service     *employee.Service
	CompanyName string
	Currency    string
	Now         func() time.Time
}

func NewHandler(svc *employee.Service, companyName, currency string) *Handler {
	return &Handler{Service: svc, CompanyName: companyName, Currency: currency, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleDashboard)
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{employeeID}", h.handleGet)
		r.Put("/{employeeID}", h.handleUpdate)
		r.Delete("/{employeeID}", h.handleDelete)
		r.Get("/{employeeID}/payslip", h.handlePayslip)
	})
}

type ListResponse struct {
	Items  []employee.Employee `json:"items"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	emps, err := h.Service.List(r.Context())
	if err != nil {
		shared.FailError(w, reqID, err)
		return
	}
	page := shared.ParsePagination(r, 50, 500)
	items := shared.Page(emps, page)
	if items == nil {
		items = []employee.Employee{}
	}
	api.Success(w, ListResponse{Items: items, Total: len(emps), Limit: page.Limit, Offset: page.Offset}, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var in employee.Input
	if err := shared.DecodeJSON(r, &in); err != nil {
		shared.FailError(w, reqID, fmt.Errorf("%w: %w", employee.ErrInvalidInput, err))
		return
	}
	emp, err := h.Service.Save(r.Context(), in)
	if err != nil {
		shared.FailError(w, reqID, err)
		return
	}
	api.Created(w, emp, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	emp, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.FailError(w, reqID, err)
		return
	}
	api.Success(w, emp, reqID)
}

// handleUpdate replaces the employee named in the path. A body id, when
// present, must match the path.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	var in employee.Input
	if err := shared.DecodeJSON(r, &in); err != nil {
		shared.FailError(w, reqID, fmt.Errorf("%w: %w", employee.ErrInvalidInput, err))
		return
	}
	if id := strings.TrimSpace(in.EmployeeID); id != "" && id != employeeID {
		shared.FailError(w, reqID, fmt.Errorf("%w: employeeId %q does not match path", employee.ErrInvalidInput, id))
		return
	}
	in.EmployeeID = employeeID
	emp, err := h.Service.Save(r.Context(), in)
	if err != nil {
		shared.FailError(w, reqID, err)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "employeeID")); err != nil {
		shared.FailError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type payslipQuery struct {
	Period string `json:"period" validate:"omitempty,yearmonth"`
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	query := payslipQuery{Period: strings.TrimSpace(r.URL.Query().Get("period"))}
	if err := validate.Struct(query); err != nil {
		shared.FailError(w, reqID, err)
		return
	}
	now := h.Now()
	period, err := shared.ParsePeriod(query.Period, now)
	if err != nil {
		shared.FailError(w, reqID, err)
		return
	}
	emp, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.FailError(w, reqID, err)
		return
	}

	var buf bytes.Buffer
	opts := employee.PayslipOptions{CompanyName: h.CompanyName, Currency: h.Currency, Period: period, GeneratedAt: now}
	if err := employee.RenderPayslip(&buf, emp, opts); err != nil {
		shared.FailError(w, reqID, err)
		return
	}
	filename := fmt.Sprintf("payslip-%s-%s.pdf", emp.EmployeeID, period.Format("2006-01"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type DashboardResponse struct {
	employee.Summary
	Currency string            `json:"currency"`
	Display  map[string]string `json:"display"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		shared.FailError(w, reqID, err)
		return
	}
	money := func(v float64) string { return h.Currency + " " + payroll.FormatAmount(v) }
	api.Success(w, DashboardResponse{
		Summary:  summary,
		Currency: h.Currency,
		Display: map[string]string{
			"totalGross":        money(summary.TotalGross),
			"totalDeductions":   money(summary.TotalDeductions),
			"totalNet":          money(summary.TotalNet),
			"totalPaye":         money(summary.TotalPAYE),
			"totalEmployerCost": money(summary.TotalEmployerCost),
		},
	}, reqID)
}
