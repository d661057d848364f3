package handlers_test

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghpayroll/internal/domain/payroll"
	"ghpayroll/internal/platform/jobs"
	payrollhandler "ghpayroll/internal/transport/http/handlers/payroll"
)

func TestPreviewComputesBreakdown(t *testing.T) {
	app := newTestApp(t, testConfig())

	rec := doRequest(t, app.Router, http.MethodPost, "/api/v1/payroll/preview", map[string]any{"basicSalary": 1000}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp payrollhandler.PreviewResponse
	env := decodeEnvelope(t, rec, &resp)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.RequestID)
	assert.InDelta(t, 848.475, resp.Breakdown.NetPay, 1e-9)
	assert.InDelta(t, 71.525, resp.Breakdown.PAYE, 1e-9)
	assert.Equal(t, payroll.RateTableMonthlySimplified, resp.Breakdown.RateTable)
	assert.Equal(t, "GHS 848.48", resp.Display["netPay"])
	assert.NotContains(t, resp.Display, "totalEmployerCost")
}

func TestPreviewWithAnnualTableReportsEmployerCost(t *testing.T) {
	app := newTestApp(t, testConfig())

	body := map[string]any{
		"basicSalary": 1000,
		"rateTable":   payroll.RateTableAnnualTwoTier,
		"allowances": []map[string]any{
			{"type": "Housing", "amount": 200},
			{"type": "Transport", "amount": 100},
		},
	}
	rec := doRequest(t, app.Router, http.MethodPost, "/api/v1/payroll/preview", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp payrollhandler.PreviewResponse
	decodeEnvelope(t, rec, &resp)
	assert.InDelta(t, 1074.75, resp.Breakdown.NetPay, 1e-9)
	assert.Equal(t, "GHS 1,455.00", resp.Display["totalEmployerCost"])
}

func TestPreviewRejectsBadInput(t *testing.T) {
	app := newTestApp(t, testConfig())

	tests := []struct {
		name     string
		body     any
		wantCode string
		wantPath string
	}{
		{name: "negative salary", body: map[string]any{"basicSalary": -1}, wantCode: "validation_error", wantPath: "basicSalary"},
		{name: "blank allowance type", body: map[string]any{"basicSalary": 10, "allowances": []map[string]any{{"type": " ", "amount": 1}}}, wantCode: "validation_error", wantPath: "allowances[0].type"},
		{name: "negative allowance", body: map[string]any{"basicSalary": 10, "allowances": []map[string]any{{"type": "Fuel", "amount": -1}}}, wantCode: "validation_error", wantPath: "allowances[0].amount"},
		{name: "unknown field", body: `{"basicSalary": 10, "bonus": 5}`, wantCode: "validation_error"},
		{name: "trailing data", body: `{"basicSalary": 10} {}`, wantCode: "validation_error"},
		{name: "unknown table", body: map[string]any{"basicSalary": 10, "rateTable": "gh-1999"}, wantCode: "unknown_rate_table"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, app.Router, http.MethodPost, "/api/v1/payroll/preview", tc.body, "")
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			env := decodeEnvelope(t, rec, nil)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.wantCode, env.Error.Code)
			if tc.wantPath != "" {
				assert.Contains(t, issueFields(t, env), tc.wantPath)
			}
		})
	}
}

func TestPreviewRejectsOversizedBody(t *testing.T) {
	app := newTestApp(t, testConfig())
	body := `{"basicSalary": 10, "allowances": [` + strings.Repeat(`{"type":"Housing","amount":1},`, 200) + `{"type":"Housing","amount":1}]}`

	rec := doRequest(t, app.Router, http.MethodPost, "/api/v1/payroll/preview", body, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRateTables(t *testing.T) {
	app := newTestApp(t, testConfig())

	rec := doRequest(t, app.Router, http.MethodGet, "/api/v1/payroll/rate-tables", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tables []payrollhandler.RateTableView
	decodeEnvelope(t, rec, &tables)
	require.Len(t, tables, 2)
	assert.Equal(t, payroll.RateTableAnnualTwoTier, tables[0].Name)
	assert.False(t, tables[0].Default)
	assert.Equal(t, 12, tables[0].Periods)
	assert.True(t, tables[1].Default)

	rec = doRequest(t, app.Router, http.MethodGet, "/api/v1/payroll/rate-tables/"+payroll.RateTableMonthlySimplified, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view payrollhandler.RateTableView
	decodeEnvelope(t, rec, &view)
	assert.Equal(t, []float64{0.055}, view.SSNITEmployee)
	require.NotEmpty(t, view.Bands)

	rec = doRequest(t, app.Router, http.MethodGet, "/api/v1/payroll/rate-tables/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchReportsPerItemFailures(t *testing.T) {
	app := newTestApp(t, testConfig())

	body := map[string]any{"items": []map[string]any{
		{"key": "A", "basicSalary": 1000},
		{"key": "B", "basicSalary": 1000, "rateTable": payroll.RateTableAnnualTwoTier, "allowances": []map[string]any{
			{"type": "Housing", "amount": 200}, {"type": "Transport", "amount": 100},
		}},
		{"key": "D", "basicSalary": 10, "rateTable": "nope"},
	}}
	rec := doRequest(t, app.Router, http.MethodPost, "/api/v1/payroll/batch", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp payrollhandler.BatchResponse
	decodeEnvelope(t, rec, &resp)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "A", resp.Items[0].Key)
	assert.InDelta(t, 848.475, resp.Items[0].Breakdown.NetPay, 1e-9)
	assert.InDelta(t, 1074.75, resp.Items[1].Breakdown.NetPay, 1e-9)
	assert.Nil(t, resp.Items[2].Breakdown)
	require.NotNil(t, resp.Items[2].Error)
	assert.Equal(t, "unknown_rate_table", resp.Items[2].Error.Code)
	assert.InDelta(t, 848.475+1074.75, resp.TotalNet, 1e-9)
}

func TestBatchRequiresItems(t *testing.T) {
	app := newTestApp(t, testConfig())
	rec := doRequest(t, app.Router, http.MethodPost, "/api/v1/payroll/batch", map[string]any{"items": []any{}}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterExport(t *testing.T) {
	app := newTestApp(t, testConfig())
	createEmployee(t, app.Router, "", map[string]any{"employeeId": "EMP-010", "name": "Ama Mensah", "basicSalary": 1000})

	rec := doRequest(t, app.Router, http.MethodGet, "/api/v1/payroll/register", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payroll-register.csv")

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "EMP-010", rows[1][0])
	assert.Contains(t, rows[1], "848.48")
}

func TestRecomputeAsyncAndSync(t *testing.T) {
	app := newTestApp(t, testConfig())
	createEmployee(t, app.Router, "", map[string]any{"employeeId": "EMP-020", "name": "Kofi", "basicSalary": 2500})

	rec := doRequest(t, app.Router, http.MethodPost, "/api/v1/payroll/recompute", nil, "")
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var queued map[string]string
	decodeEnvelope(t, rec, &queued)
	runID := queued["runId"]
	require.NotEmpty(t, runID)
	assert.Equal(t, jobs.StatusQueued, queued["status"])

	require.Eventually(t, func() bool {
		rec := doRequest(t, app.Router, http.MethodGet, "/api/v1/jobs/"+runID, nil, "")
		var run jobs.Run
		decodeEnvelope(t, rec, &run)
		return run.Status == jobs.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	rec = doRequest(t, app.Router, http.MethodPost, "/api/v1/payroll/recompute?sync=true", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var run struct {
		Status  string `json:"status"`
		Details struct {
			Updated int `json:"updated"`
		} `json:"details"`
	}
	decodeEnvelope(t, rec, &run)
	assert.Equal(t, jobs.StatusCompleted, run.Status)
	assert.Equal(t, 1, run.Details.Updated)

	rec = doRequest(t, app.Router, http.MethodGet, "/api/v1/jobs/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
