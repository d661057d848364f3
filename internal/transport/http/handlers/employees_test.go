package handlers_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghpayroll/internal/domain/employee"
	employeeshandler "ghpayroll/internal/transport/http/handlers/employees"
)

func createEmployee(t *testing.T, handler http.Handler, token string, body map[string]any) employee.Employee {
	t.Helper()
	rec := doRequest(t, handler, http.MethodPost, "/api/v1/employees", body, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var emp employee.Employee
	decodeEnvelope(t, rec, &emp)
	return emp
}

func TestEmployeeLifecycle(t *testing.T) {
	app := newTestApp(t, testConfig())

	created := createEmployee(t, app.Router, "", map[string]any{
		"employeeId":  "EMP-100",
		"name":        "Ama Mensah",
		"position":    "Accountant",
		"nationalId":  "GHA-000000001-1",
		"tin":         "P0098765432",
		"bankName":    "GCB",
		"bankAccount": "1020304050",
		"basicSalary": 1000,
	})
	assert.InDelta(t, 848.475, created.Breakdown.NetPay, 1e-9)
	assert.False(t, created.CreatedAt.IsZero())

	rec := doRequest(t, app.Router, http.MethodGet, "/api/v1/employees/EMP-100", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched employee.Employee
	decodeEnvelope(t, rec, &fetched)
	assert.Equal(t, "GHA-000000001-1", fetched.NationalID)
	assert.Equal(t, "P0098765432", fetched.TIN)

	update := map[string]any{
		"name":        "Ama Mensah",
		"basicSalary": 1000,
		"rateTable":   "gh-annual-two-tier",
		"allowances":  []map[string]any{{"type": "Housing", "amount": 200}, {"type": "Transport", "amount": 100}},
	}
	rec = doRequest(t, app.Router, http.MethodPut, "/api/v1/employees/EMP-100", update, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated employee.Employee
	decodeEnvelope(t, rec, &updated)
	assert.Equal(t, "EMP-100", updated.EmployeeID)
	assert.InDelta(t, 1074.75, updated.Breakdown.NetPay, 1e-9)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	update["employeeId"] = "EMP-999"
	rec = doRequest(t, app.Router, http.MethodPut, "/api/v1/employees/EMP-100", update, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, app.Router, http.MethodDelete, "/api/v1/employees/EMP-100", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, app.Router, http.MethodGet, "/api/v1/employees/EMP-100", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec, nil)
	assert.Equal(t, "not_found", env.Error.Code)

	rec = doRequest(t, app.Router, http.MethodDelete, "/api/v1/employees/EMP-100", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEmployeeValidation(t *testing.T) {
	app := newTestApp(t, testConfig())

	rec := doRequest(t, app.Router, http.MethodPost, "/api/v1/employees", map[string]any{
		"employeeId":  " ",
		"name":        "",
		"basicSalary": -10,
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec, nil)
	assert.Equal(t, "validation_error", env.Error.Code)
	fields := issueFields(t, env)
	assert.Contains(t, fields, "employeeId")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "basicSalary")

	rec = doRequest(t, app.Router, http.MethodPost, "/api/v1/employees", map[string]any{
		"employeeId": "EMP-1", "name": "Yaw", "basicSalary": 10, "rateTable": "gh-2001",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env = decodeEnvelope(t, rec, nil)
	assert.Equal(t, "unknown_rate_table", env.Error.Code)
}

func TestListEmployeesPaginates(t *testing.T) {
	app := newTestApp(t, testConfig())
	for _, id := range []string{"EMP-3", "EMP-1", "EMP-2"} {
		createEmployee(t, app.Router, "", map[string]any{"employeeId": id, "name": "Worker " + id, "basicSalary": 500})
	}

	rec := doRequest(t, app.Router, http.MethodGet, "/api/v1/employees?limit=2&offset=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page employeeshandler.ListResponse
	decodeEnvelope(t, rec, &page)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "EMP-2", page.Items[0].EmployeeID)
	assert.Equal(t, "EMP-3", page.Items[1].EmployeeID)

	rec = doRequest(t, app.Router, http.MethodGet, "/api/v1/employees?offset=10", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeEnvelope(t, rec, &page)
	assert.Empty(t, page.Items)
}

func TestPayslipDownload(t *testing.T) {
	app := newTestApp(t, testConfig())
	createEmployee(t, app.Router, "", map[string]any{"employeeId": "EMP-7", "name": "Efua", "basicSalary": 3200})

	rec := doRequest(t, app.Router, http.MethodGet, "/api/v1/employees/EMP-7/payslip?period=2026-03", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payslip-EMP-7-2026-03.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = doRequest(t, app.Router, http.MethodGet, "/api/v1/employees/EMP-7/payslip?period=March", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec, nil)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Equal(t, []string{"period"}, issueFields(t, env))

	rec = doRequest(t, app.Router, http.MethodGet, "/api/v1/employees/EMP-8/payslip", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardSummarisesStoredEmployees(t *testing.T) {
	app := newTestApp(t, testConfig())
	createEmployee(t, app.Router, "", map[string]any{"employeeId": "A", "name": "A", "basicSalary": 1000})
	createEmployee(t, app.Router, "", map[string]any{
		"employeeId": "B", "name": "B", "basicSalary": 1000, "rateTable": "gh-annual-two-tier",
		"allowances": []map[string]any{{"type": "Housing", "amount": 200}, {"type": "Transport", "amount": 100}},
	})

	rec := doRequest(t, app.Router, http.MethodGet, "/api/v1/dashboard", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var dash employeeshandler.DashboardResponse
	decodeEnvelope(t, rec, &dash)
	assert.Equal(t, 2, dash.Employees)
	assert.InDelta(t, 2300, dash.TotalGross, 1e-9)
	assert.InDelta(t, 848.475+1074.75, dash.TotalNet, 1e-9)
	assert.InDelta(t, 1455, dash.TotalEmployerCost, 1e-9)
	assert.Equal(t, "GHS", dash.Currency)
	assert.Equal(t, "GHS 2,300.00", dash.Display["totalGross"])
}
