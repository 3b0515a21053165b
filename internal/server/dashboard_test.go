package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevN0mad/HRDashboard/internal/analytics"
	"github.com/DevN0mad/HRDashboard/internal/services"
)

const testCSV = `Employee ID,Department,Age,Gender,Attrition,Salary,Years at Company,Performance Rating,Hiring Date
1,Sales,30,Male,Yes,50000,2,3,2021-03-01
2,Sales,41,Female,Yes,60000,4,4,2021-03-15
3,Sales,35,Female,No,70000,6,2,2020-01-10
4,Engineering,28,Male,No,80000,5,3,2022-07-04
`

func newTestMux(t *testing.T) (*http.ServeMux, *services.DatasetService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dataset := services.NewDatasetService(services.DatasetOpts{}, logger)
	reportServ, err := services.NewReportService(dataset, services.ReportOpts{SaveDir: t.TempDir()}, logger)
	require.NoError(t, err)

	h := NewDashboardServer(logger, dataset, reportServ, &DashboardServerOpts{Address: ":0"})
	mux := http.NewServeMux()
	h.Register(mux)
	return mux, dataset
}

func uploadCSV(t *testing.T, mux *http.ServeMux, name, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dataset", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestDashboardWithoutDataset(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadAndDashboard(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := uploadCSV(t, mux, "employees.csv", testCSV)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dashboardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.NoData)
	require.NotNil(t, resp.Report)
	assert.Equal(t, 4, resp.Report.TotalEmployees)
	assert.InDelta(t, 50.0, resp.Report.AttritionRate, 1e-9)
}

func TestUploadMalformedCSVRejected(t *testing.T) {
	mux, dataset := newTestMux(t)

	rec := uploadCSV(t, mux, "employees.csv", testCSV)
	require.Equal(t, http.StatusOK, rec.Code)

	bad := strings.Replace(testCSV, "30", "thirty", 1)
	rec = uploadCSV(t, mux, "employees.csv", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// прежний набор остался на месте
	assert.Equal(t, 4, dataset.Size())
}

func TestUploadUnsupportedExtension(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := uploadCSV(t, mux, "employees.txt", testCSV)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmptyFilterSelectionGivesNoDataState(t *testing.T) {
	mux, _ := newTestMux(t)
	require.Equal(t, http.StatusOK, uploadCSV(t, mux, "employees.csv", testCSV).Code)

	body, err := json.Marshal(analytics.Selection{
		Departments: []string{},
		Gender:      analytics.All,
		Attrition:   analytics.All,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/filters", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dashboardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.NoData)
	assert.Nil(t, resp.Report)
}

func TestFiltersRoundTrip(t *testing.T) {
	mux, dataset := newTestMux(t)
	require.Equal(t, http.StatusOK, uploadCSV(t, mux, "employees.csv", testCSV).Code)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/filters", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp filtersResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"Sales", "Engineering"}, resp.Options.Departments)
	assert.Equal(t, analytics.All, resp.Selection.Gender)

	body, err := json.Marshal(analytics.Selection{
		Departments: []string{"Sales"},
		Gender:      "Female",
		Attrition:   analytics.All,
	})
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/filters", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	sel := dataset.Selection()
	assert.Equal(t, []string{"Sales"}, sel.Departments)
	assert.Equal(t, "Female", sel.Gender)
}

func TestTableReturnsFilteredRows(t *testing.T) {
	mux, dataset := newTestMux(t)
	require.Equal(t, http.StatusOK, uploadCSV(t, mux, "employees.csv", testCSV).Code)
	require.NoError(t, dataset.SetSelection(analytics.Selection{
		Departments: []string{"Engineering"},
		Gender:      analytics.All,
		Attrition:   analytics.All,
	}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/table", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tableResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Employees, 1)
	assert.Equal(t, 4, resp.Employees[0].EmployeeID)
}

func TestSampleEndpoint(t *testing.T) {
	mux, dataset := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/dataset/sample?rows=300", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 300, dataset.Size())
}

func TestReportDownload(t *testing.T) {
	mux, _ := newTestMux(t)
	require.Equal(t, http.StatusOK, uploadCSV(t, mux, "employees.csv", testCSV).Code)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/report", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/dashboard", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
