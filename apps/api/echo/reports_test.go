package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/masomo-reports/apps/api/echo"
	"github.com/trezcool/masomo-reports/core"
	"github.com/trezcool/masomo-reports/core/report"
	"github.com/trezcool/masomo-reports/services/pdf"
	"github.com/trezcool/masomo-reports/storage/database/inmem"
	"github.com/trezcool/masomo-reports/tests"
)

func testConfig() *core.Config {
	conf := &core.Config{AppName: "Masomo", Env: "TEST", TestMode: true}
	conf.Server.DisableReqLogs = true
	return conf
}

func newTestServer(t *testing.T, svc report.Service, logger *testutil.Logger) Server {
	t.Helper()
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	return NewServer(ServerDeps{
		Conf:       testConfig(),
		Logger:     logger,
		ReportSvc:  svc,
		Validate:   validate,
		Translator: translator,
	})
}

func setup(t *testing.T, db *inmemdb.DB) (Server, *testutil.Logger) {
	logger := &testutil.Logger{}
	renderer := report.NewRenderer(pdfsvc.NewCanvas, logger, report.Options{Author: "Masomo"})
	svc := report.NewService(inmemdb.NewRecordRepository(db), renderer)
	return newTestServer(t, svc, logger), logger
}

type httpTest struct {
	name            string
	path            string
	wantCode        int
	wantContentType string
	wantFilename    string
	wantErr         map[string]string
}

func runHTTPTests(t *testing.T, app Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantContentType != "" {
				assert.Equal(t, tt.wantContentType, rec.Header().Get("Content-Type"))
			}
			if tt.wantFilename != "" {
				assert.Equal(t, "attachment; filename="+tt.wantFilename, rec.Header().Get("Content-Disposition"))
			}
			if tt.wantErr != nil {
				assert.Empty(t, rec.Header().Get("Content-Disposition"))
				var got map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, tt.wantErr, got)
			}
		})
	}
}

func TestReportAPI_Export(t *testing.T) {
	app, _ := setup(t, testutil.LoadDB(t))

	runHTTPTests(t, app, []httpTest{
		{name: "students pdf", path: "/v1/reports/students", wantCode: http.StatusOK, wantContentType: "application/pdf", wantFilename: "students.pdf"},
		{name: "timetable pdf", path: "/v1/reports/timetable?format=pdf", wantCode: http.StatusOK, wantContentType: "application/pdf", wantFilename: "timetable.pdf"},
		{name: "fees csv", path: "/v1/reports/fees?format=csv", wantCode: http.StatusOK, wantContentType: "text/csv", wantFilename: "fees.csv"},
		{name: "unknown format is a pdf", path: "/v1/reports/notices?format=xlsx", wantCode: http.StatusOK, wantContentType: "application/pdf", wantFilename: "notices.pdf"},
		{name: "trailing slash", path: "/v1/reports/teachers/", wantCode: http.StatusOK, wantFilename: "teachers.pdf"},
		{name: "unknown report", path: "/v1/reports/grades", wantCode: http.StatusBadRequest, wantErr: map[string]string{"error": "invalid report type"}},
		{name: "invalid report name", path: "/v1/reports/bad!type", wantCode: http.StatusBadRequest, wantErr: map[string]string{"type": "only letters, digits, dashes and underscores are allowed"}},
	})

	t.Run("pdf body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/parents", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, "%PDF-"))
		assert.True(t, strings.HasSuffix(body, "%%EOF\n"))
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	})

	t.Run("csv body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/students?format=CSV", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n"), "\n")
		assert.Len(t, lines, 5)
		assert.True(t, strings.HasPrefix(lines[0], "_id,name,email,password,role"))
	})
}

func TestReportAPI_Export_NoData(t *testing.T) {
	app, _ := setup(t, inmemdb.Open())

	runHTTPTests(t, app, []httpTest{
		{name: "pdf", path: "/v1/reports/students", wantCode: http.StatusNotFound, wantErr: map[string]string{"error": "no data found for this report"}},
		{name: "csv", path: "/v1/reports/fees?format=csv", wantCode: http.StatusNotFound, wantErr: map[string]string{"error": "no data found for this report"}},
	})
}

func TestReportAPI_ResultSlip(t *testing.T) {
	app, _ := setup(t, testutil.LoadDB(t))

	runHTTPTests(t, app, []httpTest{
		{name: "slip", path: "/v1/reports/result-slip/u-s1", wantCode: http.StatusOK, wantContentType: "application/pdf", wantFilename: "result-slip-Amani Wanjiku.pdf"},
		{name: "no results", path: "/v1/reports/result-slip/u-s4", wantCode: http.StatusNotFound, wantErr: map[string]string{"error": "no data found for this report"}},
		{name: "unknown student", path: "/v1/reports/result-slip/u-404", wantCode: http.StatusNotFound, wantErr: map[string]string{"error": "record not found"}},
		{name: "not a student", path: "/v1/reports/result-slip/u-t1", wantCode: http.StatusNotFound, wantErr: map[string]string{"error": "record not found"}},
		{name: "invalid id", path: "/v1/reports/result-slip/u%20s1", wantCode: http.StatusBadRequest, wantErr: map[string]string{"studentId": "only letters, digits, dashes and underscores are allowed"}},
	})
}

// stubService fails the way it is told to.
type stubService struct {
	err     error
	partial string
}

func (s stubService) Export(_ context.Context, w http.ResponseWriter, name string, _ report.Format) error {
	if s.partial != "" {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte(s.partial))
	}
	return s.err
}

func (s stubService) ResultSlip(ctx context.Context, w http.ResponseWriter, _ string) error {
	return s.Export(ctx, w, "", report.PDF)
}

func TestReportAPI_Failures(t *testing.T) {
	t.Run("stream failure leaves the truncated body alone", func(t *testing.T) {
		logger := &testutil.Logger{}
		serr := &report.StreamError{Report: "students", Format: report.PDF, Written: 8, Err: errors.New("broken pipe")}
		app := newTestServer(t, stubService{err: serr, partial: "%PDF-1.4"}, logger)

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/students", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "%PDF-1.4", rec.Body.String())
		assert.Zero(t, logger.Count("error"), "stream failures are logged where they happen")
	})

	t.Run("server error", func(t *testing.T) {
		logger := &testutil.Logger{}
		app := newTestServer(t, stubService{err: errors.Wrap(errors.New("connection refused"), "querying students records")}, logger)

		runHTTPTests(t, app, []httpTest{
			{name: "export", path: "/v1/reports/students", wantCode: http.StatusInternalServerError, wantErr: map[string]string{"error": "Internal Server Error"}},
		})
		assert.Equal(t, 1, logger.Count("error"))
	})
}
