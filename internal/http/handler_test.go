package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"crime-dashboard/internal/auth"
	"crime-dashboard/internal/config"
	"crime-dashboard/internal/db"
	"crime-dashboard/internal/http/middleware"
	"crime-dashboard/internal/metrics"
	"crime-dashboard/internal/model"
	"crime-dashboard/internal/repository"
	"crime-dashboard/internal/service"
)

const (
	testSecret   = "test-secret"
	testAdminKey = "test-admin-key"
)

type testServer struct {
	router    *gin.Engine
	parser    *auth.Parser
	incidents *repository.IncidentRepository
	logs      *bytes.Buffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	tables := db.TablesFor(config.DataScopeStaging)
	require.NoError(t, db.AutoMigrate(database, tables))

	logs := &bytes.Buffer{}
	log := zerolog.New(logs)
	collector := metrics.NewCollector("crime_dashboard")
	incidents := repository.NewIncidentRepository(database, tables.Incidents)
	daily := repository.NewDailyCountRepository(database, tables.DailyCounts)
	history := repository.NewHistoryRepository(database, tables.History)
	targets := service.NewTargetService(
		repository.NewTargetRepository(database, tables.Targets),
		service.NewUndoBuffer(time.Hour),
		log,
	)

	handler := NewHandler(
		service.NewImportService(incidents, daily, collector, log),
		service.NewAggregateService(incidents, targets),
		targets,
		service.NewHistoryService(incidents, history, collector, log),
		service.NewTimeseriesService(daily),
		log,
	)
	parser := auth.NewParser(testSecret)
	router := NewRouter(handler, middleware.Auth(parser), middleware.Admin(parser, testAdminKey), collector, "test")

	return &testServer{router: router, parser: parser, incidents: incidents, logs: logs}
}

func (s *testServer) token(t *testing.T, role string) string {
	t.Helper()
	token, err := s.parser.Sign(auth.Claims{
		Email: "analista@pm.rj.gov.br",
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func bearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(bearer(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "garbage"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(bearer(httptest.NewRequest(http.MethodGet, "/dashboard?year=2025&semester=1", nil), s.token(t, "user")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(bearer(httptest.NewRequest(http.MethodGet, "/dashboard?semester=x", nil), s.token(t, "user")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	path := "/targets/seed?year=2025&semester=1"

	rec := s.do(bearer(httptest.NewRequest(http.MethodPost, path, nil), s.token(t, "user")))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set(middleware.AdminKeyHeader, "wrong")
	rec = s.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set(middleware.AdminKeyHeader, testAdminKey)
	rec = s.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Created int `json:"created"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 24, body.Data.Created)

	rec = s.do(bearer(httptest.NewRequest(http.MethodPost, "/targets/units/AISP%2028/clear?year=2025&semester=1", nil), s.token(t, "admin")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(bearer(httptest.NewRequest(http.MethodGet, "/targets/units/aisp28/undo", nil), s.token(t, "admin")))
	assert.Contains(t, rec.Body.String(), `"can_undo":true`)
}

func TestWriteActionsAreAudited(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(bearer(httptest.NewRequest(http.MethodPost, "/targets/seed?year=2025&semester=1", nil), s.token(t, "admin")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, s.logs.String(), `"action":"targets.seed"`)
	assert.Contains(t, s.logs.String(), `"user_id":"user-1"`)

	s.logs.Reset()
	req := httptest.NewRequest(http.MethodPost, "/targets/units/aisp10/clear?year=2025&semester=1", nil)
	req.Header.Set(middleware.AdminKeyHeader, testAdminKey)
	require.Equal(t, http.StatusOK, s.do(req).Code)
	assert.Contains(t, s.logs.String(), `"action":"targets.clear_unit"`)
	assert.Contains(t, s.logs.String(), `"user_id":"admin-key"`)
}

func TestWriteHandlerWithoutPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{log: zerolog.Nop()}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/targets", nil)
	h.clearTargets(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClearAllTargets(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "admin")

	require.Equal(t, http.StatusOK, s.do(bearer(httptest.NewRequest(http.MethodPost, "/targets/seed?year=2025&semester=1", nil), admin)).Code)

	rec := s.do(bearer(httptest.NewRequest(http.MethodDelete, "/targets", nil), s.token(t, "user")))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(bearer(httptest.NewRequest(http.MethodDelete, "/targets", nil), admin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":24`)

	rec = s.do(bearer(httptest.NewRequest(http.MethodGet, "/targets?year=2025&semester=1", nil), admin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestGetRecord(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.incidents.CreateBatch(context.Background(), []model.Incident{{
		RO:                 "001-00001/2025",
		AISP:               "AISP 10",
		RISP:               "RISP 5",
		StrategicIndicator: "Roubo de Rua",
		Municipality:       "Vassouras",
	}}))
	token := s.token(t, "user")

	rec := s.do(bearer(httptest.NewRequest(http.MethodGet, "/records/001-00001/2025", nil), token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ro":"001-00001/2025"`)
	assert.Contains(t, rec.Body.String(), `"last_history":null`)

	rec = s.do(bearer(httptest.NewRequest(http.MethodGet, "/records/999-00000/2025", nil), token))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestImportIncidentsUpload(t *testing.T) {
	s := newTestServer(t)

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Dia do registro", "Mes do registro", "Ano do registro", "RO", "Indicador estratégico", "AISP do fato", "RISP do fato", "Município do fato (IBGE)"},
		{1, 2, 2025, "001-00001/2025", "Roubo de Carga", "AISP 37", "RISP 5", "Resende"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	workbook, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "ocorrencias.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/imports/incidents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.AdminKeyHeader, testAdminKey)
	rec := s.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"inserted":1`)

	req = httptest.NewRequest(http.MethodPost, "/imports/incidents", nil)
	req.Header.Set(middleware.AdminKeyHeader, testAdminKey)
	assert.Equal(t, http.StatusBadRequest, s.do(req).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `crime_dashboard_api_requests_total{method="GET",route="/healthz",status="200"} 1`)
}
