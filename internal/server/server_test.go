package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stack-advisor/internal/advisor"
	"stack-advisor/internal/config"
	"stack-advisor/internal/model"
)

const yarnRequest = `{
	"hosts": [{"host_name": "h1", "cpu_count": 8, "total_mem": 8388608,
		"disk_info": [{"mountpoint": "/", "available": "104857600"}]}],
	"services": [{"service_name": "YARN", "components": [
		{"component_name": "NODEMANAGER", "cardinality": "1+", "hostnames": ["h1"]}]}],
	"configurations": {}
}`

type fakeAdvisor struct {
	rec    *model.Recommendation
	result *model.ValidationResult
	err    error
}

func (f *fakeAdvisor) Recommend(*model.Request) (*model.Recommendation, error) {
	return f.rec, f.err
}

func (f *fakeAdvisor) Validate(*model.Request) (*model.ValidationResult, error) {
	return f.result, f.err
}

type fakeSource struct {
	req     *model.Request
	err     error
	cluster string
}

func (f *fakeSource) FetchRequest(_ context.Context, cluster string) (*model.Request, error) {
	f.cluster = cluster
	return f.req, f.err
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{Listen: "127.0.0.1:0", ReadTimeout: time.Second, WriteTimeout: time.Second}
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := New(testServerConfig(), &fakeAdvisor{}, zerolog.Nop())

	rec := doRequest(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRecommendations_RealAdvisor(t *testing.T) {
	a, err := advisor.New(nil, zerolog.Nop(), advisor.WithUIDSource(advisor.StaticUID("1000")))
	require.NoError(t, err)
	s := New(testServerConfig(), a, zerolog.Nop())

	rec := doRequest(t, s, http.MethodPost, "/api/v1/recommendations", yarnRequest)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got model.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	_, ok := got.Configurations.Get("yarn-site", "yarn.nodemanager.resource.memory-mb")
	assert.True(t, ok)
	minUID, _ := got.Configurations.Get("yarn-env", "min_user_id")
	assert.Equal(t, "1000", minUID)
}

func TestRecommendations_InvalidJSON(t *testing.T) {
	s := New(testServerConfig(), &fakeAdvisor{}, zerolog.Nop())

	rec := doRequest(t, s, http.MethodPost, "/api/v1/recommendations", `{"hosts": [`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request payload")
}

func TestRecommendations_InvalidPayload(t *testing.T) {
	s := New(testServerConfig(), &fakeAdvisor{}, zerolog.Nop())
	body := `{
		"hosts": [{"host_name": "h1"}, {"host_name": "h1"}],
		"services": [{"service_name": "HDFS", "components": [
			{"component_name": "NAMENODE", "hostnames": ["ghost"]}]}]
	}`

	rec := doRequest(t, s, http.MethodPost, "/api/v1/recommendations", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "duplicate host")
	assert.Contains(t, rec.Body.String(), "ghost")
}

func TestRecommendations_AdvisorError(t *testing.T) {
	s := New(testServerConfig(), &fakeAdvisor{err: errors.New("boom")}, zerolog.Nop())

	rec := doRequest(t, s, http.MethodPost, "/api/v1/recommendations", yarnRequest)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
}

func TestValidations_CountsFindings(t *testing.T) {
	findings := []*model.Finding{
		model.NewHostFinding(model.SeverityError, "h2", "Host is not used"),
		model.NewConfigFinding(model.SeverityWarn, "yarn-site", "yarn.scheduler.minimum-allocation-mb", "low"),
		model.NewConfigFinding(model.SeverityWarn, "yarn-site", "yarn.nodemanager.resource.memory-mb", "low"),
	}
	fake := &fakeAdvisor{result: &model.ValidationResult{Findings: findings, Summary: model.NewFindingSummary(findings)}}
	s := New(testServerConfig(), fake, zerolog.Nop())

	rec := doRequest(t, s, http.MethodPost, "/api/v1/validations", yarnRequest)

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Findings, 3)
	assert.Equal(t, 2, got.Summary.WarnCount)

	metrics := doRequest(t, s, http.MethodGet, "/metrics", "").Body.String()
	assert.Contains(t, metrics, `advisor_validation_findings_total{level="WARN"} 2`)
	assert.Contains(t, metrics, `advisor_validation_findings_total{level="ERROR"} 1`)
	assert.Contains(t, metrics, `advisor_http_requests_total{method="POST",path="/api/v1/validations",status="200"} 1`)
}

func TestMetrics_UnmatchedRoute(t *testing.T) {
	s := New(testServerConfig(), &fakeAdvisor{}, zerolog.Nop())

	assert.Equal(t, http.StatusNotFound, doRequest(t, s, http.MethodGet, "/nope", "").Code)

	metrics := doRequest(t, s, http.MethodGet, "/metrics", "").Body.String()
	assert.Contains(t, metrics, `path="unmatched",status="404"`)
}

func TestClusterRoutes(t *testing.T) {
	t.Run("disabled without a source", func(t *testing.T) {
		s := New(testServerConfig(), &fakeAdvisor{}, zerolog.Nop())

		rec := doRequest(t, s, http.MethodGet, "/api/v1/clusters/c1/recommendations", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("fetches the named cluster", func(t *testing.T) {
		src := &fakeSource{req: &model.Request{}}
		fake := &fakeAdvisor{rec: &model.Recommendation{Configurations: model.Configurations{}}}
		s := New(testServerConfig(), fake, zerolog.Nop(), WithRequestSource(src))

		rec := doRequest(t, s, http.MethodGet, "/api/v1/clusters/prod/recommendations", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "prod", src.cluster)
	})

	t.Run("source failure is a bad gateway", func(t *testing.T) {
		src := &fakeSource{err: errors.New("inventory API returned status 503")}
		s := New(testServerConfig(), &fakeAdvisor{}, zerolog.Nop(), WithRequestSource(src))

		rec := doRequest(t, s, http.MethodGet, "/api/v1/clusters/prod/validations", "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "503")
	})
}

func TestRun_GracefulShutdown(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	cfg := testServerConfig()
	cfg.Listen = addr
	s := New(cfg, &fakeAdvisor{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_ListenError(t *testing.T) {
	cfg := testServerConfig()
	cfg.Listen = "256.0.0.1:99999"
	s := New(cfg, &fakeAdvisor{}, zerolog.Nop())

	err := s.Run(context.Background())
	assert.Error(t, err)
}
