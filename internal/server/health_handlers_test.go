package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthData struct {
	Status        string                      `json:"status"`
	UptimeSeconds int64                       `json:"uptime_seconds"`
	Environment   string                      `json:"environment"`
	Version       string                      `json:"version"`
	Dependencies  map[string]dependencyStatus `json:"dependencies"`
	System        map[string]interface{}      `json:"system"`
}

func okProbe() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
}

func failingProbe() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
}

func TestHealthAllDependenciesUp(t *testing.T) {
	f := newTestServer(t)

	var secUA string
	sec := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{}`))
	}))
	defer sec.Close()
	yahoo := okProbe()
	defer yahoo.Close()

	f.srv.secProbeURL = sec.URL
	f.srv.yahooProbeURL = yahoo.URL

	rec := f.get("/api/v1/health")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode[healthData](t, rec)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "Service is healthy", env.Message)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "test", env.Data.Environment)
	assert.Equal(t, Version, env.Data.Version)

	require.Contains(t, env.Data.Dependencies, "sec_edgar")
	require.Contains(t, env.Data.Dependencies, "yahoo_finance")
	assert.Equal(t, "healthy", env.Data.Dependencies["sec_edgar"].Status)
	assert.Equal(t, "healthy", env.Data.Dependencies["yahoo_finance"].Status)
	assert.Equal(t, sec.URL, env.Data.Dependencies["sec_edgar"].URL)

	// The SEC insists on a descriptive User-Agent even for probes.
	assert.Equal(t, "companylookup-tests/1.0 (test@example.com)", secUA)

	assert.NotNil(t, env.Data.System)
}

func TestHealthDegradedWhenOneDependencyDown(t *testing.T) {
	f := newTestServer(t)

	sec := okProbe()
	defer sec.Close()
	yahoo := failingProbe()
	defer yahoo.Close()

	f.srv.secProbeURL = sec.URL
	f.srv.yahooProbeURL = yahoo.URL

	rec := f.get("/api/v1/health")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode[healthData](t, rec)
	assert.Equal(t, "warning", env.Status)
	assert.Equal(t, "degraded", env.Data.Status)
	assert.Equal(t, "unhealthy", env.Data.Dependencies["yahoo_finance"].Status)
	assert.Contains(t, env.Data.Dependencies["yahoo_finance"].Error, "500")
}

func TestHealthUnhealthyWhenAllDependenciesDown(t *testing.T) {
	f := newTestServer(t)

	sec := failingProbe()
	defer sec.Close()
	// A closed server exercises the connection error path.
	yahoo := okProbe()
	yahooURL := yahoo.URL
	yahoo.Close()

	f.srv.secProbeURL = sec.URL
	f.srv.yahooProbeURL = yahooURL

	rec := f.get("/api/v1/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	env := decode[healthData](t, rec)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "unhealthy", env.Data.Status)
	assert.NotEmpty(t, env.Data.Dependencies["sec_edgar"].Error)
	assert.NotEmpty(t, env.Data.Dependencies["yahoo_finance"].Error)
}

func TestHealthSimple(t *testing.T) {
	f := newTestServer(t)

	rec := f.get("/api/v1/health/simple")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "Service is running", env.Message)
	assert.Equal(t, "ok", env.Data["status"])
	assert.Contains(t, env.Data, "uptime_seconds")
}

type dependenciesData struct {
	Dependencies map[string]dependencyStatus `json:"dependencies"`
	Summary      struct {
		Healthy          int     `json:"healthy"`
		Total            int     `json:"total"`
		HealthPercentage float64 `json:"health_percentage"`
	} `json:"summary"`
}

func TestHealthDependenciesSummary(t *testing.T) {
	f := newTestServer(t)

	sec := okProbe()
	defer sec.Close()
	yahoo := failingProbe()
	defer yahoo.Close()

	f.srv.secProbeURL = sec.URL
	f.srv.yahooProbeURL = yahoo.URL

	rec := f.get("/api/v1/health/dependencies")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode[dependenciesData](t, rec)
	assert.Equal(t, 1, env.Data.Summary.Healthy)
	assert.Equal(t, 2, env.Data.Summary.Total)
	assert.Equal(t, 50.0, env.Data.Summary.HealthPercentage)
	assert.Len(t, env.Data.Dependencies, 2)
}
