package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/services"
)

type stubSystemService struct {
	report domain.HealthReport
	err    error
}

func (s *stubSystemService) HealthReport(context.Context) (domain.HealthReport, error) {
	return s.report, s.err
}

var _ services.SystemService = (*stubSystemService)(nil)

type readyzBody struct {
	Status string `json:"status"`
	Checks map[string]struct {
		Status    string `json:"status"`
		LatencyMS int64  `json:"latency_ms"`
	} `json:"checks"`
	Details     []string `json:"details"`
	Version     string   `json:"version"`
	Uptime      string   `json:"uptime"`
	GeneratedAt string   `json:"generated_at"`
}

func TestHealthz_ReportsBuildAndUptime(t *testing.T) {
	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	h := NewHealthHandlers(
		WithHealthBuildInfo(services.BuildInfo{Version: "v0.4.0", CommitSHA: "9f1c2d", Environment: "staging", StartedAt: started}),
		WithHealthClock(func() time.Time { return started.Add(90 * time.Second) }),
	)

	rr := httptest.NewRecorder()
	h.Healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, domain.HealthStatusOK, body["status"])
	assert.Equal(t, "v0.4.0", body["version"])
	assert.Equal(t, "9f1c2d", body["commitSha"])
	assert.Equal(t, "staging", body["environment"])
	assert.Equal(t, "1m30s", body["uptime"])
}

func TestReadyz_StatusCodes(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC)

	cases := []struct {
		name        string
		report      domain.HealthReport
		wantCode    int
		wantDetails []string
	}{
		{
			name: "all dependencies ok",
			report: domain.HealthReport{
				Status: domain.HealthStatusOK,
				Checks: map[string]domain.DependencyHealth{
					"firestore": {Status: domain.HealthStatusOK, Latency: 12 * time.Millisecond},
					"redis":     {Status: domain.HealthStatusOK, Latency: 2 * time.Millisecond},
				},
			},
			wantCode: http.StatusOK,
		},
		{
			name: "degraded publishing bucket stays ready",
			report: domain.HealthReport{
				Status: domain.HealthStatusDegraded,
				Checks: map[string]domain.DependencyHealth{
					"firestore": {Status: domain.HealthStatusOK},
					"storage":   {Status: domain.HealthStatusError, Error: "bucket not found"},
				},
			},
			wantCode:    http.StatusOK,
			wantDetails: []string{"storage: bucket not found"},
		},
		{
			name: "firestore down is not ready",
			report: domain.HealthReport{
				Status: domain.HealthStatusError,
				Checks: map[string]domain.DependencyHealth{
					"firestore": {Status: domain.HealthStatusError, Error: "unavailable"},
					"redis":     {Status: domain.HealthStatusOK},
				},
			},
			wantCode:    http.StatusServiceUnavailable,
			wantDetails: []string{"firestore: unavailable"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandlers(
				WithHealthSystemService(&stubSystemService{report: tc.report}),
				WithHealthClock(func() time.Time { return now }),
			)
			rr := httptest.NewRecorder()
			h.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			require.Equal(t, tc.wantCode, rr.Code)
			var body readyzBody
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.report.Status, body.Status)
			assert.Equal(t, tc.wantDetails, body.Details)
			assert.Len(t, body.Checks, len(tc.report.Checks))
			assert.Equal(t, now.Format(time.RFC3339), body.GeneratedAt)
		})
	}
}

func TestReadyz_CarriesLatencyAndBuild(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC)
	svc := &stubSystemService{report: domain.HealthReport{
		Status:      domain.HealthStatusOK,
		Version:     "v0.4.0",
		Uptime:      2*time.Minute + 400*time.Millisecond,
		GeneratedAt: now,
		Checks: map[string]domain.DependencyHealth{
			"redis": {Status: domain.HealthStatusOK, Latency: 3 * time.Millisecond, CheckedAt: now},
		},
	}}
	h := NewHealthHandlers(WithHealthSystemService(svc), WithHealthClock(func() time.Time { return now }))

	rr := httptest.NewRecorder()
	h.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var body readyzBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "v0.4.0", body.Version)
	assert.Equal(t, "2m0s", body.Uptime)
	assert.EqualValues(t, 3, body.Checks["redis"].LatencyMS)
}

func TestReadyz_WithoutSystemService(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandlers().Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body readyzBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, domain.HealthStatusOK, body.Status)
	assert.Empty(t, body.Checks)
}

func TestReadyz_CollectFailure(t *testing.T) {
	h := NewHealthHandlers(WithHealthSystemService(&stubSystemService{err: errors.New("probe timed out")}))

	rr := httptest.NewRecorder()
	h.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var body readyzBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, domain.HealthStatusError, body.Status)
	assert.Equal(t, []string{"probe timed out"}, body.Details)
}
