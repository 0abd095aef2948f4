package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indexlens/indexlens/internal/cli/config"
	clitestutil "github.com/indexlens/indexlens/internal/cli/testutil"
	"github.com/indexlens/indexlens/internal/testutil"
)

func testConfig(url string) *config.Config {
	return &config.Config{Cluster: &config.ClusterConfig{URL: url}}
}

func startDoctorServer(t *testing.T) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/":
			fmt.Fprint(w, `{"name":"node-1","cluster_name":"logging-prod","version":{"number":"8.12.0"}}`)
		case strings.HasPrefix(r.URL.Path, "/_cat/indices"):
			fmt.Fprint(w, testutil.CatIndices("logs-2023", "logs-2024"))
		case strings.HasPrefix(r.URL.Path, "/_rollup/jobs"):
			fmt.Fprint(w, testutil.JobsBody([3]string{"hourly-logs", "logs-*", "started"}))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	t.Setenv("INDEXLENS_CLUSTER_URL", srv.URL)
}

func checkByID(t *testing.T, out DoctorOutput, id string) HealthCheck {
	t.Helper()
	for _, c := range out.Checks {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("no check with id %q in %+v", id, out.Checks)
	return HealthCheck{}
}

func TestDoctorHealthyCluster(t *testing.T) {
	startDoctorServer(t)
	t.Setenv("INDEXLENS_OUTPUT", "json")

	out := new(bytes.Buffer)
	cmd := NewDoctorCommand()
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))

	require.NoError(t, cmd.Execute())

	var report DoctorOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))

	assert.Equal(t, 100, report.Score)
	assert.Equal(t, 0, report.IssueCount)
	assert.Empty(t, report.Recommendations)
	assert.Equal(t, "logging-prod", report.Cluster.Name)
	assert.Equal(t, "8.12.0", report.Cluster.Version)
	assert.Equal(t, 2, report.Cluster.Indices)

	assert.Equal(t, "pass", checkByID(t, report, "reachable").Status)
	assert.Equal(t, "pass", checkByID(t, report, "auth").Status)
	assert.Contains(t, checkByID(t, report, "indices").Details[0], "2 indices")
	assert.Contains(t, checkByID(t, report, "jobs").Details[0], "1 jobs")
}

func TestDoctorRejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("INDEXLENS_CLUSTER_URL", srv.URL)
	t.Setenv("INDEXLENS_OUTPUT", "json")

	out := new(bytes.Buffer)
	cmd := NewDoctorCommand()
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))

	require.NoError(t, cmd.Execute())

	var report DoctorOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))

	// A 401 proves the endpoint answered; only authentication fails.
	assert.Equal(t, "pass", checkByID(t, report, "reachable").Status)
	assert.Equal(t, "error", checkByID(t, report, "auth").Status)
	assert.Less(t, report.Score, 100)
	assert.NotEmpty(t, report.Recommendations)
}

func TestDoctorUnreachableCluster(t *testing.T) {
	t.Setenv("INDEXLENS_CLUSTER_URL", "http://127.0.0.1:1")
	t.Setenv("INDEXLENS_OUTPUT", "json")

	out := new(bytes.Buffer)
	cmd := NewDoctorCommand()
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))

	require.NoError(t, cmd.Execute())

	var report DoctorOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))

	assert.Equal(t, "error", checkByID(t, report, "reachable").Status)
	assert.Equal(t, "warn", checkByID(t, report, "auth").Status)
	assert.NotZero(t, report.IssueCount)
}

func TestDoctorMarkdownReport(t *testing.T) {
	startDoctorServer(t)
	t.Setenv("INDEXLENS_OUTPUT", "markdown")

	out := new(bytes.Buffer)
	cmd := NewDoctorCommand()
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))

	require.NoError(t, cmd.Execute())

	got := out.String()
	assert.Contains(t, got, "# Cluster health")
	assert.Contains(t, got, "## Configuration")
	assert.Contains(t, got, "## Connectivity")
	assert.Contains(t, got, "## Catalog")
	assert.Contains(t, got, "Cluster reachable")
	assert.Contains(t, got, "Health score: 100/100")
}

func TestRenderDoctorByMode(t *testing.T) {
	report := &DoctorOutput{
		Cluster: ClusterSummary{URL: "http://127.0.0.1:9200", Name: "logging-prod"},
		Checks: []HealthCheck{
			{ID: "cluster-url", Name: "Cluster URL", Group: groupConfiguration, Status: "pass", Details: []string{"http://127.0.0.1:9200"}},
			{ID: "tls", Name: "TLS verification", Group: groupConfiguration, Status: "warn", Details: []string{"certificate verification is disabled"}},
			{ID: "reachable", Name: "Cluster reachable", Group: groupConnectivity, Status: "error", Details: []string{"connection refused"}},
		},
		Score:           65,
		Recommendations: []string{"Check that the cluster address is reachable from this host"},
		IssueCount:      2,
	}

	tr := clitestutil.NewTestRendererText()
	require.NoError(t, renderDoctor(tr.Renderer, report))

	got := tr.Output()
	clitestutil.AssertContains(t, got, "Cluster health")
	clitestutil.AssertContains(t, got, "Configuration")
	clitestutil.AssertContains(t, got, "Connectivity")
	clitestutil.AssertContains(t, got, "Cluster URL (http://127.0.0.1:9200)")
	clitestutil.AssertContains(t, got, "! TLS verification")
	clitestutil.AssertContains(t, got, "✗ Cluster reachable (connection refused)")
	clitestutil.AssertContains(t, got, "Health score: 65/100")
	clitestutil.AssertContains(t, got, "1. Check that the cluster address")

	tr = clitestutil.NewTestRendererMarkdown()
	require.NoError(t, renderDoctor(tr.Renderer, report))
	clitestutil.AssertNoANSI(t, tr.Output())
	clitestutil.AssertValidMarkdown(t, tr.Output())
	clitestutil.AssertContains(t, tr.Output(), "## Recommendations")
}

func TestScoreChecks(t *testing.T) {
	assert.Equal(t, 100, scoreChecks(nil))
	assert.Equal(t, 100, scoreChecks([]HealthCheck{{Status: "pass"}}))
	assert.Equal(t, 90, scoreChecks([]HealthCheck{{Status: "warn"}}))
	assert.Equal(t, 75, scoreChecks([]HealthCheck{{Status: "error"}}))
	assert.Equal(t, 0, scoreChecks([]HealthCheck{
		{Status: "error"}, {Status: "error"}, {Status: "error"},
		{Status: "error"}, {Status: "error"},
	}))
}

func TestCredentialChecks(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:9200")

	assert.Equal(t, "pass", checkCredentials(cfg).Status)

	cfg.Cluster.Username = "elastic"
	check := checkCredentials(cfg)
	assert.Equal(t, "warn", check.Status)
	assert.Contains(t, check.Details[0], "password is empty")

	cfg.Cluster.Password = "secret"
	assert.Equal(t, "pass", checkCredentials(cfg).Status)
}

func TestClusterURLCheck(t *testing.T) {
	cfg := testConfig("")
	check := checkClusterURL(cfg)
	assert.Equal(t, "error", check.Status)

	cfg = testConfig("ftp://example.com")
	check = checkClusterURL(cfg)
	assert.Equal(t, "error", check.Status)
	assert.Contains(t, check.Details[0], "unsupported scheme")

	cfg = testConfig("https://search.internal:9200")
	assert.Equal(t, "pass", checkClusterURL(cfg).Status)
}
