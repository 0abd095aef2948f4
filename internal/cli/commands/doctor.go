package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/indexlens/indexlens/internal/cli/config"
	"github.com/indexlens/indexlens/internal/cli/output"
	"github.com/indexlens/indexlens/internal/search"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration and cluster connection",
		Long: `Probe the configured cluster and report what works and what does not.

The doctor runs three groups of checks:
- Configuration (cluster URL, credentials, TLS settings)
- Connectivity (endpoint reachability, authentication)
- Catalog (index listing, maintenance job API)

Every check runs even when an earlier one fails, so one report shows
the whole picture.`,
		Example: `  # Check the active configuration
  indexlens doctor

  # Check a specific cluster
  indexlens doctor --url https://search.internal:9200

  # Machine-readable report
  indexlens doctor -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutClient(cmd)
			out := runDoctorChecks(cmd.Context(), cmdCtx.Cfg, cmdCtx.Logger)

			if cmdCtx.Renderer.EffectiveMode() == output.ModeJSON {
				return cmdCtx.Renderer.JSON(out)
			}
			return renderDoctor(cmdCtx.Renderer, out)
		},
	}
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Cluster         ClusterSummary `json:"cluster"`
	Checks          []HealthCheck  `json:"checks"`
	Score           int            `json:"score"`
	Recommendations []string       `json:"recommendations"`
	IssueCount      int            `json:"issue_count"`
}

// ClusterSummary describes the probed cluster as far as the checks got.
type ClusterSummary struct {
	URL     string `json:"url"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	Indices int    `json:"indices"`
}

// HealthCheck is one probe result.
type HealthCheck struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Group   string   `json:"group"`
	Status  string   `json:"status"` // "pass", "warn", "error"
	Details []string `json:"details,omitempty"`
}

const (
	groupConfiguration = "configuration"
	groupConnectivity  = "connectivity"
	groupCatalog       = "catalog"
)

func runDoctorChecks(ctx context.Context, cfg *config.Config, logger *slog.Logger) *DoctorOutput {
	summary := ClusterSummary{}
	if cfg.Cluster != nil {
		summary.URL = cfg.Cluster.URL
	}

	checks := []HealthCheck{
		checkClusterURL(cfg),
		checkCredentials(cfg),
		checkTLS(cfg),
	}

	client, err := newDoctorClient(cfg, logger)
	if err != nil {
		checks = append(checks, HealthCheck{
			ID:      "reachable",
			Name:    "Cluster reachable",
			Group:   groupConnectivity,
			Status:  "error",
			Details: []string{err.Error()},
		})
	} else {
		reach, auth := checkConnectivity(ctx, client, &summary)
		checks = append(checks, reach, auth)
		checks = append(checks, checkCatalog(ctx, client, &summary))
		checks = append(checks, checkJobs(ctx, client))
	}

	issues := 0
	for _, c := range checks {
		if c.Status != "pass" {
			issues++
		}
	}

	return &DoctorOutput{
		Cluster:         summary,
		Checks:          checks,
		Score:           scoreChecks(checks),
		Recommendations: recommendations(checks),
		IssueCount:      issues,
	}
}

func newDoctorClient(cfg *config.Config, logger *slog.Logger) (*search.Client, error) {
	if cfg.Cluster == nil {
		return nil, fmt.Errorf("no cluster configured")
	}
	return search.New(*cfg.Cluster, logger)
}

func checkClusterURL(cfg *config.Config) HealthCheck {
	check := HealthCheck{ID: "cluster-url", Name: "Cluster URL", Group: groupConfiguration, Status: "pass"}

	if cfg.Cluster == nil || cfg.Cluster.URL == "" {
		check.Status = "error"
		check.Details = []string{"cluster.url is not set"}
		return check
	}

	parsed, err := url.Parse(cfg.Cluster.URL)
	if err != nil {
		check.Status = "error"
		check.Details = []string{err.Error()}
		return check
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		check.Status = "error"
		check.Details = []string{fmt.Sprintf("unsupported scheme %q", parsed.Scheme)}
		return check
	}

	check.Details = []string{cfg.Cluster.URL}
	return check
}

func checkCredentials(cfg *config.Config) HealthCheck {
	check := HealthCheck{ID: "credentials", Name: "Credentials", Group: groupConfiguration, Status: "pass"}
	if cfg.Cluster == nil {
		return check
	}

	switch {
	case cfg.Cluster.Username != "" && cfg.Cluster.Password == "":
		check.Status = "warn"
		check.Details = []string{"username is set but password is empty"}
	case cfg.Cluster.Username == "":
		check.Details = []string{"anonymous access"}
	}
	return check
}

func checkTLS(cfg *config.Config) HealthCheck {
	check := HealthCheck{ID: "tls", Name: "TLS verification", Group: groupConfiguration, Status: "pass"}
	if cfg.Cluster != nil && cfg.Cluster.SkipTLSVerify {
		check.Status = "warn"
		check.Details = []string{"certificate verification is disabled"}
	}
	return check
}

// checkConnectivity probes the root endpoint once and derives both the
// reachability and the authentication verdict from the answer. A
// credentials rejection still proves the endpoint is there.
func checkConnectivity(ctx context.Context, client *search.Client, summary *ClusterSummary) (HealthCheck, HealthCheck) {
	reach := HealthCheck{ID: "reachable", Name: "Cluster reachable", Group: groupConnectivity, Status: "pass"}
	auth := HealthCheck{ID: "auth", Name: "Authentication", Group: groupConnectivity, Status: "pass"}

	info, err := client.Ping(ctx)
	switch {
	case err == nil:
		summary.Name = info.ClusterName
		summary.Version = info.Version.Number
		detail := info.ClusterName
		if info.Version.Number != "" {
			detail = fmt.Sprintf("%s, version %s", info.ClusterName, info.Version.Number)
		}
		reach.Details = []string{detail}
	case isAuthError(err):
		reach.Details = []string{"endpoint answered"}
		auth.Status = "error"
		auth.Details = []string{err.Error()}
	default:
		reach.Status = "error"
		reach.Details = []string{err.Error()}
		auth.Status = "warn"
		auth.Details = []string{"not checked while the cluster is unreachable"}
	}
	return reach, auth
}

func isAuthError(err error) bool {
	var backendErr *search.BackendError
	if errors.As(err, &backendErr) {
		return backendErr.StatusCode == http.StatusUnauthorized || backendErr.StatusCode == http.StatusForbidden
	}
	return false
}

func checkCatalog(ctx context.Context, client *search.Client, summary *ClusterSummary) HealthCheck {
	check := HealthCheck{ID: "indices", Name: "Index catalog", Group: groupCatalog, Status: "pass"}

	resp, err := client.ListIndices(ctx, search.ListIndicesParams{Size: 1})
	switch {
	case err == nil:
		summary.Indices = resp.TotalIndices
		if resp.TotalIndices == 0 {
			check.Details = []string{"catalog is empty"}
		} else {
			check.Details = []string{fmt.Sprintf("%d indices visible", resp.TotalIndices)}
		}
	case search.IsNotFound(err):
		check.Details = []string{"catalog is empty"}
	default:
		check.Status = "error"
		check.Details = []string{err.Error()}
	}
	return check
}

// checkJobs treats a missing job API as fine; not every compatible
// backend exposes rollup jobs.
func checkJobs(ctx context.Context, client *search.Client) HealthCheck {
	check := HealthCheck{ID: "jobs", Name: "Maintenance job API", Group: groupCatalog, Status: "pass"}

	jobs, err := client.ListJobs(ctx)
	switch {
	case err == nil:
		check.Details = []string{fmt.Sprintf("%d jobs configured", len(jobs))}
	case search.IsNotFound(err):
		check.Details = []string{"not exposed by this cluster"}
	default:
		check.Status = "warn"
		check.Details = []string{err.Error()}
	}
	return check
}

// scoreChecks folds the check statuses into a 0-100 score.
func scoreChecks(checks []HealthCheck) int {
	score := 100
	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= 25
		case "warn":
			score -= 10
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// recommendations maps failing checks to next steps, one per check.
func recommendations(checks []HealthCheck) []string {
	var recs []string
	for _, check := range checks {
		if check.Status == "pass" {
			continue
		}
		if rec := recommendationFor(check.ID); rec != "" {
			recs = append(recs, rec)
		}
	}
	return recs
}

func recommendationFor(id string) string {
	switch id {
	case "cluster-url":
		return "Set cluster.url in indexlens.yaml or pass --url"
	case "credentials":
		return "Provide both username and password, or neither"
	case "tls":
		return "Remove skip_tls_verify once the cluster presents a trusted certificate"
	case "reachable":
		return "Check that the cluster address is reachable from this host"
	case "auth":
		return "Verify the configured credentials against the cluster"
	case "indices":
		return "Grant the configured user access to the index catalog"
	case "jobs":
		return "Job listing failed; the jobs command will not work until it does"
	default:
		return ""
	}
}

func renderDoctor(r *output.Renderer, out *DoctorOutput) error {
	r.Header(1, "Cluster health")
	r.Println("")

	titleCaser := cases.Title(language.English)
	currentGroup := ""
	for _, check := range out.Checks {
		if check.Group != currentGroup {
			if currentGroup != "" {
				r.Println("")
			}
			currentGroup = check.Group
			r.Header(2, titleCaser.String(check.Group))
		}

		status := "success"
		switch check.Status {
		case "warn":
			status = "warning"
		case "error":
			status = "error"
		}
		r.StatusLine(check.Name, status, strings.Join(check.Details, "; "))
	}

	r.Println("")
	r.Printf("Health score: %d/100\n", out.Score)

	if len(out.Recommendations) > 0 {
		r.Println("")
		r.Header(2, "Recommendations")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
	}

	return nil
}
