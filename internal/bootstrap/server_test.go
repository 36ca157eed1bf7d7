package bootstrap_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	app "github.com/mohammadpnp/padron-import/internal/application/member"
	"github.com/mohammadpnp/padron-import/internal/bootstrap"
	"github.com/mohammadpnp/padron-import/pkg/logger"
	"github.com/mohammadpnp/padron-import/pkg/metrics"
)

type idleService struct{}

func (idleService) StartImport(ctx context.Context, in app.StartImportInput) (app.StartImportOutput, error) {
	return app.StartImportOutput{}, nil
}

func (idleService) GetStatus(jobID string) app.ImportStatus {
	return app.ImportStatus{JobID: jobID}
}

func (idleService) Cancel(jobID string) bool { return false }

func TestHTTPServerServesHealthAndMetrics(t *testing.T) {
	t.Parallel()

	m := metrics.NewImportMetrics("padron")
	m.JobsTotal.WithLabelValues("succeeded").Inc()
	server := bootstrap.NewHTTPServer(bootstrap.ServerConfig{MaxUploadSize: "1M"}, idleService{}, m, logger.NewNop())

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `padron_import_jobs_total{outcome="succeeded"} 1`) {
		t.Fatalf("expected import counter in metrics output")
	}
}

func TestHTTPServerEnforcesBodyLimit(t *testing.T) {
	t.Parallel()

	server := bootstrap.NewHTTPServer(bootstrap.ServerConfig{MaxUploadSize: "1K"}, idleService{}, nil, logger.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/members", strings.NewReader(strings.Repeat("x", 4096)))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()

	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}
