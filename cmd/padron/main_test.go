package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	app "github.com/mohammadpnp/padron-import/internal/application/member"
	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
)

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "padron dev") {
		t.Errorf("expected output to contain 'padron dev', got: %s", out)
	}
}

func TestImportCmdRequiresSubmitter(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"import", "padron.xlsx"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error without --by")
	}
	if !strings.Contains(buf.String(), `"by" not set`) {
		t.Errorf("expected missing flag message, got: %s", buf.String())
	}
}

type finishedService struct {
	status  app.ImportStatus
	started app.StartImportInput
	waited  bool
}

func (f *finishedService) StartImport(ctx context.Context, in app.StartImportInput) (app.StartImportOutput, error) {
	f.started = in
	return app.StartImportOutput{JobID: f.status.JobID, Status: "running"}, nil
}

func (f *finishedService) GetStatus(jobID string) app.ImportStatus { return f.status }
func (f *finishedService) Cancel(jobID string) bool                { return false }
func (f *finishedService) Wait()                                   { f.waited = true }

func TestRunImportPrintsSummary(t *testing.T) {
	service := &finishedService{status: app.ImportStatus{
		JobID:     "job-1",
		Found:     true,
		Completed: true,
		Progress:  100,
		Result:    app.ImportResultOutput{TotalRows: 3, Imported: 2, NewCount: 2, Duplicates: 1},
		ErrorDetails: []app.ErrorDetailOutput{
			{Row: 4, Identifier: "SIN CEDULA", Reason: "missing national id"},
		},
	}}
	buf := new(bytes.Buffer)

	if err := runImport(context.Background(), buf, service, []byte("PK"), "ana.operadora"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	out := buf.String()
	for _, want := range []string{"job job-1 started", "imported: 2 (new 2, updated 0)", "row 4 [SIN CEDULA]: missing national id"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
	if service.started.SubmittedBy != "ana.operadora" || !service.waited {
		t.Errorf("unexpected service use: %+v waited=%v", service.started, service.waited)
	}
}

func TestRunImportReturnsJobError(t *testing.T) {
	msg := domain.CancelledByUser
	service := &finishedService{status: app.ImportStatus{JobID: "job-2", Found: true, Completed: true, Cancelled: true, Error: &msg}}

	err := runImport(context.Background(), new(bytes.Buffer), service, []byte("PK"), "ana")
	if err == nil || err.Error() != domain.CancelledByUser {
		t.Fatalf("expected cancellation error, got %v", err)
	}
}
