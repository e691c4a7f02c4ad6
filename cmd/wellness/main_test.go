package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-client/internal/app"
	"github.com/noah-isme/wellness-client/internal/apitest"
	"github.com/noah-isme/wellness-client/internal/models"
	"github.com/noah-isme/wellness-client/pkg/config"
	"github.com/noah-isme/wellness-client/pkg/credential"
)

type harness struct {
	srv         *apitest.Server
	creds       *credential.MemoryStore
	exportDir   string
	metricsFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := apitest.New(t)
	srv.RequireAuth()
	srv.AddUser("counselor@example.com", "secret123", models.RoleCounselor)
	srv.Seed("students",
		apitest.Record{"id": "s-1", "student_number": "001", "name": "Alice", "grade": "10"},
		apitest.Record{"id": "s-2", "student_number": "002", "name": "Bob", "grade": "11"},
	)
	return &harness{srv: srv, creds: credential.NewMemoryStore(), exportDir: t.TempDir()}
}

func (h *harness) open(req sessionRequest) (*app.App, error) {
	cfg := &config.Config{
		API:         config.APIConfig{BaseURL: h.srv.APIURL()},
		Cache:       config.CacheConfig{StaleTime: time.Minute},
		Credentials: config.CredentialConfig{Backend: config.CredentialMemory},
		Export:      config.ExportConfig{Dir: h.exportDir},
		Metrics:     config.MetricsConfig{Enabled: req.stats || h.metricsFile != "", File: h.metricsFile},
	}
	return app.New(cfg, app.Options{Logger: zap.NewNop(), Credentials: h.creds, Output: req.stderr})
}

func (h *harness) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = run(context.Background(), args, h.open, strings.NewReader(""), &out, &errOut)
	return out.String(), errOut.String(), err
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	token := h.srv.IssueToken("counselor@example.com")
	require.NoError(t, h.creds.SetToken(context.Background(), token))
}

func TestLoginStoresTokenAndToasts(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, err := h.run(t, "login", "--email", "counselor@example.com", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, stdout, "signed in as counselor (counselor)")
	assert.Contains(t, stderr, "✓ Signed in")

	token, err := h.creds.Token(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	stdout, _, err = h.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "session valid until")
	assert.Contains(t, stdout, "counselor@example.com")
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	h := newHarness(t)
	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"login", "--email", "counselor@example.com"}, h.open,
		strings.NewReader("secret123\n"), &out, &errOut)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "signed in as")
}

func TestWrongPasswordShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	_, stderr, err := h.run(t, "login", "--email", "counselor@example.com", "--password", "nope")
	require.Error(t, err)
	assert.Contains(t, stderr, "✗ Invalid credentials")
}

func TestWhoamiWithoutSession(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run(t, "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestLogoutClearsToken(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, stderr, err := h.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Signed out")

	_, err = h.creds.Token(context.Background())
	assert.ErrorIs(t, err, credential.ErrNoCredential)
}

func TestStudentsListSearchSortAndCSV(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	stdout, _, err := h.run(t, "students", "list", "--search", "ali")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Alice")
	assert.NotContains(t, stdout, "Bob")

	stdout, _, err = h.run(t, "students", "list", "--sort", "name", "--sort", "name", "--format", "csv", "--out", "-")
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(stdout)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "ID", records[0][0])
	assert.Equal(t, "Bob", records[1][2])
	assert.Equal(t, "Alice", records[2][2])
}

func TestStudentsListServerFilter(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	stdout, _, err := h.run(t, "students", "list", "--filter", "grade=11")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Bob")
	assert.NotContains(t, stdout, "Alice")

	_, _, err = h.run(t, "students", "list", "--filter", "shoe_size=42")
	assert.Error(t, err)
}

func TestListRejectsUnknownSortColumn(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	_, _, err := h.run(t, "students", "list", "--sort", "shoe_size")
	assert.ErrorContains(t, err, "unknown sort column")
}

func TestExportWithoutOutGoesToExportDir(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	stdout, _, err := h.run(t, "students", "list", "--format", "pdf")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stdout, "wrote "))

	path := strings.TrimSpace(strings.TrimPrefix(stdout, "wrote "))
	assert.Equal(t, h.exportDir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "students-"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	stdout, _, err = h.run(t, "exports", "clean", "--older-than", "0s")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 file(s) removed")
	assert.NoFileExists(t, path)
}

func TestCaseWorkflow(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	stdout, stderr, err := h.run(t, "cases", "open", "--student", "s-1", "--title", "Exam stress", "--category", "academic")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Case created")
	id := strings.TrimSpace(stdout)
	require.NotEmpty(t, id)

	_, stderr, err = h.run(t, "cases", "note", id, "--body", "Met with parents")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Note added")

	_, _, err = h.run(t, "cases", "close", id)
	require.Error(t, err, "a resolution is required")
	assert.Zero(t, h.srv.Calls("POST /cases/"+id+"/close"))

	_, _, err = h.run(t, "cases", "close", id, "--resolution", "Study plan agreed")
	require.NoError(t, err)

	stdout, _, err = h.run(t, "cases", "show", id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "closed")
	assert.Contains(t, stdout, "Met with parents")
}

func TestUnknownRecordShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	_, _, err := h.run(t, "students", "show", "nobody")
	assert.ErrorContains(t, err, "student not found")
}

func TestUploadAvatar(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nfake"), 0o600))

	stdout, _, err := h.run(t, "upload", "avatar", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(stdout), h.srv.URL), stdout)
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	stdout, _, err := h.run(t, "dashboard", "--filter", "grade=10")
	require.NoError(t, err)
	assert.Contains(t, stdout, "total_students")
	assert.Contains(t, stdout, "Risk trend")
	assert.Contains(t, stdout, "Assessment completion")
}

func TestStatsFlagPrintsSnapshot(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	stdout, stderr, err := h.run(t, "--stats", "students", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Alice")
	assert.NotContains(t, stdout, "requests_total")
	assert.Contains(t, stderr, "session stats")
	assert.Regexp(t, `requests_total\s+1\b`, stderr)

	_, stderr, err = h.run(t, "students", "list")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "session stats")
}

func TestMetricsFileWrittenEvenOnFailure(t *testing.T) {
	h := newHarness(t)
	h.metricsFile = filepath.Join(t.TempDir(), "wellness.prom")
	h.login(t)

	_, _, err := h.run(t, "students", "list")
	require.NoError(t, err)
	data, err := os.ReadFile(h.metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wellness_api_requests_total")
	assert.Contains(t, string(data), `status="200"`)

	_, _, err = h.run(t, "students", "show", "nobody")
	require.Error(t, err)
	data, err = os.ReadFile(h.metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `status="404"`)
}
