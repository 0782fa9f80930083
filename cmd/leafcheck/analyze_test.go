package leafcheck

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

const okPayload = `{
	"success": true,
	"prediction": "Tomato_Early_Blight",
	"confidence": 87,
	"is_healthy": false,
	"all_predictions": [
		{"class": "Tomato_Early_Blight", "confidence": 87},
		{"class": "Tomato_Late_Blight", "confidence": 9},
		{"class": "Healthy", "confidence": 4}
	],
	"llm_advisory": "1. Explanation: Leaf spot disease.\n2. **Actions**: Remove affected leaves - Apply fungicide - Monitor daily\n7. Disclaimer: Not a substitute for expert advice."
}`

// testEnv isolates config lookup and returns a temp dir.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("LEAFCHECK_RATE_LIMIT", "0")
	t.Setenv("LEAFCHECK_SERVICE_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_FORMAT", "text")
	t.Chdir(dir)
	return dir
}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("\xff\xd8\xffjpeg"), 0o600))
	return path
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func predictionService(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if _, _, err := r.FormFile("file"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "No file uploaded"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestAnalyze_Human(t *testing.T) {
	dir := testEnv(t)
	srv, _ := predictionService(t, http.StatusOK, okPayload)
	img := writeImage(t, dir, "leaf.jpg")

	stdout, stderr, err := run(t, "analyze", img, "--service-url", srv.URL)
	require.NoError(t, err)

	assert.Contains(t, stderr, "Uploading leaf.jpg...")
	assert.Contains(t, stderr, "✗ Infection Detected")
	assert.Contains(t, stderr, "Confidence: 87.0%")
	assert.Contains(t, stdout, "Tomato Early Blight")
	assert.Contains(t, stdout, "Tomato Late Blight")
	assert.Contains(t, stdout, "  • Apply fungicide")
	assert.Contains(t, stdout, "Information not available for this diagnostic step.")
}

func TestAnalyze_JSON(t *testing.T) {
	dir := testEnv(t)
	srv, _ := predictionService(t, http.StatusOK, okPayload)
	img := writeImage(t, dir, "leaf.jpg")

	stdout, _, err := run(t, "analyze", img, "--service-url", srv.URL, "-o", "json")
	require.NoError(t, err)

	var decoded struct {
		Kind  string `json:"kind"`
		Model struct {
			Badge struct {
				Text string `json:"text"`
			} `json:"badge"`
			Risk string `json:"risk"`
		} `json:"model"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	assert.Equal(t, "succeeded", decoded.Kind)
	assert.Equal(t, "Infection Detected", decoded.Model.Badge.Text)
	assert.Equal(t, "MEDIUM", decoded.Model.Risk)
}

func TestAnalyze_ServiceError(t *testing.T) {
	dir := testEnv(t)
	srv, _ := predictionService(t, http.StatusInternalServerError, `{"error": "Error during prediction: model missing"}`)
	img := writeImage(t, dir, "leaf.jpg")

	_, stderr, err := run(t, "analyze", img, "--service-url", srv.URL)

	require.Error(t, err)
	assert.Contains(t, stderr, "✗ Analysis failed: Error during prediction: model missing")
}

func TestAnalyze_TransportFailure(t *testing.T) {
	dir := testEnv(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	img := writeImage(t, dir, "leaf.jpg")

	_, stderr, err := run(t, "analyze", img, "--service-url", url)

	require.Error(t, err)
	assert.Contains(t, stderr, "✗ Analysis failed: An error occurred during analysis.")
}

func TestAnalyze_MultipleImagesWithOneInvalid(t *testing.T) {
	dir := testEnv(t)
	srv, calls := predictionService(t, http.StatusOK, okPayload)
	a := writeImage(t, dir, "a.jpg")
	b := writeImage(t, dir, "b.gif")
	c := writeImage(t, dir, "c.jpeg")

	stdout, stderr, err := run(t, "analyze", a, b, c, "--service-url", srv.URL)

	require.EqualError(t, err, "1 of 3 analyses failed")
	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, stderr, "invalid file type")
	assert.Equal(t, 2, bytes.Count([]byte(stdout), []byte("Tomato Early Blight\n")))
}

func TestAnalyze_MissingFile(t *testing.T) {
	testEnv(t)
	srv, calls := predictionService(t, http.StatusOK, okPayload)

	_, stderr, err := run(t, "analyze", "nope.jpg", "--service-url", srv.URL)

	require.Error(t, err)
	assert.Contains(t, stderr, "file not found")
	assert.Zero(t, calls.Load())
}

func TestAnalyze_BadFlags(t *testing.T) {
	testEnv(t)

	_, _, err := run(t, "analyze", "leaf.jpg", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")

	_, _, err = run(t, "analyze", "leaf.jpg", "--service-url", "localhost:5000")
	assert.ErrorContains(t, err, "service URL")

	_, _, err = run(t, "analyze")
	assert.Error(t, err)
}

func TestHistory_RequiresDatabase(t *testing.T) {
	testEnv(t)

	_, _, err := run(t, "history")
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, _, err = run(t, "history", "--purge")
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, _, err = run(t, "history", "--purge", "--limit", "5")
	assert.ErrorContains(t, err, "purge")
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "leafcheck dev")
}
