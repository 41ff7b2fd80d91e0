// internal/server/server_test.go
package server_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/capture"
	"github.com/xkilldash9x/domlens-cli/internal/config"
	"github.com/xkilldash9x/domlens-cli/internal/orchestrator"
	"github.com/xkilldash9x/domlens-cli/internal/server"
	"github.com/xkilldash9x/domlens-cli/internal/snapshot"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const fixturePage = `<html><body>
	<h1>Inbox</h1>
	<button id="compose">Compose</button>
	<a id="settings" href="/settings">Settings</a>
</body></html>`

// staticCapturer serves the same parsed page for every tab.
type staticCapturer struct {
	page string
	fail bool
}

func (c *staticCapturer) CaptureSnapshot(context.Context, string) (*schemas.Snapshot, error) {
	if c.fail {
		return nil, capture.ErrCaptureUnavailable
	}
	return capture.ParseHTMLString(c.page)
}

func (c *staticCapturer) ElementAtPoint(context.Context, string, float64, float64) (*capture.PointHit, error) {
	return nil, capture.ErrCaptureUnavailable
}

func (c *staticCapturer) Scroll(context.Context, string, string, float64) (*capture.ScrollResult, error) {
	return nil, capture.ErrCaptureUnavailable
}

func newTestServer(t *testing.T, c *staticCapturer) *httptest.Server {
	t.Helper()
	store := snapshot.NewStore(5, 5*time.Minute, zap.NewNop())
	orch := orchestrator.New(c, store, config.FiltersConfig{MaxElements: 50}, zap.NewNop())
	srv := server.New(orch, config.ServerConfig{MaxResponseBytes: 48 * 1024}, zap.NewNop())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(http.DefaultClient.CloseIdleConnections)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &staticCapturer{page: fixturePage})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestOverviewEndpoint(t *testing.T) {
	ts := newTestServer(t, &staticCapturer{page: fixturePage})

	resp := post(t, ts, "/api/v1/tabs/tab-1/overview", `{}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var decoded schemas.OverviewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.NotEmpty(t, decoded.SnapshotID)
	require.Len(t, decoded.Headings, 1)
	assert.Equal(t, "Inbox", decoded.Headings[0].Text)
	assert.NotEmpty(t, decoded.Actionable)
}

func TestOverviewEmptyBodyIsValid(t *testing.T) {
	ts := newTestServer(t, &staticCapturer{page: fixturePage})

	resp := post(t, ts, "/api/v1/tabs/tab-1/overview", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMalformedBodyRejected(t *testing.T) {
	ts := newTestServer(t, &staticCapturer{page: fixturePage})

	resp := post(t, ts, "/api/v1/tabs/tab-1/overview", `{"filters": nope}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var e struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.NotEmpty(t, e.Error)
}

func TestSearchEndpointAndErrorMapping(t *testing.T) {
	ts := newTestServer(t, &staticCapturer{page: fixturePage})

	resp := post(t, ts, "/api/v1/tabs/tab-1/search", `{"tag": "button"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded schemas.SearchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, 1, decoded.TotalCount)

	// No criteria maps to 400.
	resp = post(t, ts, "/api/v1/tabs/tab-1/search", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInspectNotFoundMapsTo404(t *testing.T) {
	ts := newTestServer(t, &staticCapturer{page: fixturePage})

	resp := post(t, ts, "/api/v1/tabs/tab-1/inspect", `{"element_id": 99999}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownDiffBaselineMapsTo404(t *testing.T) {
	ts := newTestServer(t, &staticCapturer{page: fixturePage})

	resp := post(t, ts, "/api/v1/tabs/tab-1/overview", `{"diff_baseline": "gone"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCaptureFailureMapsTo503(t *testing.T) {
	ts := newTestServer(t, &staticCapturer{page: fixturePage, fail: true})

	resp := post(t, ts, "/api/v1/tabs/tab-1/overview", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestDropTabEndpoint(t *testing.T) {
	ts := newTestServer(t, &staticCapturer{page: fixturePage})

	post(t, ts, "/api/v1/tabs/tab-1/overview", `{}`)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/tabs/tab-1/", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestBrotliCompression(t *testing.T) {
	ts := newTestServer(t, &staticCapturer{page: fixturePage})

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/tabs/tab-1/overview",
		bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "br")

	transport := &http.Transport{DisableCompression: true}
	defer transport.CloseIdleConnections()
	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "br", resp.Header.Get("Content-Encoding"))

	var decoded schemas.OverviewResponse
	require.NoError(t, json.NewDecoder(brotli.NewReader(resp.Body)).Decode(&decoded))
	assert.NotEmpty(t, decoded.SnapshotID)
}

func TestTabIDComesFromPath(t *testing.T) {
	ts := newTestServer(t, &staticCapturer{page: fixturePage})

	// The body's tab id is ignored in favor of the URL.
	resp := post(t, ts, "/api/v1/tabs/path-tab/overview", `{"tab_id": "body-tab"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// A second call for the same path tab reuses its history: candidates are
	// no longer new, which they would be if the body id had won.
	var second schemas.OverviewResponse
	resp = post(t, ts, "/api/v1/tabs/path-tab/overview", `{"tab_id": "another"}`)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&second))
	for _, c := range second.Actionable {
		assert.False(t, c.New)
	}
}
