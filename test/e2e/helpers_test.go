// ABOUTME: Test helpers for E2E testing.
// ABOUTME: Starts a full server over a file-backed database and wraps authorized requests.

package e2e

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2389/qreader/internal/api"
	"github.com/2389/qreader/internal/app"
	"github.com/2389/qreader/internal/config"
	_ "github.com/2389/qreader/plugins/base"   // Register base decoders
	_ "github.com/2389/qreader/plugins/docomo" // Register Docomo decoders
	_ "github.com/2389/qreader/plugins/text"   // Register text decoder
	_ "github.com/2389/qreader/plugins/vcard"  // Register vCard decoder
	_ "github.com/2389/qreader/plugins/zxing"  // Register ZXing decoders
)

const testToken = "e2e-token"

// TestServer wraps a test HTTP server with its dependency graph
type TestServer struct {
	Server *httptest.Server
	Wire   *app.Wire
	Dir    string
	Device string
}

// StartTestServer creates and starts a test server in a fresh data directory
func StartTestServer(t *testing.T) *TestServer {
	t.Helper()
	return StartTestServerIn(t, t.TempDir())
}

// StartTestServerIn starts a server over an existing data directory, as after a restart
func StartTestServerIn(t *testing.T, dir string) *TestServer {
	t.Helper()

	w, err := app.NewWire(context.Background(), &config.Config{
		DBPath:          filepath.Join(dir, "qreader.db"),
		PackagesDir:     filepath.Join(dir, "packages"),
		Token:           testToken,
		MaxPayloadBytes: api.DefaultMaxPayload,
	})
	if err != nil {
		t.Fatalf("failed to wire server: %v", err)
	}

	ts := &TestServer{
		Server: httptest.NewServer(api.NewServer(w).Handler()),
		Wire:   w,
		Dir:    dir,
		Device: "e2e-phone",
	}
	t.Cleanup(ts.Close)
	return ts
}

// Close shuts down the test server and releases the store
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Wire.Close()
}

func (ts *TestServer) do(t *testing.T, method, path, contentType string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.Server.URL+path, body)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("X-Device-ID", ts.Device)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// GET makes a GET request with authorization
func (ts *TestServer) GET(t *testing.T, path string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodGet, path, "", nil)
}

// Decode posts a raw payload to the decode endpoint
func (ts *TestServer) Decode(t *testing.T, payload string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodPost, "/api/decode", "application/octet-stream", strings.NewReader(payload))
}

// Upload installs a package archive through the multipart endpoint
func (ts *TestServer) Upload(t *testing.T, filename string, data []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("package", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return ts.do(t, http.MethodPost, "/api/packages", mw.FormDataContentType(), &buf)
}

// DELETE makes a DELETE request with authorization
func (ts *TestServer) DELETE(t *testing.T, path string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodDelete, path, "", nil)
}

// BuildPackage zips files into a package archive
func BuildPackage(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close archive: %v", err)
	}
	return buf.Bytes()
}

// AssertStatusCode checks if response has expected status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		t.Errorf("expected status %d, got %d. Body: %s", expected, resp.StatusCode, string(body))
	}
}

// DecodeJSON decodes response body as JSON
func DecodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
}

// ReadBody reads and returns the response body
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(body)
}
