// ABOUTME: Tests for HTTP request logging middleware.
// ABOUTME: Verifies memory safety, body buffering limits, route groups and the recorded rows.

package logging

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/2389/qreader/internal/auth"
	"github.com/2389/qreader/internal/store"
)

// recorder collects rows written by the middleware goroutine.
type recorder struct {
	logs chan *store.RequestLog
}

func newRecorder() *recorder {
	return &recorder{logs: make(chan *store.RequestLog, 10)}
}

func (r *recorder) LogRequest(log *store.RequestLog) error {
	r.logs <- log
	return nil
}

func (r *recorder) next(t *testing.T) *store.RequestLog {
	t.Helper()
	select {
	case log := <-r.logs:
		return log
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for request log")
		return nil
	}
}

func (r *recorder) none(t *testing.T) {
	t.Helper()
	select {
	case log := <-r.logs:
		t.Errorf("unexpected request log for %s", log.Path)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestResponseWriter_BuffersResponseBody(t *testing.T) {
	tests := []struct {
		name           string
		responseBody   string
		expectedCapped bool
	}{
		{"small response", "Hello, World!", false},
		{"response at limit", strings.Repeat("x", maxBodySize), false},
		{"response exceeds limit", strings.Repeat("x", maxBodySize+1000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			wrapped := &responseWriter{
				ResponseWriter: rr,
				statusCode:     200,
				body:           &bytes.Buffer{},
			}

			n, err := wrapped.Write([]byte(tt.responseBody))
			if err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			// Verify all bytes were written to the underlying writer
			if n != len(tt.responseBody) {
				t.Errorf("Write() returned %d, want %d", n, len(tt.responseBody))
			}

			buffered := wrapped.body.String()
			if len(buffered) > maxBodySize {
				t.Errorf("Buffered body size %d exceeds maxBodySize %d", len(buffered), maxBodySize)
			}
			if tt.expectedCapped && len(buffered) != maxBodySize {
				t.Errorf("Expected buffered body to be capped at %d, got %d", maxBodySize, len(buffered))
			}
		})
	}
}

func TestResponseWriter_CapturesStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		explicit bool
		code     int
	}{
		{"explicit status", true, http.StatusUnprocessableEntity},
		{"implicit status", false, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := &responseWriter{
				ResponseWriter: httptest.NewRecorder(),
				statusCode:     200,
				body:           &bytes.Buffer{},
			}

			if tt.explicit {
				wrapped.WriteHeader(tt.code)
			}
			wrapped.Write([]byte("body"))

			if wrapped.statusCode != tt.code {
				t.Errorf("statusCode = %d, want %d", wrapped.statusCode, tt.code)
			}
		})
	}
}

func TestResponseWriter_Hijack(t *testing.T) {
	wrapped := &responseWriter{
		ResponseWriter: httptest.NewRecorder(),
		statusCode:     200,
		body:           &bytes.Buffer{},
	}

	// httptest.ResponseRecorder doesn't implement Hijacker, should return error
	_, _, err := wrapped.Hijack()
	if err != http.ErrNotSupported {
		t.Errorf("Hijack() error = %v, want %v", err, http.ErrNotSupported)
	}
}

func TestMiddleware_RecordsRequest(t *testing.T) {
	rec := newRecorder()
	handler := Middleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"code":"not_decoded"}`))
	}))

	req := httptest.NewRequest("POST", "/api/decode", strings.NewReader("unknown:payload"))
	req = req.WithContext(auth.WithDevice(req.Context(), "pixel-7"))
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	log := rec.next(t)
	if log.RouteGroup != GroupDecode {
		t.Errorf("RouteGroup = %q, want %q", log.RouteGroup, GroupDecode)
	}
	if log.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d", log.StatusCode)
	}
	if log.DeviceID != "pixel-7" {
		t.Errorf("DeviceID = %q", log.DeviceID)
	}
	if log.IPAddress != "10.0.0.1" {
		t.Errorf("IPAddress = %q", log.IPAddress)
	}
	if log.RequestBody != "unknown:payload" {
		t.Errorf("RequestBody = %q", log.RequestBody)
	}
	if !strings.Contains(log.ResponseBody, "not_decoded") {
		t.Errorf("ResponseBody = %q", log.ResponseBody)
	}
}

func TestMiddleware_SummarisesBinaryBodies(t *testing.T) {
	rec := newRecorder()
	handler := Middleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("POST", "/api/decode", bytes.NewReader([]byte{0xff, 0xfe, 0x00}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got := rec.next(t).RequestBody; got != "(3 binary bytes)" {
		t.Errorf("RequestBody = %q", got)
	}
}

func TestMiddleware_SkipsHealthcheckLogging(t *testing.T) {
	rec := newRecorder()
	handler := Middleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", rr.Code, http.StatusOK)
	}
	rec.none(t)
}

func TestMiddleware_PassesFullRequestBody(t *testing.T) {
	rec := newRecorder()

	originalBody := strings.Repeat("x", maxBodySize+1000)
	var handlerReadBody string

	handler := Middleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		handlerReadBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/decode", strings.NewReader(originalBody))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if handlerReadBody != originalBody {
		t.Errorf("handler read %d bytes, want %d", len(handlerReadBody), len(originalBody))
	}
	if got := rec.next(t).RequestBody; len(got) != maxBodySize {
		t.Errorf("recorded body size = %d, want %d", len(got), maxBodySize)
	}
}

func TestGetGroupFromPath(t *testing.T) {
	tests := map[string]string{
		"/api/decode":          GroupDecode,
		"/ws/scan":             GroupDecode,
		"/api/scans":           GroupScans,
		"/api/scans/abc/view":  GroupScans,
		"/api/packages/wifi":   GroupPackages,
		"/api/decoders":        GroupCatalog,
		"/api/views":           GroupCatalog,
		"/api/logs":            GroupLogs,
		"/":                    GroupPages,
		"/scans/abc":           GroupPages,
		"/somewhere/else":      GroupUnknown,
	}
	for path, want := range tests {
		if got := GetGroupFromPath(path); got != want {
			t.Errorf("GetGroupFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}
