// ABOUTME: Device identity middleware for API requests.
// ABOUTME: Optionally enforces a shared bearer token and tags each request with the scanning device.

package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	apierrors "github.com/2389/qreader/internal/errors"
)

type contextKey string

const deviceContextKey contextKey = "device"

// DefaultDevice is used when a request names no device.
const DefaultDevice = "default"

// DeviceHeader names the scanning device.
const DeviceHeader = "X-Device-ID"

const maxDeviceLength = 64

// Middleware tags requests with their device. When token is non-empty every
// request must carry it as a bearer token.
func Middleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer := bearerToken(r.Header.Get("Authorization"))
			if token != "" && subtle.ConstantTimeCompare([]byte(bearer), []byte(token)) != 1 {
				apierrors.WriteError(w, http.StatusUnauthorized, apierrors.ErrUnauthorized, "a valid bearer token is required")
				return
			}

			device := extractDevice(r.Header.Get(DeviceHeader), bearer)
			ctx := WithDevice(r.Context(), device)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithDevice returns ctx tagged with device.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, deviceContextKey, device)
}

func DeviceFromContext(ctx context.Context) string {
	device, ok := ctx.Value(deviceContextKey).(string)
	if !ok || device == "" {
		return DefaultDevice
	}
	return device
}

func bearerToken(authHeader string) string {
	token := strings.TrimPrefix(authHeader, "Bearer ")
	return strings.TrimSpace(token)
}

func extractDevice(header, bearer string) string {
	if ValidDevice(header) {
		return header
	}

	// "device:" tokens name the device when no shared token is configured
	if strings.HasPrefix(bearer, "device:") {
		if device := strings.TrimPrefix(bearer, "device:"); ValidDevice(device) {
			return device
		}
	}

	return DefaultDevice
}

// ValidDevice reports whether id is a usable device identifier.
func ValidDevice(id string) bool {
	if id == "" || len(id) > maxDeviceLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.', r == '@':
		default:
			return false
		}
	}
	return true
}
