// ABOUTME: Decode endpoint: dispatches one payload and returns the typed result.
// ABOUTME: Undecodable payloads answer 422 with a raw hex/text fallback.

package api

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/2389/qreader/internal/auth"
	apierrors "github.com/2389/qreader/internal/errors"
	"github.com/2389/qreader/internal/view"
)

// decodeResponse is the body of a successful decode.
type decodeResponse struct {
	ID           string             `json:"id,omitempty"`
	Scheme       string             `json:"scheme"`
	Decoder      string             `json:"decoder"`
	Kind         string             `json:"kind"`
	Fields       map[string]string  `json:"fields"`
	Summary      string             `json:"summary"`
	Actions      []view.Action      `json:"actions"`
	Capabilities []view.Capability  `json:"capabilities"`
}

// rawFallback describes a payload no decoder accepted.
type rawFallback struct {
	ID      string `json:"id,omitempty"`
	Scheme  string `json:"scheme,omitempty"`
	Decoder string `json:"decoder,omitempty"`
	Hex     string `json:"hex"`
	Text    string `json:"text"`
}

// errNotDecoded carries the fallback of an undecodable payload.
type errNotDecoded struct {
	fallback rawFallback
}

func (e *errNotDecoded) Error() string {
	if e.fallback.Scheme == "" {
		return "payload has no scheme"
	}
	if e.fallback.Decoder == "" {
		return fmt.Sprintf("no decoder for scheme %q", e.fallback.Scheme)
	}
	return fmt.Sprintf("decoder %q rejected the payload", e.fallback.Decoder)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) {
	encoding := r.URL.Query().Get("encoding")
	save := r.URL.Query().Get("save") != "false"

	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxPayload+1))
	if err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrInvalidBody, "failed to read request body")
		return
	}
	if int64(len(body)) > s.maxPayload {
		apierrors.WriteError(w, http.StatusRequestEntityTooLarge, apierrors.ErrPayloadTooLarge,
			fmt.Sprintf("payload exceeds %d bytes", s.maxPayload))
		return
	}

	payload, err := decodeEncoding(encoding, body)
	if err != nil {
		apierrors.WriteErrorWithField(w, http.StatusBadRequest, apierrors.ErrInvalidRequest, err.Error(), "encoding")
		return
	}
	if len(payload) == 0 {
		apierrors.WriteErrorWithField(w, http.StatusBadRequest, apierrors.ErrMissingField, "payload is empty", "payload")
		return
	}

	resp, err := s.process(r.Context(), auth.DeviceFromContext(r.Context()), payload, save)
	if err != nil {
		writeProcessError(w, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, resp)
}

// process decodes and optionally records one payload. Undecodable payloads
// return *errNotDecoded.
func (s *Server) process(ctx context.Context, device string, payload []byte, save bool) (*decodeResponse, error) {
	scan, res, err := s.scanner.Decode(ctx, device, payload, save)
	if err != nil {
		return nil, err
	}

	if res.Code == nil {
		return nil, &errNotDecoded{fallback: rawFallback{
			ID:      scan.ID,
			Scheme:  res.Scheme,
			Decoder: res.Decoder,
			Hex:     hex.EncodeToString(payload),
			Text:    view.PrintableText(payload),
		}}
	}

	return &decodeResponse{
		ID:           scan.ID,
		Scheme:       res.Scheme,
		Decoder:      res.Decoder,
		Kind:         string(res.Code.Kind()),
		Fields:       res.Code.Fields(),
		Summary:      scan.Summary,
		Actions:      view.Actions(res.Code),
		Capabilities: s.views.Capabilities(res.Code),
	}, nil
}

func writeProcessError(w http.ResponseWriter, err error) {
	if nd, ok := err.(*errNotDecoded); ok {
		apierrors.WriteErrorWithDetails(w, http.StatusUnprocessableEntity, apierrors.ErrNotDecoded, nd.Error(), nd.fallback)
		return
	}
	apierrors.WriteErrorWithDetails(w, http.StatusInternalServerError, apierrors.ErrDatabaseError, "failed to record scan", err.Error())
}

// decodeEncoding turns the request body into payload bytes.
func decodeEncoding(encoding string, body []byte) ([]byte, error) {
	switch strings.ToLower(encoding) {
	case "", "raw":
		return body, nil
	case "hex":
		b, err := hex.DecodeString(strings.Join(strings.Fields(string(body)), ""))
		if err != nil {
			return nil, fmt.Errorf("invalid hex payload: %w", err)
		}
		return b, nil
	case "base64":
		text := strings.TrimSpace(string(body))
		b, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			if b, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(text, "=")); err != nil {
				return nil, fmt.Errorf("invalid base64 payload: %w", err)
			}
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
}
