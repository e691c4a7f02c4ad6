package response

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	appErrors "github.com/noah-isme/wellness-client/pkg/errors"
)

// Envelope statuses used by the backend.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusFail    = "fail"
)

// Envelope represents the common response contract of the backend.
type Envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
	Errors  json.RawMessage `json:"errors,omitempty"`
	Meta    json.RawMessage `json:"meta,omitempty"`
}

// Decode turns an HTTP status and body into either a bare value stored in
// out or a typed error.
//
// Success responses must be 2xx. A body shaped as {"status":"success","data":...}
// yields data; anything that is not an envelope is taken as the value
// itself, including records with a status of their own. An envelope
// reporting "error" or "fail" is an error even under a 2xx status.
// Empty bodies and null data leave out untouched. out may be nil.
func Decode(status int, body []byte, out interface{}) error {
	if status < 200 || status >= 300 {
		return appErrors.FromStatus(status, messageOf(body))
	}

	trimmed := bytes.TrimSpace(body)
	if status == http.StatusNoContent || len(trimmed) == 0 {
		return nil
	}

	payload := trimmed
	if env, ok, err := envelopeOf(trimmed); err != nil {
		return err
	} else if ok {
		if env.Status != StatusSuccess {
			return appErrors.FromStatus(http.StatusBadRequest, messageOf(trimmed))
		}
		payload = env.Data
	}

	if out == nil || len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInvalidEnvelope.Code, appErrors.ErrInvalidEnvelope.Status, appErrors.ErrInvalidEnvelope.Message)
	}
	return nil
}

// envelopeOf reports whether body is an envelope. It must carry a known
// status and either an envelope key or nothing besides status and meta.
func envelopeOf(body []byte) (Envelope, bool, error) {
	var env Envelope
	if body[0] != '{' {
		return env, false, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return env, false, appErrors.Wrap(err, appErrors.ErrInvalidEnvelope.Code, appErrors.ErrInvalidEnvelope.Status, appErrors.ErrInvalidEnvelope.Message)
	}
	var status string
	if raw, ok := fields["status"]; !ok || json.Unmarshal(raw, &status) != nil {
		return env, false, nil
	}
	switch strings.ToLower(status) {
	case StatusSuccess, StatusError, StatusFail:
	default:
		return env, false, nil
	}

	keyed := false
	for _, key := range envelopeKeys {
		if _, ok := fields[key]; ok {
			keyed = true
			break
		}
	}
	extra := 0
	for key := range fields {
		if key != "status" && key != "meta" {
			extra++
		}
	}
	if !keyed && extra > 0 {
		return env, false, nil
	}

	if err := json.Unmarshal(body, &env); err != nil {
		return env, false, appErrors.Wrap(err, appErrors.ErrInvalidEnvelope.Code, appErrors.ErrInvalidEnvelope.Status, appErrors.ErrInvalidEnvelope.Message)
	}
	env.Status = strings.ToLower(status)
	return env, true, nil
}

var envelopeKeys = []string{"data", "message", "error", "errors"}

// messageOf extracts the server-provided message from an error body. It
// understands "message", "error" as a string or object, and "errors" as a
// list of strings or objects.
func messageOf(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	if msg := rawMessage(env.Error); msg != "" {
		return msg
	}
	var list []json.RawMessage
	if len(env.Errors) > 0 && json.Unmarshal(env.Errors, &list) == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if msg := rawMessage(item); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Message
	}
	return ""
}
