package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"smartagri/models"
)

// FirstNonEmpty returns the first candidate that is not blank.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}

// ExtractErrorMessage picks the failure message in order of preference:
// the upstream's structured "detail" field, its generic "message" field,
// the transport error, then a generic message naming the upstream.
func ExtractErrorMessage(body []byte, transportErr error, upstreamURL string) string {
	var detail, message, transport string

	if len(body) > 0 {
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(body, &payload); err == nil {
			detail = detailText(payload["detail"])
			message = stringField(payload["message"])
		}
	}
	if transportErr != nil {
		transport = transportErr.Error()
	}

	return FirstNonEmpty(detail, message, transport, unreachableMessage(upstreamURL))
}

// NormalizeUpstreamFailure maps a failed upstream exchange onto the uniform
// envelope. status is the upstream status, or 0 when nothing came back.
func NormalizeUpstreamFailure(status int, body []byte, transportErr error, upstreamURL string) (int, models.Envelope) {
	if status == 0 {
		status = http.StatusBadGateway
	}
	msg := ExtractErrorMessage(body, transportErr, upstreamURL)
	return status, models.Fail(status, msg)
}

func unreachableMessage(upstreamURL string) string {
	return fmt.Sprintf("Error connecting to upstream prediction service (%s)", upstreamURL)
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// detailText accepts either a plain string or a list of {"msg": ...} items.
func detailText(raw json.RawMessage) string {
	if s := stringField(raw); s != "" {
		return s
	}
	if len(raw) == 0 {
		return ""
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(items))
	for _, it := range items {
		if it.Msg != "" {
			msgs = append(msgs, it.Msg)
		}
	}
	return strings.Join(msgs, "; ")
}
