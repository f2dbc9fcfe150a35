package logistics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// envelope is a provider response reduced to what every call needs. The
// provider is not consistent about field names: success may come as
// "success", "status" or "status_code", and the payload as "data" or
// "response".
type envelope struct {
	ok         bool
	statusCode int
	message    string
	data       json.RawMessage
}

func parseEnvelope(httpStatus int, body []byte) envelope {
	env := envelope{statusCode: httpStatus, data: body}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		env.ok = httpStatus < http.StatusBadRequest
		if !env.ok {
			env.message = strings.TrimSpace(string(body))
		}
		return env
	}

	ok := httpStatus < http.StatusBadRequest
	if v, found := raw["success"]; found {
		var success bool
		if json.Unmarshal(v, &success) == nil && !success {
			ok = false
		}
	}
	if v, found := raw["status"]; found {
		switch s := scalar(v).(type) {
		case bool:
			ok = ok && s
		case float64:
			env.statusCode = effectiveStatus(env.statusCode, int(s))
		case string:
			switch strings.ToLower(s) {
			case "error", "failed", "failure":
				ok = false
			default:
				if code, err := strconv.Atoi(s); err == nil {
					env.statusCode = effectiveStatus(env.statusCode, code)
				}
			}
		}
	}
	if v, found := raw["status_code"]; found {
		if code, isNum := scalar(v).(float64); isNum {
			env.statusCode = effectiveStatus(env.statusCode, int(code))
		}
	}
	if env.statusCode >= http.StatusBadRequest {
		ok = false
	}
	env.ok = ok
	env.message = messageOf(raw)

	switch {
	case len(raw["data"]) > 0 && !isNull(raw["data"]):
		env.data = unwrapData(raw["data"])
	case len(raw["response"]) > 0 && !isNull(raw["response"]):
		env.data = unwrapData(raw["response"])
	}
	return env
}

// effectiveStatus lets an error code inside a 200 body win over the HTTP
// status. Provider-specific codes outside the HTTP error range (such as 350
// for an empty wallet) count as a bad request.
func effectiveStatus(httpStatus, bodyStatus int) int {
	switch {
	case bodyStatus >= http.StatusBadRequest && bodyStatus < 600:
		return bodyStatus
	case bodyStatus >= http.StatusMultipleChoices:
		return http.StatusBadRequest
	default:
		return httpStatus
	}
}

// unwrapData strips a nested {"data": ...} left by some endpoints.
func unwrapData(data json.RawMessage) json.RawMessage {
	var inner map[string]json.RawMessage
	if json.Unmarshal(data, &inner) != nil || len(inner) != 1 {
		return data
	}
	if nested, found := inner["data"]; found && !isNull(nested) {
		return nested
	}
	return data
}

func messageOf(raw map[string]json.RawMessage) string {
	for _, key := range []string{"message", "msg", "error"} {
		if s, isStr := scalar(raw[key]).(string); isStr && s != "" {
			return s
		}
	}

	// Validation failures come as {"errors": {"field": ["reason", ...]}}.
	var fields map[string][]string
	if json.Unmarshal(raw["errors"], &fields) == nil && len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(fields[k], ", ")))
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func scalar(v json.RawMessage) any {
	if len(v) == 0 {
		return nil
	}
	var out any
	if json.Unmarshal(v, &out) != nil {
		return nil
	}
	return out
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
