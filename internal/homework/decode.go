package homework

import (
	"encoding/json"
	"math"
	"strings"
)

// Response keys of the status API.
const (
	keyHomeworks   = "homeworks"
	keyCurrentDate = "current_date"
	keyName        = "homework_name"
	keyNameAlt     = "name"
	keyStatus      = "status"
)

// Decode extracts the tracked assignment from a decoded JSON response.
//
// raw is the value produced by encoding/json into an any (numbers may be
// float64 or json.Number). The first element of "homeworks" is the current
// assignment; an empty list is not an error.
func Decode(raw any) (Snapshot, error) {
	body, ok := raw.(map[string]any)
	if !ok {
		return Snapshot{}, newError(KindMalformedResponse, "response is not a mapping")
	}
	list, ok := body[keyHomeworks].([]any)
	if !ok {
		return Snapshot{}, newError(KindMalformedResponse, "%q is not a list", keyHomeworks)
	}

	var snap Snapshot
	if c, ok := cursorOf(body[keyCurrentDate]); ok {
		snap.HasCursor = true
		snap.Cursor = c
	}
	if len(list) == 0 {
		return snap, nil
	}

	entry, ok := list[0].(map[string]any)
	if !ok {
		return Snapshot{}, newError(KindMalformedResponse, "homework entry is not a mapping")
	}
	name := stringField(entry, keyName)
	if name == "" {
		name = stringField(entry, keyNameAlt)
	}
	if name == "" {
		return Snapshot{}, newError(KindMissingField, "homework entry has no %q", keyName)
	}
	rawStatus, present := entry[keyStatus]
	status, isString := rawStatus.(string)
	if !present || !isString || status == "" {
		return Snapshot{}, newError(KindMissingField, "homework entry has no %q", keyStatus)
	}
	st := Status(status)
	if !st.Known() {
		return Snapshot{}, newError(KindUnknownStatus, "unexpected homework status %q", status)
	}

	snap.Present = true
	snap.Assignment = Assignment{Name: name, Status: st}
	return snap, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func cursorOf(v any) (Cursor, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return Cursor(i), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return Cursor(int64(n)), true
	case int64:
		return Cursor(n), true
	case int:
		return Cursor(n), true
	default:
		return 0, false
	}
}
