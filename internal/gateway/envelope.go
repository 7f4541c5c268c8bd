package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// decodeCollection accepts either a hypermedia envelope with the records
// under _embedded.<key> or a bare JSON array.
func decodeCollection[T any](body []byte, key string) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode %s array: %w", key, err)
		}
		return items, nil
	}

	var env struct {
		Embedded map[string]json.RawMessage `json:"_embedded"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode %s envelope: %w", key, err)
	}
	raw, ok := env.Embedded[key]
	if !ok {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode _embedded.%s: %w", key, err)
	}
	return items, nil
}

// selfLocator returns the record's self href, synthesizing
// <base>/<collection>/<id> when the backend sent an id but no link.
func selfLocator(base, collection, self string, id int64) string {
	if self != "" {
		return self
	}
	if id <= 0 {
		return ""
	}
	return base + "/" + collection + "/" + strconv.FormatInt(id, 10)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDate reads the timestamp formats the backend has been seen to emit.
// Values without a zone are taken as UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// formatDate renders a timestamp the way the backend accepts it.
func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
