package server

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	errInvalidTime      = errors.New("invalid_time")
	errInvalidTimeRange = errors.New("invalid_time_range")
	errInvalidStatus    = errors.New("invalid_is_active")
)

// parseActiveFilter reads the company status filter. Besides booleans it accepts the
// console labels "active" and "frozen".
func parseActiveFilter(value string) (*bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch trimmed {
	case "":
		return nil, nil
	case "active":
		active := true
		return &active, nil
	case "frozen":
		active := false
		return &active, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, errInvalidStatus
	}
	return &parsed, nil
}

// timeWindow is an optional [start, end] filter on audit entries.
type timeWindow struct {
	start *time.Time
	end   *time.Time
}

// parseTimeWindow takes the first non-empty value of each alias list. An end before the
// start is rejected; field names the offending parameter.
func parseTimeWindow(startValues, endValues []string) (window timeWindow, field string, err error) {
	window.start, err = parseBoundary(firstNonEmpty(startValues...), false)
	if err != nil {
		return timeWindow{}, "start_at", err
	}
	window.end, err = parseBoundary(firstNonEmpty(endValues...), true)
	if err != nil {
		return timeWindow{}, "end_at", err
	}
	if window.start != nil && window.end != nil && window.end.Before(*window.start) {
		return timeWindow{}, "end_at", errInvalidTimeRange
	}
	return window, "", nil
}

// parseBoundary accepts RFC3339, a bare date or unix seconds. Bare dates snap to the
// start or the end of the UTC day.
func parseBoundary(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		parsed = parsed.UTC()
		return &parsed, nil
	}
	if parsed, err := time.Parse(time.DateOnly, value); err == nil {
		if endOfDay {
			parsed = parsed.Add(24*time.Hour - time.Nanosecond)
		}
		return &parsed, nil
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil && secs > 0 {
		parsed := time.Unix(secs, 0).UTC()
		return &parsed, nil
	}
	return nil, errInvalidTime
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
