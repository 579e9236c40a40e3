package cli

import (
	"strconv"
	"strings"
	"time"
)

func parseID(raw, what string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(raw, "#"))
	if err != nil || id < 1 {
		return 0, usagef("invalid %s id %q", what, raw)
	}
	return id, nil
}

var startLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04"}

// parseStart reads a booking start time in local time.
func parseStart(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, usagef("start time %q must look like 2026-03-14 15:00", raw)
}
