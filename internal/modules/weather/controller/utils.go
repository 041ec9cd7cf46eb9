package controller

import (
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

const (
	maxHistoryDays     = 3650
	defaultHistoryPage = 100
	maxHistoryPage     = 365
	maxHistoryOffset   = 1000000

	secondsPerDay = 86400
)

// parseHistoryQuery maps days/limit/offset onto a repository query.
//
// With no parameters every day is returned. With only days, the result is
// filtered to the last N days (0 means no filter). As soon as limit or offset
// appears the result is paged, limit defaulting to 100.
func parseHistoryQuery(r *http.Request, now time.Time) types.HistoryQuery {
	daysRaw := queryValueFold(r.URL.RawQuery, "days")
	limitRaw := queryValueFold(r.URL.RawQuery, "limit")
	offsetRaw := queryValueFold(r.URL.RawQuery, "offset")

	var q types.HistoryQuery
	if daysRaw == "" && limitRaw == "" && offsetRaw == "" {
		return q
	}

	days := clampedInt(daysRaw, 0, 0, maxHistoryDays)
	if days > 0 {
		q.Since = now.Unix() - int64(days)*secondsPerDay
	}
	if limitRaw == "" && offsetRaw == "" {
		return q
	}

	q.Limit = clampedInt(limitRaw, defaultHistoryPage, 1, maxHistoryPage)
	q.Offset = clampedInt(offsetRaw, 0, 0, maxHistoryOffset)
	return q
}

// queryValueFold returns the value of the first parameter whose name matches
// key ignoring case, or "" when there is none.
func queryValueFold(rawQuery, key string) string {
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, "=")
		name, err := url.QueryUnescape(name)
		if err != nil || !strings.EqualFold(name, key) {
			continue
		}
		value, err = url.QueryUnescape(value)
		if err != nil {
			return ""
		}
		return value
	}
	return ""
}

// clampedInt reads the leading integer of s, so "7days" is 7. Input without
// leading digits yields def. The result is clamped to [lo, hi].
func clampedInt(s string, def, lo, hi int) int {
	n, ok := leadingInt(s)
	if !ok {
		n = int64(def)
	}
	if n < int64(lo) {
		return lo
	}
	if n > int64(hi) {
		return hi
	}
	return int(n)
}

func leadingInt(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var n int64
	digits := 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		d := int64(s[digits] - '0')
		if n > (math.MaxInt64-d)/10 {
			n = math.MaxInt64
			continue
		}
		n = n*10 + d
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
