package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const isoStamp = "2006-01-02"

// Spreadsheet date serials count days from Dec 30, 1899, so serial 25569
// is the Unix epoch.
const serialEpoch = 25569

// Formats accepted for string dates, tried in order. Slash dates are
// pinned to US order (01/02/2006, the same convention as into-ledger's
// -date default); the DD/MM layouts only fire when the US read is
// impossible, i.e. the first component exceeds 12.
var dateFormats = []string{
	isoStamp,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006-1-2",
	"01/02/2006",
	"1/2/2006",
	"02/01/2006",
	"2/1/2006",
	"01-02-2006",
	"02-01-2006",
	"2-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// parseDate converts an arbitrary cell value into an ISO YYYY-MM-DD
// string. Numbers are treated as spreadsheet date serials; digit-only
// strings in the serial range [20000, 80000] likewise, since CSV exports
// of xlsx files commonly stringify them. Anything unparseable degrades to
// the empty string, never an error.
func parseDate(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case float64:
		return serialToISO(d)
	case float32:
		return serialToISO(float64(d))
	case int:
		return serialToISO(float64(d))
	case int64:
		return serialToISO(float64(d))
	case string:
		return parseDateString(d)
	default:
		return parseDateString(fmt.Sprint(v))
	}
}

func serialToISO(serial float64) string {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return ""
	}
	ms := math.Round((serial - serialEpoch) * 86400 * 1000)
	return time.UnixMilli(int64(ms)).UTC().Format(isoStamp)
}

func parseDateString(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return ""
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial >= 20000 && serial <= 80000 {
			return serialToISO(serial)
		}
		return ""
	}
	for _, format := range dateFormats {
		if tm, err := time.Parse(format, s); err == nil {
			return tm.Format(isoStamp)
		}
	}
	return ""
}

// parseNumber converts an arbitrary cell value into a finite float.
// Strings may carry currency symbols, thousands separators and
// accounting-style parenthetical negatives: "(123.45)" means -123.45.
// Unparseable input degrades to 0, never NaN.
func parseNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		return parseNumberString(n)
	default:
		return parseNumberString(fmt.Sprint(v))
	}
}

func parseNumberString(s string) float64 {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return 0
	}
	neg := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		switch r {
		case '.':
			fallthrough
		case '-':
			return r
		default:
			return -1
		}
	}, s)
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	f = finite(f)
	// The parenthesis wins over any embedded minus sign.
	if neg {
		return -math.Abs(f)
	}
	return f
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// withinPeriod reports whether the ISO date d falls inside [start, end]
// inclusive. Lexicographic comparison of YYYY-MM-DD strings is
// chronological.
func withinPeriod(d string, p Period) bool {
	return len(d) > 0 && d >= p.Start && d <= p.End
}

// daysApart returns the whole-day distance between two ISO dates. The
// bool is false if either date fails to parse.
func daysApart(a, b string) (int, bool) {
	ta, err := time.Parse(isoStamp, a)
	if err != nil {
		return 0, false
	}
	tb, err := time.Parse(isoStamp, b)
	if err != nil {
		return 0, false
	}
	days := int(math.Abs(ta.Sub(tb).Hours()) / 24)
	return days, true
}
