package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DefaultDateFormat is the calendar date layout used when none is configured.
const DefaultDateFormat = "YYYY-MM-DD"

// dateTokens maps display tokens to Go reference layout fragments, longest first
// so that "YYYY" wins over "YY" and "MMMM" over "MM".
var dateTokens = []struct{ token, layout string }{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"dddd", "Monday"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"SSS", "000"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"ZZ", "-0700"},
	{"M", "1"},
	{"D", "2"},
	{"h", "3"},
	{"A", "PM"},
	{"Z", "Z07:00"},
}

// Layout converts a display format such as "YYYY-MM-DD HH:mm" into a Go time layout.
// Characters that are not tokens are copied through.
func Layout(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); {
		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}

func formatDate(_ context.Context, value any, params Params) (any, error) {
	t, err := parseDate(value)
	if err != nil {
		return NoValue, fmt.Errorf("formatDate: %w: %w", ErrInvalidDate, err)
	}
	return t.UTC().Format(Layout(params.String(ParamDateFormat, DefaultDateFormat))), nil
}

// parseDate accepts date strings in any common layout, time.Time values and
// numeric Unix timestamps in milliseconds. Strings without a zone are read as UTC.
func parseDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		return dateparse.ParseIn(strings.TrimSpace(v), time.UTC)
	case float64:
		return time.UnixMilli(int64(v)), nil
	case int:
		return time.UnixMilli(int64(v)), nil
	case int64:
		return time.UnixMilli(v), nil
	case json.Number:
		ms, err := v.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms), nil
	}
	return time.Time{}, fmt.Errorf("unsupported type %T", value)
}
