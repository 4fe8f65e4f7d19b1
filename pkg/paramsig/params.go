package paramsig

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Params is a set of named request parameters.
// An empty value is encoded as a bare "name=".
type Params = map[string]string

// EncodeParams returns the canonical form of params.
//
// Names are sorted in ascending order, names and values are form encoded and pairs are joined with "&".
func EncodeParams(params Params) string {
	var sb strings.Builder
	for i, name := range slices.Sorted(maps.Keys(params)) {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(FormEscape(name))
		sb.WriteByte('=')
		sb.WriteString(FormEscape(params[name]))
	}
	return sb.String()
}

// FormEscape applies application/x-www-form-urlencoded escaping to s.
//
// Characters A-Z a-z 0-9 . - * _ are kept, space becomes "+" and any other byte of the UTF-8
// text becomes %XX with uppercase hexadecimal digits.
func FormEscape(s string) string {
	e := url.QueryEscape(s)
	// url.QueryEscape keeps '~' and escapes '*', historical peers do the opposite.
	if strings.ContainsAny(e, "~%") {
		e = strings.ReplaceAll(e, "~", "%7E")
		e = strings.ReplaceAll(e, "%2A", "*")
	}
	return e
}

// ParseQuery decodes a form encoded query. A leading "?" is ignored.
// For repeated names, the first value wins.
func ParseQuery(rawQuery string) (Params, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if nil != err {
		return nil, wrapError(err, ErrFormat, "failed parsing query")
	}
	return ParamsFromValues(values), nil
}

// ParamsFromValues converts values to Params keeping the first value of each name.
func ParamsFromValues(values url.Values) Params {
	rv := make(Params, len(values))
	for name, vals := range values {
		if len(vals) > 0 {
			rv[name] = vals[0]
		} else {
			rv[name] = ""
		}
	}
	return rv
}

// FormatDate returns t as a base 36 count of milliseconds since the Unix epoch.
func FormatDate(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 36)
}

// ParseDate parses a date produced by FormatDate.
func ParseDate(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 36, 64)
	if nil != err {
		return time.Time{}, wrapError(err, ErrFormat, "invalid date %q", s)
	}
	return time.UnixMilli(ms), nil
}
