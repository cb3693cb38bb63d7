// ABOUTME: Field extraction helpers shared by the built-in decoders.
// ABOUTME: Percent-decoding, SMS receiver/body grammar and Docomo-style KEY:value; fields.

package decoder

import (
	"net/url"
	"regexp"
	"strings"
)

// PathUnescape percent-decodes s, returning s unchanged when it is malformed.
func PathUnescape(s string) string {
	if out, err := url.PathUnescape(s); err == nil {
		return out
	}
	return s
}

// QueryUnescape percent-decodes s treating '+' as space, returning s
// unchanged when it is malformed.
func QueryUnescape(s string) string {
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	return s
}

var smsPatterns = []*regexp.Regexp{
	// 555,+1556?body=text
	regexp.MustCompile(`(?s)^(\+?[0-9]+(?:,\+?[0-9]+)*)(?:\?(?i:body)=(.*))?$`),
	// number:body
	regexp.MustCompile(`(?s)^([^:]+):(.*)$`),
}

// ParseSMS splits an sms/SMSTO payload (scheme already stripped) into receiver
// and body. The first pattern that matches the whole payload wins; only the
// query form is percent-decoded.
func ParseSMS(payload string) (receiver, body string, ok bool) {
	for i, re := range smsPatterns {
		m := re.FindStringSubmatch(payload)
		if m == nil {
			continue
		}
		if i == 0 {
			return m[1], QueryUnescape(m[2]), true
		}
		return m[1], m[2], true
	}
	return "", "", false
}

// docomoFields splits payload into its KEY:value pairs. Fields start after
// the scheme and are separated by unescaped ';', so a key inside another
// field's value never counts.
func docomoFields(payload string) [][2]string {
	_, rest, ok := strings.Cut(payload, ":")
	if !ok {
		return nil
	}

	var fields [][2]string
	start := 0
	escaped := false
	for i := 0; i <= len(rest); i++ {
		if i < len(rest) {
			c := rest[i]
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c != ';' {
				continue
			}
		}
		if key, value, ok := strings.Cut(rest[start:i], ":"); ok {
			fields = append(fields, [2]string{key, value})
		}
		start = i + 1
	}
	return fields
}

// DocomoField returns the first KEY:value; field in payload, unescaped.
func DocomoField(payload, key string) (string, bool) {
	for _, f := range docomoFields(payload) {
		if f[0] == key {
			return DocomoUnescape(f[1]), true
		}
	}
	return "", false
}

// DocomoFields returns every non-empty KEY:value; occurrence in payload, unescaped.
func DocomoFields(payload, key string) []string {
	var out []string
	for _, f := range docomoFields(payload) {
		if f[0] != key {
			continue
		}
		if v := DocomoUnescape(f[1]); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// DocomoUnescape removes backslash escapes (\; \: \, \\).
func DocomoUnescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		sb.WriteRune(r)
	}
	return sb.String()
}
