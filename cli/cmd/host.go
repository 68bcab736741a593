package cmd

import "strings"

// hostStrings is the string-manipulation surface exposed to programs through
// member dispatch, e.g. (str/upper 'hello') or (.upper str 'hello').
type hostStrings struct{}

func (hostStrings) Upper(s string) string { return strings.ToUpper(s) }

func (hostStrings) Lower(s string) string { return strings.ToLower(s) }

func (hostStrings) Trim(s string) string { return strings.TrimSpace(s) }

func (hostStrings) Contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

func (hostStrings) Replace(s, old, new string) string {
	return strings.ReplaceAll(s, old, new)
}

func (hostStrings) Join(sep string, parts ...string) string {
	return strings.Join(parts, sep)
}

func (hostStrings) Len(s string) int64 { return int64(len(s)) }
