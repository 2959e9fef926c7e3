package graph

import "log/slog"

// Token is an opaque delegated bearer credential passed through unchanged
// from the inbound request. It deliberately does not reveal itself when
// formatted, so a stray log line cannot leak it.
type Token string

func (t Token) String() string {
	if t == "" {
		return ""
	}
	return "[redacted]"
}

// LogValue implements slog.LogValuer.
func (t Token) LogValue() slog.Value {
	return slog.StringValue(t.String())
}

// IsEmpty reports whether no credential was supplied.
func (t Token) IsEmpty() bool {
	return t == ""
}
