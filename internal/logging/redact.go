package logging

import (
	"log/slog"
	"strings"
)

// Redacted replaces the value of any attribute with a sensitive key.
const Redacted = "[REDACTED]"

// sensitiveKeys are attribute keys whose values are never written, whatever
// the caller passes.
var sensitiveKeys = map[string]struct{}{
	"password":    {},
	"passphrase":  {},
	"secret":      {},
	"totp_secret": {},
	"key":         {},
	"username":    {},
	"plaintext":   {},
}

func isSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// redactAttr is a slog ReplaceAttr hook.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if isSensitive(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	return a
}

// HandlerOptions returns slog handler options at level with redaction on.
func HandlerOptions(level slog.Leveler) *slog.HandlerOptions {
	return &slog.HandlerOptions{Level: level, ReplaceAttr: redactAttr}
}
