package logging

import (
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap/zapcore"
)

// redactedFields are field names that must never reach the log sink in
// clear text. A field matching one of these is replaced with a short,
// stable, non-reversible hash so correlation across log lines is still
// possible without exposing the underlying PII.
var redactedFields = map[string]bool{
	"email":    true,
	"name":     true,
	"pilot_id": true,
}

// redactingCore wraps a zapcore.Core and rewrites any field whose key is
// in redactedFields before delegating to the inner core.
type redactingCore struct {
	zapcore.Core
}

func newRedactingCore(inner zapcore.Core) zapcore.Core {
	return &redactingCore{Core: inner}
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(redactAll(fields))}
}

func (c *redactingCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Core.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

func (c *redactingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(entry, redactAll(fields))
}

func redactAll(fields []zapcore.Field) []zapcore.Field {
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		if redactedFields[f.Key] && f.Type == zapcore.StringType {
			out[i] = zapcore.Field{Key: f.Key, Type: zapcore.StringType, String: hashPII(f.String)}
			continue
		}
		out[i] = f
	}
	return out
}

func hashPII(v string) string {
	sum := sha256.Sum256([]byte(v))
	return "sha256:" + hex.EncodeToString(sum[:])[:16]
}
