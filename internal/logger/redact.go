package logger

import "strings"

const redacted = "[REDACTED]"

// sensitiveKeys are field keys whose values never reach the output
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"access_token":  {},
	"refresh_token": {},
	"authorization": {},
	"service_key":   {},
	"jwt_secret":    {},
}

// redact masks sensitive values and anything shaped like a JWT. The input
// slice is not modified.
func redact(fields []Field) []Field {
	var out []Field
	for i, f := range fields {
		if !isSensitive(f) {
			if out != nil {
				out = append(out, f)
			}
			continue
		}
		if out == nil {
			out = make([]Field, i, len(fields))
			copy(out, fields[:i])
		}
		out = append(out, Field{Key: f.Key, Value: redacted})
	}
	if out == nil {
		return fields
	}
	return out
}

func isSensitive(f Field) bool {
	if _, ok := sensitiveKeys[strings.ToLower(f.Key)]; ok {
		return true
	}
	s, ok := f.Value.(string)
	return ok && looksLikeJWT(s)
}

func looksLikeJWT(s string) bool {
	return strings.HasPrefix(s, "eyJ") && strings.Count(s, ".") == 2
}
