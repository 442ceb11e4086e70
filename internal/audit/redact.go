package audit

import (
	"encoding/json"
	"strings"
)

// maskValue replaces every sensitive value in persisted request bodies.
const maskValue = "***"

// sensitiveKeys is the fixed set of body keys that never reach storage.
// Matching is case-insensitive on the normalized key.
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"passwordhash":  {},
	"password_hash": {},
	"token":         {},
	"accesstoken":   {},
	"access_token":  {},
	"refreshtoken":  {},
	"refresh_token": {},
	"authorization": {},
	"secret":        {},
}

// RedactBody walks the decoded JSON body and masks sensitive keys while
// preserving all other structure, including nesting and arrays. Bodies that
// are not valid JSON are dropped rather than persisted unredacted. The
// operation is idempotent: redacting a redacted body is a no-op.
func RedactBody(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil
	}
	redacted := redactValue(decoded)
	encoded, err := json.Marshal(redacted)
	if err != nil {
		return nil
	}
	return encoded
}

func redactValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for key, nested := range value {
			if isSensitiveKey(key) {
				out[key] = maskValue
				continue
			}
			out[key] = redactValue(nested)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}

func isSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}
