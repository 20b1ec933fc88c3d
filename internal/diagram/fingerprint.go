package diagram

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint computes a deterministic content digest of a diagram snapshot,
// used for change detection between autosaves and feedback checks. It is not
// a cryptographic integrity guarantee.
//
// encoding/json marshals map keys in sorted order at every nesting level, so
// the digest is stable across calls regardless of how the payload was built.
func Fingerprint(data map[string]interface{}) string {
	if data == nil {
		data = map[string]interface{}{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		// Maps decoded from JSON or BSON always marshal; a non-marshalable
		// payload still needs a stable value so callers can compare.
		raw = []byte("{}")
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// EmptyFingerprint is the fingerprint of the canonical empty diagram. A
// freshly created session starts with this value.
func EmptyFingerprint() string {
	return Fingerprint(map[string]interface{}{})
}
