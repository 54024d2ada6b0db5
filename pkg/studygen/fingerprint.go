package studygen

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// Fingerprint derives the deterministic cache-lookup key for an artifact.
// Source ids are sorted first, so selection order never changes the key.
//
// For flashcards and quizzes the parameters are deliberately left out of the
// key: an existing deck for the same sources is treated as reusable whatever
// its count or difficulty, so a redundant paid generation call is avoided.
// The parameters still travel with the submission itself. For notes the style
// participates in the key (distinct styles are distinct artifacts), and a
// summary has no parameters at all.
func Fingerprint(kind ArtifactKind, sourceIds []string, params Parameters) string {
	prefix := FingerprintPrefix(kind, sourceIds)
	if kind != KindNotes || len(params) == 0 {
		return prefix
	}
	return prefix + ":" + hashHex(normalizeParameters(params))
}

// FingerprintPrefix is the kind+sources portion of the key. It matches every
// cached artifact of the kind for the source set regardless of parameters,
// which is what a forced regeneration invalidates.
func FingerprintPrefix(kind ArtifactKind, sourceIds []string) string {
	ids := append([]string(nil), sourceIds...)
	sort.Strings(ids)
	return string(kind) + ":" + hashHex([]byte(strings.Join(ids, "\n")))
}

// normalizeParameters renders params as canonical JSON: map keys are sorted
// by the encoder, and string sets are sorted here so membership, not order,
// determines the key.
func normalizeParameters(params Parameters) []byte {
	norm := make(map[string]interface{}, len(params))
	for key, value := range params {
		switch v := value.(type) {
		case []string:
			set := append([]string(nil), v...)
			sort.Strings(set)
			norm[key] = set
		case []interface{}:
			// String sets arrive like this after a JSON round trip.
			set := make([]string, 0, len(v))
			ok := true
			for _, item := range v {
				s, isStr := item.(string)
				if !isStr {
					ok = false
					break
				}
				set = append(set, s)
			}
			if ok {
				sort.Strings(set)
				norm[key] = set
			} else {
				norm[key] = v
			}
		default:
			norm[key] = value
		}
	}
	data, _ := json.Marshal(norm)
	return data
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
