package harvest

import (
	"crypto/sha256"
	"encoding/hex"
)

const fingerprintRunes = 50

// seenSet is the in-session coarse dedup: posts sharing their first 50
// characters are treated as the same post.
type seenSet map[string]struct{}

func fingerprint(content string) string {
	prefix := content
	if r := []rune(content); len(r) > fingerprintRunes {
		prefix = string(r[:fingerprintRunes])
	}
	sum := sha256.Sum256([]byte(prefix))
	return hex.EncodeToString(sum[:])
}

// add records content and reports whether it was new.
func (s seenSet) add(content string) bool {
	key := fingerprint(content)
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}
