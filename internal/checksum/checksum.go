// Package checksum fingerprints stored blobs for change detection and
// optimistic concurrency.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of a stored blob.
func Sum(blob string) string {
	h := sha256.Sum256([]byte(blob))
	return hex.EncodeToString(h[:])
}

// Match reports whether an If-Match precondition holds for sum. An empty
// condition or "*" always matches; quotes and a weak W/ prefix are ignored.
func Match(cond, sum string) bool {
	cond = strings.TrimSpace(cond)
	if cond == "" || cond == "*" {
		return true
	}
	for _, c := range strings.Split(cond, ",") {
		c = strings.TrimSpace(c)
		c = strings.TrimPrefix(c, "W/")
		if strings.Trim(c, `"`) == sum {
			return true
		}
	}
	return false
}
