package translation

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SchemaVersion tags cache keys. Bump it whenever BuildPrompt or Normalize
// changes meaning so stale results become unreachable and expire.
const SchemaVersion = "v1"

const (
	cacheKeyPrefix    = "plainspeak"
	cacheKeyDelimiter = "|"
)

// CacheKey derives the result cache key for req. Only a digest of the text is
// included, never the text itself.
func CacheKey(req Request) string {
	return strings.Join([]string{
		cacheKeyPrefix,
		HashText(req.Text()),
		req.Mode().String(),
		req.Tone().String(),
		explainToken(req.Explain()),
		SchemaVersion,
	}, cacheKeyDelimiter)
}

// HashText returns the hex SHA-256 digest of text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
