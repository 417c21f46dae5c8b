package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key builds a fixed-size cache key from a kind and a free-text value.
// Values come straight from the input document and can be arbitrarily long.
func Key(kind, value string) string {
	hash := sha256.Sum256([]byte(value))
	return "clinvar-tsv:v1:" + kind + ":" + hex.EncodeToString(hash[:])
}
