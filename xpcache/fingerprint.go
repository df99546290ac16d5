package xpcache

import (
	"crypto/sha1"
	"encoding/hex"
)

// Fingerprint is a short stable identifier for an expression text. Logs
// carry it instead of the expression, which may be long or sensitive.
func Fingerprint(expr string) string {
	sum := sha1.Sum([]byte(expr))
	return hex.EncodeToString(sum[:8])
}
