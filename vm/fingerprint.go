package vm

import (
	"crypto/sha1"
	"encoding/hex"
)

// Fingerprint hashes a program's defining source (the bytes the caller
// compiled from, or any stable serialization of its description) so two
// runs can detect whether they loaded the same compiled shape before
// merging statistics. crypto/sha1 is standard library on purpose: this
// is a content fingerprint, not a security boundary, and nothing in the
// corpus reaches for a third-party hash for that job.
func Fingerprint(source []byte) string {
	sum := sha1.Sum(source)
	return hex.EncodeToString(sum[:])
}
