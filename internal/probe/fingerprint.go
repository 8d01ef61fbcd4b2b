package probe

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

const fingerprintLen = 12

// Fingerprint derives a stable short key from an address:port pair, used
// for caching and display independent of the target's own id.
func Fingerprint(address string, port uint16) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s:%d", address, port)))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}
