package keys

import (
	"encoding/hex"

	"github.com/go-i2p/go-onion/lib/crypto/types"
	"golang.org/x/crypto/blake2b"
)

// fingerprintLen is the number of hash bytes shown in logs and listings.
const fingerprintLen = 8

// Fingerprint returns a short hex BLAKE2b-256 digest of a public key, safe to log.
func Fingerprint(pub types.PublicKey) string {
	if pub == nil {
		return ""
	}
	sum := blake2b.Sum256(pub.Bytes())
	return hex.EncodeToString(sum[:fingerprintLen])
}
