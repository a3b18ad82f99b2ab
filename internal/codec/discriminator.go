package codec

import (
	"crypto/sha256"

	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// DeriveTag computes the Anchor-style instruction discriminator: the first
// 8 bytes of SHA-256("global:" + name). Used by the registry when
// a schema instruction omits an explicit discriminator.
func DeriveTag(name string) models.Tag {
	sum := sha256.Sum256([]byte("global:" + name))
	var t models.Tag
	copy(t[:], sum[:8])
	return t
}
