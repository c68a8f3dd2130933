package battle

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// StableID derives a deterministic, reproducible identifier from a
// composite key, the same "hash the composite key" approach used for
// essence/building identifiers elsewhere in the retrieved corpus. No
// battle code calls it: EffectStateStore numbers ActiveEffectInstances
// with an incrementing counter, which is already reproducible for the
// same seed and sequence of placements. StableID and EffectInstanceKey
// derive a content-based key instead.
//
// parts are hashed in order and joined by a zero byte separator so that
// ("ab", "c") and ("a", "bc") never collide.
func StableID(parts ...string) uint64 {
	h, err := blake2b.New64(nil)
	if err != nil {
		// blake2b.New64 only errors on an invalid key, and nil is
		// always valid; unreachable in practice.
		panic(fmt.Sprintf("battle: blake2b.New64: %v", err))
	}
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum)
}

// EffectInstanceKey is the composite key StableID hashes to name an
// ActiveEffectInstance: its effect identity, the scope it's attached to,
// and the owning entity's stable index.
func EffectInstanceKey(id EffectID, scope ScopeKind, owner int) uint64 {
	return StableID(id.String(), scope.String(), fmt.Sprintf("%d", owner))
}
