package ledger

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"

	"github.com/blueshift/inbox/internal/profile"
)

const (
	maxSeeds   = 16
	maxSeedLen = 32
	pdaMarker  = "ProgramDerivedAddress"
)

var (
	// ErrSeedTooLong is returned when a seed exceeds the ledger's 32-byte limit.
	ErrSeedTooLong = errors.New("seed too long")
	// ErrTooManySeeds is returned for more than 16 seeds.
	ErrTooManySeeds = errors.New("too many seeds")
	// ErrNoViableBump is returned when every bump yields an on-curve point.
	ErrNoViableBump = errors.New("no viable bump seed")
)

// CreateProgramAddress hashes seeds with the program id and rejects results
// that fall on the ed25519 curve, since those could have a private key.
func CreateProgramAddress(seeds [][]byte, programID profile.PublicKey) (profile.PublicKey, bool, error) {
	if len(seeds) > maxSeeds {
		return profile.PublicKey{}, false, ErrTooManySeeds
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > maxSeedLen {
			return profile.PublicKey{}, false, ErrSeedTooLong
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var addr profile.PublicKey
	copy(addr[:], h.Sum(nil))
	if onCurve(addr) {
		return profile.PublicKey{}, false, nil
	}
	return addr, true, nil
}

// FindProgramAddress searches bump seeds from 255 downwards and returns the
// first off-curve address together with its bump.
func FindProgramAddress(seeds [][]byte, programID profile.PublicKey) (profile.PublicKey, byte, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, ok, err := CreateProgramAddress(withBump, programID)
		if err != nil {
			return profile.PublicKey{}, 0, err
		}
		if ok {
			return addr, byte(bump), nil
		}
	}
	return profile.PublicKey{}, 0, ErrNoViableBump
}

// ProfileAddress derives the profile account address for handle. Nothing is
// persisted; the address is recomputed on every lookup.
func ProfileAddress(handle string, programID profile.PublicKey) (profile.PublicKey, byte, error) {
	return FindProgramAddress([][]byte{[]byte(ProfileSeed), []byte(handle)}, programID)
}

func onCurve(pk profile.PublicKey) bool {
	_, err := new(edwards25519.Point).SetBytes(pk[:])
	return err == nil
}
