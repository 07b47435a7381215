// Package access decides who may read a profile's inbox.
package access

import "github.com/blueshift/inbox/internal/profile"

// IsAuthorized reports whether candidate, a base-58 key as received from a
// client, is the profile owner or appears in its allowlist.
//
// Keys are compared by their canonical base-58 text. Two keys are equal iff
// their canonical encodings are equal; a candidate in any other encoding of
// the same bytes (e.g. with extra leading zeros) is not the same key. Do not
// switch this to byte comparison without also canonicalising candidate.
func IsAuthorized(rec profile.Record, candidate string) bool {
	if candidate == "" {
		return false
	}
	if rec.Owner.String() == candidate {
		return true
	}
	for _, pk := range rec.Allowlist {
		if pk.String() == candidate {
			return true
		}
	}
	return false
}
