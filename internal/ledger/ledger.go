package ledger

import (
	"context"
	"errors"

	"github.com/blueshift/inbox/internal/profile"
)

var (
	// ErrRPCUnavailable covers transport failures, timeouts and non-success
	// responses from the ledger node. Callers decide whether to retry.
	ErrRPCUnavailable = errors.New("rpc unavailable")
)

const (
	// ProfileSeed namespaces profile addresses under the program.
	ProfileSeed = "profile"
	// OwnerOffset is where the owner key starts inside a profile account,
	// right after the discriminator.
	OwnerOffset = profile.DiscriminatorLen
)

// Account pairs a profile with the address it was read from.
type Account struct {
	Address profile.PublicKey
	Profile profile.Record
}

// Ledger defines the read-only queries the inbox needs from the ledger.
type Ledger interface {
	// FetchByIdentity resolves the profile stored at the address derived from
	// handle. The boolean is false when no such account exists.
	FetchByIdentity(ctx context.Context, handle string) (profile.Record, bool, error)
	// FetchByOwner lists every profile account whose owner field equals owner.
	FetchByOwner(ctx context.Context, owner profile.PublicKey) ([]Account, error)
}
