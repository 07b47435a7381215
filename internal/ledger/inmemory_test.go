package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/blueshift/inbox/internal/profile"
)

func pk(b byte) profile.PublicKey {
	var k profile.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

func TestInMemoryLedger_FetchByIdentity(t *testing.T) {
	l := NewInMemory(testProgramID)
	ctx := context.Background()

	SeedProfile(l, profile.Record{Owner: pk(1), Handle: "alice", Allowlist: []profile.PublicKey{pk(2)}})

	rec, ok, err := l.FetchByIdentity(ctx, "alice")
	if err != nil {
		t.Fatalf("fetch alice: %v", err)
	}
	if !ok {
		t.Fatalf("expected alice to exist")
	}
	if rec.Owner != pk(1) || len(rec.Allowlist) != 1 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Bump == 0 {
		t.Fatalf("expected derived bump to be recorded")
	}

	if _, ok, err := l.FetchByIdentity(ctx, "bob"); err != nil || ok {
		t.Fatalf("expected bob to be absent, got ok=%v err=%v", ok, err)
	}
}

func TestInMemoryLedger_FetchByOwner(t *testing.T) {
	l := NewInMemory(testProgramID)
	ctx := context.Background()

	aliceAddr := SeedProfile(l, profile.Record{Owner: pk(1), Handle: "alice"})
	SeedProfile(l, profile.Record{Owner: pk(1), Handle: "alice2"})
	SeedProfile(l, profile.Record{Owner: pk(9), Handle: "carol"})

	accounts, err := l.FetchByOwner(ctx, pk(1))
	if err != nil {
		t.Fatalf("fetch by owner: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	found := false
	for _, acc := range accounts {
		if acc.Profile.Owner != pk(1) {
			t.Fatalf("unexpected owner %s", acc.Profile.Owner)
		}
		if acc.Address == aliceAddr && acc.Profile.Handle == "alice" {
			found = true
		}
	}
	if !found {
		t.Fatalf("alice account missing from owner listing")
	}
}

func TestInMemoryLedger_Unavailable(t *testing.T) {
	l := NewInMemory(testProgramID)
	SetUnavailable(l, true)

	if _, _, err := l.FetchByIdentity(context.Background(), "alice"); err != ErrRPCUnavailable {
		t.Fatalf("expected ErrRPCUnavailable, got %v", err)
	}
	if _, err := l.FetchByOwner(context.Background(), pk(1)); err != ErrRPCUnavailable {
		t.Fatalf("expected ErrRPCUnavailable, got %v", err)
	}
}

func TestInMemoryLedger_ConcurrentReads(t *testing.T) {
	l := NewInMemory(testProgramID)
	SeedProfile(l, profile.Record{Owner: pk(1), Handle: "alice"})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, err := l.FetchByIdentity(context.Background(), "alice"); err != nil || !ok {
				t.Errorf("concurrent fetch failed: ok=%v err=%v", ok, err)
			}
		}()
	}
	wg.Wait()
}
