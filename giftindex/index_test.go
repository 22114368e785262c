package giftindex

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cgift-network/cgift/core/gift"
)

type fakeReader struct {
	mu       sync.Mutex
	gifts    map[uint64]gift.Gift
	sent     map[common.Address][]uint64
	received map[common.Address][]uint64
	lookups  int
}

func (r *fakeReader) GetSentGifts(_ context.Context, a common.Address) ([]uint64, error) {
	return r.sent[a], nil
}

func (r *fakeReader) GetReceivedGifts(_ context.Context, a common.Address) ([]uint64, error) {
	return r.received[a], nil
}

func (r *fakeReader) GetGiftInfo(_ context.Context, id uint64) (*gift.Gift, error) {
	r.mu.Lock()
	r.lookups++
	r.mu.Unlock()
	g, ok := r.gifts[id]
	if !ok {
		return nil, gift.ErrUnknownGift
	}
	return &g, nil
}

var (
	alice = common.HexToAddress("0xaaa0000000000000000000000000000000000001")
	bob   = common.HexToAddress("0xaaa0000000000000000000000000000000000002")
)

func newTestIndex(t *testing.T, now uint64) (*Index, *fakeReader) {
	t.Helper()
	r := &fakeReader{
		gifts: map[uint64]gift.Gift{
			0: {ID: 0, Sender: alice, Recipient: bob, UnlockTime: now - 100, Opened: true, Claimed: true},
			1: {ID: 1, Sender: alice, Recipient: bob, UnlockTime: now - 50, Opened: true},
			2: {ID: 2, Sender: alice, Recipient: bob, UnlockTime: now + 500},
			3: {ID: 3, Sender: bob, Recipient: alice, UnlockTime: now - 10},
		},
		sent:     map[common.Address][]uint64{alice: {0, 1, 2}, bob: {3}},
		received: map[common.Address][]uint64{bob: {0, 1, 2}, alice: {3}},
	}
	ix, err := New(r)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ix.now = func() time.Time { return time.Unix(int64(now), 0) }
	return ix, r
}

func TestSentMostRecentFirst(t *testing.T) {
	now := uint64(10_000)
	ix, _ := newTestIndex(t, now)

	entries, err := ix.Sent(context.Background(), alice)
	if err != nil {
		t.Fatalf("Sent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, wantID := range []uint64{2, 1, 0} {
		if entries[i].ID != wantID {
			t.Fatalf("entry %d id = %d, want %d", i, entries[i].ID, wantID)
		}
	}
	if entries[0].Status != gift.StatusLocked {
		t.Fatalf("gift 2 status = %v, want Locked", entries[0].Status)
	}
	if entries[1].Status != gift.StatusOpened {
		t.Fatalf("gift 1 status = %v, want Opened", entries[1].Status)
	}
	if entries[2].Status != gift.StatusClaimed {
		t.Fatalf("gift 0 status = %v, want Claimed", entries[2].Status)
	}
}

func TestReceivedFraming(t *testing.T) {
	now := uint64(10_000)
	ix, _ := newTestIndex(t, now)

	entries, err := ix.Received(context.Background(), alice)
	if err != nil {
		t.Fatalf("Received: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	// Unlocked and unopened reads Claimable to the recipient.
	if entries[0].Status != gift.StatusClaimable {
		t.Fatalf("status = %v, want Claimable", entries[0].Status)
	}

	sent, err := ix.Sent(context.Background(), bob)
	if err != nil {
		t.Fatalf("Sent: %v", err)
	}
	if sent[0].Status != gift.StatusReady {
		t.Fatalf("sender framing status = %v, want Ready", sent[0].Status)
	}
}

func TestEmptyListIsNotAnError(t *testing.T) {
	ix, _ := newTestIndex(t, 10_000)
	entries, err := ix.Sent(context.Background(), common.HexToAddress("0xdead"))
	if err != nil {
		t.Fatalf("Sent on empty list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("len = %d, want 0", len(entries))
	}
}

func TestTerminalGiftsAreCached(t *testing.T) {
	ix, r := newTestIndex(t, 10_000)

	if _, err := ix.Received(context.Background(), bob); err != nil {
		t.Fatalf("first listing: %v", err)
	}
	first := r.lookups
	if _, err := ix.Received(context.Background(), bob); err != nil {
		t.Fatalf("second listing: %v", err)
	}
	// Gift 0 is claimed and must come from the cache; 1 and 2 are live and
	// re-fetched.
	if got := r.lookups - first; got != 2 {
		t.Fatalf("second listing did %d lookups, want 2", got)
	}
}
