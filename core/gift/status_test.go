package gift

import "testing"

func TestStatusAt(t *testing.T) {
	const unlock = uint64(1000)
	cases := []struct {
		name    string
		opened  bool
		claimed bool
		now     uint64
		dir     Direction
		want    Status
	}{
		{"locked before unlock", false, false, unlock - 1, DirectionReceived, StatusLocked},
		{"claimable at unlock", false, false, unlock, DirectionReceived, StatusClaimable},
		{"ready for sender", false, false, unlock + 1, DirectionSent, StatusReady},
		{"opened", true, false, unlock + 1, DirectionReceived, StatusOpened},
		{"claimed", true, true, unlock + 1, DirectionReceived, StatusClaimed},
		{"claimed wins over time", true, true, unlock - 1, DirectionSent, StatusClaimed},
	}
	for _, c := range cases {
		g := &Gift{UnlockTime: unlock, Opened: c.opened, Claimed: c.claimed}
		if got := g.StatusAt(c.now, c.dir); got != c.want {
			t.Fatalf("%s: StatusAt = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestOpenable(t *testing.T) {
	g := &Gift{UnlockTime: 500}
	if g.Openable(499) {
		t.Fatal("openable before unlock")
	}
	if !g.Openable(500) {
		t.Fatal("not openable at unlock")
	}
}

func TestHandleFromBytes(t *testing.T) {
	if _, err := HandleFromBytes(make([]byte, 31)); err == nil {
		t.Fatal("expected length error")
	}
	b := make([]byte, HandleSize)
	b[0] = 0xab
	h, err := HandleFromBytes(b)
	if err != nil {
		t.Fatalf("HandleFromBytes: %v", err)
	}
	if h.IsZero() {
		t.Fatal("handle should not be zero")
	}
	round, err := HandleFromHex(h.Hex())
	if err != nil || round != h {
		t.Fatalf("hex round trip: %v %v", round, err)
	}
}
