package giftdb

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cgift-network/cgift/core/gift"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	account := common.HexToAddress("0xaaa0000000000000000000000000000000000001")
	other := common.HexToAddress("0xaaa0000000000000000000000000000000000002")

	if got, err := s.GetContents(account, 1); err != nil || got != nil {
		t.Fatalf("missing record expected (nil,nil), got (%v,%v)", got, err)
	}

	in := &gift.Contents{Amount: "0.5", AmountSettled: true, Message: "Happy Birthday!", MessageSettled: true}
	if err := s.PutContents(account, 1, in); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.GetContents(account, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || *got != *in {
		t.Fatalf("contents = %+v, want %+v", got, in)
	}

	// Keys are scoped by account and id.
	if got, _ := s.GetContents(other, 1); got != nil {
		t.Fatal("record leaked across accounts")
	}
	if got, _ := s.GetContents(account, 2); got != nil {
		t.Fatal("record leaked across gift ids")
	}

	// Partial settlement round-trips.
	partial := &gift.Contents{Amount: "1", AmountSettled: true}
	if err := s.PutContents(account, 2, partial); err != nil {
		t.Fatalf("put partial: %v", err)
	}
	got, err = s.GetContents(account, 2)
	if err != nil || got == nil {
		t.Fatalf("get partial: (%v,%v)", got, err)
	}
	if !got.AmountSettled || got.MessageSettled {
		t.Fatalf("partial flags mismatch: %+v", got)
	}
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	defer s.Close()
	testStore(t, s)
}

func TestLevelStore(t *testing.T) {
	s, err := NewLevelStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}
