// Package giftindex projects a user's sent and received gift lists from
// ledger state: id lists from the contract, public fields via batched
// point lookups, most recent first. The projection never touches the
// ciphertext payload.
package giftindex

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"

	"github.com/cgift-network/cgift/core/gift"
)

const (
	// giftCacheSize bounds the cache of terminal gifts.
	giftCacheSize = 512

	// lookupConcurrency bounds the parallel point lookups per listing.
	lookupConcurrency = 8
)

// Reader is the read-only ledger surface the projection needs.
type Reader interface {
	GetSentGifts(ctx context.Context, account common.Address) ([]uint64, error)
	GetReceivedGifts(ctx context.Context, account common.Address) ([]uint64, error)
	GetGiftInfo(ctx context.Context, id uint64) (*gift.Gift, error)
}

// Entry is one projected gift with its derived display status.
type Entry struct {
	gift.Gift
	Status gift.Status
}

// Index builds gift list projections over a Reader. Claimed gifts are
// terminal, so their fields are cached and never re-fetched; everything
// else is re-read on each listing because opened/claimed can flip under us.
type Index struct {
	reader Reader
	cache  *lru.Cache
	now    func() time.Time
}

func New(reader Reader) (*Index, error) {
	cache, err := lru.New(giftCacheSize)
	if err != nil {
		return nil, err
	}
	return &Index{reader: reader, cache: cache, now: time.Now}, nil
}

// Sent lists the gifts account has sent, most recent first.
func (ix *Index) Sent(ctx context.Context, account common.Address) ([]Entry, error) {
	ids, err := ix.reader.GetSentGifts(ctx, account)
	if err != nil {
		return nil, err
	}
	return ix.project(ctx, ids, gift.DirectionSent)
}

// Received lists the gifts addressed to account, most recent first.
func (ix *Index) Received(ctx context.Context, account common.Address) ([]Entry, error) {
	ids, err := ix.reader.GetReceivedGifts(ctx, account)
	if err != nil {
		return nil, err
	}
	return ix.project(ctx, ids, gift.DirectionReceived)
}

func (ix *Index) project(ctx context.Context, ids []uint64, dir gift.Direction) ([]Entry, error) {
	gifts := make([]*gift.Gift, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			got, err := ix.lookup(gctx, id)
			if err != nil {
				return err
			}
			gifts[i] = got
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Ids are contract-assigned in creation order; newest last. Present
	// most recent first.
	now := uint64(ix.now().Unix())
	out := make([]Entry, 0, len(gifts))
	for i := len(gifts) - 1; i >= 0; i-- {
		out = append(out, Entry{Gift: *gifts[i], Status: gifts[i].StatusAt(now, dir)})
	}
	return out, nil
}

func (ix *Index) lookup(ctx context.Context, id uint64) (*gift.Gift, error) {
	if cached, ok := ix.cache.Get(id); ok {
		g := cached.(gift.Gift)
		return &g, nil
	}
	g, err := ix.reader.GetGiftInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Claimed {
		ix.cache.Add(id, *g)
	}
	return g, nil
}
