package giftflow

import (
	"context"

	"github.com/cgift-network/cgift/core/gift"
	"github.com/cgift-network/cgift/internal/gifttracker"
)

// OpenGift submits the open transition and returns the gift's ciphertext
// handles, captured from the transaction's event. The contract gates are
// mirrored client-side first so a doomed submission never leaves the
// machine.
func (s *Session) OpenGift(ctx context.Context, id uint64) (*gift.Handles, error) {
	g, err := s.client.GetGiftInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Recipient != s.account {
		return nil, gift.ErrNotRecipient
	}
	if g.Opened {
		return nil, gift.ErrAlreadyOpened
	}
	if !g.Openable(s.nowUnix()) {
		return nil, gift.ErrGiftLocked
	}
	handles, err := s.client.OpenGift(ctx, id)
	if err != nil {
		return nil, err
	}
	if handles == nil {
		// The receipt carried no event; the view is the recovery path.
		handles, err = s.client.GetGiftHandles(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	s.recordProgress(id, func(p *gifttracker.Progress) { p.Opened = true })
	s.logger.Info("gift opened", "id", id)
	return handles, nil
}

// GiftHandles re-fetches the ciphertext handles of an already-opened gift,
// for resuming a decrypt after the open receipt is gone.
func (s *Session) GiftHandles(ctx context.Context, id uint64) (*gift.Handles, error) {
	g, err := s.client.GetGiftInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	if !g.Opened {
		return nil, gift.ErrGiftNotOpened
	}
	return s.client.GetGiftHandles(ctx, id)
}
