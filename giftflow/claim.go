package giftflow

import (
	"context"

	"github.com/cgift-network/cgift/core/gift"
	"github.com/cgift-network/cgift/internal/gifttracker"
)

// ClaimGift moves the gift's escrowed encrypted amount into the
// recipient's confidential balance. The ciphertext itself is what moves,
// so no proof or cleartext is needed. The ledger only requires the gift to
// be opened; the session additionally gates on a decrypted amount so
// nobody claims a value they cannot read. force skips that session-side
// gate.
func (s *Session) ClaimGift(ctx context.Context, id uint64, force bool) error {
	g, err := s.client.GetGiftInfo(ctx, id)
	if err != nil {
		return err
	}
	if g.Recipient != s.account {
		return gift.ErrNotRecipient
	}
	if !g.Opened {
		return gift.ErrGiftNotOpened
	}
	if g.Claimed {
		return gift.ErrAlreadyClaimed
	}
	if !force {
		if !s.cachedContents(id).AmountSettled && !s.trackedProgress(id).AmountDecrypted {
			return ErrAmountNotDecrypted
		}
	}
	if err := s.client.ClaimGift(ctx, id); err != nil {
		return err
	}
	s.recordProgress(id, func(p *gifttracker.Progress) {
		p.Opened = true
		p.Claimed = true
	})
	s.logger.Info("gift claimed", "id", id)
	return nil
}
