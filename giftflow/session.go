// Package giftflow drives the gift lifecycle state machine: wrap, the
// three-phase unwrap pipeline, gift creation, and the open/decrypt/claim
// sequence. Every operation awaits its submission to a terminal state
// before the next dependent step, and interrupted flows leave resumable
// state behind.
package giftflow

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/cgift-network/cgift/core/gift"
	"github.com/cgift-network/cgift/fhe"
	"github.com/cgift-network/cgift/giftclient"
	"github.com/cgift-network/cgift/giftdb"
	"github.com/cgift-network/cgift/internal/gifttracker"
	"github.com/cgift-network/cgift/params"
)

// Config assembles the collaborators of one user session. Client,
// Encryptor, Decryptor and Negotiator are required; Store and TrackerPath
// are optional persistence.
type Config struct {
	Client     *giftclient.Client
	Encryptor  fhe.Encryptor
	Decryptor  fhe.Decryptor
	Negotiator *fhe.Negotiator

	// Store caches decrypted gift contents across sessions.
	Store giftdb.Store

	// TrackerPath points at the JSON file recording resumable flow state.
	TrackerPath string

	// DecryptTimeout overrides the bounded wait on decrypt calls.
	DecryptTimeout time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Session is a single logical actor: one account driving its gifts against
// one contract. Independent sessions are safe to run concurrently;
// operations within one session are sequential pipelines.
type Session struct {
	client      *giftclient.Client
	enc         fhe.Encryptor
	dec         fhe.Decryptor
	neg         *fhe.Negotiator
	account     common.Address
	store       giftdb.Store
	trackerPath string
	timeout     time.Duration
	now         func() time.Time
	logger      log.Logger
}

func NewSession(cfg Config) (*Session, error) {
	if cfg.Client == nil {
		return nil, errors.New("giftflow: config needs a ledger client")
	}
	if cfg.Encryptor == nil || cfg.Decryptor == nil || cfg.Negotiator == nil {
		return nil, errors.New("giftflow: config needs the encryption collaborators")
	}
	timeout := cfg.DecryptTimeout
	if timeout <= 0 {
		timeout = params.DecryptTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	account := cfg.Client.From()
	return &Session{
		client:      cfg.Client,
		enc:         cfg.Encryptor,
		dec:         cfg.Decryptor,
		neg:         cfg.Negotiator,
		account:     account,
		store:       cfg.Store,
		trackerPath: cfg.TrackerPath,
		timeout:     timeout,
		now:         now,
		logger:      log.New("module", "giftflow", "account", account),
	}, nil
}

// Account returns the session's ledger address.
func (s *Session) Account() common.Address {
	return s.account
}

// Client exposes the underlying ledger client, e.g. for wiring a
// projection index over the same backend.
func (s *Session) Client() *giftclient.Client {
	return s.client
}

func (s *Session) loadTracker() *gifttracker.State {
	if s.trackerPath == "" {
		return nil
	}
	st, err := gifttracker.Load(s.trackerPath)
	if err != nil {
		s.logger.Warn("tracker load failed", "path", s.trackerPath, "err", err)
		return nil
	}
	return st
}

// saveTracker applies mutate on top of the persisted state and writes it
// back. Tracker failures are logged, never fatal: the tracker is a resume
// aid, not a source of truth.
func (s *Session) saveTracker(mutate func(*gifttracker.State)) {
	if s.trackerPath == "" {
		return
	}
	prev := s.loadTracker()
	curr := s.loadTracker()
	if curr == nil {
		curr = &gifttracker.State{Account: s.account.Hex()}
	}
	mutate(curr)
	if err := gifttracker.Validate(prev, *curr, false); err != nil {
		s.logger.Warn("tracker update rejected", "err", err)
		return
	}
	if err := gifttracker.Save(s.trackerPath, *curr); err != nil {
		s.logger.Warn("tracker save failed", "path", s.trackerPath, "err", err)
	}
}

func (s *Session) recordProgress(id uint64, mutate func(*gifttracker.Progress)) {
	s.saveTracker(func(st *gifttracker.State) {
		p := st.Gift(id)
		mutate(&p)
		st.SetGift(id, p)
	})
}

func (s *Session) trackedProgress(id uint64) gifttracker.Progress {
	return s.loadTracker().Gift(id)
}

// cachedContents returns the stored decrypted contents of a gift, or a
// fresh zero value when nothing is cached.
func (s *Session) cachedContents(id uint64) *gift.Contents {
	if s.store == nil {
		return &gift.Contents{}
	}
	c, err := s.store.GetContents(s.account, id)
	if err != nil {
		s.logger.Warn("contents cache read failed", "id", id, "err", err)
		return &gift.Contents{}
	}
	if c == nil {
		return &gift.Contents{}
	}
	return c
}

func (s *Session) storeContents(id uint64, c *gift.Contents) {
	if s.store == nil || (!c.AmountSettled && !c.MessageSettled) {
		return
	}
	if err := s.store.PutContents(s.account, id, c); err != nil {
		s.logger.Warn("contents cache write failed", "id", id, "err", err)
	}
}

func (s *Session) nowUnix() uint64 {
	return uint64(s.now().Unix())
}
