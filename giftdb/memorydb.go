package giftdb

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cgift-network/cgift/core/gift"
)

// memStore is the in-memory Store used in tests and for sessions that opt
// out of persistence.
type memStore struct {
	mu sync.Mutex
	m  map[string]gift.Contents
}

func NewMemStore() Store {
	return &memStore{m: make(map[string]gift.Contents)}
}

func (s *memStore) GetContents(account common.Address, id uint64) (*gift.Contents, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.m[string(contentsKey(account, id))]
	if !ok {
		return nil, nil
	}
	out := c
	return &out, nil
}

func (s *memStore) PutContents(account common.Address, id uint64, c *gift.Contents) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[string(contentsKey(account, id))] = *c
	return nil
}

func (s *memStore) Close() error {
	return nil
}
