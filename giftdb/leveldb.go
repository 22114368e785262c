package giftdb

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"

	"github.com/cgift-network/cgift/core/gift"
)

// levelStore persists the cache under a directory, one JSON record per
// (account, gift).
type levelStore struct {
	db *leveldb.DB
}

// NewLevelStore opens (or creates) the cache at dir.
func NewLevelStore(dir string) (Store, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if errors.IsCorrupted(err) {
		db, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("giftdb: open %s: %w", dir, err)
	}
	return &levelStore{db: db}, nil
}

func (s *levelStore) GetContents(account common.Address, id uint64) (*gift.Contents, error) {
	raw, err := s.db.Get(contentsKey(account, id), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out gift.Contents
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("giftdb: decode contents: %w", err)
	}
	return &out, nil
}

func (s *levelStore) PutContents(account common.Address, id uint64, c *gift.Contents) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.db.Put(contentsKey(account, id), raw, nil)
}

func (s *levelStore) Close() error {
	return s.db.Close()
}
