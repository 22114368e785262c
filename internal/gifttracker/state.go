// Package gifttracker persists the session's intermediate protocol state as
// a small JSON file, so an interrupted unwrap or decrypt can resume after a
// restart without repeating ledger submissions.
package gifttracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type State struct {
	Account       string              `json:"account"`
	PendingUnwrap string              `json:"pendingUnwrap,omitempty"`
	Gifts         map[string]Progress `json:"gifts,omitempty"`
	UpdatedAt     string              `json:"updatedAt"`
}

// Progress records the session-local decrypt milestones of one gift. The
// opened and claimed flags mirror ledger state; the decrypted flags exist
// only here.
type Progress struct {
	Opened           bool `json:"opened"`
	AmountDecrypted  bool `json:"amountDecrypted"`
	MessageDecrypted bool `json:"messageDecrypted"`
	Claimed          bool `json:"claimed"`
}

// Gift returns the recorded progress for a gift id.
func (s *State) Gift(id uint64) Progress {
	if s == nil || s.Gifts == nil {
		return Progress{}
	}
	return s.Gifts[strconv.FormatUint(id, 10)]
}

// SetGift records progress for a gift id.
func (s *State) SetGift(id uint64, p Progress) {
	if s.Gifts == nil {
		s.Gifts = make(map[string]Progress)
	}
	s.Gifts[strconv.FormatUint(id, 10)] = p
}

func Load(path string) (*State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out State
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode tracker state: %w", err)
	}
	return &out, nil
}

// Validate rejects transitions that would lose progress: a changed account,
// or a gift whose opened/claimed milestone moves backward. allowReset
// accepts them anyway, for deliberately starting over.
func Validate(prev *State, curr State, allowReset bool) error {
	if prev == nil || allowReset {
		return nil
	}
	if prev.Account != "" && !strings.EqualFold(prev.Account, curr.Account) {
		return fmt.Errorf("tracker account mismatch: file=%s session=%s", prev.Account, curr.Account)
	}
	for id, was := range prev.Gifts {
		now, ok := curr.Gifts[id]
		if !ok {
			return fmt.Errorf("gift %s dropped from tracker (use reset to accept)", id)
		}
		if (was.Opened && !now.Opened) || (was.Claimed && !now.Claimed) {
			return fmt.Errorf("gift %s milestone moved backward (use reset to accept)", id)
		}
	}
	return nil
}

func Save(path string, curr State) error {
	curr.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	raw, err := json.MarshalIndent(curr, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
