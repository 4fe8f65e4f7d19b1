package userstore

import (
	"context"
	"sync"
)

// MemStore is an in memory Store.
type MemStore struct {
	mut      sync.Mutex
	users    map[string]Hash
	hashOpts []HashOption
}

// NewMemStore returns an empty MemStore, opts configure the hashing of saved passwords.
func NewMemStore(opts ...HashOption) *MemStore {
	return &MemStore{users: make(map[string]Hash), hashOpts: opts}
}

func (self *MemStore) CheckPassword(_ context.Context, userID, password string) (bool, error) {
	self.mut.Lock()
	h, found := self.users[userID]
	self.mut.Unlock()

	if !found {
		return false, nil
	}
	return h.Match(password), nil
}

func (self *MemStore) SaveUser(_ context.Context, userID, password string) error {
	rec, err := NewRecord(userID, password, self.hashOpts...)
	if nil != err {
		return err
	}

	self.mut.Lock()
	defer self.mut.Unlock()
	self.users[rec.UserID] = rec.Hash

	return nil
}

func (self *MemStore) RemoveUser(_ context.Context, userID string) error {
	self.mut.Lock()
	defer self.mut.Unlock()

	if _, found := self.users[userID]; !found {
		return newError(ErrNotFound, "unknown user %q", userID)
	}
	delete(self.users, userID)

	return nil
}

func (self *MemStore) UserCount(_ context.Context) (int, error) {
	self.mut.Lock()
	defer self.mut.Unlock()

	return len(self.users), nil
}

var _ Store = &MemStore{}
