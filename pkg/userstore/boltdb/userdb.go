// Package boltdb provides a persistent userstore.Store that keeps data in a file.
package boltdb

import (
	"context"
	"time"

	bolt "go.etcd.io/bbolt"

	"code.extranets.org/golang/internal/transport"
	"code.extranets.org/golang/pkg/userstore"
)

const (
	connectTimeout = 5 * time.Second
	usersBucket    = "users"
)

// records are cbor encoded and validated on load & save.
var recordSrz = transport.WrapInSafeSerializer(transport.CBORSerializer{})

// UserStore is a userstore.Store backed by a single file boltdb database.
//
// The database file is opened for the duration of each operation, several processes may
// share it provided they do not operate concurrently for longer than connectTimeout.
type UserStore struct {
	dbpath   string
	hashOpts []userstore.HashOption
}

// New returns a UserStore that persists users in the dbpath file.
// opts configure the hashing of saved passwords.
// It errors if the database schema can not be created.
func New(dbpath string, opts ...userstore.HashOption) (*UserStore, error) {
	store := &UserStore{dbpath: dbpath, hashOpts: opts}

	db, err := store.open()
	if nil != err {
		return nil, err
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(usersBucket))
		return wrapError(err, "failed %s bucket creation", usersBucket)
	})
	if nil != err {
		return nil, wrapError(err, "failed db initialization")
	}

	return store, nil
}

func (self *UserStore) open() (*bolt.DB, error) {
	db, err := bolt.Open(self.dbpath, 0600, &bolt.Options{Timeout: connectTimeout})
	if nil != err {
		return nil, wrapError(err, "failed connecting to database")
	}
	return db, nil
}

// CheckPassword returns true if password is the password of userID.
func (self *UserStore) CheckPassword(ctx context.Context, userID, password string) (bool, error) {
	var rec userstore.Record
	found, err := self.load(userID, &rec)
	if nil != err || !found {
		return false, err
	}
	return rec.Hash.Match(password), nil
}

// SaveUser creates or updates userID with password.
func (self *UserStore) SaveUser(ctx context.Context, userID, password string) error {
	rec, err := userstore.NewRecord(userID, password, self.hashOpts...)
	if nil != err {
		return wrapError(err, "invalid user")
	}
	srzrec, err := recordSrz.Marshal(rec)
	if nil != err {
		return wrapError(err, "failed serializing user record")
	}

	db, err := self.open()
	if nil != err {
		return err
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(usersBucket))
		if nil == bucket {
			return newError("missing %s bucket", usersBucket)
		}
		return wrapError(bucket.Put([]byte(rec.UserID), srzrec), "failed storing user record")
	})

	return wrapError(err, "failed saving user") // nil if err is nil
}

// RemoveUser deletes userID. It errors with userstore.ErrNotFound if userID does not exist.
func (self *UserStore) RemoveUser(ctx context.Context, userID string) error {
	db, err := self.open()
	if nil != err {
		return err
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(usersBucket))
		if nil == bucket {
			return newError("missing %s bucket", usersBucket)
		}
		key := []byte(userID)
		if nil == bucket.Get(key) {
			return wrapError(userstore.ErrNotFound, "unknown user %q", userID)
		}
		return wrapError(bucket.Delete(key), "failed deleting user record")
	})

	return wrapError(err, "failed removing user")
}

// UserCount returns the number of users in the UserStore.
func (self *UserStore) UserCount(ctx context.Context) (int, error) {
	db, err := self.open()
	if nil != err {
		return 0, err
	}
	defer db.Close()

	var count int
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(usersBucket))
		if nil == bucket {
			return newError("missing %s bucket", usersBucket)
		}
		count = bucket.Stats().KeyN
		return nil
	})

	return count, wrapError(err, "failed counting users")
}

// ListUsers returns the sorted identifiers of the users in the UserStore.
func (self *UserStore) ListUsers(ctx context.Context) ([]string, error) {
	db, err := self.open()
	if nil != err {
		return nil, err
	}
	defer db.Close()

	var users []string
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(usersBucket))
		if nil == bucket {
			return newError("missing %s bucket", usersBucket)
		}
		return bucket.ForEach(func(k, _ []byte) error {
			users = append(users, string(k))
			return nil
		})
	})

	return users, wrapError(err, "failed listing users")
}

// load reads userID record into dst. It returns false if userID is not in the store.
func (self *UserStore) load(userID string, dst *userstore.Record) (bool, error) {
	db, err := self.open()
	if nil != err {
		return false, err
	}
	defer db.Close()

	var found bool
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(usersBucket))
		if nil == bucket {
			return newError("missing %s bucket", usersBucket)
		}
		srzrec := bucket.Get([]byte(userID))
		if nil == srzrec {
			return nil
		}
		found = true
		return wrapError(recordSrz.Unmarshal(srzrec, dst), "failed loading user record")
	})

	return found, wrapError(err, "failed loading user")
}

var _ userstore.Store = &UserStore{}
