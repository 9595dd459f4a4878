// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/frankdean/trip-server-sub001/internal/config"
	"github.com/frankdean/trip-server-sub001/internal/logging"
	"github.com/frankdean/trip-server-sub001/internal/models"
)

// Key prefixes for BadgerDB storage. User records are keyed by zero-padded
// id so that iteration order matches numeric id order; email and nickname
// have secondary index entries pointing at the primary key.
const (
	userKeyPrefix  = "user:"
	emailKeyPrefix = "user_email:"
	nickKeyPrefix  = "user_nick:"
	userSeqKey     = "seq:user"
)

// seqBandwidth is how many ids a sequence lease reserves at once.
const seqBandwidth = 64

// Open opens the BadgerDB backing the credential store.
func Open(cfg config.DatabaseConfig) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", cfg.Path, err)
	}
	return db, nil
}

// badgerLogger forwards Badger's internal logging to the zerolog facade.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.Error().Msgf("badger: "+strings.TrimSpace(format), args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.Warn().Msgf("badger: "+strings.TrimSpace(format), args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+strings.TrimSpace(format), args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+strings.TrimSpace(format), args...)
}

// BadgerStore implements CredentialStore on BadgerDB.
type BadgerStore struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerStore creates a credential store over an open Badger database.
// Call Close when done to release the id sequence lease.
func NewBadgerStore(db *badger.DB) (*BadgerStore, error) {
	seq, err := db.GetSequence([]byte(userSeqKey), seqBandwidth)
	if err != nil {
		return nil, fmt.Errorf("failed to open user id sequence: %w", err)
	}
	return &BadgerStore{db: db, seq: seq}, nil
}

// Close releases the id sequence. The caller owns the badger.DB itself.
func (s *BadgerStore) Close() error {
	return s.seq.Release()
}

func userKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", userKeyPrefix, id))
}

func emailKey(email string) []byte {
	return []byte(emailKeyPrefix + strings.ToLower(email))
}

func nickKey(nickname string) []byte {
	return []byte(nickKeyPrefix + nickname)
}

// getUser reads and decodes a user record inside txn.
func getUser(txn *badger.Txn, key []byte) (*models.User, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var user models.User
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &user)
	}); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

// getUserByEmail resolves the email index and reads the user inside txn.
func getUserByEmail(txn *badger.Txn, email string) (*models.User, error) {
	item, err := txn.Get(emailKey(email))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get email index: %w", err)
	}

	var key []byte
	if err := item.Value(func(val []byte) error {
		key = append([]byte(nil), val...)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("read email index: %w", err)
	}
	return getUser(txn, key)
}

// putUser encodes and writes a user record inside txn.
func putUser(txn *badger.Txn, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return txn.Set(userKey(user.ID), data)
}

// keyExists reports whether key is present inside txn.
func keyExists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateUser stores a new user, assigning its ID from the store sequence.
func (s *BadgerStore) CreateUser(_ context.Context, user *models.User) error {
	next, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("next user id: %w", err)
	}
	user.ID = int64(next) + 1

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range [][]byte{emailKey(user.Email), nickKey(user.Nickname)} {
			exists, err := keyExists(txn, key)
			if err != nil {
				return fmt.Errorf("check uniqueness: %w", err)
			}
			if exists {
				return ErrConflict
			}
		}

		if err := putUser(txn, user); err != nil {
			return err
		}
		if err := txn.Set(emailKey(user.Email), userKey(user.ID)); err != nil {
			return fmt.Errorf("set email index: %w", err)
		}
		if err := txn.Set(nickKey(user.Nickname), userKey(user.ID)); err != nil {
			return fmt.Errorf("set nickname index: %w", err)
		}
		return nil
	})
}

// GetUserByID returns the user with the given id, or ErrNotFound.
func (s *BadgerStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	var user *models.User
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, userKey(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail returns the user with the given email, or ErrNotFound.
func (s *BadgerStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	var user *models.User
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUserByEmail(txn, email)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUsers returns one page of users ordered by id, plus the total count.
func (s *BadgerStore) GetUsers(_ context.Context, page, pageSize int) ([]*models.User, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var users []*models.User
	total := 0
	skip := (page - 1) * pageSize

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(userKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if total >= skip && len(users) < pageSize {
				var user models.User
				if err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &user)
				}); err != nil {
					return fmt.Errorf("decode user: %w", err)
				}
				users = append(users, &user)
			}
			total++
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateUser replaces the stored user record and maintains the email and
// nickname indexes.
func (s *BadgerStore) UpdateUser(_ context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()

	return s.db.Update(func(txn *badger.Txn) error {
		old, err := getUser(txn, userKey(user.ID))
		if err != nil {
			return err
		}

		if err := s.moveIndex(txn, emailKey(old.Email), emailKey(user.Email), user.ID); err != nil {
			return err
		}
		if err := s.moveIndex(txn, nickKey(old.Nickname), nickKey(user.Nickname), user.ID); err != nil {
			return err
		}

		user.CreatedAt = old.CreatedAt
		return putUser(txn, user)
	})
}

// moveIndex repoints a secondary index entry when its value changed.
// Returns ErrConflict when the new entry already points at another user.
func (s *BadgerStore) moveIndex(txn *badger.Txn, oldKey, newKey []byte, id int64) error {
	if string(oldKey) == string(newKey) {
		return nil
	}

	item, err := txn.Get(newKey)
	if err == nil {
		var target []byte
		if err := item.Value(func(val []byte) error {
			target = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return fmt.Errorf("read index: %w", err)
		}
		if string(target) != string(userKey(id)) {
			return ErrConflict
		}
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("check index: %w", err)
	}

	if err := txn.Delete(oldKey); err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	if err := txn.Set(newKey, userKey(id)); err != nil {
		return fmt.Errorf("set index: %w", err)
	}
	return nil
}

// DeleteUser removes the user with the given id and its index entries.
func (s *BadgerStore) DeleteUser(_ context.Context, id int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		user, err := getUser(txn, userKey(id))
		if err != nil {
			return err
		}

		if err := txn.Delete(userKey(id)); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if err := txn.Delete(emailKey(user.Email)); err != nil {
			return fmt.Errorf("delete email index: %w", err)
		}
		if err := txn.Delete(nickKey(user.Nickname)); err != nil {
			return fmt.Errorf("delete nickname index: %w", err)
		}
		return nil
	})
}

// GetPasswordHash returns the stored password hash for email.
func (s *BadgerStore) GetPasswordHash(ctx context.Context, email string) (string, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return user.PasswordHash, nil
}

// SetPasswordHash replaces the stored password hash for email.
func (s *BadgerStore) SetPasswordHash(_ context.Context, email, hash string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		user, err := getUserByEmail(txn, email)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		user.UpdatedAt = time.Now().UTC()
		return putUser(txn, user)
	})
}

// HasRole reports whether the user with the given email holds role. Unknown
// users hold no roles.
func (s *BadgerStore) HasRole(ctx context.Context, email, role string) (bool, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.HasRole(role), nil
}

// AddRole grants role to the user with the given id. Granting a role the
// user already holds is a no-op.
func (s *BadgerStore) AddRole(_ context.Context, userID int64, role string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		user, err := getUser(txn, userKey(userID))
		if err != nil {
			return err
		}
		if user.HasRole(role) {
			return nil
		}
		user.Roles = append(user.Roles, role)
		user.UpdatedAt = time.Now().UTC()
		return putUser(txn, user)
	})
}

// RemoveRole revokes role from the user with the given id. Revoking a role
// the user does not hold is a no-op.
func (s *BadgerStore) RemoveRole(_ context.Context, userID int64, role string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		user, err := getUser(txn, userKey(userID))
		if err != nil {
			return err
		}
		if !user.HasRole(role) {
			return nil
		}
		roles := make([]string, 0, len(user.Roles))
		for _, r := range user.Roles {
			if r != role {
				roles = append(roles, r)
			}
		}
		user.Roles = roles
		user.UpdatedAt = time.Now().UTC()
		return putUser(txn, user)
	})
}
