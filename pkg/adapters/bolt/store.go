// Package bolt stores serialized machines in a bbolt database file.
package bolt

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/ports"
	bolt "go.etcd.io/bbolt"
)

// DefaultBucket holds the machines unless WithBucket is given.
const DefaultBucket = "machines"

// Store implements ports.MachineStore on top of bbolt.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

type Option func(*Store)

// WithBucket sets the bucket machines are stored in.
func WithBucket(name string) Option {
	return func(s *Store) {
		s.bucket = []byte(name)
	}
}

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database %s: %w", path, err)
	}

	s := &Store{db: db, bucket: []byte(DefaultBucket)}
	for _, opt := range opts {
		opt(s)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket %q: %w", s.bucket, err)
	}
	return s, nil
}

func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(name), data)
	})
}

// Load copies the value out of the transaction, bbolt memory is only valid
// while it is open.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(name))
		if v == nil {
			return domain.ErrMachineNotFound
		}
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(name))
	})
}

// List walks the bucket cursor, which yields keys in byte order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, 16)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			names = append(names, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
