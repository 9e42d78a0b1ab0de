// Package snapshot remembers the last tree seen for each device.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Snapshot summarizes one traversal of a device.
type Snapshot struct {
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name"`
	Digest     string    `json:"digest"`
	Nodes      int       `json:"nodes"`
	TakenAt    time.Time `json:"taken_at"`
}

type Store struct {
	db *badger.DB
}

func Open(dataDir string) (*Store, error) {
	opts := badger.DefaultOptions(dataDir)
	opts.Logger = nil // Disable BadgerDB logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func key(deviceID string) []byte {
	return []byte("snapshot:" + deviceID)
}

// Get returns the stored snapshot for a device, or nil if there is none.
func (s *Store) Get(deviceID string) (*Snapshot, error) {
	var snap *Snapshot

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(deviceID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			snap = &Snapshot{}
			return json.Unmarshal(val, snap)
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return snap, nil
}

func (s *Store) Put(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(snap.DeviceID), data)
	})
}

func (s *Store) Delete(deviceID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(deviceID))
	})
}

// List returns every stored snapshot ordered by device ID.
func (s *Store) List() ([]*Snapshot, error) {
	var snaps []*Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("snapshot:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				snap := &Snapshot{}
				if err := json.Unmarshal(val, snap); err != nil {
					return err
				}
				snaps = append(snaps, snap)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snaps, nil
}

// Record stores snap and reports whether the digest differs from the
// previous snapshot of the same device. The first snapshot counts as changed.
func (s *Store) Record(snap *Snapshot) (changed bool, previous *Snapshot, err error) {
	previous, err = s.Get(snap.DeviceID)
	if err != nil {
		return false, nil, err
	}
	if err := s.Put(snap); err != nil {
		return false, previous, err
	}
	return previous == nil || previous.Digest != snap.Digest, previous, nil
}
