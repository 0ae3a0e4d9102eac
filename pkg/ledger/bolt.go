// Package ledger provides the persistent ledger behind engine.Ledger: a
// single-file embedded key-value store recording, per destination-relative
// path, the fingerprint and mode written on the last successful Apply.
package ledger

import (
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/guisu-dotfiles/guisu/pkg/engine"
)

// entryStateBucket is the sole named bucket this ledger uses, matching the
// "entryState" bucket spec.md §6 requires.
var entryStateBucket = []byte("entryState")

// Ledger is a bbolt-backed implementation of engine.Ledger. The core
// package never imports bbolt directly; this package is the single place
// that dependency is wired in, at the edge of the reconciliation engine.
type Ledger struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the ledger database at path.
func Open(path string) (*Ledger, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "unable to open ledger database")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(entryStateBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "unable to initialize ledger bucket")
	}

	return &Ledger{db: db}, nil
}

// Get implements engine.Ledger.
func (l *Ledger) Get(path string) (engine.LedgerRecord, bool, error) {
	var record engine.LedgerRecord
	var found bool

	err := l.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(entryStateBucket)
		value := bucket.Get([]byte(path))
		if value == nil {
			return nil
		}
		found = true

		// bolt's Get returns a slice valid only for the transaction's
		// lifetime; copy it before decoding and returning.
		buf := make([]byte, len(value))
		copy(buf, value)

		decoded, err := engine.DecodeLedgerRecord(buf)
		if err != nil {
			return err
		}
		record = decoded
		return nil
	})
	if err != nil {
		return engine.LedgerRecord{}, false, err
	}

	return record, found, nil
}

// Set implements engine.Ledger. bolt's Update commits (and fsyncs, unless
// NoSync is set, which this package never sets) before returning, so the
// write is durable by the time Set returns — satisfying spec.md §4.7's
// per-path durability requirement.
func (l *Ledger) Set(path string, record engine.LedgerRecord) error {
	encoded := engine.EncodeLedgerRecord(record)
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(entryStateBucket).Put([]byte(path), encoded)
	})
}

// Delete implements engine.Ledger.
func (l *Ledger) Delete(path string) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(entryStateBucket).Delete([]byte(path))
	})
}

// Keys enumerates every path currently recorded in the ledger, implementing
// the optional capability engine.Reconcile uses to discover StatusRemoved
// paths (paths the ledger remembers that the target state no longer
// contains).
func (l *Ledger) Keys() ([]string, error) {
	var keys []string
	err := l.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(entryStateBucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// Close implements engine.Ledger.
func (l *Ledger) Close() error {
	return l.db.Close()
}
