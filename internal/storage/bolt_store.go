package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/samvad-hq/samvad-llm-client/pkg/ollama"
)

const (
	detailBucket     = "model_details"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB. Values are stored as an
// 8-byte big-endian expiry timestamp followed by the JSON-encoded detail.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	detailTTL       time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(detailBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		detailTTL:       opts.DetailTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// GetModelDetail returns the cached detail for a model if it has not expired.
func (b *boltStore) GetModelDetail(name string) (*ollama.ModelDetail, bool, error) {
	if b == nil || b.db == nil {
		return nil, false, nil
	}

	if err := b.maybeCleanupExpired(time.Now()); err != nil {
		return nil, false, err
	}

	var detail *ollama.ModelDetail
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(detailBucket))
		if bucket == nil {
			return fmt.Errorf("detail bucket missing")
		}

		key := []byte(name)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}

		expiry, payload, ok := decodeValue(value)
		if !ok || !expiry.After(time.Now()) {
			return bucket.Delete(key)
		}

		var parsed ollama.ModelDetail
		if err := json.Unmarshal(payload, &parsed); err != nil {
			// A corrupt entry is dropped rather than surfaced.
			return bucket.Delete(key)
		}
		detail = &parsed
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return detail, detail != nil, nil
}

// PutModelDetail stores the detail for a model with the configured TTL.
func (b *boltStore) PutModelDetail(name string, detail *ollama.ModelDetail) error {
	if b == nil || b.db == nil || detail == nil {
		return nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("encode model detail: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(detailBucket))
		if bucket == nil {
			return fmt.Errorf("detail bucket missing")
		}
		buf := make([]byte, expiryValueBytes, expiryValueBytes+len(payload))
		binary.BigEndian.PutUint64(buf, uint64(now.Add(b.detailTTL).Unix()))
		buf = append(buf, payload...)
		return bucket.Put([]byte(name), buf)
	})
}

// maybeCleanupExpired removes expired entries on a fixed cadence to avoid
// unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(detailBucket))
		if bucket == nil {
			return fmt.Errorf("detail bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, _, ok := decodeValue(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeValue splits a stored value into its expiry time and JSON payload.
func decodeValue(value []byte) (time.Time, []byte, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, nil, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, nil, false
	}
	return time.Unix(unix, 0), value[expiryValueBytes:], true
}
