// Package store persists the last extraction in BadgerDB: every catalog
// record in discovery order, the fingerprints of the sources it was
// extracted from, and run metadata.
package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/imyousuf/forgewiki/internal/model"
)

// Key prefixes for the BadgerDB key scheme.
const (
	prefixRecord      = "r:" // r:<domain>:<seq> -> record
	prefixFingerprint = "f:" // f:<path> -> xxhash
	keyMeta           = "m:run"
)

// ErrNoSnapshot is returned when the store holds no run metadata.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Meta describes the run a snapshot came from.
type Meta struct {
	Root        string         `json:"root"`
	LastRun     time.Time      `json:"last_run"`
	Counts      map[string]int `json:"counts"`
	Diagnostics map[string]int `json:"diagnostics,omitempty"`
}

// Stats holds statistics about the stored snapshot.
type Stats struct {
	Records      map[string]int `json:"records"`
	Fingerprints int            `json:"fingerprints"`
}

// record is the stored envelope of one catalog record.
type record struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Store is a BadgerDB-backed snapshot store.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a snapshot store at dbPath.
func Open(dbPath string) (*Store, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // suppress badger logs
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func recordKey(domain string, seq int) []byte {
	return []byte(fmt.Sprintf("%s%s:%08d", prefixRecord, domain, seq))
}

func recordPrefix(domain string) []byte {
	return []byte(prefixRecord + domain + ":")
}

func fingerprintKey(path string) []byte {
	return []byte(prefixFingerprint + path)
}

// SaveCatalog replaces the stored records with those of cat.
func (s *Store) SaveCatalog(ctx context.Context, cat *model.Catalog) error {
	if err := s.db.DropPrefix([]byte(prefixRecord)); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, c := range codecs {
		if err := ctx.Err(); err != nil {
			return err
		}
		seq := 0
		err := c.each(cat, func(id string, v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("marshal %s %q: %w", c.domain, id, err)
			}
			env, err := json.Marshal(record{ID: id, Data: data})
			if err != nil {
				return err
			}
			if err := wb.Set(recordKey(c.domain, seq), env); err != nil {
				return err
			}
			seq++
			return nil
		})
		if err != nil {
			return err
		}
	}
	return wb.Flush()
}

// LoadCatalog reads the stored records back in their saved order.
func (s *Store) LoadCatalog(ctx context.Context) (*model.Catalog, error) {
	cat := model.NewCatalog()
	err := s.db.View(func(txn *badger.Txn) error {
		for _, c := range codecs {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := scanPrefix(txn, recordPrefix(c.domain), func(_ string, val []byte) error {
				var rec record
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("unmarshal %s record: %w", c.domain, err)
				}
				return c.load(cat, rec.ID, rec.Data)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// SaveFingerprints replaces the stored source fingerprints.
func (s *Store) SaveFingerprints(_ context.Context, fps map[string]uint64) error {
	if err := s.db.DropPrefix([]byte(prefixFingerprint)); err != nil {
		return fmt.Errorf("clear fingerprints: %w", err)
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for path, sum := range fps {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], sum)
		if err := wb.Set(fingerprintKey(path), buf[:]); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Fingerprints returns the stored source fingerprints.
func (s *Store) Fingerprints(_ context.Context) (map[string]uint64, error) {
	out := make(map[string]uint64)
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(prefixFingerprint), func(key string, val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("fingerprint %s: bad length %d", key, len(val))
			}
			out[strings.TrimPrefix(key, prefixFingerprint)] = binary.BigEndian.Uint64(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveMeta stores the run metadata.
func (s *Store) SaveMeta(_ context.Context, m Meta) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyMeta), data)
	})
}

// Meta returns the stored run metadata, or ErrNoSnapshot.
func (s *Store) Meta(_ context.Context) (Meta, error) {
	var m Meta
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyMeta))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &m)
		})
	})
	return m, err
}

// Stats counts the stored records per domain and the fingerprints.
func (s *Store) Stats(_ context.Context) (*Stats, error) {
	stats := &Stats{Records: make(map[string]int)}
	err := s.db.View(func(txn *badger.Txn) error {
		for _, c := range codecs {
			n, err := countPrefix(txn, recordPrefix(c.domain))
			if err != nil {
				return err
			}
			stats.Records[c.domain] = n
		}
		n, err := countPrefix(txn, []byte(prefixFingerprint))
		stats.Fingerprints = n
		return err
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// scanPrefix calls fn for every key under prefix, in key order.
func scanPrefix(txn *badger.Txn, prefix []byte, fn func(key string, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Seek(prefix); it.Valid(); it.Next() {
		item := it.Item()
		key := string(item.Key())
		err := item.Value(func(val []byte) error {
			return fn(key, val)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func countPrefix(txn *badger.Txn, prefix []byte) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()
	n := 0
	for it.Seek(prefix); it.Valid(); it.Next() {
		n++
	}
	return n, nil
}
