package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
)

// exportRecord is the JSON-lines format for export/import.
type exportRecord struct {
	Kind string          `json:"kind"` // domain name, or "meta"
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data"`
}

// Export writes the run metadata and every record to w in JSON-lines
// format, domains in save order.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	enc := json.NewEncoder(w)
	if m, err := s.Meta(ctx); err == nil {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal meta: %w", err)
		}
		if err := enc.Encode(exportRecord{Kind: "meta", Data: data}); err != nil {
			return fmt.Errorf("encode meta: %w", err)
		}
	}
	return s.db.View(func(txn *badger.Txn) error {
		for _, c := range codecs {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := scanPrefix(txn, recordPrefix(c.domain), func(_ string, val []byte) error {
				var rec record
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("unmarshal %s record: %w", c.domain, err)
				}
				return enc.Encode(exportRecord{Kind: c.domain, ID: rec.ID, Data: rec.Data})
			})
			if err != nil {
				return fmt.Errorf("export %s: %w", c.domain, err)
			}
		}
		return nil
	})
}

// Import reads JSON-lines from r, clears the store, and stores all records
// in the order read. Fingerprints are not part of an export, so an
// imported snapshot always reports its sources as changed.
func (s *Store) Import(ctx context.Context, r io.Reader) error {
	// Clear all existing data.
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}

	scanner := bufio.NewScanner(r)
	// Increase buffer for potentially large lines.
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	seq := make(map[string]int)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec exportRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("unmarshal record: %w", err)
		}

		if rec.Kind == "meta" {
			if err := wb.Set([]byte(keyMeta), append([]byte(nil), rec.Data...)); err != nil {
				return err
			}
			continue
		}
		if _, ok := codecFor(rec.Kind); !ok {
			return fmt.Errorf("unknown record kind: %q", rec.Kind)
		}
		env, err := json.Marshal(record{ID: rec.ID, Data: rec.Data})
		if err != nil {
			return err
		}
		if err := wb.Set(recordKey(rec.Kind, seq[rec.Kind]), env); err != nil {
			return fmt.Errorf("import %s %q: %w", rec.Kind, rec.ID, err)
		}
		seq[rec.Kind]++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return wb.Flush()
}
