// Package journal keeps an append-only record of performed deletions.
//
// The journal is opt-in: without a path, culldog persists nothing. When
// enabled it uses a BoltDB file, so concurrent invocations sharing one
// journal are serialized by bolt's file lock. Dry runs never write to it —
// only deletions that actually happened are recorded.
package journal

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ivoronin/culldog/internal/types"
)

const bucketName = "deletions"

const keyVersion byte = 1 // Increment when the record format changes

// Entry is one recorded deletion.
type Entry struct {
	Path    string    // Path that was deleted
	Size    int64     // Scan-time size of the file
	ModTime time.Time // Scan-time mtime of the file
	Deleted time.Time // When the deletion was performed
}

// Journal records deletions into a BoltDB file.
type Journal struct {
	db      *bolt.DB
	enabled bool
}

// Open opens (creating if needed) the journal at path.
// Returns a disabled journal if path is empty: every method is a no-op.
func Open(path string) (*Journal, error) {
	if path == "" {
		return &Journal{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal (locked by another instance?): %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Journal{db: db, enabled: true}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// makeKey builds a key that sorts chronologically.
// Key = ver(1) + deletedAt(8, BigEndian) + path
func makeKey(deleted time.Time, path string) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(keyVersion)
	_ = binary.Write(buf, binary.BigEndian, deleted.UnixNano())
	buf.WriteString(path)
	return buf.Bytes()
}

// makeValue encodes the scan-time metadata.
// Value = size(8) + mtime(8), both BigEndian.
func makeValue(e *types.FileEntry) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, e.Size)
	_ = binary.Write(buf, binary.BigEndian, e.ModTime.UnixNano())
	return buf.Bytes()
}

// Record appends one performed deletion. No-op when the journal is disabled.
func (j *Journal) Record(e *types.FileEntry, deleted time.Time) error {
	if !j.enabled {
		return nil
	}

	err := j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.Put(makeKey(deleted, e.Path), makeValue(e))
	})
	if err != nil {
		return fmt.Errorf("journal record: %w", err)
	}
	return nil
}

// List reads every recorded deletion from the journal at path, in
// chronological order. Records with an unknown version are skipped.
func List(path string) ([]Entry, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{
		ReadOnly: true,
		Timeout:  1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = db.Close() }()

	var entries []Entry
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			e, ok := decode(k, v)
			if ok {
				entries = append(entries, e)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("journal list: %w", err)
	}
	return entries, nil
}

// decode parses one key/value pair, rejecting malformed records.
func decode(k, v []byte) (Entry, bool) {
	if len(k) < 10 || k[0] != keyVersion || len(v) != 16 {
		return Entry{}, false
	}
	deletedNano := int64(binary.BigEndian.Uint64(k[1:9]))
	size := int64(binary.BigEndian.Uint64(v[:8]))
	mtimeNano := int64(binary.BigEndian.Uint64(v[8:16]))
	return Entry{
		Path:    string(k[9:]),
		Size:    size,
		ModTime: time.Unix(0, mtimeNano),
		Deleted: time.Unix(0, deletedNano),
	}, true
}
