package handoff

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"

	"billsplit/internal/bill"
)

const (
	bucketName = "bill"

	// documentKey is the well-known key both stages read and write.
	documentKey = "billData"
)

// BoltStore implements the Store interface using BoltDB.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore creates a new BoltStore instance.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Save persists the document under the shared key, overwriting any previous
// document.
func (b *BoltStore) Save(doc bill.Document) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshaling document: %w", err)
		}
		return bucket.Put([]byte(documentKey), data)
	})
}

// Load retrieves the current document. Malformed content is logged and
// treated as absent rather than surfaced.
func (b *BoltStore) Load() (*bill.Document, error) {
	var doc *bill.Document
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data := bucket.Get([]byte(documentKey))
		if data == nil {
			return nil
		}

		var stored bill.Document
		if err := json.Unmarshal(data, &stored); err != nil || stored.Items == nil {
			slog.Warn("Discarding malformed stored document", "error", err)
			return nil
		}
		doc = &stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Close closes the database connection.
func (b *BoltStore) Close() error {
	return b.db.Close()
}
