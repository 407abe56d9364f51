package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	boltBucketRuns   = "runs"    // key: start time + ID -> Run JSON
	boltBucketRunIDs = "run_ids" // key: ID -> runs key
	runKeyTimeLayout = "20060102T150405.000000000Z"
)

var _ Store = (*Bolt)(nil)

// Bolt is a Store backed by BoltDB
type Bolt struct {
	db *bbolt.DB
}

// NewBolt opens (or creates) the history database at path
func NewBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("error opening history database %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(boltBucketRuns)); err != nil {
			return err
		}

		if _, err := tx.CreateBucketIfNotExists([]byte(boltBucketRunIDs)); err != nil {
			return err
		}

		return nil
	}); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Bolt{db: db}, nil
}

func runKey(run *Run) []byte {
	return []byte(run.StartedAt.UTC().Format(runKeyTimeLayout) + "/" + run.ID)
}

// SaveRun stores run, assigning an ID and start time when missing
func (b *Bolt) SaveRun(run *Run) error {
	if run == nil {
		return errors.New("run is required")
	}

	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	key := runKey(run)

	return b.db.Update(func(tx *bbolt.Tx) error {
		var (
			runs = tx.Bucket([]byte(boltBucketRuns))
			ids  = tx.Bucket([]byte(boltBucketRunIDs))
		)

		if old := ids.Get([]byte(run.ID)); old != nil {
			if err := runs.Delete(old); err != nil {
				return err
			}
		}

		if err := runs.Put(key, data); err != nil {
			return err
		}

		return ids.Put([]byte(run.ID), key)
	})
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (b *Bolt) ListRuns(limit int) ([]Run, error) {
	var runs []Run

	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(boltBucketRuns)).Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(runs) >= limit {
				break
			}

			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("error decoding run %s: %w", k, err)
			}

			runs = append(runs, run)
		}

		return nil
	})

	return runs, err
}

// GetRun returns the run whose ID equals or starts with id
func (b *Bolt) GetRun(id string) (*Run, error) {
	if id == "" {
		return nil, ErrRunNotFound
	}

	var run *Run

	err := b.db.View(func(tx *bbolt.Tx) error {
		ids := tx.Bucket([]byte(boltBucketRunIDs))

		var key []byte

		c := ids.Cursor()
		prefix := []byte(id)

		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if key != nil {
				return ErrAmbiguousRunID
			}

			key = v
		}

		if key == nil {
			return ErrRunNotFound
		}

		data := tx.Bucket([]byte(boltBucketRuns)).Get(key)
		if data == nil {
			return ErrRunNotFound
		}

		run = &Run{}

		return json.Unmarshal(data, run)
	})
	if err != nil {
		return nil, err
	}

	return run, nil
}

// Close closes the database
func (b *Bolt) Close() error {
	return b.db.Close()
}
