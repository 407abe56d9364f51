// Package store keeps the history of batch runs.
//
// The storage backend is BoltDB, an embedded key-value store. Each run is
// stored as JSON under a key that sorts chronologically, with a secondary
// bucket mapping run IDs to those keys.
//
// # Usage
//
//	db, err := store.NewBolt(path)
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	runs, err := db.ListRuns(10)
//
// History is informational only: callers log failures to save a run and
// carry on, since the outcome of a batch never depends on it.
package store
