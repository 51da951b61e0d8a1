// Package storage persists the yearly artifact pair and reads it back for
// replay.
//
// Each target year produces two files in the output directory:
//   - user_{year}.json, the frequency tables with their pinned field names
//   - works_{year}.csv, one row per collected work under a fixed header
//
// The Manager type is the primary interface for storage operations. Writes
// go through a temporary file and an atomic rename, so a crash mid-write
// never leaves a torn artifact.
//
// Replay loads both files or fails with a typed error naming the missing
// one; the reconstructed tables and dataset feed the report exactly like a
// live scrape.
//
// Usage:
//
//	manager, err := storage.NewManager(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := manager.SaveYear("2024", tables, dataset); err != nil {
//	    log.Printf("Failed to save artifacts: %v", err)
//	}
//
//	tables, dataset, err = manager.LoadYear("2024")
//	if err != nil {
//	    log.Fatal(err)
//	}
package storage
