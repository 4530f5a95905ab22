package buntdb

import (
	"fmt"

	"cryptiq/pkg/logger"

	"github.com/tidwall/buntdb"
)

const InMemory = ":memory:"

// DB wraps an open buntdb database.
type DB struct {
	*buntdb.DB
	log *logger.Logger
}

// Open opens (or creates) the database file at path. Pass InMemory for a
// throwaway store.
func Open(path string, log *logger.Logger) (*DB, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb %q: %w", path, err)
	}

	if err := db.SetConfig(buntdb.Config{
		SyncPolicy:           buntdb.EverySecond,
		AutoShrinkPercentage: 100,
		AutoShrinkMinSize:    32 * 1024 * 1024,
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure buntdb: %w", err)
	}

	return &DB{DB: db, log: log}, nil
}

func (d *DB) Close() error {
	if d.DB == nil {
		return nil
	}
	d.log.Info("Closing buntdb")
	return d.DB.Close()
}
