package inmemdb

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-reports/core/report"
)

type (
	// DB holds record collections in memory, each in insertion order.
	DB struct {
		mutex       sync.RWMutex
		collections map[string][]report.Record
	}
)

func Open() *DB {
	return &DB{collections: make(map[string][]report.Record)}
}

// Load reads `<collection>.json` fixtures from dir. Missing files leave their collection empty.
func Load(dir string) (*DB, error) {
	db := Open()
	for _, collection := range []string{
		report.CollectionUsers,
		report.CollectionFees,
		report.CollectionResults,
		report.CollectionNotices,
		report.CollectionTimetable,
	} {
		path := filepath.Join(dir, collection+".json")
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "opening %s", path)
		}
		records, err := report.DecodeRecords(f)
		_ = f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s", path)
		}
		db.Add(collection, records...)
	}
	return db, nil
}

// Add appends records to collection.
func (db *DB) Add(collection string, records ...report.Record) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.collections[collection] = append(db.collections[collection], records...)
}

// Len is the number of records in collection.
func (db *DB) Len(collection string) int {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return len(db.collections[collection])
}

// filter returns copies of the records of collection matching keep, so callers may modify them.
func (db *DB) filter(collection string, keep func(report.Record) bool) []report.Record {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	res := make([]report.Record, 0)
	for _, rec := range db.collections[collection] {
		if keep == nil || keep(rec) {
			res = append(res, append(report.Record(nil), rec...))
		}
	}
	return res
}
