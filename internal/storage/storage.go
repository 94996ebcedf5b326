package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefixTable = "table:"

// BuildStatus is the lifecycle state of one (material, winner) table.
type BuildStatus int

const (
	StatusPending BuildStatus = iota
	StatusGenerating
	StatusTagging
	StatusDone
	StatusFailed
)

func (s BuildStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusGenerating:
		return "generating"
	case StatusTagging:
		return "tagging"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TableProgress records how far a single table's build has gotten. Table
// generation and tagging both iterate in a fixed, deterministic order (the
// dense Syzygy index, and the desired/losing queues in the order the
// Generator appended them), so recording nothing but the coarse phase plus
// a monotonically increasing "positions handled" counter is enough to tell
// a caller whether a partially built table finished (safe to skip) or needs
// restarting. A crash mid-phase always restarts that phase rather than
// splicing into an in-memory queue, since the queue itself (potentially
// hundreds of millions of entries) is never checkpointed, only counted.
type TableProgress struct {
	Key              string      `json:"key"` // MaterialWinner.String()
	Status           BuildStatus `json:"status"`
	PositionsTotal   uint64      `json:"positions_total"`
	PositionsHandled uint64      `json:"positions_handled"`
	UpdatedAt        time.Time   `json:"updated_at"`
	Err              string      `json:"err,omitempty"`
}

// Storage wraps BadgerDB to persist TableProgress across process restarts,
// the same key/value-over-badger persistence pattern the teacher used for
// user preferences, applied here to resumable generation state instead.
type Storage struct {
	db *badger.DB
}

// NewStorage opens (creating if necessary) the progress database under the
// platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveTableProgress persists the current progress for one table, stamping
// UpdatedAt with now (supplied by the caller so Storage itself never calls
// time.Now, keeping it trivially testable).
func (s *Storage) SaveTableProgress(p TableProgress, now time.Time) error {
	p.UpdatedAt = now

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefixTable+p.Key), data)
	})
}

// LoadTableProgress returns the saved progress for key, and false if no
// progress has ever been recorded for it (a fresh build).
func (s *Storage) LoadTableProgress(key string) (TableProgress, bool, error) {
	var p TableProgress
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefixTable + key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})

	return p, found, err
}

// ListTableProgress returns progress records for every table this database
// has ever tracked, in no particular order.
func (s *Storage) ListTableProgress() ([]TableProgress, error) {
	var out []TableProgress

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefixTable)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			var p TableProgress
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return nil
	})

	return out, err
}

// DeleteTableProgress removes any saved progress for key, e.g. to force a
// from-scratch rebuild of a table whose on-disk file was deleted by hand.
func (s *Storage) DeleteTableProgress(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefixTable + key))
	})
}
