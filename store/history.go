package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

var runPrefix = []byte("run/")

// History is a badger-backed log of runs, ordered by timestamp.
// It is safe for concurrent use.
type History struct {
	db *badger.DB
}

// badgerLogger routes badger's warnings and errors into slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(string, ...any) {}

func (l *badgerLogger) Debugf(string, ...any) {}

// OpenHistory opens (or creates) the history database in dir.
func OpenHistory(dir string, logger *slog.Logger) (*History, error) {
	if dir == "" {
		return nil, errors.New("history directory is required")
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create history directory %s: %w", dir, err)
	}

	return openHistory(badger.DefaultOptions(dir), logger)
}

// OpenMemoryHistory opens a history that lives only as long as the process.
func OpenMemoryHistory(logger *slog.Logger) (*History, error) {
	return openHistory(badger.DefaultOptions("").WithInMemory(true), logger)
}

func openHistory(opts badger.Options, logger *slog.Logger) (*History, error) {
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger.With(slog.String("component", "history"))})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	return &History{db: db}, nil
}

// runKey orders keys by timestamp; the zero-padded nanoseconds keep
// lexical and chronological order identical.
func runKey(r Run) []byte {
	return fmt.Appendf(nil, "%s%020d/%s", runPrefix, r.Timestamp.UnixNano(), r.ID)
}

// Save stores the run. Saving a run with the same ID and timestamp
// replaces it.
func (h *History) Save(r Run) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", r.ID, err)
	}

	err = h.db.Update(func(txn *badger.Txn) error {
		return txn.Set(runKey(r), data)
	})
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}

	return nil
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (h *History) List(limit int) ([]Run, error) {
	var runs []Run

	err := h.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = runPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts at the last key below the seek key.
		seek := append(append([]byte{}, runPrefix...), 0xFF)

		for it.Seek(seek); it.ValidForPrefix(runPrefix); it.Next() {
			if limit > 0 && len(runs) == limit {
				break
			}

			var r Run

			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}

			runs = append(runs, r)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	return runs, nil
}

// Close releases the database.
func (h *History) Close() error {
	return h.db.Close()
}
