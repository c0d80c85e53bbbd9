// Package localkv is a small buntdb-backed key/value store the engine
// uses to remember the last trigger bar emitted per combination, so a
// re-scan of the same bar does not re-emit the signal.
package localkv

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/tidwall/buntdb"

	"github.com/ezquant/azsignal/azsignal/model"
)

type LocalKV struct {
	db     *buntdb.DB
	dbPath string
}

// NewLocalKV opens the store under databasePath, or in memory when
// databasePath is nil.
func NewLocalKV(databasePath *string) (*LocalKV, error) {
	var dbPath string

	if databasePath == nil {
		dbPath = ":memory:"
	} else {
		if err := os.MkdirAll(*databasePath, 0755); err != nil {
			return nil, fmt.Errorf("localkv: create dir: %w", err)
		}
		dbPath = path.Join(*databasePath, "kv.db")
	}

	db, err := buntdb.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("localkv: open: %w", err)
	}

	if err := db.SetConfig(buntdb.Config{
		SyncPolicy:         buntdb.Never,
		AutoShrinkDisabled: true,
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("localkv: config: %w", err)
	}

	return &LocalKV{db: db, dbPath: dbPath}, nil
}

func (l *LocalKV) Close() error {
	return l.db.Close()
}

func (l *LocalKV) Get(key string) (string, error) {
	var val string
	err := l.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(key)
		if err != nil {
			return err
		}
		val = v
		return nil
	})
	return val, err
}

func (l *LocalKV) Set(key, value string) error {
	return l.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, value, nil)
		return err
	})
}

// signalKey identifies a (venue, symbol, timeframe, strategy)
// combination.
func signalKey(sig *model.SignalEvent) string {
	return sig.Venue + ":" + sig.Symbol + ":" + sig.Timeframe + ":" + sig.Strategy
}

// SeenSignal reports whether this exact trigger bar was emitted before
// for the signal's combination.
func (l *LocalKV) SeenSignal(sig *model.SignalEvent) bool {
	val, err := l.Get(signalKey(sig))
	if err != nil {
		return false
	}
	ts, err := strconv.ParseInt(val, 10, 64)
	return err == nil && ts == sig.EntryTS
}

// MarkSignal records the signal's trigger bar as emitted.
func (l *LocalKV) MarkSignal(sig *model.SignalEvent) error {
	return l.Set(signalKey(sig), strconv.FormatInt(sig.EntryTS, 10))
}

// RemoveDB closes the store and deletes its backing file, if any.
func (l *LocalKV) RemoveDB() error {
	if l.db != nil {
		l.db.Close()
	}
	if l.dbPath != ":memory:" && l.dbPath != "" {
		if err := os.Remove(l.dbPath); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
