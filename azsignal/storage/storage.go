// Package storage persists emitted signals to sqlite so scans are
// auditable after the fact.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ezquant/azsignal/azsignal/model"
)

// Signal is the persisted form of a SignalEvent. The bar-series
// snapshot is not stored, only the instruction fields.
type Signal struct {
	ID         uint `gorm:"primaryKey;autoIncrement"`
	CreatedAt  time.Time
	Symbol     string `gorm:"index"`
	Venue      string `gorm:"index"`
	Strategy   string `gorm:"index"`
	Timeframe  string
	Direction  string
	EntryTS    int64
	EntryPrice float64
	OrderType  string
	Targets    string // JSON-encoded target list
	StopPrice  *float64
	Trail      *float64
	ReduceOnly bool
	OrderID    string
}

type Storage struct {
	db *gorm.DB
}

// FromSQLite opens (or creates) the signal database at the given path.
func FromSQLite(path string) (*Storage, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Signal{}); err != nil {
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}
	return &Storage{db: db}, nil
}

// FromMemory opens an in-memory database, used by backtests and tests.
func FromMemory() (*Storage, error) {
	return FromSQLite(":memory:")
}

func (s *Storage) Save(sig *model.SignalEvent) error {
	targets, err := json.Marshal(sig.Targets)
	if err != nil {
		return fmt.Errorf("storage: encode targets: %w", err)
	}
	record := Signal{
		Symbol:     sig.Symbol,
		Venue:      sig.Venue,
		Strategy:   sig.Strategy,
		Timeframe:  sig.Timeframe,
		Direction:  string(sig.Direction),
		EntryTS:    sig.EntryTS,
		EntryPrice: sig.EntryPrice,
		OrderType:  string(sig.OrderType),
		Targets:    string(targets),
		StopPrice:  sig.StopPrice,
		Trail:      sig.Trail,
		ReduceOnly: sig.ReduceOnly,
		OrderID:    sig.OrderID,
	}
	return s.db.Create(&record).Error
}

// Signals returns the most recent records, newest first.
func (s *Storage) Signals(limit int) ([]Signal, error) {
	var out []Signal
	q := s.db.Order("entry_ts desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}
