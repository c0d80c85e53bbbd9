package model

import (
	"fmt"
	"time"
)

type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

type OrderType string

const (
	OrderTypeMarket OrderType = "Market"
	OrderTypeLimit  OrderType = "Limit"
	OrderTypeStop   OrderType = "Stop"
)

// Target is one take-profit level: price to close at and the percentage
// of the open position to close there.
type Target struct {
	Price    float64
	ClosePct float64
}

// SignalEvent is the output artifact of a successful detection. A model
// constructs it at most once per Run call and hands ownership to the
// caller; downstream consumers treat it as immutable.
type SignalEvent struct {
	Symbol     string
	EntryTS    int64 // epoch seconds of the trigger bar
	Direction  Direction
	Timeframe  string
	Strategy   string
	Venue      string
	EntryPrice float64
	OrderType  OrderType
	Targets    []Target
	StopPrice  *float64 // nil when the strategy sets no stop
	Trail      *float64 // trailing distance, nil when not trailing
	ReduceOnly bool
	OrderID    string
	Series     *Dataframe // snapshot of the triggering window
}

func (s *SignalEvent) EntryTime() time.Time {
	return time.Unix(s.EntryTS, 0).UTC()
}

func (s *SignalEvent) String() string {
	return fmt.Sprintf("%s %s %s %s @ %.8g (%s)",
		s.Venue, s.Symbol, s.Timeframe, s.Direction, s.EntryPrice, s.Strategy)
}
