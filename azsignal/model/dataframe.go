package model

import (
	"time"
)

// Dataframe holds the lookback window of one pair on one timeframe:
// OHLCV columns plus any indicator columns under Metadata, all aligned
// with the Time index (strictly increasing).
type Dataframe struct {
	Pair      string
	Timeframe string

	Time   []time.Time
	Open   Series[float64]
	High   Series[float64]
	Low    Series[float64]
	Close  Series[float64]
	Volume Series[float64]

	Metadata map[string]Series[float64]
}

func NewDataframe(pair, timeframe string) *Dataframe {
	return &Dataframe{
		Pair:      pair,
		Timeframe: timeframe,
		Metadata:  make(map[string]Series[float64]),
	}
}

func (df *Dataframe) Len() int {
	if df == nil {
		return 0
	}
	return len(df.Time)
}

// LastTime returns the timestamp of the most recent bar, or the zero
// time for an empty frame.
func (df *Dataframe) LastTime() time.Time {
	if df.Len() == 0 {
		return time.Time{}
	}
	return df.Time[df.Len()-1]
}

// Column returns the named indicator column, which may be nil if the
// feature engine never populated it.
func (df *Dataframe) Column(name string) Series[float64] {
	if df == nil || df.Metadata == nil {
		return nil
	}
	return df.Metadata[name]
}

// Append adds one bar to the end of the frame. Callers own ordering:
// timestamps must arrive strictly increasing.
func (df *Dataframe) Append(t time.Time, open, high, low, closePrice, volume float64) {
	df.Time = append(df.Time, t)
	df.Open = append(df.Open, open)
	df.High = append(df.High, high)
	df.Low = append(df.Low, low)
	df.Close = append(df.Close, closePrice)
	df.Volume = append(df.Volume, volume)
}

// Snapshot returns a deep copy of the frame, used when packaging a
// signal so the event keeps its own view of the triggering window.
func (df *Dataframe) Snapshot() *Dataframe {
	if df == nil {
		return nil
	}
	out := &Dataframe{
		Pair:      df.Pair,
		Timeframe: df.Timeframe,
		Time:      append([]time.Time{}, df.Time...),
		Open:      append(Series[float64]{}, df.Open...),
		High:      append(Series[float64]{}, df.High...),
		Low:       append(Series[float64]{}, df.Low...),
		Close:     append(Series[float64]{}, df.Close...),
		Volume:    append(Series[float64]{}, df.Volume...),
		Metadata:  make(map[string]Series[float64], len(df.Metadata)),
	}
	for name, col := range df.Metadata {
		out.Metadata[name] = append(Series[float64]{}, col...)
	}
	return out
}
