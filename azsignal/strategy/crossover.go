package strategy

import (
	"fmt"
	"time"

	"github.com/ezquant/azsignal/azsignal/model"
)

// crossPoint records one candidate cross: the trigger bar's open price
// and timestamp.
type crossPoint struct {
	price float64
	time  time.Time
}

// crossovers scans the full window for fast/slow crosses. A bar is a
// long cross when fast is above slow and was below it on each of the
// two prior bars; a short cross is the mirror case. Bars where either
// indicator is NaN (warm-up) are skipped, and NaN values on prior bars
// make the prior-bar comparisons false, so fewer than 3 defined bars
// yield no candidates.
func crossovers(df *model.Dataframe, fastCol, slowCol string) (longs, shorts []crossPoint) {
	fast := df.Column(fastCol)
	slow := df.Column(slowCol)

	for i := 2; i < df.Len(); i++ {
		if !model.Defined(fast, i) || !model.Defined(slow, i) {
			continue
		}

		switch {
		// Short cross: slow just moved above fast.
		case slow[i] > fast[i] && slow[i-1] < fast[i-1] && slow[i-2] < fast[i-2]:
			shorts = append(shorts, crossPoint{price: df.Open[i], time: df.Time[i]})

		// Long cross: slow just moved below fast.
		case slow[i] < fast[i] && slow[i-1] > fast[i-1] && slow[i-2] > fast[i-2]:
			longs = append(longs, crossPoint{price: df.Open[i], time: df.Time[i]})
		}
	}
	return longs, shorts
}

// crossSignal emits a signal only when the final bar of the window is
// itself the most recent trigger: LONG if it matches the latest long
// candidate, SHORT if it matches the latest short candidate, otherwise
// nothing. Take-profit is a single target at ±0.5% of entry closing the
// whole position; no stop is set.
func crossSignal(df *model.Dataframe, longs, shorts []crossPoint,
	name, symbol, venue string) (*model.SignalEvent, error) {

	if df.Len() == 0 {
		if len(longs) > 0 || len(shorts) > 0 {
			// Candidates cannot exist without bars; report instead of
			// assuming a last element (the caller keeps running).
			return nil, fmt.Errorf(
				"crossover: empty window with candidates (longs=%d shorts=%d)",
				len(longs), len(shorts))
		}
		return nil, nil
	}

	last := df.LastTime()

	var (
		direction model.Direction
		entry     crossPoint
		found     bool
	)
	if len(longs) > 0 && longs[len(longs)-1].time.Equal(last) {
		direction, entry, found = model.DirectionLong, longs[len(longs)-1], true
	} else if len(shorts) > 0 && shorts[len(shorts)-1].time.Equal(last) {
		direction, entry, found = model.DirectionShort, shorts[len(shorts)-1], true
	}
	if !found {
		return nil, nil
	}

	tp := entry.price * 1.005
	if direction == model.DirectionShort {
		tp = entry.price * 0.995
	}

	return &model.SignalEvent{
		Symbol:     symbol,
		EntryTS:    entry.time.Unix(),
		Direction:  direction,
		Timeframe:  df.Timeframe,
		Strategy:   name,
		Venue:      venue,
		EntryPrice: entry.price,
		OrderType:  model.OrderTypeMarket,
		Targets:    []model.Target{{Price: tp, ClosePct: 100}},
		Series:     df.Snapshot(),
	}, nil
}
