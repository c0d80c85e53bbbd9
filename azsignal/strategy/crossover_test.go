package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezquant/azsignal/azsignal/model"
)

// crossFrame builds a dataframe with explicit fast/slow columns. NaN
// entries model the indicator warm-up span.
func crossFrame(t *testing.T, fast, slow []float64) *model.Dataframe {
	t.Helper()
	require.Equal(t, len(fast), len(slow))

	df := model.NewDataframe("XBTUSD", "1Min")
	start := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	for i := range fast {
		ts := start.Add(time.Duration(i) * time.Minute)
		open := 1000 + float64(i)
		df.Append(ts, open, open+5, open-5, open+2, 10)
	}
	df.Metadata["EMA10"] = fast
	df.Metadata["EMA20"] = slow
	return df
}

func runEMACross(t *testing.T, df *model.Dataframe) *model.SignalEvent {
	t.Helper()
	m := NewEMACross()
	sig, err := m.Run(map[string]*model.Dataframe{"1Min": df}, nil, "1Min", "XBTUSD", "BitMEX")
	require.NoError(t, err)
	return sig
}

func TestLongCrossOnFinalBar(t *testing.T) {
	// Slow above fast on the two bars before the end, fast above slow
	// on the final bar.
	df := crossFrame(t,
		[]float64{1, 1, 1, 1, 3},
		[]float64{2, 2, 2, 2, 2},
	)

	sig := runEMACross(t, df)
	require.NotNil(t, sig)

	assert.Equal(t, model.DirectionLong, sig.Direction)
	assert.Equal(t, df.Open[4], sig.EntryPrice)
	assert.Equal(t, df.Time[4].Unix(), sig.EntryTS)
	assert.Equal(t, "1Min", sig.Timeframe)
	assert.Equal(t, "XBTUSD", sig.Symbol)
	assert.Equal(t, "BitMEX", sig.Venue)
	assert.Equal(t, model.OrderTypeMarket, sig.OrderType)
	assert.Nil(t, sig.StopPrice)

	require.Len(t, sig.Targets, 1)
	assert.InDelta(t, sig.EntryPrice*1.005, sig.Targets[0].Price, 1e-9)
	assert.Equal(t, 100.0, sig.Targets[0].ClosePct)

	require.NotNil(t, sig.Series)
	assert.Equal(t, df.Len(), sig.Series.Len())
}

func TestShortCrossOnFinalBar(t *testing.T) {
	df := crossFrame(t,
		[]float64{3, 3, 3, 3, 1},
		[]float64{2, 2, 2, 2, 2},
	)

	sig := runEMACross(t, df)
	require.NotNil(t, sig)

	assert.Equal(t, model.DirectionShort, sig.Direction)
	assert.Equal(t, df.Open[4], sig.EntryPrice)
	require.Len(t, sig.Targets, 1)
	assert.InDelta(t, sig.EntryPrice*0.995, sig.Targets[0].Price, 1e-9)
}

func TestHistoricalCrossProducesNothing(t *testing.T) {
	// Cross happens one bar before the end; the final bar continues
	// the new trend without a fresh inversion.
	df := crossFrame(t,
		[]float64{1, 1, 1, 3, 3},
		[]float64{2, 2, 2, 2, 2},
	)

	assert.Nil(t, runEMACross(t, df))
}

func TestNoCrossProducesNothing(t *testing.T) {
	df := crossFrame(t,
		[]float64{1, 1, 1, 1, 1},
		[]float64{2, 2, 2, 2, 2},
	)

	assert.Nil(t, runEMACross(t, df))
}

func TestShortSeriesProducesNothing(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		fast := make([]float64, n)
		slow := make([]float64, n)
		for i := range fast {
			fast[i], slow[i] = 3, 2
		}
		assert.Nil(t, runEMACross(t, crossFrame(t, fast, slow)), "len=%d", n)
	}
}

func TestWarmupNaNBarsAreSkipped(t *testing.T) {
	nan := math.NaN()

	// Only the last three bars have both indicators defined; the
	// final bar inverts the relationship.
	df := crossFrame(t,
		[]float64{nan, nan, 1, 1, 3},
		[]float64{nan, nan, 2, 2, 2},
	)

	// Prior-bar values exist here, so the cross at the final bar is
	// detectable.
	sig := runEMACross(t, df)
	require.NotNil(t, sig)
	assert.Equal(t, model.DirectionLong, sig.Direction)

	// All-NaN window: no candidates, no error.
	df = crossFrame(t,
		[]float64{nan, nan, nan, nan},
		[]float64{nan, nan, nan, nan},
	)
	assert.Nil(t, runEMACross(t, df))
}

func TestNonOperatingTimeframeIsNoop(t *testing.T) {
	df := crossFrame(t,
		[]float64{1, 1, 1, 1, 3},
		[]float64{2, 2, 2, 2, 2},
	)

	m := NewEMACross()
	sig, err := m.Run(map[string]*model.Dataframe{"5Min": df}, nil, "5Min", "XBTUSD", "BitMEX")
	require.NoError(t, err)
	assert.Nil(t, sig)
}

func TestRunIsIdempotent(t *testing.T) {
	df := crossFrame(t,
		[]float64{1, 1, 1, 1, 3},
		[]float64{2, 2, 2, 2, 2},
	)

	first := runEMACross(t, df)
	second := runEMACross(t, df)
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.Equal(t, first.Direction, second.Direction)
	assert.Equal(t, first.EntryPrice, second.EntryPrice)
	assert.Equal(t, first.EntryTS, second.EntryTS)
	assert.Equal(t, first.Targets, second.Targets)
}

func TestCrossSignalEmptyWindowWithCandidates(t *testing.T) {
	df := model.NewDataframe("XBTUSD", "1Min")
	longs := []crossPoint{{price: 100, time: time.Now()}}

	sig, err := crossSignal(df, longs, nil, "emacross", "XBTUSD", "BitMEX")
	assert.Nil(t, sig)
	assert.Error(t, err, "defect is reported, not fatal")
}
