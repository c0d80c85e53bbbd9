package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezquant/azsignal/azsignal/exchange"
	"github.com/ezquant/azsignal/azsignal/model"
	"github.com/ezquant/azsignal/azsignal/strategy"
)

// stubFeeder serves canned closes for every request.
type stubFeeder struct {
	closes []float64
	calls  int
}

func (f *stubFeeder) Klines(ctx context.Context, symbol, tf string, limit int) (*model.Dataframe, error) {
	f.calls++
	df := model.NewDataframe(symbol, tf)
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range f.closes {
		df.Append(start.Add(time.Duration(i)*time.Minute), c, c+1, c-1, c, 10)
	}
	return df, nil
}

// declineThenSpike yields closes that keep EMA10 below EMA20 through a
// steady decline, then spike on the final bar so the EMAs cross there.
func declineThenSpike() []float64 {
	out := make([]float64, 61)
	for i := 0; i < 60; i++ {
		out[i] = 120 - 0.5*float64(i)
	}
	out[60] = 160
	return out
}

func TestJobsExpansion(t *testing.T) {
	m := strategy.NewEMACross()
	jobs := Jobs([]strategy.Model{m})

	require.Len(t, jobs, 1, "one venue symbol on one operating timeframe")
	assert.Equal(t, "BitMEX", jobs[0].Venue)
	assert.Equal(t, "XBTUSD", jobs[0].Symbol)
	assert.Equal(t, "XBTUSD", jobs[0].Remote)
	assert.Equal(t, "1Min", jobs[0].Timeframe)
}

func TestSubscriptionsIncludeRequiredTimeframes(t *testing.T) {
	m := strategy.NewEQTrend()
	reqs, err := Subscriptions([]strategy.Model{m})
	require.NoError(t, err)

	var tfs []string
	for _, r := range reqs {
		assert.Equal(t, "BitMEX", r.Venue)
		assert.Equal(t, "XBTUSD", r.Symbol)
		assert.Equal(t, 150, r.Lookback)
		tfs = append(tfs, r.Timeframe)
	}
	// 4H operates, so its doubled 8H must be subscribed even though it
	// is not an operating timeframe.
	assert.Contains(t, tfs, "4H")
	assert.Contains(t, tfs, "8H")

	seen := map[string]int{}
	for _, tf := range tfs {
		seen[tf]++
		assert.Equal(t, 1, seen[tf], "no duplicate subscriptions")
	}
}

func TestScanEmitsCrossSignal(t *testing.T) {
	feeder := &stubFeeder{closes: declineThenSpike()}
	s := New(exchange.Feeders{"BitMEX": feeder}, WithWorkers(2))

	signals, err := s.Scan(context.Background(), []strategy.Model{strategy.NewEMACross()})
	require.NoError(t, err)
	require.Len(t, signals, 1)

	sig := signals[0]
	assert.Equal(t, model.DirectionLong, sig.Direction)
	assert.Equal(t, "XBTUSD", sig.Symbol)
	assert.Equal(t, "BitMEX", sig.Venue)
	assert.Equal(t, "1Min", sig.Timeframe)
	assert.Equal(t, 160.0, sig.EntryPrice, "entry at the trigger bar open")
	require.Len(t, sig.Targets, 1)
	assert.InDelta(t, 160*1.005, sig.Targets[0].Price, 1e-9)

	assert.Equal(t, 1, feeder.calls, "no auxiliary timeframes for this model")
}

func TestScanNoSignalOnQuietData(t *testing.T) {
	flat := make([]float64, 61)
	for i := range flat {
		flat[i] = 100
	}
	feeder := &stubFeeder{closes: flat}
	s := New(exchange.Feeders{"BitMEX": feeder})

	signals, err := s.Scan(context.Background(), []strategy.Model{strategy.NewEMACross()})
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestScanAbsorbsMissingVenue(t *testing.T) {
	s := New(exchange.Feeders{})

	signals, err := s.Scan(context.Background(), []strategy.Model{strategy.NewEMACross()})
	require.NoError(t, err, "per-job fetch failures are absorbed")
	assert.Empty(t, signals)
}
