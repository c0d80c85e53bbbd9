package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezquant/azsignal/azsignal/model"
)

// trendFrame builds a 3-bar frame whose indicator columns hold the
// given values on every bar.
func trendFrame(tf string, open, high, low, closePrice, ema10, ema20, macd float64) *model.Dataframe {
	df := model.NewDataframe("XBTUSD", tf)
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		df.Append(start.Add(time.Duration(i)*time.Hour), open, high, low, closePrice, 10)
	}
	n := df.Len()
	df.Metadata["EMA10"] = constSeries(ema10, n)
	df.Metadata["EMA20"] = constSeries(ema20, n)
	df.Metadata["MACD"] = constSeries(macd, n)
	return df
}

func constSeries(v float64, n int) model.Series[float64] {
	out := make(model.Series[float64], n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestEQTrendRequiredTimeframes(t *testing.T) {
	m := NewEQTrend()

	required, err := m.RequiredTimeframes([]string{"1Min", "30Min", "4H"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3Min", "1H", "8H"}, required)
}

func TestEQTrendLongSetup(t *testing.T) {
	// Uptrend on trigger and doubled timeframe, positive MACD,
	// pullback low into the EMA EQ zone.
	trigger := trendFrame("1H", 100, 105, 98, 101, 100, 99.5, 0.5)
	confirm := trendFrame("2H", 100, 105, 98, 101, 100, 99.5, 0.5)

	m := NewEQTrend()
	sig, err := m.Run(
		map[string]*model.Dataframe{"1H": trigger, "2H": confirm},
		nil, "1H", "XBTUSD", "BitMEX")
	require.NoError(t, err)
	require.NotNil(t, sig)

	assert.Equal(t, model.DirectionLong, sig.Direction)
	assert.Equal(t, model.OrderTypeStop, sig.OrderType)
	assert.Equal(t, 105.0, sig.EntryPrice, "entry at trigger bar high")
	require.NotNil(t, sig.StopPrice)
	assert.Equal(t, 98.0, *sig.StopPrice, "stop at trigger bar low")

	require.Len(t, sig.Targets, 1)
	assert.InDelta(t, 112.0, sig.Targets[0].Price, 1e-9, "T1 at 1R")
	assert.Equal(t, 50.0, sig.Targets[0].ClosePct)
	require.NotNil(t, sig.Trail)
}

func TestEQTrendShortSetup(t *testing.T) {
	trigger := trendFrame("1H", 100, 102, 95, 99, 100, 100.5, -0.5)
	confirm := trendFrame("2H", 100, 102, 95, 99, 100, 100.5, -0.5)

	m := NewEQTrend()
	sig, err := m.Run(
		map[string]*model.Dataframe{"1H": trigger, "2H": confirm},
		nil, "1H", "XBTUSD", "BitMEX")
	require.NoError(t, err)
	require.NotNil(t, sig)

	assert.Equal(t, model.DirectionShort, sig.Direction)
	assert.Equal(t, 95.0, sig.EntryPrice)
	require.NotNil(t, sig.StopPrice)
	assert.Equal(t, 102.0, *sig.StopPrice)
}

func TestEQTrendNeedsConfirmation(t *testing.T) {
	trigger := trendFrame("1H", 100, 105, 98, 101, 100, 99.5, 0.5)

	m := NewEQTrend()

	// No doubled-timeframe frame supplied.
	sig, err := m.Run(map[string]*model.Dataframe{"1H": trigger}, nil, "1H", "XBTUSD", "BitMEX")
	require.NoError(t, err)
	assert.Nil(t, sig)

	// Doubled timeframe trending the wrong way.
	confirm := trendFrame("2H", 100, 105, 98, 101, 99, 100.5, 0.5)
	sig, err = m.Run(
		map[string]*model.Dataframe{"1H": trigger, "2H": confirm},
		nil, "1H", "XBTUSD", "BitMEX")
	require.NoError(t, err)
	assert.Nil(t, sig)
}

func TestEQTrendConfirmationFromReqData(t *testing.T) {
	trigger := trendFrame("1H", 100, 105, 98, 101, 100, 99.5, 0.5)
	confirm := trendFrame("2H", 100, 105, 98, 101, 100, 99.5, 0.5)

	m := NewEQTrend()
	sig, err := m.Run(
		map[string]*model.Dataframe{"1H": trigger},
		[]*model.Dataframe{confirm}, "1H", "XBTUSD", "BitMEX")
	require.NoError(t, err)
	require.NotNil(t, sig)
	assert.Equal(t, model.DirectionLong, sig.Direction)
}

func TestEQTrendNoPullbackNoSignal(t *testing.T) {
	// Low stays above EMA10: no pullback into the EQ zone.
	trigger := trendFrame("1H", 100, 105, 101, 103, 100, 99.5, 0.5)
	confirm := trendFrame("2H", 100, 105, 101, 103, 100, 99.5, 0.5)

	m := NewEQTrend()
	sig, err := m.Run(
		map[string]*model.Dataframe{"1H": trigger, "2H": confirm},
		nil, "1H", "XBTUSD", "BitMEX")
	require.NoError(t, err)
	assert.Nil(t, sig)
}

func TestEQTrendNonOperatingTimeframeIsNoop(t *testing.T) {
	trigger := trendFrame("3Min", 100, 105, 98, 101, 100, 99.5, 0.5)

	m := NewEQTrend()
	sig, err := m.Run(map[string]*model.Dataframe{"3Min": trigger}, nil, "3Min", "XBTUSD", "BitMEX")
	require.NoError(t, err)
	assert.Nil(t, sig, "3Min is not an operating timeframe")
}
